package cli

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/weiawesome/genguid/internal/genlog"
)

// ValidExportFormats defines the allowed export formats.
var ValidExportFormats = []string{"json", "yaml"}

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Format string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump the generation log",
		Long: `Dump every logged identifier in sequence order, in the persisted entry form.

Examples:
  genguid export
  genguid export --format yaml > history.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if !slices.Contains(ValidExportFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidExportFormats))
			}
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer func() { s.close(err) }()
			return runExport(cmd, s, opts.Format)
		},
	}

	cmd.Flags().StringVar(&opts.Format, "format", "json", "output format (json|yaml)")

	return cmd
}

func runExport(cmd *cobra.Command, s *session, format string) error {
	l := s.provider.GenerationLog()
	latest, err := l.Latest(s.ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read generation log", err)
	}

	packets, err := genlog.Range(s.ctx, l, latest.SequenceNumber, int(latest.SequenceNumber))
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read generation log", err)
	}

	entries := make([]genlog.Entry, len(packets))
	for i, p := range packets {
		entries[len(packets)-1-i] = genlog.NewEntry(p)
	}

	out := cmd.OutOrStdout()
	if format == "yaml" {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return WrapExitError(ExitFailure, "failed to encode yaml", err)
		}
		return enc.Close()
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return WrapExitError(ExitFailure, "failed to encode json", err)
	}
	return nil
}
