package cli

import (
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/weiawesome/genguid/internal/generator"
	"github.com/weiawesome/genguid/internal/genlog"
)

// NewCountCommand creates the count command.
func NewCountCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "count",
		Short:         "Print how many identifiers have been generated",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			s, err := rootOpts.open(cmd)
			if err != nil {
				return err
			}
			defer func() { s.close(err) }()

			n, err := s.provider.Counter().Count(s.ctx)
			if err != nil {
				return WrapExitError(ExitFailure, "failed to read count", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
}

// NewTemplateCommand creates the template command.
func NewTemplateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "template",
		Short:         "Print the shape of the formatted output",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			s, err := rootOpts.open(cmd)
			if err != nil {
				return err
			}
			defer func() { s.close(err) }()

			f := s.provider.Formatter()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "chain:    %s\n", strings.Join(f.Specs(), ", "))
			fmt.Fprintf(out, "template: %s\n", f.TemplateString())
			fmt.Fprintf(out, "digits:   %d\n", f.Digits())
			return nil
		},
	}
}

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	ULID     bool
	Literals []string
}

// NewInspectCommand creates the inspect command. It needs no configuration.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect <identifier>",
		Short: "Describe an identifier",
		Long: `Parse an identifier in any supported output form and print its version,
variant, and embedded timestamp when the layout has one.

A 26-character Crockford base32 value is decoded as a ULID. Text added by
prefix or suffix stages is stripped when named with --literal.

Examples:
  genguid inspect 0f8fad5b-d9cb-469f-a165-70867728950e
  genguid inspect {0F8FAD5B-D9CB-469F-A165-70867728950E}
  genguid inspect 01ARZ3NDEKTSV4RRFFQ69G5FAV
  genguid inspect --literal id- --literal .v1 id-0f8fad5bd9cb469fa16570867728950e.v1`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := generator.TrimText(args[0], opts.Literals...)
			id, err := generator.ParseText(text)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to parse identifier", err)
			}

			res := generator.Inspect(id)
			if opts.ULID || len(text) == ulid.EncodedSize {
				res = generator.InspectAsULID(id)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "id:        %s\n", res.ID)
			fmt.Fprintf(out, "version:   %d\n", res.Version)
			fmt.Fprintf(out, "variant:   %s\n", res.Variant)
			if res.Layout != "" {
				fmt.Fprintf(out, "layout:    %s\n", res.Layout)
			}
			if res.HasTimestamp {
				fmt.Fprintf(out, "timestamp: %s\n", res.Timestamp.Format(genlog.TimestampLayout))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.ULID, "ulid", false, "decode the value as a ULID")
	cmd.Flags().StringArrayVar(&opts.Literals, "literal", nil, "prefix or suffix text to strip (repeatable)")

	return cmd
}
