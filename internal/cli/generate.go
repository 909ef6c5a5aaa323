package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/weiawesome/genguid/internal/genlog"
	"github.com/weiawesome/genguid/internal/settings"
)

// NewOptions holds flags for the new command.
type NewOptions struct {
	*RootOptions
	Count int
}

// NewNewCommand creates the new command.
func NewNewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Generate identifiers",
		Long: `Generate one or more identifiers. Each one is logged, counted and
printed through the configured formatter chain.

Examples:
  genguid new
  genguid new -n 5`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if opts.Count < 1 {
				return NewExitError(ExitCommandError, "--count must be at least 1")
			}
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer func() { s.close(err) }()
			return runNew(cmd, s, opts.Count)
		},
	}

	cmd.Flags().IntVarP(&opts.Count, "count", "n", 1, "number of identifiers to generate")

	return cmd
}

func runNew(cmd *cobra.Command, s *session, n int) error {
	f := s.provider.Factory()
	format := s.provider.Formatter()
	// The stdout observer already prints every identifier.
	printed := slices.Contains(s.provider.ReadObservers(), settings.ObserverStdout)

	for i := 0; i < n; i++ {
		p, err := f.GenerateNext(s.ctx)
		if p.IsNull() {
			return WrapExitError(ExitFailure, "failed to generate identifier", err)
		}
		if !printed {
			fmt.Fprintln(cmd.OutOrStdout(), format.Format(p.Value))
		}
		if err != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("identifier %d generated but not fully recorded", p.SequenceNumber), err)
		}
	}
	return nil
}

// NewCurrentCommand creates the current command.
func NewCurrentCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "current",
		Short:         "Print the most recently generated identifier",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			s, err := rootOpts.open(cmd)
			if err != nil {
				return err
			}
			defer func() { s.close(err) }()

			p := s.provider.Factory().CurrentIdentifier()
			if p.IsNull() {
				fmt.Fprintln(cmd.OutOrStdout(), "No identifiers generated yet")
				return nil
			}
			printPacket(cmd.OutOrStdout(), s.provider.Formatter(), p)
			return nil
		},
	}
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <sequence>",
		Short:         "Print the identifier with the given sequence number",
		Example:       "  genguid show 42",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			seq, err := cast.ToInt64E(args[0])
			if err != nil || seq < 1 {
				return WrapExitError(ExitCommandError, fmt.Sprintf("invalid sequence number %q", args[0]), err)
			}

			s, err := rootOpts.open(cmd)
			if err != nil {
				return err
			}
			defer func() { s.close(err) }()

			p, err := s.provider.GenerationLog().Fetch(s.ctx, seq)
			if err != nil {
				return WrapExitError(ExitFailure, "failed to read generation log", err)
			}
			if p.IsNull() {
				return NewExitError(ExitFailure, fmt.Sprintf("no identifier with sequence number %d", seq))
			}
			printPacket(cmd.OutOrStdout(), s.provider.Formatter(), p)
			return nil
		},
	}
}

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	From  int64
	Limit int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse previously generated identifiers, newest first",
		Long: `Browse the generation log backwards.

Examples:
  genguid history
  genguid history --from 100 --limit 20`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if opts.Limit < 1 {
				return NewExitError(ExitCommandError, "--limit must be at least 1")
			}
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer func() { s.close(err) }()

			from := opts.From
			if from < 1 {
				from = s.provider.Factory().CurrentIdentifier().SequenceNumber
			}
			packets, err := genlog.Range(s.ctx, s.provider.GenerationLog(), from, opts.Limit)
			if err != nil {
				return WrapExitError(ExitFailure, "failed to read generation log", err)
			}
			if len(packets) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No identifiers generated yet")
				return nil
			}

			format := s.provider.Formatter()
			for _, p := range packets {
				printPacket(cmd.OutOrStdout(), format, p)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&opts.From, "from", 0, "sequence number to start from (default: latest)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 10, "maximum number of identifiers to print")

	return cmd
}
