package cli

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/weiawesome/genguid/pkg/log"
)

// fileBacked is implemented by generation logs stored in a single file.
type fileBacked interface {
	Path() string
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print identifiers as other processes generate them",
		Long: `Follow the generation log file and print every new entry as it lands.
Runs until interrupted. The in-memory log cannot be watched.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			s, err := rootOpts.open(cmd)
			if err != nil {
				return err
			}
			defer func() { s.close(err) }()
			return runWatch(cmd, s)
		},
	}
}

func runWatch(cmd *cobra.Command, s *session) error {
	genLog := s.provider.GenerationLog()
	fb, ok := genLog.(fileBacked)
	if !ok {
		return NewExitError(ExitCommandError, fmt.Sprintf("generation log %q is not file backed", s.provider.ReadGenerationLog()))
	}
	path, err := filepath.Abs(fb.Path())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to resolve log path", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return WrapExitError(ExitFailure, "failed to start file watcher", err)
	}
	defer watcher.Close()

	// Watch the directory so that files replaced by rename are still seen.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return WrapExitError(ExitFailure, "failed to watch log directory", err)
	}

	latest, err := genLog.Latest(s.ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read generation log", err)
	}
	seen := latest.SequenceNumber

	l := log.Ctx(s.ctx)
	l.Debug().Str(log.FieldPath, path).Int64(log.FieldSequence, seen).Msg("watching generation log")

	format := s.provider.Formatter()
	out := cmd.OutOrStdout()

	for {
		select {
		case <-s.ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}

			latest, err := genLog.Latest(s.ctx)
			if err != nil {
				l.Warn().Err(err).Str(log.FieldPath, path).Msg("failed to read generation log")
				continue
			}
			for seq := seen + 1; seq <= latest.SequenceNumber; seq++ {
				p, err := genLog.Fetch(s.ctx, seq)
				if err != nil {
					return WrapExitError(ExitFailure, "failed to read generation log", err)
				}
				if !p.IsNull() {
					printPacket(out, format, p)
				}
			}
			if latest.SequenceNumber > seen {
				seen = latest.SequenceNumber
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.Warn().Err(err).Msg("file watcher error")
		}
	}
}
