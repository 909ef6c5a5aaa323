package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/weiawesome/genguid/internal/config"
	"github.com/weiawesome/genguid/internal/settings"
	"github.com/weiawesome/genguid/pkg/log"
)

// session is everything a command needs once configuration is loaded.
type session struct {
	ctx      context.Context
	cfg      *config.Config
	provider *settings.Provider
	finish   func(err error)
}

// open loads configuration, sets up the command logger and builds the
// settings provider.
func (o *RootOptions) open(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(o.ConfigFile)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if o.DataDir != "" {
		cfg.DataDir = o.DataDir
	}

	level := cfg.Log.Level
	if o.Verbose {
		level = "debug"
	}
	logger := log.New(log.Config{
		Level:  level,
		Pretty: cfg.Log.Pretty,
		Output: cmd.ErrOrStderr(),
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, finish := log.CommandScope(ctx, logger, cmd.CommandPath())

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		finish(err)
		return nil, WrapExitError(ExitCommandError, "failed to create data directory", err)
	}

	provider, err := settings.New(ctx, cfg, settings.DefaultRegistry(cfg), settings.NewFileStore(cfg.DataDir),
		settings.WithOutput(cmd.OutOrStdout()),
	)
	if err != nil {
		finish(err)
		return nil, WrapExitError(ExitCommandError, "failed to load settings", err)
	}

	return &session{ctx: ctx, cfg: cfg, provider: provider, finish: finish}, nil
}

func (s *session) close(err error) {
	if cerr := s.provider.Close(); cerr != nil {
		l := log.Ctx(s.ctx)
		l.Warn().Err(cerr).Msg("failed to close generation log")
	}
	s.finish(err)
}
