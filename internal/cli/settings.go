package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/weiawesome/genguid/internal/settings"
)

// NewSettingsCommand creates the settings command and its subcommands.
func NewSettingsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the factory, formatter chain, log and observers",
	}

	cmd.AddCommand(newSettingsShowCommand(rootOpts))
	cmd.AddCommand(newSettingsMutatorCommand(rootOpts, "factory <key>", "Select the identifier source",
		func(ctx context.Context, p *settings.Provider, arg string) (string, error) {
			return fmt.Sprintf("Factory set to %q", arg), p.RegisterFactory(ctx, arg)
		}))
	cmd.AddCommand(newSettingsMutatorCommand(rootOpts, "add-formatter <stage>", "Append a stage to the formatter chain",
		func(ctx context.Context, p *settings.Provider, arg string) (string, error) {
			return fmt.Sprintf("Formatter stage %q added", arg), p.RegisterFormatterStage(ctx, arg)
		}))
	cmd.AddCommand(newSettingsMutatorCommand(rootOpts, "remove-formatter <stage>", "Remove every occurrence of a stage from the chain",
		func(ctx context.Context, p *settings.Provider, arg string) (string, error) {
			return fmt.Sprintf("Formatter stage %q removed", arg), p.DeregisterFormatterStage(ctx, arg)
		}))
	cmd.AddCommand(newSettingsMutatorCommand(rootOpts, "log <key>", "Select the generation log",
		func(ctx context.Context, p *settings.Provider, arg string) (string, error) {
			return fmt.Sprintf("Generation log set to %q", arg), p.RegisterGenerationLog(ctx, arg)
		}))
	cmd.AddCommand(newSettingsMutatorCommand(rootOpts, "add-observer <key>", "Register an observer",
		func(ctx context.Context, p *settings.Provider, arg string) (string, error) {
			return fmt.Sprintf("Observer %q registered", arg), p.RegisterObserver(ctx, arg)
		}))
	cmd.AddCommand(newSettingsMutatorCommand(rootOpts, "remove-observer <key>", "Deregister an observer",
		func(ctx context.Context, p *settings.Provider, arg string) (string, error) {
			return fmt.Sprintf("Observer %q deregistered", arg), p.DeregisterObserver(ctx, arg)
		}))
	cmd.AddCommand(newSettingsResetCommand(rootOpts))

	return cmd
}

type settingsMutator func(ctx context.Context, p *settings.Provider, arg string) (string, error)

func newSettingsMutatorCommand(rootOpts *RootOptions, use, short string, mutate settingsMutator) *cobra.Command {
	return &cobra.Command{
		Use:           use,
		Short:         short,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			s, err := rootOpts.open(cmd)
			if err != nil {
				return err
			}
			defer func() { s.close(err) }()

			msg, err := mutate(s.ctx, s.provider, args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to update settings", err)
			}
			printSuccess(cmd.OutOrStdout(), "%s", msg)
			return nil
		},
	}
}

func newSettingsShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show",
		Short:         "Print the active selection and the available keys",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			s, err := rootOpts.open(cmd)
			if err != nil {
				return err
			}
			defer func() { s.close(err) }()

			out := cmd.OutOrStdout()
			data, err := yaml.Marshal(s.provider.Selection())
			if err != nil {
				return WrapExitError(ExitFailure, "failed to encode settings", err)
			}
			fmt.Fprint(out, string(data))

			r := s.provider.Registry()
			fmt.Fprintln(out)
			fmt.Fprintf(out, "available factories:  %s\n", strings.Join(r.FactoryKeys(), ", "))
			fmt.Fprintf(out, "available stages:     %s\n", strings.Join(r.Stages().Names(), ", "))
			fmt.Fprintf(out, "available logs:       %s\n", strings.Join(r.GenerationLogKeys(), ", "))
			fmt.Fprintf(out, "available observers:  %s\n", strings.Join(r.ObserverKeys(), ", "))
			return nil
		},
	}
}

func newSettingsResetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "reset",
		Short:         "Discard the saved selection and use the configured defaults",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			s, err := rootOpts.open(cmd)
			if err != nil {
				return err
			}
			defer func() { s.close(err) }()

			if err := s.provider.Reset(s.ctx); err != nil {
				return WrapExitError(ExitFailure, "failed to reset settings", err)
			}
			printSuccess(cmd.OutOrStdout(), "Settings reset to defaults")
			return nil
		},
	}
}
