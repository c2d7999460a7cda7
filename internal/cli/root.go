package cli

import (
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/MacroPower/synclab/pkg/log"
	"github.com/MacroPower/synclab/pkg/syncerrors"
)

// NewRootCmd returns the root command with every subcommand attached.
func NewRootCmd(name, shortDesc, longDesc string) *cobra.Command {
	cfg := DefaultConfig()

	cmd := &cobra.Command{
		Use:           name,
		Short:         shortDesc,
		Long:          longDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       GetVersionString(),
	}

	cmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	cmd.PersistentFlags().String("log_level", cfg.LogLevel, "Set the log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log_format", cfg.LogFormat, "Set the log format (text, logfmt, json)")

	if err := cmd.MarkPersistentFlagFilename("config", "yaml", "yml"); err != nil {
		panic(err)
	}

	cmd.PersistentPreRunE = func(cc *cobra.Command, _ []string) error {
		flags := cc.Flags()

		var merr error

		configPath, err := flags.GetString("config")
		if err != nil {
			merr = multierror.Append(merr, err)
		}

		logLevel, err := flags.GetString("log_level")
		if err != nil {
			merr = multierror.Append(merr, err)
		}

		logFormat, err := flags.GetString("log_format")
		if err != nil {
			merr = multierror.Append(merr, err)
		}

		if merr != nil {
			return fmt.Errorf("%w: %w", syncerrors.ErrInvalidArgument, merr)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			return err
		}

		if flags.Changed("log_level") {
			loaded.LogLevel = logLevel
		}

		if flags.Changed("log_format") {
			loaded.LogFormat = logFormat
		}

		h, err := log.CreateHandler(cc.ErrOrStderr(), loaded.LogLevel, loaded.LogFormat)
		if err != nil {
			return fmt.Errorf("failed creating log handler: %w", err)
		}

		slog.SetDefault(slog.New(h))

		cfg = loaded

		return nil
	}

	cmd.AddCommand(NewRunCmd(&cfg))
	cmd.AddCommand(NewMetricsCmd(&cfg))
	cmd.AddCommand(NewListCmd(&cfg))
	cmd.AddCommand(NewVersionCmd())

	return cmd
}
