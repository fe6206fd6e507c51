// Package cli parses the command line and dispatches to the bot's command
// handlers. Usage errors terminate the process with exit status 2; all
// other errors propagate to the caller of Execute.
package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/1cu/kleinanzeigen-bot/internal/bot"
	"github.com/1cu/kleinanzeigen-bot/internal/config"
)

const (
	defaultConfigFile = "config.yaml"
	defaultLogFile    = "kleinanzeigen-bot.log"
)

// UsageError marks malformed or unknown CLI input.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }

func (e *UsageError) Unwrap() error { return e.Err }

// ExitCode maps the error returned by Execute to the process exit status:
// 0 on success, 2 for usage errors, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var uerr *UsageError
	if errors.As(err, &uerr) {
		return 2
	}
	return 1
}

// NewRootCmd builds the command tree bound to b.
func NewRootCmd(b *bot.Bot) *cobra.Command {
	var (
		cfgFile string
		logFile string
		verbose bool
	)

	root := &cobra.Command{
		Use:           "kleinanzeigen-bot",
		Short:         "Manages classified ads on kleinanzeigen.de from YAML ad files.",
		SilenceErrors: true,
		SilenceUsage:  true,
		// Unknown commands reach RunE below and become UsageErrors there,
		// instead of cobra's default argument validation error.
		Args: cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// The verbose flag must take effect before any command output.
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}

			absCfg, err := filepath.Abs(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to resolve config path %s: %w", cfgFile, err)
			}

			inv := bot.Invocation{
				Command:     cmd.Name(),
				ConfigPath:  absCfg,
				AdsSelector: "all",
				LogFile:     logFile,
				Verbose:     verbose,
			}
			if f := cmd.Flags().Lookup("ads"); f != nil {
				inv.AdsSelector = f.Value.String()
			}
			if f := cmd.Flags().Lookup("path"); f != nil && f.Changed {
				dir := f.Value.String()
				inv.Overrides = config.Overrides{DownloadDir: &dir}
			}
			b.SetInvocation(inv)

			return b.ConfigureFileLogging()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return &UsageError{Err: fmt.Errorf("unknown command %q for %q", args[0], cmd.Name())}
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", defaultConfigFile, "path to the config file")
	root.PersistentFlags().StringVar(&logFile, "logfile", defaultLogFile, "path to the log file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})

	root.AddCommand(NewCreateConfigCmd(b))
	root.AddCommand(NewVerifyCmd(b))
	root.AddCommand(NewPublishCmd(b))
	root.AddCommand(NewDeleteCmd(b))
	root.AddCommand(NewDownloadCmd(b))
	root.AddCommand(NewUpdateCheckCmd(b))
	root.AddCommand(NewVersionCmd(b))

	return root
}

// Execute runs the command line against b. The returned error is nil on
// success; usage errors have already been logged with a help hint.
func Execute(ctx context.Context, b *bot.Bot, args []string) error {
	root := NewRootCmd(b)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}

	var uerr *UsageError
	if errors.As(err, &uerr) {
		log.Error().Err(err).Msg("Invalid usage. Use --help for a list of available commands and options.")
	}
	return err
}
