package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/esgledger/internal/logging"
)

// setupLogging configures logging from the config file, environment and CLI
// flags, and stores the logger in the command context.
func (a *app) setupLogging(cmd *cobra.Command) {
	lc := a.cfg.Logging

	debug, _ := cmd.Flags().GetBool("debug")
	if debug {
		lc.Level = "debug"
		lc.Format = logging.FormatConsole
		lc.File = ""
	}

	if lc.File != "" {
		if err := a.cfg.EnsureLogDir(); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not create log directory: %v\n", err)
		}
	}

	l, err := logging.New(lc.ToLoggingConfig())
	if err != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v, logging to stderr\n", err)
	}
	a.logger = l

	log := logging.ComponentLogger(l.Logger, "cli")
	ctx := log.WithContext(cmd.Context())
	cmd.SetContext(ctx)

	log.Debug().Ctx(ctx).Str("command", cmd.CommandPath()).Msg("command started")
}

// cleanupLogging closes the log file, if any.
func (a *app) cleanupLogging() error {
	return a.logger.Close()
}
