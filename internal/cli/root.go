// Package cli implements the esgledger command tree.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/esgledger/internal/config"
	"github.com/rshade/esgledger/internal/logging"
)

// app is the state shared by every command of one invocation.
type app struct {
	cfg    *config.Config
	logger *logging.Logger
	output string
	now    func() time.Time
}

// NewRootCmd creates the root Cobra command for the esgledger CLI.
func NewRootCmd(ver string) *cobra.Command {
	a := &app{now: time.Now}

	var (
		configPath string
		envFiles   []string
		output     string
	)

	cmd := &cobra.Command{
		Use:           "esgledger",
		Short:         "Greenhouse gas activity ledger",
		Long:          "esgledger converts activity units, calculates Scope 1-4 emissions and validates activity data against its history.",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(envFiles...); err != nil {
				return err
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			a.cfg = cfg

			a.output = cfg.Output.DefaultFormat
			if cmd.Flags().Changed("output") {
				a.output = output
			}
			if a.output != config.FormatText && a.output != config.FormatJSON {
				return fmt.Errorf("%w: %q", config.ErrInvalidOutputFormat, a.output)
			}

			a.setupLogging(cmd)
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.cleanupLogging()
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "configuration file merged over ~/.esgledger/config.yaml")
	cmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load (default .env)")
	cmd.PersistentFlags().StringVarP(&output, "output", "o", config.FormatText, "output format: text or json")

	cmd.AddCommand(
		newConvertCmd(a),
		newUnitsCmd(a),
		newEmissionsCmd(a),
		newFactorsCmd(a),
		newValidateCmd(a),
		newEntriesCmd(a),
		newConfigCmd(a),
	)

	return cmd
}

const rootCmdExample = `  # Convert 100 litres to gallons and show the resolution path
  esgledger convert 100 litres gallons --explain

  # Calculate Scope 1 emissions for 250 litres of diesel
  esgledger emissions calc --scope 1 --value 250 --unit litres \
    --category stationary_combustion --activity diesel

  # Validate a reading against the source's history
  esgledger validate value --source boiler-1 --period January --value 1250 --unit kWh

  # Import entries and list the ledger
  esgledger entries import --file entries.yaml
  esgledger entries list --source boiler-1`
