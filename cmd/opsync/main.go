package main

import (
	"fmt"
	"os"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"

	"github.com/systmms/opsync/cmd/opsync/commands"
	"github.com/systmms/opsync/internal/config"
	opserrors "github.com/systmms/opsync/internal/errors"
	"github.com/systmms/opsync/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Cached secrets live in memguard enclaves; wipe them on signals and
	// on every exit path.
	memguard.CatchInterrupt()
	defer memguard.Purge()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", opserrors.SimplifyError(err))
		memguard.SafeExit(1)
	}
}

func run() error {
	// Global flags
	var (
		configFile     string
		noColor        bool
		debug          bool
		nonInteractive bool
	)

	// Create config placeholder
	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:   "opsync",
		Short: "Materialize config files from 1Password-backed templates",
		Long: `opsync resolves {{...}} placeholders in your config templates against
1Password and writes the finished files to disk, alongside documents
copied straight out of the vault.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Fall back to discovery when no config was named
			if configFile == "" {
				configFile = config.Discover()
			}

			// Update config with parsed values
			cfg.Path = configFile
			cfg.Logger = logging.New(debug, noColor)
			cfg.NonInteractive = nonInteractive
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file path (default: discovered opsync.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "Non-interactive mode")

	// Add commands
	rootCmd.AddCommand(
		commands.NewInitCommand(cfg),
		commands.NewPlanCommand(cfg),
		commands.NewSyncCommand(cfg),
		commands.NewGetCommand(cfg),
		commands.NewDoctorCommand(cfg),
		commands.NewSigninCommand(cfg),
		commands.NewCompletionCommand(cfg),
	)

	return rootCmd.Execute()
}
