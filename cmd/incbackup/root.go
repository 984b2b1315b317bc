package main

import (
	"github.com/spf13/cobra"

	"github.com/mutagen-io/incbackup/internal/logging"
)

var rootConfiguration struct {
	// logLevel selects the root logger's verbosity.
	logLevel string
	// waitSecs pauses the process before exit, preserved for parity with
	// the original tool's double-clicked-from-a-file-manager usage.
	waitSecs float64
}

var rootCommand = &cobra.Command{
	Use:           "incbackup",
	Short:         "incbackup performs incremental, content-addressed filesystem backups",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCommand.PersistentFlags()
	flags.StringVarP(&rootConfiguration.logLevel, "log-level", "l", "warn", "Set logging level (disabled|error|warn|info|debug)")
	flags.Float64VarP(&rootConfiguration.waitSecs, "wait-sec", "w", 0, "Pause this many seconds before exiting")

	// Disable Cobra's command sorting behavior so subcommands appear in
	// the order they're registered (mode order, matching the original
	// tool's usage line).
	cobra.EnableCommandSorting = false

	rootCommand.AddCommand(
		backupCommand,
		emptyCommand,
		restoreCommand,
		listCommand,
		historyCommand,
		verifyCommand,
	)
}

// rootLogger resolves the configured --log-level into a logger shared by
// every subcommand's run.
func rootLogger() *logging.Logger {
	level, ok := logging.NameToLevel(rootConfiguration.logLevel)
	if !ok {
		level = logging.LevelWarn
	}
	return logging.New(level)
}
