package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mutagen-io/incbackup/internal/backupdriver"
)

var emptyConfiguration struct {
	configFiles []string
}

var emptyCommand = &cobra.Command{
	Use:   "empty <archive-root>",
	Short: "Record the current state as a new generation without storing any bytes",
	Args:  cobra.ExactArgs(1),
	RunE:  runEmpty,
}

func init() {
	flags := emptyCommand.Flags()
	flags.StringArrayVarP(&emptyConfiguration.configFiles, "config-file", "c", nil, "Additional configuration file (repeatable, later overrides earlier)")
}

func runEmpty(command *cobra.Command, arguments []string) error {
	archiveRoot := arguments[0]
	logger := rootLogger()

	cfg, err := loadConfig(archiveRoot, emptyConfiguration.configFiles)
	if err != nil {
		return errors.Wrap(err, "unable to load configuration")
	}

	driver := &backupdriver.Driver{
		ArchiveRoot: archiveRoot,
		Config:      cfg,
		Logger:      logger.Sublogger("backup"),
		Empty:       true,
	}

	summary, err := driver.Run(context.Background())
	if err != nil {
		return err
	}
	reportBackupSummary(summary)
	return nil
}
