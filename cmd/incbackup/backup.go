package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mutagen-io/incbackup/internal/archiver"
	"github.com/mutagen-io/incbackup/internal/backupdriver"
)

var backupConfiguration struct {
	configFiles  []string
	password     string
	deleteOnFail bool
}

var backupCommand = &cobra.Command{
	Use:   "backup <archive-root>",
	Short: "Scan configured trees and record a new generation against an archive root",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackup,
}

func init() {
	flags := backupCommand.Flags()
	flags.StringArrayVarP(&backupConfiguration.configFiles, "config-file", "c", nil, "Additional configuration file (repeatable, later overrides earlier)")
	flags.StringVarP(&backupConfiguration.password, "password", "p", "", "Archiver password")
	flags.BoolVar(&backupConfiguration.deleteOnFail, "delete-on-fail", false, "Remove the generation directory if the archiver fails")
}

func runBackup(command *cobra.Command, arguments []string) error {
	archiveRoot := arguments[0]
	logger := rootLogger()

	cfg, err := loadConfig(archiveRoot, backupConfiguration.configFiles)
	if err != nil {
		return errors.Wrap(err, "unable to load configuration")
	}

	return withScratchDir(func(workDir string) error {
		driver := &backupdriver.Driver{
			ArchiveRoot:  archiveRoot,
			Config:       cfg,
			Archiver:     archiver.New(archiver.DefaultBinary, backupConfiguration.password, logger.Sublogger("archiver")),
			Logger:       logger.Sublogger("backup"),
			DeleteOnFail: backupConfiguration.deleteOnFail,
			WorkDir:      workDir,
		}

		summary, err := driver.Run(context.Background())
		if err != nil {
			return err
		}
		reportBackupSummary(summary)
		return nil
	})
}

func reportBackupSummary(summary *backupdriver.Summary) {
	if summary.NothingToDo {
		fmt.Println("nothing to do: no changes detected")
		return
	}
	fmt.Printf(
		"generation %s: %d added, %d updated, %d deleted, %d moved\n",
		summary.GenerationID, len(summary.Added), len(summary.Updated), len(summary.Deleted), len(summary.Moved),
	)
	if summary.ArchiveFailed {
		fmt.Println("archiver invocation failed; see the error logged above")
	}
}
