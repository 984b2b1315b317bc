package main

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mutagen-io/incbackup/internal/archiver"
	"github.com/mutagen-io/incbackup/internal/restoreplanner"
	"github.com/mutagen-io/incbackup/internal/state"
)

var historyConfiguration struct {
	password      string
	recoveryFiles []string
	yes           bool
}

var historyCommand = &cobra.Command{
	Use:   "history <archive-root>",
	Short: "Extract every archived version of one or more files into dated subdirectories",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	flags := historyCommand.Flags()
	flags.StringVarP(&historyConfiguration.password, "password", "p", "", "Archiver password")
	flags.StringArrayVarP(&historyConfiguration.recoveryFiles, "recovery-files", "f", nil, "Logical paths to pull history for (repeatable, or @listfile)")
	flags.BoolVarP(&historyConfiguration.yes, "yes", "y", false, "Skip the confirmation prompt")
}

func runHistory(command *cobra.Command, arguments []string) error {
	archiveRoot := arguments[0]
	logger := rootLogger()

	filter, err := resolveRecoveryFiles(historyConfiguration.recoveryFiles)
	if err != nil {
		return err
	}
	if len(filter) == 0 {
		return errors.New("history mode requires at least one --recovery-files path")
	}

	if !confirm(historyConfiguration.yes, "History will extract every archived version of the requested files.") {
		return nil
	}

	genRoot := archiveDir(archiveRoot)
	catalog, err := state.DiscoverCatalog(genRoot, time.Time{})
	if err != nil {
		return errors.Wrap(err, "unable to discover generation catalog")
	}

	destDir, err := os.Getwd()
	if err != nil {
		return errors.Wrap(err, "unable to determine working directory")
	}

	return withScratchDir(func(workDir string) error {
		executor := &restoreplanner.Executor{
			ArchiveRoot: genRoot,
			ScratchDir:  workDir,
			Archiver:    archiver.New(archiver.DefaultBinary, historyConfiguration.password, logger.Sublogger("archiver")),
			Logger:      logger.Sublogger("history"),
		}

		for path := range filter {
			versions, err := restoreplanner.HistoryVersions(genRoot, catalog, path)
			if err != nil {
				return err
			}
			if len(versions) == 0 {
				logger.Warnf("no archived versions found for %q", path)
				continue
			}
			if err := executor.History(context.Background(), destDir, versions); err != nil {
				return err
			}
		}
		return nil
	})
}
