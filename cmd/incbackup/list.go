package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mutagen-io/incbackup/internal/restoreplanner"
	"github.com/mutagen-io/incbackup/internal/state"
)

var listConfiguration struct {
	restoreTime   string
	recoveryFiles []string
	yes           bool
}

var listCommand = &cobra.Command{
	Use:   "list <archive-root>",
	Short: "Report what a restore as of a point in time would extract, without extracting",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

func init() {
	flags := listCommand.Flags()
	flags.StringVarP(&listConfiguration.restoreTime, "restore-time", "t", "", "List as of this time (YYYY/MM/DD-HH:MM:SS); default is latest")
	flags.StringArrayVarP(&listConfiguration.recoveryFiles, "recovery-files", "f", nil, "Restrict listing to these paths (repeatable, or @listfile)")
	flags.BoolVarP(&listConfiguration.yes, "yes", "y", false, "Skip the confirmation prompt")
}

func runList(command *cobra.Command, arguments []string) error {
	archiveRoot := arguments[0]

	cutoff, err := parseRestoreTime(listConfiguration.restoreTime)
	if err != nil {
		return err
	}

	filter, err := resolveRecoveryFiles(listConfiguration.recoveryFiles)
	if err != nil {
		return err
	}

	if !confirm(listConfiguration.yes, "List will read the generation catalog.") {
		fmt.Println("aborted")
		return nil
	}

	genRoot := archiveDir(archiveRoot)
	catalog, err := state.DiscoverCatalog(genRoot, cutoff)
	if err != nil {
		return errors.Wrap(err, "unable to discover generation catalog")
	}
	if ids := catalog.Ordered(); len(ids) > 0 {
		latest := ids[len(ids)-1]
		fmt.Fprintf(os.Stderr, "%d generations, latest %s (%s)\n", len(ids), latest, humanize.Time(catalog[latest]))
	}

	target, err := state.Reconstruct(catalog, manifestLoader(genRoot))
	if err != nil {
		return errors.Wrap(err, "unable to reconstruct target state")
	}

	generations := restoreplanner.Plan(target, filter)
	return restoreplanner.WriteList(os.Stdout, generations)
}
