package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mutagen-io/incbackup/internal/state"
	"github.com/mutagen-io/incbackup/internal/verifier"
)

var verifyConfiguration struct {
	configFiles []string
}

var verifyCommand = &cobra.Command{
	Use:   "verify <archive-root>",
	Short: "Rehash the live tree against the latest generation and report discrepancies",
	Args:  cobra.ExactArgs(1),
	RunE:  runVerify,
}

func init() {
	flags := verifyCommand.Flags()
	flags.StringArrayVarP(&verifyConfiguration.configFiles, "config-file", "c", nil, "Additional configuration file (repeatable, later overrides earlier)")
}

func runVerify(command *cobra.Command, arguments []string) error {
	archiveRoot := arguments[0]
	logger := rootLogger()

	cfg, err := loadConfig(archiveRoot, verifyConfiguration.configFiles)
	if err != nil {
		return errors.Wrap(err, "unable to load configuration")
	}

	genRoot := archiveDir(archiveRoot)
	catalog, err := state.DiscoverCatalog(genRoot, time.Time{})
	if err != nil {
		return errors.Wrap(err, "unable to discover generation catalog")
	}

	var latestGenerationTime time.Time
	if ids := catalog.Ordered(); len(ids) > 0 {
		latest := ids[len(ids)-1]
		latestGenerationTime = catalog[latest]
		fmt.Printf("verifying against generation %s (%s)\n", latest, humanize.Time(latestGenerationTime))
	}

	latest, err := state.Reconstruct(catalog, manifestLoader(genRoot))
	if err != nil {
		return errors.Wrap(err, "unable to reconstruct latest state")
	}

	result, err := verifier.Verify(cfg, latest, latestGenerationTime, logger.Sublogger("verify"))
	if err != nil {
		return err
	}
	reportVerifyResult(result)
	return nil
}

func reportVerifyResult(result *verifier.Result) {
	printSection := func(title string, paths []string) {
		if len(paths) == 0 {
			return
		}
		fmt.Println(title)
		for _, p := range paths {
			fmt.Println("  " + p)
		}
	}
	printSection("mismatched:", result.Mismatched)
	printSection("missing:", result.Missing)
	printSection("untracked:", result.Untracked)
	printSection("unknown:", result.Unknown)

	if len(result.Mismatched) == 0 && len(result.Missing) == 0 && len(result.Untracked) == 0 && len(result.Unknown) == 0 {
		fmt.Println("verify: no discrepancies found")
	}
}
