// Package verifier rehashes the live filesystem tree against the latest
// reconstructed state and classifies discrepancies, per spec.md Section
// 4.9.
package verifier

import (
	"os"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/mutagen-io/incbackup/internal/config"
	"github.com/mutagen-io/incbackup/internal/ctime"
	"github.com/mutagen-io/incbackup/internal/hashutil"
	"github.com/mutagen-io/incbackup/internal/logging"
	"github.com/mutagen-io/incbackup/internal/scanner"
	"github.com/mutagen-io/incbackup/internal/state"
)

// Result reports the four discrepancy classes Section 4.9 names.
type Result struct {
	// Mismatched are paths present in both state and the live tree whose
	// content digest no longer matches the recorded one.
	Mismatched []string
	// Missing are paths present in state but absent from the live tree.
	Missing []string
	// Untracked are live paths absent from state whose filesystem change
	// time postdates the latest generation's creation: legitimately added
	// since the last backup.
	Untracked []string
	// Unknown are live paths absent from state whose change time predates
	// the latest generation: potential corruption or configuration drift.
	Unknown []string
}

// Verify rehashes every entry in latest (the state reconstructed up to and
// including the latest generation) against the live tree scanned per cfg,
// and classifies every live path the state doesn't know about by change
// time relative to latestGenerationTime (the latest generation directory's
// modification time, as recorded in the catalog).
func Verify(cfg *config.Configuration, latest state.State, latestGenerationTime time.Time, logger *logging.Logger) (*Result, error) {
	result := &Result{}

	prevDir, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "unable to determine working directory")
	}
	if err := os.Chdir(cfg.SourceRoot); err != nil {
		return nil, errors.Wrapf(err, "unable to enter source root %q", cfg.SourceRoot)
	}
	defer os.Chdir(prevDir)

	live, err := scanner.Scan(cfg, logger)
	if err != nil {
		return nil, err
	}

	for path := range latest {
		if _, present := live[path]; !present {
			result.Missing = append(result.Missing, path)
			continue
		}
		digest, err := hashutil.HashFile(path)
		if err != nil {
			logger.Warnf("unable to rehash %q, treating as missing: %v", path, err)
			result.Missing = append(result.Missing, path)
			continue
		}
		if digest != latest[path].SHA {
			result.Mismatched = append(result.Mismatched, path)
		}
	}

	for path := range live {
		if _, known := latest[path]; known {
			continue
		}
		changed, err := ctime.Of(path)
		if err != nil {
			logger.Warnf("unable to stat %q, classifying as unknown: %v", path, err)
			result.Unknown = append(result.Unknown, path)
			continue
		}
		if changed.After(latestGenerationTime) {
			result.Untracked = append(result.Untracked, path)
		} else {
			result.Unknown = append(result.Unknown, path)
		}
	}

	sort.Strings(result.Mismatched)
	sort.Strings(result.Missing)
	sort.Strings(result.Untracked)
	sort.Strings(result.Unknown)

	return result, nil
}
