// Package scanner walks the configured backup roots, honoring per-root
// reject patterns and stop-folders, and produces a {canonical path -> mtime}
// map for every regular file encountered (spec.md Section 4.3).
package scanner

import (
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/mutagen-io/incbackup/internal/config"
	"github.com/mutagen-io/incbackup/internal/logging"
	"github.com/mutagen-io/incbackup/internal/pathutil"
)

// Scan walks every configured root in cfg, relative to the current working
// directory (the backup driver is responsible for chdir-ing into the source
// root first, per Section 4.7 step 1), and returns the mtime of every
// regular file found.
func Scan(cfg *config.Configuration, logger *logging.Logger) (map[string]time.Time, error) {
	mtimes := make(map[string]time.Time)

	for _, root := range cfg.Roots {
		patterns, err := compilePatterns(cfg.RejectPatterns[root])
		if err != nil {
			logger.Warnf("skipping root %q: invalid reject pattern: %v", root, err)
			continue
		}

		info, err := os.Stat(root)
		if err != nil {
			logger.Warnf("configured path %q is missing: %v", root, err)
			continue
		}

		if !info.IsDir() {
			mtimes[pathutil.Normalize(root)] = info.ModTime()
			continue
		}

		walkDir(root, patterns, cfg.StopFolders, mtimes, logger)
	}

	return mtimes, nil
}

// compilePatterns compiles a root's configured reject regular expressions.
func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// walkDir recursively walks folder, honoring reject patterns and the
// stop-folder set, accumulating results into mtimes.
func walkDir(folder string, patterns []*regexp.Regexp, stopFolders map[string]bool, mtimes map[string]time.Time, logger *logging.Logger) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		logger.Warnf("permission error listing %q: %v", folder, err)
		return
	}

	for _, entry := range entries {
		full := filepath.Join(folder, entry.Name())

		if rejected(full, patterns) {
			continue
		}

		if entry.IsDir() {
			if stopFolders[full] || stopFolders[full+"/"] {
				continue
			}
			walkDir(full, patterns, stopFolders, mtimes, logger)
			continue
		}

		if isSymlink(entry) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			logger.Warnf("permission error stat-ing %q: %v", full, err)
			continue
		}
		mtimes[pathutil.Normalize(full)] = info.ModTime()
	}
}

func rejected(path string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

func isSymlink(entry os.DirEntry) bool {
	return entry.Type()&os.ModeSymlink != 0
}
