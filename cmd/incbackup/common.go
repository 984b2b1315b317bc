package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/mutagen-io/incbackup/internal/archivelayout"
	"github.com/mutagen-io/incbackup/internal/config"
	"github.com/mutagen-io/incbackup/internal/manifest"
	"github.com/mutagen-io/incbackup/internal/pathutil"
	"github.com/mutagen-io/incbackup/internal/state"
)

// defaultConfigName is the configuration file an archive root carries by
// default, loaded before any --config-file overrides.
const defaultConfigName = "backup_config.yaml"

// restoreTimeLayout matches the manifest's own timestamp format, so a
// --restore-time value can be copied straight out of a fileinfo.txt line.
const restoreTimeLayout = "2006/01/02-15:04:05"

// resolveConfigPaths builds the ordered list of configuration files to
// load: the archive root's default config file, followed by any
// --config-file values (resolved relative to archiveRoot unless already
// absolute), later entries overriding earlier ones field-by-field.
func resolveConfigPaths(archiveRoot string, extra []string) []string {
	paths := []string{filepath.Join(archiveRoot, defaultConfigName)}
	for _, p := range extra {
		if !filepath.IsAbs(p) {
			p = filepath.Join(archiveRoot, p)
		}
		paths = append(paths, p)
	}
	return paths
}

func loadConfig(archiveRoot string, extra []string) (*config.Configuration, error) {
	return config.Load(resolveConfigPaths(archiveRoot, extra))
}

// parseRestoreTime parses a --restore-time value, or returns the zero time
// (meaning "latest") when value is empty.
func parseRestoreTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(restoreTimeLayout, value, time.Local)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid --restore-time %q, expected YYYY/MM/DD-HH:MM:SS", value)
	}
	return t, nil
}

// resolveRecoveryFiles expands --recovery-files values: a value prefixed
// with "@" names a file of newline-separated paths; anything else is a
// literal path. Returns nil (meaning "no filter, operate on everything")
// when values is empty.
func resolveRecoveryFiles(values []string) (map[string]bool, error) {
	if len(values) == 0 {
		return nil, nil
	}

	filter := make(map[string]bool)
	for _, value := range values {
		if strings.HasPrefix(value, "@") {
			paths, err := readListFile(value[1:])
			if err != nil {
				return nil, err
			}
			for _, p := range paths {
				filter[pathutil.Normalize(p)] = true
			}
			continue
		}
		filter[pathutil.Normalize(value)] = true
	}
	return filter, nil
}

func readListFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open recovery file list %q", path)
	}
	defer file.Close()

	var paths []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			paths = append(paths, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "unable to read recovery file list %q", path)
	}
	return paths, nil
}

// archiveDir returns the generation-holding subdirectory of an archive
// root (Section 6's on-disk layout).
func archiveDir(archiveRoot string) string {
	return filepath.Join(archiveRoot, "archive")
}

// manifestLoader builds a state.ManifestLoader reading a generation's
// manifest from its standard location under an archive's generation
// directory.
func manifestLoader(genRoot string) state.ManifestLoader {
	return func(generationID string) ([]manifest.Record, error) {
		return manifest.Read(filepath.Join(genRoot, generationID, archivelayout.ManifestFileName))
	}
}

// withScratchDir creates a temporary scratch working directory, passes it
// to fn, and removes it on return, matching Section 5's "scratch working
// directory is created at startup and deleted on normal exit".
func withScratchDir(fn func(dir string) error) error {
	dir, err := os.MkdirTemp("", "incbackup-")
	if err != nil {
		return errors.Wrap(err, "unable to create scratch directory")
	}
	defer os.RemoveAll(dir)
	return fn(dir)
}

// confirm prompts the user to continue unless assumeYes is set, matching
// the original tool's "Restore/list continue OK? (Enter y)" gate.
func confirm(assumeYes bool, prompt string) bool {
	if assumeYes {
		return true
	}
	fmt.Print(prompt + " (y to continue): ")
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(strings.ToLower(line)) == "y"
}
