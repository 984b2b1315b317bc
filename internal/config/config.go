// Package config loads and merges the backup_config.yaml configuration that
// lives at the root of an archive tree. The on-disk format is YAML (an
// ambient, library-backed replacement for the original tool's hand-rolled
// comma-separated grammar); the semantics it encodes are exactly those of
// spec.md Section 3: a source root, a set of non-compressing extensions, and
// an ordered list of (subpath, reject patterns) entries.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/mutagen-io/incbackup/internal/filesystem"
)

// stopAllPatterns are the two reject-pattern spellings that mean "do not
// descend into this subpath at all" (Section 3/4.1/GLOSSARY "Stop-folder").
var stopAllPatterns = map[string]bool{
	".+": true,
	".*": true,
}

// Root describes one configured backup subpath and its reject patterns.
type Root struct {
	// Path is the root-relative (or absolute, for a standalone file) path of
	// this configured entry.
	Path string `yaml:"path"`
	// Reject is the ordered list of regular expressions matched against
	// encountered path strings during traversal.
	Reject []string `yaml:"reject,omitempty"`
}

// YAMLConfiguration is the on-disk shape of backup_config.yaml.
type YAMLConfiguration struct {
	// SourceRoot is the filesystem tree being backed up.
	SourceRoot string `yaml:"sourceRoot"`
	// NoCompressExtensions lists file extensions (without the leading dot,
	// case-insensitive) whose bytes are stored in the uncompressed archive.
	NoCompressExtensions []string `yaml:"noCompressExtensions,omitempty"`
	// Roots is the ordered list of configured backup subpaths.
	Roots []Root `yaml:"roots"`
}

// Configuration is the resolved, ready-to-use configuration.
type Configuration struct {
	SourceRoot           string
	NoCompressExtensions map[string]bool
	// Roots preserves configuration order; RejectPatterns is keyed by
	// (canonical) subpath.
	Roots          []string
	RejectPatterns map[string][]string
	// StopFolders is the set of subpaths whose reject pattern list was
	// exactly [".+"] or [".*"] (Section 3); their RejectPatterns entry is
	// kept as well.
	StopFolders map[string]bool
}

// Load reads and merges one or more YAML configuration files in order; later
// files override earlier ones on a field-by-field basis for SourceRoot and
// NoCompressExtensions, and on a whole-root basis (by Path) for Roots.
func Load(paths []string) (*Configuration, error) {
	if len(paths) == 0 {
		return nil, errors.New("no configuration files specified")
	}

	merged := YAMLConfiguration{}
	rootOrder := []string{}
	rootIndex := map[string]int{}

	for _, path := range paths {
		var loaded YAMLConfiguration
		if err := filesystem.LoadAndUnmarshalYAML(path, &loaded); err != nil {
			return nil, errors.Wrapf(err, "unable to load configuration file %q", path)
		}

		if loaded.SourceRoot != "" {
			merged.SourceRoot = loaded.SourceRoot
		}
		if len(loaded.NoCompressExtensions) > 0 {
			merged.NoCompressExtensions = loaded.NoCompressExtensions
		}
		for _, root := range loaded.Roots {
			if idx, ok := rootIndex[root.Path]; ok {
				merged.Roots[idx] = root
			} else {
				rootIndex[root.Path] = len(merged.Roots)
				merged.Roots = append(merged.Roots, root)
				rootOrder = append(rootOrder, root.Path)
			}
		}
	}

	if merged.SourceRoot == "" {
		return nil, errors.New("configuration is missing a sourceRoot")
	}

	result := &Configuration{
		SourceRoot:           merged.SourceRoot,
		NoCompressExtensions: make(map[string]bool, len(merged.NoCompressExtensions)),
		Roots:                rootOrder,
		RejectPatterns:       make(map[string][]string, len(merged.Roots)),
		StopFolders:          make(map[string]bool),
	}
	for _, ext := range merged.NoCompressExtensions {
		result.NoCompressExtensions[strings.ToLower(ext)] = true
	}
	for _, root := range merged.Roots {
		result.RejectPatterns[root.Path] = root.Reject
		if isStopAll(root.Reject) {
			result.StopFolders[root.Path] = true
		}
	}

	return result, nil
}

// isStopAll reports whether a reject pattern list is exactly one of the two
// "stop descending" spellings.
func isStopAll(patterns []string) bool {
	if len(patterns) != 1 {
		return false
	}
	return stopAllPatterns[patterns[0]]
}

// IsCompressible reports whether a path's extension is absent from the
// configured non-compressing extension set (Section 4.7 step 6).
func (c *Configuration) IsCompressible(path string) bool {
	ext := extensionOf(path)
	return !c.NoCompressExtensions[strings.ToLower(ext)]
}

func extensionOf(path string) string {
	idx := strings.LastIndexByte(path, '.')
	if idx == -1 || idx == len(path)-1 {
		return ""
	}
	return path[idx+1:]
}
