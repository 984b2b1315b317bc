// Package pathutil canonicalizes path strings so that equality between two
// paths observed at different times (different OS separators, surrounding
// quotes inherited from the manifest codec, a trailing separator, differing
// Unicode normalization forms) is well-defined.
package pathutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize converts a path string to canonical form: forward slashes, no
// surrounding double quotes, no trailing separator, and NFC Unicode
// normalization (so that a path observed on a Unicode-decomposing filesystem
// compares equal to the same path observed elsewhere). An input that becomes
// empty after stripping is returned as "", the sentinel used throughout the
// manifest codec and reconstructor to mean "absent" (encoding ADD/DELETE).
func Normalize(path string) string {
	if path == "" {
		return ""
	}

	path = strings.ReplaceAll(path, "\\", "/")

	if len(path) >= 2 && path[0] == '"' && path[len(path)-1] == '"' {
		path = path[1 : len(path)-1]
	}

	for len(path) > 0 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	return norm.NFC.String(path)
}

// Less reports whether first sorts before second under plain byte-wise
// lexicographic ordering of the whole path string. It's used to produce
// deterministic iteration order where "first found wins" tie-breaking
// matters (diff engine move detection).
func Less(first, second string) bool {
	return first < second
}
