// Package diffengine compares the previously reconstructed state to a fresh
// scan and classifies the result into added/updated/deleted/moved sets,
// with content-hash-based move detection (spec.md Section 4.6).
package diffengine

import (
	"sort"
	"time"

	"github.com/mutagen-io/incbackup/internal/hashutil"
	"github.com/mutagen-io/incbackup/internal/logging"
	"github.com/mutagen-io/incbackup/internal/pathutil"
	"github.com/mutagen-io/incbackup/internal/state"
)

// Asymmetric mtime tolerance for update classification (Section 4.6 /
// Section 9 open question: exposed here as named constants).
const (
	updateToleranceOlder = 2 * time.Second
	updateToleranceNewer = 1 * time.Second
)

// Move is a (source, destination) path pair detected by content hash.
type Move struct {
	Src string
	Dst string
}

// Result is the classified output of a diff: paths to add (with their
// freshly computed digest), paths whose content changed in place, paths no
// longer present, and paths detected as renames.
type Result struct {
	Added   map[string]hashutil.Digest
	Updated []string
	Deleted []string
	Moved   []Move
}

// Diff compares prior (the previously reconstructed state) to fresh (the
// current scan's path -> mtime map), classifying every path per Section
// 4.6. Added paths are hashed as part of diffing (a hash failure is logged
// and drops the path); updated paths are not hashed here.
func Diff(prior state.State, fresh map[string]time.Time, hashFile func(string) (hashutil.Digest, error), logger *logging.Logger) Result {
	var addedCandidates, updatedCandidates, deletedCandidates []string

	for path, freshMTime := range fresh {
		priorEntry, existed := prior[path]
		if !existed {
			addedCandidates = append(addedCandidates, path)
			continue
		}
		if isUpdated(priorEntry.MTime, freshMTime) {
			updatedCandidates = append(updatedCandidates, path)
		}
	}
	for path := range prior {
		if _, stillPresent := fresh[path]; !stillPresent {
			deletedCandidates = append(deletedCandidates, path)
		}
	}

	// Sorted with pathutil.Less, not sort.Strings, so that move detection's
	// "first added path in iteration order wins" tie-break (below) agrees
	// with the canonical ordering the rest of the package uses for paths.
	sort.Slice(addedCandidates, func(i, j int) bool { return pathutil.Less(addedCandidates[i], addedCandidates[j]) })
	sort.Slice(updatedCandidates, func(i, j int) bool { return pathutil.Less(updatedCandidates[i], updatedCandidates[j]) })
	sort.Slice(deletedCandidates, func(i, j int) bool { return pathutil.Less(deletedCandidates[i], deletedCandidates[j]) })

	added := make(map[string]hashutil.Digest, len(addedCandidates))
	for _, path := range addedCandidates {
		digest, err := hashFile(path)
		if err != nil {
			logger.Warnf("unable to hash added file %q, dropping from this generation: %v", path, err)
			continue
		}
		added[path] = digest
	}

	moved, remainingAdded, remainingDeleted := detectMoves(added, addedCandidates, deletedCandidates, prior)

	return Result{
		Added:   remainingAdded,
		Updated: updatedCandidates,
		Deleted: remainingDeleted,
		Moved:   moved,
	}
}

// isUpdated applies the asymmetric tolerance from Section 4.6.
func isUpdated(priorMTime, freshMTime time.Time) bool {
	diff := priorMTime.Sub(freshMTime)
	return diff > updateToleranceOlder || diff < -updateToleranceNewer
}

// detectMoves reclassifies (deleted, added) pairs sharing a content digest
// as moves. Iteration proceeds in sorted path order on both sides so that
// the "first added path in iteration order wins" tie-break (Section 4.6) is
// deterministic.
func detectMoves(added map[string]hashutil.Digest, addedOrder, deletedCandidates []string, prior state.State) ([]Move, map[string]hashutil.Digest, []string) {
	// Index added paths by digest, preserving first-seen order for ties.
	byDigest := make(map[hashutil.Digest][]string)
	for _, path := range addedOrder {
		digest, ok := added[path]
		if !ok {
			continue // dropped during hashing
		}
		byDigest[digest] = append(byDigest[digest], path)
	}

	consumed := make(map[string]bool)
	var moves []Move
	remainingDeleted := make([]string, 0, len(deletedCandidates))

	for _, src := range deletedCandidates {
		srcEntry, ok := prior[src]
		if !ok {
			remainingDeleted = append(remainingDeleted, src)
			continue
		}
		candidates := byDigest[srcEntry.SHA]
		dst := ""
		for _, candidate := range candidates {
			if !consumed[candidate] {
				dst = candidate
				break
			}
		}
		if dst == "" {
			remainingDeleted = append(remainingDeleted, src)
			continue
		}
		consumed[dst] = true
		moves = append(moves, Move{Src: src, Dst: dst})
	}

	remainingAdded := make(map[string]hashutil.Digest, len(added))
	for path, digest := range added {
		if !consumed[path] {
			remainingAdded[path] = digest
		}
	}

	return moves, remainingAdded, remainingDeleted
}
