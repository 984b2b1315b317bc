// Package state implements the generation catalog and the deterministic
// fold of an ordered prefix of generation manifests into a live view of the
// backed-up filesystem tree (spec.md Sections 3-4.5).
package state

import (
	"time"

	"github.com/mutagen-io/incbackup/internal/hashutil"
)

// Entry is the reconstructed state for one live path, colocating the five
// per-path attributes described in Section 3 into a single record (per
// Section 9's design note) so that the five conceptual maps stay in
// lockstep.
type Entry struct {
	// MTime is the filesystem modification time recorded for this path.
	MTime time.Time
	// SHA is the content digest at the time of the last add/update.
	SHA hashutil.Digest
	// ArchiveNum is the generation id that physically holds the bytes.
	ArchiveNum string
	// IsCompressed indicates whether the bytes live in the compressed or
	// uncompressed archive of ArchiveNum.
	IsCompressed bool
	// OriginPath is "" (meaning: bytes stored under this path in
	// ArchiveNum) or a concrete path P (bytes stored under P in ArchiveNum;
	// this logical path is a rename of the stored path).
	OriginPath string
}

// State is the live view of the filesystem as of some fold cutoff: a
// mapping from canonical path to its reconstructed Entry.
type State map[string]Entry

// Clone returns a shallow copy of the state (Entry is a value type, so this
// is also a deep copy).
func (s State) Clone() State {
	clone := make(State, len(s))
	for k, v := range s {
		clone[k] = v
	}
	return clone
}
