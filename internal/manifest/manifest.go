// Package manifest implements the per-generation change manifest: the
// text, line-oriented record format described in spec.md Section 4.4 and
// the wire grammar in Section 6.
package manifest

import (
	"time"

	"github.com/mutagen-io/incbackup/internal/hashutil"
)

// timeLayout is the manifest's local-time timestamp format.
const timeLayout = "2006/01/02-15:04:05"

// deletedMTime is the sentinel mtime field written for DELETE records.
const deletedMTime = "-1"

// Kind classifies a manifest record as one of the four semantic kinds
// described in Section 3.
type Kind int

const (
	// KindAdd is ADD(new_path, mtime, compress_flag, sha256).
	KindAdd Kind = iota
	// KindUpdate is UPDATE(path, mtime, compress_flag, sha256).
	KindUpdate
	// KindDelete is DELETE(prev_path).
	KindDelete
	// KindMove is MOVE(prev_path, new_path, mtime, compress_flag, sha256).
	KindMove
)

// Record is one manifest line, already decoded from its text form. Kind is
// derived from which of PrevPath/NewPath are present and whether they
// differ, the same classification the reconstructor applies (Section 3).
type Record struct {
	PrevPath string
	NewPath  string
	MTime    time.Time
	Deleted  bool
	Compress bool
	SHA      hashutil.Digest
}

// Kind classifies the record per Section 3's ADD/UPDATE/DELETE/MOVE grammar.
func (r Record) Kind() Kind {
	switch {
	case r.NewPath == "":
		return KindDelete
	case r.PrevPath == "":
		return KindAdd
	case r.PrevPath == r.NewPath:
		return KindUpdate
	default:
		return KindMove
	}
}

// NewAdd constructs an ADD record.
func NewAdd(path string, mtime time.Time, compress bool, sha hashutil.Digest) Record {
	return Record{NewPath: path, MTime: mtime, Compress: compress, SHA: sha}
}

// NewUpdate constructs an UPDATE record.
func NewUpdate(path string, mtime time.Time, compress bool, sha hashutil.Digest) Record {
	return Record{PrevPath: path, NewPath: path, MTime: mtime, Compress: compress, SHA: sha}
}

// NewDelete constructs a DELETE record.
func NewDelete(path string, compress bool) Record {
	return Record{PrevPath: path, Deleted: true, Compress: compress}
}

// NewMove constructs a MOVE record.
func NewMove(prev, next string, mtime time.Time, compress bool, sha hashutil.Digest) Record {
	return Record{PrevPath: prev, NewPath: next, MTime: mtime, Compress: compress, SHA: sha}
}

// flagChar returns the manifest's C/N compression flag character.
func flagChar(compress bool) string {
	if compress {
		return "C"
	}
	return "N"
}
