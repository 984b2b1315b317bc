// Package archivelayout names the on-disk files inside a generation
// directory (spec.md Section 6), shared by the backup driver and the
// restore planner so the two sides of the pipeline can't drift apart.
package archivelayout

const (
	// ManifestFileName is the per-generation manifest file name.
	ManifestFileName = "fileinfo.txt"
	// CompressedArchiveName is the per-generation compressed (level 1)
	// archive base name; the archiver appends its own volume extensions
	// (.001, .002, ...).
	CompressedArchiveName = "comp_arch.7z"
	// UncompressedArchiveName is the per-generation uncompressed (level 0)
	// archive base name.
	UncompressedArchiveName = "nocomp_arch.7z"
)
