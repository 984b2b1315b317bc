package state

import (
	"github.com/pkg/errors"

	"github.com/mutagen-io/incbackup/internal/manifest"
)

// ManifestLoader reads the manifest records for a given generation id,
// abstracting the manifest codec and the on-disk layout (Section 6) so that
// the reconstructor doesn't need to know file naming conventions.
type ManifestLoader func(generationID string) ([]manifest.Record, error)

// Reconstruct folds the manifests of every generation in catalog (in
// ascending generation-id order, per Section 4.5 and P1) into a live State.
// It fails loudly if a MOVE or DELETE record references a path absent from
// the state accumulated so far, per Section 4.5's precondition and the
// error-handling table's "Missing referenced path in reconstructor: Fatal".
func Reconstruct(catalog Catalog, load ManifestLoader) (State, error) {
	live := make(State)

	for _, generationID := range catalog.Ordered() {
		records, err := load(generationID)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to load manifest for generation %s", generationID)
		}
		for _, record := range records {
			if err := apply(live, generationID, record); err != nil {
				return nil, errors.Wrapf(err, "corrupt manifest in generation %s", generationID)
			}
		}
	}

	return live, nil
}

// apply folds a single record into live, per Section 4.5.
func apply(live State, generationID string, record manifest.Record) error {
	oldp, newp := record.PrevPath, record.NewPath

	switch {
	case oldp != "" && newp != "" && oldp != newp:
		// Move: copy sha/archive/compression from the source entry, set the
		// new mtime, and compute the (possibly collapsing) origin path.
		source, ok := live[oldp]
		if !ok {
			return errors.Errorf("move references unknown path %q", oldp)
		}

		origin := oldp
		if source.OriginPath != "" {
			origin = source.OriginPath
		}
		if origin == newp {
			origin = ""
		}

		live[newp] = Entry{
			MTime:        record.MTime,
			SHA:          source.SHA,
			ArchiveNum:   source.ArchiveNum,
			IsCompressed: source.IsCompressed,
			OriginPath:   origin,
		}
		delete(live, oldp)

	case newp != "" && (oldp == "" || oldp == newp):
		// Add, or update in place: a fresh entry rooted in this generation.
		// Update carries no history of the prior bytes (invariant I4 applies
		// equally here), so it's handled identically to add.
		live[newp] = Entry{
			MTime:        record.MTime,
			SHA:          record.SHA,
			ArchiveNum:   generationID,
			IsCompressed: record.Compress,
			OriginPath:   "",
		}

	case newp == "" && oldp != "":
		// Delete: remove every attribute for the path.
		if _, ok := live[oldp]; !ok {
			return errors.Errorf("delete references unknown path %q", oldp)
		}
		delete(live, oldp)

	default:
		return errors.New("record has neither a previous nor a new path")
	}

	return nil
}
