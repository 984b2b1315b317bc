package restoreplanner

import (
	"path/filepath"

	"github.com/mutagen-io/incbackup/internal/archivelayout"
	"github.com/mutagen-io/incbackup/internal/manifest"
	"github.com/mutagen-io/incbackup/internal/state"
)

// HistoryVersion is one ADD/UPDATE record found for a logical path, naming
// the generation whose manifest wrote it.
type HistoryVersion struct {
	GenerationID string
	Record       manifest.Record
}

// HistoryVersions scans every generation's manifest, in ascending id
// order, for ADD/UPDATE records whose new_path equals path exactly. MOVE
// records are ignored, matching the original tool's behavior of skipping
// renames when resolving a recovery file for history mode.
func HistoryVersions(archiveRoot string, catalog state.Catalog, path string) ([]HistoryVersion, error) {
	var versions []HistoryVersion
	for _, id := range catalog.Ordered() {
		manifestPath := filepath.Join(archiveRoot, id, archivelayout.ManifestFileName)
		records, err := manifest.Read(manifestPath)
		if err != nil {
			continue
		}
		for _, record := range records {
			switch record.Kind() {
			case manifest.KindAdd, manifest.KindUpdate:
				if record.NewPath == path {
					versions = append(versions, HistoryVersion{GenerationID: id, Record: record})
				}
			}
		}
	}
	return versions, nil
}
