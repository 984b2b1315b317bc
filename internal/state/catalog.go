package state

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"
)

// generationIDPattern matches the 10-digit decimal generation identifier
// grammar from Section 3.
var generationIDPattern = regexp.MustCompile(`^\d{10}$`)

// Catalog maps a generation id to the storage-layer mtime of its directory,
// used only to honor a recovery-time cutoff (Section 3).
type Catalog map[string]time.Time

// DiscoverCatalog enumerates the subdirectories of archiveRoot whose names
// match the 10-digit generation id pattern, recording each one's directory
// mtime. If cutoff is non-zero, generations whose directory mtime is after
// cutoff are excluded, matching the original tool's recovery-time filter
// (Section 3, Section 9 open question).
func DiscoverCatalog(archiveRoot string, cutoff time.Time) (Catalog, error) {
	entries, err := os.ReadDir(archiveRoot)
	if err != nil {
		return nil, err
	}

	catalog := make(Catalog)
	for _, entry := range entries {
		if !entry.IsDir() || !generationIDPattern.MatchString(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !cutoff.IsZero() && info.ModTime().After(cutoff) {
			continue
		}
		catalog[entry.Name()] = info.ModTime()
	}
	return catalog, nil
}

// Ordered returns the catalog's generation ids in ascending (creation-time)
// order, which for this identifier grammar is simple lexicographic order
// (Section 3).
func (c Catalog) Ordered() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NextGenerationID chooses the smallest two-digit sequence number not
// already present for today's date, per Section 3's
// "YYYYMMDDNN...smallest integer not already present" rule.
func NextGenerationID(catalog Catalog, today time.Time) string {
	prefix := today.Format("20060102")
	for seq := 0; seq < 100; seq++ {
		id := fmt.Sprintf("%s%02d", prefix, seq)
		if _, exists := catalog[id]; !exists {
			return id
		}
	}
	// Exhausting 100 sequence numbers in a single day is outside the
	// grammar's range; the original tool has no fallback either.
	return prefix + "99"
}

// GenerationDir returns the path of generation id's directory under
// archiveRoot.
func GenerationDir(archiveRoot, id string) string {
	return filepath.Join(archiveRoot, id)
}

// RefineCutoffByManifest drops any generation from catalog whose first
// manifest record postdates cutoff, per Section 9's open question: an
// alternative to the default directory-mtime cutoff, for callers where a
// generation directory's own mtime was touched after creation. Not used
// by the default catalog path; DiscoverCatalog's directory-mtime cutoff
// remains the default to match the original tool's behavior exactly.
func RefineCutoffByManifest(catalog Catalog, cutoff time.Time, load ManifestLoader) (Catalog, error) {
	refined := make(Catalog, len(catalog))
	for id, dirMTime := range catalog {
		records, err := load(id)
		if err != nil {
			return nil, err
		}
		if len(records) > 0 && records[0].MTime.After(cutoff) {
			continue
		}
		refined[id] = dirMTime
	}
	return refined, nil
}
