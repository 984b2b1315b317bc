// Package restoreplanner computes, for a reconstructed state, the
// per-generation extraction lists and rename-redirect move plan described
// in spec.md Section 4.8, and drives their execution against an archiver.
package restoreplanner

import (
	"sort"
	"time"

	"github.com/mutagen-io/incbackup/internal/state"
)

// Item is one live path slated for extraction from a single generation.
type Item struct {
	LogicalPath string
	// StoredPath is the path under which the bytes live inside the
	// generation's archive: equal to LogicalPath unless the entry's
	// origin_path redirects it (Section 3).
	StoredPath string
	MTime      time.Time
	Compress   bool
}

// Redirected reports whether the item's bytes are stored under a path
// other than its current logical path.
func (i Item) Redirected() bool {
	return i.StoredPath != i.LogicalPath
}

// Generation groups every extraction Item belonging to one generation id,
// split into the four buckets Section 4.8 names.
type Generation struct {
	ID                     string
	CompressedDirect       []Item
	CompressedRedirected   []Item
	UncompressedDirect     []Item
	UncompressedRedirected []Item
}

// Plan partitions a reconstructed state into per-generation extraction
// buckets, restricted to filter when it is non-empty (Section 4.8).
// Generations are returned in ascending id order.
func Plan(st state.State, filter map[string]bool) []Generation {
	byGeneration := make(map[string][]Item)
	for logicalPath, entry := range st {
		if len(filter) > 0 && !filter[logicalPath] {
			continue
		}
		stored := logicalPath
		if entry.OriginPath != "" {
			stored = entry.OriginPath
		}
		byGeneration[entry.ArchiveNum] = append(byGeneration[entry.ArchiveNum], Item{
			LogicalPath: logicalPath,
			StoredPath:  stored,
			MTime:       entry.MTime,
			Compress:    entry.IsCompressed,
		})
	}

	ids := make([]string, 0, len(byGeneration))
	for id := range byGeneration {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	generations := make([]Generation, 0, len(ids))
	for _, id := range ids {
		items := byGeneration[id]
		sort.Slice(items, func(i, j int) bool { return items[i].LogicalPath < items[j].LogicalPath })

		gen := Generation{ID: id}
		for _, item := range items {
			switch {
			case item.Compress && !item.Redirected():
				gen.CompressedDirect = append(gen.CompressedDirect, item)
			case item.Compress && item.Redirected():
				gen.CompressedRedirected = append(gen.CompressedRedirected, item)
			case !item.Compress && !item.Redirected():
				gen.UncompressedDirect = append(gen.UncompressedDirect, item)
			default:
				gen.UncompressedRedirected = append(gen.UncompressedRedirected, item)
			}
		}
		generations = append(generations, gen)
	}
	return generations
}
