package restoreplanner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mutagen-io/incbackup/internal/archivelayout"
	"github.com/mutagen-io/incbackup/internal/hashutil"
	"github.com/mutagen-io/incbackup/internal/manifest"
	"github.com/mutagen-io/incbackup/internal/state"
)

func writeGenerationManifest(t *testing.T, archiveRoot, id string, records ...manifest.Record) {
	t.Helper()
	dir := filepath.Join(archiveRoot, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := manifest.Write(filepath.Join(dir, archivelayout.ManifestFileName), records, nil, nil, nil); err != nil {
		t.Fatalf("manifest.Write failed: %v", err)
	}
}

func TestHistoryVersionsIgnoresMoves(t *testing.T) {
	root := t.TempDir()
	mtime := time.Now()
	sha := hashutil.Digest{1}

	writeGenerationManifest(t, root, "2026073100", manifest.NewAdd("a.txt", mtime, true, sha))
	writeGenerationManifest(t, root, "2026073101", manifest.NewMove("a.txt", "b.txt", mtime, true, sha))

	catalog := state.Catalog{"2026073100": mtime, "2026073101": mtime}

	versions, err := HistoryVersions(root, catalog, "a.txt")
	if err != nil {
		t.Fatalf("HistoryVersions failed: %v", err)
	}
	if len(versions) != 1 || versions[0].GenerationID != "2026073100" {
		t.Fatalf("expected exactly one version from the ADD generation, got %+v", versions)
	}

	versions, err = HistoryVersions(root, catalog, "b.txt")
	if err != nil {
		t.Fatalf("HistoryVersions failed: %v", err)
	}
	if len(versions) != 0 {
		t.Errorf("a move's destination should not surface as a history version, got %+v", versions)
	}
}

func TestHistoryVersionsAcrossMultipleGenerations(t *testing.T) {
	root := t.TempDir()
	mtime := time.Now()
	sha1 := hashutil.Digest{1}
	sha2 := hashutil.Digest{2}

	writeGenerationManifest(t, root, "2026073100", manifest.NewAdd("a.txt", mtime, true, sha1))
	writeGenerationManifest(t, root, "2026073101", manifest.NewUpdate("a.txt", mtime, true, sha2))

	catalog := state.Catalog{"2026073100": mtime, "2026073101": mtime}

	versions, err := HistoryVersions(root, catalog, "a.txt")
	if err != nil {
		t.Fatalf("HistoryVersions failed: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("expected both the add and the update, got %+v", versions)
	}
	if versions[0].GenerationID != "2026073100" || versions[1].GenerationID != "2026073101" {
		t.Errorf("expected ascending generation order, got %+v", versions)
	}
}
