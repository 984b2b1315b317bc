package restoreplanner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/mutagen-io/incbackup/internal/archiver"
	"github.com/mutagen-io/incbackup/internal/logging"
	"github.com/mutagen-io/incbackup/internal/manifest"
)

// fakeArchiverScript extracts a posix shell archiver stand-in. In files-only
// ("e") mode it touches a same-named file (by basename) under the output
// directory; in full-path ("x") mode it recreates the listed path's
// directory structure instead, simulating the two extraction modes without
// needing a real archive or a real archiver binary in the test environment.
// With no -o flag (direct extraction passes none) it writes relative to the
// process's current directory, matching the archiver's own behavior.
const fakeArchiverScript = `#!/bin/sh
mode="$1"
outdir=""
listfile=""
for arg in "$@"; do
  case "$arg" in
    -o*) outdir="${arg#-o}" ;;
    @*) listfile="${arg#@}" ;;
  esac
done
if [ -z "$outdir" ]; then
  outdir="."
fi
if [ -n "$listfile" ]; then
  mkdir -p "$outdir"
  while IFS= read -r line; do
    name=$(echo "$line" | tr -d '"')
    if [ "$mode" = "x" ]; then
      dest="$outdir/$name"
    else
      dest="$outdir/$(basename "$name")"
    fi
    mkdir -p "$(dirname "$dest")"
    echo staged > "$dest"
  done < "$listfile"
fi
exit 0
`

func newFakeExecutor(t *testing.T) *Executor {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake archiver script is posix shell only")
	}
	scriptPath := filepath.Join(t.TempDir(), "fake-archiver.sh")
	if err := os.WriteFile(scriptPath, []byte(fakeArchiverScript), 0o755); err != nil {
		t.Fatalf("unable to write fake archiver script: %v", err)
	}

	archiveRoot := t.TempDir()
	if err := os.MkdirAll(filepath.Join(archiveRoot, "2026073100"), 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	return &Executor{
		ArchiveRoot: archiveRoot,
		ScratchDir:  t.TempDir(),
		Archiver:    archiver.New(scriptPath, "", logging.New(logging.LevelDisabled)),
		Mode:        archiver.ExtractFilesOnly,
		Overwrite:   true,
		Logger:      logging.New(logging.LevelDisabled),
	}
}

func TestExecutorRunRelocatesRedirectedItems(t *testing.T) {
	exec := newFakeExecutor(t)

	destDir := t.TempDir()
	logical := filepath.Join(destDir, "renamed.txt")

	generations := []Generation{
		{
			ID: "2026073100",
			UncompressedRedirected: []Item{
				{LogicalPath: logical, StoredPath: "original.txt"},
			},
		},
	}

	if err := exec.Run(context.Background(), generations); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if _, err := os.Stat(logical); err != nil {
		t.Fatalf("expected relocated file at %q: %v", logical, err)
	}
}

func TestExecutorRunRelocatesRedirectedItemsWithColliding(t *testing.T) {
	exec := newFakeExecutor(t)

	destDir := t.TempDir()
	logicalA := filepath.Join(destDir, "a-renamed.txt")
	logicalB := filepath.Join(destDir, "b-renamed.txt")

	generations := []Generation{
		{
			ID: "2026073100",
			UncompressedRedirected: []Item{
				{LogicalPath: logicalA, StoredPath: "dir-a/same-name.txt"},
				{LogicalPath: logicalB, StoredPath: "dir-b/same-name.txt"},
			},
		},
	}

	if err := exec.Run(context.Background(), generations); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if _, err := os.Stat(logicalA); err != nil {
		t.Fatalf("expected relocated file at %q: %v", logicalA, err)
	}
	if _, err := os.Stat(logicalB); err != nil {
		t.Fatalf("expected relocated file at %q: %v", logicalB, err)
	}
}

func TestExecutorRunDirectExtractionPreservesNestedPath(t *testing.T) {
	exec := newFakeExecutor(t)
	exec.Mode = archiver.ExtractFullPath

	destDir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	if err := os.Chdir(destDir); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	defer os.Chdir(wd)

	generations := []Generation{
		{
			ID: "2026073100",
			UncompressedDirect: []Item{
				{LogicalPath: filepath.Join(destDir, "docs", "readme.txt"), StoredPath: "docs/readme.txt"},
			},
		},
	}

	if err := exec.Run(context.Background(), generations); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	nested := filepath.Join(destDir, "docs", "readme.txt")
	if _, err := os.Stat(nested); err != nil {
		t.Fatalf("expected full-path extraction at %q, got: %v", nested, err)
	}
	flattened := filepath.Join(destDir, "readme.txt")
	if _, err := os.Stat(flattened); err == nil {
		t.Errorf("direct extraction flattened %q into %q instead of preserving its directory", nested, flattened)
	}
}

func TestExecutorHistoryExtractsIntoPerGenerationDirectory(t *testing.T) {
	exec := newFakeExecutor(t)
	destDir := t.TempDir()

	versions := []HistoryVersion{
		{GenerationID: "2026073100", Record: manifest.Record{NewPath: "doc.txt"}},
	}

	if err := exec.History(context.Background(), destDir, versions); err != nil {
		t.Fatalf("History failed: %v", err)
	}

	want := filepath.Join(destDir, "doc.txt", "2026073100")
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("expected history extraction at %q: %v", want, err)
	}
}
