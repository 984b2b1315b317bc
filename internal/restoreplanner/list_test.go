package restoreplanner

import (
	"strings"
	"testing"
	"time"
)

func TestWriteListOrdersByLogicalPathAndMarksRedirects(t *testing.T) {
	mtime := time.Date(2026, 7, 31, 9, 0, 0, 0, time.UTC)
	generations := []Generation{
		{
			ID: "2026073100",
			CompressedDirect: []Item{
				{LogicalPath: "z.txt", StoredPath: "z.txt", MTime: mtime, Compress: true},
			},
			UncompressedRedirected: []Item{
				{LogicalPath: "a.txt", StoredPath: "original-a.txt", MTime: mtime, Compress: false},
			},
		},
	}

	var b strings.Builder
	if err := WriteList(&b, generations); err != nil {
		t.Fatalf("WriteList failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), b.String())
	}
	if !strings.HasPrefix(lines[0], "a.txt\t") {
		t.Errorf("expected a.txt first (sorted), got %q", lines[0])
	}
	if !strings.HasSuffix(lines[0], "\toriginal-a.txt") {
		t.Errorf("expected redirected source path suffix, got %q", lines[0])
	}
	if strings.Contains(lines[1], "\t\t") || strings.Count(lines[1], "\t") != 3 {
		t.Errorf("direct item should have no trailing source path field, got %q", lines[1])
	}
}
