package archiver

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/mutagen-io/incbackup/internal/logging"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake archiver scripts are posix shell only")
	}
	path := filepath.Join(t.TempDir(), "fake-archiver.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("unable to write fake archiver script: %v", err)
	}
	return path
}

func TestAddSucceeds(t *testing.T) {
	script := writeScript(t, "echo got: \"$@\"\nexit 0\n")
	a := New(script, "", logging.New(logging.LevelDisabled))

	listPath := filepath.Join(t.TempDir(), "list.txt")
	if err := os.WriteFile(listPath, []byte(`"a.txt"`+"\n"), 0o644); err != nil {
		t.Fatalf("unable to write file list: %v", err)
	}

	if err := a.Add(context.Background(), filepath.Join(t.TempDir(), "archive.7z"), LevelFast, listPath); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
}

func TestAddPropagatesNonZeroExit(t *testing.T) {
	script := writeScript(t, "echo failure to stderr 1>&2\nexit 2\n")
	a := New(script, "", logging.New(logging.LevelDisabled))

	listPath := filepath.Join(t.TempDir(), "list.txt")
	if err := os.WriteFile(listPath, []byte(`"a.txt"`+"\n"), 0o644); err != nil {
		t.Fatalf("unable to write file list: %v", err)
	}

	err := a.Add(context.Background(), filepath.Join(t.TempDir(), "archive.7z"), LevelFast, listPath)
	if err == nil {
		t.Fatal("expected an error from a non-zero archiver exit")
	}
}

func TestExtractPassesOverwriteAndOutputDir(t *testing.T) {
	script := writeScript(t, "exit 0\n")
	a := New(script, "secret", logging.New(logging.LevelDisabled))

	listPath := filepath.Join(t.TempDir(), "list.txt")
	if err := os.WriteFile(listPath, []byte(`"a.txt"`+"\n"), 0o644); err != nil {
		t.Fatalf("unable to write file list: %v", err)
	}

	err := a.Extract(context.Background(), "archive.7z", ExtractFilesOnly, listPath, t.TempDir(), true)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
}

func TestDefaultBinary(t *testing.T) {
	a := New("", "", logging.New(logging.LevelDisabled))
	if a.Binary != DefaultBinary {
		t.Errorf("Binary = %q, want %q", a.Binary, DefaultBinary)
	}
}
