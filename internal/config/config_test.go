package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "backup_config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("unable to write config fixture: %v", err)
	}
	return path
}

func TestLoadSingleFile(t *testing.T) {
	path := writeConfig(t, `
sourceRoot: /srv/data
noCompressExtensions:
  - jpg
  - PNG
roots:
  - path: photos
    reject:
      - '\.tmp$'
  - path: cache
    reject:
      - '.+'
`)

	cfg, err := Load([]string{path})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.SourceRoot != "/srv/data" {
		t.Errorf("SourceRoot = %q", cfg.SourceRoot)
	}
	if !cfg.NoCompressExtensions["jpg"] || !cfg.NoCompressExtensions["png"] {
		t.Errorf("expected case-folded extensions, got %+v", cfg.NoCompressExtensions)
	}
	if !cfg.StopFolders["cache"] {
		t.Error("expected cache to be classified as a stop-folder")
	}
	if cfg.StopFolders["photos"] {
		t.Error("photos should not be a stop-folder")
	}
}

func TestLoadMergesMultipleFiles(t *testing.T) {
	base := writeConfig(t, `
sourceRoot: /srv/data
roots:
  - path: photos
    reject: ['\.tmp$']
`)
	override := writeConfig(t, `
sourceRoot: /srv/data2
roots:
  - path: photos
    reject: ['.*']
  - path: docs
`)

	cfg, err := Load([]string{base, override})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SourceRoot != "/srv/data2" {
		t.Errorf("later file should override SourceRoot, got %q", cfg.SourceRoot)
	}
	if !cfg.StopFolders["photos"] {
		t.Error("later root definition should override the earlier reject list")
	}
	if len(cfg.Roots) != 2 {
		t.Errorf("expected 2 distinct roots, got %v", cfg.Roots)
	}
}

func TestLoadRequiresSourceRoot(t *testing.T) {
	path := writeConfig(t, `
roots:
  - path: photos
`)
	if _, err := Load([]string{path}); err == nil {
		t.Fatal("expected an error for a configuration missing sourceRoot")
	}
}

func TestLoadNoPaths(t *testing.T) {
	if _, err := Load(nil); err == nil {
		t.Fatal("expected an error when no configuration files are given")
	}
}

func TestIsCompressible(t *testing.T) {
	cfg := &Configuration{NoCompressExtensions: map[string]bool{"jpg": true}}

	if cfg.IsCompressible("photo.JPG") {
		t.Error("photo.JPG should not be compressible")
	}
	if !cfg.IsCompressible("notes.txt") {
		t.Error("notes.txt should be compressible")
	}
	if !cfg.IsCompressible("no-extension") {
		t.Error("a path without an extension should be compressible")
	}
}
