package restoreplanner

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mutagen-io/incbackup/internal/archivelayout"
	"github.com/mutagen-io/incbackup/internal/archiver"
	"github.com/mutagen-io/incbackup/internal/logging"
)

// Executor drives the extraction side of Section 4.8 against one archive
// root: direct buckets land straight in the working directory, redirected
// buckets are staged under ScratchDir and then relocated to their logical
// path, creating intermediate directories as needed.
type Executor struct {
	ArchiveRoot string
	ScratchDir  string
	Archiver    *archiver.Archiver
	// Mode selects full-path vs files-only extraction for direct buckets
	// (the --files-only flag, full-path by default); redirected buckets
	// always extract full-path into the scratch staging area.
	Mode      archiver.ExtractMode
	Overwrite bool
	Logger    *logging.Logger
}

// Run extracts every generation's buckets, in order.
func (e *Executor) Run(ctx context.Context, generations []Generation) error {
	for _, gen := range generations {
		genDir := filepath.Join(e.ArchiveRoot, gen.ID)

		if err := e.extractDirect(ctx, genDir, archivelayout.CompressedArchiveName, gen.CompressedDirect); err != nil {
			return err
		}
		if err := e.extractDirect(ctx, genDir, archivelayout.UncompressedArchiveName, gen.UncompressedDirect); err != nil {
			return err
		}
		if err := e.extractRedirected(ctx, genDir, archivelayout.CompressedArchiveName, gen.CompressedRedirected); err != nil {
			return err
		}
		if err := e.extractRedirected(ctx, genDir, archivelayout.UncompressedArchiveName, gen.UncompressedRedirected); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) extractDirect(ctx context.Context, genDir, archiveName string, items []Item) error {
	if len(items) == 0 {
		return nil
	}
	paths := make([]string, len(items))
	for i, item := range items {
		paths[i] = item.StoredPath
	}
	listPath, err := writeFileList(e.ScratchDir, "restore-direct", paths)
	if err != nil {
		return err
	}
	defer os.Remove(listPath)

	archivePath := filepath.Join(genDir, archiveName)
	return e.Archiver.Extract(ctx, archivePath, e.Mode, listPath, "", e.Overwrite)
}

// extractRedirected extracts the bucket's stored paths into a scratch
// staging directory, then moves each extracted file to its logical path
// (Section 4.8's "Redirected buckets"). A file missing from the staging
// area after extraction is reported, not fatal.
func (e *Executor) extractRedirected(ctx context.Context, genDir, archiveName string, items []Item) error {
	if len(items) == 0 {
		return nil
	}
	paths := make([]string, len(items))
	for i, item := range items {
		paths[i] = item.StoredPath
	}
	listPath, err := writeFileList(e.ScratchDir, "restore-redirect", paths)
	if err != nil {
		return err
	}
	defer os.Remove(listPath)

	stageDir := filepath.Join(e.ScratchDir, "stage-"+uuid.NewString())
	if err := os.MkdirAll(stageDir, 0o755); err != nil {
		return errors.Wrap(err, "unable to create staging directory")
	}
	defer os.RemoveAll(stageDir)

	// Full-path extraction into the stage dir, not files-only: StoredPath is
	// only unique as a full path, so relocating by basename would collide
	// whenever two redirected items from different directories share a name.
	archivePath := filepath.Join(genDir, archiveName)
	if err := e.Archiver.Extract(ctx, archivePath, archiver.ExtractFullPath, listPath, stageDir, e.Overwrite); err != nil {
		return err
	}

	for _, item := range items {
		e.relocate(filepath.Join(stageDir, item.StoredPath), item.LogicalPath)
	}
	return nil
}

func (e *Executor) relocate(src, logicalPath string) {
	if _, err := os.Stat(src); err != nil {
		e.Logger.Warnf("stored path %q missing from scratch extraction, skipping", src)
		return
	}
	if err := os.MkdirAll(filepath.Dir(logicalPath), 0o755); err != nil {
		e.Logger.Warnf("unable to create destination directory for %q: %v", logicalPath, err)
		return
	}
	if err := os.Rename(src, logicalPath); err != nil {
		e.Logger.Warnf("unable to relocate %q to %q: %v", src, logicalPath, err)
	}
}

// History extracts one archived version per HistoryVersion into
// <destDir>/<logical path>/<generation id>, per the history-mode
// supplement.
func (e *Executor) History(ctx context.Context, destDir string, versions []HistoryVersion) error {
	for _, v := range versions {
		if err := e.extractHistoryVersion(ctx, destDir, v); err != nil {
			e.Logger.Warnf("unable to extract generation %s of %q: %v", v.GenerationID, v.Record.NewPath, err)
		}
	}
	return nil
}

func (e *Executor) extractHistoryVersion(ctx context.Context, destDir string, v HistoryVersion) error {
	archiveName := archivelayout.UncompressedArchiveName
	if v.Record.Compress {
		archiveName = archivelayout.CompressedArchiveName
	}
	archivePath := filepath.Join(e.ArchiveRoot, v.GenerationID, archiveName)

	listPath, err := writeFileList(e.ScratchDir, "history", []string{v.Record.NewPath})
	if err != nil {
		return err
	}
	defer os.Remove(listPath)

	stageDir := filepath.Join(e.ScratchDir, "history-"+uuid.NewString())
	if err := os.MkdirAll(stageDir, 0o755); err != nil {
		return errors.Wrap(err, "unable to create staging directory")
	}
	defer os.RemoveAll(stageDir)

	if err := e.Archiver.Extract(ctx, archivePath, archiver.ExtractFilesOnly, listPath, stageDir, true); err != nil {
		return err
	}

	src := filepath.Join(stageDir, filepath.Base(v.Record.NewPath))
	dst := filepath.Join(destDir, v.Record.NewPath, v.GenerationID)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errors.Wrapf(err, "unable to create destination directory for %q", dst)
	}
	return os.Rename(src, dst)
}

func writeFileList(dir, label string, paths []string) (string, error) {
	var b []byte
	for _, p := range paths {
		b = append(b, []byte(`"`+p+`"`+"\n")...)
	}
	path := filepath.Join(dir, label+"-"+uuid.NewString()+".txt")
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return "", errors.Wrap(err, "unable to write extraction file list")
	}
	return path, nil
}
