// Package backupdriver orchestrates a single backup generation: scan, diff
// against the reconstructed prior state, manifest emission, and archiver
// invocation (spec.md Section 4.7).
package backupdriver

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mutagen-io/incbackup/internal/archivelayout"
	"github.com/mutagen-io/incbackup/internal/archiver"
	"github.com/mutagen-io/incbackup/internal/config"
	"github.com/mutagen-io/incbackup/internal/diffengine"
	"github.com/mutagen-io/incbackup/internal/filesystem"
	"github.com/mutagen-io/incbackup/internal/hashutil"
	"github.com/mutagen-io/incbackup/internal/logging"
	"github.com/mutagen-io/incbackup/internal/manifest"
	"github.com/mutagen-io/incbackup/internal/scanner"
	"github.com/mutagen-io/incbackup/internal/state"
)

// Driver runs backups against a single archive root.
type Driver struct {
	ArchiveRoot  string
	Config       *config.Configuration
	Archiver     *archiver.Archiver
	Logger       *logging.Logger
	DeleteOnFail bool
	WorkDir      string
	// Empty, when true, runs only steps 1-5 of Section 4.7: a manifest is
	// written recording the current state, but no archive is created.
	Empty bool
}

// Summary reports what a Run produced.
type Summary struct {
	GenerationID  string
	Added         []string
	Updated       []string
	Deleted       []string
	Moved         []diffengine.Move
	NothingToDo   bool
	ArchiveFailed bool
}

// Run performs one backup cycle per Section 4.7.
func (d *Driver) Run(ctx context.Context) (*Summary, error) {
	archiveDir := filepath.Join(d.ArchiveRoot, "archive")
	if err := filesystem.MkdirAll(archiveDir); err != nil {
		return nil, errors.Wrap(err, "unable to create archive directory")
	}

	prevDir, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "unable to determine working directory")
	}
	if err := os.Chdir(d.Config.SourceRoot); err != nil {
		return nil, errors.Wrapf(err, "unable to enter source root %q", d.Config.SourceRoot)
	}
	defer os.Chdir(prevDir)

	catalog, err := state.DiscoverCatalog(archiveDir, time.Time{})
	if err != nil {
		return nil, errors.Wrap(err, "unable to discover generation catalog")
	}

	loader := func(generationID string) ([]manifest.Record, error) {
		return manifest.Read(filepath.Join(archiveDir, generationID, archivelayout.ManifestFileName))
	}
	priorState, err := state.Reconstruct(catalog, loader)
	if err != nil {
		return nil, errors.Wrap(err, "unable to reconstruct prior state")
	}

	fresh, err := scanner.Scan(d.Config, d.Logger)
	if err != nil {
		return nil, errors.Wrap(err, "unable to scan source trees")
	}

	diff := diffengine.Diff(priorState, fresh, hashutil.HashFile, d.Logger)

	if len(diff.Added) == 0 && len(diff.Updated) == 0 && len(diff.Deleted) == 0 && len(diff.Moved) == 0 {
		return &Summary{NothingToDo: true}, nil
	}

	generationID := state.NextGenerationID(catalog, time.Now())
	generationDir := state.GenerationDir(archiveDir, generationID)
	if err := filesystem.MkdirAll(generationDir); err != nil {
		return nil, errors.Wrap(err, "unable to create generation directory")
	}

	adds, updates, deletes, moves := buildRecords(d.Config, fresh, diff)
	manifestPath := filepath.Join(generationDir, archivelayout.ManifestFileName)
	if err := manifest.Write(manifestPath, adds, updates, deletes, moves); err != nil {
		return nil, errors.Wrap(err, "unable to write manifest")
	}

	summary := &Summary{
		GenerationID: generationID,
		Added:        sortedKeys(diff.Added),
		Updated:      diff.Updated,
		Deleted:      diff.Deleted,
		Moved:        diff.Moved,
	}

	if d.Empty {
		return summary, nil
	}

	compressed, uncompressed := partition(d.Config, adds, updates)
	if err := d.invokeArchiver(ctx, generationDir, compressed, uncompressed); err != nil {
		d.Logger.Errorf("archiver invocation failed: %v", err)
		summary.ArchiveFailed = true
		if d.DeleteOnFail {
			if rmErr := os.RemoveAll(generationDir); rmErr != nil {
				d.Logger.Warnf("unable to remove failed generation directory: %v", rmErr)
			}
		}
		return summary, nil
	}

	return summary, nil
}

// buildRecords converts a diff Result into the four manifest record slices,
// re-hashing updated paths at manifest-write time (Section 4.6 "Update
// hashing") and dropping any that fail to hash.
func buildRecords(cfg *config.Configuration, fresh map[string]time.Time, diff diffengine.Result) (adds, updates, deletes, moves []manifest.Record) {
	for _, path := range sortedKeys(diff.Added) {
		adds = append(adds, manifest.NewAdd(path, fresh[path], cfg.IsCompressible(path), diff.Added[path]))
	}

	for _, path := range diff.Updated {
		digest, err := hashutil.HashFile(path)
		if err != nil {
			continue
		}
		updates = append(updates, manifest.NewUpdate(path, fresh[path], cfg.IsCompressible(path), digest))
	}

	for _, path := range diff.Deleted {
		deletes = append(deletes, manifest.NewDelete(path, cfg.IsCompressible(path)))
	}

	for _, move := range diff.Moved {
		digest, err := hashutil.HashFile(move.Dst)
		if err != nil {
			continue
		}
		moves = append(moves, manifest.NewMove(move.Src, move.Dst, fresh[move.Dst], cfg.IsCompressible(move.Src), digest))
	}

	return adds, updates, deletes, moves
}

// partition splits the new-or-modified paths (ADDs and UPDATEs only; DELETEs
// and MOVEs reference bytes that already live in earlier generations) into
// compressed and uncompressed file lists, by extension (Section 4.7 step 6).
func partition(cfg *config.Configuration, adds, updates []manifest.Record) (compressed, uncompressed []string) {
	for _, r := range adds {
		appendPartitioned(cfg, r.NewPath, &compressed, &uncompressed)
	}
	for _, r := range updates {
		appendPartitioned(cfg, r.NewPath, &compressed, &uncompressed)
	}
	return compressed, uncompressed
}

func appendPartitioned(cfg *config.Configuration, path string, compressed, uncompressed *[]string) {
	if cfg.IsCompressible(path) {
		*compressed = append(*compressed, path)
	} else {
		*uncompressed = append(*uncompressed, path)
	}
}

// invokeArchiver writes the scratch file lists and invokes the archiver once
// per non-empty partition (Section 4.7 step 7).
func (d *Driver) invokeArchiver(ctx context.Context, generationDir string, compressed, uncompressed []string) error {
	if len(compressed) > 0 {
		listPath, err := writeFileList(d.WorkDir, "backup-comp", compressed)
		if err != nil {
			return err
		}
		defer os.Remove(listPath)
		archivePath := filepath.Join(generationDir, archivelayout.CompressedArchiveName)
		if err := d.Archiver.Add(ctx, archivePath, archiver.LevelFast, listPath); err != nil {
			return err
		}
	}
	if len(uncompressed) > 0 {
		listPath, err := writeFileList(d.WorkDir, "backup-nocomp", uncompressed)
		if err != nil {
			return err
		}
		defer os.Remove(listPath)
		archivePath := filepath.Join(generationDir, archivelayout.UncompressedArchiveName)
		if err := d.Archiver.Add(ctx, archivePath, archiver.LevelStore, listPath); err != nil {
			return err
		}
	}
	return nil
}

// writeFileList writes an add-list for the archiver's "a" command, one path
// per line, unquoted: unlike the restore-side extract lists, the archiver's
// add command takes bare paths.
func writeFileList(workDir, label string, paths []string) (string, error) {
	var b []byte
	for _, p := range paths {
		b = append(b, []byte(p+"\n")...)
	}
	path := filepath.Join(workDir, label+"-"+uuid.NewString()+".txt")
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return "", errors.Wrap(err, "unable to write archiver file list")
	}
	return path, nil
}

func sortedKeys(m map[string]hashutil.Digest) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
