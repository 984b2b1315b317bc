// Package archiver wraps invocations of the external archiver tool (Section
// 6's "Archiver contract"). The archive container itself — creation,
// splitting, extraction, password protection, compression level — is an
// explicit out-of-scope external collaborator (Section 1); this package is
// only the subprocess boundary.
package archiver

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"strconv"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/mutagen-io/incbackup/internal/logging"
)

// DefaultBinary is the archiver executable invoked when none is configured,
// matching the original tool's posix default.
const DefaultBinary = "7z"

// Split is the fixed volume size used for both archive partitions (Section
// 4.7 step 7).
const Split = "1g"

// Archiver invokes an external 7-Zip-compatible archiver as a subprocess.
type Archiver struct {
	Binary   string
	Password string
	Logger   *logging.Logger
}

// New constructs an Archiver. An empty binary defaults to DefaultBinary.
func New(binary, password string, logger *logging.Logger) *Archiver {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Archiver{Binary: binary, Password: password, Logger: logger}
}

// AddLevel is the compression level argument for an add operation: 0 (store)
// or 1 (fastest compression), per Section 4.7 step 7.
type AddLevel int

const (
	// LevelStore performs no compression (the "nocomp" archive).
	LevelStore AddLevel = 0
	// LevelFast performs fast compression (the "comp" archive).
	LevelFast AddLevel = 1
)

// Add invokes the archiver to add every path listed in fileListPath (a
// "@listfile" reference) to archivePath at the given compression level,
// split into Split-sized volumes.
func (a *Archiver) Add(ctx context.Context, archivePath string, level AddLevel, fileListPath string) error {
	args := []string{
		"a", archivePath,
		"-mx" + strconv.Itoa(int(level)),
		"-v" + Split,
		"@" + fileListPath,
	}
	args = append(args, a.passwordArgs()...)
	return a.run(ctx, args)
}

// ExtractMode selects between full-path and files-only extraction, per
// Section 6's "full-path or files-only mode configurable".
type ExtractMode string

const (
	// ExtractFullPath preserves the archived path structure (7z "x").
	ExtractFullPath ExtractMode = "x"
	// ExtractFilesOnly flattens extracted files into the output directory
	// (7z "e").
	ExtractFilesOnly ExtractMode = "e"
)

// Extract invokes the archiver to extract the paths listed in fileListPath
// from archivePath into outputDir (if non-empty), honoring overwrite policy.
func (a *Archiver) Extract(ctx context.Context, archivePath string, mode ExtractMode, fileListPath, outputDir string, overwrite bool) error {
	args := []string{string(mode), archivePath, "@" + fileListPath}
	if overwrite {
		args = append(args, "-aoa")
	}
	if outputDir != "" {
		args = append(args, "-o"+outputDir)
	}
	args = append(args, a.passwordArgs()...)
	return a.run(ctx, args)
}

func (a *Archiver) passwordArgs() []string {
	if a.Password == "" {
		return nil
	}
	return []string{"-p" + a.Password}
}

// run executes the archiver and logs its (UTF-8 decodable) output. A
// non-zero exit is reported as an error (Section 7: "Archiver non-zero
// exit"); non-UTF-8 output is logged and otherwise ignored (Section 7:
// "Archiver output not UTF-decodable").
func (a *Archiver) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, a.Binary, args...)

	var output bytes.Buffer
	combined := io.MultiWriter(&output, a.Logger.Writer())
	cmd.Stdout = combined
	cmd.Stderr = combined

	err := cmd.Run()

	if !utf8.Valid(output.Bytes()) {
		a.Logger.Warn("archiver produced non-UTF-8 output")
	}

	if err != nil {
		return errors.Wrapf(err, "archiver failed: %s", output.String())
	}

	return nil
}
