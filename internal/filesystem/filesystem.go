// Package filesystem provides the small set of filesystem helpers shared by
// configuration loading, the manifest codec, and the backup driver:
// atomic file writes and YAML load/unmarshal, grounded on the teacher's
// pkg/encoding and pkg/filesystem/atomic.go.
package filesystem

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// LoadAndUnmarshal reads the file at path and invokes unmarshal on its
// contents.
func LoadAndUnmarshal(path string, unmarshal func([]byte) error) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := unmarshal(data); err != nil {
		return fmt.Errorf("unable to unmarshal data: %w", err)
	}
	return nil
}

// LoadAndUnmarshalYAML loads YAML data from path into value.
func LoadAndUnmarshalYAML(path string, value interface{}) error {
	return LoadAndUnmarshal(path, func(data []byte) error {
		return yaml.UnmarshalStrict(data, value)
	})
}

// WriteFileAtomic writes data to path using an intermediate temporary file
// that is renamed into place, so that a crash mid-write never leaves a
// truncated manifest or configuration file visible to a concurrent reader.
func WriteFileAtomic(path string, data []byte, permissions os.FileMode) error {
	dir := filepath.Dir(path)
	temporary, err := os.CreateTemp(dir, ".incbackup-write-*")
	if err != nil {
		return fmt.Errorf("unable to create temporary file: %w", err)
	}
	tempName := temporary.Name()

	if _, err := temporary.Write(data); err != nil {
		temporary.Close()
		os.Remove(tempName)
		return fmt.Errorf("unable to write data to temporary file: %w", err)
	}
	if err := temporary.Close(); err != nil {
		os.Remove(tempName)
		return fmt.Errorf("unable to close temporary file: %w", err)
	}
	if err := os.Chmod(tempName, permissions); err != nil {
		os.Remove(tempName)
		return fmt.Errorf("unable to change file permissions: %w", err)
	}
	if err := os.Rename(tempName, path); err != nil {
		os.Remove(tempName)
		return fmt.Errorf("unable to rename file into place: %w", err)
	}
	return nil
}

// MkdirAll creates path and any missing parents, matching the original
// tool's create_path helper but relying on os.MkdirAll instead of manual
// component-by-component creation.
func MkdirAll(path string) error {
	return os.MkdirAll(path, 0o755)
}
