//go:build linux
// +build linux

// Package ctime exposes the filesystem change time used by the verifier to
// distinguish "untracked" (added after the last backup) from "unknown"
// (present before, but absent from the reconstructed state) files, per
// spec.md Section 4.9.
package ctime

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/pkg/errors"
)

// Of returns the change time of the file at path.
func Of(path string) (time.Time, error) {
	var stat unix.Stat_t
	if err := unix.Lstat(path, &stat); err != nil {
		return time.Time{}, errors.Wrap(err, "unable to stat file")
	}
	return time.Unix(stat.Ctim.Sec, stat.Ctim.Nsec), nil
}
