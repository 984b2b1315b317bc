//go:build !linux && !windows
// +build !linux,!windows

package ctime

import (
	"os"
	"time"
)

// Of falls back to modification time on platforms where we don't have a
// grounded raw-stat path to the change time (Section 4.9 only needs a
// monotonic-enough signal to bucket files relative to the latest
// generation's creation time).
func Of(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}
