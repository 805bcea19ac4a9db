//go:build linux

package blobstore

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// syncFile flushes file data with fdatasync, skipping metadata such as
// access times. Falls back to fsync where fdatasync is not supported.
func syncFile(f *os.File) error {
	err := unix.Fdatasync(int(f.Fd()))
	if errors.Is(err, unix.EINVAL) {
		return f.Sync()
	}
	return err
}

// syncDir syncs a directory so a rename inside it is durable.
func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return f.Sync()
}
