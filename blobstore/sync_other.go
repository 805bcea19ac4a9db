//go:build !linux

package blobstore

import (
	"os"
	"runtime"
)

func syncFile(f *os.File) error {
	return f.Sync()
}

// syncDir syncs a directory so a rename inside it is durable.
// Windows cannot sync directory handles.
func syncDir(dir string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return f.Sync()
}
