package vfs

import (
	"io/fs"
	"os"
	"path/filepath"
)

// OSFS implements VFS on the host file system.
type OSFS struct{}

// NewOSFS returns the host file system.
func NewOSFS() *OSFS {
	return &OSFS{}
}

var _ VFS = (*OSFS)(nil)

func (OSFS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

func (OSFS) Stat(path string) (fs.FileInfo, error) { return os.Stat(path) }

func (OSFS) Remove(path string) error { return os.Remove(path) }

func (OSFS) Rename(oldPath, newPath string) error { return os.Rename(oldPath, newPath) }

func (OSFS) Abs(path string) (string, error) { return filepath.Abs(path) }

// WriteFile writes data and fsyncs the file before closing it, so a
// following Rename never exposes a partially written checkpoint.
func (OSFS) WriteFile(path string, data []byte, perm fs.FileMode) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if _, err = f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}
