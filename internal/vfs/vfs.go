// Package vfs provides the file system abstraction used for checkpoint,
// configuration, and rule script I/O.
//
// OSFS is backed by the operating system; MemFS keeps everything in memory
// and is used by tests.
package vfs

import (
	"errors"
	"io/fs"
)

// VFS is the set of file operations the checkpoint store, config loader,
// and script loader need. Paths use the host separator for OSFS and slashes
// for MemFS.
type VFS interface {
	// ReadFile reads the entire file content.
	ReadFile(path string) ([]byte, error)

	// Stat returns file information.
	Stat(path string) (fs.FileInfo, error)

	// WriteFile writes data to a file, creating or truncating it.
	// The data is flushed to stable storage before WriteFile returns.
	WriteFile(path string, data []byte, perm fs.FileMode) error

	// Remove removes a file or empty directory.
	Remove(path string) error

	// Rename replaces newPath with oldPath in one step.
	Rename(oldPath, newPath string) error

	// Abs returns the absolute form of path.
	Abs(path string) (string, error)
}

// Exists reports whether path exists in fsys. A path that cannot be
// stat'ed for reasons other than absence is reported as existing.
func Exists(fsys VFS, path string) bool {
	_, err := fsys.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

// IsDir reports whether path names a directory in fsys.
func IsDir(fsys VFS, path string) bool {
	info, err := fsys.Stat(path)
	return err == nil && info.IsDir()
}
