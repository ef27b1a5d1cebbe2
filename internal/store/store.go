// Package store loads and saves checkpoint files through a vfs.VFS.
package store

import (
	"bytes"
	"io/fs"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/dshills/annohelper/internal/annotation/session"
	"github.com/dshills/annohelper/internal/vfs"
)

// DefaultMaxSize is the default checkpoint size limit.
const DefaultMaxSize = 10 * 1024 * 1024

// Store reads and writes checkpoint files.
type Store struct {
	vfs     vfs.VFS
	maxSize int64 // 0 = unlimited
	atomic  bool
	perm    fs.FileMode
}

// Option configures a Store.
type Option func(*Store)

// WithMaxSize sets the maximum checkpoint size in bytes. 0 disables the limit.
func WithMaxSize(size int64) Option {
	return func(s *Store) {
		s.maxSize = size
	}
}

// WithAtomic selects whether saves go through a temp file and rename.
func WithAtomic(atomic bool) Option {
	return func(s *Store) {
		s.atomic = atomic
	}
}

// WithPerm sets the permission bits of written checkpoints.
func WithPerm(perm fs.FileMode) Option {
	return func(s *Store) {
		s.perm = perm
	}
}

// New creates a Store over fsys. Saves are atomic by default.
func New(fsys vfs.VFS, opts ...Option) *Store {
	s := &Store{
		vfs:     fsys,
		maxSize: DefaultMaxSize,
		atomic:  true,
		perm:    0o644,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads and parses the checkpoint at path.
// File system problems match session.ErrIOFailure, a zero-length file is
// ErrEmptyCheckpoint, and invalid content matches session.ErrMalformedCheckpoint.
// All are wrapped in a *PathError.
func (s *Store) Load(path string) (*session.Session, error) {
	absPath, err := s.vfs.Abs(path)
	if err != nil {
		return nil, ioFailure("load", path, err)
	}

	info, err := s.vfs.Stat(absPath)
	if err != nil {
		return nil, ioFailure("load", path, err)
	}
	if info.IsDir() {
		return nil, ioFailure("load", path, ErrIsDirectory)
	}
	if s.maxSize > 0 && info.Size() > s.maxSize {
		return nil, ioFailure("load", path, ErrFileTooLarge)
	}
	if info.Size() == 0 {
		return nil, &PathError{Op: "load", Path: path, Err: ErrEmptyCheckpoint}
	}

	data, err := s.vfs.ReadFile(absPath)
	if err != nil {
		return nil, ioFailure("load", path, err)
	}

	sess, err := session.Decode(data)
	if err != nil {
		return nil, &PathError{Op: "load", Path: path, Err: err}
	}
	return sess, nil
}

// Save serializes sess to path. The current frame is collapsed first.
// With atomic saves the previous file stays intact if anything fails.
func (s *Store) Save(path string, sess *session.Session) error {
	absPath, err := s.vfs.Abs(path)
	if err != nil {
		return ioFailure("save", path, err)
	}
	if vfs.IsDir(s.vfs, absPath) {
		return ioFailure("save", path, ErrIsDirectory)
	}

	var buf bytes.Buffer
	if err := sess.Save(&buf); err != nil {
		return &PathError{Op: "save", Path: path, Err: err}
	}

	if !s.atomic {
		if err := s.vfs.WriteFile(absPath, buf.Bytes(), s.perm); err != nil {
			return ioFailure("save", path, err)
		}
		return nil
	}

	tmp := tempPath(absPath)
	if err := s.vfs.WriteFile(tmp, buf.Bytes(), s.perm); err != nil {
		_ = s.vfs.Remove(tmp)
		return ioFailure("save", path, err)
	}
	if err := s.vfs.Rename(tmp, absPath); err != nil {
		_ = s.vfs.Remove(tmp)
		return ioFailure("save", path, err)
	}
	return nil
}

// Exists reports whether a checkpoint exists at path.
func (s *Store) Exists(path string) bool {
	absPath, err := s.vfs.Abs(path)
	if err != nil {
		return false
	}
	return vfs.Exists(s.vfs, absPath)
}

// tempPath returns a hidden sibling of dest so the final rename stays on
// one file system.
func tempPath(dest string) string {
	return filepath.Join(filepath.Dir(dest), "."+filepath.Base(dest)+"."+uuid.NewString()+".tmp")
}
