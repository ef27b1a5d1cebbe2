package store

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/dshills/annohelper/internal/annotation/session"
)

// Standard errors returned by the store package.
var (
	// ErrIsDirectory indicates the checkpoint path is a directory.
	ErrIsDirectory = errors.New("path is a directory")

	// ErrFileTooLarge indicates the checkpoint exceeds the configured size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrEmptyCheckpoint indicates the checkpoint file has no content.
	ErrEmptyCheckpoint = errors.New("checkpoint file is empty")
)

// PathError records the checkpoint operation and path that failed.
type PathError struct {
	Op   string // Operation that failed (load, save)
	Path string // Checkpoint path
	Err  error  // Underlying error
}

// Error implements the error interface.
func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *PathError) Unwrap() error {
	return e.Err
}

// ioFailure wraps a file system error so it matches session.ErrIOFailure.
// The path is dropped from fs.PathError causes since PathError carries it.
func ioFailure(op, path string, err error) *PathError {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		err = pe.Err
	}
	return &PathError{Op: op, Path: path, Err: fmt.Errorf("%w: %w", session.ErrIOFailure, err)}
}
