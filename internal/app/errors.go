// Package app provides the reviewer: the collaborator surface a user
// interface drives to open, annotate, navigate, and save a checkpoint.
package app

import (
	"errors"
	"fmt"

	"github.com/dshills/annohelper/internal/annotation/session"
	"github.com/dshills/annohelper/internal/annotation/span"
	"github.com/dshills/annohelper/internal/store"
)

// Application errors.
var (
	// ErrNoSession indicates no checkpoint is open.
	ErrNoSession = errors.New("no checkpoint open")

	// ErrNoPath indicates neither an argument nor the configuration named a checkpoint.
	ErrNoPath = errors.New("no checkpoint path")
)

// OperationError represents an error that occurred during a specific operation.
type OperationError struct {
	Op     string // Operation name (e.g., "open", "save", "mark")
	Target string // Target of the operation (e.g., file path, span)
	Err    error  // Underlying error
}

// NewOperationError creates a new OperationError.
func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{Op: op, Target: target, Err: err}
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}

	msg := e.Op
	if e.Target != "" {
		msg = fmt.Sprintf("%s %s", e.Op, e.Target)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// StatusMessage returns the one-line message a status bar shows for err.
func StatusMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoSession):
		return "Nothing to save"
	case errors.Is(err, store.ErrEmptyCheckpoint), errors.Is(err, session.ErrEmptySession):
		return "The file is empty – try another one!"
	case errors.Is(err, session.ErrMalformedCheckpoint):
		return "Bad input"
	case errors.Is(err, session.ErrOutOfRange):
		return "No such example"
	case errors.Is(err, span.ErrInvalidSpan):
		return "Invalid selection"
	case errors.Is(err, session.ErrIOFailure):
		if failedOp(err, "save") {
			return "Can't save into that location"
		}
		return "Can't read that file"
	default:
		return err.Error()
	}
}

// failedOp reports whether any OperationError in err's chain is for op.
func failedOp(err error, op string) bool {
	for err != nil {
		if oe, ok := err.(*OperationError); ok && oe.Op == op {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}
