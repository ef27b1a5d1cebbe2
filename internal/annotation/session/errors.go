package session

import (
	"errors"
	"fmt"
)

// Standard errors returned by the session package.
var (
	// ErrMalformedCheckpoint indicates a structurally invalid checkpoint document.
	ErrMalformedCheckpoint = errors.New("malformed checkpoint")

	// ErrEmptySession indicates a session or document without frames.
	ErrEmptySession = errors.New("no frames")

	// ErrOutOfRange indicates a cursor target outside the frame collection.
	ErrOutOfRange = errors.New("cursor out of range")

	// ErrIOFailure indicates the checkpoint could not be read or written.
	ErrIOFailure = errors.New("checkpoint i/o failure")
)

// DocumentError describes why a checkpoint document was rejected.
// It always matches ErrMalformedCheckpoint under errors.Is.
type DocumentError struct {
	Field  string // Offending field path, e.g. "frames[2].anno"
	Reason string // Short description
	Err    error  // Underlying cause, may be nil
}

func (e *DocumentError) Error() string {
	msg := ErrMalformedCheckpoint.Error()
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Field)
	}
	if e.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrMalformedCheckpoint.
// The wrapped cause is reached through Unwrap.
func (e *DocumentError) Is(target error) bool {
	return target == ErrMalformedCheckpoint
}

func malformed(field, reason string, err error) error {
	return &DocumentError{Field: field, Reason: reason, Err: err}
}
