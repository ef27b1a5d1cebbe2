package script

import (
	"errors"
	"fmt"
)

// Errors returned by the script package.
var (
	// ErrNoAnnotate indicates the script does not define annotate(text).
	ErrNoAnnotate = errors.New("script does not define annotate")

	// ErrClosed indicates the rules were used after Close.
	ErrClosed = errors.New("rules are closed")
)

// Error records where a rule script failed.
type Error struct {
	Name  string // Script name
	Frame int    // Frame index, -1 while compiling
	Err   error  // Underlying error
}

func (e *Error) Error() string {
	if e.Frame < 0 {
		return fmt.Sprintf("script %s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("script %s: frame %d: %v", e.Name, e.Frame, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
