package session

import (
	"fmt"

	"github.com/dshills/annohelper/internal/annotation/span"
)

// Session is an ordered, non-empty collection of frames plus a cursor.
// The cursor always satisfies 0 <= cursor < Count().
type Session struct {
	frames []*Frame
	cursor int
}

// New creates a session over frames positioned at cursor.
// Returns ErrEmptySession when frames is empty and ErrOutOfRange when
// cursor does not index a frame.
func New(frames []*Frame, cursor int) (*Session, error) {
	if len(frames) == 0 {
		return nil, ErrEmptySession
	}
	if cursor < 0 || cursor >= len(frames) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, cursor, len(frames))
	}
	return &Session{frames: frames, cursor: cursor}, nil
}

// NewFromTexts creates a fresh session with one unannotated frame per text.
func NewFromTexts(texts []string) (*Session, error) {
	frames := make([]*Frame, 0, len(texts))
	for _, text := range texts {
		f, err := NewFrame(text)
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	return New(frames, 0)
}

// Count returns the number of frames.
func (s *Session) Count() int {
	return len(s.frames)
}

// Cursor returns the index of the current frame.
func (s *Session) Cursor() int {
	return s.cursor
}

// Progress returns a "N / M" indicator with a 1-based N.
func (s *Session) Progress() string {
	return fmt.Sprintf("%d / %d", s.cursor+1, len(s.frames))
}

// IsFirst reports whether the cursor is on the first frame.
func (s *Session) IsFirst() bool {
	return s.cursor == 0
}

// IsFinal reports whether the cursor is on the last frame.
func (s *Session) IsFinal() bool {
	return s.cursor == len(s.frames)-1
}

// Current returns the frame under the cursor.
// The returned frame must not be retained across cursor moves.
func (s *Session) Current() *Frame {
	return s.frames[s.cursor]
}

// Frame returns the frame at index i.
func (s *Session) Frame(i int) (*Frame, error) {
	if i < 0 || i >= len(s.frames) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, i, len(s.frames))
	}
	return s.frames[i], nil
}

// CurrentText returns the text of the current frame.
func (s *Session) CurrentText() string {
	return s.Current().Text()
}

// CurrentIntervals returns the normalized intervals of the current frame.
func (s *Session) CurrentIntervals() []span.Interval {
	return s.Current().Intervals()
}

// Record appends an edit to the current frame.
func (s *Session) Record(start, stop int, status span.Status) error {
	return s.Current().Record(start, stop, status)
}

// Select marks [start, stop) of the current frame as kept.
func (s *Session) Select(start, stop int) error {
	return s.Record(start, stop, span.Selected)
}

// Deselect marks [start, stop) of the current frame as discarded.
func (s *Session) Deselect(start, stop int) error {
	return s.Record(start, stop, span.Deselected)
}

// SetCursor collapses the current frame and moves the cursor to pos.
// Returns ErrOutOfRange without any state change if pos is not a frame index.
func (s *Session) SetCursor(pos int) error {
	if pos < 0 || pos >= len(s.frames) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, pos, len(s.frames))
	}
	s.Current().Collapse()
	s.cursor = pos
	return nil
}

// Advance moves to the next frame. It is a no-op on the final frame.
// Returns true if the cursor moved.
func (s *Session) Advance() bool {
	if s.IsFinal() {
		return false
	}
	_ = s.SetCursor(s.cursor + 1)
	return true
}

// Retreat moves to the previous frame. It is a no-op on the first frame.
// Returns true if the cursor moved.
func (s *Session) Retreat() bool {
	if s.IsFirst() {
		return false
	}
	_ = s.SetCursor(s.cursor - 1)
	return true
}

// NormalizeAll collapses every frame's edit log.
func (s *Session) NormalizeAll() {
	for _, f := range s.frames {
		f.Collapse()
	}
}

// Annotated returns the number of frames with at least one selected interval.
func (s *Session) Annotated() int {
	n := 0
	for _, f := range s.frames {
		if len(f.Intervals()) > 0 {
			n++
		}
	}
	return n
}
