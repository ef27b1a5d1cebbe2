package session

import (
	"unicode/utf8"

	"github.com/dshills/annohelper/internal/annotation/span"
)

// Frame is one text sample together with its edit log.
// The text is immutable once the frame is created.
type Frame struct {
	text   string
	runes  []rune
	ledger *span.Ledger
}

// NewFrame creates a frame for text seeded with edits.
// Offsets are character positions; every edit must fit within the text.
func NewFrame(text string, edits ...span.Edit) (*Frame, error) {
	ledger, err := span.NewLedger(utf8.RuneCountInString(text), edits...)
	if err != nil {
		return nil, err
	}
	return &Frame{text: text, ledger: ledger}, nil
}

// Text returns the sample text.
func (f *Frame) Text() string {
	return f.text
}

// Len returns the text length in characters.
func (f *Frame) Len() int {
	return f.ledger.Bound()
}

// Record appends an edit to the frame's log.
func (f *Frame) Record(start, stop int, status span.Status) error {
	return f.ledger.Record(start, stop, status)
}

// Intervals returns the normalized selected intervals.
func (f *Frame) Intervals() []span.Interval {
	return f.ledger.Normalize()
}

// Edits returns a copy of the raw edit log.
func (f *Frame) Edits() []span.Edit {
	return f.ledger.Edits()
}

// Collapse replaces the edit log with its normalized form.
func (f *Frame) Collapse() {
	f.ledger.Collapse()
}

// IsNormalized reports whether the edit log is already normalized.
func (f *Frame) IsNormalized() bool {
	return f.ledger.IsNormalized()
}

// Coverage returns the number of selected characters.
func (f *Frame) Coverage() int {
	return f.ledger.Coverage()
}

// Selected returns the text of each selected interval.
func (f *Frame) Selected() []string {
	intervals := f.Intervals()
	if len(intervals) == 0 {
		return nil
	}
	if f.runes == nil {
		f.runes = []rune(f.text)
	}
	out := make([]string, len(intervals))
	for i, iv := range intervals {
		out[i] = string(f.runes[iv.Start():iv.Stop()])
	}
	return out
}
