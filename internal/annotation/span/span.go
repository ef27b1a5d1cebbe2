// Package span holds the per-sample edit log of selection decisions and
// resolves it into disjoint selected intervals.
//
// Offsets are character (rune) positions. Every range is half-open:
// [Start, Stop).
package span

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidSpan is returned when an edit has inverted, empty, or
// out-of-bounds offsets.
var ErrInvalidSpan = errors.New("invalid span")

// Status tells whether an edit keeps or discards its range.
type Status bool

const (
	// Selected marks a range as kept.
	Selected Status = true
	// Deselected marks a range as discarded.
	Deselected Status = false
)

// String returns "selected" or "deselected".
func (s Status) String() string {
	if s == Selected {
		return "selected"
	}
	return "deselected"
}

// Edit is one recorded instruction to mark [Start, Stop) with Status.
type Edit struct {
	Start  int
	Stop   int
	Status Status
}

// String returns a human-readable representation of the edit.
func (e Edit) String() string {
	sign := "+"
	if e.Status == Deselected {
		sign = "-"
	}
	return fmt.Sprintf("%s[%d:%d)", sign, e.Start, e.Stop)
}

// Validate checks the edit against a text of the given length.
func (e Edit) Validate(bound int) error {
	if e.Start < 0 || e.Start >= e.Stop || e.Stop > bound {
		return fmt.Errorf("%w: [%d:%d) in text of length %d", ErrInvalidSpan, e.Start, e.Stop, bound)
	}
	return nil
}

// MarshalJSON encodes the edit as [start, stop, status].
func (e Edit) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]any{e.Start, e.Stop, bool(e.Status)})
}

// UnmarshalJSON decodes an edit from [start, stop, status].
func (e *Edit) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return fmt.Errorf("edit must have 3 elements, got %d", len(raw))
	}
	for i, name := range [3]string{"start", "stop", "status"} {
		if string(bytes.TrimSpace(raw[i])) == "null" {
			return fmt.Errorf("edit %s is null", name)
		}
	}
	var out Edit
	if err := json.Unmarshal(raw[0], &out.Start); err != nil {
		return fmt.Errorf("edit start: %w", err)
	}
	if err := json.Unmarshal(raw[1], &out.Stop); err != nil {
		return fmt.Errorf("edit stop: %w", err)
	}
	var status bool
	if err := json.Unmarshal(raw[2], &status); err != nil {
		return fmt.Errorf("edit status: %w", err)
	}
	out.Status = Status(status)
	*e = out
	return nil
}

// Interval is a maximal run of selected characters.
// Intervals are produced by Ledger.Normalize.
type Interval struct {
	start int
	stop  int
}

// Start returns the inclusive start offset.
func (iv Interval) Start() int { return iv.start }

// Stop returns the exclusive stop offset.
func (iv Interval) Stop() int { return iv.stop }

// Len returns the number of characters covered.
func (iv Interval) Len() int { return iv.stop - iv.start }

// Bounds returns both offsets.
func (iv Interval) Bounds() (start, stop int) { return iv.start, iv.stop }

// Edit returns the interval as a Selected edit.
func (iv Interval) Edit() Edit {
	return Edit{Start: iv.start, Stop: iv.stop, Status: Selected}
}

// String returns a human-readable representation of the interval.
func (iv Interval) String() string {
	return fmt.Sprintf("[%d:%d)", iv.start, iv.stop)
}

// AsEdits converts intervals back into Selected edits.
func AsEdits(intervals []Interval) []Edit {
	if len(intervals) == 0 {
		return nil
	}
	edits := make([]Edit, len(intervals))
	for i, iv := range intervals {
		edits[i] = iv.Edit()
	}
	return edits
}
