package span

// Ledger is the append-only edit log of a single sample.
//
// Later edits override earlier ones at the positions they cover. Normalize
// resolves the log into the selected intervals; Collapse replaces the log
// with that resolution.
//
// Ledger is not safe for concurrent use.
type Ledger struct {
	bound int
	edits []Edit

	// cached result of Normalize, nil when stale
	normalized []Interval
	fresh      bool
}

// NewLedger creates a ledger for a text of length bound, seeded with edits.
// Every seed edit must be valid for the bound.
func NewLedger(bound int, edits ...Edit) (*Ledger, error) {
	l := &Ledger{bound: bound}
	if len(edits) > 0 {
		l.edits = make([]Edit, 0, len(edits))
	}
	for _, e := range edits {
		if err := e.Validate(bound); err != nil {
			return nil, err
		}
		l.edits = append(l.edits, e)
	}
	return l, nil
}

// Bound returns the text length the ledger validates against.
func (l *Ledger) Bound() int {
	return l.bound
}

// Len returns the number of edits in the log.
func (l *Ledger) Len() int {
	return len(l.edits)
}

// Edits returns a copy of the edit log.
func (l *Ledger) Edits() []Edit {
	if len(l.edits) == 0 {
		return []Edit{}
	}
	out := make([]Edit, len(l.edits))
	copy(out, l.edits)
	return out
}

// Record appends an edit to the log.
// Returns ErrInvalidSpan if start < 0, start >= stop, or stop exceeds the bound;
// the log is unchanged in that case.
func (l *Ledger) Record(start, stop int, status Status) error {
	e := Edit{Start: start, Stop: stop, Status: status}
	if err := e.Validate(l.bound); err != nil {
		return err
	}
	l.edits = append(l.edits, e)
	l.fresh = false
	return nil
}

// Normalize returns the sorted, disjoint, non-adjacent intervals currently
// marked selected. The result is cached until the next Record.
func (l *Ledger) Normalize() []Interval {
	if !l.fresh {
		l.normalized = normalize(l.edits)
		l.fresh = true
	}
	if len(l.normalized) == 0 {
		return []Interval{}
	}
	out := make([]Interval, len(l.normalized))
	copy(out, l.normalized)
	return out
}

// Collapse replaces the edit log with its normalized form.
func (l *Ledger) Collapse() {
	intervals := l.Normalize()
	l.edits = AsEdits(intervals)
	l.normalized = intervals
	l.fresh = true
}

// IsNormalized reports whether the log already is in normalized form.
func (l *Ledger) IsNormalized() bool {
	prev := -1
	for _, e := range l.edits {
		if e.Status != Selected || e.Start <= prev {
			return false
		}
		prev = e.Stop
	}
	return true
}

// Coverage returns the number of selected characters.
func (l *Ledger) Coverage() int {
	n := 0
	for _, iv := range l.Normalize() {
		n += iv.Len()
	}
	return n
}

// normalize paints every edit in order onto a per-character status array
// sized to the largest stop, then emits each maximal selected run.
func normalize(edits []Edit) []Interval {
	if len(edits) == 0 {
		return nil
	}

	size := 0
	for _, e := range edits {
		if e.Stop > size {
			size = e.Stop
		}
	}

	marks := make([]Status, size)
	for _, e := range edits {
		for i := e.Start; i < e.Stop; i++ {
			marks[i] = e.Status
		}
	}

	var out []Interval
	runStart := -1
	for i, st := range marks {
		switch {
		case st == Selected && runStart < 0:
			runStart = i
		case st == Deselected && runStart >= 0:
			out = append(out, Interval{start: runStart, stop: i})
			runStart = -1
		}
	}
	if runStart >= 0 {
		out = append(out, Interval{start: runStart, stop: size})
	}
	return out
}
