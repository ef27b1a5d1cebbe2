package span

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func iv(start, stop int) Interval {
	return Interval{start: start, stop: stop}
}

func mustLedger(t *testing.T, bound int, edits ...Edit) *Ledger {
	t.Helper()
	l, err := NewLedger(bound, edits...)
	if err != nil {
		t.Fatalf("NewLedger error = %v", err)
	}
	return l
}

func TestLedger_Normalize(t *testing.T) {
	tests := []struct {
		name  string
		edits []Edit
		want  []Interval
	}{
		{
			name: "empty log",
			want: []Interval{},
		},
		{
			name:  "single selection",
			edits: []Edit{{2, 5, Selected}},
			want:  []Interval{iv(2, 5)},
		},
		{
			name:  "last write wins",
			edits: []Edit{{0, 10, Selected}, {3, 6, Deselected}},
			want:  []Interval{iv(0, 3), iv(6, 10)},
		},
		{
			name:  "full overwrite",
			edits: []Edit{{0, 10, Selected}, {0, 10, Deselected}},
			want:  []Interval{},
		},
		{
			name:  "disjoint union",
			edits: []Edit{{0, 3, Selected}, {5, 8, Selected}},
			want:  []Interval{iv(0, 3), iv(5, 8)},
		},
		{
			name:  "adjacency merge",
			edits: []Edit{{0, 3, Selected}, {3, 6, Selected}},
			want:  []Interval{iv(0, 6)},
		},
		{
			name:  "overlap merge",
			edits: []Edit{{4, 9, Selected}, {1, 6, Selected}},
			want:  []Interval{iv(1, 9)},
		},
		{
			name:  "reselect after deselect",
			edits: []Edit{{0, 10, Selected}, {2, 8, Deselected}, {4, 5, Selected}},
			want:  []Interval{iv(0, 2), iv(4, 5), iv(8, 10)},
		},
		{
			name:  "deselect only",
			edits: []Edit{{0, 4, Deselected}},
			want:  []Interval{},
		},
		{
			name:  "order matters at overlap",
			edits: []Edit{{3, 6, Deselected}, {0, 10, Selected}},
			want:  []Interval{iv(0, 10)},
		},
		{
			name:  "selection reaching the end",
			edits: []Edit{{0, 2, Deselected}, {7, 12, Selected}},
			want:  []Interval{iv(7, 12)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := mustLedger(t, 12, tt.edits...)
			got := l.Normalize()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Normalize() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLedger_NormalizeIdempotent(t *testing.T) {
	l := mustLedger(t, 20,
		Edit{0, 10, Selected},
		Edit{3, 6, Deselected},
		Edit{12, 15, Selected},
		Edit{15, 18, Selected},
	)
	first := l.Normalize()

	again := mustLedger(t, 20, AsEdits(first)...)
	second := again.Normalize()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Normalize(Normalize()) = %v, want %v", second, first)
	}
	if !again.IsNormalized() {
		t.Error("ledger seeded from intervals should be normalized")
	}
}

func TestLedger_Record(t *testing.T) {
	l := mustLedger(t, 10)

	if err := l.Record(2, 5, Selected); err != nil {
		t.Fatalf("Record error = %v", err)
	}
	if l.Len() != 1 {
		t.Errorf("Len() = %d, want 1", l.Len())
	}

	invalid := []struct {
		name        string
		start, stop int
	}{
		{"empty", 3, 3},
		{"inverted", 5, 2},
		{"negative start", -1, 2},
		{"past bound", 8, 11},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			err := l.Record(tt.start, tt.stop, Selected)
			if !errors.Is(err, ErrInvalidSpan) {
				t.Errorf("Record(%d, %d) error = %v, want ErrInvalidSpan", tt.start, tt.stop, err)
			}
			if l.Len() != 1 {
				t.Errorf("Len() = %d after rejected record, want 1", l.Len())
			}
		})
	}
}

func TestLedger_RecordInvalidatesCache(t *testing.T) {
	l := mustLedger(t, 10)
	_ = l.Record(0, 10, Selected)
	if got := l.Normalize(); !reflect.DeepEqual(got, []Interval{iv(0, 10)}) {
		t.Fatalf("Normalize() = %v, want [[0:10)]", got)
	}

	_ = l.Record(4, 6, Deselected)
	want := []Interval{iv(0, 4), iv(6, 10)}
	if got := l.Normalize(); !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize() after Record = %v, want %v", got, want)
	}
}

func TestLedger_Collapse(t *testing.T) {
	l := mustLedger(t, 10, Edit{0, 10, Selected}, Edit{3, 6, Deselected})
	if l.IsNormalized() {
		t.Error("raw log should not report normalized")
	}

	l.Collapse()

	want := []Edit{{0, 3, Selected}, {6, 10, Selected}}
	if got := l.Edits(); !reflect.DeepEqual(got, want) {
		t.Errorf("Edits() after Collapse = %v, want %v", got, want)
	}
	if !l.IsNormalized() {
		t.Error("collapsed log should report normalized")
	}
	if l.Coverage() != 7 {
		t.Errorf("Coverage() = %d, want 7", l.Coverage())
	}
}

func TestLedger_CollapseEmpty(t *testing.T) {
	l := mustLedger(t, 5, Edit{0, 5, Deselected})
	l.Collapse()
	if l.Len() != 0 {
		t.Errorf("Len() = %d, want 0", l.Len())
	}
	if got := l.Edits(); got == nil || len(got) != 0 {
		t.Errorf("Edits() = %#v, want empty non-nil slice", got)
	}
}

func TestLedger_EditsIsCopy(t *testing.T) {
	l := mustLedger(t, 5, Edit{0, 2, Selected})
	edits := l.Edits()
	edits[0].Stop = 5
	if l.Edits()[0].Stop != 2 {
		t.Error("mutating Edits() result should not affect the ledger")
	}
}

func TestNewLedger_RejectsInvalidSeed(t *testing.T) {
	_, err := NewLedger(4, Edit{0, 2, Selected}, Edit{3, 9, Selected})
	if !errors.Is(err, ErrInvalidSpan) {
		t.Errorf("NewLedger error = %v, want ErrInvalidSpan", err)
	}
}

func TestLedger_IsNormalized(t *testing.T) {
	tests := []struct {
		name  string
		edits []Edit
		want  bool
	}{
		{"empty", nil, true},
		{"sorted disjoint", []Edit{{0, 2, Selected}, {4, 6, Selected}}, true},
		{"adjacent", []Edit{{0, 2, Selected}, {2, 6, Selected}}, false},
		{"unsorted", []Edit{{4, 6, Selected}, {0, 2, Selected}}, false},
		{"deselected entry", []Edit{{0, 2, Deselected}}, false},
	}
	for _, tt := range tests {
		l := mustLedger(t, 10, tt.edits...)
		if got := l.IsNormalized(); got != tt.want {
			t.Errorf("%s: IsNormalized() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestEdit_JSON(t *testing.T) {
	data, err := json.Marshal([]Edit{{1, 4, Selected}, {5, 6, Deselected}})
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	if string(data) != "[[1,4,true],[5,6,false]]" {
		t.Errorf("Marshal = %s, want [[1,4,true],[5,6,false]]", data)
	}

	var edits []Edit
	if err := json.Unmarshal([]byte(`[[0,3,true],[3,7,false]]`), &edits); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	want := []Edit{{0, 3, Selected}, {3, 7, Deselected}}
	if !reflect.DeepEqual(edits, want) {
		t.Errorf("Unmarshal = %v, want %v", edits, want)
	}
}

func TestEdit_UnmarshalRejectsBadShape(t *testing.T) {
	inputs := []string{
		`[0,3]`,
		`[0,3,true,1]`,
		`["a",3,true]`,
		`[0,3,"yes"]`,
		`[0,3,null]`,
		`[null,3,true]`,
		`[0, null, true]`,
		`[0,3.5,true]`,
		`{"start":0}`,
	}
	for _, in := range inputs {
		var e Edit
		if err := json.Unmarshal([]byte(in), &e); err == nil {
			t.Errorf("Unmarshal(%s) should fail", in)
		}
	}
}

func TestInterval_String(t *testing.T) {
	if got := iv(2, 5).String(); got != "[2:5)" {
		t.Errorf("String() = %q, want %q", got, "[2:5)")
	}
	if got := (Edit{2, 5, Deselected}).String(); got != "-[2:5)" {
		t.Errorf("Edit.String() = %q, want %q", got, "-[2:5)")
	}
}
