package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func waitEvent(t *testing.T, w *Watcher, timeout time.Duration) (Event, bool) {
	t.Helper()
	select {
	case ev, ok := <-w.Events():
		return ev, ok
	case <-time.After(timeout):
		return Event{}, false
	}
}

func TestOp_String(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{OpCreate, "CREATE"},
		{OpWrite, "WRITE"},
		{OpRemove, "REMOVE"},
		{OpRename, "RENAME"},
		{OpCreate | OpWrite, "CREATE|WRITE"},
		{OpRename | OpCreate, "CREATE|RENAME"},
		{OpCreate | OpWrite | OpRemove | OpRename, "CREATE|WRITE|REMOVE|RENAME"},
		{0, "UNKNOWN"},
		{1 << 7, "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Op(%d).String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestConvertOp(t *testing.T) {
	tests := []struct {
		in   fsnotify.Op
		want Op
	}{
		{fsnotify.Create, OpCreate},
		{fsnotify.Write, OpWrite},
		{fsnotify.Remove, OpRemove},
		{fsnotify.Rename, OpRename},
		{fsnotify.Chmod, 0},
		{fsnotify.Create | fsnotify.Write, OpCreate | OpWrite},
	}
	for _, tt := range tests {
		if got := convertOp(tt.in); got != tt.want {
			t.Errorf("convertOp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_MissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent", "a.check"))
	if !errors.Is(err, ErrPathNotExist) {
		t.Errorf("New error = %v, want ErrPathNotExist", err)
	}
}

func TestWatcher_Debounces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "review.check")
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := New(path, WithDebounce(100*time.Millisecond))
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	defer w.Close()

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("{\"n\": 1}"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	ev, ok := waitEvent(t, w, 3*time.Second)
	if !ok {
		t.Fatal("no event after writes")
	}
	if ev.Path != w.Path() || !ev.Op.Has(OpWrite) {
		t.Errorf("Event = %+v, want a write to %s", ev, w.Path())
	}
	if !ev.Exists() {
		t.Error("Event.Exists() = false")
	}

	if ev, ok := waitEvent(t, w, 400*time.Millisecond); ok {
		t.Errorf("burst produced a second event %+v", ev)
	}
}

func TestWatcher_AtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "review.check")

	w, err := New(path, WithDebounce(50*time.Millisecond))
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	defer w.Close()

	tmp := filepath.Join(dir, ".review.check.tmp")
	if err := os.WriteFile(tmp, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	ev, ok := waitEvent(t, w, 3*time.Second)
	if !ok {
		t.Fatal("no event after rename into place")
	}
	if !ev.Op.Has(OpCreate) {
		t.Errorf("Event.Op = %v, want CREATE", ev.Op)
	}
}

func TestWatcher_IgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	w, err := New(filepath.Join(dir, "review.check"), WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "other.check"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	if ev, ok := waitEvent(t, w, 300*time.Millisecond); ok {
		t.Errorf("unexpected event %+v for a sibling file", ev)
	}
}

func TestWatcher_Close(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "review.check"))
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close error = %v", err)
	}
	if _, ok := <-w.Events(); ok {
		t.Error("Events() should be closed")
	}
}

func TestWatcher_RunCancel(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "review.check"))
	if err != nil {
		t.Fatalf("New error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(Event) error { return nil }, nil)
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run error = %v, want context.Canceled", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWatcher_RunStopsOnHandlerError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "review.check")
	w, err := New(path, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("New error = %v", err)
	}

	stop := errors.New("stop")
	done := make(chan error, 1)
	go func() {
		done <- w.Run(context.Background(), func(Event) error { return stop }, nil)
	}()

	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-done:
		if !errors.Is(err, stop) {
			t.Errorf("Run error = %v, want the handler error", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after handler error")
	}
}
