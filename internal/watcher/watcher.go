// Package watcher reports changes to a single checkpoint file.
//
// The file's parent directory is watched rather than the file itself, so
// atomic saves (write a sibling, rename over the target) keep being seen.
// Bursts of changes are coalesced into one Event per debounce window.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Common errors returned by watcher operations.
var (
	ErrWatcherClosed = errors.New("watcher is closed")
	ErrPathNotExist  = errors.New("directory does not exist")
)

// DefaultDebounce is the debounce delay used when none is configured.
const DefaultDebounce = 200 * time.Millisecond

// Op represents the kind of change seen for the file.
type Op uint32

const (
	// OpCreate indicates the file was created or renamed into place.
	OpCreate Op = 1 << iota
	// OpWrite indicates the file was written to.
	OpWrite
	// OpRemove indicates the file was removed.
	OpRemove
	// OpRename indicates the file was renamed away.
	OpRename
)

var opNames = []struct {
	op   Op
	name string
}{
	{OpCreate, "CREATE"},
	{OpWrite, "WRITE"},
	{OpRemove, "REMOVE"},
	{OpRename, "RENAME"},
}

// String returns the names of the set operations joined by "|",
// in the order CREATE, WRITE, REMOVE, RENAME.
func (op Op) String() string {
	var names []string
	for _, n := range opNames {
		if op.Has(n.op) {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "UNKNOWN"
	}
	return strings.Join(names, "|")
}

// Has returns true if the operation includes the given op.
func (op Op) Has(o Op) bool {
	return op&o == o
}

// Event is one debounced change to the watched file.
type Event struct {
	// Path is the absolute path of the watched file.
	Path string

	// Op combines every operation seen during the debounce window.
	Op Op

	// Timestamp is when the last operation in the window was seen.
	Timestamp time.Time
}

// Exists reports whether the file was present when the event fired.
func (e Event) Exists() bool {
	_, err := os.Stat(e.Path)
	return err == nil
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce delay.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// WithBufferSize sets the capacity of the event and error channels.
func WithBufferSize(n int) Option {
	return func(w *Watcher) {
		if n > 0 {
			w.bufSize = n
		}
	}
}

// Watcher watches one file through fsnotify.
type Watcher struct {
	mu sync.Mutex

	watcher *fsnotify.Watcher
	path    string
	delay   time.Duration
	bufSize int

	events chan Event
	errors chan error

	closed   bool
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// New starts watching path. The file itself may not exist yet, but its
// directory must.
func New(path string, opts ...Option) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:    absPath,
		delay:   DefaultDebounce,
		bufSize: 16,
		closeCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	dir := filepath.Dir(absPath)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, ErrPathNotExist
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w.watcher = fsw
	w.events = make(chan Event, w.bufSize)
	w.errors = make(chan error, w.bufSize)

	w.closedWg.Add(1)
	go w.processLoop()

	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Events returns the debounced event channel.
// The channel is closed when the watcher is closed.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the error channel.
// The channel is closed when the watcher is closed.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher. Pending changes are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.closedWg.Wait()

	close(w.events)
	close(w.errors)

	return w.watcher.Close()
}

// Run calls fn for every event until ctx is done or fn returns an error.
// Watcher errors are passed to onErr when it is non-nil. Run closes the watcher.
func (w *Watcher) Run(ctx context.Context, fn func(Event) error, onErr func(error)) error {
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.events:
			if !ok {
				return ErrWatcherClosed
			}
			if err := fn(ev); err != nil {
				return err
			}

		case err, ok := <-w.errors:
			if !ok {
				return ErrWatcherClosed
			}
			if onErr != nil {
				onErr(err)
			}
		}
	}
}

// processLoop filters fsnotify events to the watched file and debounces them.
func (w *Watcher) processLoop() {
	defer w.closedWg.Done()

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending Op
		last    time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.closeCh:
			return

		case fsEvent, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(fsEvent.Name) != w.path {
				continue
			}
			op := convertOp(fsEvent.Op)
			if op == 0 {
				continue
			}

			pending |= op
			last = time.Now()
			if timer == nil {
				timer = time.NewTimer(w.delay)
			} else {
				timer.Reset(w.delay)
			}
			fire = timer.C

		case <-fire:
			w.sendEvent(Event{Path: w.path, Op: pending, Timestamp: last})
			pending = 0
			fire = nil

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.sendError(err)
		}
	}
}

// convertOp converts fsnotify.Op to watcher.Op. Chmod alone is not a change.
func convertOp(fsOp fsnotify.Op) Op {
	var op Op
	if fsOp.Has(fsnotify.Create) {
		op |= OpCreate
	}
	if fsOp.Has(fsnotify.Write) {
		op |= OpWrite
	}
	if fsOp.Has(fsnotify.Remove) {
		op |= OpRemove
	}
	if fsOp.Has(fsnotify.Rename) {
		op |= OpRename
	}
	return op
}

// sendEvent sends an event to the output channel.
func (w *Watcher) sendEvent(event Event) {
	select {
	case w.events <- event:
	default:
		// Channel full, drop event
	}
}

// sendError sends an error to the output channel.
func (w *Watcher) sendError(err error) {
	select {
	case w.errors <- err:
	default:
		// Channel full, drop error
	}
}
