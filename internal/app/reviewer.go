package app

import (
	"github.com/google/uuid"

	"github.com/dshills/annohelper/internal/annotation/session"
	"github.com/dshills/annohelper/internal/annotation/span"
	"github.com/dshills/annohelper/internal/config"
	"github.com/dshills/annohelper/internal/store"
)

// StatusIdle is the status line shown before any checkpoint is opened.
const StatusIdle = "Open a file to begin"

// Reviewer holds the open session and the path it came from.
// It is what a front end calls in response to user actions.
//
// Reviewer is not safe for concurrent use.
type Reviewer struct {
	store  *store.Store
	cfg    config.Config
	logger *Logger

	sess *session.Session
	path string
	log  *Logger
}

// NewReviewer creates a Reviewer with no open session.
// A nil logger disables logging.
func NewReviewer(st *store.Store, cfg config.Config, logger *Logger) *Reviewer {
	if logger == nil {
		logger = NullLogger
	}
	logger = logger.WithComponent("reviewer")
	return &Reviewer{
		store:  st,
		cfg:    cfg,
		logger: logger,
		log:    logger,
	}
}

// Open loads the checkpoint at path. The previous session, if any, is kept
// when loading fails.
func (r *Reviewer) Open(path string) error {
	if path == "" {
		path = r.cfg.Checkpoint.Path
	}
	if path == "" {
		return NewOperationError("open", "", ErrNoPath)
	}

	sess, err := r.store.Load(path)
	if err != nil {
		r.logger.Debug("open %s failed: %v", path, err)
		return NewOperationError("open", path, err)
	}

	r.sess = sess
	r.path = path
	r.log = r.logger.WithFields(map[string]any{
		"session": uuid.NewString(),
		"path":    path,
	})
	r.log.Debug("opened %d frames at %s", sess.Count(), sess.Progress())
	return nil
}

// Adopt makes sess the open session, to be saved at path.
// It is used for sessions built in memory rather than loaded.
func (r *Reviewer) Adopt(path string, sess *session.Session) {
	r.sess = sess
	r.path = path
	r.log = r.logger.WithFields(map[string]any{
		"session": uuid.NewString(),
		"path":    path,
	})
	r.log.Debug("adopted %d frames", sess.Count())
}

// Save writes the open session to path, or to the opened path when path is empty.
// On success path becomes the session's path.
func (r *Reviewer) Save(path string) error {
	if r.sess == nil {
		return NewOperationError("save", path, ErrNoSession)
	}
	if path == "" {
		path = r.path
	}
	if path == "" {
		return NewOperationError("save", "", ErrNoPath)
	}

	if err := r.store.Save(path, r.sess); err != nil {
		r.log.Debug("save %s failed: %v", path, err)
		return NewOperationError("save", path, err)
	}
	r.path = path
	r.log.Debug("saved to %s", path)
	return nil
}

// Mark selects [start, stop) of the current frame.
func (r *Reviewer) Mark(start, stop int) error {
	return r.record("mark", start, stop, span.Selected)
}

// Unmark deselects [start, stop) of the current frame.
func (r *Reviewer) Unmark(start, stop int) error {
	return r.record("unmark", start, stop, span.Deselected)
}

func (r *Reviewer) record(op string, start, stop int, status span.Status) error {
	if r.sess == nil {
		return NewOperationError(op, "", ErrNoSession)
	}
	e := span.Edit{Start: start, Stop: stop, Status: status}
	if err := r.sess.Record(start, stop, status); err != nil {
		return NewOperationError(op, e.String(), err)
	}
	r.log.Debug("%s frame %d", e, r.sess.Cursor())
	return nil
}

// Next moves to the following frame. Returns false on the final frame.
func (r *Reviewer) Next() (bool, error) {
	if r.sess == nil {
		return false, NewOperationError("next", "", ErrNoSession)
	}
	if !r.sess.Advance() {
		return false, nil
	}
	return true, r.moved()
}

// Prev moves to the preceding frame. Returns false on the first frame.
func (r *Reviewer) Prev() (bool, error) {
	if r.sess == nil {
		return false, NewOperationError("prev", "", ErrNoSession)
	}
	if !r.sess.Retreat() {
		return false, nil
	}
	return true, r.moved()
}

// Seek moves to frame pos (0-based).
func (r *Reviewer) Seek(pos int) error {
	if r.sess == nil {
		return NewOperationError("seek", "", ErrNoSession)
	}
	if err := r.sess.SetCursor(pos); err != nil {
		return NewOperationError("seek", "", err)
	}
	return r.moved()
}

// moved autosaves after navigation when configured.
func (r *Reviewer) moved() error {
	r.log.Debug("at %s", r.sess.Progress())
	if !r.cfg.Review.Autosave || r.path == "" {
		return nil
	}
	return r.Save("")
}

// Status returns the progress line, "N / M" or StatusIdle.
func (r *Reviewer) Status() string {
	if r.sess == nil {
		return StatusIdle
	}
	return r.sess.Progress()
}

// Text returns the current frame's text, or "" with no open session.
func (r *Reviewer) Text() string {
	if r.sess == nil {
		return ""
	}
	return r.sess.CurrentText()
}

// Intervals returns the current frame's selected intervals.
func (r *Reviewer) Intervals() []span.Interval {
	if r.sess == nil {
		return nil
	}
	return r.sess.CurrentIntervals()
}

// Session returns the open session, or nil.
func (r *Reviewer) Session() *session.Session {
	return r.sess
}

// Path returns the path the session will be saved to.
func (r *Reviewer) Path() string {
	return r.path
}
