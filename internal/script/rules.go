package script

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/annohelper/internal/annotation/session"
	"github.com/dshills/annohelper/internal/annotation/span"
	"github.com/dshills/annohelper/internal/vfs"
)

// DefaultTimeout bounds a single annotate call.
const DefaultTimeout = 5 * time.Second

// Rules is a compiled rule script.
//
// Rules is not safe for concurrent use; gopher-lua states are single threaded.
type Rules struct {
	L       *lua.LState
	name    string
	timeout time.Duration
	output  io.Writer

	// Set for the duration of one annotate call.
	frame   *session.Frame
	index   int
	count   int
	edits   int
	failure error

	closed bool
}

// Option configures Rules.
type Option func(*Rules)

// WithTimeout sets the per-frame execution timeout. 0 disables it.
func WithTimeout(d time.Duration) Option {
	return func(r *Rules) {
		r.timeout = d
	}
}

// WithOutput redirects the script's print calls. Defaults to os.Stderr.
func WithOutput(w io.Writer) Option {
	return func(r *Rules) {
		r.output = w
	}
}

// Report summarizes an Apply run.
type Report struct {
	Frames int // Frames visited
	Edits  int // Span edits recorded
	Marked int // Frames with at least one selected interval afterwards
}

// Compile runs source and checks that it defines annotate.
func Compile(name, source string, opts ...Option) (*Rules, error) {
	r := &Rules{
		name:    name,
		timeout: DefaultTimeout,
		output:  os.Stderr,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(r.L)
	r.install()

	if err := r.L.DoString(source); err != nil {
		r.L.Close()
		return nil, &Error{Name: name, Frame: -1, Err: err}
	}
	if fn := r.L.GetGlobal("annotate"); fn.Type() != lua.LTFunction {
		r.L.Close()
		return nil, &Error{Name: name, Frame: -1, Err: ErrNoAnnotate}
	}
	return r, nil
}

// LoadFile reads and compiles the rule script at path.
func LoadFile(fsys vfs.VFS, path string, opts ...Option) (*Rules, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, &Error{Name: path, Frame: -1, Err: err}
	}
	return Compile(path, string(data), opts...)
}

// Name returns the script name.
func (r *Rules) Name() string {
	return r.name
}

// Close releases the Lua state.
func (r *Rules) Close() {
	if r.closed {
		return
	}
	r.L.Close()
	r.closed = true
}

// Apply calls annotate for every frame of sess. Frames are visited with
// SetCursor, so each one is normalized when the runner moves past it, and the
// cursor is restored afterwards. On failure the edits of earlier frames are kept.
func (r *Rules) Apply(ctx context.Context, sess *session.Session) (Report, error) {
	var rep Report
	if r.closed {
		return rep, ErrClosed
	}

	origin := sess.Cursor()
	defer func() {
		_ = sess.SetCursor(origin)
	}()

	fn := r.L.GetGlobal("annotate")
	for i := 0; i < sess.Count(); i++ {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if err := sess.SetCursor(i); err != nil {
			return rep, err
		}

		r.frame = sess.Current()
		r.index = i
		r.count = sess.Count()
		r.edits = 0
		r.failure = nil

		err := r.call(ctx, fn, lua.LString(r.frame.Text()))
		rep.Edits += r.edits
		r.frame = nil
		if err != nil {
			if r.failure != nil {
				err = r.failure
			}
			return rep, &Error{Name: r.name, Frame: i, Err: err}
		}
		rep.Frames++
	}

	rep.Marked = sess.Annotated()
	return rep, nil
}

func (r *Rules) call(ctx context.Context, fn lua.LValue, args ...lua.LValue) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	r.L.SetContext(ctx)
	defer r.L.RemoveContext()

	return r.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, args...)
}

// openSafeLibraries opens the libraries that cannot reach the file system.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
}

func (r *Rules) install() {
	r.L.SetGlobal("print", r.L.NewFunction(r.print))

	mod := r.L.SetFuncs(r.L.NewTable(), map[string]lua.LGFunction{
		"select":   r.selectFn,
		"deselect": r.deselectFn,
		"find":     r.find,
		"text":     r.text,
		"len":      r.length,
		"frame":    r.frameIndex,
		"count":    r.frameCount,
	})
	r.L.SetGlobal("anno", mod)
}

// current returns the frame being annotated or raises a Lua error.
func (r *Rules) current(L *lua.LState, fn string) *session.Frame {
	if r.frame == nil {
		L.RaiseError("anno.%s: called outside annotate", fn)
	}
	return r.frame
}

func (r *Rules) record(L *lua.LState, fn string, status span.Status) int {
	start := L.CheckInt(1)
	stop := L.CheckInt(2)
	f := r.current(L, fn)

	if err := f.Record(start, stop, status); err != nil {
		r.failure = fmt.Errorf("anno.%s(%d, %d): %w", fn, start, stop, err)
		L.RaiseError("%v", r.failure)
		return 0
	}
	r.edits++
	return 0
}

// select(start, stop)
func (r *Rules) selectFn(L *lua.LState) int {
	return r.record(L, "select", span.Selected)
}

// deselect(start, stop)
func (r *Rules) deselectFn(L *lua.LState) int {
	return r.record(L, "deselect", span.Deselected)
}

// find(needle [, init]) -> start, stop | nil
// The needle is matched literally.
func (r *Rules) find(L *lua.LState) int {
	needle := L.CheckString(1)
	init := L.OptInt(2, 0)
	f := r.current(L, "find")

	if needle == "" || init < 0 || init >= f.Len() {
		L.Push(lua.LNil)
		return 1
	}

	text := f.Text()
	offset := byteOffset(text, init)
	i := strings.Index(text[offset:], needle)
	if i < 0 {
		L.Push(lua.LNil)
		return 1
	}

	start := init + utf8.RuneCountInString(text[offset:offset+i])
	L.Push(lua.LNumber(start))
	L.Push(lua.LNumber(start + utf8.RuneCountInString(needle)))
	return 2
}

// text() -> string
func (r *Rules) text(L *lua.LState) int {
	L.Push(lua.LString(r.current(L, "text").Text()))
	return 1
}

// len() -> number
func (r *Rules) length(L *lua.LState) int {
	L.Push(lua.LNumber(r.current(L, "len").Len()))
	return 1
}

// frame() -> number
func (r *Rules) frameIndex(L *lua.LState) int {
	r.current(L, "frame")
	L.Push(lua.LNumber(r.index))
	return 1
}

// count() -> number
func (r *Rules) frameCount(L *lua.LState) int {
	r.current(L, "count")
	L.Push(lua.LNumber(r.count))
	return 1
}

func (r *Rules) print(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	fmt.Fprintln(r.output, strings.Join(parts, "\t"))
	return 0
}

// byteOffset returns the byte index of the rune at runeIndex.
func byteOffset(s string, runeIndex int) int {
	n := 0
	for i := range s {
		if n == runeIndex {
			return i
		}
		n++
	}
	return len(s)
}
