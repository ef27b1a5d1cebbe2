package session

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/tidwall/gjson"

	"github.com/dshills/annohelper/internal/annotation/span"
)

// document is the persisted checkpoint layout.
type document struct {
	Head   int             `json:"head"`
	Frames []frameDocument `json:"frames"`
}

type frameDocument struct {
	Text string      `json:"text"`
	Anno []span.Edit `json:"anno"`
}

// Load parses a checkpoint document into a session positioned at its head.
// Any structural problem yields an error matching ErrMalformedCheckpoint;
// a read failure yields ErrIOFailure. Edit logs are kept as stored.
func Load(r io.Reader) (*Session, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return Decode(data)
}

// Decode parses checkpoint bytes. See Load.
func Decode(data []byte) (*Session, error) {
	if err := validate(data); err != nil {
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, malformed("", "decode", err)
	}

	frames := make([]*Frame, 0, len(doc.Frames))
	for i, fd := range doc.Frames {
		f, err := NewFrame(fd.Text, fd.Anno...)
		if err != nil {
			return nil, malformed(fmt.Sprintf("frames[%d].anno", i), "", err)
		}
		frames = append(frames, f)
	}

	s, err := New(frames, doc.Head)
	if err != nil {
		return nil, malformed("head", "", err)
	}
	return s, nil
}

// validate checks the document shape before decoding so that missing or
// mistyped fields are reported by name.
func validate(data []byte) error {
	if !gjson.ValidBytes(data) {
		return malformed("", "not valid JSON", nil)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return malformed("", "not an object", nil)
	}

	head := root.Get("head")
	if !head.Exists() {
		return malformed("head", "missing", nil)
	}
	if head.Type != gjson.Number || head.Num != math.Trunc(head.Num) {
		return malformed("head", "not an integer", nil)
	}

	frames := root.Get("frames")
	if !frames.Exists() {
		return malformed("frames", "missing", nil)
	}
	if !frames.IsArray() {
		return malformed("frames", "not an array", nil)
	}
	items := frames.Array()
	if len(items) == 0 {
		return malformed("frames", "", ErrEmptySession)
	}

	for i, item := range items {
		field := fmt.Sprintf("frames[%d]", i)
		if !item.IsObject() {
			return malformed(field, "not an object", nil)
		}
		if text := item.Get("text"); text.Type != gjson.String {
			return malformed(field+".text", "missing or not a string", nil)
		}
		anno := item.Get("anno")
		if anno.Exists() && anno.Type != gjson.Null && !anno.IsArray() {
			return malformed(field+".anno", "not an array", nil)
		}
	}
	return nil
}

// Save collapses the current frame and writes the whole session to w.
// Other frames are written in whatever form they were left in.
// A write failure yields ErrIOFailure.
func (s *Session) Save(w io.Writer) error {
	data, err := s.Encode()
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return nil
}

// Encode collapses the current frame and returns the checkpoint bytes.
func (s *Session) Encode() ([]byte, error) {
	s.Current().Collapse()

	doc := document{
		Head:   s.cursor,
		Frames: make([]frameDocument, len(s.frames)),
	}
	for i, f := range s.frames {
		doc.Frames[i] = frameDocument{Text: f.Text(), Anno: f.Edits()}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode checkpoint: %w", err)
	}
	return data, nil
}
