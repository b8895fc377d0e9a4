package stream

import (
	"io"

	"github.com/roach88/brine/internal/objdef"
)

// Stream reads object definitions from an arbitrary reader, typically
// stdin. It has no rewrite capability; use File for that.
type Stream struct {
	reg   *objdef.Registry
	lines *lineReader
}

// New creates a Stream over r.
func New(reg *objdef.Registry, r io.Reader) *Stream {
	return &Stream{reg: reg, lines: newLineReader(r, nil)}
}

// Next returns the next object definition, or io.EOF when the input is
// exhausted.
func (s *Stream) Next() (*objdef.Definition, error) {
	return s.reg.Parse(s.lines, "", nil)
}
