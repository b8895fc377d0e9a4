package stream

import (
	"bufio"
	"io"
	"strings"

	"github.com/roach88/brine/internal/objdef"
)

// lineReader turns raw text into trimmed, comment-stripped, numbered
// lines. onRaw, if set, receives every raw line exactly as read, before
// any processing; the rewriter uses it to keep a pass-through buffer.
type lineReader struct {
	r     *bufio.Reader
	num   int
	onRaw func(raw string)
}

func newLineReader(r io.Reader, onRaw func(string)) *lineReader {
	return &lineReader{r: bufio.NewReader(r), onRaw: onRaw}
}

// Next implements objdef.LineSource. Blank lines and lines that are all
// comment are skipped; a `#` starts a comment anywhere on a line.
func (lr *lineReader) Next() (objdef.Line, error) {
	for {
		raw, err := lr.r.ReadString('\n')
		if raw != "" {
			lr.num++
			if lr.onRaw != nil {
				lr.onRaw(raw)
			}
			text := raw
			if i := strings.IndexByte(text, '#'); i >= 0 {
				text = text[:i]
			}
			text = strings.TrimSpace(text)
			if text != "" {
				return objdef.Line{Num: lr.num, Text: text}, nil
			}
		}
		if err != nil {
			return objdef.Line{}, err
		}
	}
}
