package objdef

import (
	"fmt"
	"strings"
	"unicode"
)

// Line is one trimmed, comment-stripped line of input with its original
// line number.
type Line struct {
	Num  int
	Text string
}

// LineSource yields data lines one at a time, returning io.EOF when the
// input is exhausted.
type LineSource interface {
	Next() (Line, error)
}

// ParseError reports a structural problem in the configuration text:
// a malformed directive line or an unterminated block.
type ParseError struct {
	Source string
	Line   int
	Msg    string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	location := fmt.Sprintf("line %d", e.Line)
	if e.Source != "" {
		location = fmt.Sprintf("%s line %d", e.Source, e.Line)
	}
	return fmt.Sprintf("unsupported syntax at %s: %s", location, e.Msg)
}

// Parse reads the next object definition from lines. Lines before the
// block opener are skipped. blockStart, if non-nil, is called once the
// opener line has been recognized, before any directive is read; the
// rewriter uses it to flush buffered pass-through text.
//
// Returns io.EOF when the input is exhausted before a block begins.
func (r *Registry) Parse(lines LineSource, source string, blockStart func()) (*Definition, error) {
	var opener Line
	for {
		ln, err := lines.Next()
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(ln.Text, "define ") {
			opener = ln
			break
		}
	}

	if blockStart != nil {
		blockStart()
	}

	rest := strings.TrimPrefix(opener.Text, "define ")
	if strings.Contains(rest, "{") {
		rest = strings.Trim(rest, " {")
	} else {
		// Assume the next line holds the single {
		rest = strings.TrimSpace(rest)
		if _, err := lines.Next(); err != nil {
			return nil, &ParseError{Source: source, Line: opener.Num, Msg: "unterminated object definition"}
		}
	}

	d := r.NewDefinition(rest)
	d.line = opener.Num
	d.source = source

	for {
		ln, err := lines.Next()
		if err != nil {
			return nil, &ParseError{Source: source, Line: opener.Num, Msg: "unterminated object definition"}
		}
		if ln.Text == "}" {
			return d, nil
		}
		key, value, ok := splitDirective(ln.Text)
		if !ok {
			return nil, &ParseError{
				Source: source,
				Line:   ln.Num,
				Msg:    fmt.Sprintf("directive %q has no value", ln.Text),
			}
		}
		d.setRaw(key, value)
	}
}

// splitDirective splits a directive line on the first run of whitespace.
func splitDirective(text string) (key, value string, ok bool) {
	i := strings.IndexFunc(text, unicode.IsSpace)
	if i < 0 {
		return "", "", false
	}
	return text[:i], strings.TrimSpace(text[i:]), true
}
