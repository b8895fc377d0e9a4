package expr

import (
	"errors"
	"fmt"
	"strings"
)

// SyntaxError reports expression text that failed to parse. It carries the
// offending source and the byte offset of the failure so callers can print
// caret-style diagnostics.
type SyntaxError struct {
	Source string
	Offset int
	Msg    string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Offset, e.Msg)
}

// Caret renders the source with a caret marker under the failing offset.
func (e *SyntaxError) Caret() string {
	offset := e.Offset
	if offset > len(e.Source) {
		offset = len(e.Source)
	}
	return e.Source + "\n" + strings.Repeat(" ", offset) + "^"
}

// InvalidExpressionError reports a well-formed expression that uses a
// disallowed construct, or a type violation detected during evaluation.
type InvalidExpressionError struct {
	Msg string
}

// Error implements the error interface.
func (e *InvalidExpressionError) Error() string {
	return e.Msg
}

// RuntimeError reports an assignment whose value has an unsupported type.
// Only strings, ints, floats and None can be stored in a directive.
type RuntimeError struct {
	Msg string
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	return e.Msg
}

// IsSyntaxError returns true if the error is a SyntaxError.
// Uses errors.As to handle wrapped errors.
func IsSyntaxError(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se)
}

func invalidf(format string, args ...any) error {
	return &InvalidExpressionError{Msg: fmt.Sprintf(format, args...)}
}

func runtimef(format string, args ...any) error {
	return &RuntimeError{Msg: fmt.Sprintf(format, args...)}
}
