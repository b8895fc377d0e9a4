// Package filter builds and collects the compiled filter expressions the
// command line supplies. Shorthand options like --host expand into full
// expression text via macros; a Set holds every compiled filter so one
// definition can be checked against all of them.
package filter

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/roach88/brine/internal/expr"
)

// Set is an explicit collection of compiled filter expressions. It is
// constructed once per invocation and never mutated during matching.
type Set struct {
	exprs []*expr.Expression
}

// Add appends an already-compiled expression.
func (s *Set) Add(e *expr.Expression) {
	s.exprs = append(s.exprs, e)
}

// AddText compiles text and appends the result.
func (s *Set) AddText(text string) error {
	e, err := expr.Compile(text)
	if err != nil {
		return err
	}
	s.Add(e)
	return nil
}

// Empty reports whether the set holds no filters at all, in which case
// every definition matches.
func (s *Set) Empty() bool {
	return len(s.exprs) == 0
}

// Matching evaluates every filter against env and returns those that
// matched. Evaluation errors propagate unrecovered.
func (s *Set) Matching(env expr.Env) ([]*expr.Expression, error) {
	var matched []*expr.Expression
	for _, e := range s.exprs {
		v, err := e.Eval(env)
		if err != nil {
			return nil, err
		}
		if expr.Truthy(v) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

// Escape prepares a user-supplied value for embedding in a single-quoted
// expression literal.
func Escape(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `'`, `\'`)
	value = strings.ReplaceAll(value, `"`, `\"`)
	return strings.TrimSpace(value)
}

// Host expands a host name into a full filter expression.
func Host(name string) string {
	return fmt.Sprintf("type == 'host' and host_name == '%s'", Escape(name))
}

// Service expands "host;description" into a full filter expression. A
// value without a semicolon filters on the description alone.
func Service(value string) string {
	if host, desc, found := strings.Cut(value, ";"); found {
		return fmt.Sprintf("type == 'service' and host_name == '%s' and service_description == '%s'",
			Escape(host), Escape(desc))
	}
	return fmt.Sprintf("type == 'service' and service_description == '%s'", Escape(value))
}

// Command expands a command name into a full filter expression.
func Command(name string) string {
	return fmt.Sprintf("type == 'command' and command_name == '%s'", Escape(name))
}

// Contact expands a contact name into a full filter expression.
func Contact(name string) string {
	return fmt.Sprintf("type == 'contact' and contact_name == '%s'", Escape(name))
}

// Hostgroup expands a hostgroup name into a full filter expression.
func Hostgroup(name string) string {
	return fmt.Sprintf("type == 'hostgroup' and hostgroup_name == '%s'", Escape(name))
}

// Servicegroup expands a servicegroup name into a full filter expression.
func Servicegroup(name string) string {
	return fmt.Sprintf("type == 'servicegroup' and servicegroup_name == '%s'", Escape(name))
}

// FromFile reads one filter expression per line, skipping blank lines.
func FromFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}
