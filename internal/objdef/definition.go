package objdef

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/brine/internal/expr"
)

// KeyWidth is the column the value starts at in canonical output,
// counted from the start of the directive key.
const KeyWidth = 30

// conversionTable names the directives whose values are read back as
// integers. Coercion failures are swallowed; the original string is
// returned unchanged.
var conversionTable = map[string]struct{}{
	"active_checks_enabled":        {},
	"check_freshness":              {},
	"check_interval":               {},
	"event_handler_enabled":        {},
	"first_notification_delay":     {},
	"flap_detection_enabled":       {},
	"freshness_threshold":          {},
	"high_flap_threshold":          {},
	"hourly_value":                 {},
	"is_volatile":                  {},
	"low_flap_threshold":           {},
	"max_check_attempts":           {},
	"notification_interval":        {},
	"notifications_enabled":        {},
	"obsess":                       {},
	"obsess_over_host":             {},
	"obsess_over_service":          {},
	"passive_checks_enabled":       {},
	"process_perf_data":            {},
	"register":                     {},
	"retain_nonstatus_information": {},
	"retain_status_information":    {},
	"retry_interval":               {},
}

// Definition is one parsed typed block: an ordered directive mapping with
// an immutable type tag. The line number and source name exist for
// diagnostics only; they never influence behavior.
type Definition struct {
	objType string
	typ     *Type
	keys    []string
	values  map[string]string
	line    int
	source  string
}

// Type returns the immutable type tag, e.g. "host".
func (d *Definition) Type() string {
	return d.objType
}

// Line returns the source line the block opener was read from, or zero.
func (d *Definition) Line() int {
	return d.line
}

// Location describes where the definition came from, for diagnostics.
func (d *Definition) Location() string {
	switch {
	case d.source != "" && d.line != 0:
		return fmt.Sprintf("%s line %d", d.source, d.line)
	case d.line != 0:
		return fmt.Sprintf("line %d", d.line)
	default:
		return d.source
	}
}

// Keys returns the directive names in insertion order.
func (d *Definition) Keys() []string {
	return slices.Clone(d.keys)
}

// Len returns the number of stored directives.
func (d *Definition) Len() int {
	return len(d.keys)
}

// Raw returns the stored string for key without coercion or computed
// directive handling.
func (d *Definition) Raw(key string) (string, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Get returns the value for key. Computed directives shadow stored ones,
// known numeric directives are coerced, and missing keys yield Null.
func (d *Definition) Get(key string) expr.Value {
	if fn, ok := d.typ.Computed[key]; ok {
		return fn(d)
	}
	v, ok := d.values[key]
	if !ok {
		return expr.Null{}
	}
	if _, numeric := conversionTable[key]; numeric {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return expr.Int(n)
		}
	}
	return expr.Str(v)
}

// Lookup implements expr.Env.
func (d *Definition) Lookup(name string) expr.Value {
	return d.Get(name)
}

// Set implements expr.MutableEnv. Computed directives are read-only.
// Null or an empty string removes the directive entirely.
func (d *Definition) Set(name string, v expr.Value) error {
	if _, computed := d.typ.Computed[name]; computed {
		return &expr.InvalidExpressionError{
			Msg: fmt.Sprintf("cannot assign to computed directive %q", name),
		}
	}
	s := expr.Format(v)
	if s == "" {
		d.remove(name)
		return nil
	}
	d.setRaw(name, s)
	return nil
}

// Identifier derives the record's identity per its type rule, e.g. a
// host's host_name or a service's "host_name;service_description".
func (d *Definition) Identifier() string {
	return d.typ.Identifier(d)
}

// setRaw stores a directive, preserving insertion order. Duplicate keys
// keep their original position; the last write wins.
func (d *Definition) setRaw(key, value string) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

func (d *Definition) remove(key string) {
	if _, ok := d.values[key]; !ok {
		return
	}
	delete(d.values, key)
	if i := slices.Index(d.keys, key); i >= 0 {
		d.keys = slices.Delete(d.keys, i, i+1)
	}
}

// Dump writes the canonical serialized form. When selected is non-empty,
// only those directives are written. Directives with empty values are
// omitted.
func (d *Definition) Dump(w io.Writer, selected []string) error {
	if _, err := fmt.Fprintf(w, "define %s {\n", d.objType); err != nil {
		return err
	}
	for _, k := range d.keys {
		if len(selected) > 0 && !slices.Contains(selected, k) {
			continue
		}
		v := d.values[k]
		if v == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "    %-*s %s\n", KeyWidth, k, v); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}

// String returns the full canonical serialized form.
func (d *Definition) String() string {
	var sb strings.Builder
	_ = d.Dump(&sb, nil)
	return sb.String()
}
