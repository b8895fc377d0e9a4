package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/brine/internal/expr"
	"github.com/roach88/brine/internal/objdef"
)

// report accumulates match counters and prints matching definitions in the
// selected output mode.
type report struct {
	out  io.Writer
	opts *Options

	metaFile   bool
	metaFilter bool
	metaTotal  bool

	matched int
	total   int

	// counts holds --count tallies: directive -> rendered value -> n.
	counts map[string]map[string]int

	yamlEnc *yaml.Encoder
}

func newReport(opts *Options, out io.Writer) *report {
	r := &report{out: out, opts: opts}
	for _, m := range opts.Metadata {
		switch m {
		case "file":
			r.metaFile = true
		case "filter":
			r.metaFilter = true
		case "total":
			r.metaTotal = true
		}
	}
	if len(opts.Counts) > 0 {
		r.counts = make(map[string]map[string]int, len(opts.Counts))
		for _, directive := range opts.Counts {
			r.counts[directive] = make(map[string]int)
		}
	}
	return r
}

// record prints one matching definition and bumps the counters. Returns
// errLimit once --limit matches have been seen.
func (r *report) record(def *objdef.Definition, matches []*expr.Expression) error {
	if err := r.print(def, matches); err != nil {
		return err
	}
	r.matched++
	if r.opts.Limit > 0 && r.matched >= r.opts.Limit {
		return errLimit
	}
	return nil
}

func (r *report) print(def *objdef.Definition, matches []*expr.Expression) error {
	if r.counts != nil {
		for _, directive := range r.opts.Counts {
			r.counts[directive][displayValue(def.Get(directive))]++
		}
		return nil
	}

	switch r.opts.Output {
	case "oneline":
		if id := def.Identifier(); id != "" {
			fmt.Fprintf(r.out, "%s '%s' at %s\n", def.Type(), id, def.Location())
		} else {
			fmt.Fprintf(r.out, "%s at %s\n", def.Type(), def.Location())
		}
		if len(r.opts.Selects) > 0 {
			for _, k := range r.opts.Selects {
				if v := def.Get(k); expr.Truthy(v) {
					fmt.Fprintf(r.out, "    %-*s %s\n", objdef.KeyWidth, k, expr.Format(v))
				}
			}
			fmt.Fprintln(r.out)
		}

	case "value":
		for _, k := range r.opts.Selects {
			if v := def.Get(k); expr.Truthy(v) {
				fmt.Fprintln(r.out, expr.Format(v))
			}
		}

	case "naemon":
		if r.metaFilter {
			for _, match := range matches {
				fmt.Fprintf(r.out, "# Filter: %s\n", match.Source())
			}
		}
		if r.metaFile {
			fmt.Fprintf(r.out, "# File: %s\n", def.Location())
		}
		if err := def.Dump(r.out, r.opts.Selects); err != nil {
			return err
		}
		fmt.Fprintln(r.out)

	case "json":
		data, err := marshalDefinition(def, r.opts.Selects)
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, string(data))

	case "yaml":
		if r.yamlEnc == nil {
			r.yamlEnc = yaml.NewEncoder(r.out)
		}
		if err := r.yamlEnc.Encode(yamlNode(def, r.opts.Selects)); err != nil {
			return err
		}

	case "none":
	}
	return nil
}

// finish prints the --count report and the total metadata line.
func (r *report) finish() error {
	if r.yamlEnc != nil {
		if err := r.yamlEnc.Close(); err != nil {
			return err
		}
	}

	if r.counts != nil {
		for _, directive := range r.opts.Counts {
			header := fmt.Sprintf("Count: %s", directive)
			fmt.Fprintln(r.out, header)
			fmt.Fprintln(r.out, strings.Repeat("=", len(header)))
			for _, v := range countOrder(r.counts[directive]) {
				fmt.Fprintf(r.out, "%-8d %s\n", r.counts[directive][v], v)
			}
			fmt.Fprintln(r.out)
		}
	}

	if r.metaTotal && r.opts.Output != "value" {
		fmt.Fprintf(r.out, "# Total: %d / %d matching object definition(s)\n", r.matched, r.total)
	}
	return nil
}

// countOrder sorts count keys by descending count, then by value for a
// deterministic report.
func countOrder(counts map[string]int) []string {
	values := make([]string, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	slices.SortFunc(values, func(a, b string) int {
		if d := counts[b] - counts[a]; d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})
	return values
}

// displayValue renders a directive value for the count report; a missing
// directive shows as "-".
func displayValue(v expr.Value) string {
	if _, ok := v.(expr.Null); ok {
		return "-"
	}
	return expr.Format(v)
}

// marshalDefinition renders a definition as a JSON object that preserves
// directive insertion order, which encoding/json's map marshaling would
// destroy.
func marshalDefinition(def *objdef.Definition, selected []string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	writePair := func(key string, value any) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(key)
		if err != nil {
			return err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valBytes, err := json.Marshal(value)
		if err != nil {
			return err
		}
		buf.Write(valBytes)
		return nil
	}

	if err := writePair("type", def.Type()); err != nil {
		return nil, err
	}
	for _, k := range def.Keys() {
		if len(selected) > 0 && !slices.Contains(selected, k) {
			continue
		}
		var native any
		switch v := def.Get(k).(type) {
		case expr.Int:
			native = int64(v)
		case expr.Float:
			native = float64(v)
		default:
			native, _ = def.Raw(k)
		}
		if err := writePair(k, native); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// yamlNode builds a mapping node by hand so directive order survives; the
// yaml package would sort a plain map.
func yamlNode(def *objdef.Definition, selected []string) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode}

	addPair := func(key string, value *yaml.Node) {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			value,
		)
	}

	addPair("type", &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: def.Type()})
	for _, k := range def.Keys() {
		if len(selected) > 0 && !slices.Contains(selected, k) {
			continue
		}
		raw, _ := def.Raw(k)
		switch def.Get(k).(type) {
		case expr.Int:
			addPair(k, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: raw})
		default:
			addPair(k, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: raw})
		}
	}
	return node
}
