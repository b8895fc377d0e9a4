package objdef

import "github.com/roach88/brine/internal/expr"

// Type describes one object type: how its identifier is derived, and any
// computed read-only directive names that shadow stored directives.
type Type struct {
	Name       string
	Identifier func(d *Definition) string
	Computed   map[string]func(d *Definition) expr.Value
}

// Registry is the closed mapping from type tag to Type. It is built once
// at startup and read-only afterward; unknown tags fall back to a generic
// entry that keeps the tag as ordinary state.
type Registry struct {
	types   map[string]*Type
	generic *Type
}

// DefaultRegistry builds the registry for the standard monitoring object
// types. The declaration list is static; registering new types means
// extending this list, not mutating a live registry.
func DefaultRegistry() *Registry {
	declared := []*Type{
		{Name: "command", Identifier: nameIdentifier("command_name")},
		{Name: "contact", Identifier: nameIdentifier("contact_name")},
		{Name: "contactgroup", Identifier: nameIdentifier("contactgroup_name")},
		{Name: "host", Identifier: nameIdentifier("host_name")},
		{Name: "hostgroup", Identifier: nameIdentifier("hostgroup_name")},
		{Name: "service", Identifier: serviceIdentifier},
		{Name: "servicegroup", Identifier: nameIdentifier("servicegroup_name")},
		{Name: "timeperiod", Identifier: nameIdentifier("timeperiod_name")},
	}

	r := &Registry{
		types:   make(map[string]*Type, len(declared)),
		generic: &Type{Identifier: nameIdentifier("name")},
	}
	for _, t := range declared {
		t.Computed = computedDirectives()
		r.types[t.Name] = t
	}
	r.generic.Computed = computedDirectives()
	return r
}

// computedDirectives returns the computed names common to every type.
// Each Type gets its own map so a per-type extension cannot leak.
func computedDirectives() map[string]func(d *Definition) expr.Value {
	return map[string]func(d *Definition) expr.Value{
		"type": func(d *Definition) expr.Value { return expr.Str(d.objType) },
	}
}

// TypeFor returns the registered Type for tag, or the generic fallback.
func (r *Registry) TypeFor(tag string) *Type {
	if t, ok := r.types[tag]; ok {
		return t
	}
	return r.generic
}

// NewDefinition creates an empty definition with the given type tag.
func (r *Registry) NewDefinition(tag string) *Definition {
	return &Definition{
		objType: tag,
		typ:     r.TypeFor(tag),
		values:  make(map[string]string),
	}
}

// nameIdentifier derives the identifier from a single directive.
func nameIdentifier(directive string) func(d *Definition) string {
	return func(d *Definition) string {
		v, _ := d.Raw(directive)
		return v
	}
}

// serviceIdentifier prefers "host_name;service_description", falls back
// to the hostgroup-based form, and finally the bare description.
func serviceIdentifier(d *Definition) string {
	desc, _ := d.Raw("service_description")
	if host, ok := d.Raw("host_name"); ok && host != "" {
		return host + ";" + desc
	}
	if group, ok := d.Raw("hostgroup_name"); ok && group != "" {
		return group + ";" + desc
	}
	return desc
}
