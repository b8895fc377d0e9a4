package expr

import "strings"

// Func implements a callable available to expressions.
type Func func(args []Value) (Value, error)

// FunctionTable maps function name to implementation. Like the operator
// table it is built once and passed explicitly to CompileWith.
type FunctionTable map[string]Func

// DefaultFunctions returns the function table used by Compile.
func DefaultFunctions() FunctionTable {
	return FunctionTable{
		"has_member": hasMember,
	}
}

// hasMember tests whether a comma-separated collection string contains
// every requested member. A falsy collection contains nothing. Elements
// are trimmed of surrounding whitespace before comparison.
func hasMember(args []Value) (Value, error) {
	if len(args) < 1 {
		return nil, invalidf("has_member: missing collection argument")
	}
	collection := args[0]
	if !Truthy(collection) {
		return Bool(false), nil
	}
	cs, ok := collection.(Str)
	if !ok {
		return nil, invalidf("has_member: collection must be a string, got %s", TypeName(collection))
	}

	members := make(map[string]struct{})
	for _, member := range strings.Split(string(cs), ",") {
		members[strings.TrimSpace(member)] = struct{}{}
	}

	for _, arg := range args[1:] {
		want, ok := arg.(Str)
		if !ok {
			return Bool(false), nil
		}
		if _, present := members[string(want)]; !present {
			return Bool(false), nil
		}
	}
	return Bool(true), nil
}
