package expr

import (
	"slices"
	"strings"
)

// Env resolves bare names during evaluation. Implementations return Null
// for unknown names; lookups never fail.
type Env interface {
	Lookup(name string) Value
}

// MutableEnv additionally accepts assignments from the mutation forms.
type MutableEnv interface {
	Env

	// Set stores a value under name. Null or the empty string removes the
	// name entirely.
	Set(name string, v Value) error

	// Raw returns the stored string for name without any read-side
	// coercion. The augmented assignment forms operate on the raw
	// comma-joined text.
	Raw(name string) (string, bool)
}

// MapEnv is a map-backed Env, mainly for tests and ad hoc evaluation.
type MapEnv map[string]Value

// Lookup implements Env.
func (m MapEnv) Lookup(name string) Value {
	if v, ok := m[name]; ok {
		return v
	}
	return Null{}
}

// Expression is a compiled expression: the original source text plus an
// immutable syntax tree. Evaluation takes an external environment and is
// otherwise stateless, so one Expression can be evaluated many times.
type Expression struct {
	source string
	root   Node
	ops    OperatorTable
	funcs  FunctionTable
}

// Compile parses source using the default operator and function tables.
func Compile(source string) (*Expression, error) {
	return CompileWith(source, DefaultOperators(), DefaultFunctions())
}

// CompileWith parses source against explicit operator and function tables.
func CompileWith(source string, ops OperatorTable, funcs FunctionTable) (*Expression, error) {
	root, err := parse(source)
	if err != nil {
		return nil, err
	}
	return &Expression{source: source, root: root, ops: ops, funcs: funcs}, nil
}

// Source returns the original expression text.
func (e *Expression) Source() string {
	return e.source
}

// Eval evaluates the expression in filter mode. The mutation forms are
// rejected here; use EvalUpdate for them.
func (e *Expression) Eval(env Env) (Value, error) {
	ev := &evaluator{ops: e.ops, funcs: e.funcs, env: env}
	return ev.eval(e.root)
}

// EvalUpdate evaluates the expression in mutation mode, allowing the
// assignment and augmented assignment forms to mutate env in place.
func (e *Expression) EvalUpdate(env MutableEnv) (Value, error) {
	ev := &evaluator{ops: e.ops, funcs: e.funcs, env: env, mutable: env}
	return ev.eval(e.root)
}

type evaluator struct {
	ops     OperatorTable
	funcs   FunctionTable
	env     Env
	mutable MutableEnv
}

// eval walks the closed set of node kinds. Unknown kinds cannot occur;
// the default arm guards against a new node type missing a case here.
func (ev *evaluator) eval(n Node) (Value, error) {
	switch node := n.(type) {
	case *LiteralNode:
		return node.Val, nil

	case *NameNode:
		if ev.env == nil {
			return Null{}, nil
		}
		return ev.env.Lookup(node.Name), nil

	case *NotNode:
		v, err := ev.eval(node.Operand)
		if err != nil {
			return nil, err
		}
		return Bool(!Truthy(v)), nil

	case *NegNode:
		v, err := ev.eval(node.Operand)
		if err != nil {
			return nil, err
		}
		switch val := v.(type) {
		case Int:
			return -val, nil
		case Float:
			return -val, nil
		default:
			return nil, invalidf("unsupported operand type for -: %s", TypeName(v))
		}

	case *AndNode:
		left, err := ev.eval(node.Left)
		if err != nil {
			return nil, err
		}
		if !Truthy(left) {
			return left, nil
		}
		return ev.eval(node.Right)

	case *OrNode:
		left, err := ev.eval(node.Left)
		if err != nil {
			return nil, err
		}
		if Truthy(left) {
			return left, nil
		}
		return ev.eval(node.Right)

	case *BinaryNode:
		left, err := ev.eval(node.Left)
		if err != nil {
			return nil, err
		}
		right, err := ev.eval(node.Right)
		if err != nil {
			return nil, err
		}
		fn, ok := ev.ops[node.Op]
		if !ok {
			return nil, invalidf("operator %s is not supported", node.Op)
		}
		return fn(left, right)

	case *CallNode:
		fn, ok := ev.funcs[node.Name]
		if !ok {
			return nil, invalidf("unknown function %q", node.Name)
		}
		args := make([]Value, len(node.Args))
		for i, argNode := range node.Args {
			arg, err := ev.eval(argNode)
			if err != nil {
				return nil, err
			}
			args[i] = arg
		}
		return fn(args)

	case *AssignNode:
		if ev.mutable == nil {
			return nil, invalidf("assignment is only allowed in update expressions")
		}
		v, err := ev.eval(node.Value)
		if err != nil {
			return nil, err
		}
		if err := checkAssignable(node.Name, v); err != nil {
			return nil, err
		}
		if err := ev.mutable.Set(node.Name, v); err != nil {
			return nil, err
		}
		return v, nil

	case *AugAssignNode:
		if ev.mutable == nil {
			return nil, invalidf("assignment is only allowed in update expressions")
		}
		return ev.evalAugAssign(node)

	default:
		return nil, invalidf("unsupported expression construct")
	}
}

// evalAugAssign applies += and -= with comma-list member semantics: the
// current value is treated as a comma-joined list, += appends the member
// if absent, -= removes the first matching occurrence. An emptied list
// removes the directive entirely. The grammar admits no other augmented
// operators, so node.Op is always OpAdd or OpSub here.
func (ev *evaluator) evalAugAssign(node *AugAssignNode) (Value, error) {
	rhs, err := ev.eval(node.Value)
	if err != nil {
		return nil, err
	}

	member, ok := rhs.(Str)
	if !ok {
		return nil, invalidf("augmented assignment to %q requires a string member, got %s",
			node.Name, TypeName(rhs))
	}
	var members []string
	if current, ok := ev.mutable.Raw(node.Name); ok && current != "" {
		members = strings.Split(current, ",")
	}
	if node.Op == OpAdd {
		if !slices.Contains(members, string(member)) {
			members = append(members, string(member))
		}
	} else if i := slices.Index(members, string(member)); i >= 0 {
		members = slices.Delete(members, i, i+1)
	}
	stored := Value(Str(strings.Join(members, ",")))
	if len(members) == 0 {
		stored = Null{}
	}
	if err := ev.mutable.Set(node.Name, stored); err != nil {
		return nil, err
	}
	return stored, nil
}

// checkAssignable enforces the assignment value policy: strings, ints,
// floats and None (meaning "remove") are storable, everything else is a
// runtime error rather than being silently stringified.
func checkAssignable(name string, v Value) error {
	switch v.(type) {
	case Str, Int, Float, Null:
		return nil
	default:
		return runtimef("cannot assign %s value to %q", TypeName(v), name)
	}
}
