package expr

import (
	"math"
	"strings"
)

// BinFunc evaluates one binary operator.
type BinFunc func(a, b Value) (Value, error)

// OperatorTable maps operator identity to its evaluator. Tables are built
// once (see DefaultOperators) and passed explicitly to CompileWith; there
// is no shared mutable operator state.
type OperatorTable map[BinOp]BinFunc

// DefaultOperators returns the operator table used by Compile. Arithmetic
// and comparison follow the usual rules. Membership deviates on purpose:
// `in` against an empty or missing right-hand side is false, and `not in`
// against the same is true, because directives are frequently absent.
func DefaultOperators() OperatorTable {
	return OperatorTable{
		OpAdd:   opAdd,
		OpSub:   arith("-", func(a, b float64) float64 { return a - b }, func(a, b int64) int64 { return a - b }),
		OpMul:   arith("*", func(a, b float64) float64 { return a * b }, func(a, b int64) int64 { return a * b }),
		OpDiv:   opDiv,
		OpMod:   opMod,
		OpEq:    opEq,
		OpNotEq: opNotEq,
		OpLt:    cmp("<", func(c int) bool { return c < 0 }),
		OpLtEq:  cmp("<=", func(c int) bool { return c <= 0 }),
		OpGt:    cmp(">", func(c int) bool { return c > 0 }),
		OpGtEq:  cmp(">=", func(c int) bool { return c >= 0 }),
		OpIn:    opIn,
		OpNotIn: opNotIn,
	}
}

// opAdd concatenates strings or adds numbers.
func opAdd(a, b Value) (Value, error) {
	if as, ok := a.(Str); ok {
		if bs, ok := b.(Str); ok {
			return as + bs, nil
		}
	}
	if ai, bi, ok := bothInts(a, b); ok {
		return Int(ai + bi), nil
	}
	af, aok := asNumber(a)
	bf, bok := asNumber(b)
	if aok && bok {
		return Float(af + bf), nil
	}
	return nil, invalidf("unsupported operand types for +: %s and %s", TypeName(a), TypeName(b))
}

func arith(op string, ff func(a, b float64) float64, fi func(a, b int64) int64) BinFunc {
	return func(a, b Value) (Value, error) {
		if ai, bi, ok := bothInts(a, b); ok {
			return Int(fi(ai, bi)), nil
		}
		af, aok := asNumber(a)
		bf, bok := asNumber(b)
		if aok && bok {
			return Float(ff(af, bf)), nil
		}
		return nil, invalidf("unsupported operand types for %s: %s and %s", op, TypeName(a), TypeName(b))
	}
}

// opDiv always produces a float, like Python's true division.
func opDiv(a, b Value) (Value, error) {
	af, aok := asNumber(a)
	bf, bok := asNumber(b)
	if !aok || !bok {
		return nil, invalidf("unsupported operand types for /: %s and %s", TypeName(a), TypeName(b))
	}
	if bf == 0 {
		return nil, invalidf("division by zero")
	}
	return Float(af / bf), nil
}

func opMod(a, b Value) (Value, error) {
	if ai, bi, ok := bothInts(a, b); ok {
		if bi == 0 {
			return nil, invalidf("division by zero")
		}
		return Int(ai % bi), nil
	}
	af, aok := asNumber(a)
	bf, bok := asNumber(b)
	if !aok || !bok {
		return nil, invalidf("unsupported operand types for %%: %s and %s", TypeName(a), TypeName(b))
	}
	if bf == 0 {
		return nil, invalidf("division by zero")
	}
	return Float(math.Mod(af, bf)), nil
}

// valuesEqual compares across types: numbers compare numerically, all
// other combinations only compare equal within the same type.
func valuesEqual(a, b Value) bool {
	if af, ok := asNumber(a); ok {
		if bf, ok := asNumber(b); ok {
			return af == bf
		}
		return false
	}
	switch av := a.(type) {
	case Str:
		bv, ok := b.(Str)
		return ok && av == bv
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Null:
		_, ok := b.(Null)
		return ok
	default:
		return false
	}
}

func opEq(a, b Value) (Value, error) {
	return Bool(valuesEqual(a, b)), nil
}

func opNotEq(a, b Value) (Value, error) {
	return Bool(!valuesEqual(a, b)), nil
}

// cmp builds an ordering comparison over two numbers or two strings.
func cmp(op string, accept func(c int) bool) BinFunc {
	return func(a, b Value) (Value, error) {
		if af, ok := asNumber(a); ok {
			if bf, ok := asNumber(b); ok {
				switch {
				case af < bf:
					return Bool(accept(-1)), nil
				case af > bf:
					return Bool(accept(1)), nil
				default:
					return Bool(accept(0)), nil
				}
			}
		}
		if as, ok := a.(Str); ok {
			if bs, ok := b.(Str); ok {
				return Bool(accept(strings.Compare(string(as), string(bs)))), nil
			}
		}
		return nil, invalidf("unsupported operand types for %s: %s and %s", op, TypeName(a), TypeName(b))
	}
}

// opIn is the lenient membership test. An empty or missing right-hand
// side contains nothing; a string right-hand side is a substring test.
func opIn(a, b Value) (Value, error) {
	if !Truthy(b) {
		return Bool(false), nil
	}
	as, aok := a.(Str)
	bs, bok := b.(Str)
	if !aok || !bok {
		return nil, invalidf("unsupported operand types for in: %s and %s", TypeName(a), TypeName(b))
	}
	return Bool(strings.Contains(string(bs), string(as))), nil
}

// opNotIn simply inverts opIn.
func opNotIn(a, b Value) (Value, error) {
	v, err := opIn(a, b)
	if err != nil {
		return nil, err
	}
	return Bool(!Truthy(v)), nil
}
