package expr

import (
	"fmt"
	"strconv"
)

// Value is a sealed interface over the types an expression can produce.
// Only Str, Int, Float, Bool and Null implement it. Collections are not
// values in this language; comma-joined strings stand in for them.
type Value interface {
	exprValue() // sealed
}

// Str is a string value.
type Str string

func (Str) exprValue() {}

// Int is an integer value. Always int64.
type Int int64

func (Int) exprValue() {}

// Float is a floating point value.
type Float float64

func (Float) exprValue() {}

// Bool is a boolean value.
type Bool bool

func (Bool) exprValue() {}

// Null is the missing-value sentinel. Unresolved names evaluate to Null
// rather than failing, so filters tolerate absent directives.
type Null struct{}

func (Null) exprValue() {}

// Truthy reports Python-style truthiness: empty strings, zero numbers,
// false and Null are all false.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case Str:
		return val != ""
	case Int:
		return val != 0
	case Float:
		return val != 0
	case Bool:
		return bool(val)
	case Null:
		return false
	default:
		return false
	}
}

// Format renders a value the way it appears in a directive line. Null
// renders as the empty string.
func Format(v Value) string {
	switch val := v.(type) {
	case Str:
		return string(val)
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Float:
		return strconv.FormatFloat(float64(val), 'g', -1, 64)
	case Bool:
		if val {
			return "True"
		}
		return "False"
	case Null:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// TypeName returns a human readable name for diagnostics.
func TypeName(v Value) string {
	switch v.(type) {
	case Str:
		return "string"
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case Null:
		return "none"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// asNumber converts a numeric value to float64. The second return reports
// whether the value was numeric at all.
func asNumber(v Value) (float64, bool) {
	switch val := v.(type) {
	case Int:
		return float64(val), true
	case Float:
		return float64(val), true
	default:
		return 0, false
	}
}

// bothInts reports whether both operands are integers, in which case
// arithmetic stays in the integer domain.
func bothInts(a, b Value) (int64, int64, bool) {
	ai, aok := a.(Int)
	bi, bok := b.(Int)
	if aok && bok {
		return int64(ai), int64(bi), true
	}
	return 0, 0, false
}
