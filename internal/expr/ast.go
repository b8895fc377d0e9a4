package expr

// Node is a sealed interface over the closed set of syntax tree kinds.
// Only the node types in this file implement it; the interpreter matches
// them exhaustively. Extensibility lives in the operator and function
// tables, never in new node kinds.
type Node interface {
	node() // sealed
	pos() int
}

// BinOp identifies a binary operator. It doubles as the key of the
// operator table, so overriding one operator never affects another.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNotEq
	OpLt
	OpLtEq
	OpGt
	OpGtEq
	OpIn
	OpNotIn
)

// String returns the source spelling of the operator.
func (op BinOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpEq:
		return "=="
	case OpNotEq:
		return "!="
	case OpLt:
		return "<"
	case OpLtEq:
		return "<="
	case OpGt:
		return ">"
	case OpGtEq:
		return ">="
	case OpIn:
		return "in"
	case OpNotIn:
		return "not in"
	default:
		return "?"
	}
}

// LiteralNode holds a constant value: string, int, float, bool or None.
type LiteralNode struct {
	Val Value
	Pos int
}

func (n *LiteralNode) node()    {}
func (n *LiteralNode) pos() int { return n.Pos }

// NameNode is a bare identifier resolved against the binding environment.
type NameNode struct {
	Name string
	Pos  int
}

func (n *NameNode) node()    {}
func (n *NameNode) pos() int { return n.Pos }

// NotNode is the prefix `not` operator.
type NotNode struct {
	Operand Node
	Pos     int
}

func (n *NotNode) node()    {}
func (n *NotNode) pos() int { return n.Pos }

// NegNode is the prefix `-` operator.
type NegNode struct {
	Operand Node
	Pos     int
}

func (n *NegNode) node()    {}
func (n *NegNode) pos() int { return n.Pos }

// BinaryNode applies an operator from the operator table to two operands.
type BinaryNode struct {
	Op    BinOp
	Left  Node
	Right Node
	Pos   int
}

func (n *BinaryNode) node()    {}
func (n *BinaryNode) pos() int { return n.Pos }

// AndNode short-circuits like Python `and`: returns the left value when it
// is falsy, otherwise the right value.
type AndNode struct {
	Left  Node
	Right Node
	Pos   int
}

func (n *AndNode) node()    {}
func (n *AndNode) pos() int { return n.Pos }

// OrNode short-circuits like Python `or`: returns the left value when it
// is truthy, otherwise the right value.
type OrNode struct {
	Left  Node
	Right Node
	Pos   int
}

func (n *OrNode) node()    {}
func (n *OrNode) pos() int { return n.Pos }

// CallNode invokes a function from the function table by name.
type CallNode struct {
	Name string
	Args []Node
	Pos  int
}

func (n *CallNode) node()    {}
func (n *CallNode) pos() int { return n.Pos }

// AssignNode is the `name = value` mutation form. Only valid in update
// mode, with a single bare name as the target.
type AssignNode struct {
	Name  string
	Value Node
	Pos   int
}

func (n *AssignNode) node()    {}
func (n *AssignNode) pos() int { return n.Pos }

// AugAssignNode is the `name += value` / `name -= value` mutation form
// with comma-list member semantics. Op is always OpAdd or OpSub; the
// grammar has no other augmented assignment operators.
type AugAssignNode struct {
	Op    BinOp
	Name  string
	Value Node
	Pos   int
}

func (n *AugAssignNode) node()    {}
func (n *AugAssignNode) pos() int { return n.Pos }
