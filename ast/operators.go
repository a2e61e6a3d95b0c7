package ast

import "github.com/mcuelenaere/b2/lexer"

// BinaryOperator is the operator of a BinaryOp expression.
type BinaryOperator int

const (
	Add BinaryOperator = iota
	Sub
	Mul
	Div
	Mod
)

func (op BinaryOperator) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Mod:
		return "%"
	default:
		return "?"
	}
}

// BinaryOp is an arithmetic operation between two expressions.
type BinaryOp struct {
	Position lexer.Position
	Left     Expression
	Right    Expression
	Op       BinaryOperator
}

func (e *BinaryOp) exprNode()           {}
func (e *BinaryOp) Pos() lexer.Position { return e.Position }
func (e *BinaryOp) Clone() Expression {
	return &BinaryOp{Position: e.Position, Left: e.Left.Clone(), Right: e.Right.Clone(), Op: e.Op}
}

// ValueType follows spec §3.1: variant if either side is variant;
// otherwise double if either side is double; otherwise integer if both
// are integer; otherwise double (e.g. one side is a string).
func (e *BinaryOp) ValueType() ValueType {
	l, r := e.Left.ValueType(), e.Right.ValueType()
	switch {
	case l == Variant || r == Variant:
		return Variant
	case l == Double || r == Double:
		return Double
	case l == Integer && r == Integer:
		return Integer
	default:
		return Double
	}
}

// UnaryOperator is the operator of a UnaryOp expression.
type UnaryOperator int

const (
	Pos UnaryOperator = iota
	Neg
	Not
)

func (op UnaryOperator) String() string {
	switch op {
	case Pos:
		return "+"
	case Neg:
		return "-"
	case Not:
		return "!"
	default:
		return "?"
	}
}

// UnaryOp is a unary operation applied to a single operand.
type UnaryOp struct {
	Position lexer.Position
	Operand  Expression
	Op       UnaryOperator
}

func (e *UnaryOp) exprNode()           {}
func (e *UnaryOp) Pos() lexer.Position { return e.Position }
func (e *UnaryOp) Clone() Expression {
	return &UnaryOp{Position: e.Position, Operand: e.Operand.Clone(), Op: e.Op}
}

// ValueType follows spec §3.1: logical-not is always boolean; +/- keep
// variant/double/integer operands as-is and otherwise coerce to double.
func (e *UnaryOp) ValueType() ValueType {
	if e.Op == Not {
		return Boolean
	}
	switch e.Operand.ValueType() {
	case Variant, Double, Integer:
		return e.Operand.ValueType()
	default:
		return Double
	}
}

// CompareOperator is the operator of a Comparison expression.
type CompareOperator int

const (
	Eq CompareOperator = iota
	Ne
	Gt
	Ge
	Lt
	Le
	And
	Or
)

func (op CompareOperator) String() string {
	switch op {
	case Eq:
		return "=="
	case Ne:
		return "!="
	case Gt:
		return ">"
	case Ge:
		return ">="
	case Lt:
		return "<"
	case Le:
		return "<="
	case And:
		return "&&"
	case Or:
		return "||"
	default:
		return "?"
	}
}

// Comparison is a comparison or logical operation between two
// expressions; its ValueType is always Boolean (spec §3.1).
type Comparison struct {
	Position lexer.Position
	Left     Expression
	Right    Expression
	Op       CompareOperator
}

func (e *Comparison) exprNode()            {}
func (e *Comparison) Pos() lexer.Position  { return e.Position }
func (e *Comparison) ValueType() ValueType { return Boolean }
func (e *Comparison) Clone() Expression {
	return &Comparison{Position: e.Position, Left: e.Left.Clone(), Right: e.Right.Clone(), Op: e.Op}
}
