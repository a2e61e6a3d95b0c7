package ast

import "github.com/mcuelenaere/b2/lexer"

// DoubleLiteral is a literal floating-point value.
type DoubleLiteral struct {
	Position lexer.Position
	Value    float64
}

func (e *DoubleLiteral) exprNode()            {}
func (e *DoubleLiteral) Pos() lexer.Position  { return e.Position }
func (e *DoubleLiteral) ValueType() ValueType { return Double }
func (e *DoubleLiteral) Clone() Expression    { c := *e; return &c }

// IntegerLiteral is a literal 64-bit signed integer value.
type IntegerLiteral struct {
	Position lexer.Position
	Value    int64
}

func (e *IntegerLiteral) exprNode()            {}
func (e *IntegerLiteral) Pos() lexer.Position  { return e.Position }
func (e *IntegerLiteral) ValueType() ValueType { return Integer }
func (e *IntegerLiteral) Clone() Expression    { c := *e; return &c }

// BooleanLiteral is a literal true/false value.
type BooleanLiteral struct {
	Position lexer.Position
	Value    bool
}

func (e *BooleanLiteral) exprNode()            {}
func (e *BooleanLiteral) Pos() lexer.Position  { return e.Position }
func (e *BooleanLiteral) ValueType() ValueType { return Boolean }
func (e *BooleanLiteral) Clone() Expression    { c := *e; return &c }

// StringLiteral is a literal string value.
type StringLiteral struct {
	Position lexer.Position
	Value    string
}

func (e *StringLiteral) exprNode()            {}
func (e *StringLiteral) Pos() lexer.Position  { return e.Position }
func (e *StringLiteral) ValueType() ValueType { return String }
func (e *StringLiteral) Clone() Expression    { c := *e; return &c }

// IsLiteral reports whether expr is one of the four literal kinds.
func IsLiteral(expr Expression) bool {
	switch expr.(type) {
	case *DoubleLiteral, *IntegerLiteral, *BooleanLiteral, *StringLiteral:
		return true
	default:
		return false
	}
}

// IsNumericLiteral reports whether expr is a double or integer literal.
func IsNumericLiteral(expr Expression) bool {
	switch expr.(type) {
	case *DoubleLiteral, *IntegerLiteral:
		return true
	default:
		return false
	}
}
