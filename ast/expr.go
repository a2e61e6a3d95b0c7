// Package ast defines the AST for the b2 template compiler: the
// expression tree (this file and its siblings) and the statement tree
// (node.go and its siblings).
//
// Every non-leaf node exclusively owns its children. There are no
// back-references and no structural sharing, so a rewrite pass can
// replace a child without consulting any other owner (spec §3.1,
// "Ownership"). Clone() on any Expression produces an independent deep
// copy (invariant C1).
package ast

import "github.com/mcuelenaere/b2/lexer"

// ValueType is an expression's declared value type, derived structurally
// from its shape (spec §3.1).
type ValueType int

const (
	// Variant is the "unknown until runtime" type: variable reads,
	// attribute reads and method calls are always Variant.
	Variant ValueType = iota
	Double
	Integer
	Boolean
	String
)

func (t ValueType) String() string {
	switch t {
	case Double:
		return "double"
	case Integer:
		return "integer"
	case Boolean:
		return "boolean"
	case String:
		return "string"
	default:
		return "variant"
	}
}

// Expression is the common interface of every expression node.
//
// Clone and ValueType are part of the interface (not bolted on via a
// separate visitor) because they are structural properties of the node
// itself, not backend-specific behavior. Backend-specific behavior
// (code generation) is dispatched with a type switch in the backend
// packages, per spec §9 ("Visitors become exhaustive match").
type Expression interface {
	Pos() lexer.Position
	// Clone returns an independent deep copy; mutating the result never
	// affects the receiver (invariant C1).
	Clone() Expression
	// ValueType returns the expression's declared value type (spec §3.1).
	ValueType() ValueType

	exprNode()
}

// VariableRef reads a named binding from the runtime environment.
type VariableRef struct {
	Position lexer.Position
	Name     string
}

func (e *VariableRef) exprNode()             {}
func (e *VariableRef) Pos() lexer.Position   { return e.Position }
func (e *VariableRef) ValueType() ValueType  { return Variant }
func (e *VariableRef) Clone() Expression {
	c := *e
	return &c
}

// GetAttribute is dotted/indexed field access: Container.Name.
type GetAttribute struct {
	Position  lexer.Position
	Container Expression
	Name      string
}

func (e *GetAttribute) exprNode()            {}
func (e *GetAttribute) Pos() lexer.Position  { return e.Position }
func (e *GetAttribute) ValueType() ValueType { return Variant }
func (e *GetAttribute) Clone() Expression {
	return &GetAttribute{
		Position:  e.Position,
		Container: e.Container.Clone(),
		Name:      e.Name,
	}
}

// MethodCall invokes a host-supplied helper by name. Arguments are
// evaluated left-to-right at runtime (spec §3.1).
type MethodCall struct {
	Position lexer.Position
	Name     string
	Args     []Expression
}

func (e *MethodCall) exprNode()            {}
func (e *MethodCall) Pos() lexer.Position  { return e.Position }
func (e *MethodCall) ValueType() ValueType { return Variant }
func (e *MethodCall) Clone() Expression {
	args := make([]Expression, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.Clone()
	}
	return &MethodCall{Position: e.Position, Name: e.Name, Args: args}
}
