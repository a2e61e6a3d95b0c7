package ast

import "github.com/mcuelenaere/b2/lexer"

// Node is the common interface of every statement/block node (what
// spec.md calls the "statement tree", §3.2).
type Node interface {
	Pos() lexer.Position
	stmtNode()
}

// Statements is a block: an ordered sequence of child nodes.
//
// Invariant S1: in the final, post-passes AST a Statements node is
// never empty and never holds exactly one child — the rewrite
// traversal folds those cases away (rewrite.WalkStmt).
type Statements struct {
	Position lexer.Position
	Children []Node
}

func (n *Statements) stmtNode()           {}
func (n *Statements) Pos() lexer.Position { return n.Position }

// Raw is literal output text, emitted verbatim.
type Raw struct {
	Position lexer.Position
	Text     string
}

func (n *Raw) stmtNode()           {}
func (n *Raw) Pos() lexer.Position { return n.Position }

// Print emits the runtime string form of Expr.
type Print struct {
	Position lexer.Position
	Expr     Expression
}

func (n *Print) stmtNode()           {}
func (n *Print) Pos() lexer.Position { return n.Position }

// If is a conditional. Else is optional and may itself be an *If to
// encode an else-if chain.
type If struct {
	Position lexer.Position
	Cond     Expression
	Then     Node
	Else     Node // nil if absent
}

func (n *If) stmtNode()           {}
func (n *If) Pos() lexer.Position { return n.Position }

// For iterates a mapping or ordered collection. At least one of Key and
// Value is non-nil (invariant S2: both are syntactic VariableRef
// binders, never arbitrary expressions). Else runs iff Iterable
// produced zero iterations (spec §4.8).
type For struct {
	Position lexer.Position
	Key      *VariableRef // nil if the key binding is omitted
	Value    *VariableRef // nil if the value binding is omitted
	Iterable Expression
	Body     Node
	Else     Node // nil if absent
}

func (n *For) stmtNode()           {}
func (n *For) Pos() lexer.Position { return n.Position }

// Include pastes another template by name. Exactly one of Scope and
// Bindings is meaningful (spec §3.2): when Scope is set, unqualified
// variable reads inside the included template are rewritten to
// attribute reads on Scope; otherwise every free variable must appear
// in Bindings.
//
// Invariant S3: after the include-resolution pass runs, no Include
// node survives anywhere in the tree.
type Include struct {
	Position lexer.Position
	Name     string
	Scope    Expression // nil unless the "with <expr>" form was used
	Bindings map[string]Expression
}

func (n *Include) stmtNode()           {}
func (n *Include) Pos() lexer.Position { return n.Position }
