package rewrite

import (
	"strconv"

	"github.com/mcuelenaere/b2/ast"
)

// LiteralPrintToRaw replaces a Print of a literal expression with an
// inert Raw node holding the literal's canonical textual form (spec
// §4.4). It is a StmtPass: it only ever looks at the immediate node,
// so traversal order does not matter for it.
type LiteralPrintToRaw struct{}

func (LiteralPrintToRaw) Name() string { return "literal-print-to-raw-conversion-pass" }

func (p LiteralPrintToRaw) RunStmt(n ast.Node) (ast.Node, error) {
	return WalkStmt(n, p.hook)
}

func (p LiteralPrintToRaw) hook(n ast.Node) (ast.Node, error) {
	print, ok := n.(*ast.Print)
	if !ok {
		return n, nil
	}
	text, ok := CanonicalLiteralText(print.Expr)
	if !ok {
		return n, nil
	}
	return &ast.Raw{Position: print.Position, Text: text}, nil
}

// CanonicalLiteralText returns the canonical textual form of a literal
// expression (spec §4.4), or ok=false if expr isn't a literal.
func CanonicalLiteralText(expr ast.Expression) (text string, ok bool) {
	switch v := expr.(type) {
	case *ast.BooleanLiteral:
		if v.Value {
			return "true", true
		}
		return "false", true
	case *ast.IntegerLiteral:
		return strconv.FormatInt(v.Value, 10), true
	case *ast.DoubleLiteral:
		return strconv.FormatFloat(v.Value, 'g', -1, 64), true
	case *ast.StringLiteral:
		return v.Value, true
	default:
		return "", false
	}
}
