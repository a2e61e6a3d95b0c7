// Package rewrite implements the generic traversal framework (spec
// §4.1), the pass manager (§4.2), and the four concrete passes
// (§4.3–§4.6) that make up the b2 compiler's rewrite pipeline.
package rewrite

import (
	"reflect"

	"github.com/mcuelenaere/b2/ast"
)

// ExprHook rewrites a single expression node. It may return the same
// node, a mutated version of it, or a wholly different node. When it
// returns a node of a different concrete kind, WalkExpr re-invokes
// itself on the replacement so the new node is visited too (spec
// §4.1); this never loops because every hook in this package strictly
// reduces node count or moves the tree toward a terminal (leaf) form.
type ExprHook func(ast.Expression) (ast.Expression, error)

// StmtHook is the statement-tree equivalent of ExprHook.
type StmtHook func(ast.Node) (ast.Node, error)

func kindOf(v any) reflect.Type {
	if v == nil {
		return nil
	}
	return reflect.TypeOf(v)
}

// WalkExpr applies hook to e and, for passes that don't need children
// folded before their own hook runs, descends into e's children
// afterward. Passes that need bottom-up evaluation (constant folding)
// recurse into their own children from inside the hook itself,
// exactly as the reference traversal in this spec's origin does.
func WalkExpr(e ast.Expression, hook ExprHook) (ast.Expression, error) {
	if e == nil {
		return nil, nil
	}

	out, err := hook(e)
	if err != nil {
		return nil, err
	}
	if kindOf(out) != kindOf(e) {
		return WalkExpr(out, hook)
	}

	switch v := out.(type) {
	case *ast.GetAttribute:
		nc, err := WalkExpr(v.Container, hook)
		if err != nil {
			return nil, err
		}
		v.Container = nc
	case *ast.MethodCall:
		for i, a := range v.Args {
			na, err := WalkExpr(a, hook)
			if err != nil {
				return nil, err
			}
			v.Args[i] = na
		}
	case *ast.BinaryOp:
		nl, err := WalkExpr(v.Left, hook)
		if err != nil {
			return nil, err
		}
		v.Left = nl
		nr, err := WalkExpr(v.Right, hook)
		if err != nil {
			return nil, err
		}
		v.Right = nr
	case *ast.UnaryOp:
		no, err := WalkExpr(v.Operand, hook)
		if err != nil {
			return nil, err
		}
		v.Operand = no
	case *ast.Comparison:
		nl, err := WalkExpr(v.Left, hook)
		if err != nil {
			return nil, err
		}
		v.Left = nl
		nr, err := WalkExpr(v.Right, hook)
		if err != nil {
			return nil, err
		}
		v.Right = nr
	}
	return out, nil
}

// WalkStmt applies hook to n, descends into its statement children
// when n's kind is unchanged, and — for *ast.Statements nodes only —
// performs the structural simplification spec §4.1 requires: nested
// Statements are spliced into the parent, and a Statements node left
// with exactly one child is replaced by that child (invariant S1).
func WalkStmt(n ast.Node, hook StmtHook) (ast.Node, error) {
	if n == nil {
		return nil, nil
	}

	out, err := hook(n)
	if err != nil {
		return nil, err
	}
	if kindOf(out) != kindOf(n) {
		return WalkStmt(out, hook)
	}

	switch v := out.(type) {
	case *ast.Statements:
		flat := make([]ast.Node, 0, len(v.Children))
		for _, child := range v.Children {
			nc, err := WalkStmt(child, hook)
			if err != nil {
				return nil, err
			}
			if nc == nil {
				continue
			}
			if s, ok := nc.(*ast.Statements); ok {
				flat = append(flat, s.Children...)
			} else {
				flat = append(flat, nc)
			}
		}
		if len(flat) == 1 {
			return flat[0], nil
		}
		v.Children = flat
		return v, nil

	case *ast.If:
		nt, err := WalkStmt(v.Then, hook)
		if err != nil {
			return nil, err
		}
		v.Then = nt
		if v.Else != nil {
			ne, err := WalkStmt(v.Else, hook)
			if err != nil {
				return nil, err
			}
			v.Else = ne
		}
		return v, nil

	case *ast.For:
		nb, err := WalkStmt(v.Body, hook)
		if err != nil {
			return nil, err
		}
		v.Body = nb
		if v.Else != nil {
			ne, err := WalkStmt(v.Else, hook)
			if err != nil {
				return nil, err
			}
			v.Else = ne
		}
		return v, nil

	default:
		// Raw, Print, Include: no statement-tree children to descend into.
		return out, nil
	}
}
