package rewrite

import (
	"fmt"

	"github.com/mcuelenaere/b2/ast"
)

// Pass is the common identity of a rewrite pass: a name for logging
// and for the CLI's --enable-<pass>/--disable-<pass> flags (spec §6).
type Pass interface {
	Name() string
}

// StmtPass rewrites the statement tree directly.
type StmtPass interface {
	Pass
	RunStmt(ast.Node) (ast.Node, error)
}

// ExprPass rewrites expressions; the Manager runs it over every
// expression-carrying slot of the statement tree (Print.Expr, If.Cond,
// For.Iterable, Include.Scope, and each Include.Bindings value) by
// wrapping it in a statement-level hook, exprSlotHook (spec §4.2).
type ExprPass interface {
	Pass
	RunExpr(ast.Expression) (ast.Expression, error)
}

// Manager holds an ordered pipeline of passes.
//
// Run takes ownership of its input AST and returns the resulting
// (possibly different) AST. In Go there is no manual memory to leak on
// the failure path (invariant P1 is automatic: the garbage collector
// reclaims the abandoned tree once Run returns its error), but Run
// still follows the documented contract precisely: it never returns a
// partially-rewritten tree alongside an error, only nil.
type Manager struct {
	passes []Pass
}

// New creates a pass manager that will run passes in the given order.
func New(passes ...Pass) *Manager {
	return &Manager{passes: passes}
}

// AddPass appends a pass to the end of the pipeline.
func (m *Manager) AddPass(p Pass) {
	m.passes = append(m.passes, p)
}

// Passes returns the registered passes in pipeline order.
func (m *Manager) Passes() []Pass {
	return m.passes
}

// Run executes every registered pass in order against tree. If any
// pass fails, the in-flight tree is discarded and the error is
// returned; no partial result is ever returned alongside an error.
func (m *Manager) Run(tree ast.Node) (ast.Node, error) {
	cur := tree
	for _, p := range m.passes {
		var (
			next ast.Node
			err  error
		)
		switch pass := p.(type) {
		case StmtPass:
			next, err = pass.RunStmt(cur)
		case ExprPass:
			next, err = WalkStmt(cur, exprSlotHook(pass.RunExpr))
		default:
			err = fmt.Errorf("rewrite: pass %q is neither a StmtPass nor an ExprPass", p.Name())
		}
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// exprSlotHook wraps an expression-level rewrite function into a
// statement-level hook that applies it at every expression-carrying
// slot of a statement node (spec §4.2).
func exprSlotHook(rewrite ExprHook) StmtHook {
	return func(n ast.Node) (ast.Node, error) {
		switch v := n.(type) {
		case *ast.Print:
			ne, err := WalkExpr(v.Expr, rewrite)
			if err != nil {
				return nil, err
			}
			v.Expr = ne
		case *ast.If:
			ne, err := WalkExpr(v.Cond, rewrite)
			if err != nil {
				return nil, err
			}
			v.Cond = ne
		case *ast.For:
			ne, err := WalkExpr(v.Iterable, rewrite)
			if err != nil {
				return nil, err
			}
			v.Iterable = ne
		case *ast.Include:
			if v.Scope != nil {
				ne, err := WalkExpr(v.Scope, rewrite)
				if err != nil {
					return nil, err
				}
				v.Scope = ne
			}
			for k, e := range v.Bindings {
				ne, err := WalkExpr(e, rewrite)
				if err != nil {
					return nil, err
				}
				v.Bindings[k] = ne
			}
		}
		return n, nil
	}
}
