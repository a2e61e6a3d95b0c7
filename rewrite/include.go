package rewrite

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mcuelenaere/b2/ast"
	"github.com/mcuelenaere/b2/errs"
)

// FileReader abstracts the file I/O the include pass needs (spec §5:
// "File I/O is the only external resource"). OSFileReader satisfies it
// with os.ReadFile; tests substitute an in-memory map.
type FileReader interface {
	ReadFile(name string) ([]byte, error)
}

// OSFileReader reads included templates straight from disk.
type OSFileReader struct{}

func (OSFileReader) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }

// IncludeResolve recursively embeds referenced templates, rewriting
// their free variables per spec §4.6. It owns a parser and resolves
// nested includes depth-first before splicing the result into the
// enclosing tree.
type IncludeResolve struct {
	Parser   ast.Parser
	Files    FileReader
	BasePath string
}

func NewIncludeResolve(p ast.Parser, files FileReader, basePath string) *IncludeResolve {
	return &IncludeResolve{Parser: p, Files: files, BasePath: basePath}
}

func (IncludeResolve) Name() string { return "resolve-includes-pass" }

func (p *IncludeResolve) RunStmt(n ast.Node) (ast.Node, error) {
	return p.run(n, nil)
}

// run resolves includes in n. visited is the set of template names
// currently being expanded on the current path from the root, used to
// detect cyclic includes (spec §9 open question 3, resolved via a
// visited-set per the recommendation there).
func (p *IncludeResolve) run(n ast.Node, visited []string) (ast.Node, error) {
	return WalkStmt(n, func(node ast.Node) (ast.Node, error) {
		inc, ok := node.(*ast.Include)
		if !ok {
			return node, nil
		}
		return p.resolveOne(inc, visited)
	})
}

func (p *IncludeResolve) resolvePath(name string) string {
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return name
	}
	return filepath.Join(p.BasePath, name)
}

func (p *IncludeResolve) resolveOne(inc *ast.Include, visited []string) (ast.Node, error) {
	for _, v := range visited {
		if v == inc.Name {
			cycle := append(append([]string{}, visited...), inc.Name)
			return nil, &errs.CyclicIncludeError{
				Diagnostic: errs.Diagnostic{Pos: inc.Position, Message: "cyclic include detected"},
				Cycle:      cycle,
			}
		}
	}

	path := p.resolvePath(inc.Name)
	data, err := p.Files.ReadFile(path)
	if err != nil {
		return nil, &errs.IOError{
			Diagnostic: errs.Diagnostic{Pos: inc.Position, Message: "cannot read include " + path, File: inc.Name},
			Err:        err,
		}
	}

	included, err := p.Parser.Parse(string(data), inc.Name)
	if err != nil {
		return nil, err
	}

	// Resolve nested includes depth-first before rewriting free
	// variables, so substitution only ever sees VariableRef nodes.
	included, err = p.run(included, append(visited, inc.Name))
	if err != nil {
		return nil, err
	}

	if inc.Scope != nil {
		return substituteFreeVars(included, nil, func(name string, pos ast.Expression) (ast.Expression, error) {
			return &ast.GetAttribute{Position: pos.Pos(), Container: inc.Scope.Clone(), Name: name}, nil
		})
	}
	return substituteFreeVars(included, nil, func(name string, ref ast.Expression) (ast.Expression, error) {
		value, found := inc.Bindings[name]
		if !found {
			return nil, &errs.MissingVariableReferenceError{
				Diagnostic:      errs.Diagnostic{Pos: ref.Pos(), Message: "no binding for variable"},
				VariableName:    name,
				IncludeFileName: inc.Name,
			}
		}
		return value.Clone(), nil
	})
}

// substitute replaces one free VariableRef, identified by name, with a
// fresh expression. The VariableRef node itself is passed through so
// the substitution can recover its position.
type substitute func(name string, ref ast.Expression) (ast.Expression, error)

// substituteFreeVars rewrites every *free* VariableRef in n using sub.
// A VariableRef is free unless its name is in bound — names bound by
// an enclosing For's Key/Value are syntactic binders (invariant S2),
// not free variables, and must not be substituted (spec §4.8 "shadow
// any outer binding ... for the duration of the body").
func substituteFreeVars(n ast.Node, bound map[string]bool, sub substitute) (ast.Node, error) {
	switch v := n.(type) {
	case nil:
		return nil, nil
	case *ast.Statements:
		for i, c := range v.Children {
			nc, err := substituteFreeVars(c, bound, sub)
			if err != nil {
				return nil, err
			}
			v.Children[i] = nc
		}
		return v, nil
	case *ast.Raw:
		return v, nil
	case *ast.Print:
		ne, err := substituteExprFreeVars(v.Expr, bound, sub)
		if err != nil {
			return nil, err
		}
		v.Expr = ne
		return v, nil
	case *ast.If:
		nc, err := substituteExprFreeVars(v.Cond, bound, sub)
		if err != nil {
			return nil, err
		}
		v.Cond = nc
		nt, err := substituteFreeVars(v.Then, bound, sub)
		if err != nil {
			return nil, err
		}
		v.Then = nt
		if v.Else != nil {
			ne, err := substituteFreeVars(v.Else, bound, sub)
			if err != nil {
				return nil, err
			}
			v.Else = ne
		}
		return v, nil
	case *ast.For:
		ni, err := substituteExprFreeVars(v.Iterable, bound, sub)
		if err != nil {
			return nil, err
		}
		v.Iterable = ni

		inner := make(map[string]bool, len(bound)+2)
		for k := range bound {
			inner[k] = true
		}
		if v.Key != nil {
			inner[v.Key.Name] = true
		}
		if v.Value != nil {
			inner[v.Value.Name] = true
		}
		nb, err := substituteFreeVars(v.Body, inner, sub)
		if err != nil {
			return nil, err
		}
		v.Body = nb
		if v.Else != nil {
			ne, err := substituteFreeVars(v.Else, bound, sub)
			if err != nil {
				return nil, err
			}
			v.Else = ne
		}
		return v, nil
	default:
		return n, nil
	}
}

// substituteExprFreeVars walks e looking for free VariableRef leaves and
// replaces each with sub's result. Unlike WalkExpr, it never re-applies
// itself to a substituted node or descends into the replacement's own
// subtree: sub's output (a clone of inc.Scope, or a bound value's clone)
// is already fully resolved and must be taken as-is, not treated as more
// template source to rewrite. Reusing WalkExpr's kind-change re-entry here
// recurses forever, since a GetAttribute{Container: inc.Scope.Clone()}
// replacement itself contains a VariableRef the hook would fire on again.
func substituteExprFreeVars(e ast.Expression, bound map[string]bool, sub substitute) (ast.Expression, error) {
	if e == nil {
		return nil, nil
	}
	switch v := e.(type) {
	case *ast.VariableRef:
		if bound[v.Name] {
			return v, nil
		}
		return sub(v.Name, v)
	case *ast.GetAttribute:
		nc, err := substituteExprFreeVars(v.Container, bound, sub)
		if err != nil {
			return nil, err
		}
		v.Container = nc
		return v, nil
	case *ast.MethodCall:
		for i, a := range v.Args {
			na, err := substituteExprFreeVars(a, bound, sub)
			if err != nil {
				return nil, err
			}
			v.Args[i] = na
		}
		return v, nil
	case *ast.BinaryOp:
		nl, err := substituteExprFreeVars(v.Left, bound, sub)
		if err != nil {
			return nil, err
		}
		v.Left = nl
		nr, err := substituteExprFreeVars(v.Right, bound, sub)
		if err != nil {
			return nil, err
		}
		v.Right = nr
		return v, nil
	case *ast.UnaryOp:
		no, err := substituteExprFreeVars(v.Operand, bound, sub)
		if err != nil {
			return nil, err
		}
		v.Operand = no
		return v, nil
	case *ast.Comparison:
		nl, err := substituteExprFreeVars(v.Left, bound, sub)
		if err != nil {
			return nil, err
		}
		v.Left = nl
		nr, err := substituteExprFreeVars(v.Right, bound, sub)
		if err != nil {
			return nil, err
		}
		v.Right = nr
		return v, nil
	default:
		return e, nil
	}
}
