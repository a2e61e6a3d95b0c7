// Package source implements the source-to-source backend (spec §4.7):
// it emits Go source text for a standalone render function, linked
// only against the tiny backend/source/runtime support package and the
// ast package's operator constants — never against the parser, the
// rewrite passes, or a host backend.Binding. That's what makes it
// "self-contained" (spec §4.1): the emitted package has no dependency
// on the compiler that produced it.
package source

import (
	"fmt"
	"strings"

	"github.com/mcuelenaere/b2/ast"
	"github.com/mcuelenaere/b2/errs"
)

// Source is the source-to-source backend.
//
// Per REDESIGN FLAGS item 5, Source never attempts to lower an
// Include itself — it depends on the include-resolution pass having
// already run, and makes that dependency explicit by checking for and
// rejecting any surviving Include node before emitting anything,
// rather than failing confusingly partway through generation.
type Source struct {
	// UndefinedCheck mirrors cmd/b2c's --enable-undefined-check (spec
	// §6): when set, the emitted renderer substitutes an empty string
	// for a VariableRef with no matching binding instead of returning
	// an error at render time.
	UndefinedCheck bool
}

// New returns the source-to-source backend.
func New() *Source { return &Source{} }

func (Source) Name() string { return "source" }

// Generate emits a Go source file defining:
//
//	func <funcName>(bindings map[string]rt.Value, helpers map[string]func([]rt.Value) (rt.Value, error), out io.Writer) error
//
// tree must already be fully resolved (invariant S3: no Include node survives).
func (s *Source) Generate(tree ast.Node, pkg, funcName string) (string, error) {
	if err := rejectIncludes(tree); err != nil {
		return "", err
	}

	g := &codegen{pkg: pkg, funcName: funcName, undefinedCheck: s.UndefinedCheck}
	g.writeHeader()
	if err := g.genStmt(tree, map[string]string{}, 1); err != nil {
		return "", err
	}
	g.writeFooter()
	return g.b.String(), nil
}

func rejectIncludes(n ast.Node) error {
	switch v := n.(type) {
	case nil:
		return nil
	case *ast.Include:
		return &errs.UnsupportedOperationError{
			Diagnostic: errs.Diagnostic{Pos: v.Position, Message: "source backend cannot lower Include; run the include-resolution pass first"},
			Operation:  "Include",
		}
	case *ast.Statements:
		for _, c := range v.Children {
			if err := rejectIncludes(c); err != nil {
				return err
			}
		}
	case *ast.If:
		if err := rejectIncludes(v.Then); err != nil {
			return err
		}
		return rejectIncludes(v.Else)
	case *ast.For:
		if err := rejectIncludes(v.Body); err != nil {
			return err
		}
		return rejectIncludes(v.Else)
	}
	return nil
}

// codegen lowers statements/expressions into a straight-line sequence
// of Go statements (ANF-style: every non-trivial expression is first
// bound to a fresh local before use, so every fallible runtime call
// gets its own `if err != nil { return err }` check right next to it).
type codegen struct {
	b              strings.Builder
	pkg            string
	funcName       string
	tmp            int
	undefinedCheck bool
}

func (g *codegen) writeHeader() {
	fmt.Fprintf(&g.b, "package %s\n\n", g.pkg)
	g.b.WriteString("import (\n")
	if !g.undefinedCheck {
		g.b.WriteString("\t\"fmt\"\n")
	}
	g.b.WriteString("\t\"io\"\n\n\t\"github.com/mcuelenaere/b2/ast\"\n\trt \"github.com/mcuelenaere/b2/backend/source/runtime\"\n)\n\n")
	fmt.Fprintf(&g.b, "func %s(bindings map[string]rt.Value, helpers map[string]func([]rt.Value) (rt.Value, error), out io.Writer) error {\n", g.funcName)
}

func (g *codegen) writeFooter() {
	g.b.WriteString("\treturn nil\n}\n")
}

func (g *codegen) next() string {
	g.tmp++
	return fmt.Sprintf("v%d", g.tmp)
}

func indentStr(n int) string { return strings.Repeat("\t", n) }

func (g *codegen) line(indent int, format string, args ...any) {
	g.b.WriteString(indentStr(indent))
	fmt.Fprintf(&g.b, format, args...)
	g.b.WriteString("\n")
}

// genStmt emits the statement node n. scope maps a b2 variable name
// bound by an enclosing For to the Go identifier currently holding it.
func (g *codegen) genStmt(n ast.Node, scope map[string]string, indent int) error {
	switch v := n.(type) {
	case nil:
		return nil

	case *ast.Statements:
		for _, c := range v.Children {
			if err := g.genStmt(c, scope, indent); err != nil {
				return err
			}
		}
		return nil

	case *ast.Raw:
		g.line(indent, "if _, err := io.WriteString(out, %q); err != nil {", v.Text)
		g.line(indent+1, "return err")
		g.line(indent, "}")
		return nil

	case *ast.Print:
		val, err := g.genExpr(v.Expr, scope, indent)
		if err != nil {
			return err
		}
		g.line(indent, "if err := rt.Print(out, %s); err != nil {", val)
		g.line(indent+1, "return err")
		g.line(indent, "}")
		return nil

	case *ast.If:
		cond, err := g.genExpr(v.Cond, scope, indent)
		if err != nil {
			return err
		}
		g.line(indent, "if rt.Truthy(%s) {", cond)
		if err := g.genStmt(v.Then, scope, indent+1); err != nil {
			return err
		}
		if v.Else != nil {
			g.line(indent, "} else {")
			if err := g.genStmt(v.Else, scope, indent+1); err != nil {
				return err
			}
		}
		g.line(indent, "}")
		return nil

	case *ast.For:
		return g.genFor(v, scope, indent)

	default:
		return &errs.UnsupportedOperationError{
			Diagnostic: errs.Diagnostic{Pos: n.Pos(), Message: "unhandled node"},
			Operation:  "unknown statement kind",
		}
	}
}

func (g *codegen) genFor(v *ast.For, scope map[string]string, indent int) error {
	iterable, err := g.genExpr(v.Iterable, scope, indent)
	if err != nil {
		return err
	}
	entries := g.next()
	ok := g.next()
	g.line(indent, "%s, %s := rt.Iterate(%s)", entries, ok, iterable)

	ran := g.next()
	g.line(indent, "%s := false", ran)
	g.line(indent, "if %s {", ok)
	entry := g.next()
	g.line(indent+1, "for _, %s := range %s {", entry, entries)
	g.line(indent+2, "%s = true", ran)

	inner := make(map[string]string, len(scope)+2)
	for k, id := range scope {
		inner[k] = id
	}
	if v.Key != nil {
		inner[v.Key.Name] = entry + ".Key"
	}
	if v.Value != nil {
		inner[v.Value.Name] = entry + ".Value"
	}
	if err := g.genStmt(v.Body, inner, indent+2); err != nil {
		return err
	}
	g.line(indent+1, "}")
	g.line(indent, "}")

	if v.Else != nil {
		g.line(indent, "if !%s {", ran)
		if err := g.genStmt(v.Else, scope, indent+1); err != nil {
			return err
		}
		g.line(indent, "}")
	}
	return nil
}

// genExpr emits whatever statements expr needs and returns the Go
// expression (a literal, a bound loop variable, or a freshly assigned
// temporary) holding its value.
func (g *codegen) genExpr(expr ast.Expression, scope map[string]string, indent int) (string, error) {
	switch v := expr.(type) {
	case *ast.VariableRef:
		if id, ok := scope[v.Name]; ok {
			return id, nil
		}
		val := g.next()
		found := g.next()
		g.line(indent, "%s, %s := bindings[%q]", val, found, v.Name)
		g.line(indent, "if !%s {", found)
		if g.undefinedCheck {
			g.line(indent+1, "%s = \"\"", val)
		} else {
			g.line(indent+1, "return fmt.Errorf(%q)", "b2: unbound variable "+v.Name)
		}
		g.line(indent, "}")
		return val, nil

	case *ast.GetAttribute:
		container, err := g.genExpr(v.Container, scope, indent)
		if err != nil {
			return "", err
		}
		return g.genFallible(indent, "rt.GetAttribute(%s, %q)", container, v.Name)

	case *ast.MethodCall:
		argsVar := g.next()
		g.line(indent, "%s := make([]rt.Value, 0, %d)", argsVar, len(v.Args))
		for _, a := range v.Args {
			av, err := g.genExpr(a, scope, indent)
			if err != nil {
				return "", err
			}
			g.line(indent, "%s = append(%s, %s)", argsVar, argsVar, av)
		}
		return g.genFallible(indent, "rt.MethodCall(helpers, %q, %s)", v.Name, argsVar)

	case *ast.BinaryOp:
		left, err := g.genExpr(v.Left, scope, indent)
		if err != nil {
			return "", err
		}
		right, err := g.genExpr(v.Right, scope, indent)
		if err != nil {
			return "", err
		}
		return g.genFallible(indent, "rt.Binary(ast.%s, %s, %s)", binaryOpName(v.Op), left, right)

	case *ast.UnaryOp:
		operand, err := g.genExpr(v.Operand, scope, indent)
		if err != nil {
			return "", err
		}
		return g.genFallible(indent, "rt.Unary(ast.%s, %s)", unaryOpName(v.Op), operand)

	case *ast.Comparison:
		left, err := g.genExpr(v.Left, scope, indent)
		if err != nil {
			return "", err
		}
		right, err := g.genExpr(v.Right, scope, indent)
		if err != nil {
			return "", err
		}
		return g.genFallible(indent, "rt.Compare(ast.%s, %s, %s)", compareOpName(v.Op), left, right)

	case *ast.IntegerLiteral:
		return fmt.Sprintf("int64(%d)", v.Value), nil
	case *ast.DoubleLiteral:
		return fmt.Sprintf("float64(%v)", v.Value), nil
	case *ast.BooleanLiteral:
		return fmt.Sprintf("%t", v.Value), nil
	case *ast.StringLiteral:
		return fmt.Sprintf("%q", v.Value), nil

	default:
		return "", &errs.UnsupportedOperationError{
			Diagnostic: errs.Diagnostic{Pos: expr.Pos(), Message: "unhandled expression"},
			Operation:  "unknown expression kind",
		}
	}
}

// genFallible emits `x, err := <call>` followed by the standard error
// check, and returns the Go identifier holding the result.
func (g *codegen) genFallible(indent int, callFormat string, args ...any) (string, error) {
	val := g.next()
	call := fmt.Sprintf(callFormat, args...)
	g.line(indent, "%s, err := %s", val, call)
	g.line(indent, "if err != nil {")
	g.line(indent+1, "return err")
	g.line(indent, "}")
	return val, nil
}

func binaryOpName(op ast.BinaryOperator) string {
	switch op {
	case ast.Add:
		return "Add"
	case ast.Sub:
		return "Sub"
	case ast.Mul:
		return "Mul"
	case ast.Div:
		return "Div"
	case ast.Mod:
		return "Mod"
	}
	return "Add"
}

func unaryOpName(op ast.UnaryOperator) string {
	switch op {
	case ast.Pos:
		return "Pos"
	case ast.Neg:
		return "Neg"
	case ast.Not:
		return "Not"
	}
	return "Pos"
}

func compareOpName(op ast.CompareOperator) string {
	switch op {
	case ast.Eq:
		return "Eq"
	case ast.Ne:
		return "Ne"
	case ast.Gt:
		return "Gt"
	case ast.Ge:
		return "Ge"
	case ast.Lt:
		return "Lt"
	case ast.Le:
		return "Le"
	case ast.And:
		return "And"
	case ast.Or:
		return "Or"
	}
	return "Eq"
}
