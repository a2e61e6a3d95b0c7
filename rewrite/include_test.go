package rewrite_test

import (
	"fmt"
	"testing"

	"github.com/mcuelenaere/b2/ast"
	"github.com/mcuelenaere/b2/parser"
	"github.com/mcuelenaere/b2/rewrite"
)

type memFiles map[string]string

func (m memFiles) ReadFile(name string) ([]byte, error) {
	content, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("no such file %q", name)
	}
	return []byte(content), nil
}

func resolve(t *testing.T, files memFiles, src string) ast.Node {
	t.Helper()
	tree, err := parser.New().Parse(src, "root.b2")
	if err != nil {
		t.Fatal(err)
	}
	pass := rewrite.NewIncludeResolve(parser.New(), files, ".")
	out, err := pass.RunStmt(tree)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestIncludeResolveSubstitutesBindings(t *testing.T) {
	files := memFiles{"partial.b2": "hello {{ name }}"}
	out := resolve(t, files, `{% include "partial.b2" with {name: "world"} %}`)

	print, ok := out.(*ast.Statements).Children[1].(*ast.Print)
	if !ok {
		t.Fatalf("got %#v, want the included Print node spliced in", out)
	}
	lit, ok := print.Expr.(*ast.StringLiteral)
	if !ok || lit.Value != "world" {
		t.Fatalf("got %#v, want the bound StringLiteral", print.Expr)
	}
}

func TestIncludeResolveSubstitutesScope(t *testing.T) {
	files := memFiles{"partial.b2": "{{ name }}"}
	out := resolve(t, files, `{% include "partial.b2" with outer %}`)

	print := out.(*ast.Print)
	attr, ok := print.Expr.(*ast.GetAttribute)
	if !ok || attr.Name != "name" {
		t.Fatalf("got %#v, want GetAttribute(name)", print.Expr)
	}
	ref, ok := attr.Container.(*ast.VariableRef)
	if !ok || ref.Name != "outer" {
		t.Fatalf("got %#v, want VariableRef(outer)", attr.Container)
	}
}

func TestIncludeResolveMissingBindingErrors(t *testing.T) {
	files := memFiles{"partial.b2": "{{ missing }}"}
	tree, err := parser.New().Parse(`{% include "partial.b2" with {} %}`, "root.b2")
	if err != nil {
		t.Fatal(err)
	}
	pass := rewrite.NewIncludeResolve(parser.New(), files, ".")
	_, err = pass.RunStmt(tree)
	if err == nil {
		t.Fatal("expected a MissingVariableReference error")
	}
	kinded, ok := err.(interface{ Kind() string })
	if !ok || kinded.Kind() != "MissingVariableReference" {
		t.Fatalf("got %v, want MissingVariableReference", err)
	}
}

func TestIncludeResolveCyclicIncludeErrors(t *testing.T) {
	files := memFiles{
		"a.b2": `{% include "b.b2" with {} %}`,
		"b.b2": `{% include "a.b2" with {} %}`,
	}
	tree, err := parser.New().Parse(`{% include "a.b2" with {} %}`, "root.b2")
	if err != nil {
		t.Fatal(err)
	}
	pass := rewrite.NewIncludeResolve(parser.New(), files, ".")
	_, err = pass.RunStmt(tree)
	if err == nil {
		t.Fatal("expected a CyclicInclude error")
	}
	kinded, ok := err.(interface{ Kind() string })
	if !ok || kinded.Kind() != "CyclicInclude" {
		t.Fatalf("got %v, want CyclicInclude", err)
	}
}

func TestIncludeResolveMissingFileIsIOError(t *testing.T) {
	files := memFiles{}
	tree, err := parser.New().Parse(`{% include "missing.b2" with {} %}`, "root.b2")
	if err != nil {
		t.Fatal(err)
	}
	pass := rewrite.NewIncludeResolve(parser.New(), files, ".")
	_, err = pass.RunStmt(tree)
	if err == nil {
		t.Fatal("expected an IOError")
	}
	kinded, ok := err.(interface{ Kind() string })
	if !ok || kinded.Kind() != "IOError" {
		t.Fatalf("got %v, want IOError", err)
	}
}

func TestIncludeResolveShadowsForBinders(t *testing.T) {
	files := memFiles{"partial.b2": `{% for item in items %}{{ item }}{% endfor %}`}
	out := resolve(t, files, `{% include "partial.b2" with {items: items} %}`)

	forNode, ok := out.(*ast.For)
	if !ok {
		t.Fatalf("got %#v, want the included For node spliced in directly", out)
	}
	print, ok := forNode.Body.(*ast.Print)
	if !ok {
		t.Fatalf("got %#v, want a Print referencing the loop binder", forNode.Body)
	}
	ref, ok := print.Expr.(*ast.VariableRef)
	if !ok || ref.Name != "item" {
		t.Fatalf("got %#v, want the untouched binder VariableRef(item)", print.Expr)
	}
}
