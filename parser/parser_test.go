package parser_test

import (
	"testing"

	"github.com/mcuelenaere/b2/ast"
	"github.com/mcuelenaere/b2/parser"
)

func mustParse(t *testing.T, src string) ast.Node {
	t.Helper()
	n, err := parser.New().Parse(src, "test.b2")
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return n
}

func TestParseRawText(t *testing.T) {
	n := mustParse(t, "hello world")
	raw, ok := n.(*ast.Raw)
	if !ok {
		t.Fatalf("got %T, want *ast.Raw", n)
	}
	if raw.Text != "hello world" {
		t.Errorf("got %q", raw.Text)
	}
}

func TestParsePrintBinaryPrecedence(t *testing.T) {
	n := mustParse(t, "{{ 1 + 2 * 3 }}")
	print, ok := n.(*ast.Print)
	if !ok {
		t.Fatalf("got %T, want *ast.Print", n)
	}
	add, ok := print.Expr.(*ast.BinaryOp)
	if !ok || add.Op != ast.Add {
		t.Fatalf("got %#v, want top-level Add", print.Expr)
	}
	mul, ok := add.Right.(*ast.BinaryOp)
	if !ok || mul.Op != ast.Mul {
		t.Fatalf("got %#v, want Mul on the right of Add", add.Right)
	}
}

func TestParseParenthesesOverridePrecedence(t *testing.T) {
	n := mustParse(t, "{{ (1 + 2) * 3 }}")
	print := n.(*ast.Print)
	mul, ok := print.Expr.(*ast.BinaryOp)
	if !ok || mul.Op != ast.Mul {
		t.Fatalf("got %#v, want top-level Mul", print.Expr)
	}
	if _, ok := mul.Left.(*ast.BinaryOp); !ok {
		t.Fatalf("got %#v, want grouped Add on the left of Mul", mul.Left)
	}
}

func TestParseMethodCallWithAttributeArgument(t *testing.T) {
	n := mustParse(t, `{{ upper(user.name) }}`)
	print := n.(*ast.Print)
	call, ok := print.Expr.(*ast.MethodCall)
	if !ok || call.Name != "upper" {
		t.Fatalf("got %#v, want MethodCall(upper)", print.Expr)
	}
	if len(call.Args) != 1 {
		t.Fatalf("got %d args, want 1", len(call.Args))
	}
	if _, ok := call.Args[0].(*ast.GetAttribute); !ok {
		t.Fatalf("got %#v, want *ast.GetAttribute argument", call.Args[0])
	}
}

func TestParseAttributeChain(t *testing.T) {
	n := mustParse(t, `{{ user.address.city }}`)
	print := n.(*ast.Print)
	outer, ok := print.Expr.(*ast.GetAttribute)
	if !ok || outer.Name != "city" {
		t.Fatalf("got %#v, want GetAttribute(city)", print.Expr)
	}
	inner, ok := outer.Container.(*ast.GetAttribute)
	if !ok || inner.Name != "address" {
		t.Fatalf("got %#v, want GetAttribute(address)", outer.Container)
	}
}

func TestParseIfElifElse(t *testing.T) {
	n := mustParse(t, "{% if a %}A{% elif b %}B{% else %}C{% endif %}")
	ifNode, ok := n.(*ast.If)
	if !ok {
		t.Fatalf("got %T, want *ast.If", n)
	}
	elif, ok := ifNode.Else.(*ast.If)
	if !ok {
		t.Fatalf("got %#v, want nested *ast.If for elif", ifNode.Else)
	}
	if _, ok := elif.Else.(*ast.Raw); !ok {
		t.Fatalf("got %#v, want *ast.Raw for else body", elif.Else)
	}
}

func TestParseForWithKeyValueAndElse(t *testing.T) {
	n := mustParse(t, "{% for k, v in items %}{{ v }}{% else %}empty{% endfor %}")
	forNode, ok := n.(*ast.For)
	if !ok {
		t.Fatalf("got %T, want *ast.For", n)
	}
	if forNode.Key == nil || forNode.Key.Name != "k" {
		t.Fatalf("got key %#v, want \"k\"", forNode.Key)
	}
	if forNode.Value == nil || forNode.Value.Name != "v" {
		t.Fatalf("got value %#v, want \"v\"", forNode.Value)
	}
	if forNode.Else == nil {
		t.Fatal("expected an else body")
	}
}

func TestParseIncludeWithBindings(t *testing.T) {
	n := mustParse(t, `{% include "partial.b2" with {x: 1, y: "a"} %}`)
	inc, ok := n.(*ast.Include)
	if !ok {
		t.Fatalf("got %T, want *ast.Include", n)
	}
	if inc.Name != "partial.b2" {
		t.Errorf("got name %q", inc.Name)
	}
	if len(inc.Bindings) != 2 {
		t.Fatalf("got %d bindings, want 2", len(inc.Bindings))
	}
}

func TestParseIncludeWithScope(t *testing.T) {
	n := mustParse(t, `{% include "partial.b2" with outer %}`)
	inc := n.(*ast.Include)
	if inc.Scope == nil {
		t.Fatal("expected a Scope expression")
	}
	ref, ok := inc.Scope.(*ast.VariableRef)
	if !ok || ref.Name != "outer" {
		t.Fatalf("got %#v, want VariableRef(outer)", inc.Scope)
	}
}

func TestParseUnexpectedTokenIsSyntaxError(t *testing.T) {
	_, err := parser.New().Parse("{{ + }}", "bad.b2")
	if err == nil {
		t.Fatal("expected a syntax error")
	}
	kinded, ok := err.(interface{ Kind() string })
	if !ok || kinded.Kind() != "SyntaxError" {
		t.Fatalf("got %v, want SyntaxError", err)
	}
}

func TestParseUnterminatedTagIsSyntaxError(t *testing.T) {
	_, err := parser.New().Parse("{% if a %}body", "bad.b2")
	if err == nil {
		t.Fatal("expected a syntax error for the missing endif")
	}
}
