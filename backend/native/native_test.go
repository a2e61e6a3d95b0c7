package native_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/mcuelenaere/b2/ast"
	"github.com/mcuelenaere/b2/backend/native"
	"github.com/mcuelenaere/b2/bindings"
	"github.com/mcuelenaere/b2/lexer"
)

func loadBinding(t *testing.T, json string) *bindings.Binding {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bindings.json")
	if err := os.WriteFile(path, []byte(json), 0o644); err != nil {
		t.Fatal(err)
	}
	b, err := bindings.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func render(t *testing.T, binding *bindings.Binding, tree ast.Node) string {
	t.Helper()
	n := native.New(binding)
	fn, err := n.Compile(tree)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := fn(nil, &buf); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func TestNativeRendersRawAndVariableRef(t *testing.T) {
	binding := loadBinding(t, `{"name": "world"}`)
	tree := &ast.Statements{Children: []ast.Node{
		&ast.Raw{Position: lexer.ZeroPos, Text: "hello "},
		&ast.Print{Position: lexer.ZeroPos, Expr: &ast.VariableRef{Position: lexer.ZeroPos, Name: "name"}},
	}}
	got := render(t, binding, tree)
	if got != "hello world" {
		t.Fatalf("got %q", got)
	}
}

func TestNativeIfElse(t *testing.T) {
	binding := loadBinding(t, `{"flag": true}`)
	tree := &ast.If{
		Position: lexer.ZeroPos,
		Cond:     &ast.VariableRef{Position: lexer.ZeroPos, Name: "flag"},
		Then:     &ast.Raw{Position: lexer.ZeroPos, Text: "yes"},
		Else:     &ast.Raw{Position: lexer.ZeroPos, Text: "no"},
	}
	if got := render(t, binding, tree); got != "yes" {
		t.Fatalf("got %q, want yes", got)
	}
}

func TestNativeForLoopWithKeyValueAndElse(t *testing.T) {
	binding := loadBinding(t, `{"items": {"a": 1, "b": 2}}`)
	tree := &ast.For{
		Position: lexer.ZeroPos,
		Key:      &ast.VariableRef{Name: "k"},
		Value:    &ast.VariableRef{Name: "v"},
		Iterable: &ast.VariableRef{Position: lexer.ZeroPos, Name: "items"},
		Body: &ast.Statements{Children: []ast.Node{
			&ast.Print{Expr: &ast.VariableRef{Name: "k"}},
			&ast.Raw{Text: "="},
			&ast.Print{Expr: &ast.VariableRef{Name: "v"}},
			&ast.Raw{Text: ";"},
		}},
		Else: &ast.Raw{Text: "empty"},
	}
	got := render(t, binding, tree)
	if got != "a=1;b=2;" {
		t.Fatalf("got %q", got)
	}
}

func TestNativeForLoopElseOnEmptyIterable(t *testing.T) {
	binding := loadBinding(t, `{"items": []}`)
	tree := &ast.For{
		Position: lexer.ZeroPos,
		Value:    &ast.VariableRef{Name: "v"},
		Iterable: &ast.VariableRef{Position: lexer.ZeroPos, Name: "items"},
		Body:     &ast.Raw{Text: "x"},
		Else:     &ast.Raw{Text: "empty"},
	}
	if got := render(t, binding, tree); got != "empty" {
		t.Fatalf("got %q, want empty", got)
	}
}

func TestNativeUnboundVariableErrorsByDefault(t *testing.T) {
	binding := loadBinding(t, `{}`)
	n := native.New(binding)
	fn, err := n.Compile(&ast.Print{Expr: &ast.VariableRef{Position: lexer.ZeroPos, Name: "missing"}})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := fn(nil, &buf); err == nil {
		t.Fatal("expected an error for an unbound variable")
	}
}

func TestNativeUndefinedCheckSubstitutesEmptyString(t *testing.T) {
	binding := loadBinding(t, `{}`)
	n := &native.Native{Binding: binding, UndefinedCheck: true}
	fn, err := n.Compile(&ast.Statements{Children: []ast.Node{
		&ast.Raw{Text: "["},
		&ast.Print{Expr: &ast.VariableRef{Position: lexer.ZeroPos, Name: "missing"}},
		&ast.Raw{Text: "]"},
	}})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := fn(nil, &buf); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "[]" {
		t.Fatalf("got %q, want []", got)
	}
}

func TestNativeRejectsUnresolvedInclude(t *testing.T) {
	binding := loadBinding(t, `{}`)
	n := native.New(binding)
	fn, err := n.Compile(&ast.Include{Position: lexer.ZeroPos, Name: "x.b2"})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	err = fn(nil, &buf)
	if err == nil {
		t.Fatal("expected an UnsupportedOperation error for a surviving Include")
	}
	kinded, ok := err.(interface{ Kind() string })
	if !ok || kinded.Kind() != "UnsupportedOperation" {
		t.Fatalf("got %v, want UnsupportedOperation", err)
	}
}
