package bindings

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/mcuelenaere/b2/ast"
)

func writeFixture(t *testing.T, contents string) *Binding {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bindings.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	b, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return b
}

func TestVariableLookupAndPrint(t *testing.T) {
	b := writeFixture(t, `{"user": "world", "count": 3}`)

	v, ok := b.VariableLookup("user")
	if !ok {
		t.Fatal("user not found")
	}
	var buf bytes.Buffer
	if err := b.Print(&buf, v); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "world" {
		t.Errorf("Print(user) = %q, want %q", buf.String(), "world")
	}

	if _, ok := b.VariableLookup("missing"); ok {
		t.Error("expected missing to be absent")
	}
}

func TestGetAttribute(t *testing.T) {
	b := writeFixture(t, `{"u": {"name": "A", "age": 3}}`)
	u, _ := b.VariableLookup("u")

	name, err := b.GetAttribute(u, "name")
	if err != nil {
		t.Fatal(err)
	}
	if name.String() != "A" {
		t.Errorf("name = %q, want A", name.String())
	}

	if _, err := b.GetAttribute(u, "nope"); err == nil {
		t.Error("expected error for missing attribute")
	}
}

func TestVariantBinaryAndCompare(t *testing.T) {
	b := writeFixture(t, `{"a": 2, "c": 3}`)
	a, _ := b.VariableLookup("a")
	c, _ := b.VariableLookup("c")

	sum, err := b.VariantBinary(ast.Add, a, c)
	if err != nil {
		t.Fatal(err)
	}
	if sum.String() != "5" {
		t.Errorf("a + c = %q, want 5", sum.String())
	}

	cmp, err := b.VariantCompare(ast.Lt, a, c)
	if err != nil {
		t.Fatal(err)
	}
	truthy, err := b.Truthy(cmp)
	if err != nil {
		t.Fatal(err)
	}
	if !truthy {
		t.Error("expected a < c")
	}
}

func TestForLoopInitObjectOrdersNaturally(t *testing.T) {
	b := writeFixture(t, `{"m": {"b": 2, "a": 1}}`)
	m, _ := b.VariableLookup("m")

	it, err := b.ForLoopInit(m)
	if err != nil {
		t.Fatal(err)
	}
	var keys []string
	for it.Next() {
		k, _ := it.Variables()
		keys = append(keys, k.String())
	}
	it.Cleanup()

	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Errorf("keys = %v, want [a b]", keys)
	}
}

func TestForLoopInitEmptyObjectYieldsZeroIterations(t *testing.T) {
	b := writeFixture(t, `{"m": {}}`)
	m, _ := b.VariableLookup("m")

	it, err := b.ForLoopInit(m)
	if err != nil {
		t.Fatal(err)
	}
	if it.Next() {
		t.Error("expected zero iterations over an empty object")
	}
	it.Cleanup()
}

func TestLoadRejectsNonObjectTopLevel(t *testing.T) {
	if _, err := writeFixtureErr(t, `[1,2,3]`); err == nil {
		t.Fatal("expected error for non-object top level")
	}
}

func writeFixtureErr(t *testing.T, contents string) (*Binding, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bindings.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return Load(path)
}
