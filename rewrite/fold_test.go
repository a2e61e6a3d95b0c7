package rewrite_test

import (
	"testing"

	"github.com/mcuelenaere/b2/ast"
	"github.com/mcuelenaere/b2/rewrite"
)

func fold(t *testing.T, e ast.Expression) ast.Expression {
	t.Helper()
	out, err := rewrite.ConstantFold{}.RunExpr(e)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestConstantFoldIntegerArithmetic(t *testing.T) {
	e := &ast.BinaryOp{
		Left:  &ast.IntegerLiteral{Value: 2},
		Right: &ast.IntegerLiteral{Value: 3},
		Op:    ast.Add,
	}
	got := fold(t, e)
	lit, ok := got.(*ast.IntegerLiteral)
	if !ok || lit.Value != 5 {
		t.Fatalf("got %#v, want IntegerLiteral(5)", got)
	}
}

func TestConstantFoldWidensToDouble(t *testing.T) {
	e := &ast.BinaryOp{
		Left:  &ast.IntegerLiteral{Value: 2},
		Right: &ast.DoubleLiteral{Value: 0.5},
		Op:    ast.Add,
	}
	got := fold(t, e)
	lit, ok := got.(*ast.DoubleLiteral)
	if !ok || lit.Value != 2.5 {
		t.Fatalf("got %#v, want DoubleLiteral(2.5)", got)
	}
}

func TestConstantFoldIntegerDivisionByZeroErrors(t *testing.T) {
	e := &ast.BinaryOp{
		Left:  &ast.IntegerLiteral{Value: 1},
		Right: &ast.IntegerLiteral{Value: 0},
		Op:    ast.Div,
	}
	_, err := rewrite.ConstantFold{}.RunExpr(e)
	if err == nil {
		t.Fatal("expected a division-by-zero error")
	}
	kinded, ok := err.(interface{ Kind() string })
	if !ok || kinded.Kind() != "DivisionByZero" {
		t.Fatalf("got %v, want DivisionByZero", err)
	}
}

func TestConstantFoldModulusWithDoubleOperandIsLeftUnfolded(t *testing.T) {
	e := &ast.BinaryOp{
		Left:  &ast.IntegerLiteral{Value: 5},
		Right: &ast.DoubleLiteral{Value: 2},
		Op:    ast.Mod,
	}
	got := fold(t, e)
	if _, ok := got.(*ast.BinaryOp); !ok {
		t.Fatalf("got %#v, want the BinaryOp left unfolded", got)
	}
}

func TestConstantFoldUnaryNegation(t *testing.T) {
	e := &ast.UnaryOp{Operand: &ast.IntegerLiteral{Value: 5}, Op: ast.Neg}
	got := fold(t, e)
	lit, ok := got.(*ast.IntegerLiteral)
	if !ok || lit.Value != -5 {
		t.Fatalf("got %#v, want IntegerLiteral(-5)", got)
	}
}

func TestConstantFoldNotOnBoolean(t *testing.T) {
	e := &ast.UnaryOp{Operand: &ast.BooleanLiteral{Value: true}, Op: ast.Not}
	got := fold(t, e)
	lit, ok := got.(*ast.BooleanLiteral)
	if !ok || lit.Value != false {
		t.Fatalf("got %#v, want BooleanLiteral(false)", got)
	}
}

func TestConstantFoldStringEquality(t *testing.T) {
	e := &ast.Comparison{
		Left:  &ast.StringLiteral{Value: "a"},
		Right: &ast.StringLiteral{Value: "a"},
		Op:    ast.Eq,
	}
	got := fold(t, e)
	lit, ok := got.(*ast.BooleanLiteral)
	if !ok || !lit.Value {
		t.Fatalf("got %#v, want BooleanLiteral(true)", got)
	}
}

func TestConstantFoldLeavesNonLiteralOperandsUnfolded(t *testing.T) {
	e := &ast.BinaryOp{
		Left:  &ast.VariableRef{Name: "x"},
		Right: &ast.IntegerLiteral{Value: 1},
		Op:    ast.Add,
	}
	got := fold(t, e)
	if _, ok := got.(*ast.BinaryOp); !ok {
		t.Fatalf("got %#v, want the BinaryOp left unfolded", got)
	}
}

func TestConstantFoldIsIdempotent(t *testing.T) {
	e := &ast.BinaryOp{
		Left:  &ast.IntegerLiteral{Value: 2},
		Right: &ast.IntegerLiteral{Value: 3},
		Op:    ast.Mul,
	}
	once := fold(t, e)
	twice := fold(t, once)
	lit1, _ := once.(*ast.IntegerLiteral)
	lit2, _ := twice.(*ast.IntegerLiteral)
	if lit1.Value != lit2.Value {
		t.Fatalf("refolding changed the result: %v -> %v", lit1.Value, lit2.Value)
	}
}

func TestConstantFoldRecursesIntoMethodCallArgs(t *testing.T) {
	e := &ast.MethodCall{
		Name: "f",
		Args: []ast.Expression{
			&ast.BinaryOp{Left: &ast.IntegerLiteral{Value: 1}, Right: &ast.IntegerLiteral{Value: 1}, Op: ast.Add},
		},
	}
	got := fold(t, e)
	call := got.(*ast.MethodCall)
	lit, ok := call.Args[0].(*ast.IntegerLiteral)
	if !ok || lit.Value != 2 {
		t.Fatalf("got %#v, want the arg folded to IntegerLiteral(2)", call.Args[0])
	}
}
