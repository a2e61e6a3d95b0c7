// Package backend declares the contract every lowering backend and
// every embedding host must satisfy (spec §4.7): the dual-visitor
// dispatch backends use to cover every AST node, and — for the
// native-codegen backend only — the binding surface a host runtime
// must supply.
//
// The Value family below is grounded on
// github.com/cwbudde/go-dws/internal/interp/runtime's Value/
// NumericValue/ComparableValue/OrderableValue/IterableValue
// interfaces: b2 has no static type system of its own (every runtime
// value is a Variant, spec §3.1), so it only needs the subset of the
// teacher's value algebra that backs dynamic arithmetic, comparison
// and iteration — not the teacher's full object/class/interface value
// model.
package backend

import (
	"io"

	"github.com/mcuelenaere/b2/ast"
)

// Value is a runtime-typed value produced by a host binding. Every
// value a b2 template manipulates at runtime is a Value; there is no
// compile-time refinement beyond ast.ValueType.
type Value interface {
	// Type names the value's dynamic type for diagnostics.
	Type() string
	// String renders the value's textual form (spec §4.7 "print").
	String() string
}

// NumericValue is implemented by Values usable in +, -, *, /, %.
type NumericValue interface {
	Value
	AsInteger() (int64, bool)
	AsFloat() (float64, bool)
}

// ComparableValue backs == and !=.
type ComparableValue interface {
	Value
	Equals(other Value) (bool, error)
}

// OrderableValue backs <, <=, >, >=.
type OrderableValue interface {
	ComparableValue
	CompareTo(other Value) (int, error)
}

// ForIterator is the iterator protocol a host returns from
// Binding.ForLoopInit (spec §4.7 "forLoopInit/Next/GetVariables/Cleanup",
// §4.8). Next advances before the first element is visited (so a loop
// body is `for it.Next() { ... }`); a Value not satisfying it produces
// a ForIterator whose first Next() returns false, i.e. the for's else
// branch runs — "not iterable" and "zero iterations" are the same
// observable outcome (spec §4.8 rule 1).
type ForIterator interface {
	// Next advances to the next entry, or reports there is none.
	Next() bool
	// Variables returns the current entry. key is nil when the loop
	// has no key binder; value is a borrowed reference and must not be
	// released by the backend (spec §4.7, §4.8 rule 2).
	Variables() (key, value Value)
	// Cleanup releases any state the iterator holds, called once after
	// the loop (whether it ran zero or more iterations).
	Cleanup()
}

// Binding is the full binding surface a host runtime must implement
// for the native-codegen backend (spec §4.7's table, one method per
// row). RenderFunc is "templateFunctionType": an emitted renderer's
// signature, an input bindings map plus an output sink.
type Binding interface {
	// IsVariant reports whether v is a dynamically-typed runtime value
	// (as opposed to a host-internal control value); used by the
	// backend to decide whether a result needs VariableGoesOutOfScope.
	IsVariant(v Value) bool

	// NewReference produces a fresh owning reference to v.
	NewReference(v Value) Value

	// VariableGoesOutOfScope releases v if the backend owns it. Values
	// looked up straight from the caller's frame (e.g. For's borrowed
	// value binder) must not be passed here.
	VariableGoesOutOfScope(v Value)

	// Print appends the textual form of v to out.
	Print(out io.Writer, v Value) error

	// VariableLookup fetches a named binding from the renderer's input.
	VariableLookup(name string) (Value, bool)

	// MethodCall invokes a host helper by name.
	MethodCall(name string, args []Value) (Value, error)

	// GetAttribute accesses a field or key of v.
	GetAttribute(v Value, name string) (Value, error)

	// VariantBinary implements dynamic-type-aware +, -, *, /, %.
	VariantBinary(op ast.BinaryOperator, left, right Value) (Value, error)

	// VariantUnary implements dynamic-type-aware +x, -x, !x.
	VariantUnary(op ast.UnaryOperator, operand Value) (Value, error)

	// VariantCompare implements dynamic-type-aware ==, !=, <, <=, >,
	// >=, &&, || and also supplies truthiness for If conditions (via
	// Eq against a host-defined "truthy" sentinel is a valid host
	// strategy, but the contract here is deliberately unopinionated —
	// spec §4.9 delegates it entirely to the host).
	VariantCompare(op ast.CompareOperator, left, right Value) (Value, error)

	// ForLoopInit begins iteration over iterable (spec §4.7, §4.8).
	ForLoopInit(iterable Value) (ForIterator, error)

	// Truthy decides whether v selects an If's then-arm. Spec §4.9
	// delegates all truthiness for non-boolean values to the host; the
	// compiler performs no implicit conversion of its own.
	Truthy(v Value) (bool, error)
}

// RenderFunc is the signature every emitted renderer has: a bindings
// map (the renderer's free variables) and an output sink.
type RenderFunc func(bindings map[string]Value, out io.Writer) error
