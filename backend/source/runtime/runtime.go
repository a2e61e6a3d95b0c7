// Package runtime is the tiny variant runtime linked into every
// renderer the source backend emits (backend/source). Unlike the
// native backend, the source backend does not call out to a
// host-supplied backend.Binding — it emits "a self-contained renderer"
// (spec §4.1), so its dynamic-value semantics live here instead,
// implemented directly over plain Go values rather than an interface
// a host must satisfy.
package runtime

import (
	"fmt"
	"io"
	"strconv"

	"github.com/maruel/natural"

	"github.com/mcuelenaere/b2/ast"
)

// Value is any dynamically-typed value a generated renderer manipulates:
// int64, float64, bool, string, map[string]Value, or []Value.
type Value = any

// Print appends v's textual form to out.
func Print(out io.Writer, v Value) error {
	_, err := io.WriteString(out, Stringify(v))
	return err
}

// Stringify renders v the same way for every Value kind, independent
// of where it's printed from.
func Stringify(v Value) string {
	switch t := v.(type) {
	case nil:
		return ""
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func numeric(v Value) (float64, bool, bool) {
	switch t := v.(type) {
	case int64:
		return float64(t), true, true
	case float64:
		return t, false, true
	default:
		return 0, false, false
	}
}

// Binary implements the dynamic-type-aware +, -, *, /, % of
// ast.BinaryOperator (the same rules rewrite.ConstantFold applies at
// compile time, applied here at render time for operands that weren't
// foldable — e.g. one side a VariableRef).
func Binary(op ast.BinaryOperator, left, right Value) (Value, error) {
	lf, lIsDouble, lok := numeric(left)
	rf, rIsDouble, rok := numeric(right)
	if !lok || !rok {
		return nil, fmt.Errorf("b2: %s is not numeric for binary operator %s", Stringify(left), op)
	}

	if lIsDouble || rIsDouble {
		switch op {
		case ast.Add:
			return lf + rf, nil
		case ast.Sub:
			return lf - rf, nil
		case ast.Mul:
			return lf * rf, nil
		case ast.Div:
			return lf / rf, nil
		case ast.Mod:
			li, ri := int64(lf), int64(rf)
			if ri == 0 {
				return nil, fmt.Errorf("b2: modulus by zero")
			}
			return li % ri, nil
		}
	}

	li, ri := left.(int64), right.(int64)
	switch op {
	case ast.Add:
		return li + ri, nil
	case ast.Sub:
		return li - ri, nil
	case ast.Mul:
		return li * ri, nil
	case ast.Div:
		if ri == 0 {
			return nil, fmt.Errorf("b2: integer division by zero")
		}
		return li / ri, nil
	case ast.Mod:
		if ri == 0 {
			return nil, fmt.Errorf("b2: integer modulus by zero")
		}
		return li % ri, nil
	}
	return nil, fmt.Errorf("b2: unhandled binary operator %s", op)
}

// Unary implements +x, -x, !x.
func Unary(op ast.UnaryOperator, v Value) (Value, error) {
	switch op {
	case ast.Not:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("b2: %s is not boolean for !", Stringify(v))
		}
		return !b, nil
	case ast.Pos, ast.Neg:
		f, isDouble, ok := numeric(v)
		if !ok {
			return nil, fmt.Errorf("b2: %s is not numeric for unary %s", Stringify(v), op)
		}
		sign := 1.0
		if op == ast.Neg {
			sign = -1.0
		}
		if isDouble {
			return sign * f, nil
		}
		return int64(sign) * v.(int64), nil
	}
	return nil, fmt.Errorf("b2: unhandled unary operator %s", op)
}

// Compare implements ==, !=, <, <=, >, >=, && and ||.
func Compare(op ast.CompareOperator, left, right Value) (Value, error) {
	switch op {
	case ast.Eq, ast.Ne:
		eq := equal(left, right)
		if op == ast.Ne {
			eq = !eq
		}
		return eq, nil
	case ast.Gt, ast.Ge, ast.Lt, ast.Le:
		lf, _, lok := numeric(left)
		rf, _, rok := numeric(right)
		if !lok || !rok {
			return nil, fmt.Errorf("b2: %s/%s not numeric for %s", Stringify(left), Stringify(right), op)
		}
		switch op {
		case ast.Gt:
			return lf > rf, nil
		case ast.Ge:
			return lf >= rf, nil
		case ast.Lt:
			return lf < rf, nil
		default:
			return lf <= rf, nil
		}
	case ast.And, ast.Or:
		lb, lok := left.(bool)
		rb, rok := right.(bool)
		if !lok || !rok {
			return nil, fmt.Errorf("b2: %s/%s not boolean for %s", Stringify(left), Stringify(right), op)
		}
		if op == ast.And {
			return lb && rb, nil
		}
		return lb || rb, nil
	}
	return nil, fmt.Errorf("b2: unhandled comparison operator %s", op)
}

func equal(l, r Value) bool {
	lf, _, lok := numeric(l)
	rf, _, rok := numeric(r)
	if lok && rok {
		return lf == rf
	}
	return l == r
}

// Truthy delegates If conditions to the same rules used in boolean
// comparisons (spec §4.9: no implicit conversion beyond what the
// runtime already defines for booleans).
func Truthy(v Value) bool {
	b, ok := v.(bool)
	return ok && b
}

// GetAttribute reads a field out of a map-shaped Value.
func GetAttribute(v Value, name string) (Value, error) {
	m, ok := v.(map[string]Value)
	if !ok {
		return nil, fmt.Errorf("b2: %s has no attribute %q", Stringify(v), name)
	}
	attr, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("b2: no such attribute %q", name)
	}
	return attr, nil
}

// KV is one entry produced by Iterate.
type KV struct {
	Key, Value Value
}

// Iterate returns v's entries in the renderer's documented stable
// order (spec §4.8 rule 1: "insertion order for maps where defined;
// index order for sequences"). Since Go map iteration order is
// randomized, map-shaped Values are walked in natural key order
// instead — deterministic across runs, which is what the contract
// actually requires ("map order as defined by the host, but stable
// across runs", spec §8 scenario 4).
func Iterate(v Value) ([]KV, bool) {
	switch t := v.(type) {
	case map[string]Value:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		natural.Sort(keys)
		out := make([]KV, len(keys))
		for i, k := range keys {
			out[i] = KV{Key: k, Value: t[k]}
		}
		return out, true
	case []Value:
		out := make([]KV, len(t))
		for i, v := range t {
			out[i] = KV{Key: int64(i), Value: v}
		}
		return out, true
	default:
		return nil, false
	}
}

// MethodCall invokes a named helper out of a host-supplied table. The
// generated render function takes this table as a parameter
// (backend/source's Generate embeds the call site; the table itself is
// supplied by whoever links the generated package, not by this
// runtime).
func MethodCall(helpers map[string]func([]Value) (Value, error), name string, args []Value) (Value, error) {
	fn, ok := helpers[name]
	if !ok {
		return nil, fmt.Errorf("b2: no such method %q", name)
	}
	return fn(args)
}
