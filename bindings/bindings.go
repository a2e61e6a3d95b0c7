// Package bindings loads a JSON file, given by path to Load (spec §6, as
// extended by SPEC_FULL.md's DOMAIN STACK), into a backend.Binding the
// native backend can render against. It is the "host runtime" spec §4.7
// asks an embedder to supply, specialized to plain JSON-shaped data
// rather than any richer host object model.
package bindings

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/maruel/natural"
	"github.com/tidwall/gjson"

	"github.com/mcuelenaere/b2/ast"
	"github.com/mcuelenaere/b2/backend"
)

// Binding is a backend.Binding backed by a parsed JSON object: each
// top-level key becomes a renderer binding, and every JSON value
// (object, array, number, string, bool, null) is addressable through
// GetAttribute/ForLoopInit/VariantBinary the same way a richer
// host-specific Binding would be.
type Binding struct {
	top map[string]any
}

// Load reads path, parses it with gjson, and requires a top-level JSON
// object (its fields become the renderer's bindings).
func Load(path string) (*Binding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bindings: reading %s: %w", path, err)
	}
	result := gjson.ParseBytes(data)
	if !result.IsObject() {
		return nil, fmt.Errorf("bindings: %s must contain a JSON object at the top level", path)
	}
	top, _ := toGo(result).(map[string]any)
	return &Binding{top: top}, nil
}

// toGo converts a gjson.Result into plain Go values: map[string]any,
// []any, string, float64, bool, or nil.
func toGo(r gjson.Result) any {
	switch {
	case r.IsObject():
		m := make(map[string]any)
		r.ForEach(func(key, value gjson.Result) bool {
			m[key.String()] = toGo(value)
			return true
		})
		return m
	case r.IsArray():
		var arr []any
		r.ForEach(func(_, value gjson.Result) bool {
			arr = append(arr, toGo(value))
			return true
		})
		return arr
	case r.Type == gjson.Null:
		return nil
	case r.Type == gjson.String:
		return r.String()
	case r.Type == gjson.Number:
		return r.Float()
	case r.Type == gjson.True, r.Type == gjson.False:
		return r.Bool()
	default:
		return nil
	}
}

// jsonValue is the concrete backend.Value every method on Binding
// produces and consumes.
type jsonValue struct{ v any }

func (jv jsonValue) Type() string {
	switch jv.v.(type) {
	case nil:
		return "NULL"
	case float64:
		return "NUMBER"
	case string:
		return "STRING"
	case bool:
		return "BOOL"
	case map[string]any:
		return "OBJECT"
	case []any:
		return "ARRAY"
	default:
		return "UNKNOWN"
	}
}

func (jv jsonValue) String() string {
	switch t := jv.v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func (jv jsonValue) AsInteger() (int64, bool) {
	f, ok := jv.v.(float64)
	return int64(f), ok
}

func (jv jsonValue) AsFloat() (float64, bool) {
	f, ok := jv.v.(float64)
	return f, ok
}

func (b *Binding) IsVariant(v backend.Value) bool {
	_, ok := v.(jsonValue)
	return ok
}

// NewReference returns v unchanged: JSON-backed values are immutable
// snapshots with no refcounting to perform.
func (b *Binding) NewReference(v backend.Value) backend.Value { return v }

// VariableGoesOutOfScope is a no-op for the same reason.
func (b *Binding) VariableGoesOutOfScope(backend.Value) {}

func (b *Binding) Print(out io.Writer, v backend.Value) error {
	_, err := io.WriteString(out, v.String())
	return err
}

func (b *Binding) VariableLookup(name string) (backend.Value, bool) {
	v, ok := b.top[name]
	if !ok {
		return nil, false
	}
	return jsonValue{v}, true
}

// MethodCall always fails: plain JSON bindings expose data, not
// behavior. An embedder wanting helper methods supplies its own
// backend.Binding instead of this one.
func (b *Binding) MethodCall(name string, _ []backend.Value) (backend.Value, error) {
	return nil, fmt.Errorf("bindings: no such method %q", name)
}

func (b *Binding) GetAttribute(v backend.Value, name string) (backend.Value, error) {
	jv, ok := v.(jsonValue)
	if !ok {
		return nil, fmt.Errorf("bindings: %v has no attributes", v)
	}
	m, ok := jv.v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("bindings: %s has no attribute %q", jv.Type(), name)
	}
	val, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("bindings: no such attribute %q", name)
	}
	return jsonValue{val}, nil
}

func numeric(v backend.Value) (float64, bool) {
	if jv, ok := v.(jsonValue); ok {
		f, ok := jv.v.(float64)
		return f, ok
	}
	if nv, ok := v.(backend.NumericValue); ok {
		return nv.AsFloat()
	}
	return 0, false
}

func (b *Binding) VariantBinary(op ast.BinaryOperator, left, right backend.Value) (backend.Value, error) {
	lf, lok := numeric(left)
	rf, rok := numeric(right)
	if !lok || !rok {
		return nil, fmt.Errorf("bindings: %v/%v not numeric for %s", left, right, op)
	}
	switch op {
	case ast.Add:
		return jsonValue{lf + rf}, nil
	case ast.Sub:
		return jsonValue{lf - rf}, nil
	case ast.Mul:
		return jsonValue{lf * rf}, nil
	case ast.Div:
		return jsonValue{lf / rf}, nil
	case ast.Mod:
		li, ri := int64(lf), int64(rf)
		if ri == 0 {
			return nil, fmt.Errorf("bindings: modulus by zero")
		}
		return jsonValue{float64(li % ri)}, nil
	}
	return nil, fmt.Errorf("bindings: unhandled binary operator %s", op)
}

func (b *Binding) VariantUnary(op ast.UnaryOperator, operand backend.Value) (backend.Value, error) {
	switch op {
	case ast.Not:
		jv, ok := operand.(jsonValue)
		bv, bok := jv.v.(bool)
		if !ok || !bok {
			return nil, fmt.Errorf("bindings: %v not boolean for !", operand)
		}
		return jsonValue{!bv}, nil
	case ast.Pos, ast.Neg:
		f, ok := numeric(operand)
		if !ok {
			return nil, fmt.Errorf("bindings: %v not numeric for unary %s", operand, op)
		}
		if op == ast.Neg {
			return jsonValue{-f}, nil
		}
		return jsonValue{f}, nil
	}
	return nil, fmt.Errorf("bindings: unhandled unary operator %s", op)
}

func (b *Binding) VariantCompare(op ast.CompareOperator, left, right backend.Value) (backend.Value, error) {
	switch op {
	case ast.Eq, ast.Ne:
		lv, lok := left.(jsonValue)
		rv, rok := right.(jsonValue)
		eq := lok && rok && jsonEqual(lv.v, rv.v)
		if lf, lnum := numeric(left); lnum {
			if rf, rnum := numeric(right); rnum {
				eq = lf == rf
			}
		}
		if op == ast.Ne {
			eq = !eq
		}
		return jsonValue{eq}, nil
	case ast.Gt, ast.Ge, ast.Lt, ast.Le:
		lf, lok := numeric(left)
		rf, rok := numeric(right)
		if !lok || !rok {
			return nil, fmt.Errorf("bindings: %v/%v not numeric for %s", left, right, op)
		}
		switch op {
		case ast.Gt:
			return jsonValue{lf > rf}, nil
		case ast.Ge:
			return jsonValue{lf >= rf}, nil
		case ast.Lt:
			return jsonValue{lf < rf}, nil
		default:
			return jsonValue{lf <= rf}, nil
		}
	case ast.And, ast.Or:
		lv, _ := left.(jsonValue)
		rv, _ := right.(jsonValue)
		lb, _ := lv.v.(bool)
		rb, _ := rv.v.(bool)
		if op == ast.And {
			return jsonValue{lb && rb}, nil
		}
		return jsonValue{lb || rb}, nil
	}
	return nil, fmt.Errorf("bindings: unhandled comparison operator %s", op)
}

func jsonEqual(l, r any) bool {
	lf, lok := l.(float64)
	rf, rok := r.(float64)
	if lok && rok {
		return lf == rf
	}
	return l == r
}

func (b *Binding) Truthy(v backend.Value) (bool, error) {
	jv, ok := v.(jsonValue)
	if !ok {
		return false, nil
	}
	bv, ok := jv.v.(bool)
	return ok && bv, nil
}

// jsonIterator walks a JSON object (natural key order, for
// reproducibility across runs — the same rationale as
// ast/printer's sorted variableMapping dump) or array (index order).
type jsonIterator struct {
	entries []jsonEntry
	idx     int
}

type jsonEntry struct{ key, value jsonValue }

func (it *jsonIterator) Next() bool {
	it.idx++
	return it.idx <= len(it.entries)
}

func (it *jsonIterator) Variables() (key, value backend.Value) {
	e := it.entries[it.idx-1]
	return e.key, e.value
}

func (it *jsonIterator) Cleanup() {}

func (b *Binding) ForLoopInit(iterable backend.Value) (backend.ForIterator, error) {
	jv, ok := iterable.(jsonValue)
	if !ok {
		return &jsonIterator{}, nil
	}
	switch t := jv.v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		natural.Sort(keys)
		entries := make([]jsonEntry, len(keys))
		for i, k := range keys {
			entries[i] = jsonEntry{key: jsonValue{k}, value: jsonValue{t[k]}}
		}
		return &jsonIterator{entries: entries}, nil
	case []any:
		entries := make([]jsonEntry, len(t))
		for i, v := range t {
			entries[i] = jsonEntry{key: jsonValue{float64(i)}, value: jsonValue{v}}
		}
		return &jsonIterator{entries: entries}, nil
	default:
		return &jsonIterator{}, nil
	}
}
