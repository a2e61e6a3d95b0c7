// Package native implements the in-memory code generator backend
// (spec §4.7): it lowers a fully-resolved AST directly into a callable
// backend.RenderFunc by recursive evaluation against a host-supplied
// backend.Binding, with no intermediate text representation.
package native

import (
	"io"
	"strconv"

	"github.com/mcuelenaere/b2/ast"
	"github.com/mcuelenaere/b2/backend"
	"github.com/mcuelenaere/b2/errs"
)

// env is a chain of variable scopes. The innermost scopes are For
// binders (spec §4.8 rule 3: binder names shadow outer bindings for
// the duration of the body); the chain bottoms out at the host's
// Binding.VariableLookup, which supplies the renderer's top-level
// bindings.
type env struct {
	vars   map[string]backend.Value
	parent *env
	host   backend.Binding
}

func (e *env) child(vars map[string]backend.Value) *env {
	return &env{vars: vars, parent: e, host: e.host}
}

func (e *env) lookup(name string) (backend.Value, bool) {
	for s := e; s != nil; s = s.parent {
		if s.vars != nil {
			if v, ok := s.vars[name]; ok {
				return v, true
			}
		}
	}
	return e.host.VariableLookup(name)
}

// Native builds one closure per compilation via direct recursion
// rather than text templates, so there is no separate emit-then-load
// step the way the source backend has — building the RenderFunc
// already does all the dispatch work an explicit "compile" phase would
// otherwise repeat on every render call.
type Native struct {
	Binding backend.Binding

	// UndefinedCheck mirrors the original host runtimes' behavior
	// (php_bindings.cpp, simple_bindings.cpp): when set, a VariableRef
	// with no matching binding renders as the empty string instead of
	// failing the render. Off by default, matching spec §7's stricter
	// "unbound variable at runtime is an error" behavior.
	UndefinedCheck bool
}

// New returns a Native backend driven by the given host binding surface.
func New(binding backend.Binding) *Native { return &Native{Binding: binding} }

// undefinedValue is substituted for a missing VariableRef when
// UndefinedCheck is set. It carries no host-defined type, so it can
// only be printed or compared, never passed to GetAttribute/MethodCall/
// VariantBinary — those still fail, same as a genuinely absent value.
type undefinedValue struct{}

func (undefinedValue) Type() string   { return "UNDEFINED" }
func (undefinedValue) String() string { return "" }

func (Native) Name() string { return "native" }

// Compile lowers tree into a RenderFunc. tree must not contain any
// Include node (invariant S3: the include-resolution pass is expected
// to have eliminated them already).
func (n *Native) Compile(tree ast.Node) (backend.RenderFunc, error) {
	return func(bindings map[string]backend.Value, out io.Writer) error {
		root := &env{vars: bindings, host: n.Binding}
		return n.execNode(tree, root, out)
	}, nil
}

func (n *Native) execNode(node ast.Node, e *env, out io.Writer) error {
	switch v := node.(type) {
	case *ast.Statements:
		for _, c := range v.Children {
			if err := n.execNode(c, e, out); err != nil {
				return err
			}
		}
		return nil

	case *ast.Raw:
		_, err := io.WriteString(out, v.Text)
		return err

	case *ast.Print:
		val, err := n.evalExpr(v.Expr, e)
		if err != nil {
			return err
		}
		if _, isUndefined := val.(undefinedValue); isUndefined {
			return nil
		}
		err = n.Binding.Print(out, val)
		n.Binding.VariableGoesOutOfScope(val)
		return err

	case *ast.If:
		cond, err := n.evalExpr(v.Cond, e)
		if err != nil {
			return err
		}
		truthy, err := n.Binding.Truthy(cond)
		n.Binding.VariableGoesOutOfScope(cond)
		if err != nil {
			return err
		}
		if truthy {
			if v.Then != nil {
				return n.execNode(v.Then, e, out)
			}
			return nil
		}
		if v.Else != nil {
			return n.execNode(v.Else, e, out)
		}
		return nil

	case *ast.For:
		return n.execFor(v, e, out)

	case *ast.Include:
		return &errs.UnsupportedOperationError{
			Diagnostic: errs.Diagnostic{Pos: v.Position, Message: "Include reached the native backend"},
			Operation:  "Include",
		}

	default:
		return &errs.UnsupportedOperationError{
			Diagnostic: errs.Diagnostic{Pos: node.Pos(), Message: "unhandled node"},
			Operation:  "unknown statement kind",
		}
	}
}

func (n *Native) execFor(v *ast.For, e *env, out io.Writer) error {
	iterable, err := n.evalExpr(v.Iterable, e)
	if err != nil {
		return err
	}
	it, err := n.Binding.ForLoopInit(iterable)
	n.Binding.VariableGoesOutOfScope(iterable)
	if err != nil {
		return err
	}

	ran := false
	for it.Next() {
		ran = true
		key, value := it.Variables()
		vars := make(map[string]backend.Value, 2)
		if v.Key != nil && key != nil {
			vars[v.Key.Name] = key
		}
		if v.Value != nil {
			vars[v.Value.Name] = value
		}
		bodyEnv := e.child(vars)
		if v.Body != nil {
			if err := n.execNode(v.Body, bodyEnv, out); err != nil {
				if v.Key != nil && key != nil {
					n.Binding.VariableGoesOutOfScope(key)
				}
				it.Cleanup()
				return err
			}
		}
		if v.Key != nil && key != nil {
			n.Binding.VariableGoesOutOfScope(key)
		}
	}
	it.Cleanup()

	if !ran && v.Else != nil {
		return n.execNode(v.Else, e, out)
	}
	return nil
}

func (n *Native) evalExpr(expr ast.Expression, e *env) (backend.Value, error) {
	switch v := expr.(type) {
	case *ast.VariableRef:
		val, ok := e.lookup(v.Name)
		if !ok {
			if n.UndefinedCheck {
				return undefinedValue{}, nil
			}
			return nil, &errs.UnsupportedOperationError{
				Diagnostic: errs.Diagnostic{Pos: v.Position, Message: "unbound variable at runtime: " + v.Name},
				Operation:  "VariableRef",
			}
		}
		return n.Binding.NewReference(val), nil

	case *ast.GetAttribute:
		container, err := n.evalExpr(v.Container, e)
		if err != nil {
			return nil, err
		}
		val, err := n.Binding.GetAttribute(container, v.Name)
		n.Binding.VariableGoesOutOfScope(container)
		return val, err

	case *ast.MethodCall:
		args := make([]backend.Value, len(v.Args))
		for i, a := range v.Args {
			val, err := n.evalExpr(a, e)
			if err != nil {
				for _, prev := range args[:i] {
					n.Binding.VariableGoesOutOfScope(prev)
				}
				return nil, err
			}
			args[i] = val
		}
		val, err := n.Binding.MethodCall(v.Name, args)
		for _, a := range args {
			n.Binding.VariableGoesOutOfScope(a)
		}
		return val, err

	case *ast.BinaryOp:
		left, err := n.evalExpr(v.Left, e)
		if err != nil {
			return nil, err
		}
		right, err := n.evalExpr(v.Right, e)
		if err != nil {
			n.Binding.VariableGoesOutOfScope(left)
			return nil, err
		}
		val, err := n.Binding.VariantBinary(v.Op, left, right)
		n.Binding.VariableGoesOutOfScope(left)
		n.Binding.VariableGoesOutOfScope(right)
		return val, err

	case *ast.UnaryOp:
		operand, err := n.evalExpr(v.Operand, e)
		if err != nil {
			return nil, err
		}
		val, err := n.Binding.VariantUnary(v.Op, operand)
		n.Binding.VariableGoesOutOfScope(operand)
		return val, err

	case *ast.Comparison:
		left, err := n.evalExpr(v.Left, e)
		if err != nil {
			return nil, err
		}
		right, err := n.evalExpr(v.Right, e)
		if err != nil {
			n.Binding.VariableGoesOutOfScope(left)
			return nil, err
		}
		val, err := n.Binding.VariantCompare(v.Op, left, right)
		n.Binding.VariableGoesOutOfScope(left)
		n.Binding.VariableGoesOutOfScope(right)
		return val, err

	case *ast.IntegerLiteral, *ast.DoubleLiteral, *ast.BooleanLiteral, *ast.StringLiteral:
		return n.evalLiteral(v)

	default:
		return nil, &errs.UnsupportedOperationError{
			Diagnostic: errs.Diagnostic{Pos: expr.Pos(), Message: "unhandled expression"},
			Operation:  "unknown expression kind",
		}
	}
}

func (n *Native) evalLiteral(expr ast.Expression) (backend.Value, error) {
	switch v := expr.(type) {
	case *ast.IntegerLiteral:
		return integerValue(v.Value), nil
	case *ast.DoubleLiteral:
		return doubleValue(v.Value), nil
	case *ast.BooleanLiteral:
		return booleanValue(v.Value), nil
	case *ast.StringLiteral:
		return stringValue(v.Value), nil
	}
	return nil, &errs.UnsupportedOperationError{Operation: "unknown literal kind"}
}

// integerValue, doubleValue, booleanValue and stringValue are the
// backend's own minimal Values for literals that haven't yet passed
// through the host binding. GetAttribute/MethodCall on them still go
// through Binding, same as any other Value — a host that wants richer
// literal representations intercepts them there, via
// VariantBinary/VariantCompare, rather than by reaching into these
// types.
type integerValue int64

func (v integerValue) Type() string             { return "INTEGER" }
func (v integerValue) String() string           { return strconv.FormatInt(int64(v), 10) }
func (v integerValue) AsInteger() (int64, bool) { return int64(v), true }
func (v integerValue) AsFloat() (float64, bool) { return float64(v), true }

type doubleValue float64

func (v doubleValue) Type() string             { return "DOUBLE" }
func (v doubleValue) String() string           { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v doubleValue) AsInteger() (int64, bool) { return int64(v), true }
func (v doubleValue) AsFloat() (float64, bool) { return float64(v), true }

type booleanValue bool

func (v booleanValue) Type() string   { return "BOOLEAN" }
func (v booleanValue) String() string { return strconv.FormatBool(bool(v)) }

type stringValue string

func (v stringValue) Type() string   { return "STRING" }
func (v stringValue) String() string { return string(v) }
