// Package jsondump builds the `--format=json` alternate AST dump for
// cmd/b2dump: the same information ast/printer renders as bracketed
// tags, built instead as a JSON document via sjson.SetRaw, one field
// at a time, mirroring the node-by-node structure of the printer
// rather than marshaling the AST structs directly (which would leak Go
// field names/types instead of the stable tag vocabulary spec §6
// defines).
package jsondump

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/maruel/natural"
	"github.com/tidwall/sjson"

	"github.com/mcuelenaere/b2/ast"
)

// Dump renders n as a JSON document with the same tag vocabulary as
// ast/printer ("kind" holds the bracketed tag name minus its brackets).
func Dump(n ast.Node) (string, error) {
	return nodeJSON(n)
}

func setRaw(doc, path, raw string) (string, error) {
	return sjson.SetRaw(doc, path, raw)
}

func nodeJSON(n ast.Node) (string, error) {
	switch v := n.(type) {
	case *ast.Statements:
		doc := `{"kind":"STATEMENTS","children":[]}`
		for i, c := range v.Children {
			childDoc, err := nodeJSON(c)
			if err != nil {
				return "", err
			}
			doc, err = setRaw(doc, fmt.Sprintf("children.%d", i), childDoc)
			if err != nil {
				return "", err
			}
		}
		return doc, nil

	case *ast.Raw:
		return fmt.Sprintf(`{"kind":"RAW","text":%s}`, jsonString(v.Text)), nil

	case *ast.Print:
		expr, err := exprJSON(v.Expr)
		if err != nil {
			return "", err
		}
		return setRaw(`{"kind":"PRINT_BLOCK"}`, "expr", expr)

	case *ast.If:
		doc := `{"kind":"IF_BLOCK"}`
		cond, err := exprJSON(v.Cond)
		if err != nil {
			return "", err
		}
		if doc, err = setRaw(doc, "cond", cond); err != nil {
			return "", err
		}
		if v.Then != nil {
			then, err := nodeJSON(v.Then)
			if err != nil {
				return "", err
			}
			if doc, err = setRaw(doc, "then", then); err != nil {
				return "", err
			}
		}
		if v.Else != nil {
			elseDoc, err := nodeJSON(v.Else)
			if err != nil {
				return "", err
			}
			if doc, err = setRaw(doc, "else", elseDoc); err != nil {
				return "", err
			}
		}
		return doc, nil

	case *ast.For:
		doc := `{"kind":"FOR_BLOCK"}`
		var err error
		if v.Key != nil {
			keyDoc, kerr := exprJSON(v.Key)
			if kerr != nil {
				return "", kerr
			}
			if doc, err = setRaw(doc, "key", keyDoc); err != nil {
				return "", err
			}
		}
		if v.Value != nil {
			valDoc, verr := exprJSON(v.Value)
			if verr != nil {
				return "", verr
			}
			if doc, err = setRaw(doc, "value", valDoc); err != nil {
				return "", err
			}
		}
		iterDoc, err := exprJSON(v.Iterable)
		if err != nil {
			return "", err
		}
		if doc, err = setRaw(doc, "iterable", iterDoc); err != nil {
			return "", err
		}
		if v.Body != nil {
			bodyDoc, err := nodeJSON(v.Body)
			if err != nil {
				return "", err
			}
			if doc, err = setRaw(doc, "body", bodyDoc); err != nil {
				return "", err
			}
		}
		if v.Else != nil {
			elseDoc, err := nodeJSON(v.Else)
			if err != nil {
				return "", err
			}
			if doc, err = setRaw(doc, "else", elseDoc); err != nil {
				return "", err
			}
		}
		return doc, nil

	case *ast.Include:
		doc := fmt.Sprintf(`{"kind":"INCLUDE_BLOCK","includeName":%s}`, jsonString(v.Name))
		var err error
		if v.Scope != nil {
			scopeDoc, serr := exprJSON(v.Scope)
			if serr != nil {
				return "", serr
			}
			if doc, err = setRaw(doc, "scope", scopeDoc); err != nil {
				return "", err
			}
		}
		if len(v.Bindings) > 0 {
			keys := make([]string, 0, len(v.Bindings))
			for k := range v.Bindings {
				keys = append(keys, k)
			}
			natural.Sort(keys)
			mapping := `{}`
			for _, k := range keys {
				valDoc, verr := exprJSON(v.Bindings[k])
				if verr != nil {
					return "", verr
				}
				mapping, err = setRaw(mapping, jsonPathKey(k), valDoc)
				if err != nil {
					return "", err
				}
			}
			if doc, err = setRaw(doc, "variableMapping", mapping); err != nil {
				return "", err
			}
		}
		return doc, nil

	default:
		return "", fmt.Errorf("jsondump: unhandled node type %T", n)
	}
}

func exprJSON(e ast.Expression) (string, error) {
	switch v := e.(type) {
	case *ast.VariableRef:
		return fmt.Sprintf(`{"kind":"VARIABLE","name":%s}`, jsonString(v.Name)), nil

	case *ast.GetAttribute:
		container, err := exprJSON(v.Container)
		if err != nil {
			return "", err
		}
		doc, err := setRaw(`{"kind":"GET_ATTRIBUTE"}`, "variable", container)
		if err != nil {
			return "", err
		}
		return sjson.Set(doc, "attributeName", v.Name)

	case *ast.MethodCall:
		doc, err := sjson.Set(`{"kind":"METHOD_CALL"}`, "name", v.Name)
		if err != nil {
			return "", err
		}
		doc, err = setRaw(doc, "args", `[]`)
		if err != nil {
			return "", err
		}
		for i, a := range v.Args {
			argDoc, err := exprJSON(a)
			if err != nil {
				return "", err
			}
			if doc, err = setRaw(doc, fmt.Sprintf("args.%d", i), argDoc); err != nil {
				return "", err
			}
		}
		return doc, nil

	case *ast.IntegerLiteral:
		return sjson.Set(`{"kind":"INT"}`, "value", v.Value)

	case *ast.DoubleLiteral:
		return setRaw(`{"kind":"DOUBLE"}`, "value", strconv.FormatFloat(v.Value, 'g', -1, 64))

	case *ast.BooleanLiteral:
		return sjson.Set(`{"kind":"BOOL"}`, "value", v.Value)

	case *ast.StringLiteral:
		return fmt.Sprintf(`{"kind":"STRING","value":%s}`, jsonString(v.Value)), nil

	case *ast.BinaryOp:
		doc, err := binExprJSON(`{"kind":"BINOP"}`, v.Left, v.Right)
		if err != nil {
			return "", err
		}
		return sjson.Set(doc, "op", v.Op.String())

	case *ast.UnaryOp:
		operand, err := exprJSON(v.Operand)
		if err != nil {
			return "", err
		}
		doc, err := setRaw(`{"kind":"UNOP"}`, "expr", operand)
		if err != nil {
			return "", err
		}
		return sjson.Set(doc, "op", v.Op.String())

	case *ast.Comparison:
		doc, err := binExprJSON(`{"kind":"CMP"}`, v.Left, v.Right)
		if err != nil {
			return "", err
		}
		return sjson.Set(doc, "op", v.Op.String())

	default:
		return "", fmt.Errorf("jsondump: unhandled expression type %T", e)
	}
}

func binExprJSON(doc string, left, right ast.Expression) (string, error) {
	l, err := exprJSON(left)
	if err != nil {
		return "", err
	}
	if doc, err = setRaw(doc, "left", l); err != nil {
		return "", err
	}
	r, err := exprJSON(right)
	if err != nil {
		return "", err
	}
	return setRaw(doc, "right", r)
}

// jsonString renders a Go string as a JSON string literal via
// encoding/json, so every control byte gets a valid JSON escape.
func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// jsonPathKey escapes a variableMapping key for use as an sjson path
// segment: sjson treats '.' as a path separator, so a literal '.' or
// '*'/'?' in a b2 variable name must be backslash-escaped in the path
// (b2 identifiers never actually contain these per the grammar, but a
// host-supplied Include.Bindings map key theoretically could).
func jsonPathKey(k string) string {
	var out []byte
	for i := 0; i < len(k); i++ {
		c := k[i]
		if c == '.' || c == '*' || c == '?' || c == '\\' {
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	return string(out)
}
