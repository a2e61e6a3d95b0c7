// Package printer renders an AST to the deterministic bracketed-tag
// text format used by the b2dump CLI driver and by the printer golden
// tests (spec §6). The format is line-oriented and indentation-nested
// for statement nodes; expressions are rendered inline as a single
// braced term.
//
// The format is grounded directly on the original compiler's
// PrintVisitor (print_visitor.cpp): every tag, field name and ordering
// choice here matches it line for line, translated from an
// accept/visit double-dispatch into an exhaustive Go type switch (spec
// §9, "Visitors become exhaustive match").
package printer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/maruel/natural"

	"github.com/mcuelenaere/b2/ast"
)

const indentUnit = "  "

// Print renders the full AST rooted at n, wrapped in the [SOF]/[EOF]
// markers the original tool emits for a whole template file.
func Print(n ast.Node) string {
	var b strings.Builder
	b.WriteString("[SOF]\n")
	writeNode(&b, n, 1)
	b.WriteString("[EOF]\n")
	return b.String()
}

func indent(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat(indentUnit, depth))
}

func writeNode(b *strings.Builder, n ast.Node, depth int) {
	switch v := n.(type) {
	case *ast.Statements:
		indent(b, depth)
		b.WriteString("[STATEMENTS]\n")
		for _, c := range v.Children {
			writeNode(b, c, depth+1)
		}
		indent(b, depth)
		b.WriteString("[END_STATEMENTS]\n")

	case *ast.Raw:
		indent(b, depth)
		b.WriteString("[RAW] \"")
		b.WriteString(escape(v.Text))
		b.WriteString("\"\n")

	case *ast.Print:
		indent(b, depth)
		b.WriteString("[PRINT_BLOCK ")
		writeExpr(b, v.Expr)
		b.WriteString("]\n")

	case *ast.If:
		indent(b, depth)
		b.WriteString("[IF_BLOCK ")
		writeExpr(b, v.Cond)
		b.WriteString("]\n")
		if v.Then != nil {
			writeNode(b, v.Then, depth+1)
		}
		if v.Else != nil {
			indent(b, depth)
			b.WriteString("[ELSE_BLOCK]\n")
			writeNode(b, v.Else, depth+1)
		}
		indent(b, depth)
		b.WriteString("[ENDIF_BLOCK]\n")

	case *ast.For:
		indent(b, depth)
		b.WriteString("[FOR_BLOCK ")
		wroteField := false
		if v.Key != nil {
			b.WriteString("keyVariable=")
			writeExpr(b, v.Key)
			wroteField = true
		}
		if v.Value != nil {
			if wroteField {
				b.WriteString(" ")
			}
			b.WriteString("valueVariable=")
			writeExpr(b, v.Value)
			wroteField = true
		}
		if v.Iterable != nil {
			if wroteField {
				b.WriteString(" ")
			}
			b.WriteString("iterable=")
			writeExpr(b, v.Iterable)
		}
		b.WriteString("]\n")
		if v.Body != nil {
			writeNode(b, v.Body, depth+1)
		}
		if v.Else != nil {
			indent(b, depth)
			b.WriteString("[ELSEFOR_BLOCK]\n")
			writeNode(b, v.Else, depth+1)
		}
		indent(b, depth)
		b.WriteString("[ENDFOR_BLOCK]\n")

	case *ast.Include:
		indent(b, depth)
		fmt.Fprintf(b, "[INCLUDE_BLOCK includeName=%q", v.Name)
		if v.Scope != nil {
			b.WriteString(" scope=")
			writeExpr(b, v.Scope)
		}
		if len(v.Bindings) > 0 {
			keys := make([]string, 0, len(v.Bindings))
			for k := range v.Bindings {
				keys = append(keys, k)
			}
			natural.Sort(keys)

			b.WriteString(" variableMapping={")
			for i, k := range keys {
				if i > 0 {
					b.WriteString(", ")
				}
				fmt.Fprintf(b, "%q => ", k)
				writeExpr(b, v.Bindings[k])
			}
			b.WriteString("}")
		}
		b.WriteString("]\n")

	default:
		panic(fmt.Sprintf("printer: unhandled node type %T", n))
	}
}

func writeExpr(b *strings.Builder, e ast.Expression) {
	switch v := e.(type) {
	case *ast.VariableRef:
		fmt.Fprintf(b, "{VARIABLE name=%q}", v.Name)

	case *ast.GetAttribute:
		b.WriteString("{GET_ATTRIBUTE variable=")
		writeExpr(b, v.Container)
		fmt.Fprintf(b, " attributeName=%q}", v.Name)

	case *ast.MethodCall:
		fmt.Fprintf(b, "{METHOD_CALL name=%q, args=[", v.Name)
		for i, a := range v.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			writeExpr(b, a)
		}
		b.WriteString("]}")

	case *ast.IntegerLiteral:
		fmt.Fprintf(b, "{INT value=%d}", v.Value)

	case *ast.DoubleLiteral:
		fmt.Fprintf(b, "{DOUBLE value=%s}", strconv.FormatFloat(v.Value, 'g', -1, 64))

	case *ast.BooleanLiteral:
		fmt.Fprintf(b, "{BOOL value=%t}", v.Value)

	case *ast.StringLiteral:
		fmt.Fprintf(b, "{STRING value=\"%s\"}", escape(v.Value))

	case *ast.BinaryOp:
		b.WriteString("{BINOP left=")
		writeExpr(b, v.Left)
		b.WriteString(" right=")
		writeExpr(b, v.Right)
		fmt.Fprintf(b, " op='%s'}", v.Op)

	case *ast.UnaryOp:
		b.WriteString("{UNOP expr=")
		writeExpr(b, v.Operand)
		fmt.Fprintf(b, " op='%s'}", v.Op)

	case *ast.Comparison:
		b.WriteString("{CMP left=")
		writeExpr(b, v.Left)
		b.WriteString(" right=")
		writeExpr(b, v.Right)
		fmt.Fprintf(b, " op=%q}", v.Op)

	default:
		panic(fmt.Sprintf("printer: unhandled expression type %T", e))
	}
}

// escape renders s using the original tool's C-style escaping: the
// common control-character mnemonics, \" and \\, and \xNN for every
// other non-printable byte.
func escape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if c < 0x20 || c == 0x7f {
				fmt.Fprintf(&b, `\x%02x`, c)
			} else {
				b.WriteByte(c)
			}
		}
	}
	return b.String()
}
