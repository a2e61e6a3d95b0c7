// Package errs defines the typed failures the b2 compiler can raise
// (spec §7), grounded in the diagnostic-formatting style of
// github.com/cwbudde/go-dws's internal/errors package: a position, a
// message, and a Format() suitable for stderr (one line, plus the source
// line and a caret when the source text is known).
package errs

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mcuelenaere/b2/lexer"
)

var kindCaser = cases.Title(language.English, cases.NoLower)

// FormatKind title-cases a Kinded error's Kind() for the CLI drivers'
// one-line "<Kind>: <message>" stderr format (spec §7).
func FormatKind(kind string) string {
	return kindCaser.String(kind)
}

// Diagnostic is embedded by every error kind below; it carries the
// source context needed to print a caret-annotated message.
type Diagnostic struct {
	Pos     lexer.Position
	Message string
	Source  string // full source text, for caret rendering; may be empty
	File    string
}

// Format renders "<file>:<line>:<col>: <message>" plus, when Source is
// available, the offending line and a caret underneath it.
func (d Diagnostic) Format() string {
	var sb strings.Builder
	if d.File != "" {
		fmt.Fprintf(&sb, "%s:%s: %s", d.File, d.Pos, d.Message)
	} else {
		fmt.Fprintf(&sb, "%s: %s", d.Pos, d.Message)
	}

	line := sourceLine(d.Source, d.Pos.Line)
	if line == "" {
		return sb.String()
	}
	sb.WriteByte('\n')
	prefix := fmt.Sprintf("%4d | ", d.Pos.Line)
	sb.WriteString(prefix)
	sb.WriteString(line)
	sb.WriteByte('\n')
	sb.WriteString(strings.Repeat(" ", len(prefix)+d.Pos.Column-1))
	sb.WriteByte('^')
	return sb.String()
}

func sourceLine(source string, n int) string {
	if source == "" || n < 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if n > len(lines) {
		return ""
	}
	return lines[n-1]
}

// SyntaxError is raised by the parser (spec §7).
type SyntaxError struct {
	Diagnostic
}

func (e *SyntaxError) Error() string { return "SyntaxError: " + e.Diagnostic.Format() }
func (e *SyntaxError) Kind() string  { return "SyntaxError" }
func (e *SyntaxError) Unwrap() error { return nil }

// MissingVariableReferenceError is raised by include resolution (§4.6
// step 4, §7) when a free variable inside an included template has no
// corresponding entry in the include's bindings map.
type MissingVariableReferenceError struct {
	Diagnostic
	VariableName    string
	IncludeFileName string
}

func (e *MissingVariableReferenceError) Error() string {
	return fmt.Sprintf("MissingVariableReference: variable %q has no binding while including %q (%s)",
		e.VariableName, e.IncludeFileName, e.Diagnostic.Format())
}
func (e *MissingVariableReferenceError) Kind() string { return "MissingVariableReference" }

// DivisionByZeroError is raised by constant folding on an integer
// division or modulus whose right operand folds to zero (spec §4.3, §7).
type DivisionByZeroError struct {
	Diagnostic
}

func (e *DivisionByZeroError) Error() string {
	return "DivisionByZero: " + e.Diagnostic.Format()
}
func (e *DivisionByZeroError) Kind() string { return "DivisionByZero" }

// IOError wraps a file open/read failure during include resolution
// (spec §7).
type IOError struct {
	Diagnostic
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("IOError: %s (%s)", e.Diagnostic.Format(), e.Err)
}
func (e *IOError) Kind() string  { return "IOError" }
func (e *IOError) Unwrap() error { return e.Err }

// CyclicIncludeError is raised by include resolution when a template
// (transitively) includes itself (spec §4.6 "Cycle handling", §9 open
// question 3 — resolved here via a visited-set, recommendation (b)).
type CyclicIncludeError struct {
	Diagnostic
	Cycle []string
}

func (e *CyclicIncludeError) Error() string {
	return fmt.Sprintf("CyclicInclude: include cycle %s (%s)",
		strings.Join(e.Cycle, " -> "), e.Diagnostic.Format())
}
func (e *CyclicIncludeError) Kind() string { return "CyclicInclude" }

// UnsupportedOperationError is raised by a backend that cannot handle
// a node it was asked to lower (spec §4.7, §7) — in practice an
// Include node reaching a backend before the include-resolution pass
// has run.
type UnsupportedOperationError struct {
	Diagnostic
	Operation string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("UnsupportedOperation: %s (%s)", e.Operation, e.Diagnostic.Format())
}
func (e *UnsupportedOperationError) Kind() string { return "UnsupportedOperation" }

// LinkingError is raised by the native-codegen backend when emitted
// code cannot be linked against the host's binding surface (spec §7).
type LinkingError struct {
	Diagnostic
	Symbol string
}

func (e *LinkingError) Error() string {
	return fmt.Sprintf("LinkingError: unresolved symbol %q (%s)", e.Symbol, e.Diagnostic.Format())
}
func (e *LinkingError) Kind() string { return "LinkingError" }

// VerificationError is raised by the native-codegen backend when the
// generated code fails a well-formedness check before being handed to
// the host (spec §7).
type VerificationError struct {
	Diagnostic
}

func (e *VerificationError) Error() string {
	return "VerificationError: " + e.Diagnostic.Format()
}
func (e *VerificationError) Kind() string { return "VerificationError" }

// Kinded is implemented by every error type above; the CLI drivers use
// it to print the "<kind>: <message>" one-liner required by §7.
type Kinded interface {
	error
	Kind() string
}
