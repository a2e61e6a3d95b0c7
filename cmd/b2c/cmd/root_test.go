package cmd

import (
	"bytes"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w
	fn()
	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func writeTemplate(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "template.b2")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func resetFlags() {
	enablePass = nil
	disablePass = nil
	listPasses = false
	templateBasepath = "."
	enableUndefinedCheck = false
	configPath = ""
	pkgName = "main"
	funcName = "Render"
	if f := rootCmd.Flags().Lookup("enable-undefined-check"); f != nil {
		f.Changed = false
	}
}

// assertValidGo parses src as a Go source file without invoking the Go
// toolchain (this is an AST parse, not a compile), confirming the
// emitted renderer is at least syntactically well-formed.
func assertValidGo(t *testing.T, src string) {
	t.Helper()
	fset := token.NewFileSet()
	if _, err := parser.ParseFile(fset, "generated.go", src, 0); err != nil {
		t.Fatalf("emitted source does not parse: %v\n---\n%s", err, src)
	}
}

func TestRunCompileEmitsValidGo(t *testing.T) {
	resetFlags()
	path := writeTemplate(t, `abc{{ 1 + 2 * 3 }}def`)

	output := captureStdout(t, func() {
		if err := runCompile(rootCmd, []string{path}); err != nil {
			t.Fatalf("runCompile failed: %v", err)
		}
	})

	assertValidGo(t, output)
	if !strings.Contains(output, "func Render(") {
		t.Fatalf("got %q, want the default Render func name", output)
	}
}

func TestRunCompileListPasses(t *testing.T) {
	resetFlags()
	listPasses = true

	output := captureStdout(t, func() {
		if err := runCompile(rootCmd, nil); err != nil {
			t.Fatalf("runCompile failed: %v", err)
		}
	})

	for _, name := range []string{"resolve-includes-pass", "constant-folding-pass",
		"literal-print-to-raw-conversion-pass", "raw-block-coalescing-pass"} {
		if !strings.Contains(output, name) {
			t.Fatalf("got %q, want it to list pass %q", output, name)
		}
	}
}

func TestRunCompileUnknownPassNameErrors(t *testing.T) {
	resetFlags()
	enablePass = []string{"not-a-real-pass"}
	path := writeTemplate(t, `{{ 1 }}`)

	if err := runCompile(rootCmd, []string{path}); err == nil {
		t.Fatal("expected an unknown-pass-name error")
	}
}

func TestRunCompileCustomPkgAndFuncNames(t *testing.T) {
	resetFlags()
	pkgName = "renderers"
	funcName = "RenderHome"
	path := writeTemplate(t, `hi`)

	output := captureStdout(t, func() {
		if err := runCompile(rootCmd, []string{path}); err != nil {
			t.Fatalf("runCompile failed: %v", err)
		}
	})

	assertValidGo(t, output)
	if !strings.Contains(output, "package renderers") || !strings.Contains(output, "func RenderHome(") {
		t.Fatalf("got %q, want package renderers / func RenderHome", output)
	}
}

func TestRunCompileUndefinedCheckDropsFmtImport(t *testing.T) {
	resetFlags()
	// Set (not just assign) the flag so cmd.Flags().Changed sees it as
	// explicit, matching how a real CLI invocation would mark it.
	if err := rootCmd.Flags().Set("enable-undefined-check", "true"); err != nil {
		t.Fatal(err)
	}
	path := writeTemplate(t, `{{ x }}`)

	output := captureStdout(t, func() {
		if err := runCompile(rootCmd, []string{path}); err != nil {
			t.Fatalf("runCompile failed: %v", err)
		}
	})

	assertValidGo(t, output)
	if strings.Contains(output, `"fmt"`) {
		t.Fatalf("got %q, want no fmt import when undefined-check is enabled", output)
	}
}

func TestRunCompileDivisionByZeroFails(t *testing.T) {
	resetFlags()
	path := writeTemplate(t, `{{ 1 / 0 }}`)

	if err := runCompile(rootCmd, []string{path}); err == nil {
		t.Fatal("expected division-by-zero to fail compilation")
	}
}

func TestRunCompileRequiresExactlyOneArg(t *testing.T) {
	resetFlags()
	if err := runCompile(rootCmd, nil); err == nil {
		t.Fatal("expected an error when no template argument is given")
	}
}
