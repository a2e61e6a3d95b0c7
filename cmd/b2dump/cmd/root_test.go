package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// captureStdout runs fn with os.Stdout redirected to a pipe and
// returns everything written to it.
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
	enableAllPasses = true
	disableAllPasses = false
	for _, name := range []string{"resolve-includes-pass", "constant-folding-pass",
		"literal-print-to-raw-conversion-pass", "raw-block-coalescing-pass"} {
		*enableFlags[name] = false
		*disableFlags[name] = false
	}
	templateBasepath = "."
	configPath = ""
	format = "text"
}

func TestRunDumpDefaultTextFormat(t *testing.T) {
	resetFlags()
	path := writeTemplate(t, `abc{{ 1 + 2 * 3 }}def`)

	output := captureStdout(t, func() {
		if err := runDump(rootCmd, []string{path}); err != nil {
			t.Fatalf("runDump failed: %v", err)
		}
	})

	if !strings.Contains(output, `[RAW] "abc7def"`) {
		t.Fatalf("got %q, want it to contain [RAW] \"abc7def\"", output)
	}
}

func TestRunDumpJSONFormat(t *testing.T) {
	resetFlags()
	format = "json"
	path := writeTemplate(t, `{{ 1 + 1 }}`)

	output := captureStdout(t, func() {
		if err := runDump(rootCmd, []string{path}); err != nil {
			t.Fatalf("runDump failed: %v", err)
		}
	})

	if !strings.Contains(output, `"kind"`) {
		t.Fatalf("got %q, want a JSON document with a kind field", output)
	}
}

func TestRunDumpDisableAllPassesLeavesPrintNode(t *testing.T) {
	resetFlags()
	disableAllPasses = true
	path := writeTemplate(t, `{{ 1 + 1 }}`)

	output := captureStdout(t, func() {
		if err := runDump(rootCmd, []string{path}); err != nil {
			t.Fatalf("runDump failed: %v", err)
		}
	})

	if !strings.Contains(output, "[PRINT_BLOCK") || strings.Contains(output, "[RAW]") {
		t.Fatalf("got %q, want the unfolded Print node (no passes ran)", output)
	}
}

func TestRunDumpDivisionByZeroFails(t *testing.T) {
	resetFlags()
	path := writeTemplate(t, `{{ 1 / 0 }}`)

	err := runDump(rootCmd, []string{path})
	if err == nil {
		t.Fatal("expected runDump to fail on division by zero")
	}
}

func TestRunDumpMissingFileIsReadError(t *testing.T) {
	resetFlags()
	err := runDump(rootCmd, []string{filepath.Join(t.TempDir(), "missing.b2")})
	if err == nil {
		t.Fatal("expected a file-read error")
	}
}
