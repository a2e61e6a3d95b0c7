package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kr/pretty"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "b2.yaml")
	contents := `
template_basepath: ./templates
enable_undefined_check: true
passes:
  constant-folding-pass: false
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := &Config{
		TemplateBasepath:     "./templates",
		EnableUndefinedCheck: true,
		Passes:               map[string]bool{"constant-folding-pass": false},
	}
	if diff := pretty.Diff(want, cfg); len(diff) > 0 {
		t.Errorf("Load(%s) differs from expected config:\n%s", path, pretty.Sprint(diff))
	}

	if cfg.PassEnabled("constant-folding-pass", true) {
		t.Error("PassEnabled(constant-folding-pass) overridden to false in file, got true")
	}
	if !cfg.PassEnabled("raw-block-coalescing-pass", true) {
		t.Error("PassEnabled(raw-block-coalescing-pass) not overridden, want driver default true")
	}
}

func TestLoadOptionalEmptyPath(t *testing.T) {
	cfg, err := LoadOptional("")
	if err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if !cfg.PassEnabled("anything", true) {
		t.Error("empty Config should never override a default")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
