// Package pipeline builds the rewrite.Manager pass pipeline shared by
// both CLI drivers (cmd/b2dump, cmd/b2c) from their overlapping flag
// surface (spec §6): template-basepath, per-pass enable/disable, and
// the optional config.Config file both drivers accept.
//
// This has no teacher counterpart by name — go-dws's cmd/dwscript/cmd
// wires its pipeline inline in each subcommand's RunE — but factoring
// the construction out here avoids the two drivers silently drifting
// on pass ordering or flag precedence, which the teacher's single-binary
// CLI never had to guard against.
package pipeline

import (
	"fmt"
	"sort"

	"github.com/mcuelenaere/b2/ast"
	"github.com/mcuelenaere/b2/config"
	"github.com/mcuelenaere/b2/parser"
	"github.com/mcuelenaere/b2/rewrite"
)

// Names lists every pass in pipeline order (spec §6).
var Names = []string{
	"resolve-includes-pass",
	"constant-folding-pass",
	"literal-print-to-raw-conversion-pass",
	"raw-block-coalescing-pass",
}

// Options collects the flag/config state that decides which passes
// run and how the include-resolution pass is configured.
type Options struct {
	// TemplateBasepath is the include search root.
	TemplateBasepath string
	// Enabled maps a pass name to whether it's been explicitly
	// enabled or disabled. A name absent from the map uses Default.
	Enabled map[string]bool
	// Default is the enablement state for passes not named in Enabled.
	Default bool
	// Files overrides include-resolution file I/O; nil means disk.
	Files rewrite.FileReader
}

// Merge layers cfg's per-pass overrides under opts (opts wins: flags
// beat the config file, per SPEC_FULL.md's "Configuration" section).
func (opts *Options) Merge(cfg *config.Config) {
	if cfg == nil {
		return
	}
	if opts.TemplateBasepath == "" {
		opts.TemplateBasepath = cfg.TemplateBasepath
	}
	for name, enabled := range cfg.Passes {
		if _, explicit := opts.Enabled[name]; !explicit {
			if opts.Enabled == nil {
				opts.Enabled = map[string]bool{}
			}
			opts.Enabled[name] = enabled
		}
	}
}

func (opts *Options) enabled(name string) bool {
	if v, ok := opts.Enabled[name]; ok {
		return v
	}
	return opts.Default
}

// Build constructs a rewrite.Manager containing every pass opts
// selects, in the fixed pipeline order Names defines.
func Build(opts *Options) *rewrite.Manager {
	files := opts.Files
	if files == nil {
		files = rewrite.OSFileReader{}
	}

	m := rewrite.New()
	if opts.enabled("resolve-includes-pass") {
		m.AddPass(rewrite.NewIncludeResolve(parser.New(), files, opts.TemplateBasepath))
	}
	if opts.enabled("constant-folding-pass") {
		m.AddPass(rewrite.ConstantFold{})
	}
	if opts.enabled("literal-print-to-raw-conversion-pass") {
		m.AddPass(rewrite.LiteralPrintToRaw{})
	}
	if opts.enabled("raw-block-coalescing-pass") {
		m.AddPass(rewrite.RawCoalesce{})
	}
	return m
}

// ValidateName returns an error if name is not a known pass, for
// flags that take a pass name as an argument (--enable-pass=<n>).
func ValidateName(name string) error {
	for _, n := range Names {
		if n == name {
			return nil
		}
	}
	return fmt.Errorf("pipeline: unknown pass %q (known passes: %s)", name, listNames())
}

func listNames() string {
	names := append([]string{}, Names...)
	sort.Strings(names)
	result := ""
	for i, n := range names {
		if i > 0 {
			result += ", "
		}
		result += n
	}
	return result
}

// Parse runs the reference parser over source, tagging errors with
// filename for diagnostics.
func Parse(source, filename string) (ast.Node, error) {
	return parser.New().Parse(source, filename)
}
