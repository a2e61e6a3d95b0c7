// Package config loads the optional `--config <file>.yaml` file shared
// by both CLI drivers (cmd/b2dump, cmd/b2c). The teacher itself has no
// config-file layer — everything is cobra flags — so this package has
// no direct teacher counterpart; it exists purely to give the pack's
// goccy/go-yaml dependency a home, per SPEC_FULL.md's AMBIENT STACK
// "Configuration" section. Flags still win: a driver loads Config first,
// then lets any explicitly-set flag override the corresponding field.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Config is the on-disk shape of a --config file. Every field mirrors
// one of the flags §6 defines on the two drivers; fields left at their
// zero value simply don't override the flag default.
type Config struct {
	// TemplateBasepath is the include-resolution search root
	// (--template-basepath on both drivers; -t on b2dump).
	TemplateBasepath string `yaml:"template_basepath"`

	// EnableUndefinedCheck mirrors --enable-undefined-check (b2c only).
	EnableUndefinedCheck bool `yaml:"enable_undefined_check"`

	// Passes overrides individual pass enable/disable state, keyed by
	// pass name (resolve-includes-pass, constant-folding-pass,
	// literal-print-to-raw-conversion-pass, raw-block-coalescing-pass).
	// Absent from the map means "use the driver default".
	Passes map[string]bool `yaml:"passes"`
}

// Load reads and parses a YAML config file. A missing path is not an
// error condition callers need to special-case themselves: use
// LoadOptional instead when the flag is optional.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadOptional returns an empty Config when path is empty, so drivers
// can call this unconditionally whether or not --config was passed.
func LoadOptional(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}
	return Load(path)
}

// PassEnabled reports whether pass is enabled once cfg is applied over
// the driver's own default. An absent entry in cfg.Passes leaves def untouched.
func (cfg *Config) PassEnabled(pass string, def bool) bool {
	if cfg == nil {
		return def
	}
	if v, ok := cfg.Passes[pass]; ok {
		return v
	}
	return def
}
