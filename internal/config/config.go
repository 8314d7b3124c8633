// Package config loads clgen.toml, the generator settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"

	"clgen/internal/codegen"
	"clgen/internal/names"
	"clgen/internal/trace"
)

// FileName is the settings file looked up by Find.
const FileName = "clgen.toml"

// Config mirrors clgen.toml.
//
//	[codegen]
//	indent = 4          # spaces per level
//	indent_tabs = false # one tab instead of spaces
//	jobs = 0            # 0 = GOMAXPROCS
//
//	[calls.native]      # names OpenCL provides
//	"llvm.exp." = "exp"
//
//	[calls.shims]       # names a helper library must provide
//	"llvm.trap" = "clgen_trap"
//
//	[trace]
//	level = "phase"
//	format = "text"
//	output = "-"
type Config struct {
	Codegen CodegenConfig `toml:"codegen"`
	Calls   CallsConfig   `toml:"calls"`
	Trace   TraceConfig   `toml:"trace"`
}

type CodegenConfig struct {
	Indent *int `toml:"indent"`
	Tabs   bool `toml:"indent_tabs"`
	Jobs   int  `toml:"jobs"`
}

type CallsConfig struct {
	Native map[string]string `toml:"native"`
	Shims  map[string]string `toml:"shims"`
}

type TraceConfig struct {
	Level  string `toml:"level"`
	Mode   string `toml:"mode"`
	Format string `toml:"format"`
	Output string `toml:"output"`
}

// Default returns the settings used when no file is present.
func Default() Config {
	return Config{}
}

// Find walks from startDir up to the filesystem root looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load decodes and validates the file at path. Keys absent from the file
// keep their Default values.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if meta.IsDefined("codegen", "jobs") && cfg.Codegen.Jobs < 0 {
		return Config{}, fmt.Errorf("%s: [codegen].jobs must be >= 0", path)
	}
	if _, err := cfg.Indent(); err != nil {
		return Config{}, fmt.Errorf("%s: [codegen].indent: %w", path, err)
	}
	for _, table := range []struct {
		key     string
		entries map[string]string
	}{{"native", cfg.Calls.Native}, {"shims", cfg.Calls.Shims}} {
		for from, to := range table.entries {
			if strings.TrimSpace(from) == "" {
				return Config{}, fmt.Errorf("%s: [calls.%s] has an empty key", path, table.key)
			}
			if names.Sanitize(to) != to {
				return Config{}, fmt.Errorf("%s: [calls.%s].%q: %q is not a C identifier", path, table.key, from, to)
			}
		}
	}
	if meta.IsDefined("trace") {
		if _, err := cfg.TraceConfig(); err != nil {
			return Config{}, fmt.Errorf("%s: [trace]: %w", path, err)
		}
	}
	return cfg, nil
}

// Indent returns the body indent.
func (c Config) Indent() (string, error) {
	if c.Codegen.Tabs {
		if c.Codegen.Indent != nil {
			return "", fmt.Errorf("indent and indent_tabs are exclusive")
		}
		return "\t", nil
	}
	if c.Codegen.Indent == nil {
		return codegen.DefaultIndent, nil
	}
	if n := *c.Codegen.Indent; n < 1 || n > 16 {
		return "", fmt.Errorf("width %d out of range 1..16", n)
	}
	return strings.Repeat(" ", *c.Codegen.Indent), nil
}

// Jobs returns the worker bound, defaulting to GOMAXPROCS.
func (c Config) Jobs() int {
	if c.Codegen.Jobs > 0 {
		return c.Codegen.Jobs
	}
	return runtime.GOMAXPROCS(0)
}

// CallTable returns the default call table extended with [calls.native]
// and [calls.shims]. A key ending in "." matches by prefix.
func (c Config) CallTable() *codegen.CallTable {
	calls := codegen.DefaultCallTable()
	for from, to := range c.Calls.Native {
		calls.AddNative(from, to)
	}
	for from, to := range c.Calls.Shims {
		calls.AddShim(from, to)
	}
	return calls
}

// CodegenOptions assembles the options GenerateModule consumes.
func (c Config) CodegenOptions() (codegen.Options, error) {
	indent, err := c.Indent()
	if err != nil {
		return codegen.Options{}, err
	}
	return codegen.Options{Indent: indent, Jobs: c.Jobs(), Calls: c.CallTable()}, nil
}

// TraceConfig converts [trace] into a tracer configuration.
func (c Config) TraceConfig() (trace.Config, error) {
	level, err := trace.ParseLevel(c.Trace.Level)
	if err != nil {
		return trace.Config{}, err
	}
	mode, err := trace.ParseMode(c.Trace.Mode)
	if err != nil {
		return trace.Config{}, err
	}
	format, err := trace.ParseFormat(c.Trace.Format)
	if err != nil {
		return trace.Config{}, err
	}
	return trace.Config{Level: level, Mode: mode, Format: format, OutputPath: c.Trace.Output}, nil
}
