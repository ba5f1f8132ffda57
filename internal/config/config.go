// Package config handles idlgen.toml project configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/lhaig/idlgen/internal/emit"
)

// FileName is the project file looked up by FindAndLoad.
const FileName = "idlgen.toml"

// Config represents an idlgen.toml project configuration.
type Config struct {
	Bundles []Bundle `toml:"bundle"`

	// Dir is the directory containing the idlgen.toml file (set at load time).
	Dir string `toml:"-"`
}

// Bundle is one generation run: a set of IDL inputs compiled together
// into one namespace.
type Bundle struct {
	Namespace    string   `toml:"namespace"`
	Inputs       []string `toml:"inputs"`
	Targets      []string `toml:"targets"`
	Output       string   `toml:"output"`
	APIMacro     string   `toml:"api-macro"`
	ImplHeader   string   `toml:"impl-header"`
	JavaPackage  string   `toml:"java-package"`
	JavaOutput   string   `toml:"java-output"`
	PythonOutput string   `toml:"python-output"`
	LibraryName  string   `toml:"library-name"`
	Strict       bool     `toml:"strict"`
}

// DefaultOutput is the output directory of a bundle that names none.
const DefaultOutput = "generated"

// Load parses the idlgen.toml file in dir.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return c, nil
}

// Parse decodes and validates configuration text. Keys the schema does
// not know are rejected.
func Parse(data []byte) (*Config, error) {
	var c Config
	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if len(c.Bundles) == 0 {
		return nil, fmt.Errorf("no [[bundle]] entries")
	}
	seen := make(map[string]int)
	for i := range c.Bundles {
		b := &c.Bundles[i]
		if b.Namespace == "" {
			return nil, fmt.Errorf("bundle %d: namespace is required", i+1)
		}
		if len(b.Inputs) == 0 {
			return nil, fmt.Errorf("bundle %s: inputs are required", b.Namespace)
		}
		if b.Output == "" {
			b.Output = DefaultOutput
		}
		key := b.Namespace + "\x00" + filepath.Clean(b.Output)
		if prev, dup := seen[key]; dup {
			return nil, fmt.Errorf("bundles %d and %d both generate %s into %s", prev, i+1, b.Namespace, b.Output)
		}
		seen[key] = i + 1
	}
	return &c, nil
}

// FindAndLoad walks up from startDir to find an idlgen.toml file,
// then loads and returns the configuration. Returns nil if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

func (c *Config) path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// InputPaths expands the inputs of b relative to the configuration
// directory. Glob patterns expand in sorted order; a pattern matching
// nothing is an error.
func (c *Config) InputPaths(b Bundle) ([]string, error) {
	var paths []string
	for _, in := range b.Inputs {
		pattern := c.path(in)
		if !strings.ContainsAny(in, "*?[") {
			paths = append(paths, pattern)
			continue
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bundle %s: bad input pattern %q: %w", b.Namespace, in, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("bundle %s: input pattern %q matches no files", b.Namespace, in)
		}
		paths = append(paths, matches...)
	}
	return paths, nil
}

// OutputDir returns the absolute output directory of b.
func (c *Config) OutputDir(b Bundle) string { return c.path(b.Output) }

// JavaDir returns the Java source root of b, empty for the default.
func (c *Config) JavaDir(b Bundle) string { return c.path(b.JavaOutput) }

// PythonDir returns the Python module directory of b, empty for the default.
func (c *Config) PythonDir(b Bundle) string { return c.path(b.PythonOutput) }

// Options returns the generation options of b.
func (b Bundle) Options() emit.Options {
	return emit.Options{
		Namespace:   b.Namespace,
		APIMacro:    b.APIMacro,
		ImplHeader:  b.ImplHeader,
		JavaPackage: b.JavaPackage,
		LibraryName: b.LibraryName,
	}
}
