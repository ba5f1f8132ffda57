// Package backend registers the binding generators by target name.
package backend

import (
	"fmt"
	"sort"
	"sync"

	"github.com/lhaig/idlgen/internal/emit"
	"github.com/lhaig/idlgen/internal/module"
)

// Backend is the interface that all binding generators implement.
type Backend interface {
	// Name returns the target name (e.g., "capi", "client", "wasm")
	Name() string
	// Generate produces the target's artifacts from a resolved module
	// graph, keyed by file name relative to the output directory.
	Generate(g *module.Graph, opts emit.Options) (map[string]string, error)
}

// GenerateFunc adapts a generator function to the Backend interface.
type GenerateFunc func(g *module.Graph, opts emit.Options) (map[string]string, error)

type funcBackend struct {
	name string
	fn   GenerateFunc
}

func (b funcBackend) Name() string { return b.name }

func (b funcBackend) Generate(g *module.Graph, opts emit.Options) (map[string]string, error) {
	return b.fn(g, opts)
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Backend{}
)

// Register adds a backend under its name. Registering a name twice panics.
func Register(b Backend) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[b.Name()]; exists {
		panic(fmt.Sprintf("backend %q already registered", b.Name()))
	}
	registry[b.Name()] = b
}

// RegisterFunc registers fn as the backend called name
func RegisterFunc(name string, fn GenerateFunc) {
	Register(funcBackend{name: name, fn: fn})
}

// Get returns the named backend.
func Get(name string) (Backend, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	b, ok := registry[name]
	return b, ok
}

// All returns the names of all registered backends, sorted.
func All() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Target names.
const (
	CAPI   = "capi"
	Client = "client"
	Wasm   = "wasm"
	JNI    = "jni"
	Python = "python"
)

// DefaultTargets are generated when no targets are requested.
var DefaultTargets = []string{CAPI, Client, Wasm}

// Lookup resolves target names to backends in the given order, rejecting
// unknown and duplicate names.
func Lookup(names []string) ([]Backend, error) {
	seen := make(map[string]bool, len(names))
	out := make([]Backend, 0, len(names))
	for _, name := range names {
		if seen[name] {
			return nil, fmt.Errorf("target %q requested twice", name)
		}
		seen[name] = true
		b, ok := Get(name)
		if !ok {
			return nil, fmt.Errorf("unknown target %q (available: %v)", name, All())
		}
		out = append(out, b)
	}
	return out, nil
}
