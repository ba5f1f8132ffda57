// Package module aggregates parsed IDL files into a dependency-resolved
// graph. It computes which types each file uses and defines, which other
// files it depends on, and a single symbol table over all declarations.
package module

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/lhaig/idlgen/internal/diagnostic"
	"github.com/lhaig/idlgen/internal/model"
)

var log = commonlog.GetLogger("idlgen.module")

// Graph is the resolved view of every file in a generation run. It is
// immutable once Resolve returns.
type Graph struct {
	files    []*model.File
	index    map[string]int
	used     map[string][]string
	defined  map[string][]string
	external map[string][]string
	deps     map[string][]string
	symbols  *SymbolTable
	order    []string
	owned    map[string]*model.File
	merged   *model.File
}

// Resolve builds the graph for files, given in input order. Diagnostics
// report unresolved or unsupported types, duplicate names and dependency
// cycles as errors; a type declared by more than one file is a warning and
// the first declaring file wins. The graph is returned even when errors
// are reported so that tooling can inspect what did resolve.
func Resolve(files []*model.File) (*Graph, *diagnostic.Diagnostics) {
	diags := diagnostic.New()
	g := &Graph{
		files:    files,
		index:    make(map[string]int, len(files)),
		used:     make(map[string][]string, len(files)),
		defined:  make(map[string][]string, len(files)),
		external: make(map[string][]string, len(files)),
		deps:     make(map[string][]string, len(files)),
		owned:    make(map[string]*model.File, len(files)),
		symbols:  NewSymbolTable(),
	}

	for i, f := range files {
		if _, dup := g.index[f.Name]; dup {
			diags.ErrorfInFile(f.Name, 0, 0, "file %q appears more than once in the input", f.Name)
			continue
		}
		g.index[f.Name] = i
	}

	g.defineSymbols(diags)

	uses := make(map[string][]typeUse, len(files))
	for _, f := range files {
		u := collectUses(f)
		uses[f.Name] = u
		g.used[f.Name] = usedTypes(u)
		g.defined[f.Name] = f.DefinedNames()
	}

	for _, f := range files {
		if _, ok := g.owned[f.Name]; !ok {
			g.owned[f.Name] = g.ownedView(f)
		}
		g.external[f.Name] = difference(g.used[f.Name], g.owned[f.Name].DefinedNames())
		g.deps[f.Name] = g.dependenciesOf(f.Name)
		if len(g.deps[f.Name]) > 0 {
			log.Debugf("%s depends on %s", f.Name, strings.Join(g.deps[f.Name], ", "))
		}
	}

	for _, f := range files {
		validateFile(f, uses[f.Name], g.symbols, diags)
	}

	order, err := g.topologicalSort()
	if err != nil {
		diags.Errorf(0, 0, "%s", err)
	} else {
		g.order = order
	}

	g.merged = g.merge()
	return g, diags
}

// defineSymbols enters every declaration into the symbol table
func (g *Graph) defineSymbols(diags *diagnostic.Diagnostics) {
	for _, f := range g.files {
		for _, sym := range fileSymbols(f) {
			owner, added := g.symbols.Define(sym)
			if added {
				continue
			}
			if owner.File == sym.File {
				diags.ErrorfInFile(sym.File, sym.Line, sym.Column,
					"%s %s redeclared (previous declaration at %d:%d)", sym.Kind, sym.Name, owner.Line, owner.Column)
				continue
			}
			diags.Add(diagnostic.Diagnostic{
				Severity: diagnostic.Warning,
				Message:  fmt.Sprintf("%s %s is also declared in %s; the declaration in %s is used", sym.Kind, sym.Name, owner.File, owner.File),
				File:     sym.File,
				Line:     sym.Line,
				Column:   sym.Column,
				Hint:     "declare each type in exactly one file",
			})
			log.Warningf("ambiguous type %s declared in %s and %s", sym.Name, owner.File, sym.File)
		}
	}
}

// dependenciesOf returns the files that declare the external types of
// file, in input order
func (g *Graph) dependenciesOf(file string) []string {
	owners := make(map[string]bool)
	for _, name := range g.external[file] {
		if sym := g.symbols.Lookup(name); sym != nil && sym.File != file {
			owners[sym.File] = true
		}
	}
	var deps []string
	for _, f := range g.files {
		if owners[f.Name] {
			deps = append(deps, f.Name)
		}
	}
	return deps
}

// topologicalSort returns file names with dependencies first. Files with
// no ordering constraint keep their input order.
func (g *Graph) topologicalSort() ([]string, error) {
	var sorted []string
	visiting := make(map[string]bool)
	visited := make(map[string]bool)

	var visit func(name string, stack []string) error
	visit = func(name string, stack []string) error {
		if visiting[name] {
			start := 0
			for i, s := range stack {
				if s == name {
					start = i
					break
				}
			}
			cycle := append(append([]string(nil), stack[start:]...), name)
			return fmt.Errorf("dependency cycle detected: %s", strings.Join(cycle, " -> "))
		}
		if visited[name] {
			return nil
		}
		visiting[name] = true
		stack = append(stack, name)
		for _, dep := range g.deps[name] {
			if err := visit(dep, stack); err != nil {
				return err
			}
		}
		visiting[name] = false
		visited[name] = true
		sorted = append(sorted, name)
		return nil
	}

	for _, f := range g.files {
		if err := visit(f.Name, nil); err != nil {
			return nil, err
		}
	}
	return sorted, nil
}

// ownedView returns f restricted to the declarations that own their
// name. A type also declared by an earlier file is left out.
func (g *Graph) ownedView(f *model.File) *model.File {
	v := &model.File{Name: f.Name}
	for i := range f.Enums {
		if sym := g.symbols.Lookup(f.Enums[i].Name); sym != nil && sym.Enum == &f.Enums[i] {
			v.Enums = append(v.Enums, f.Enums[i])
		}
	}
	for i := range f.Structs {
		if sym := g.symbols.Lookup(f.Structs[i].Name); sym != nil && sym.Struct == &f.Structs[i] {
			v.Structs = append(v.Structs, f.Structs[i])
		}
	}
	for i := range f.Callbacks {
		if sym := g.symbols.Lookup(f.Callbacks[i].Name); sym != nil && sym.Callback == &f.Callbacks[i] {
			v.Callbacks = append(v.Callbacks, f.Callbacks[i])
		}
	}
	for i := range f.Classes {
		if sym := g.symbols.Lookup(f.Classes[i].Name); sym != nil && sym.Class == &f.Classes[i] {
			v.Classes = append(v.Classes, f.Classes[i])
		}
	}
	return v
}

// merge concatenates the owned declarations of every file in input order
func (g *Graph) merge() *model.File {
	m := &model.File{Name: "merged"}
	for _, f := range g.files {
		v := g.owned[f.Name]
		if v == nil {
			continue
		}
		m.Enums = append(m.Enums, v.Enums...)
		m.Structs = append(m.Structs, v.Structs...)
		m.Callbacks = append(m.Callbacks, v.Callbacks...)
		m.Classes = append(m.Classes, v.Classes...)
	}
	return m
}

// Files returns the files in input order
func (g *Graph) Files() []*model.File {
	return g.files
}

// File returns the file with the given stem, or nil
func (g *Graph) File(name string) *model.File {
	if i, ok := g.index[name]; ok {
		return g.files[i]
	}
	return nil
}

// Owned returns file restricted to the declarations it owns, or nil for
// an unknown file. Backends emitting one artifact per file render this
// view so that a redeclared type is defined only by its owner.
func (g *Graph) Owned(file string) *model.File {
	return g.owned[file]
}

// Symbols returns the symbol table over all files
func (g *Graph) Symbols() *SymbolTable {
	return g.symbols
}

// UsedTypes returns the sorted non-primitive type names file references
func (g *Graph) UsedTypes(file string) []string {
	return g.used[file]
}

// DefinedTypes returns the names file declares, in declaration order
func (g *Graph) DefinedTypes(file string) []string {
	return g.defined[file]
}

// ExternalTypes returns the sorted names file uses but does not own
func (g *Graph) ExternalTypes(file string) []string {
	return g.external[file]
}

// Dependencies returns the files declaring the external types of file,
// in input order
func (g *Graph) Dependencies(file string) []string {
	return g.deps[file]
}

// Order returns file names with dependencies before dependents. It is nil
// when the dependency graph has a cycle.
func (g *Graph) Order() []string {
	return g.order
}

// Merged returns all declarations as one file for backends that emit a
// single shared artifact
func (g *Graph) Merged() *model.File {
	return g.merged
}

// Owner returns the stem of the file that declares name, or ""
func (g *Graph) Owner(name string) string {
	if sym := g.symbols.Lookup(name); sym != nil {
		return sym.File
	}
	return ""
}

func difference(a, b []string) []string {
	drop := make(map[string]bool, len(b))
	for _, s := range b {
		drop[s] = true
	}
	var out []string
	for _, s := range a {
		if !drop[s] {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
