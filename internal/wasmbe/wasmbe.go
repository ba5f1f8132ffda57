// Package wasmbe generates Emscripten (embind) bindings for the whole
// module: a Wasm<Class> wrapper per class that owns the native object,
// plus class_, enum_ and value_object registrations.
package wasmbe

import (
	"strings"

	"github.com/tliron/commonlog"

	"github.com/lhaig/idlgen/internal/capibe"
	"github.com/lhaig/idlgen/internal/emit"
	"github.com/lhaig/idlgen/internal/model"
	"github.com/lhaig/idlgen/internal/module"
	"github.com/lhaig/idlgen/internal/typemap"
)

var log = commonlog.GetLogger("idlgen.wasmbe")

// FileName is the single bindings artifact for namespace ns
func FileName(ns string) string { return ns + "_wasm_bindings.cpp" }

// Generator emits the Emscripten bindings of a resolved module graph.
type Generator struct {
	graph   *module.Graph
	opts    emit.Options
	symbols *module.SymbolTable
}

// New creates a Generator for g
func New(g *module.Graph, opts emit.Options) *Generator {
	return &Generator{graph: g, opts: opts.WithDefaults(), symbols: g.Symbols()}
}

// Generate returns the bindings artifact keyed by file name
func Generate(g *module.Graph, opts emit.Options) (map[string]string, error) {
	gen := New(g, opts)
	return map[string]string{FileName(gen.opts.Namespace): gen.Bindings()}, nil
}

// wrapper is the embind-facing class of an IDL class
func wrapper(class string) string { return "Wasm" + class }

// Skipped reports whether m has no embind form. Raw native pointers
// cannot be handed to JavaScript with ownership, so methods returning a
// class by pointer are left out.
func Skipped(m *model.Method) bool {
	return m.ReturnPointer
}

// Bindings returns the bindings source of the merged module
func (g *Generator) Bindings() string {
	merged := g.graph.Merged()
	w := emit.NewWriter()
	w.Line(emit.Banner)
	w.Line("#include <emscripten/bind.h>")
	w.Line("#include <emscripten/val.h>")
	w.Blank()
	w.Linef("#include \"%s\"", g.opts.ImplHeader)
	for _, f := range g.graph.Files() {
		w.Linef("#include \"%s\"", capibe.HeaderName(f.Name))
	}
	w.Blank()
	w.Line("#include <cstdint>")
	w.Line("#include <memory>")
	w.Line("#include <string>")
	w.Line("#include <vector>")
	w.Blank()
	w.Line("using namespace emscripten;")
	w.Blank()

	for _, c := range merged.Classes {
		w.Linef("class %s;", wrapper(c.Name))
	}
	if len(merged.Classes) > 0 {
		w.Blank()
	}

	decl := &declEmitter{w: w, gen: g}
	emit.WalkClasses(decl, merged.Classes)
	def := &defEmitter{w: w, gen: g}
	emit.WalkClasses(def, merged.Classes)
	bind := &bindEmitter{w: w, gen: g}
	emit.WalkClasses(bind, merged.Classes)

	if len(merged.Enums) > 0 {
		w.Linef("EMSCRIPTEN_BINDINGS(%s_enums) {", g.opts.Namespace)
		w.Indent()
		for _, e := range merged.Enums {
			w.Linef("enum_<%s>(\"%s\")", e.Name, e.Name)
			w.Indent()
			for _, v := range e.Values {
				w.Linef(".value(\"%s\", %s_%s)", v.Name, e.Name, v.Name)
			}
			w.Dedent()
			w.Line(";")
		}
		w.Dedent()
		w.Line("}")
		w.Blank()
	}

	if len(merged.Structs) > 0 {
		w.Linef("EMSCRIPTEN_BINDINGS(%s_structs) {", g.opts.Namespace)
		w.Indent()
		for _, s := range merged.Structs {
			w.Linef("value_object<%s>(\"%s\")", s.Name, s.Name)
			w.Indent()
			for _, m := range s.Members {
				w.Linef(".field(\"%s\", &%s::%s)", m.Name, s.Name, m.Name)
			}
			w.Dedent()
			w.Line(";")
		}
		w.Dedent()
		w.Line("}")
		w.Blank()
	}

	log.Debugf("generated wasm bindings for %d classes", len(merged.Classes))
	return w.String()
}

func (g *Generator) native(class string) string {
	return g.opts.Namespace + "::" + class
}

// param renders a wrapper parameter. Byte buffers and callbacks arrive
// as JavaScript values; structs arrive by value.
func (g *Generator) param(p model.Param) string {
	kind := g.symbols.Kind(p.Type)
	switch {
	case p.Pointer && p.Type == "uint8_t", kind == model.KindCallback:
		return "val " + p.Name
	case p.Type == "string":
		return "const std::string& " + p.Name
	case kind == model.KindClass && p.Pointer:
		return wrapper(p.Type) + "* " + p.Name
	case kind == model.KindClass:
		return "const " + wrapper(p.Type) + "& " + p.Name
	}
	return typemap.Embind.Map(p.Type) + " " + p.Name
}

func (g *Generator) params(params []model.Param) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, g.param(p))
	}
	return strings.Join(parts, ", ")
}

// arg converts a wrapper argument to what the native method takes
func (g *Generator) arg(p model.Param) string {
	kind := g.symbols.Kind(p.Type)
	switch {
	case p.Pointer && p.Type == "uint8_t":
		return p.Name + "Vec.data()"
	case kind == model.KindCallback:
		return p.Name + "Wrapper"
	case kind == model.KindClass && p.Pointer:
		return p.Name + " ? " + p.Name + "->get() : nullptr"
	case kind == model.KindClass:
		return "*" + p.Name + ".get()"
	case kind == model.KindStruct && p.Pointer:
		return "&" + p.Name
	}
	return p.Name
}

func (g *Generator) args(params []model.Param) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, g.arg(p))
	}
	return strings.Join(parts, ", ")
}

// returnType is the wrapper return type of m
func returnType(m *model.Method) string {
	return typemap.Embind.Map(m.ReturnType)
}

// needsRawPointers reports whether embind must be told to accept raw
// pointer arguments for m
func (g *Generator) needsRawPointers(params []model.Param) bool {
	for _, p := range params {
		if p.Pointer && g.symbols.IsClass(p.Type) {
			return true
		}
	}
	return false
}
