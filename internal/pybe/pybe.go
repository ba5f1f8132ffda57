// Package pybe generates a Python module that drives the C ABI of the
// whole module through ctypes.
package pybe

import (
	"strings"

	"github.com/tliron/commonlog"

	"github.com/lhaig/idlgen/internal/emit"
	"github.com/lhaig/idlgen/internal/model"
	"github.com/lhaig/idlgen/internal/module"
)

var log = commonlog.GetLogger("idlgen.pybe")

// FileName is the generated module for namespace ns
func FileName(ns string) string { return ns + ".py" }

// Generator emits the ctypes module of a resolved module graph.
type Generator struct {
	graph   *module.Graph
	opts    emit.Options
	symbols *module.SymbolTable
	merged  *model.File
}

// New creates a Generator for g
func New(g *module.Graph, opts emit.Options) *Generator {
	return &Generator{graph: g, opts: opts.WithDefaults(), symbols: g.Symbols(), merged: g.Merged()}
}

// Generate returns the single module artifact.
func Generate(g *module.Graph, opts emit.Options) (map[string]string, error) {
	gen := New(g, opts)
	name := FileName(gen.opts.Namespace)
	log.Debugf("generating %s for library %s", name, gen.opts.LibraryName)
	return map[string]string{name: gen.Module()}, nil
}

// Module renders the complete Python source.
func (g *Generator) Module() string {
	w := emit.NewWriter()
	w.Line(`"""`)
	w.Line(strings.TrimPrefix(emit.Banner, "// "))
	w.Blank()
	w.Linef("ctypes bindings for the %s library.", g.opts.Namespace)
	w.Line(`"""`)
	w.Blank()
	w.Line("from __future__ import annotations")
	w.Blank()
	w.Lines("import ctypes", "import os", "import sys")
	w.Line("from ctypes import (")
	w.Line("    CFUNCTYPE, POINTER, Structure,")
	w.Line("    c_char_p, c_double, c_float, c_int, c_void_p,")
	w.Line("    c_int8, c_int16, c_int32, c_int64,")
	w.Line("    c_uint8, c_uint16, c_uint32, c_uint64,")
	w.Line(")")
	w.Line("from enum import IntEnum")
	w.Line("from typing import Callable, List, Optional")
	w.Blank()
	g.exports(w)
	g.runtime(w)
	g.enums(w)
	g.structs(w)
	g.callbacks(w)
	g.results(w)
	g.prototypes(w)
	for i := range g.merged.Classes {
		g.class(w, &g.merged.Classes[i])
	}
	return w.String()
}

func (g *Generator) exports(w *emit.Writer) {
	names := make([]string, 0, 8)
	for _, n := range g.merged.DefinedNames() {
		names = append(names, `"`+n+`"`)
	}
	if len(names) == 0 {
		w.Line("__all__ = []")
	} else {
		w.Line("__all__ = [")
		for _, n := range names {
			w.Linef("    %s,", n)
		}
		w.Line("]")
	}
	w.Blank()
	w.Blank()
}

// runtime writes the library loader and the conversion helpers shared by
// the wrappers.
func (g *Generator) runtime(w *emit.Writer) {
	lib := g.opts.LibraryName
	w.Line("def _load_library():")
	w.Indent()
	w.Linef("override = os.environ.get(\"%s_LIBRARY\")", strings.ToUpper(g.opts.Namespace))
	w.Line("if override:")
	w.Line("    return ctypes.CDLL(override)")
	w.Line("if sys.platform == \"win32\":")
	w.Linef("    name = \"%s.dll\"", lib)
	w.Line("elif sys.platform == \"darwin\":")
	w.Linef("    name = \"lib%s.dylib\"", lib)
	w.Line("else:")
	w.Linef("    name = \"lib%s.so\"", lib)
	w.Line("here = os.path.dirname(os.path.abspath(__file__))")
	w.Line("for directory in (here, os.getcwd()):")
	w.Line("    candidate = os.path.join(directory, name)")
	w.Line("    if os.path.exists(candidate):")
	w.Line("        return ctypes.CDLL(candidate)")
	w.Line("return ctypes.CDLL(name)")
	w.Dedent()
	w.Blank()
	w.Blank()
	w.Line("_lib = _load_library()")
	w.Blank()
	w.Blank()
	w.Line("def _encode(value):")
	w.Line("    return value.encode(\"utf-8\") if value is not None else None")
	w.Blank()
	w.Blank()
	w.Line("def _decode(value):")
	w.Line("    return value.decode(\"utf-8\") if value is not None else None")
	w.Blank()
	w.Blank()
	w.Line("def _buffer(data):")
	w.Line("    if data is None:")
	w.Line("        return None")
	w.Line("    raw = bytes(data)")
	w.Line("    return (c_uint8 * len(raw)).from_buffer_copy(raw)")
	w.Blank()
	w.Blank()
	w.Line("def _collect(result, count, data, free, convert=None):")
	w.Indent()
	w.Line("if not result:")
	w.Line("    return []")
	w.Line("try:")
	w.Line("    n = count(result)")
	w.Line("    items = data(result)")
	w.Line("    if n <= 0 or not items:")
	w.Line("        return []")
	w.Line("    if convert is None:")
	w.Line("        return [items[i] for i in range(n)]")
	w.Line("    return [convert(items[i]) for i in range(n)]")
	w.Line("finally:")
	w.Line("    free(result)")
	w.Dedent()
	w.Blank()
	w.Blank()
}

func (g *Generator) enums(w *emit.Writer) {
	for _, e := range g.merged.Enums {
		w.Linef("class %s(IntEnum):", e.Name)
		w.Indent()
		if len(e.Values) == 0 {
			w.Line("pass")
		}
		for _, v := range e.Values {
			w.Linef("%s = %d", v.Name, v.Value)
		}
		w.Dedent()
		w.Blank()
		w.Blank()
	}
}

func (g *Generator) structs(w *emit.Writer) {
	for _, s := range g.merged.Structs {
		w.Linef("class %s(Structure):", s.Name)
		w.Indent()
		if len(s.Members) == 0 {
			w.Line("_fields_ = []")
		} else {
			w.Line("_fields_ = [")
			for _, m := range s.Members {
				w.Linef("    (\"%s\", %s),", m.Name, g.ctype(m.Type))
			}
			w.Line("]")
		}
		w.Blank()
		fields := make([]string, 0, len(s.Members))
		for _, m := range s.Members {
			fields = append(fields, m.Name+"={self."+m.Name+"!r}")
		}
		w.Line("def __repr__(self):")
		w.Linef("    return f\"%s(%s)\"", s.Name, strings.Join(fields, ", "))
		w.Dedent()
		w.Blank()
		w.Blank()
	}
}

// callbacks writes the CFUNCTYPE of every callback and a factory wrapping
// a Python callable into it.
func (g *Generator) callbacks(w *emit.Writer) {
	for _, cb := range g.merged.Callbacks {
		types := []string{g.ctype(cb.ReturnType)}
		for _, p := range cb.Params {
			types = append(types, g.callbackCtype(p))
		}
		w.Linef("%s = CFUNCTYPE(%s)", cb.Name, strings.Join(types, ", "))
		w.Blank()
		w.Blank()

		names := make([]string, 0, len(cb.Params))
		args := make([]string, 0, len(cb.Params))
		for _, p := range cb.Params {
			names = append(names, p.Name)
			args = append(args, g.fromC(p.Name, p.Type, g.structPointer(p)))
		}
		call := "fn(" + strings.Join(args, ", ") + ")"
		w.Linef("def %s(fn):", wrapCallback(cb.Name))
		w.Indent()
		w.Linef("def trampoline(%s):", strings.Join(names, ", "))
		w.Indent()
		switch {
		case cb.ReturnType == "void":
			w.Line(call)
		case cb.ReturnType == "bool":
			w.Linef("return 1 if %s else 0", call)
		case g.symbols.IsEnum(cb.ReturnType):
			w.Linef("return int(%s)", call)
		default:
			w.Linef("return %s", call)
		}
		w.Dedent()
		w.Linef("return %s(trampoline)", cb.Name)
		w.Dedent()
		w.Blank()
		w.Blank()
	}
}

func wrapCallback(name string) string { return "_wrap_" + name }

// results declares the opaque containers returned for vectors.
func (g *Generator) results(w *emit.Writer) {
	for i := range g.merged.Classes {
		c := &g.merged.Classes[i]
		for _, elem := range emit.ResultElems(c) {
			w.Linef("class %s(Structure):", emit.CResultName(c.Name, elem))
			w.Line("    pass")
			w.Blank()
			w.Blank()
		}
	}
}

// prototypes sets restype and argtypes of every C ABI function.
func (g *Generator) prototypes(w *emit.Writer) {
	proto := func(sym, restype string, argtypes ...string) {
		w.Linef("_lib.%s.restype = %s", sym, restype)
		w.Linef("_lib.%s.argtypes = [%s]", sym, strings.Join(argtypes, ", "))
	}
	for i := range g.merged.Classes {
		c := &g.merged.Classes[i]
		if ctor := c.Constructor(); ctor != nil {
			proto(emit.CreateSymbol(c.Name), "c_void_p", g.argtypes(ctor.Params)...)
		}
		proto(emit.DestroySymbol(c.Name), "None", "c_void_p")
		for _, m := range c.Operations() {
			args := append([]string{"c_void_p"}, g.argtypes(m.Params)...)
			proto(emit.MethodSymbol(c.Name, m.Name), g.restype(&m), args...)
		}
		for _, elem := range emit.ResultElems(c) {
			result := emit.CResultName(c.Name, elem)
			proto(emit.ResultCountSymbol(result), "c_int", "c_void_p")
			proto(emit.ResultDataSymbol(result), "POINTER("+g.ctype(elem)+")", "c_void_p")
			proto(emit.ResultFreeSymbol(result), "None", "c_void_p")
		}
		for _, attr := range c.Attributes {
			proto(emit.GetterSymbol(c.Name, attr), g.ctype(attr.Type), "c_void_p")
		}
		w.Blank()
	}
	w.Blank()
}
