// Package capibe generates the stable C ABI over the native C++ classes:
// one header and one implementation per IDL file, plus the shared export
// macro header.
package capibe

import (
	"strings"

	"github.com/tliron/commonlog"

	"github.com/lhaig/idlgen/internal/emit"
	"github.com/lhaig/idlgen/internal/model"
	"github.com/lhaig/idlgen/internal/module"
	"github.com/lhaig/idlgen/internal/typemap"
)

var log = commonlog.GetLogger("idlgen.capibe")

// HeaderName is the C ABI header generated for an IDL file
func HeaderName(stem string) string { return stem + "_c_api.h" }

// ImplName is the C ABI implementation generated for an IDL file
func ImplName(stem string) string { return stem + "_c_api.cpp" }

// Generator emits the C ABI artifacts of a resolved module graph.
type Generator struct {
	graph *module.Graph
	opts  emit.Options
	types Types
}

// New creates a Generator for g
func New(g *module.Graph, opts emit.Options) *Generator {
	return &Generator{
		graph: g,
		opts:  opts.WithDefaults(),
		types: NewTypes(g.Symbols()),
	}
}

// Generate returns every C ABI artifact keyed by file name
func Generate(g *module.Graph, opts emit.Options) (map[string]string, error) {
	gen := New(g, opts)
	out := make(map[string]string)
	for _, file := range g.Files() {
		f := g.Owned(file.Name)
		out[HeaderName(f.Name)] = gen.Header(f)
		out[ImplName(f.Name)] = gen.Impl(f)
		log.Debugf("generated C ABI for %s", f.Name)
	}
	out[gen.opts.ExportHeader()] = ExportHeader(gen.opts)
	return out, nil
}

// ExportHeader returns the header defining the API macro. Building the
// library with the export macro defined selects dllexport on Windows.
func ExportHeader(opts emit.Options) string {
	opts = opts.WithDefaults()
	guard := strings.ToUpper(opts.Namespace) + "_EXPORT_H"
	w := emit.NewWriter()
	w.Line(emit.Banner)
	w.Linef("#ifndef %s", guard)
	w.Linef("#define %s", guard)
	w.Blank()
	w.Line("#ifdef _WIN32")
	w.Indent()
	w.Linef("#ifdef %s", opts.ExportMacro())
	w.Indent()
	w.Linef("#define %s __declspec(dllexport)", opts.APIMacro)
	w.Dedent()
	w.Line("#else")
	w.Indent()
	w.Linef("#define %s __declspec(dllimport)", opts.APIMacro)
	w.Dedent()
	w.Line("#endif")
	w.Dedent()
	w.Line("#else")
	w.Indent()
	w.Linef("#define %s __attribute__((visibility(\"default\")))", opts.APIMacro)
	w.Dedent()
	w.Line("#endif")
	w.Blank()
	w.Linef("#endif // %s", guard)
	return w.String()
}

// Header returns the C header of f
func (g *Generator) Header(f *model.File) string {
	guard := strings.ToUpper(f.Name) + "_C_API_H"
	w := emit.NewWriter()
	w.Line(emit.Banner)
	w.Linef("#ifndef %s", guard)
	w.Linef("#define %s", guard)
	w.Blank()
	w.Line("#include <stdint.h>")
	w.Linef("#include \"%s\"", g.opts.ExportHeader())
	for _, dep := range g.graph.Dependencies(f.Name) {
		w.Linef("#include \"%s\"", HeaderName(dep))
	}
	w.Blank()
	w.Line("#ifdef __cplusplus")
	w.Line("extern \"C\" {")
	w.Line("#endif")
	w.Blank()

	for _, e := range f.Enums {
		w.Linef("typedef enum %s {", e.Name)
		w.Indent()
		for i, v := range e.Values {
			sep := ","
			if i == len(e.Values)-1 {
				sep = ""
			}
			w.Linef("%s_%s = %d%s", e.Name, v.Name, v.Value, sep)
		}
		w.Dedent()
		w.Linef("} %s;", e.Name)
		w.Blank()
	}

	for _, s := range f.Structs {
		w.Linef("typedef struct %s {", s.Name)
		w.Indent()
		for _, m := range s.Members {
			w.Linef("%s %s;", typemap.C.Map(m.Type), m.Name)
		}
		w.Dedent()
		w.Linef("} %s;", s.Name)
		w.Blank()
	}

	for _, cb := range f.Callbacks {
		params := make([]string, 0, len(cb.Params))
		for _, p := range cb.Params {
			params = append(params, g.types.CallbackParam(p))
		}
		w.Linef("typedef %s (*%s)(%s);", typemap.C.Map(cb.ReturnType), cb.Name, orVoid(strings.Join(params, ", ")))
	}
	if len(f.Callbacks) > 0 {
		w.Blank()
	}

	emit.WalkClasses(&headerEmitter{w: w, gen: g}, f.Classes)

	w.Line("#ifdef __cplusplus")
	w.Line("}")
	w.Line("#endif")
	w.Blank()
	w.Linef("#endif // %s", guard)
	return w.String()
}

type headerEmitter struct {
	w   *emit.Writer
	gen *Generator
}

func (h *headerEmitter) BeginClass(c *model.Class) {
	handle := emit.HandleType(c.Name)
	h.w.Linef("typedef struct %s %s;", handle, handle)
	for _, elem := range emit.ResultElems(c) {
		r := emit.CResultName(c.Name, elem)
		h.w.Linef("typedef struct %s %s;", r, r)
	}
	h.w.Blank()
}

func (h *headerEmitter) Lifecycle(c *model.Class, ctor *model.Method) {
	api := h.gen.opts.APIMacro
	handle := emit.HandleType(c.Name)
	if ctor != nil {
		h.w.Linef("%s %s* %s(%s);", api, handle, emit.CreateSymbol(c.Name), orVoid(h.gen.types.Params(ctor.Params)))
	}
	h.w.Linef("%s void %s(%s* handle);", api, emit.DestroySymbol(c.Name), handle)
}

func (h *headerEmitter) Method(c *model.Class, m *model.Method) {
	h.w.Linef("%s %s %s(%s);", h.gen.opts.APIMacro, h.gen.types.Return(c.Name, m),
		emit.MethodSymbol(c.Name, m.Name), methodParams(h.gen.types, c, m))
}

func (h *headerEmitter) Result(c *model.Class, elem string) {
	api := h.gen.opts.APIMacro
	r := emit.CResultName(c.Name, elem)
	h.w.Linef("%s int %s(const %s* result);", api, emit.ResultCountSymbol(r), r)
	h.w.Linef("%s const %s* %s(const %s* result);", api, typemap.C.Map(elem), emit.ResultDataSymbol(r), r)
	h.w.Linef("%s void %s(%s* result);", api, emit.ResultFreeSymbol(r), r)
}

func (h *headerEmitter) Getter(c *model.Class, attr model.Member) {
	h.w.Linef("%s %s %s(%s* handle);", h.gen.opts.APIMacro, typemap.C.Map(attr.Type),
		emit.GetterSymbol(c.Name, attr), emit.HandleType(c.Name))
}

func (h *headerEmitter) EndClass(c *model.Class) {
	h.w.Blank()
}

func methodParams(ct Types, c *model.Class, m *model.Method) string {
	params := emit.HandleType(c.Name) + "* handle"
	if rest := ct.Params(m.Params); rest != "" {
		params += ", " + rest
	}
	return params
}
