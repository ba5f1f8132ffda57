package capibe

import (
	"sort"
	"strings"

	"github.com/lhaig/idlgen/internal/emit"
	"github.com/lhaig/idlgen/internal/model"
	"github.com/lhaig/idlgen/internal/typemap"
)

// Impl returns the C++ implementation of the C header of f. Every entry
// point checks its handle, catches all exceptions and reports failure
// through the return type's sentinel.
func (g *Generator) Impl(f *model.File) string {
	w := emit.NewWriter()
	w.Line(emit.Banner)
	w.Linef("#include \"%s\"", g.opts.ImplHeader)
	w.Linef("#include \"%s\"", HeaderName(f.Name))
	w.Blank()
	w.Line("#include <memory>")
	w.Line("#include <string>")
	w.Line("#include <vector>")
	w.Blank()

	if foreign := g.foreignClasses(f); len(foreign) > 0 {
		w.Line("// Handles of classes declared in other IDL files")
		for _, name := range foreign {
			g.handleStruct(w, name)
		}
	}

	emit.WalkClasses(&implEmitter{w: w, gen: g}, f.Classes)
	return w.String()
}

// handleStruct defines the handle of class name. The definition is
// identical in every translation unit that needs it.
func (g *Generator) handleStruct(w *emit.Writer, name string) {
	w.Linef("struct %s {", emit.HandleType(name))
	w.Indent()
	w.Linef("std::unique_ptr<%s> impl;", g.native(name))
	w.Line("std::string last_string;")
	w.Dedent()
	w.Line("};")
	w.Blank()
}

func (g *Generator) native(class string) string {
	return g.opts.Namespace + "::" + class
}

// foreignClasses returns the classes declared elsewhere whose handles the
// methods of f unwrap or create
func (g *Generator) foreignClasses(f *model.File) []string {
	local := make(map[string]bool)
	for _, c := range f.Classes {
		local[c.Name] = true
	}
	seen := make(map[string]bool)
	var names []string
	add := func(t string) {
		if g.types.symbols.IsClass(t) && !local[t] && !seen[t] {
			seen[t] = true
			names = append(names, t)
		}
	}
	for _, c := range f.Classes {
		for _, m := range c.Methods {
			if m.ReturnPointer {
				add(m.ReturnType)
			}
			for _, p := range m.Params {
				add(p.Type)
			}
		}
	}
	sort.Strings(names)
	return names
}

type implEmitter struct {
	w   *emit.Writer
	gen *Generator
}

func (e *implEmitter) BeginClass(c *model.Class) {
	e.gen.handleStruct(e.w, c.Name)
	for _, elem := range emit.ResultElems(c) {
		e.w.Linef("struct %s {", emit.CResultName(c.Name, elem))
		e.w.Indent()
		e.w.Linef("std::vector<%s> data;", typemap.Cpp.Map(elem))
		e.w.Dedent()
		e.w.Line("};")
		e.w.Blank()
	}
	e.w.Line("extern \"C\" {")
	e.w.Blank()
}

func (e *implEmitter) Lifecycle(c *model.Class, ctor *model.Method) {
	w := e.w
	handle := emit.HandleType(c.Name)
	if ctor != nil {
		call := e.gen.callArgs(ctor.Params)
		w.Linef("%s* %s(%s) {", handle, emit.CreateSymbol(c.Name), orVoid(e.gen.types.Params(ctor.Params)))
		w.Indent()
		if len(call.checks) > 0 {
			w.Linef("if (%s) return nullptr;", strings.Join(call.checks, " || "))
		}
		w.Line("try {")
		w.Indent()
		w.Linef("std::unique_ptr<%s> handle(new %s());", handle, handle)
		w.Linef("handle->impl = std::make_unique<%s>(%s);", e.gen.native(c.Name), call.args)
		w.Line("return handle.release();")
		w.Dedent()
		w.Line("} catch (...) {")
		w.Indent()
		w.Line("return nullptr;")
		w.Dedent()
		w.Line("}")
		w.Dedent()
		w.Line("}")
		w.Blank()
	}
	w.Linef("void %s(%s* handle) {", emit.DestroySymbol(c.Name), handle)
	w.Indent()
	w.Line("delete handle;")
	w.Dedent()
	w.Line("}")
	w.Blank()
}

func (e *implEmitter) Method(c *model.Class, m *model.Method) {
	w := e.w
	ret := e.gen.types.Return(c.Name, m)
	fail := "return " + emit.ReturnSentinel(m, e.gen.types.symbols).CLiteral(ret) + ";"
	if m.ReturnType == "void" {
		fail = "return;"
	}
	call := e.gen.callArgs(m.Params)
	checks := append([]string{"!handle", "!handle->impl"}, call.checks...)
	invoke := "handle->impl->" + m.Name + "(" + call.args + ")"

	w.Linef("%s %s(%s) {", ret, emit.MethodSymbol(c.Name, m.Name), methodParams(e.gen.types, c, m))
	w.Indent()
	w.Linef("if (%s) %s", strings.Join(checks, " || "), fail)
	w.Line("try {")
	w.Indent()
	switch {
	case typemap.IsVector(m.ReturnType):
		r := emit.CResultName(c.Name, typemap.Elem(m.ReturnType))
		w.Linef("std::unique_ptr<%s> result(new %s());", r, r)
		w.Linef("result->data = %s;", invoke)
		w.Line("return result.release();")
	case m.ReturnPointer:
		w.Linef("std::unique_ptr<%s> obj(%s);", e.gen.native(m.ReturnType), invoke)
		w.Line("if (!obj) return nullptr;")
		w.Linef("auto result = new %s();", emit.HandleType(m.ReturnType))
		w.Line("result->impl = std::move(obj);")
		w.Line("return result;")
	case m.ReturnType == "string":
		w.Linef("handle->last_string = %s;", invoke)
		w.Line("return handle->last_string.c_str();")
	case m.ReturnType == "bool":
		w.Linef("return %s ? 1 : 0;", invoke)
	case m.ReturnType == "void":
		w.Linef("%s;", invoke)
	default:
		w.Linef("return %s;", invoke)
	}
	w.Dedent()
	w.Line("} catch (...) {")
	w.Indent()
	w.Line(fail)
	w.Dedent()
	w.Line("}")
	w.Dedent()
	w.Line("}")
	w.Blank()
}

func (e *implEmitter) Result(c *model.Class, elem string) {
	w := e.w
	r := emit.CResultName(c.Name, elem)
	w.Linef("int %s(const %s* result) {", emit.ResultCountSymbol(r), r)
	w.Indent()
	w.Line("return result ? static_cast<int>(result->data.size()) : -1;")
	w.Dedent()
	w.Line("}")
	w.Blank()
	w.Linef("const %s* %s(const %s* result) {", typemap.C.Map(elem), emit.ResultDataSymbol(r), r)
	w.Indent()
	w.Line("return (result && !result->data.empty()) ? result->data.data() : nullptr;")
	w.Dedent()
	w.Line("}")
	w.Blank()
	w.Linef("void %s(%s* result) {", emit.ResultFreeSymbol(r), r)
	w.Indent()
	w.Line("delete result;")
	w.Dedent()
	w.Line("}")
	w.Blank()
}

func (e *implEmitter) Getter(c *model.Class, attr model.Member) {
	w := e.w
	ret := typemap.C.Map(attr.Type)
	fail := "return " + emit.GetterSentinel(attr, e.gen.types.symbols).CLiteral(ret) + ";"
	invoke := "handle->impl->" + attr.Getter() + "()"

	w.Linef("%s %s(%s* handle) {", ret, emit.GetterSymbol(c.Name, attr), emit.HandleType(c.Name))
	w.Indent()
	w.Linef("if (!handle || !handle->impl) %s", fail)
	w.Line("try {")
	w.Indent()
	switch attr.Type {
	case "string":
		w.Linef("handle->last_string = %s;", invoke)
		w.Line("return handle->last_string.c_str();")
	case "bool":
		w.Linef("return %s ? 1 : 0;", invoke)
	default:
		w.Linef("return %s;", invoke)
	}
	w.Dedent()
	w.Line("} catch (...) {")
	w.Indent()
	w.Line(fail)
	w.Dedent()
	w.Line("}")
	w.Dedent()
	w.Line("}")
	w.Blank()
}

func (e *implEmitter) EndClass(c *model.Class) {
	e.w.Line("} // extern \"C\"")
	e.w.Blank()
}

// call is the native argument list of a C entry point together with the
// null checks its parameters require.
type call struct {
	args   string
	checks []string
}

func (g *Generator) callArgs(params []model.Param) call {
	var c call
	args := make([]string, 0, len(params))
	for _, p := range params {
		kind := g.types.symbols.Kind(p.Type)
		switch {
		case p.Type == "string":
			c.checks = append(c.checks, "!"+p.Name)
			args = append(args, p.Name)
		case kind == model.KindCallback:
			cb := g.types.symbols.Callback(p.Type)
			if emit.CallbackNeedsAdapter(cb, g.types.symbols) {
				args = append(args, g.adapter(p.Name, cb))
			} else {
				args = append(args, p.Name)
			}
		case kind == model.KindClass && p.Pointer:
			args = append(args, "("+p.Name+" && "+p.Name+"->impl) ? "+p.Name+"->impl.get() : nullptr")
		case kind == model.KindClass:
			c.checks = append(c.checks, "!"+p.Name, "!"+p.Name+"->impl")
			args = append(args, "*"+p.Name+"->impl")
		case kind == model.KindStruct && p.Reference && !p.Const:
			c.checks = append(c.checks, "!"+p.Name)
			args = append(args, "*"+p.Name)
		default:
			args = append(args, p.Name)
		}
	}
	c.args = strings.Join(args, ", ")
	return c
}

// adapter renders a lambda that takes the native parameter forms of cb
// and forwards them to the C function pointer name
func (g *Generator) adapter(name string, cb *model.Callback) string {
	params := make([]string, 0, len(cb.Params))
	args := make([]string, 0, len(cb.Params))
	for _, p := range cb.Params {
		switch {
		case p.Type == "string":
			params = append(params, "const std::string& "+p.Name)
			args = append(args, p.Name+".c_str()")
		case p.Reference && g.types.symbols.IsStruct(p.Type):
			if p.Const {
				params = append(params, "const ::"+p.Type+"& "+p.Name)
			} else {
				params = append(params, "::"+p.Type+"& "+p.Name)
			}
			args = append(args, "&"+p.Name)
		default:
			params = append(params, g.types.CallbackParam(model.Param{
				Type: p.Type, Name: p.Name, Const: p.Const, Pointer: p.Pointer,
			}))
			args = append(args, p.Name)
		}
	}
	invoke := name + "(" + strings.Join(args, ", ") + ")"
	head := "[" + name + "](" + strings.Join(params, ", ") + ") "
	switch cb.ReturnType {
	case "void":
		return head + "{ " + invoke + "; }"
	case "bool":
		return head + "{ return " + invoke + " != 0; }"
	}
	return head + "{ return " + invoke + "; }"
}
