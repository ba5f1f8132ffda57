package clientbe

import (
	"github.com/lhaig/idlgen/internal/capibe"
	"github.com/lhaig/idlgen/internal/emit"
	"github.com/lhaig/idlgen/internal/model"
	"github.com/lhaig/idlgen/internal/typemap"
)

// Header returns the client header of f
func (g *Generator) Header(f *model.File) string {
	w := emit.NewWriter()
	w.Line(emit.Banner)
	w.Line("#pragma once")
	w.Blank()
	w.Line("#include <functional>")
	w.Line("#include <memory>")
	w.Line("#include <string>")
	w.Line("#include <vector>")
	w.Blank()
	w.Linef("#include \"%s\"", capibe.HeaderName(f.Name))
	w.Linef("#include \"%s\"", SharedHeader)
	for _, dep := range g.graph.Dependencies(f.Name) {
		w.Linef("#include \"%s\"", HeaderName(dep))
	}
	w.Blank()
	w.Linef("namespace %s {", g.Namespace())
	w.Blank()

	for _, e := range f.Enums {
		w.Linef("using %s = ::%s;", e.Name, e.Name)
	}
	if len(f.Enums) > 0 {
		w.Blank()
	}
	for _, s := range f.Structs {
		w.Linef("using %s = ::%s;", s.Name, s.Name)
	}
	if len(f.Structs) > 0 {
		w.Blank()
	}
	for i := range f.Callbacks {
		cb := &f.Callbacks[i]
		w.Linef("using %s = %s;", cb.Name, g.callbackSignature(cb))
	}
	if len(f.Callbacks) > 0 {
		w.Blank()
	}

	// classes returned by pointer may be declared later in the file
	for _, c := range f.Classes {
		w.Linef("class %s;", c.Name)
	}
	if len(f.Classes) > 0 {
		w.Blank()
	}

	emit.WalkClasses(&headerEmitter{w: w, gen: g}, f.Classes)

	w.Linef("} // namespace %s", g.Namespace())
	return w.String()
}

// headerEmitter declares the result classes before the class that
// returns them, so it buffers the class body.
type headerEmitter struct {
	w    *emit.Writer
	gen  *Generator
	body *emit.Writer
}

func (h *headerEmitter) BeginClass(c *model.Class) {
	h.body = emit.NewWriter()
	h.body.Linef("class %s {", c.Name)
	h.body.Line("public:")
	h.body.Indent()
}

func (h *headerEmitter) Lifecycle(c *model.Class, ctor *model.Method) {
	b := h.body
	handle := emit.HandleType(c.Name)
	if ctor != nil {
		b.Linef("explicit %s(%s);", c.Name, h.gen.params(ctor.Params))
	}
	b.Linef("explicit %s(::%s* handle);", c.Name, handle)
	b.Linef("~%s() = default;", c.Name)
	b.Blank()
	b.Linef("%s(const %s&) = delete;", c.Name, c.Name)
	b.Linef("%s& operator=(const %s&) = delete;", c.Name, c.Name)
	b.Linef("%s(%s&&) noexcept = default;", c.Name, c.Name)
	b.Linef("%s& operator=(%s&&) noexcept = default;", c.Name, c.Name)
	b.Blank()
	b.Linef("[[nodiscard]] ::%s* handle() const noexcept { return handle_.get(); }", handle)
	b.Line("explicit operator bool() const noexcept { return static_cast<bool>(handle_); }")
	b.Blank()
}

func (h *headerEmitter) Method(c *model.Class, m *model.Method) {
	ret := returnType(c, m)
	constQ := ""
	if m.IsConst {
		constQ = " const"
	}
	if ret == "void" {
		h.body.Linef("void %s(%s)%s;", m.Name, h.gen.params(m.Params), constQ)
		return
	}
	h.body.Linef("[[nodiscard]] %s %s(%s)%s;", ret, m.Name, h.gen.params(m.Params), constQ)
}

func (h *headerEmitter) Result(c *model.Class, elem string) {
	w := h.w
	name := emit.ClientResultName(c.Name, elem)
	cResult := "::" + emit.CResultName(c.Name, elem)
	cppElem := typemap.Cpp.Map(elem)
	w.Linef("class %s {", name)
	w.Line("public:")
	w.Indent()
	w.Linef("%s();", name)
	w.Linef("explicit %s(%s* result);", name, cResult)
	w.Linef("~%s() = default;", name)
	w.Linef("%s(%s&&) noexcept = default;", name, name)
	w.Linef("%s& operator=(%s&&) noexcept = default;", name, name)
	w.Blank()
	w.Line("[[nodiscard]] int count() const;")
	w.Linef("[[nodiscard]] const %s* data() const;", cppElem)
	w.Linef("[[nodiscard]] std::vector<%s> toVector() const;", cppElem)
	w.Dedent()
	w.Blank()
	w.Line("private:")
	w.Indent()
	w.Linef("std::unique_ptr<%s, std::function<void(%s*)>> result_;", cResult, cResult)
	w.Dedent()
	w.Line("};")
	w.Blank()
}

func (h *headerEmitter) Getter(c *model.Class, attr model.Member) {
	h.body.Linef("[[nodiscard]] %s %s() const%s;", typemap.Cpp.Map(attr.Type), attr.Getter(), getterNoexcept(attr))
}

func (h *headerEmitter) EndClass(c *model.Class) {
	b := h.body
	handle := "::" + emit.HandleType(c.Name)
	b.Dedent()
	b.Blank()
	b.Line("private:")
	b.Indent()
	b.Linef("std::unique_ptr<%s, std::function<void(%s*)>> handle_;", handle, handle)
	b.Dedent()
	b.Line("};")
	b.Blank()
	h.w.Append(b)
}

// getterNoexcept marks getters that cannot throw. String getters copy into
// a std::string and may.
func getterNoexcept(attr model.Member) string {
	if attr.Type == "string" {
		return ""
	}
	return " noexcept"
}
