package wasmbe

import (
	"strings"

	"github.com/lhaig/idlgen/internal/emit"
	"github.com/lhaig/idlgen/internal/model"
	"github.com/lhaig/idlgen/internal/typemap"
)

// declEmitter writes the wrapper class definitions. Member functions are
// defined out of line so wrappers may take each other as parameters.
type declEmitter struct {
	w   *emit.Writer
	gen *Generator
}

func (d *declEmitter) BeginClass(c *model.Class) {
	w := d.w
	name := wrapper(c.Name)
	w.Linef("class %s {", name)
	w.Line("public:")
	w.Indent()
	w.Linef("%s() = default;", name)
	w.Blank()
	w.Linef("%s* get() const { return impl_.get(); }", d.gen.native(c.Name))
	w.Blank()
}

func (d *declEmitter) Lifecycle(c *model.Class, ctor *model.Method) {
	if ctor != nil {
		d.w.Linef("bool create(%s);", d.gen.params(ctor.Params))
	}
}

func (d *declEmitter) Method(c *model.Class, m *model.Method) {
	if Skipped(m) {
		return
	}
	d.w.Linef("%s %s(%s);", returnType(m), m.Name, d.gen.params(m.Params))
}

func (d *declEmitter) Result(c *model.Class, elem string) {}

func (d *declEmitter) Getter(c *model.Class, attr model.Member) {
	d.w.Linef("%s %s() const;", typemap.Embind.Map(attr.Type), attr.Getter())
}

func (d *declEmitter) EndClass(c *model.Class) {
	w := d.w
	w.Dedent()
	w.Blank()
	w.Line("private:")
	w.Indent()
	w.Linef("std::unique_ptr<%s> impl_;", d.gen.native(c.Name))
	w.Dedent()
	w.Line("};")
	w.Blank()
}

// defEmitter writes the wrapper member function definitions.
type defEmitter struct {
	w   *emit.Writer
	gen *Generator
}

func (d *defEmitter) BeginClass(c *model.Class) {}

func (d *defEmitter) Lifecycle(c *model.Class, ctor *model.Method) {
	if ctor == nil {
		return
	}
	w := d.w
	w.Linef("bool %s::create(%s) {", wrapper(c.Name), d.gen.params(ctor.Params))
	w.Indent()
	d.classChecks(ctor.Params, "return false;")
	d.conversions(ctor.Params)
	w.Line("try {")
	w.Indent()
	w.Linef("impl_ = std::make_unique<%s>(%s);", d.gen.native(c.Name), d.gen.args(ctor.Params))
	w.Line("return true;")
	w.Dedent()
	w.Line("} catch (...) {")
	w.Indent()
	w.Line("return false;")
	w.Dedent()
	w.Line("}")
	w.Dedent()
	w.Line("}")
	w.Blank()
}

func (d *defEmitter) Method(c *model.Class, m *model.Method) {
	if Skipped(m) {
		return
	}
	w := d.w
	fail := "return;"
	switch {
	case typemap.IsVector(m.ReturnType):
		fail = "return val::array();"
	case m.ReturnType != "void":
		fail = "return " + emit.CppSentinel(d.gen.symbols, m.ReturnType) + ";"
	}
	invoke := "impl_->" + m.Name + "(" + d.gen.args(m.Params) + ")"

	w.Linef("%s %s::%s(%s) {", returnType(m), wrapper(c.Name), m.Name, d.gen.params(m.Params))
	w.Indent()
	w.Linef("if (!impl_) %s", fail)
	d.classChecks(m.Params, fail)
	w.Line("try {")
	w.Indent()
	d.conversions(m.Params)
	switch {
	case typemap.IsVector(m.ReturnType):
		elem := typemap.Elem(m.ReturnType)
		w.Line("val result = val::array();")
		w.Linef("auto items = %s;", invoke)
		w.Line("for (const auto& item : items) {")
		w.Indent()
		if s := d.gen.symbols.Struct(elem); s != nil {
			w.Line("val obj = val::object();")
			for _, mem := range s.Members {
				w.Linef("obj.set(\"%s\", item.%s);", mem.Name, mem.Name)
			}
			w.Line("result.call<void>(\"push\", obj);")
		} else {
			w.Line("result.call<void>(\"push\", item);")
		}
		w.Dedent()
		w.Line("}")
		w.Line("return result;")
	case m.ReturnType == "void":
		w.Linef("%s;", invoke)
	default:
		w.Linef("return %s;", invoke)
	}
	d.catchAll(fail)
	w.Dedent()
	w.Line("}")
	w.Blank()
}

// catchAll closes an open try block, running fail for any exception
func (d *defEmitter) catchAll(fail string) {
	d.w.Dedent()
	d.w.Line("} catch (...) {")
	d.w.Indent()
	d.w.Line(fail)
	d.w.Dedent()
	d.w.Line("}")
}

// classChecks runs fail when a wrapper passed by reference holds no
// native object
func (d *defEmitter) classChecks(params []model.Param, fail string) {
	for _, p := range params {
		if d.gen.symbols.IsClass(p.Type) && !p.Pointer {
			d.w.Linef("if (!%s.get()) %s", p.Name, fail)
		}
	}
}

// conversions copies typed arrays into native buffers and wraps
// JavaScript functions into native callables
func (d *defEmitter) conversions(params []model.Param) {
	w := d.w
	for _, p := range params {
		if p.Pointer && p.Type == "uint8_t" {
			w.Linef("unsigned int %sLen = %s[\"length\"].as<unsigned int>();", p.Name, p.Name)
			w.Linef("std::vector<uint8_t> %sVec(%sLen);", p.Name, p.Name)
			w.Linef("val %sMemView = val(typed_memory_view(%sLen, %sVec.data()));", p.Name, p.Name, p.Name)
			w.Linef("%sMemView.call<void>(\"set\", %s);", p.Name, p.Name)
			continue
		}
		cb := d.gen.symbols.Callback(p.Type)
		if cb == nil {
			continue
		}
		params := make([]string, 0, len(cb.Params))
		args := make([]string, 0, len(cb.Params))
		for _, cp := range cb.Params {
			params = append(params, d.gen.callbackParam(cp))
			if cp.Pointer {
				args = append(args, "*"+cp.Name)
			} else {
				args = append(args, cp.Name)
			}
		}
		call := p.Name + "(" + strings.Join(args, ", ") + ")"
		ret := typemap.Embind.Map(cb.ReturnType)
		w.Linef("auto %sWrapper = [%s](%s) -> %s {", p.Name, p.Name, strings.Join(params, ", "), ret)
		w.Indent()
		if ret == "void" {
			w.Linef("%s;", call)
		} else {
			w.Linef("return %s.as<%s>();", call, ret)
		}
		w.Dedent()
		w.Line("};")
	}
}

// callbackParam renders a parameter of a native callback signature
func (g *Generator) callbackParam(p model.Param) string {
	base := typemap.Embind.Map(p.Type)
	switch {
	case p.Type == "string":
		return "const std::string& " + p.Name
	case p.Reference && p.Const:
		return "const " + base + "& " + p.Name
	case p.Reference:
		return base + "& " + p.Name
	case p.Pointer && p.Const:
		return "const " + base + "* " + p.Name
	case p.Pointer:
		return base + "* " + p.Name
	}
	return base + " " + p.Name
}

func (d *defEmitter) Result(c *model.Class, elem string) {}

func (d *defEmitter) Getter(c *model.Class, attr model.Member) {
	w := d.w
	w.Linef("%s %s::%s() const {", typemap.Embind.Map(attr.Type), wrapper(c.Name), attr.Getter())
	w.Indent()
	fail := "return " + emit.CppSentinel(d.gen.symbols, attr.Type) + ";"
	w.Linef("if (!impl_) %s", fail)
	w.Line("try {")
	w.Indent()
	w.Linef("return impl_->%s();", attr.Getter())
	d.catchAll(fail)
	w.Dedent()
	w.Line("}")
	w.Blank()
}

func (d *defEmitter) EndClass(c *model.Class) {}

// bindEmitter writes one EMSCRIPTEN_BINDINGS block per class.
type bindEmitter struct {
	w   *emit.Writer
	gen *Generator
}

func (b *bindEmitter) BeginClass(c *model.Class) {
	w := b.w
	w.Linef("EMSCRIPTEN_BINDINGS(%s_%s) {", b.gen.opts.Namespace, strings.ToLower(c.Name))
	w.Indent()
	w.Linef("class_<%s>(\"%s\")", wrapper(c.Name), c.Name)
	w.Indent()
	w.Line(".constructor<>()")
}

func (b *bindEmitter) Lifecycle(c *model.Class, ctor *model.Method) {
	if ctor != nil {
		b.function(c, "create", ctor.Params)
	}
}

func (b *bindEmitter) Method(c *model.Class, m *model.Method) {
	if !Skipped(m) {
		b.function(c, m.Name, m.Params)
	}
}

func (b *bindEmitter) function(c *model.Class, name string, params []model.Param) {
	if b.gen.needsRawPointers(params) {
		b.w.Linef(".function(\"%s\", &%s::%s, allow_raw_pointers())", name, wrapper(c.Name), name)
		return
	}
	b.w.Linef(".function(\"%s\", &%s::%s)", name, wrapper(c.Name), name)
}

func (b *bindEmitter) Result(c *model.Class, elem string) {}

func (b *bindEmitter) Getter(c *model.Class, attr model.Member) {
	b.w.Linef(".function(\"%s\", &%s::%s)", attr.Getter(), wrapper(c.Name), attr.Getter())
}

func (b *bindEmitter) EndClass(c *model.Class) {
	w := b.w
	w.Dedent()
	w.Line(";")
	w.Dedent()
	w.Line("}")
	w.Blank()
}
