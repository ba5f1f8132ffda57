package clientbe

import (
	"strings"

	"github.com/lhaig/idlgen/internal/emit"
	"github.com/lhaig/idlgen/internal/model"
	"github.com/lhaig/idlgen/internal/typemap"
)

// Impl returns the client implementation of f. C ABI entry points are
// resolved through the shared library handle the first time a class of
// this file is constructed or adopted.
func (g *Generator) Impl(f *model.File) string {
	w := emit.NewWriter()
	w.Line(emit.Banner)
	w.Linef("#include \"%s\"", HeaderName(f.Name))
	w.Blank()
	w.Line("#include <mutex>")
	w.Line("#include <stdexcept>")
	w.Blank()
	w.Linef("namespace %s {", g.Namespace())
	w.Blank()

	if len(f.Classes) > 0 {
		syms := &symbolCollector{}
		emit.WalkClasses(syms, f.Classes)

		w.Line("namespace {")
		w.Blank()
		for _, s := range syms.names {
			w.Linef("decltype(&::%s) g_%s = nullptr;", s, s)
		}
		w.Blank()
		w.Line("void loadSymbols() {")
		w.Indent()
		for _, s := range syms.names {
			w.Linef("g_%s = reinterpret_cast<decltype(g_%s)>(idl_client::detail::loadSymbol(\"%s\"));", s, s, s)
		}
		w.Dedent()
		w.Line("}")
		w.Blank()
		w.Line("void ensureSymbolsLoaded() {")
		w.Indent()
		w.Line("static std::once_flag once;")
		w.Line("std::call_once(once, loadSymbols);")
		w.Dedent()
		w.Line("}")
		w.Blank()
		w.Line("} // namespace")
		w.Blank()

		emit.WalkClasses(&implEmitter{w: w, gen: g}, f.Classes)
	}

	w.Linef("} // namespace %s", g.Namespace())
	return w.String()
}

// symbolCollector lists the C ABI symbols of classes in emission order.
type symbolCollector struct {
	names []string
}

func (s *symbolCollector) BeginClass(c *model.Class) {}

func (s *symbolCollector) Lifecycle(c *model.Class, ctor *model.Method) {
	if ctor != nil {
		s.names = append(s.names, emit.CreateSymbol(c.Name))
	}
	s.names = append(s.names, emit.DestroySymbol(c.Name))
}

func (s *symbolCollector) Method(c *model.Class, m *model.Method) {
	s.names = append(s.names, emit.MethodSymbol(c.Name, m.Name))
}

func (s *symbolCollector) Result(c *model.Class, elem string) {
	r := emit.CResultName(c.Name, elem)
	s.names = append(s.names, emit.ResultCountSymbol(r), emit.ResultDataSymbol(r), emit.ResultFreeSymbol(r))
}

func (s *symbolCollector) Getter(c *model.Class, attr model.Member) {
	s.names = append(s.names, emit.GetterSymbol(c.Name, attr))
}

func (s *symbolCollector) EndClass(c *model.Class) {}

type implEmitter struct {
	w   *emit.Writer
	gen *Generator
}

func (e *implEmitter) BeginClass(c *model.Class) {}

func (e *implEmitter) Lifecycle(c *model.Class, ctor *model.Method) {
	w := e.w
	handle := "::" + emit.HandleType(c.Name)
	destroy := "g_" + emit.DestroySymbol(c.Name)
	deleter := "[](" + handle + "* p) { if (p && " + destroy + ") " + destroy + "(p); }"

	if ctor != nil {
		create := "g_" + emit.CreateSymbol(c.Name)
		w.Linef("%s::%s(%s)", c.Name, c.Name, e.gen.params(ctor.Params))
		w.Indent()
		w.Line(": handle_(nullptr, nullptr) {")
		w.Line("if (!idl_client::isInitialized()) throw std::runtime_error(\"Library not initialized\");")
		w.Line("ensureSymbolsLoaded();")
		w.Linef("if (!%s) throw std::runtime_error(\"Symbol %s not found\");", create, emit.CreateSymbol(c.Name))
		e.callbackWrappers(ctor.Params)
		w.Linef("auto* h = %s(%s);", create, e.gen.cArgs(ctor.Params))
		w.Linef("if (!h) throw std::runtime_error(\"Failed to create %s\");", c.Name)
		w.Linef("handle_ = std::unique_ptr<%s, std::function<void(%s*)>>(h,", handle, handle)
		w.Indent()
		w.Linef("%s);", deleter)
		w.Dedent()
		w.Dedent()
		w.Line("}")
		w.Blank()
	}

	w.Linef("%s::%s(%s* handle)", c.Name, c.Name, handle)
	w.Indent()
	w.Linef(": handle_(handle, %s) {", deleter)
	w.Line("if (handle) ensureSymbolsLoaded();")
	w.Dedent()
	w.Line("}")
	w.Blank()
}

func (e *implEmitter) Method(c *model.Class, m *model.Method) {
	w := e.w
	ret := returnType(c, m)
	sym := "g_" + emit.MethodSymbol(c.Name, m.Name)
	constQ := ""
	if m.IsConst {
		constQ = " const"
	}

	args := "handle_.get()"
	if rest := e.gen.cArgs(m.Params); rest != "" {
		args += ", " + rest
	}
	invoke := sym + "(" + args + ")"

	w.Linef("%s %s::%s(%s)%s {", ret, c.Name, m.Name, e.gen.params(m.Params), constQ)
	w.Indent()
	switch {
	case ret == "void":
		w.Linef("if (!handle_ || !%s) return;", sym)
	case typemap.IsVector(m.ReturnType):
		w.Linef("if (!handle_ || !%s) return %s();", sym, ret)
	case m.ReturnPointer:
		w.Linef("if (!handle_ || !%s) return %s(static_cast<::%s*>(nullptr));", sym, ret, emit.HandleType(m.ReturnType))
	default:
		w.Linef("if (!handle_ || !%s) return %s;", sym, emit.CppSentinel(e.gen.symbols, m.ReturnType))
	}
	e.callbackWrappers(m.Params)
	switch {
	case ret == "void":
		w.Linef("%s;", invoke)
	case typemap.IsVector(m.ReturnType), m.ReturnPointer:
		w.Linef("return %s(%s);", ret, invoke)
	case m.ReturnType == "string":
		w.Linef("const char* s = %s;", invoke)
		w.Line("return s ? std::string(s) : std::string();")
	case m.ReturnType == "bool":
		w.Linef("return %s != 0;", invoke)
	default:
		w.Linef("return %s;", invoke)
	}
	w.Dedent()
	w.Line("}")
	w.Blank()
}

// callbackWrappers stores each callback argument in a thread-local slot
// and converts it to a captureless lambda the C ABI accepts
func (e *implEmitter) callbackWrappers(params []model.Param) {
	w := e.w
	for _, p := range params {
		cb := e.gen.symbols.Callback(p.Type)
		if cb == nil {
			continue
		}
		slot := "s_" + p.Name
		cParams := make([]string, 0, len(cb.Params))
		args := make([]string, 0, len(cb.Params))
		for _, cp := range cb.Params {
			cParams = append(cParams, e.gen.c.CallbackParam(cp))
			args = append(args, e.gen.callbackArg(cp))
		}
		invoke := slot + "(" + strings.Join(args, ", ") + ")"

		w.Linef("static thread_local %s %s;", p.Type, slot)
		w.Linef("%s = %s;", slot, p.Name)
		w.Linef("::%s callback_wrapper_%s = [](%s) -> %s {", cb.Name, p.Name,
			strings.Join(cParams, ", "), typemap.C.Map(cb.ReturnType))
		w.Indent()
		switch cb.ReturnType {
		case "void":
			w.Linef("%s;", invoke)
		case "bool":
			w.Linef("return %s ? 1 : 0;", invoke)
		default:
			w.Linef("return %s;", invoke)
		}
		w.Dedent()
		w.Line("};")
	}
}

func (e *implEmitter) Result(c *model.Class, elem string) {
	w := e.w
	name := emit.ClientResultName(c.Name, elem)
	cResult := "::" + emit.CResultName(c.Name, elem)
	free := "g_" + emit.ResultFreeSymbol(emit.CResultName(c.Name, elem))
	count := "g_" + emit.ResultCountSymbol(emit.CResultName(c.Name, elem))
	data := "g_" + emit.ResultDataSymbol(emit.CResultName(c.Name, elem))
	cppElem := typemap.Cpp.Map(elem)

	w.Linef("%s::%s() : result_(nullptr, nullptr) {}", name, name)
	w.Blank()
	w.Linef("%s::%s(%s* result)", name, name, cResult)
	w.Indent()
	w.Linef(": result_(result, [](%s* r) { if (r && %s) %s(r); }) {}", cResult, free, free)
	w.Dedent()
	w.Blank()
	w.Linef("int %s::count() const {", name)
	w.Indent()
	w.Linef("return result_ && %s ? %s(result_.get()) : 0;", count, count)
	w.Dedent()
	w.Line("}")
	w.Blank()
	w.Linef("const %s* %s::data() const {", cppElem, name)
	w.Indent()
	w.Linef("return result_ && %s ? %s(result_.get()) : nullptr;", data, data)
	w.Dedent()
	w.Line("}")
	w.Blank()
	w.Linef("std::vector<%s> %s::toVector() const {", cppElem, name)
	w.Indent()
	w.Linef("std::vector<%s> vec;", cppElem)
	w.Line("int n = count();")
	w.Line("auto* d = data();")
	w.Line("if (n > 0 && d) vec.assign(d, d + n);")
	w.Line("return vec;")
	w.Dedent()
	w.Line("}")
	w.Blank()
}

func (e *implEmitter) Getter(c *model.Class, attr model.Member) {
	w := e.w
	sym := "g_" + emit.GetterSymbol(c.Name, attr)
	w.Linef("%s %s::%s() const%s {", typemap.Cpp.Map(attr.Type), c.Name, attr.Getter(), getterNoexcept(attr))
	w.Indent()
	w.Linef("if (!handle_ || !%s) return %s;", sym, emit.CppSentinel(e.gen.symbols, attr.Type))
	switch attr.Type {
	case "string":
		w.Linef("const char* s = %s(handle_.get());", sym)
		w.Line("return s ? std::string(s) : std::string();")
	case "bool":
		w.Linef("return %s(handle_.get()) != 0;", sym)
	default:
		w.Linef("return %s(handle_.get());", sym)
	}
	w.Dedent()
	w.Line("}")
	w.Blank()
}

func (e *implEmitter) EndClass(c *model.Class) {}

func (g *Generator) cArgs(params []model.Param) string {
	args := make([]string, 0, len(params))
	for _, p := range params {
		args = append(args, g.cArg(p))
	}
	return strings.Join(args, ", ")
}
