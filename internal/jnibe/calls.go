package jnibe

import (
	"fmt"
	"strings"

	"github.com/lhaig/idlgen/internal/emit"
	"github.com/lhaig/idlgen/internal/model"
	"github.com/lhaig/idlgen/internal/typemap"
)

// defEmitter writes the native method definitions.
type defEmitter struct {
	w   *emit.Writer
	gen *Generator
}

func (d *defEmitter) BeginClass(c *model.Class) {
	d.w.Linef("// %s", c.Name)
	d.w.Blank()
}

func (d *defEmitter) Lifecycle(c *model.Class, ctor *model.Method) {
	g, w := d.gen, d.w
	native := g.native(c.Name)
	if ctor != nil {
		w.Linef("%s {", g.signature("jlong", c.Name, "nativeCreate", true, g.jniParams(ctor.Params)...))
		w.Indent()
		args := d.prepare(ctor.Params, "return 0;")
		w.Line("try {")
		w.Linef("    return ptrToJlong(new %s(%s));", native, strings.Join(args, ", "))
		w.Line("} catch (...) {")
		w.Line("    return 0;")
		w.Line("}")
		w.Dedent()
		w.Line("}")
		w.Blank()
	}
	w.Linef("%s {", g.signature("void", c.Name, "nativeDestroy", true, handleParam))
	w.Linef("    delete jlongToPtr<%s>(handle);", native)
	w.Line("}")
	w.Blank()
}

func (d *defEmitter) Method(c *model.Class, m *model.Method) {
	g, w := d.gen, d.w
	sentinel := g.sentinel(m.ReturnType, m.ReturnPointer)
	failure := fail(sentinel)

	w.Linef("%s {", g.signature(g.jniReturn(m), c.Name, nativeName(m.Name), true, withHandle(g.jniParams(m.Params))...))
	w.Indent()
	w.Linef("auto* obj = jlongToPtr<%s>(handle);", g.native(c.Name))
	w.Linef("if (!obj) %s", failure)
	args := d.prepare(m.Params, failure)
	invoke := "obj->" + m.Name + "(" + strings.Join(args, ", ") + ")"
	w.Line("try {")
	w.Indent()
	switch {
	case typemap.IsVector(m.ReturnType):
		elem := typemap.Cpp.Map(typemap.Elem(m.ReturnType))
		w.Linef("return ptrToJlong(new std::vector<%s>(%s));", elem, invoke)
	case m.ReturnPointer && g.symbols.IsClass(m.ReturnType):
		w.Linef("return ptrToJlong(%s);", invoke)
	case m.ReturnType == "void":
		w.Linef("%s;", invoke)
	default:
		w.Linef("return %s;", g.toJava(invoke, m.ReturnType, false))
	}
	w.Dedent()
	w.Line("} catch (...) {")
	w.Linef("    %s", failure)
	w.Line("}")
	w.Dedent()
	w.Line("}")
	w.Blank()
}

func (d *defEmitter) Result(c *model.Class, elem string) {
	g, w := d.gen, d.w
	result := emit.ClientResultName(c.Name, elem)
	vector := fmt.Sprintf("std::vector<%s>", typemap.Cpp.Map(elem))
	param := [2]string{"jlong", "result"}
	sentinel := g.sentinel(elem, false)

	w.Linef("%s {", g.signature("jint", result, "nativeCount", true, param))
	w.Linef("    auto* items = jlongToPtr<%s>(result);", vector)
	w.Line("    return items ? static_cast<jint>(items->size()) : -1;")
	w.Line("}")
	w.Blank()
	w.Linef("%s {", g.signature(g.jniType(elem), result, "nativeGet", true, param, [2]string{"jint", "index"}))
	w.Indent()
	w.Linef("auto* items = jlongToPtr<%s>(result);", vector)
	w.Linef("if (!items || index < 0 || static_cast<size_t>(index) >= items->size()) return %s;", sentinel)
	w.Linef("return %s;", g.toJava("(*items)[index]", elem, false))
	w.Dedent()
	w.Line("}")
	w.Blank()
	w.Linef("%s {", g.signature("void", result, "nativeFree", true, param))
	w.Linef("    delete jlongToPtr<%s>(result);", vector)
	w.Line("}")
	w.Blank()
}

func (d *defEmitter) Getter(c *model.Class, attr model.Member) {
	g, w := d.gen, d.w
	failure := fail(g.sentinel(attr.Type, false))
	w.Linef("%s {", g.signature(g.jniType(attr.Type), c.Name, nativeName(attr.Getter()), true, handleParam))
	w.Indent()
	w.Linef("auto* obj = jlongToPtr<%s>(handle);", g.native(c.Name))
	w.Linef("if (!obj) %s", failure)
	w.Line("try {")
	w.Linef("    return %s;", g.toJava("obj->"+attr.Getter()+"()", attr.Type, false))
	w.Line("} catch (...) {")
	w.Linef("    %s", failure)
	w.Line("}")
	w.Dedent()
	w.Line("}")
	w.Blank()
}

func (d *defEmitter) EndClass(c *model.Class) {}

// prepare writes the null checks and conversions of params and returns
// the native call arguments.
func (d *defEmitter) prepare(params []model.Param, failure string) []string {
	g, w := d.gen, d.w
	for _, p := range params {
		if p.Type == "string" || g.symbols.IsCallback(p.Type) {
			w.Linef("if (!%s) %s", p.Name, failure)
		}
	}
	if d.needsArena(params) {
		w.Line("StringArena strings;")
	}
	args := make([]string, 0, len(params))
	for _, p := range params {
		local := "cpp_" + p.Name
		switch {
		case isBuffer(p):
			mode := "0"
			if p.Const {
				mode = "JNI_ABORT"
			}
			w.Linef("ByteArray %s(env, %s, %s);", local, p.Name, mode)
			args = append(args, local+".data()")
		case p.Type == "string":
			w.Linef("std::string %s = jstringToString(env, %s);", local, p.Name)
			args = append(args, local)
		case g.symbols.IsCallback(p.Type):
			d.callback(p, failure)
			args = append(args, local)
		case g.symbols.IsClass(p.Type):
			w.Linef("auto* %s = jlongToPtr<%s>(%s);", local, g.native(p.Type), p.Name)
			if p.Pointer {
				args = append(args, local)
			} else {
				w.Linef("if (!%s) %s", local, failure)
				args = append(args, "*"+local)
			}
		case g.symbols.IsStruct(p.Type):
			w.Linef("::%s %s = toNative_%s(env, %s, strings);", p.Type, local, p.Type, p.Name)
			if p.Pointer {
				args = append(args, fmt.Sprintf("%s ? &%s : nullptr", p.Name, local))
			} else {
				args = append(args, local)
			}
		case g.symbols.IsEnum(p.Type):
			args = append(args, fmt.Sprintf("toNative_%s(env, %s)", p.Type, p.Name))
		case p.Type == "bool":
			args = append(args, p.Name+" != JNI_FALSE")
		default:
			args = append(args, fmt.Sprintf("static_cast<%s>(%s)", typemap.Cpp.Map(p.Type), p.Name))
		}
	}
	return args
}

func (d *defEmitter) needsArena(params []model.Param) bool {
	for _, p := range params {
		if d.gen.symbols.IsStruct(p.Type) {
			return true
		}
	}
	return false
}

// callback binds a Java functional interface to a capturing lambda that
// calls its invoke method on the current thread. Callbacks return void,
// a scalar or an enum.
func (d *defEmitter) callback(p model.Param, failure string) {
	g, w := d.gen, d.w
	cb := g.symbols.Callback(p.Type)
	method := p.Name + "Invoke"
	w.Linef("jmethodID %s = env->GetMethodID(env->GetObjectClass(%s), \"invoke\", \"%s\");", method, p.Name, g.callbackDescriptor(cb))
	w.Linef("if (!%s) %s", method, failure)

	captures := []string{"env", p.Name, method}
	params := make([]string, 0, len(cb.Params))
	args := []string{p.Name, method}
	for _, cp := range cb.Params {
		params = append(params, lambdaParam(cp))
		switch {
		case g.symbols.IsStruct(cp.Type) && cp.Pointer:
			args = append(args, fmt.Sprintf("%s ? toJava_%s(env, *%s) : nullptr", cp.Name, cp.Type, cp.Name))
		default:
			args = append(args, g.toJavaArg(cp.Name, cp.Type, false))
		}
	}
	ret := typemap.Cpp.Map(cb.ReturnType)
	call := fmt.Sprintf("env->Call%sMethod(%s)", g.accessor(cb.ReturnType), strings.Join(args, ", "))

	w.Linef("auto cpp_%s = [%s](%s) -> %s {", p.Name, strings.Join(captures, ", "), strings.Join(params, ", "), ret)
	w.Indent()
	switch {
	case cb.ReturnType == "void":
		w.Linef("%s;", call)
	case cb.ReturnType == "bool":
		w.Linef("return %s != JNI_FALSE;", call)
	case g.symbols.IsEnum(cb.ReturnType):
		w.Linef("return toNative_%s(env, %s);", cb.ReturnType, call)
	default:
		w.Linef("return static_cast<%s>(%s);", ret, call)
	}
	w.Dedent()
	w.Line("};")
}

func lambdaParam(p model.Param) string {
	base := typemap.Cpp.Map(p.Type)
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
