package jnibe

import (
	"fmt"
	"strings"

	"github.com/lhaig/idlgen/internal/capibe"
	"github.com/lhaig/idlgen/internal/emit"
	"github.com/lhaig/idlgen/internal/model"
	"github.com/lhaig/idlgen/internal/typemap"
)

// Header renders the JNI declarations of every native method.
func (g *Generator) Header() string {
	ns := g.opts.Namespace
	guard := strings.ToUpper(ns) + "_JNI_H"
	w := emit.NewWriter()
	w.Line(emit.Banner)
	w.Linef("#ifndef %s", guard)
	w.Linef("#define %s", guard)
	w.Blank()
	w.Line("#include <jni.h>")
	w.Blank()
	w.Lines("#ifdef __cplusplus", `extern "C" {`, "#endif")
	w.Blank()
	emit.WalkClasses(&declEmitter{w: w, gen: g}, g.merged.Classes)
	w.Lines("#ifdef __cplusplus", "}", "#endif")
	w.Blank()
	w.Linef("#endif // %s", guard)
	return w.String()
}

// signature renders a native function prologue. names false leaves the
// parameters unnamed, as in the header.
func (g *Generator) signature(ret, class, method string, names bool, extra ...[2]string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "JNIEXPORT %s JNICALL %s(", ret, g.symbol(class, method))
	if names {
		sb.WriteString("JNIEnv* env, jclass")
	} else {
		sb.WriteString("JNIEnv*, jclass")
	}
	for _, p := range extra {
		sb.WriteString(", ")
		sb.WriteString(p[0])
		if names {
			sb.WriteString(" ")
			sb.WriteString(p[1])
		}
	}
	sb.WriteString(")")
	return sb.String()
}

func (g *Generator) jniParams(params []model.Param) [][2]string {
	out := make([][2]string, 0, len(params)+1)
	for _, p := range params {
		out = append(out, [2]string{g.jniParam(p), p.Name})
	}
	return out
}

var handleParam = [2]string{"jlong", "handle"}

func withHandle(params [][2]string) [][2]string {
	return append([][2]string{handleParam}, params...)
}

// declEmitter writes the header prototypes.
type declEmitter struct {
	w   *emit.Writer
	gen *Generator
}

func (d *declEmitter) BeginClass(c *model.Class) {
	d.w.Linef("// %s", c.Name)
}

func (d *declEmitter) Lifecycle(c *model.Class, ctor *model.Method) {
	g := d.gen
	if ctor != nil {
		d.w.Linef("%s;", g.signature("jlong", c.Name, "nativeCreate", false, g.jniParams(ctor.Params)...))
	}
	d.w.Linef("%s;", g.signature("void", c.Name, "nativeDestroy", false, handleParam))
}

func (d *declEmitter) Method(c *model.Class, m *model.Method) {
	g := d.gen
	d.w.Linef("%s;", g.signature(g.jniReturn(m), c.Name, nativeName(m.Name), false, withHandle(g.jniParams(m.Params))...))
}

func (d *declEmitter) Result(c *model.Class, elem string) {
	g := d.gen
	result := emit.ClientResultName(c.Name, elem)
	result0 := [2]string{"jlong", "result"}
	d.w.Linef("%s;", g.signature("jint", result, "nativeCount", false, result0))
	d.w.Linef("%s;", g.signature(g.jniType(elem), result, "nativeGet", false, result0, [2]string{"jint", "index"}))
	d.w.Linef("%s;", g.signature("void", result, "nativeFree", false, result0))
}

func (d *declEmitter) Getter(c *model.Class, attr model.Member) {
	g := d.gen
	d.w.Linef("%s;", g.signature(g.jniType(attr.Type), c.Name, nativeName(attr.Getter()), false, handleParam))
}

func (d *declEmitter) EndClass(c *model.Class) {
	d.w.Blank()
}

// Impl renders the native method definitions together with the helpers
// converting between Java objects and the declared enums and structs.
func (g *Generator) Impl() string {
	w := emit.NewWriter()
	w.Line(emit.Banner)
	w.Linef("#include \"%s\"", HeaderName(g.opts.Namespace))
	w.Linef("#include \"%s\"", g.opts.ImplHeader)
	for _, f := range g.graph.Files() {
		w.Linef("#include \"%s\"", capibe.HeaderName(f.Name))
	}
	w.Blank()
	w.Lines("#include <cstdint>", "#include <deque>", "#include <memory>", "#include <string>", "#include <vector>")
	w.Blank()
	w.Line("namespace {")
	w.Blank()
	g.helpers(w)
	g.converters(w)
	w.Line("} // namespace")
	w.Blank()
	w.Line(`extern "C" {`)
	w.Blank()
	emit.WalkClasses(&defEmitter{w: w, gen: g}, g.merged.Classes)
	w.Line(`} // extern "C"`)
	return w.String()
}

func (g *Generator) helpers(w *emit.Writer) {
	w.Line("std::string jstringToString(JNIEnv* env, jstring value) {")
	w.Indent()
	w.Line("if (!value) return std::string();")
	w.Line("const char* chars = env->GetStringUTFChars(value, nullptr);")
	w.Line("if (!chars) return std::string();")
	w.Line("std::string result(chars);")
	w.Line("env->ReleaseStringUTFChars(value, chars);")
	w.Line("return result;")
	w.Dedent()
	w.Line("}")
	w.Blank()
	w.Line("template <typename T>")
	w.Line("jlong ptrToJlong(T* ptr) {")
	w.Line("    return static_cast<jlong>(reinterpret_cast<intptr_t>(ptr));")
	w.Line("}")
	w.Blank()
	w.Line("template <typename T>")
	w.Line("T* jlongToPtr(jlong value) {")
	w.Line("    return reinterpret_cast<T*>(static_cast<intptr_t>(value));")
	w.Line("}")
	w.Blank()
	w.Line("// StringArena keeps converted strings alive for the duration of a call.")
	w.Line("class StringArena {")
	w.Line("public:")
	w.Indent()
	w.Line("const char* keep(std::string value) {")
	w.Indent()
	w.Line("items_.push_back(std::move(value));")
	w.Line("return items_.back().c_str();")
	w.Dedent()
	w.Line("}")
	w.Blank()
	w.Dedent()
	w.Line("private:")
	w.Line("    std::deque<std::string> items_;")
	w.Line("};")
	w.Blank()
	w.Line("// ByteArray pins a Java byte array and releases it on scope exit.")
	w.Line("class ByteArray {")
	w.Line("public:")
	w.Indent()
	w.Line("ByteArray(JNIEnv* env, jbyteArray array, jint mode)")
	w.Line("    : env_(env), array_(array), mode_(mode),")
	w.Line("      bytes_(array ? env->GetByteArrayElements(array, nullptr) : nullptr) {}")
	w.Line("ByteArray(const ByteArray&) = delete;")
	w.Line("ByteArray& operator=(const ByteArray&) = delete;")
	w.Line("~ByteArray() {")
	w.Line("    if (bytes_) env_->ReleaseByteArrayElements(array_, bytes_, mode_);")
	w.Line("}")
	w.Line("uint8_t* data() const { return reinterpret_cast<uint8_t*>(bytes_); }")
	w.Blank()
	w.Dedent()
	w.Line("private:")
	w.Indent()
	w.Line("JNIEnv* env_;")
	w.Line("jbyteArray array_;")
	w.Line("jint mode_;")
	w.Line("jbyte* bytes_;")
	w.Dedent()
	w.Line("};")
	w.Blank()
}

// converters writes toJava_X and toNative_X for every enum and struct.
// Prototypes come first so nested structs may refer to each other.
func (g *Generator) converters(w *emit.Writer) {
	f := g.merged
	if len(f.Enums)+len(f.Structs) == 0 {
		return
	}
	for _, e := range f.Enums {
		w.Linef("jobject toJava_%s(JNIEnv* env, ::%s value);", e.Name, e.Name)
		w.Linef("::%s toNative_%s(JNIEnv* env, jobject obj);", e.Name, e.Name)
	}
	for _, s := range f.Structs {
		w.Linef("jobject toJava_%s(JNIEnv* env, const ::%s& value);", s.Name, s.Name)
		w.Linef("::%s toNative_%s(JNIEnv* env, jobject obj, StringArena& strings);", s.Name, s.Name)
	}
	w.Blank()
	for _, e := range f.Enums {
		path := g.classPath(e.Name)
		w.Linef("jobject toJava_%s(JNIEnv* env, ::%s value) {", e.Name, e.Name)
		w.Indent()
		w.Linef("jclass cls = env->FindClass(\"%s\");", path)
		w.Linef("jmethodID fromValue = env->GetStaticMethodID(cls, \"fromValue\", \"(I)L%s;\");", path)
		w.Line("return env->CallStaticObjectMethod(cls, fromValue, static_cast<jint>(value));")
		w.Dedent()
		w.Line("}")
		w.Blank()
		w.Linef("::%s toNative_%s(JNIEnv* env, jobject obj) {", e.Name, e.Name)
		w.Indent()
		w.Linef("if (!obj) return static_cast<::%s>(0);", e.Name)
		w.Line("jclass cls = env->GetObjectClass(obj);")
		w.Line("jmethodID getValue = env->GetMethodID(cls, \"getValue\", \"()I\");")
		w.Linef("return static_cast<::%s>(env->CallIntMethod(obj, getValue));", e.Name)
		w.Dedent()
		w.Line("}")
		w.Blank()
	}
	for _, s := range f.Structs {
		g.structConverters(w, &s)
	}
}

func (g *Generator) structConverters(w *emit.Writer, s *model.Struct) {
	var ctor strings.Builder
	args := make([]string, 0, len(s.Members))
	for _, m := range s.Members {
		ctor.WriteString(g.descriptor(m.Type))
		args = append(args, g.toJavaArg("value."+m.Name, m.Type, true))
	}
	w.Linef("jobject toJava_%s(JNIEnv* env, const ::%s& value) {", s.Name, s.Name)
	w.Indent()
	w.Linef("jclass cls = env->FindClass(\"%s\");", g.classPath(s.Name))
	w.Linef("jmethodID ctor = env->GetMethodID(cls, \"<init>\", \"(%s)V\");", ctor.String())
	if len(args) == 0 {
		w.Line("return env->NewObject(cls, ctor);")
	} else {
		w.Linef("return env->NewObject(cls, ctor, %s);", strings.Join(args, ", "))
	}
	w.Dedent()
	w.Line("}")
	w.Blank()

	w.Linef("::%s toNative_%s(JNIEnv* env, jobject obj, StringArena& strings) {", s.Name, s.Name)
	w.Indent()
	w.Linef("::%s value{};", s.Name)
	w.Line("if (!obj) return value;")
	if len(s.Members) > 0 {
		w.Line("jclass cls = env->GetObjectClass(obj);")
	}
	for _, m := range s.Members {
		field := fmt.Sprintf("env->GetFieldID(cls, \"%s\", \"%s\")", m.Name, g.descriptor(m.Type))
		get := fmt.Sprintf("env->Get%sField(obj, %s)", g.accessor(m.Type), field)
		switch {
		case m.Type == "bool":
			w.Linef("value.%s = %s != JNI_FALSE ? 1 : 0;", m.Name, get)
		case m.Type == "string":
			w.Linef("value.%s = strings.keep(jstringToString(env, static_cast<jstring>(%s)));", m.Name, get)
		case g.symbols.IsEnum(m.Type):
			w.Linef("value.%s = toNative_%s(env, %s);", m.Name, m.Type, get)
		case g.symbols.IsStruct(m.Type):
			w.Linef("value.%s = toNative_%s(env, %s, strings);", m.Name, m.Type, get)
		default:
			w.Linef("value.%s = static_cast<%s>(%s);", m.Name, typemap.C.Map(m.Type), get)
		}
	}
	w.Line("return value;")
	w.Dedent()
	w.Line("}")
	w.Blank()
}
