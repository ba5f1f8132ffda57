package jnibe

import (
	"strings"

	"github.com/lhaig/idlgen/internal/emit"
	"github.com/lhaig/idlgen/internal/model"
	"github.com/lhaig/idlgen/internal/typemap"
)

// isBuffer reports whether p is a raw byte buffer, carried as byte[]
func isBuffer(p model.Param) bool {
	return p.Type == "uint8_t" && p.Pointer
}

// javaType is the public Java type of a scalar IDL type
func javaType(t string) string {
	return typemap.Java.Map(t)
}

// javaParam is the public Java type of a parameter
func javaParam(p model.Param) string {
	if isBuffer(p) {
		return "byte[]"
	}
	return javaType(p.Type)
}

// nativeJavaParam is the type a parameter takes in the native declaration
func (g *Generator) nativeJavaParam(p model.Param) string {
	if g.symbols.IsClass(p.Type) {
		return "long"
	}
	return javaParam(p)
}

// javaReturn is the public Java return type of m
func (g *Generator) javaReturn(c *model.Class, m *model.Method) string {
	if typemap.IsVector(m.ReturnType) {
		return resultClass(c, m.ReturnType)
	}
	return javaType(m.ReturnType)
}

// nativeJavaReturn is the return type of the native declaration of m
func (g *Generator) nativeJavaReturn(m *model.Method) string {
	if typemap.IsVector(m.ReturnType) || m.ReturnPointer || g.symbols.IsClass(m.ReturnType) {
		return "long"
	}
	return javaType(m.ReturnType)
}

func resultClass(c *model.Class, vector string) string {
	return emit.ClientResultName(c.Name, typemap.Elem(vector))
}

// jniType is the JNI C type carrying IDL type t across the boundary
func (g *Generator) jniType(t string) string {
	switch {
	case typemap.IsVector(t), g.symbols.IsClass(t):
		return "jlong"
	case g.symbols.IsEnum(t), g.symbols.IsStruct(t), g.symbols.IsCallback(t):
		return "jobject"
	}
	return typemap.JNI.Map(t)
}

func (g *Generator) jniParam(p model.Param) string {
	if isBuffer(p) {
		return "jbyteArray"
	}
	return g.jniType(p.Type)
}

func (g *Generator) jniReturn(m *model.Method) string {
	if m.ReturnPointer {
		return "jlong"
	}
	return g.jniType(m.ReturnType)
}

// descriptor is the JVM type descriptor of the Java form of t
func (g *Generator) descriptor(t string) string {
	if typemap.IsPrimitive(t) {
		return typemap.JNISignature.Map(t)
	}
	return "L" + g.opts.JavaPackagePath() + "/" + t + ";"
}

func (g *Generator) classPath(name string) string {
	return g.opts.JavaPackagePath() + "/" + name
}

// callbackDescriptor is the method descriptor of a callback's invoke
func (g *Generator) callbackDescriptor(cb *model.Callback) string {
	var sb strings.Builder
	sb.WriteString("(")
	for _, p := range cb.Params {
		sb.WriteString(g.descriptor(p.Type))
	}
	sb.WriteString(")")
	sb.WriteString(g.descriptor(cb.ReturnType))
	return sb.String()
}

// accessor is the suffix of the JNIEnv Get/Set/Call family for t
func (g *Generator) accessor(t string) string {
	switch t {
	case "bool":
		return "Boolean"
	case "int8_t", "uint8_t":
		return "Byte"
	case "int16_t", "uint16_t":
		return "Short"
	case "int", "int32_t", "uint32_t":
		return "Int"
	case "int64_t", "uint64_t":
		return "Long"
	case "float":
		return "Float"
	case "double":
		return "Double"
	case "void":
		return "Void"
	}
	return "Object"
}

// toJava converts the native value expr of type t to its JNI form.
// cstr marks a string held as const char*.
func (g *Generator) toJava(expr, t string, cstr bool) string {
	switch {
	case t == "bool":
		return "(" + expr + ") ? JNI_TRUE : JNI_FALSE"
	case t == "string" && cstr:
		return "env->NewStringUTF(" + expr + " ? " + expr + " : \"\")"
	case t == "string":
		return "env->NewStringUTF((" + expr + ").c_str())"
	case g.symbols.IsEnum(t), g.symbols.IsStruct(t):
		return "toJava_" + t + "(env, " + expr + ")"
	}
	return "static_cast<" + typemap.JNI.Map(t) + ">(" + expr + ")"
}

// toJavaArg is toJava for an argument list position, where the
// conditional forms need parentheses
func (g *Generator) toJavaArg(expr, t string, cstr bool) string {
	s := g.toJava(expr, t, cstr)
	if t == "bool" {
		return "(" + s + ")"
	}
	return s
}

// sentinel is the JNI return value of a failed call returning t
func (g *Generator) sentinel(t string, pointer bool) string {
	switch {
	case t == "void":
		return ""
	case pointer, typemap.IsVector(t), g.symbols.IsClass(t):
		return "0"
	case t == "bool":
		return "JNI_FALSE"
	case typemap.IsSigned(t):
		return "-1"
	case typemap.IsNumeric(t):
		return "0"
	}
	return "nullptr"
}

func fail(sentinel string) string {
	if sentinel == "" {
		return "return;"
	}
	return "return " + sentinel + ";"
}
