package jnibe

import (
	"fmt"
	"strings"

	"github.com/lhaig/idlgen/internal/emit"
	"github.com/lhaig/idlgen/internal/model"
	"github.com/lhaig/idlgen/internal/typemap"
)

func (g *Generator) javaPreamble(w *emit.Writer) {
	w.Line(emit.Banner)
	w.Linef("package %s;", g.opts.JavaPackage)
	w.Blank()
}

func (g *Generator) loadLibrary(w *emit.Writer) {
	w.Line("static {")
	w.Linef("    System.loadLibrary(\"%s\");", LibraryName(g.opts.Namespace))
	w.Line("}")
	w.Blank()
}

// JavaTypes renders the package-private enums, structs and callback
// interfaces shared by the class wrappers.
func (g *Generator) JavaTypes() string {
	w := emit.NewWriter()
	g.javaPreamble(w)
	for _, e := range g.merged.Enums {
		javaEnum(w, &e)
	}
	for _, s := range g.merged.Structs {
		javaStruct(w, &s)
	}
	for _, cb := range g.merged.Callbacks {
		w.Line("@FunctionalInterface")
		w.Linef("interface %s {", cb.Name)
		params := make([]string, 0, len(cb.Params))
		for _, p := range cb.Params {
			params = append(params, javaType(p.Type)+" "+p.Name)
		}
		w.Linef("    %s invoke(%s);", javaType(cb.ReturnType), strings.Join(params, ", "))
		w.Line("}")
		w.Blank()
	}
	return w.String()
}

func javaEnum(w *emit.Writer, e *model.Enum) {
	w.Linef("enum %s {", e.Name)
	w.Indent()
	for i, v := range e.Values {
		sep := ","
		if i == len(e.Values)-1 {
			sep = ";"
		}
		w.Linef("%s(%d)%s", v.Name, v.Value, sep)
	}
	if len(e.Values) == 0 {
		w.Line(";")
	}
	w.Blank()
	w.Line("private final int value;")
	w.Blank()
	w.Linef("%s(int value) {", e.Name)
	w.Line("    this.value = value;")
	w.Line("}")
	w.Blank()
	w.Line("public int getValue() {")
	w.Line("    return value;")
	w.Line("}")
	w.Blank()
	w.Linef("public static %s fromValue(int value) {", e.Name)
	w.Indent()
	w.Linef("for (%s candidate : values()) {", e.Name)
	w.Line("    if (candidate.value == value) {")
	w.Line("        return candidate;")
	w.Line("    }")
	w.Line("}")
	w.Linef("throw new IllegalArgumentException(\"Unknown %s value: \" + value);", e.Name)
	w.Dedent()
	w.Line("}")
	w.Dedent()
	w.Line("}")
	w.Blank()
}

func javaStruct(w *emit.Writer, s *model.Struct) {
	w.Linef("class %s {", s.Name)
	w.Indent()
	params := make([]string, 0, len(s.Members))
	for _, m := range s.Members {
		w.Linef("public %s %s;", javaType(m.Type), m.Name)
		params = append(params, javaType(m.Type)+" "+m.Name)
	}
	w.Blank()
	w.Linef("public %s() {", s.Name)
	w.Line("}")
	if len(params) > 0 {
		w.Blank()
		w.Linef("public %s(%s) {", s.Name, strings.Join(params, ", "))
		for _, m := range s.Members {
			w.Linef("    this.%s = %s;", m.Name, m.Name)
		}
		w.Line("}")
	}
	w.Dedent()
	w.Line("}")
	w.Blank()
}

// JavaClass renders the AutoCloseable wrapper owning one native object.
func (g *Generator) JavaClass(c *model.Class) string {
	w := emit.NewWriter()
	g.javaPreamble(w)
	w.Linef("public class %s implements AutoCloseable {", c.Name)
	w.Blank()
	w.Indent()
	g.loadLibrary(w)
	w.Line("private long nativeHandle;")
	w.Blank()

	var natives []string
	if ctor := c.Constructor(); ctor != nil {
		w.Linef("public %s(%s) {", c.Name, g.javaParams(ctor.Params))
		w.Indent()
		w.Linef("this.nativeHandle = nativeCreate(%s);", g.javaArgs(ctor.Params))
		w.Line("if (this.nativeHandle == 0) {")
		w.Linef("    throw new RuntimeException(\"Failed to create %s\");", c.Name)
		w.Line("}")
		w.Dedent()
		w.Line("}")
		w.Blank()
		natives = append(natives, fmt.Sprintf("private static native long nativeCreate(%s);", g.nativeParams(ctor.Params, false)))
	}
	natives = append(natives, "private static native void nativeDestroy(long handle);")

	w.Linef("%s(long nativeHandle, Void adopt) {", c.Name)
	w.Line("    this.nativeHandle = nativeHandle;")
	w.Line("}")
	w.Blank()
	w.Line("long handle() {")
	w.Line("    return nativeHandle;")
	w.Line("}")
	w.Blank()
	w.Line("@Override")
	w.Line("public void close() {")
	w.Line("    if (nativeHandle != 0) {")
	w.Line("        nativeDestroy(nativeHandle);")
	w.Line("        nativeHandle = 0;")
	w.Line("    }")
	w.Line("}")
	w.Blank()

	for _, m := range c.Operations() {
		native := nativeName(m.Name)
		call := fmt.Sprintf("%s(%s)", native, joinArgs("nativeHandle", g.javaArgs(m.Params)))
		w.Linef("public %s %s(%s) {", g.javaReturn(c, &m), m.Name, g.javaParams(m.Params))
		w.Indent()
		switch {
		case typemap.IsVector(m.ReturnType):
			w.Linef("return new %s(%s);", resultClass(c, m.ReturnType), call)
		case g.symbols.IsClass(m.ReturnType):
			w.Linef("long result = %s;", call)
			w.Linef("return result == 0 ? null : new %s(result, (Void) null);", m.ReturnType)
		case m.ReturnType == "void":
			w.Linef("%s;", call)
		default:
			w.Linef("return %s;", call)
		}
		w.Dedent()
		w.Line("}")
		w.Blank()
		natives = append(natives, fmt.Sprintf("private static native %s %s(%s);", g.nativeJavaReturn(&m), native, g.nativeParams(m.Params, true)))
	}
	for _, attr := range c.Attributes {
		native := nativeName(attr.Getter())
		w.Linef("public %s %s() {", javaType(attr.Type), attr.Getter())
		w.Linef("    return %s(nativeHandle);", native)
		w.Line("}")
		w.Blank()
		natives = append(natives, fmt.Sprintf("private static native %s %s(long handle);", javaType(attr.Type), native))
	}
	w.Lines(natives...)
	w.Dedent()
	w.Line("}")
	return w.String()
}

// JavaResult renders the wrapper owning the vector returned by a method.
func (g *Generator) JavaResult(c *model.Class, elem string) string {
	name := emit.ClientResultName(c.Name, elem)
	item := javaType(elem)
	w := emit.NewWriter()
	g.javaPreamble(w)
	w.Line("import java.util.ArrayList;")
	w.Line("import java.util.List;")
	w.Blank()
	w.Linef("public class %s implements AutoCloseable {", name)
	w.Blank()
	w.Indent()
	g.loadLibrary(w)
	w.Line("private long nativeResult;")
	w.Blank()
	w.Linef("%s(long nativeResult) {", name)
	w.Line("    this.nativeResult = nativeResult;")
	w.Line("}")
	w.Blank()
	w.Line("public int count() {")
	w.Line("    return nativeCount(nativeResult);")
	w.Line("}")
	w.Blank()
	w.Linef("public %s get(int index) {", item)
	w.Line("    return nativeGet(nativeResult, index);")
	w.Line("}")
	w.Blank()
	w.Linef("public List<%s> toList() {", typemap.Boxed(item))
	w.Indent()
	w.Line("int n = count();")
	w.Linef("List<%s> items = new ArrayList<>(Math.max(n, 0));", typemap.Boxed(item))
	w.Line("for (int i = 0; i < n; i++) {")
	w.Line("    items.add(get(i));")
	w.Line("}")
	w.Line("return items;")
	w.Dedent()
	w.Line("}")
	w.Blank()
	w.Line("@Override")
	w.Line("public void close() {")
	w.Line("    if (nativeResult != 0) {")
	w.Line("        nativeFree(nativeResult);")
	w.Line("        nativeResult = 0;")
	w.Line("    }")
	w.Line("}")
	w.Blank()
	w.Line("private static native int nativeCount(long result);")
	w.Linef("private static native %s nativeGet(long result, int index);", item)
	w.Line("private static native void nativeFree(long result);")
	w.Dedent()
	w.Line("}")
	return w.String()
}

func (g *Generator) javaParams(params []model.Param) string {
	out := make([]string, 0, len(params))
	for _, p := range params {
		out = append(out, javaParam(p)+" "+p.Name)
	}
	return strings.Join(out, ", ")
}

func (g *Generator) nativeParams(params []model.Param, handle bool) string {
	var out []string
	if handle {
		out = append(out, "long handle")
	}
	for _, p := range params {
		out = append(out, g.nativeJavaParam(p)+" "+p.Name)
	}
	return strings.Join(out, ", ")
}

// javaArgs passes class wrappers by their native handle.
func (g *Generator) javaArgs(params []model.Param) string {
	out := make([]string, 0, len(params))
	for _, p := range params {
		if g.symbols.IsClass(p.Type) {
			out = append(out, fmt.Sprintf("%s == null ? 0 : %s.handle()", p.Name, p.Name))
			continue
		}
		out = append(out, p.Name)
	}
	return strings.Join(out, ", ")
}

func joinArgs(first, rest string) string {
	if rest == "" {
		return first
	}
	return first + ", " + rest
}
