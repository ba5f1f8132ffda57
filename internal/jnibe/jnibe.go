// Package jnibe generates the JNI binding of the whole module: a native
// header and implementation calling the C++ classes directly, and the
// Java classes that load them.
package jnibe

import (
	"path"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/lhaig/idlgen/internal/emit"
	"github.com/lhaig/idlgen/internal/model"
	"github.com/lhaig/idlgen/internal/module"
)

var log = commonlog.GetLogger("idlgen.jnibe")

// JavaDir prefixes every generated Java source. Drivers may relocate it.
const JavaDir = "java"

// HeaderName is the JNI header for namespace ns
func HeaderName(ns string) string { return ns + "_jni.h" }

// ImplName is the JNI implementation for namespace ns
func ImplName(ns string) string { return ns + "_jni.cpp" }

// LibraryName is the shared library the Java classes load
func LibraryName(ns string) string { return ns + "_jni" }

// Escape applies JNI name mangling to one identifier: '_' becomes "_1".
func Escape(ident string) string {
	return strings.ReplaceAll(ident, "_", "_1")
}

// NativeSymbol is the exported C name of a static native method:
// Java_ followed by the mangled package, class and method.
func NativeSymbol(pkg, class, method string) string {
	mangled := strings.ReplaceAll(Escape(pkg), ".", "_")
	return "Java_" + mangled + "_" + Escape(class) + "_" + Escape(method)
}

// nativeName is the Java name of the native counterpart of a method
func nativeName(method string) string {
	return "native" + strings.ToUpper(method[:1]) + method[1:]
}

// Generator emits the JNI artifacts of a resolved module graph.
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

// Generate returns every JNI and Java artifact keyed by file name. Java
// sources are placed under java/<package path>/.
func Generate(g *module.Graph, opts emit.Options) (map[string]string, error) {
	gen := New(g, opts)
	ns := gen.opts.Namespace
	out := map[string]string{
		HeaderName(ns): gen.Header(),
		ImplName(ns):   gen.Impl(),
	}
	if len(gen.merged.Enums)+len(gen.merged.Structs)+len(gen.merged.Callbacks) > 0 {
		out[gen.javaPath("Types")] = gen.JavaTypes()
	}
	for i := range gen.merged.Classes {
		c := &gen.merged.Classes[i]
		out[gen.javaPath(c.Name)] = gen.JavaClass(c)
		for _, elem := range emit.ResultElems(c) {
			out[gen.javaPath(emit.ClientResultName(c.Name, elem))] = gen.JavaResult(c, elem)
		}
	}
	log.Debugf("generated JNI binding in package %s", gen.opts.JavaPackage)
	return out, nil
}

func (g *Generator) javaPath(class string) string {
	return path.Join(JavaDir, g.opts.JavaPackagePath(), class+".java")
}

func (g *Generator) native(class string) string {
	return g.opts.Namespace + "::" + class
}

func (g *Generator) symbol(class, method string) string {
	return NativeSymbol(g.opts.JavaPackage, class, method)
}
