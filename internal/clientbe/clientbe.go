// Package clientbe generates the native C++ client: RAII wrapper classes
// that load the C ABI from a shared library at run time. All per-file
// clients share one process-wide library handle declared in
// idl_client.hpp.
package clientbe

import (
	"github.com/tliron/commonlog"

	"github.com/lhaig/idlgen/internal/capibe"
	"github.com/lhaig/idlgen/internal/emit"
	"github.com/lhaig/idlgen/internal/module"
)

var log = commonlog.GetLogger("idlgen.clientbe")

// SharedHeader is the header holding the process-wide library handle
const SharedHeader = "idl_client.hpp"

// HeaderName is the client header generated for an IDL file
func HeaderName(stem string) string { return stem + "_client.hpp" }

// ImplName is the client implementation generated for an IDL file
func ImplName(stem string) string { return stem + "_client.cpp" }

// Generator emits the native client artifacts of a resolved module graph.
type Generator struct {
	graph   *module.Graph
	opts    emit.Options
	symbols *module.SymbolTable
	c       capibe.Types
}

// New creates a Generator for g
func New(g *module.Graph, opts emit.Options) *Generator {
	return &Generator{
		graph:   g,
		opts:    opts.WithDefaults(),
		symbols: g.Symbols(),
		c:       capibe.NewTypes(g.Symbols()),
	}
}

// Generate returns every client artifact keyed by file name
func Generate(g *module.Graph, opts emit.Options) (map[string]string, error) {
	gen := New(g, opts)
	out := map[string]string{SharedHeader: LoaderHeader()}
	for _, file := range g.Files() {
		f := g.Owned(file.Name)
		out[HeaderName(f.Name)] = gen.Header(f)
		out[ImplName(f.Name)] = gen.Impl(f)
		log.Debugf("generated client for %s", f.Name)
	}
	return out, nil
}

// Namespace is the C++ namespace of the client classes
func (g *Generator) Namespace() string {
	return g.opts.Namespace + "_client"
}

// LoaderHeader returns idl_client.hpp. The library handle lives in a
// function-local static so every translation unit shares it.
func LoaderHeader() string {
	w := emit.NewWriter()
	w.Line(emit.Banner)
	w.Line("#ifndef IDL_CLIENT_HPP")
	w.Line("#define IDL_CLIENT_HPP")
	w.Blank()
	w.Line("#ifdef _WIN32")
	w.Line("#include <windows.h>")
	w.Line("#else")
	w.Line("#include <dlfcn.h>")
	w.Line("#endif")
	w.Blank()
	w.Line("#include <string>")
	w.Blank()
	w.Line("namespace idl_client {")
	w.Blank()
	w.Line("namespace detail {")
	w.Blank()
	w.Line("inline void*& libraryHandle() {")
	w.Indent()
	w.Line("static void* handle = nullptr;")
	w.Line("return handle;")
	w.Dedent()
	w.Line("}")
	w.Blank()
	w.Line("inline void* loadSymbol(const char* name) {")
	w.Line("#ifdef _WIN32")
	w.Indent()
	w.Line("return reinterpret_cast<void*>(GetProcAddress(static_cast<HMODULE>(libraryHandle()), name));")
	w.Dedent()
	w.Line("#else")
	w.Indent()
	w.Line("return dlsym(libraryHandle(), name);")
	w.Dedent()
	w.Line("#endif")
	w.Line("}")
	w.Blank()
	w.Line("inline bool loadLibrary(const std::string& path) {")
	w.Indent()
	w.Line("if (libraryHandle()) return true;")
	w.Dedent()
	w.Line("#ifdef _WIN32")
	w.Indent()
	w.Line("libraryHandle() = LoadLibraryA(path.c_str());")
	w.Dedent()
	w.Line("#else")
	w.Indent()
	w.Line("libraryHandle() = dlopen(path.c_str(), RTLD_NOW);")
	w.Dedent()
	w.Line("#endif")
	w.Indent()
	w.Line("return libraryHandle() != nullptr;")
	w.Dedent()
	w.Line("}")
	w.Blank()
	w.Line("} // namespace detail")
	w.Blank()
	w.Line("inline bool initialize(const std::string& libraryPath) {")
	w.Indent()
	w.Line("return detail::loadLibrary(libraryPath);")
	w.Dedent()
	w.Line("}")
	w.Blank()
	w.Line("inline bool isInitialized() {")
	w.Indent()
	w.Line("return detail::libraryHandle() != nullptr;")
	w.Dedent()
	w.Line("}")
	w.Blank()
	w.Line("} // namespace idl_client")
	w.Blank()
	w.Line("#endif // IDL_CLIENT_HPP")
	return w.String()
}
