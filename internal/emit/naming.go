package emit

import (
	"sort"

	"github.com/iancoleman/strcase"
	"github.com/lhaig/idlgen/internal/model"
	"github.com/lhaig/idlgen/internal/module"
	"github.com/lhaig/idlgen/internal/typemap"
)

// The C ABI symbol names below are shared by every backend. The client,
// JNI and Python artifacts call into the C ABI or mirror its layout, so
// these functions are the single source for them.

// HandleType is the opaque C handle type of a class
func HandleType(class string) string { return class + "Handle" }

// CreateSymbol is the C ABI constructor of a class
func CreateSymbol(class string) string { return class + "_create" }

// DestroySymbol is the C ABI destructor of a class
func DestroySymbol(class string) string { return class + "_destroy" }

// MethodSymbol is the C ABI function of a class method
func MethodSymbol(class, method string) string { return class + "_" + method }

// GetterSymbol is the C ABI accessor of a class attribute
func GetterSymbol(class string, attr model.Member) string {
	return class + "_" + attr.Getter()
}

// CResultName is the C result container type for vector<elem> returns of
// class.
func CResultName(class, elem string) string {
	return class + "_" + elem + "_CResult"
}

// ResultCountSymbol returns the element count accessor of a C result
func ResultCountSymbol(result string) string { return result + "_getCount" }

// ResultDataSymbol returns the data accessor of a C result
func ResultDataSymbol(result string) string { return result + "_getData" }

// ResultFreeSymbol returns the deallocator of a C result
func ResultFreeSymbol(result string) string { return result + "_free" }

// ClientResultName is the wrapper class around a C result in the
// high-level bindings: Geometry and Point give GeometryPointResult,
// uint8_t gives GeometryUint8TResult.
func ClientResultName(class, elem string) string {
	return class + strcase.ToCamel(elem) + "Result"
}

// ResultElems returns the distinct vector element types returned by the
// methods of c, sorted by name.
func ResultElems(c *model.Class) []string {
	seen := make(map[string]bool)
	var elems []string
	for _, m := range c.Operations() {
		if !typemap.IsVector(m.ReturnType) {
			continue
		}
		elem := typemap.Elem(m.ReturnType)
		if !seen[elem] {
			seen[elem] = true
			elems = append(elems, elem)
		}
	}
	sort.Strings(elems)
	return elems
}

// HasStringReturn reports whether any method of c returns a string
func HasStringReturn(c *model.Class) bool {
	for _, m := range c.Operations() {
		if m.ReturnType == "string" {
			return true
		}
	}
	return false
}

// CallbackNeedsAdapter reports whether cb takes a struct by reference or
// a string. The C signature passes those as pointers, so the native side
// needs an adapter closure at the call site.
func CallbackNeedsAdapter(cb *model.Callback, symbols *module.SymbolTable) bool {
	for _, p := range cb.Params {
		if p.Type == "string" || (p.Reference && symbols.IsStruct(p.Type)) {
			return true
		}
	}
	return false
}

// ReturnSentinel classifies what a generated method returns when its
// handle is invalid
func ReturnSentinel(m *model.Method, symbols *module.SymbolTable) typemap.Sentinel {
	return typemap.SentinelFor(m.ReturnType, symbols.Kind(typemap.Elem(m.ReturnType)), m.ReturnPointer)
}

// GetterSentinel classifies what a generated attribute getter returns
// when its handle is invalid
func GetterSentinel(attr model.Member, symbols *module.SymbolTable) typemap.Sentinel {
	return typemap.SentinelFor(attr.Type, symbols.Kind(attr.Type), false)
}

// CppSentinel is the C++ expression a high-level wrapper returns for type
// t when its handle is null
func CppSentinel(symbols *module.SymbolTable, t string) string {
	switch {
	case t == "bool":
		return "false"
	case t == "string":
		return "std::string()"
	case typemap.IsSigned(t):
		return "-1"
	case typemap.IsNumeric(t):
		return "0"
	case symbols.IsEnum(t):
		return "static_cast<" + t + ">(0)"
	}
	return t + "{}"
}
