package clientbe

import (
	"strings"

	"github.com/lhaig/idlgen/internal/emit"
	"github.com/lhaig/idlgen/internal/model"
	"github.com/lhaig/idlgen/internal/typemap"
)

// returnType is the client return type of a method
func returnType(c *model.Class, m *model.Method) string {
	switch {
	case typemap.IsVector(m.ReturnType):
		return emit.ClientResultName(c.Name, typemap.Elem(m.ReturnType))
	case m.ReturnPointer:
		return m.ReturnType
	}
	return typemap.Cpp.Map(m.ReturnType)
}

// param renders a client method parameter. Strings, classes and
// callbacks are taken by const reference.
func (g *Generator) param(p model.Param) string {
	kind := g.symbols.Kind(p.Type)
	base := typemap.Cpp.Map(p.Type)
	switch {
	case p.Type == "string" || kind == model.KindCallback:
		return "const " + base + "& " + p.Name
	case kind == model.KindClass && !p.Pointer:
		if p.Reference && !p.Const {
			return base + "& " + p.Name
		}
		return "const " + base + "& " + p.Name
	}
	if p.Const && (p.Pointer || p.Reference) {
		base = "const " + base
	}
	switch {
	case p.Pointer:
		return base + "* " + p.Name
	case p.Reference:
		return base + "& " + p.Name
	}
	return base + " " + p.Name
}

func (g *Generator) params(params []model.Param) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, g.param(p))
	}
	return strings.Join(parts, ", ")
}

// cArg converts a client argument to the form the C ABI takes
func (g *Generator) cArg(p model.Param) string {
	kind := g.symbols.Kind(p.Type)
	switch {
	case p.Type == "string":
		return p.Name + ".c_str()"
	case p.Type == "bool":
		return p.Name + " ? 1 : 0"
	case kind == model.KindCallback:
		return "callback_wrapper_" + p.Name
	case kind == model.KindClass && p.Pointer:
		return p.Name + " ? " + p.Name + "->handle() : nullptr"
	case kind == model.KindClass:
		return p.Name + ".handle()"
	case kind == model.KindStruct && p.Reference && !p.Const:
		return "&" + p.Name
	}
	return p.Name
}

// callbackArg converts a C callback argument back to its client form
func (g *Generator) callbackArg(p model.Param) string {
	switch {
	case p.Type == "string":
		return "std::string(" + p.Name + " ? " + p.Name + " : \"\")"
	case p.Type == "bool":
		return p.Name + " != 0"
	case p.Reference && g.symbols.IsStruct(p.Type):
		return "*" + p.Name
	}
	return p.Name
}

// callbackSignature is the std::function type of a client callback
func (g *Generator) callbackSignature(cb *model.Callback) string {
	params := make([]string, 0, len(cb.Params))
	for _, p := range cb.Params {
		base := typemap.Cpp.Map(p.Type)
		switch {
		case p.Type == "string":
			params = append(params, "const std::string&")
		case p.Reference:
			if p.Const {
				base = "const " + base
			}
			params = append(params, base+"&")
		case p.Pointer:
			if p.Const {
				base = "const " + base
			}
			params = append(params, base+"*")
		default:
			params = append(params, base)
		}
	}
	return "std::function<" + typemap.Cpp.Map(cb.ReturnType) + "(" + strings.Join(params, ", ") + ")>"
}
