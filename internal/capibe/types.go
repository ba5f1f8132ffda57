package capibe

import (
	"strings"

	"github.com/lhaig/idlgen/internal/emit"
	"github.com/lhaig/idlgen/internal/model"
	"github.com/lhaig/idlgen/internal/module"
	"github.com/lhaig/idlgen/internal/typemap"
)

// Types renders model types in their C ABI spelling.
type Types struct {
	symbols *module.SymbolTable
	mapper  typemap.Mapper
}

// Param renders a method or constructor parameter declaration
func (ct Types) Param(p model.Param) string {
	kind := ct.symbols.Kind(p.Type)
	switch {
	case p.Type == "string":
		return "const char* " + p.Name
	case kind == model.KindCallback:
		return p.Type + " " + p.Name
	case kind == model.KindClass:
		if p.Const {
			return "const " + emit.HandleType(p.Type) + "* " + p.Name
		}
		return emit.HandleType(p.Type) + "* " + p.Name
	case kind == model.KindStruct && p.Reference && !p.Const:
		return p.Type + "* " + p.Name
	case p.Reference:
		return ct.mapper.Map(p.Type) + " " + p.Name
	}
	base := ct.mapper.Map(p.Type)
	if p.Const && p.Pointer {
		base = "const " + base
	}
	if p.Pointer {
		return base + "* " + p.Name
	}
	return base + " " + p.Name
}

// Params renders a parameter list without the leading handle
func (ct Types) Params(params []model.Param) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, ct.Param(p))
	}
	return strings.Join(parts, ", ")
}

// CallbackParam renders a callback parameter. Structs taken by reference
// cross the C boundary as pointers.
func (ct Types) CallbackParam(p model.Param) string {
	base := ct.mapper.Map(p.Type)
	if p.Type == "string" {
		return base + " " + p.Name
	}
	if p.Reference && ct.symbols.IsStruct(p.Type) {
		if p.Const {
			return "const " + base + "* " + p.Name
		}
		return base + "* " + p.Name
	}
	if p.Const && p.Pointer {
		base = "const " + base
	}
	if p.Pointer {
		return base + "* " + p.Name
	}
	return base + " " + p.Name
}

// Return renders the C return type of a method
func (ct Types) Return(class string, m *model.Method) string {
	switch {
	case typemap.IsVector(m.ReturnType):
		return emit.CResultName(class, typemap.Elem(m.ReturnType)) + "*"
	case m.ReturnPointer:
		return emit.HandleType(m.ReturnType) + "*"
	}
	return ct.mapper.Map(m.ReturnType)
}

// orVoid renders an empty C parameter list as void
func orVoid(params string) string {
	if params == "" {
		return "void"
	}
	return params
}

// NewTypes returns the C ABI spelling rules for the types in symbols
func NewTypes(symbols *module.SymbolTable) Types {
	return Types{symbols: symbols, mapper: typemap.C}
}
