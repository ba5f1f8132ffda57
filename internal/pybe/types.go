package pybe

import (
	"strings"

	"github.com/lhaig/idlgen/internal/model"
	"github.com/lhaig/idlgen/internal/typemap"
)

// ctype is the ctypes spelling of a scalar C ABI type. Enums cross as
// int and handles as void pointers.
func (g *Generator) ctype(t string) string {
	switch {
	case typemap.IsVector(t), g.symbols.IsClass(t):
		return "c_void_p"
	case g.symbols.IsEnum(t):
		return "c_int"
	}
	return typemap.Ctypes.Map(t)
}

// argtype mirrors the C ABI parameter rules: class handles and byte
// buffers are pointers, structs taken by mutable reference or pointer are
// passed by address and other references by value.
func (g *Generator) argtype(p model.Param) string {
	switch {
	case p.Type == "uint8_t" && p.Pointer:
		return "POINTER(c_uint8)"
	case g.symbols.IsCallback(p.Type):
		return p.Type
	case g.symbols.IsStruct(p.Type) && (p.Pointer || p.Reference && !p.Const):
		return "POINTER(" + p.Type + ")"
	}
	return g.ctype(p.Type)
}

func (g *Generator) argtypes(params []model.Param) []string {
	out := make([]string, 0, len(params))
	for _, p := range params {
		out = append(out, g.argtype(p))
	}
	return out
}

// callbackCtype is the ctypes type of a callback parameter. Structs taken
// by reference arrive as pointers.
func (g *Generator) callbackCtype(p model.Param) string {
	if g.structPointer(p) {
		return "POINTER(" + p.Type + ")"
	}
	return g.ctype(p.Type)
}

func (g *Generator) structPointer(p model.Param) bool {
	return g.symbols.IsStruct(p.Type) && (p.Pointer || p.Reference)
}

func (g *Generator) restype(m *model.Method) string {
	if m.ReturnPointer {
		return "c_void_p"
	}
	return g.ctype(m.ReturnType)
}

// hint is the Python type annotation of t
func (g *Generator) hint(t string) string {
	if cb := g.symbols.Callback(t); cb != nil {
		params := make([]string, 0, len(cb.Params))
		for _, p := range cb.Params {
			params = append(params, g.hint(p.Type))
		}
		return "Callable[[" + strings.Join(params, ", ") + "], " + g.hint(cb.ReturnType) + "]"
	}
	if typemap.IsVector(t) {
		return "List[" + g.hint(typemap.Elem(t)) + "]"
	}
	return typemap.Python.Map(t)
}

func (g *Generator) paramHint(p model.Param) string {
	switch {
	case p.Type == "uint8_t" && p.Pointer:
		return "bytes"
	case g.symbols.IsClass(p.Type) && p.Pointer:
		return "Optional[" + p.Type + "]"
	}
	return g.hint(p.Type)
}

func (g *Generator) returnHint(m *model.Method) string {
	switch {
	case m.ReturnPointer:
		return "Optional[" + m.ReturnType + "]"
	case m.ReturnType == "string":
		return "Optional[str]"
	}
	return g.hint(m.ReturnType)
}

// fromC converts a value received from C to its Python form. pointer
// marks a struct received by address.
func (g *Generator) fromC(expr, t string, pointer bool) string {
	switch {
	case pointer:
		return expr + ".contents if " + expr + " else None"
	case t == "string":
		return "_decode(" + expr + ")"
	case t == "bool":
		return "bool(" + expr + ")"
	case g.symbols.IsEnum(t):
		return t + "(" + expr + ")"
	}
	return expr
}

// toC converts a Python argument to what the C ABI expects
func (g *Generator) toC(p model.Param) string {
	switch {
	case p.Type == "uint8_t" && p.Pointer:
		return "_buffer(" + p.Name + ")"
	case p.Type == "string":
		return "_encode(" + p.Name + ")"
	case p.Type == "bool":
		return "1 if " + p.Name + " else 0"
	case g.symbols.IsEnum(p.Type):
		return "int(" + p.Name + ")"
	case g.symbols.IsCallback(p.Type):
		return "_" + p.Name
	case g.symbols.IsClass(p.Type):
		return p.Name + "._handle if " + p.Name + " is not None else None"
	case g.symbols.IsStruct(p.Type) && p.Pointer:
		return "ctypes.byref(" + p.Name + ") if " + p.Name + " is not None else None"
	case g.symbols.IsStruct(p.Type) && p.Reference && !p.Const:
		return "ctypes.byref(" + p.Name + ")"
	}
	return p.Name
}
