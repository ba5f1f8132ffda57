package pybe

import (
	"strings"

	"github.com/lhaig/idlgen/internal/emit"
	"github.com/lhaig/idlgen/internal/model"
	"github.com/lhaig/idlgen/internal/typemap"
)

// class writes the context-manager wrapper owning one native handle.
func (g *Generator) class(w *emit.Writer, c *model.Class) {
	w.Linef("class %s:", c.Name)
	w.Indent()
	w.Linef("\"\"\"Owns a native %s; close it or use it as a context manager.\"\"\"", c.Name)
	w.Blank()
	if ctor := c.Constructor(); ctor != nil {
		w.Linef("def __init__(%s):", g.signature(ctor.Params))
		w.Indent()
		w.Line("self._callbacks = []")
		g.prepare(w, ctor.Params)
		w.Linef("self._handle = _lib.%s(%s)", emit.CreateSymbol(c.Name), g.args(ctor.Params))
		w.Line("if not self._handle:")
		w.Linef("    raise RuntimeError(\"Failed to create %s\")", c.Name)
		w.Dedent()
	} else {
		w.Line("def __init__(self):")
		w.Linef("    raise TypeError(\"%s has no constructor\")", c.Name)
	}
	w.Blank()
	w.Line("@classmethod")
	w.Line("def _adopt(cls, handle):")
	w.Indent()
	w.Line("if not handle:")
	w.Line("    return None")
	w.Line("obj = cls.__new__(cls)")
	w.Line("obj._callbacks = []")
	w.Line("obj._handle = handle")
	w.Line("return obj")
	w.Dedent()
	w.Blank()
	w.Line("def close(self) -> None:")
	w.Indent()
	w.Line("if getattr(self, \"_handle\", None):")
	w.Linef("    _lib.%s(self._handle)", emit.DestroySymbol(c.Name))
	w.Line("    self._handle = None")
	w.Dedent()
	w.Blank()
	w.Line("def __del__(self):")
	w.Line("    self.close()")
	w.Blank()
	w.Line("def __enter__(self):")
	w.Line("    return self")
	w.Blank()
	w.Line("def __exit__(self, exc_type, exc_val, exc_tb):")
	w.Line("    self.close()")
	w.Line("    return False")

	for _, m := range c.Operations() {
		w.Blank()
		g.method(w, c, &m)
	}
	for _, attr := range c.Attributes {
		w.Blank()
		w.Line("@property")
		w.Linef("def %s(self) -> %s:", attr.Name, g.hint(attr.Type))
		w.Linef("    return %s", g.fromC("_lib."+emit.GetterSymbol(c.Name, attr)+"(self._handle)", attr.Type, false))
	}
	w.Dedent()
	w.Blank()
	w.Blank()
}

func (g *Generator) method(w *emit.Writer, c *model.Class, m *model.Method) {
	w.Linef("def %s(%s) -> %s:", m.Name, g.signature(m.Params), g.returnHint(m))
	w.Indent()
	g.prepare(w, m.Params)
	args := "self._handle"
	if rest := g.args(m.Params); rest != "" {
		args += ", " + rest
	}
	call := "_lib." + emit.MethodSymbol(c.Name, m.Name) + "(" + args + ")"
	switch {
	case typemap.IsVector(m.ReturnType):
		elem := typemap.Elem(m.ReturnType)
		result := emit.CResultName(c.Name, elem)
		collect := []string{
			call,
			"_lib." + emit.ResultCountSymbol(result),
			"_lib." + emit.ResultDataSymbol(result),
			"_lib." + emit.ResultFreeSymbol(result),
		}
		switch {
		case g.symbols.IsStruct(elem):
			collect = append(collect, elem+".from_buffer_copy")
		case g.symbols.IsEnum(elem):
			collect = append(collect, elem)
		}
		w.Linef("return _collect(%s)", strings.Join(collect, ", "))
	case m.ReturnPointer:
		w.Linef("return %s._adopt(%s)", m.ReturnType, call)
	case m.ReturnType == "void":
		w.Line(call)
	default:
		w.Linef("return %s", g.fromC(call, m.ReturnType, false))
	}
	w.Dedent()
}

func (g *Generator) signature(params []model.Param) string {
	parts := []string{"self"}
	for _, p := range params {
		parts = append(parts, p.Name+": "+g.paramHint(p))
	}
	return strings.Join(parts, ", ")
}

// prepare wraps callables in their CFUNCTYPE and keeps them alive as long
// as the wrapper.
func (g *Generator) prepare(w *emit.Writer, params []model.Param) {
	for _, p := range params {
		if g.symbols.IsCallback(p.Type) {
			w.Linef("_%s = %s(%s)", p.Name, wrapCallback(p.Type), p.Name)
			w.Linef("self._callbacks.append(_%s)", p.Name)
		}
	}
}

func (g *Generator) args(params []model.Param) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, g.toC(p))
	}
	return strings.Join(parts, ", ")
}
