// Package formatter prints IDL files in canonical form.
package formatter

import (
	"fmt"
	"strings"

	"github.com/lhaig/idlgen/internal/emit"
	"github.com/lhaig/idlgen/internal/model"
)

// Format returns the canonical IDL source of f. Declarations are printed
// enums first, then structs, callbacks and classes, each in declaration
// order. Enumerator values are spelled out only where the source did.
// Comments are not preserved.
func Format(f *model.File) string {
	p := &printer{w: emit.NewWriter()}
	p.file(f)
	return p.w.String()
}

type printer struct {
	w       *emit.Writer
	started bool
}

// decl separates top-level declarations with one blank line
func (p *printer) decl() {
	if p.started {
		p.w.Blank()
	}
	p.started = true
}

func (p *printer) file(f *model.File) {
	for i := range f.Enums {
		p.decl()
		p.enum(&f.Enums[i])
	}
	for i := range f.Structs {
		p.decl()
		p.structDecl(&f.Structs[i])
	}
	if len(f.Callbacks) > 0 {
		p.decl()
		for _, cb := range f.Callbacks {
			p.w.Linef("callback %s(%s) -> %s;", cb.Name, params(cb.Params), cb.ReturnType)
		}
	}
	for i := range f.Classes {
		p.decl()
		p.class(&f.Classes[i])
	}
}

func (p *printer) enum(e *model.Enum) {
	if len(e.Values) == 0 {
		p.w.Linef("enum %s {}", e.Name)
		return
	}
	p.w.Linef("enum %s {", e.Name)
	p.w.Indent()
	for i, v := range e.Values {
		sep := ","
		if i == len(e.Values)-1 {
			sep = ""
		}
		if v.Explicit {
			p.w.Linef("%s = %d%s", v.Name, v.Value, sep)
		} else {
			p.w.Line(v.Name + sep)
		}
	}
	p.w.Dedent()
	p.w.Line("}")
}

func (p *printer) structDecl(s *model.Struct) {
	if len(s.Members) == 0 {
		p.w.Linef("struct %s {}", s.Name)
		return
	}
	p.w.Linef("struct %s {", s.Name)
	p.w.Indent()
	for _, m := range s.Members {
		p.w.Linef("%s %s;", m.Type, m.Name)
	}
	p.w.Dedent()
	p.w.Line("}")
}

// class prints methods in declaration order, the constructor included,
// followed by the attributes
func (p *printer) class(c *model.Class) {
	if len(c.Methods) == 0 && len(c.Attributes) == 0 {
		p.w.Linef("interface %s {}", c.Name)
		return
	}
	p.w.Linef("interface %s {", c.Name)
	p.w.Indent()
	for _, m := range c.Methods {
		p.w.Line(method(&m))
	}
	if len(c.Methods) > 0 && len(c.Attributes) > 0 {
		p.w.Blank()
	}
	for _, a := range c.Attributes {
		p.w.Linef("%s %s;", a.Type, a.Name)
	}
	p.w.Dedent()
	p.w.Line("}")
}

func method(m *model.Method) string {
	if m.IsConstructor {
		return fmt.Sprintf("%s(%s);", m.Name, params(m.Params))
	}
	ret := m.ReturnType
	if m.ReturnPointer {
		ret += "*"
	}
	suffix := ";"
	if m.IsConst {
		suffix = " const;"
	}
	return fmt.Sprintf("%s %s(%s)%s", ret, m.Name, params(m.Params), suffix)
}

func params(ps []model.Param) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		var b strings.Builder
		if p.Const {
			b.WriteString("const ")
		}
		b.WriteString(p.Type)
		switch {
		case p.Pointer:
			b.WriteString("*")
		case p.Reference:
			b.WriteString("&")
		}
		b.WriteString(" ")
		b.WriteString(p.Name)
		parts[i] = b.String()
	}
	return strings.Join(parts, ", ")
}
