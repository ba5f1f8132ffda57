package module

import (
	"fmt"
	"strings"

	"github.com/lhaig/idlgen/internal/diagnostic"
	"github.com/lhaig/idlgen/internal/model"
	"github.com/lhaig/idlgen/internal/typemap"
)

// validateFile checks every type occurrence and name in f against what
// the generated bindings can express
func validateFile(f *model.File, uses []typeUse, symbols *SymbolTable, diags *diagnostic.Diagnostics) {
	for _, u := range uses {
		validateUse(f.Name, u, symbols, diags)
	}
	for _, s := range f.Structs {
		seen := make(map[string]bool)
		for _, m := range s.Members {
			if seen[m.Name] {
				diags.ErrorfInFile(f.Name, m.Line, m.Column, "duplicate member %s in struct %s", m.Name, s.Name)
			}
			seen[m.Name] = true
		}
	}
	for _, cb := range f.Callbacks {
		checkParamNames(f.Name, cb.Name, cb.Params, diags)
	}
	for i := range f.Classes {
		validateClass(f.Name, &f.Classes[i], diags)
	}
	checkStructCycles(f, symbols, diags)
}

func validateUse(file string, u typeUse, symbols *SymbolTable, diags *diagnostic.Diagnostics) {
	errorf := func(format string, args ...interface{}) {
		diags.ErrorfInFile(file, u.pos.Line, u.pos.Column, format, args...)
	}

	elem := typemap.Elem(u.typ)
	kind := symbols.Kind(elem)
	if kind == model.KindUnknown {
		msg := "unknown type '" + elem + "' in " + u.where
		diags.Add(diagnostic.Diagnostic{
			Severity: diagnostic.Error,
			Message:  msg,
			File:     file,
			Line:     u.pos.Line,
			Column:   u.pos.Column,
			Hint:     suggest(elem, symbols),
		})
		return
	}

	if typemap.IsVector(u.typ) {
		if u.role != roleReturn {
			errorf("vector types are only supported as method return types (%s)", u.where)
			return
		}
		if !vectorElemSupported(elem, kind) {
			errorf("unsupported vector element type '%s' in %s; use a numeric type, enum or struct", elem, u.where)
		}
		return
	}

	switch u.role {
	case roleMember, roleAttribute:
		switch {
		case u.typ == "void":
			errorf("%s cannot have type void", u.where)
		case kind == model.KindCallback:
			errorf("%s cannot have callback type %s", u.where, u.typ)
		case kind == model.KindClass:
			errorf("%s cannot have class type %s; return it from a method instead", u.where, u.typ)
		}

	case roleReturn:
		switch {
		case u.pointer && kind != model.KindClass:
			errorf("%s returns %s*; only class types may be returned by pointer", u.where, u.typ)
		case !u.pointer && kind == model.KindClass:
			errorf("%s must return class %s by pointer", u.where, u.typ)
		case kind == model.KindCallback:
			errorf("%s cannot return callback type %s", u.where, u.typ)
		}

	case roleCallbackReturn:
		if u.typ == "string" || kind == model.KindStruct || kind == model.KindClass || kind == model.KindCallback {
			errorf("callback %s must return void, a scalar or an enum, not %s", u.where, u.typ)
		}

	case roleParam, roleCallbackParam:
		validateParam(u, kind, errorf)
	}
}

func validateParam(u typeUse, kind model.Kind, errorf func(string, ...interface{})) {
	p := u.param
	switch {
	case p.Type == "void":
		errorf("parameter %s of %s cannot have type void", p.Name, u.where)
	case u.role == roleCallbackParam && (kind == model.KindClass || kind == model.KindCallback):
		errorf("callback %s cannot take %s %s as a parameter", u.where, kind, p.Type)
	case p.Pointer && !(kind == model.KindClass || kind == model.KindStruct || p.Type == "uint8_t"):
		errorf("parameter %s of %s: pointers are only supported to classes, structs and uint8_t buffers", p.Name, u.where)
	case p.Pointer && p.Type == "uint8_t" && u.role == roleCallbackParam:
		errorf("callback %s cannot take a uint8_t buffer", u.where)
	case p.Reference && !p.Const && kind != model.KindClass && kind != model.KindStruct:
		errorf("parameter %s of %s: non-const reference to %s is not supported", p.Name, u.where, p.Type)
	case kind == model.KindCallback && (p.Pointer || p.Reference):
		errorf("parameter %s of %s: callbacks are passed by value", p.Name, u.where)
	}
}

// vectorElemSupported reports whether a vector of elem can be exposed as a
// contiguous borrowed buffer
func vectorElemSupported(elem string, kind model.Kind) bool {
	switch kind {
	case model.KindEnum, model.KindStruct:
		return true
	case model.KindPrimitive:
		return typemap.IsNumeric(elem)
	}
	return false
}

func validateClass(file string, c *model.Class, diags *diagnostic.Diagnostics) {
	names := make(map[string]model.Pos)
	claim := func(name string, pos model.Pos, what string) {
		if prev, ok := names[name]; ok {
			diags.Add(diagnostic.Diagnostic{
				Severity: diagnostic.Error,
				Message:  "duplicate " + what + " " + name + " in class " + c.Name,
				File:     file,
				Line:     pos.Line,
				Column:   pos.Column,
				Hint:     "method overloading is not supported; previous declaration is at " + posString(prev),
			})
			return
		}
		names[name] = pos
	}

	for _, m := range c.Operations() {
		claim(m.Name, m.Pos, "method")
		checkParamNames(file, c.Name+"."+m.Name, m.Params, diags)
	}
	for _, a := range c.Attributes {
		claim(a.Getter(), a.Pos, "getter")
	}
	if ctor := c.Constructor(); ctor != nil {
		checkParamNames(file, c.Name, ctor.Params, diags)
		for _, reserved := range []string{"create", "destroy"} {
			if pos, ok := names[reserved]; ok {
				diags.ErrorfInFile(file, pos.Line, pos.Column,
					"method %s of class %s collides with the generated %s_%s", reserved, c.Name, c.Name, reserved)
			}
		}
	} else if pos, ok := names["destroy"]; ok {
		diags.ErrorfInFile(file, pos.Line, pos.Column,
			"method destroy of class %s collides with the generated %s_destroy", c.Name, c.Name)
	}
}

func checkParamNames(file, where string, params []model.Param, diags *diagnostic.Diagnostics) {
	seen := make(map[string]bool)
	for _, p := range params {
		if seen[p.Name] {
			diags.ErrorfInFile(file, p.Line, p.Column, "duplicate parameter %s in %s", p.Name, where)
		}
		seen[p.Name] = true
	}
}

// checkStructCycles rejects structs that contain themselves by value,
// directly or through other structs
func checkStructCycles(f *model.File, symbols *SymbolTable, diags *diagnostic.Diagnostics) {
	for _, s := range f.Structs {
		if sym := symbols.Lookup(s.Name); sym == nil || sym.File != f.Name {
			continue
		}
		if path := structPath(s.Name, s.Name, symbols, map[string]bool{}); path != nil {
			diags.ErrorfInFile(f.Name, s.Line, s.Column,
				"struct %s contains itself: %s", s.Name, strings.Join(append([]string{s.Name}, path...), " -> "))
		}
	}
}

func structPath(target, from string, symbols *SymbolTable, seen map[string]bool) []string {
	st := symbols.Struct(from)
	if st == nil || seen[from] {
		return nil
	}
	seen[from] = true
	for _, m := range st.Members {
		if m.Type == target {
			return []string{m.Type}
		}
		if rest := structPath(target, m.Type, symbols, seen); rest != nil {
			return append([]string{m.Type}, rest...)
		}
	}
	return nil
}

// suggest returns a hint naming a declared type that differs from name
// only by case, if any
func suggest(name string, symbols *SymbolTable) string {
	for _, candidate := range symbols.Names() {
		if strings.EqualFold(candidate, name) {
			return "did you mean '" + candidate + "'?"
		}
	}
	for _, p := range typemap.Primitives() {
		if strings.EqualFold(p, name) {
			return "did you mean '" + p + "'?"
		}
	}
	return ""
}

func posString(p model.Pos) string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}
