package module

import (
	"sort"

	"github.com/lhaig/idlgen/internal/model"
	"github.com/lhaig/idlgen/internal/typemap"
)

// role is the position a type name occupies in a declaration
type role int

const (
	roleMember role = iota
	roleAttribute
	roleParam
	roleReturn
	roleCallbackParam
	roleCallbackReturn
)

// typeUse is one occurrence of a type name in a file
type typeUse struct {
	typ     string
	role    role
	where   string // human readable owner, e.g. "Geometry.createLine"
	pos     model.Pos
	param   *model.Param
	pointer bool
}

// collectUses lists every type occurrence in f in declaration order
func collectUses(f *model.File) []typeUse {
	var uses []typeUse
	for _, s := range f.Structs {
		for _, m := range s.Members {
			uses = append(uses, typeUse{typ: m.Type, role: roleMember, where: s.Name + "." + m.Name, pos: m.Pos})
		}
	}
	for i := range f.Callbacks {
		cb := &f.Callbacks[i]
		for j := range cb.Params {
			p := &cb.Params[j]
			uses = append(uses, typeUse{typ: p.Type, role: roleCallbackParam, where: cb.Name, pos: p.Pos, param: p})
		}
		uses = append(uses, typeUse{typ: cb.ReturnType, role: roleCallbackReturn, where: cb.Name, pos: cb.Pos})
	}
	for i := range f.Classes {
		c := &f.Classes[i]
		for _, a := range c.Attributes {
			uses = append(uses, typeUse{typ: a.Type, role: roleAttribute, where: c.Name + "." + a.Name, pos: a.Pos})
		}
		for j := range c.Methods {
			m := &c.Methods[j]
			where := c.Name + "." + m.Name
			for k := range m.Params {
				p := &m.Params[k]
				uses = append(uses, typeUse{typ: p.Type, role: roleParam, where: where, pos: p.Pos, param: p})
			}
			if !m.IsConstructor {
				uses = append(uses, typeUse{typ: m.ReturnType, role: roleReturn, where: where, pos: m.Pos, pointer: m.ReturnPointer})
			}
		}
	}
	return uses
}

// usedTypes returns the sorted non-primitive names referenced by uses,
// with vector<T> unwrapped to T
func usedTypes(uses []typeUse) []string {
	seen := make(map[string]bool)
	var names []string
	for _, u := range uses {
		name := typemap.Elem(u.typ)
		if typemap.IsPrimitive(name) || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
