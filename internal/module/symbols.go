package module

import (
	"sort"

	"github.com/lhaig/idlgen/internal/model"
	"github.com/lhaig/idlgen/internal/typemap"
)

// Symbol is a declared type name together with the declaration that
// introduced it. Exactly one of Enum, Struct, Callback or Class is set,
// matching Kind.
type Symbol struct {
	Name string
	Kind model.Kind
	File string
	model.Pos

	Enum     *model.Enum
	Struct   *model.Struct
	Callback *model.Callback
	Class    *model.Class
}

// SymbolTable maps every declared type name to its symbol. It is built
// once during resolution; the first declaration of a name wins.
type SymbolTable struct {
	symbols map[string]*Symbol
}

// NewSymbolTable creates an empty table
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: make(map[string]*Symbol)}
}

// Define adds sym unless its name is already taken. It returns the symbol
// that owns the name and whether sym was added.
func (t *SymbolTable) Define(sym *Symbol) (*Symbol, bool) {
	if existing, ok := t.symbols[sym.Name]; ok {
		return existing, false
	}
	t.symbols[sym.Name] = sym
	return sym, true
}

// Lookup returns the symbol for name, or nil
func (t *SymbolTable) Lookup(name string) *Symbol {
	return t.symbols[name]
}

// Kind classifies a bare type name. Primitives report KindPrimitive and
// undeclared names KindUnknown.
func (t *SymbolTable) Kind(name string) model.Kind {
	if typemap.IsPrimitive(name) {
		return model.KindPrimitive
	}
	if sym, ok := t.symbols[name]; ok {
		return sym.Kind
	}
	return model.KindUnknown
}

// IsEnum reports whether name is a declared enum
func (t *SymbolTable) IsEnum(name string) bool { return t.Kind(name) == model.KindEnum }

// IsStruct reports whether name is a declared struct
func (t *SymbolTable) IsStruct(name string) bool { return t.Kind(name) == model.KindStruct }

// IsCallback reports whether name is a declared callback
func (t *SymbolTable) IsCallback(name string) bool { return t.Kind(name) == model.KindCallback }

// IsClass reports whether name is a declared class
func (t *SymbolTable) IsClass(name string) bool { return t.Kind(name) == model.KindClass }

// Enum returns the enum declaration for name, or nil
func (t *SymbolTable) Enum(name string) *model.Enum {
	if sym := t.symbols[name]; sym != nil {
		return sym.Enum
	}
	return nil
}

// Struct returns the struct declaration for name, or nil
func (t *SymbolTable) Struct(name string) *model.Struct {
	if sym := t.symbols[name]; sym != nil {
		return sym.Struct
	}
	return nil
}

// Callback returns the callback declaration for name, or nil
func (t *SymbolTable) Callback(name string) *model.Callback {
	if sym := t.symbols[name]; sym != nil {
		return sym.Callback
	}
	return nil
}

// Class returns the class declaration for name, or nil
func (t *SymbolTable) Class(name string) *model.Class {
	if sym := t.symbols[name]; sym != nil {
		return sym.Class
	}
	return nil
}

// Names returns every declared name in sorted order
func (t *SymbolTable) Names() []string {
	names := make([]string, 0, len(t.symbols))
	for name := range t.symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of declared names
func (t *SymbolTable) Len() int {
	return len(t.symbols)
}

// fileSymbols returns the declarations of f in source order
func fileSymbols(f *model.File) []*Symbol {
	var syms []*Symbol
	for i := range f.Enums {
		e := &f.Enums[i]
		syms = append(syms, &Symbol{Name: e.Name, Kind: model.KindEnum, File: f.Name, Pos: e.Pos, Enum: e})
	}
	for i := range f.Structs {
		s := &f.Structs[i]
		syms = append(syms, &Symbol{Name: s.Name, Kind: model.KindStruct, File: f.Name, Pos: s.Pos, Struct: s})
	}
	for i := range f.Callbacks {
		cb := &f.Callbacks[i]
		syms = append(syms, &Symbol{Name: cb.Name, Kind: model.KindCallback, File: f.Name, Pos: cb.Pos, Callback: cb})
	}
	for i := range f.Classes {
		c := &f.Classes[i]
		syms = append(syms, &Symbol{Name: c.Name, Kind: model.KindClass, File: f.Name, Pos: c.Pos, Class: c})
	}
	sort.SliceStable(syms, func(i, j int) bool {
		if syms[i].Line != syms[j].Line {
			return syms[i].Line < syms[j].Line
		}
		return syms[i].Column < syms[j].Column
	})
	return syms
}
