// Package model holds the structural form of a parsed IDL file. Values are
// built once by the parser and treated as read-only afterwards.
package model

import "strings"

// Pos is a 1-based source position.
type Pos struct {
	Line   int
	Column int
}

// Param is a method or callback parameter.
type Param struct {
	Pos
	Type      string
	Name      string
	Const     bool
	Pointer   bool
	Reference bool
}

// Member is a struct field or a read-only class attribute.
type Member struct {
	Pos
	Name string
	Type string
}

// Method is a class method. A constructor is named after its class and
// returns void.
type Method struct {
	Pos
	Name          string
	ReturnType    string
	ReturnPointer bool
	Params        []Param
	IsConstructor bool
	IsConst       bool
}

// Callback is a named function signature usable as a parameter type.
type Callback struct {
	Pos
	Name       string
	ReturnType string
	Params     []Param
}

// Struct is a plain aggregate passed by value.
type Struct struct {
	Pos
	Name    string
	Members []Member
}

// EnumValue is one enumerator. Value is always resolved; Explicit records
// whether the source spelled it out.
type EnumValue struct {
	Pos
	Name     string
	Value    int64
	Explicit bool
}

// Enum is an enumeration with sequentially resolved values.
type Enum struct {
	Pos
	Name   string
	Values []EnumValue
}

// Class is an object type exposed behind an opaque handle.
type Class struct {
	Pos
	Name       string
	Attributes []Member
	Methods    []Method
}

// Constructor returns the class constructor or nil when none is declared.
func (c *Class) Constructor() *Method {
	for i := range c.Methods {
		if c.Methods[i].IsConstructor {
			return &c.Methods[i]
		}
	}
	return nil
}

// Operations returns the methods that are not the constructor, in
// declaration order.
func (c *Class) Operations() []Method {
	ops := make([]Method, 0, len(c.Methods))
	for _, m := range c.Methods {
		if !m.IsConstructor {
			ops = append(ops, m)
		}
	}
	return ops
}

// File is the parsed model of one IDL source, identified by its stem.
type File struct {
	Name      string
	Enums     []Enum
	Structs   []Struct
	Callbacks []Callback
	Classes   []Class
}

// Empty reports whether the file declares nothing.
func (f *File) Empty() bool {
	return len(f.Enums) == 0 && len(f.Structs) == 0 && len(f.Callbacks) == 0 && len(f.Classes) == 0
}

// DefinedNames returns the names of every declaration in the file, in
// the order enums, structs, callbacks, classes.
func (f *File) DefinedNames() []string {
	var names []string
	for _, e := range f.Enums {
		names = append(names, e.Name)
	}
	for _, s := range f.Structs {
		names = append(names, s.Name)
	}
	for _, cb := range f.Callbacks {
		names = append(names, cb.Name)
	}
	for _, c := range f.Classes {
		names = append(names, c.Name)
	}
	return names
}

// Kind classifies a type name.
type Kind int

const (
	KindUnknown Kind = iota
	KindPrimitive
	KindEnum
	KindStruct
	KindCallback
	KindClass
)

// String returns the declaration keyword for the kind
func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindEnum:
		return "enum"
	case KindStruct:
		return "struct"
	case KindCallback:
		return "callback"
	case KindClass:
		return "class"
	default:
		return "unknown"
	}
}

// Getter returns the accessor name for an attribute: is<Name> for bool
// attributes and get<Name> otherwise.
func (m Member) Getter() string {
	prefix := "get"
	if m.Type == "bool" {
		prefix = "is"
	}
	if m.Name == "" {
		return prefix
	}
	return prefix + strings.ToUpper(m.Name[:1]) + m.Name[1:]
}
