// Package typemap maps IDL type names to the representation used by each
// generated target. Every mapper is a pure function of the type name:
// vector<T> maps T and wraps it in the target's container convention, and
// names outside the primitive table pass through unchanged.
package typemap

import "strings"

// Mapper maps an IDL type name to a target type name.
type Mapper interface {
	Map(idlType string) string
}

// Table is a Mapper driven by a primitive lookup table.
type Table struct {
	Name       string
	Primitives map[string]string
	// Vector wraps an already mapped element type. Nil leaves the element
	// type unwrapped.
	Vector func(elem string) string
}

// Map implements Mapper.
func (t *Table) Map(idlType string) string {
	if IsVector(idlType) {
		elem := t.Map(Elem(idlType))
		if t.Vector == nil {
			return elem
		}
		return t.Vector(elem)
	}
	if mapped, ok := t.Primitives[idlType]; ok {
		return mapped
	}
	return idlType
}

var primitiveNames = []string{
	"void", "bool", "int",
	"int8_t", "int16_t", "int32_t", "int64_t",
	"uint8_t", "uint16_t", "uint32_t", "uint64_t",
	"float", "double", "string",
}

var primitives = func() map[string]bool {
	m := make(map[string]bool, len(primitiveNames))
	for _, n := range primitiveNames {
		m[n] = true
	}
	return m
}()

// Primitives returns the primitive type names in a fixed order.
func Primitives() []string {
	return append([]string(nil), primitiveNames...)
}

// IsPrimitive reports whether t is a built-in scalar or string type.
func IsPrimitive(t string) bool {
	return primitives[t]
}

// IsVector reports whether t is spelled vector<T>.
func IsVector(t string) bool {
	return strings.HasPrefix(t, "vector<") && strings.HasSuffix(t, ">")
}

// Elem returns T for vector<T> and t otherwise.
func Elem(t string) string {
	if IsVector(t) {
		return t[len("vector<") : len(t)-1]
	}
	return t
}

// IsSigned reports whether t is a signed integer type.
func IsSigned(t string) bool {
	switch t {
	case "int", "int8_t", "int16_t", "int32_t", "int64_t":
		return true
	}
	return false
}

// IsUnsigned reports whether t is an unsigned integer type.
func IsUnsigned(t string) bool {
	switch t {
	case "uint8_t", "uint16_t", "uint32_t", "uint64_t":
		return true
	}
	return false
}

// IsFloat reports whether t is a floating point type.
func IsFloat(t string) bool {
	return t == "float" || t == "double"
}

// IsNumeric reports whether t is an integer or floating point type.
func IsNumeric(t string) bool {
	return IsSigned(t) || IsUnsigned(t) || IsFloat(t)
}

// Capitalize upper-cases the first byte of s.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
