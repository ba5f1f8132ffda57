package typemap

import "github.com/lhaig/idlgen/internal/model"

// Sentinel is the value a generated function returns when its handle or a
// required string argument is null.
type Sentinel int

const (
	// SentinelNone means the function returns void.
	SentinelNone Sentinel = iota
	SentinelNull
	SentinelNegative
	SentinelZero
	SentinelFalse
	SentinelAggregate
)

// SentinelFor classifies the return type t of kind k. pointer marks a
// T* return.
func SentinelFor(t string, k model.Kind, pointer bool) Sentinel {
	switch {
	case pointer, IsVector(t), t == "string", k == model.KindClass:
		return SentinelNull
	case t == "void":
		return SentinelNone
	case t == "bool":
		return SentinelFalse
	case IsSigned(t):
		return SentinelNegative
	case IsUnsigned(t), IsFloat(t), k == model.KindEnum:
		return SentinelZero
	case k == model.KindStruct:
		return SentinelAggregate
	}
	return SentinelNull
}

// CLiteral renders the sentinel as a C or C++ return expression. cType
// is the mapped return type, used to cast enum zero values.
func (s Sentinel) CLiteral(cType string) string {
	switch s {
	case SentinelNull:
		return "nullptr"
	case SentinelNegative:
		return "-1"
	case SentinelFalse:
		return "0"
	case SentinelAggregate:
		return "{}"
	case SentinelZero:
		if cType != "" && !IsNumeric(cType) && cType != "int" {
			return "static_cast<" + cType + ">(0)"
		}
		return "0"
	}
	return ""
}
