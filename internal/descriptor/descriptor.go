// Package descriptor exports a resolved module graph as a self-contained
// description of the declarations and the C ABI they produce. Descriptors
// encode to canonical CBOR, so equal graphs give identical bytes, or to
// indented JSON for reading.
package descriptor

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/lhaig/idlgen/internal/emit"
	"github.com/lhaig/idlgen/internal/model"
	"github.com/lhaig/idlgen/internal/module"
)

// Version identifies the descriptor layout.
const Version = 1

// Descriptor is the exported form of one generation run.
type Descriptor struct {
	Version   int      `cbor:"1,keyasint" json:"version"`
	Namespace string   `cbor:"2,keyasint" json:"namespace"`
	Order     []string `cbor:"3,keyasint,omitempty" json:"order,omitempty"`
	Files     []File   `cbor:"4,keyasint" json:"files"`
}

// File describes one IDL source and its place in the graph.
type File struct {
	Name         string     `cbor:"1,keyasint" json:"name"`
	Used         []string   `cbor:"2,keyasint,omitempty" json:"used,omitempty"`
	Defined      []string   `cbor:"3,keyasint,omitempty" json:"defined,omitempty"`
	External     []string   `cbor:"4,keyasint,omitempty" json:"external,omitempty"`
	Dependencies []string   `cbor:"5,keyasint,omitempty" json:"dependencies,omitempty"`
	Enums        []Enum     `cbor:"6,keyasint,omitempty" json:"enums,omitempty"`
	Structs      []Struct   `cbor:"7,keyasint,omitempty" json:"structs,omitempty"`
	Callbacks    []Callback `cbor:"8,keyasint,omitempty" json:"callbacks,omitempty"`
	Classes      []Class    `cbor:"9,keyasint,omitempty" json:"classes,omitempty"`
}

type Enum struct {
	Name   string      `cbor:"1,keyasint" json:"name"`
	Values []EnumValue `cbor:"2,keyasint,omitempty" json:"values,omitempty"`
}

type EnumValue struct {
	Name  string `cbor:"1,keyasint" json:"name"`
	Value int64  `cbor:"2,keyasint" json:"value"`
}

type Struct struct {
	Name   string  `cbor:"1,keyasint" json:"name"`
	Fields []Field `cbor:"2,keyasint,omitempty" json:"fields,omitempty"`
}

type Field struct {
	Name string `cbor:"1,keyasint" json:"name"`
	Type string `cbor:"2,keyasint" json:"type"`
}

type Callback struct {
	Name   string  `cbor:"1,keyasint" json:"name"`
	Return string  `cbor:"2,keyasint" json:"return"`
	Params []Param `cbor:"3,keyasint,omitempty" json:"params,omitempty"`
}

type Param struct {
	Name      string `cbor:"1,keyasint" json:"name"`
	Type      string `cbor:"2,keyasint" json:"type"`
	Const     bool   `cbor:"3,keyasint,omitempty" json:"const,omitempty"`
	Pointer   bool   `cbor:"4,keyasint,omitempty" json:"pointer,omitempty"`
	Reference bool   `cbor:"5,keyasint,omitempty" json:"reference,omitempty"`
}

// Class describes a class together with the C ABI symbols generated for
// it.
type Class struct {
	Name        string      `cbor:"1,keyasint" json:"name"`
	Handle      string      `cbor:"2,keyasint" json:"handle"`
	Constructor *Function   `cbor:"3,keyasint,omitempty" json:"constructor,omitempty"`
	Destroy     string      `cbor:"4,keyasint" json:"destroy"`
	Methods     []Function  `cbor:"5,keyasint,omitempty" json:"methods,omitempty"`
	Attributes  []Attribute `cbor:"6,keyasint,omitempty" json:"attributes,omitempty"`
	Results     []Result    `cbor:"7,keyasint,omitempty" json:"results,omitempty"`
}

// Function is a constructor or method and its C ABI symbol.
type Function struct {
	Name          string  `cbor:"1,keyasint" json:"name"`
	Symbol        string  `cbor:"2,keyasint" json:"symbol"`
	Return        string  `cbor:"3,keyasint,omitempty" json:"return,omitempty"`
	ReturnPointer bool    `cbor:"4,keyasint,omitempty" json:"returnPointer,omitempty"`
	Const         bool    `cbor:"5,keyasint,omitempty" json:"const,omitempty"`
	Params        []Param `cbor:"6,keyasint,omitempty" json:"params,omitempty"`
}

type Attribute struct {
	Name   string `cbor:"1,keyasint" json:"name"`
	Type   string `cbor:"2,keyasint" json:"type"`
	Getter string `cbor:"3,keyasint" json:"getter"`
}

// Result is the C container of the vector<Elem> returns of a class.
type Result struct {
	Elem  string `cbor:"1,keyasint" json:"elem"`
	Type  string `cbor:"2,keyasint" json:"type"`
	Count string `cbor:"3,keyasint" json:"count"`
	Data  string `cbor:"4,keyasint" json:"data"`
	Free  string `cbor:"5,keyasint" json:"free"`
}

// Build describes g. Files keep their input order.
func Build(g *module.Graph, namespace string) *Descriptor {
	d := &Descriptor{
		Version:   Version,
		Namespace: namespace,
		Order:     g.Order(),
		Files:     make([]File, 0, len(g.Files())),
	}
	for _, f := range g.Files() {
		d.Files = append(d.Files, buildFile(g, g.Owned(f.Name)))
	}
	return d
}

func buildFile(g *module.Graph, f *model.File) File {
	out := File{
		Name:         f.Name,
		Used:         g.UsedTypes(f.Name),
		Defined:      g.DefinedTypes(f.Name),
		External:     g.ExternalTypes(f.Name),
		Dependencies: g.Dependencies(f.Name),
	}
	for _, e := range f.Enums {
		de := Enum{Name: e.Name}
		for _, v := range e.Values {
			de.Values = append(de.Values, EnumValue{Name: v.Name, Value: v.Value})
		}
		out.Enums = append(out.Enums, de)
	}
	for _, s := range f.Structs {
		ds := Struct{Name: s.Name}
		for _, m := range s.Members {
			ds.Fields = append(ds.Fields, Field{Name: m.Name, Type: m.Type})
		}
		out.Structs = append(out.Structs, ds)
	}
	for _, cb := range f.Callbacks {
		out.Callbacks = append(out.Callbacks, Callback{Name: cb.Name, Return: cb.ReturnType, Params: params(cb.Params)})
	}
	for i := range f.Classes {
		out.Classes = append(out.Classes, buildClass(&f.Classes[i]))
	}
	return out
}

func buildClass(c *model.Class) Class {
	dc := Class{
		Name:    c.Name,
		Handle:  emit.HandleType(c.Name),
		Destroy: emit.DestroySymbol(c.Name),
	}
	if ctor := c.Constructor(); ctor != nil {
		dc.Constructor = &Function{
			Name:   ctor.Name,
			Symbol: emit.CreateSymbol(c.Name),
			Params: params(ctor.Params),
		}
	}
	for _, m := range c.Operations() {
		dc.Methods = append(dc.Methods, Function{
			Name:          m.Name,
			Symbol:        emit.MethodSymbol(c.Name, m.Name),
			Return:        m.ReturnType,
			ReturnPointer: m.ReturnPointer,
			Const:         m.IsConst,
			Params:        params(m.Params),
		})
	}
	for _, a := range c.Attributes {
		dc.Attributes = append(dc.Attributes, Attribute{Name: a.Name, Type: a.Type, Getter: emit.GetterSymbol(c.Name, a)})
	}
	for _, elem := range emit.ResultElems(c) {
		name := emit.CResultName(c.Name, elem)
		dc.Results = append(dc.Results, Result{
			Elem:  elem,
			Type:  name,
			Count: emit.ResultCountSymbol(name),
			Data:  emit.ResultDataSymbol(name),
			Free:  emit.ResultFreeSymbol(name),
		})
	}
	return dc
}

func params(ps []model.Param) []Param {
	var out []Param
	for _, p := range ps {
		out = append(out, Param{Name: p.Name, Type: p.Type, Const: p.Const, Pointer: p.Pointer, Reference: p.Reference})
	}
	return out
}

// Format selects the descriptor encoding.
type Format string

const (
	CBOR Format = "cbor"
	JSON Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case CBOR, JSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown descriptor format %q (want cbor or json)", s)
	}
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("descriptor: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Encode serializes d in the given format.
func Encode(d *Descriptor, format Format) ([]byte, error) {
	switch format {
	case CBOR:
		return cborEncMode.Marshal(d)
	case JSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(d); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown descriptor format %q", format)
	}
}

// Decode parses a descriptor produced by Encode.
func Decode(data []byte, format Format) (*Descriptor, error) {
	var d Descriptor
	var err error
	switch format {
	case CBOR:
		err = cbor.Unmarshal(data, &d)
	case JSON:
		err = json.Unmarshal(data, &d)
	default:
		return nil, fmt.Errorf("unknown descriptor format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("descriptor: decode %s: %w", format, err)
	}
	if d.Version != Version {
		return nil, fmt.Errorf("descriptor: unsupported version %d", d.Version)
	}
	return &d, nil
}
