package descriptor

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lhaig/idlgen/internal/idltest"
)

func geometry(t *testing.T) *Descriptor {
	t.Helper()
	return Build(idltest.Graph(t, idltest.Geometry), "geo")
}

func TestBuildFiles(t *testing.T) {
	d := geometry(t)
	if d.Version != Version || d.Namespace != "geo" {
		t.Errorf("expected version %d namespace geo, got %d %q", Version, d.Version, d.Namespace)
	}
	if len(d.Files) != 2 || d.Files[0].Name != "types" || d.Files[1].Name != "shapes" {
		t.Fatalf("expected files [types shapes] in input order, got %+v", d.Files)
	}
	if strings.Join(d.Order, ",") != "types,shapes" {
		t.Errorf("expected order types,shapes, got %v", d.Order)
	}

	shapes := d.Files[1]
	if strings.Join(shapes.Dependencies, ",") != "types" {
		t.Errorf("expected shapes to depend on types, got %v", shapes.Dependencies)
	}
	if strings.Join(shapes.Defined, ",") != "Geometry" {
		t.Errorf("expected shapes to define Geometry, got %v", shapes.Defined)
	}
	for _, ext := range []string{"Color", "FaceVisitor", "Point", "Progress"} {
		found := false
		for _, e := range shapes.External {
			found = found || e == ext
		}
		if !found {
			t.Errorf("expected %s among the external types of shapes, got %v", ext, shapes.External)
		}
	}

	types := d.Files[0]
	if len(types.Enums) != 1 || types.Enums[0].Values[1].Name != "GREEN" || types.Enums[0].Values[1].Value != 3 {
		t.Errorf("expected Color with GREEN = 3, got %+v", types.Enums)
	}
	if len(types.Callbacks) != 2 || types.Callbacks[0].Return != "bool" || !types.Callbacks[0].Params[0].Reference {
		t.Errorf("expected FaceVisitor returning bool with a reference param, got %+v", types.Callbacks)
	}
}

func TestBuildClassABI(t *testing.T) {
	c := geometry(t).Files[1].Classes[0]
	if c.Handle != "GeometryHandle" || c.Destroy != "Geometry_destroy" {
		t.Errorf("expected GeometryHandle and Geometry_destroy, got %q %q", c.Handle, c.Destroy)
	}
	if c.Constructor == nil || c.Constructor.Symbol != "Geometry_create" || len(c.Constructor.Params) != 2 {
		t.Fatalf("expected a two-parameter Geometry_create, got %+v", c.Constructor)
	}

	symbols := make(map[string]Function)
	for _, m := range c.Methods {
		symbols[m.Symbol] = m
	}
	if clone, ok := symbols["Geometry_clone"]; !ok || !clone.ReturnPointer || !clone.Const {
		t.Errorf("expected const Geometry_clone returning a pointer, got %+v", clone)
	}
	if _, ok := symbols["Geometry_Geometry"]; ok {
		t.Error("the constructor must not be listed among the methods")
	}

	getters := []string{}
	for _, a := range c.Attributes {
		getters = append(getters, a.Getter)
	}
	if got := strings.Join(getters, ","); got != "Geometry_isVisible,Geometry_getWidth,Geometry_getLabel" {
		t.Errorf("expected getters in declaration order, got %s", got)
	}

	if len(c.Results) != 2 {
		t.Fatalf("expected 2 result types, got %+v", c.Results)
	}
	point := c.Results[0]
	if point.Elem != "Point" || point.Type != "Geometry_Point_CResult" ||
		point.Count != "Geometry_Point_CResult_getCount" ||
		point.Data != "Geometry_Point_CResult_getData" ||
		point.Free != "Geometry_Point_CResult_free" {
		t.Errorf("unexpected Point result %+v", point)
	}
	if c.Results[1].Elem != "double" {
		t.Errorf("expected the double result second, got %q", c.Results[1].Elem)
	}
}

func TestClassWithoutConstructor(t *testing.T) {
	g := idltest.Graph(t, `
-- a.idl --
interface Session { int id(); }
`)
	c := Build(g, "a").Files[0].Classes[0]
	if c.Constructor != nil {
		t.Errorf("expected no constructor, got %+v", c.Constructor)
	}
	if c.Destroy != "Session_destroy" {
		t.Errorf("expected Session_destroy, got %q", c.Destroy)
	}
}

func TestCBORIsCanonical(t *testing.T) {
	first, err := Encode(geometry(t), CBOR)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	second, err := Encode(geometry(t), CBOR)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("expected identical CBOR for identical graphs")
	}

	decoded, err := Decode(first, CBOR)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	again, err := Encode(decoded, CBOR)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(first, again) {
		t.Error("expected decoding and re-encoding to reproduce the same bytes")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	data, err := Encode(geometry(t), JSON)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for _, want := range []string{`"namespace": "geo"`, `"symbol": "Geometry_createLine"`, `"type": "Geometry_double_CResult"`} {
		if !bytes.Contains(data, []byte(want)) {
			t.Errorf("expected JSON to contain %s\n%s", want, data)
		}
	}
	d, err := Decode(data, JSON)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(d.Files) != 2 || d.Files[1].Classes[0].Name != "Geometry" {
		t.Errorf("unexpected decoded descriptor %+v", d)
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := Decode([]byte("not cbor"), CBOR); err == nil {
		t.Error("expected an error for invalid CBOR")
	}
	if _, err := Decode([]byte(`{"version": 99, "namespace": "x", "files": []}`), JSON); err == nil || !strings.Contains(err.Error(), "unsupported version 99") {
		t.Errorf("expected an unsupported version error, got %v", err)
	}
	if _, err := Decode(nil, Format("xml")); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"cbor", CBOR, false},
		{"json", JSON, false},
		{"yaml", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}
