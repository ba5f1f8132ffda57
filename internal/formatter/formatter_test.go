package formatter

import (
	"reflect"
	"strings"
	"testing"

	"github.com/lhaig/idlgen/internal/model"
	"github.com/lhaig/idlgen/internal/parser"
)

func parse(t *testing.T, source string) *model.File {
	t.Helper()
	f, diags := parser.ParseFile("test", source, true)
	if diags.Count() != 0 {
		t.Fatalf("parse error: %s", diags.Format())
	}
	return f
}

func formatSource(t *testing.T, source string) string {
	t.Helper()
	return Format(parse(t, source))
}

// stripPositions zeroes every source position so files parsed from
// differently laid out text compare equal
func stripPositions(f *model.File) {
	for i := range f.Enums {
		f.Enums[i].Pos = model.Pos{}
		for j := range f.Enums[i].Values {
			f.Enums[i].Values[j].Pos = model.Pos{}
		}
	}
	for i := range f.Structs {
		f.Structs[i].Pos = model.Pos{}
		for j := range f.Structs[i].Members {
			f.Structs[i].Members[j].Pos = model.Pos{}
		}
	}
	for i := range f.Callbacks {
		f.Callbacks[i].Pos = model.Pos{}
		stripParams(f.Callbacks[i].Params)
	}
	for i := range f.Classes {
		c := &f.Classes[i]
		c.Pos = model.Pos{}
		for j := range c.Attributes {
			c.Attributes[j].Pos = model.Pos{}
		}
		for j := range c.Methods {
			c.Methods[j].Pos = model.Pos{}
			stripParams(c.Methods[j].Params)
		}
	}
}

func stripParams(ps []model.Param) {
	for i := range ps {
		ps[i].Pos = model.Pos{}
	}
}

func TestFormatEnum(t *testing.T) {
	got := formatSource(t, "enum Color{RED=2,GREEN,BLUE,};enum Sign { NEG = -1, POS }")
	want := `enum Color {
    RED = 2,
    GREEN,
    BLUE
}

enum Sign {
    NEG = -1,
    POS
}
`
	if got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestFormatStructAndCallbacks(t *testing.T) {
	src := `callback Progress(int percent)->void;
struct Point {int x;int y;}
callback Visit(const Point & p, Point* out) -> bool;`
	got := formatSource(t, src)
	want := `struct Point {
    int x;
    int y;
}

callback Progress(int percent) -> void;
callback Visit(const Point& p, Point* out) -> bool;
`
	if got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestFormatClass(t *testing.T) {
	src := `class Shape { bool visible; Shape(string name);
vector<int> ids() const; Shape * clone(); void load(const uint8_t* data, int size); }`
	got := formatSource(t, src)
	want := `interface Shape {
    Shape(string name);
    vector<int> ids() const;
    Shape* clone();
    void load(const uint8_t* data, int size);

    bool visible;
}
`
	if got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestFormatEmptyDeclarations(t *testing.T) {
	got := formatSource(t, "enum E {} struct S {} interface C {}")
	for _, want := range []string{"enum E {}\n", "struct S {}\n", "interface C {}\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in:\n%s", want, got)
		}
	}
}

func TestFormatEmptyFile(t *testing.T) {
	if got := formatSource(t, "// nothing here\n"); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}

func TestRoundTrip(t *testing.T) {
	sources := []string{
		`enum Color { RED = 2, GREEN, BLUE }
struct Face { int x; int y; int width; int height; }
callback FaceVisitor(const Face& face, int index) -> bool;
interface Detector {
    bool ready;
    Detector(string model, FaceVisitor onFace);
    vector<Face> detect(const uint8_t* pixels, int width, int height);
    Color tint() const;
    Detector* fork(const Detector& base);
    string label;
}`,
		`interface Empty {}`,
		`enum Mode { A = 0x10, B, C = -4, D }`,
	}
	for _, src := range sources {
		original := parse(t, src)
		formatted := Format(original)
		reparsed := parse(t, formatted)

		stripPositions(original)
		stripPositions(reparsed)
		if !reflect.DeepEqual(original, reparsed) {
			t.Errorf("round trip changed the model\nformatted:\n%s\noriginal: %+v\nreparsed: %+v", formatted, original, reparsed)
		}
		if again := Format(reparsed); again != formatted {
			t.Errorf("format is not idempotent:\nfirst:\n%s\nsecond:\n%s", formatted, again)
		}
	}
}
