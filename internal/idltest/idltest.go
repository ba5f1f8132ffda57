// Package idltest builds resolved module graphs from txtar archives for
// the generator tests.
package idltest

import (
	"path"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"

	"github.com/lhaig/idlgen/internal/model"
	"github.com/lhaig/idlgen/internal/module"
	"github.com/lhaig/idlgen/internal/parser"
)

// Graph parses every file of archive in order, strictly, and resolves
// them together. Any diagnostic fails the test.
func Graph(t testing.TB, archive string) *module.Graph {
	t.Helper()
	ar := txtar.Parse([]byte(archive))
	var files []*model.File
	for _, f := range ar.Files {
		stem := strings.TrimSuffix(path.Base(f.Name), ".idl")
		parsed, diags := parser.ParseFile(stem, string(f.Data), true)
		if diags.HasErrors() {
			t.Fatalf("parse %s:\n%s", f.Name, diags.Format())
		}
		files = append(files, parsed)
	}
	g, diags := module.Resolve(files)
	if diags.Count() != 0 {
		t.Fatalf("resolve:\n%s", diags.Format())
	}
	return g
}

// Contains fails the test unless text contains every one of want
func Contains(t testing.TB, name, text string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(text, w) {
			t.Errorf("expected %s to contain %q\n--- %s ---\n%s", name, w, name, text)
		}
	}
}

// Excludes fails the test if text contains any of unwanted
func Excludes(t testing.TB, name, text string, unwanted ...string) {
	t.Helper()
	for _, u := range unwanted {
		if strings.Contains(text, u) {
			t.Errorf("expected %s not to contain %q", name, u)
		}
	}
}

// Calculator is the single-file fixture with a constructor and a scalar
// method.
const Calculator = `
-- calculator.idl --
struct Point { int x; int y; }
interface Calculator {
    Calculator();
    int add(int a, int b);
}
`

// Geometry spans two files: shapes depends on types for Point, Color and
// the visitor callback.
const Geometry = `
-- types.idl --
enum Color { RED = 2, GREEN, BLUE }
struct Point { int x; int y; }
struct Face { int x; int y; int width; int height; }
callback FaceVisitor(const Face& face, int index) -> bool;
callback Progress(int percent) -> void;
-- shapes.idl --
class Geometry {
    Geometry(string name, int scale);
    vector<Point> createLine(int x0, int y0, int x1, int y1, int n);
    vector<Point> corners();
    vector<double> lengths();
    string describe(const Point& p);
    Color tint();
    bool contains(Point p);
    void visitFaces(FaceVisitor visitor);
    void track(Progress progress);
    void blend(const Geometry& other, Geometry* into);
    Geometry* clone() const;
    void load(const uint8_t* data, int size);
    bool visible;
    int width;
    string label;
}
`
