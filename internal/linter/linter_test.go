package linter

import (
	"strings"
	"testing"

	"github.com/lhaig/idlgen/internal/diagnostic"
	"github.com/lhaig/idlgen/internal/idltest"
)

func lint(t *testing.T, archive string) []diagnostic.Diagnostic {
	t.Helper()
	return Lint(idltest.Graph(t, archive)).All()
}

func find(diags []diagnostic.Diagnostic, substr string) *diagnostic.Diagnostic {
	for i := range diags {
		if strings.Contains(diags[i].Message, substr) {
			return &diags[i]
		}
	}
	return nil
}

func expectWarning(t *testing.T, diags []diagnostic.Diagnostic, substr string) *diagnostic.Diagnostic {
	t.Helper()
	d := find(diags, substr)
	if d == nil {
		t.Errorf("expected a diagnostic containing %q, got %v", substr, diags)
		return nil
	}
	if d.Severity != diagnostic.Warning {
		t.Errorf("expected %q to be a warning, got %s", substr, d.Severity)
	}
	return d
}

func TestCleanGraphHasNoWarnings(t *testing.T) {
	diags := Lint(idltest.Graph(t, idltest.Geometry))
	if diags.Count() != 0 {
		t.Errorf("expected no diagnostics, got:\n%s", diags.Format())
	}
}

func TestTypeNaming(t *testing.T) {
	diags := lint(t, `
-- a.idl --
struct point_list { int x; }
enum mode { A }
interface Widget_Host { Widget_Host(); void run(point_list p, mode m); }
`)
	if d := expectWarning(t, diags, "struct 'point_list' should be UpperCamelCase"); d != nil {
		if d.Hint != "rename to 'PointList'" {
			t.Errorf("expected hint %q, got %q", "rename to 'PointList'", d.Hint)
		}
		if d.File != "a" || d.Line != 1 {
			t.Errorf("expected position a:1, got %s:%d", d.File, d.Line)
		}
	}
	expectWarning(t, diags, "enum 'mode' should be UpperCamelCase")
	expectWarning(t, diags, "class 'Widget_Host' should be UpperCamelCase")
}

func TestMemberNaming(t *testing.T) {
	diags := lint(t, `
-- a.idl --
struct Point { int X; int y; }
interface Counter {
    Counter(int Start);
    int get_value(Point p);
    int Total;
}
`)
	expectWarning(t, diags, "field 'Point.X' should be lowerCamelCase")
	expectWarning(t, diags, "parameter 'Counter.Counter(Start)' should be lowerCamelCase")
	if d := expectWarning(t, diags, "method 'Counter.get_value' should be lowerCamelCase"); d != nil && d.Hint != "rename to 'getValue'" {
		t.Errorf("expected hint %q, got %q", "rename to 'getValue'", d.Hint)
	}
	expectWarning(t, diags, "attribute 'Counter.Total' should be lowerCamelCase")
	if find(diags, "'Point.y'") != nil {
		t.Errorf("did not expect a warning for a lowerCamelCase field, got %v", diags)
	}
}

func TestEnumValueNaming(t *testing.T) {
	diags := lint(t, `
-- a.idl --
enum Color { DARK_RED, light_blue, GREEN2 }
interface Painter { Painter(); void paint(Color c); }
`)
	if d := expectWarning(t, diags, "enum value 'Color.light_blue' should be UPPER_SNAKE_CASE"); d != nil && d.Hint != "rename to 'LIGHT_BLUE'" {
		t.Errorf("expected hint %q, got %q", "rename to 'LIGHT_BLUE'", d.Hint)
	}
	if find(diags, "DARK_RED") != nil || find(diags, "GREEN2") != nil {
		t.Errorf("did not expect warnings for UPPER_SNAKE_CASE values, got %v", diags)
	}
}

func TestReservedWords(t *testing.T) {
	diags := lint(t, `
-- a.idl --
interface Store {
    Store();
    void delete(int from);
    void put(int default, bool lambda);
}
`)
	expectWarning(t, diags, "method name 'delete' is a reserved word in C++")
	expectWarning(t, diags, "parameter name 'from' is a reserved word in Python")
	expectWarning(t, diags, "parameter name 'default' is a reserved word in C++ and Java")
	expectWarning(t, diags, "parameter name 'lambda' is a reserved word in Python")
}

func TestClassWithoutConstructor(t *testing.T) {
	diags := lint(t, `
-- a.idl --
interface Session { int id(); }
interface Server { Server(); Session* open(); }
`)
	d := expectWarning(t, diags, "class 'Session' has no constructor")
	if d != nil && !strings.Contains(d.Hint, "'Session*'") {
		t.Errorf("expected hint to mention Session*, got %q", d.Hint)
	}
	if find(diags, "class 'Server' has no constructor") != nil {
		t.Errorf("did not expect a warning for Server, got %v", diags)
	}
}

func TestEmptyDeclarations(t *testing.T) {
	diags := lint(t, `
-- a.idl --
enum Nothing {}
struct Marker {}
interface User { User(); void tag(Marker m, Nothing n); }
`)
	expectWarning(t, diags, "enum 'Nothing' has no values")
	expectWarning(t, diags, "struct 'Marker' has no fields")
}

func TestUnusedTypesAcrossFiles(t *testing.T) {
	diags := lint(t, `
-- types.idl --
struct Point { int x; int y; }
struct Orphan { int x; }
callback Done(int code) -> void;
-- shapes.idl --
interface Shape { Shape(); Point origin(); }
`)
	d := find(diags, "struct 'Orphan' is never used")
	if d == nil {
		t.Fatalf("expected an unused struct diagnostic, got %v", diags)
	}
	if d.Severity != diagnostic.Info {
		t.Errorf("expected info severity, got %s", d.Severity)
	}
	if find(diags, "callback 'Done' is never used") == nil {
		t.Errorf("expected an unused callback diagnostic, got %v", diags)
	}
	if find(diags, "'Point' is never used") != nil {
		t.Errorf("Point is used from shapes.idl, got %v", diags)
	}
}

func TestLintNeverReportsErrors(t *testing.T) {
	diags := Lint(idltest.Graph(t, `
-- bad.idl --
enum e {}
struct s {}
interface x { void Do_It(int class_); }
`))
	if diags.HasErrors() {
		t.Errorf("expected only warnings and infos, got:\n%s", diags.Format())
	}
	if diags.WarningCount() == 0 {
		t.Error("expected warnings")
	}
}
