package lsp

import (
	"strings"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

const (
	typesURI  = protocol.DocumentUri("file:///project/idl/types.idl")
	shapesURI = protocol.DocumentUri("file:///project/idl/shapes.idl")
)

const typesText = `enum Color { RED = 2, GREEN, BLUE }
struct Point { int x; int y; }
callback Progress(int percent) -> void;
`

const shapesText = `interface Shape {
    Shape(string name);
    vector<Point> corners();
    Color tint();
    void track(Progress progress);
    bool visible;
}
`

func analyze(t *testing.T, docs map[protocol.DocumentUri]string) *Snapshot {
	t.Helper()
	ws := NewWorkspace()
	for uri, text := range docs {
		ws.Open(uri, text)
	}
	return ws.Analyze()
}

func geometry(t *testing.T) *Snapshot {
	t.Helper()
	return analyze(t, map[protocol.DocumentUri]string{typesURI: typesText, shapesURI: shapesText})
}

func TestStemOf(t *testing.T) {
	tests := []struct {
		uri  protocol.DocumentUri
		want string
	}{
		{"file:///project/idl/types.idl", "types"},
		{"file:///C:/work/face%2Ddetector.idl", "face-detector"},
		{"untitled:scratch", "scratch"},
	}
	for _, tt := range tests {
		if got := stemOf(tt.uri); got != tt.want {
			t.Errorf("stemOf(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}

func TestExtractWord(t *testing.T) {
	text := "struct Point { int x; }\n    vector<Point> corners();"
	tests := []struct {
		line, char protocol.UInteger
		want       string
	}{
		{0, 9, "Point"},
		{0, 7, "Point"},
		{0, 12, "Point"},
		{0, 13, ""},
		{1, 12, "Point"},
		{1, 6, "vector"},
		{5, 0, ""},
	}
	for _, tt := range tests {
		pos := protocol.Position{Line: tt.line, Character: tt.char}
		if got := extractWord(text, pos); got != tt.want {
			t.Errorf("extractWord at %d:%d = %q, want %q", tt.line, tt.char, got, tt.want)
		}
	}
}

func TestExtractPrefix(t *testing.T) {
	text := "interface A {\n    Poi"
	if got := extractPrefix(text, protocol.Position{Line: 1, Character: 7}); got != "Poi" {
		t.Errorf("extractPrefix = %q, want %q", got, "Poi")
	}
	if got := extractPrefix(text, protocol.Position{Line: 1, Character: 0}); got != "" {
		t.Errorf("extractPrefix at line start = %q, want empty string", got)
	}
}

func TestCrossFileResolution(t *testing.T) {
	s := geometry(t)
	for _, uri := range []protocol.DocumentUri{typesURI, shapesURI} {
		for _, d := range s.Diagnostics(uri) {
			if *d.Severity == protocol.DiagnosticSeverityError {
				t.Errorf("unexpected error in %s: %s", uri, d.Message)
			}
		}
	}
}

func TestDiagnosticsPerDocument(t *testing.T) {
	s := analyze(t, map[protocol.DocumentUri]string{
		typesURI:  typesText,
		shapesURI: "interface Shape {\n    Shape();\n    point origin();\n}\n",
	})

	diags := s.Diagnostics(shapesURI)
	if len(diags) == 0 {
		t.Fatal("expected diagnostics for shapes.idl")
	}
	d := diags[0]
	if !strings.Contains(d.Message, "unknown type 'point'") || !strings.Contains(d.Message, "hint: did you mean 'Point'?") {
		t.Errorf("unexpected message %q", d.Message)
	}
	if *d.Severity != protocol.DiagnosticSeverityError {
		t.Errorf("expected error severity, got %v", *d.Severity)
	}
	if d.Range.Start.Line != 2 || d.Range.Start.Character != 4 {
		t.Errorf("expected range start 2:4, got %d:%d", d.Range.Start.Line, d.Range.Start.Character)
	}
	for _, d := range s.Diagnostics(typesURI) {
		if *d.Severity == protocol.DiagnosticSeverityError {
			t.Errorf("did not expect errors in types.idl, got %q", d.Message)
		}
	}
}

func TestStrictParseErrors(t *testing.T) {
	s := analyze(t, map[protocol.DocumentUri]string{typesURI: "struct Point { int x }\n"})
	diags := s.Diagnostics(typesURI)
	if len(diags) == 0 || *diags[0].Severity != protocol.DiagnosticSeverityError {
		t.Fatalf("expected a parse error, got %+v", diags)
	}
	if edits := s.Format(typesURI); edits != nil {
		t.Errorf("expected no formatting edits for a broken document, got %+v", edits)
	}
}

func TestLintFindingsPublished(t *testing.T) {
	s := analyze(t, map[protocol.DocumentUri]string{typesURI: "struct point { int x; }\n"})
	var found bool
	for _, d := range s.Diagnostics(typesURI) {
		if strings.Contains(d.Message, "should be UpperCamelCase") {
			found = true
			if *d.Severity != protocol.DiagnosticSeverityWarning {
				t.Errorf("expected warning severity, got %v", *d.Severity)
			}
		}
	}
	if !found {
		t.Errorf("expected a naming warning, got %+v", s.Diagnostics(typesURI))
	}
}

func TestDiagnosticsNeverNil(t *testing.T) {
	s := analyze(t, map[protocol.DocumentUri]string{typesURI: ""})
	if d := s.Diagnostics(typesURI); d == nil {
		t.Error("expected an empty slice, got nil")
	}
}

func TestHoverClass(t *testing.T) {
	s := geometry(t)
	hover := s.Hover(shapesURI, protocol.Position{Line: 0, Character: 12})
	if hover == nil {
		t.Fatal("expected hover for Shape")
	}
	value := hover.Contents.(protocol.MarkupContent).Value
	for _, want := range []string{"**class Shape**", "`shapes.idl`", "`Shape_create`", "`Shape_destroy`", "`Shape_corners`", "`Shape_isVisible`", "`Shape_Point_CResult`"} {
		if !strings.Contains(value, want) {
			t.Errorf("expected hover to contain %q\n%s", want, value)
		}
	}
}

func TestHoverAcrossFiles(t *testing.T) {
	s := geometry(t)
	hover := s.Hover(shapesURI, protocol.Position{Line: 3, Character: 6})
	if hover == nil {
		t.Fatal("expected hover for Color")
	}
	value := hover.Contents.(protocol.MarkupContent).Value
	for _, want := range []string{"**enum Color**", "`types.idl`", "RED = 2,", "```idl"} {
		if !strings.Contains(value, want) {
			t.Errorf("expected hover to contain %q\n%s", want, value)
		}
	}
	if s.Hover(shapesURI, protocol.Position{Line: 1, Character: 14}) != nil {
		t.Error("expected no hover for a primitive")
	}
}

func TestDefinition(t *testing.T) {
	s := geometry(t)
	loc := s.Definition(shapesURI, protocol.Position{Line: 2, Character: 13})
	if loc == nil {
		t.Fatal("expected a definition for Point")
	}
	if loc.URI != typesURI {
		t.Errorf("expected %s, got %s", typesURI, loc.URI)
	}
	if loc.Range.Start.Line != 1 || loc.Range.Start.Character != 0 {
		t.Errorf("expected 1:0, got %d:%d", loc.Range.Start.Line, loc.Range.Start.Character)
	}
	if s.Definition(shapesURI, protocol.Position{Line: 2, Character: 20}) != nil {
		t.Error("expected no definition for a method name")
	}
}

func TestComplete(t *testing.T) {
	s := analyze(t, map[protocol.DocumentUri]string{
		typesURI:  typesText,
		shapesURI: "interface Shape {\n    Po\n}\n",
	})
	items := s.Complete(shapesURI, protocol.Position{Line: 1, Character: 6})
	var labels []string
	for _, item := range items {
		labels = append(labels, item.Label)
	}
	if strings.Join(labels, ",") != "Point" {
		t.Fatalf("expected [Point], got %v", labels)
	}
	if items[0].Kind == nil || *items[0].Kind != protocol.CompletionItemKindStruct {
		t.Errorf("expected a struct completion, got %+v", items[0])
	}

	all := s.Complete(shapesURI, protocol.Position{Line: 1, Character: 0})
	if len(all) < 5 {
		t.Errorf("expected every type with an empty prefix, got %d items", len(all))
	}
}

func TestFormat(t *testing.T) {
	s := analyze(t, map[protocol.DocumentUri]string{typesURI: "struct Point {int x;int y;}"})
	edits := s.Format(typesURI)
	if len(edits) != 1 {
		t.Fatalf("expected one edit, got %+v", edits)
	}
	want := "struct Point {\n    int x;\n    int y;\n}\n"
	if edits[0].NewText != want {
		t.Errorf("expected %q, got %q", want, edits[0].NewText)
	}
	if end := edits[0].Range.End; end.Line != 0 || end.Character != 27 {
		t.Errorf("expected the edit to end at 0:27, got %d:%d", end.Line, end.Character)
	}

	clean := analyze(t, map[protocol.DocumentUri]string{typesURI: want})
	if edits := clean.Format(typesURI); edits == nil || len(edits) != 0 {
		t.Errorf("expected no edits for a formatted document, got %+v", edits)
	}
}
