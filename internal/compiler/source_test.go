package compiler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeFile creates a file with the given content in dir.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func TestStem(t *testing.T) {
	tests := map[string]string{
		"shapes.idl":           "shapes",
		"src/face_types.idl":   "face_types",
		"/abs/path/engine.idl": "engine",
		"noext":                "noext",
	}
	for in, want := range tests {
		if got := Stem(in); got != want {
			t.Errorf("Stem(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestReadSourcesKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	b := writeFile(t, dir, "b.idl", "struct B { int y; }")
	a := writeFile(t, dir, "a.idl", "struct A { int x; }")

	sources, err := ReadSources([]string{b, a})
	if err != nil {
		t.Fatalf("ReadSources: %v", err)
	}
	if len(sources) != 2 || sources[0].Name != "b" || sources[1].Name != "a" {
		t.Fatalf("expected sources b, a in input order, got %+v", sources)
	}
	if sources[1].Text != "struct A { int x; }" {
		t.Errorf("expected the file text, got %q", sources[1].Text)
	}
}

func TestReadSourcesExpandsBundles(t *testing.T) {
	dir := t.TempDir()
	bundle := writeFile(t, dir, "geo.txtar", "comment\n-- types.idl --\nstruct Point { int x; }\n-- shapes.idl --\nclass Shape { Shape(); }\n")
	extra := writeFile(t, dir, "extra.idl", "enum Mode { A, B }")

	sources, err := ReadSources([]string{bundle, extra})
	if err != nil {
		t.Fatalf("ReadSources: %v", err)
	}
	var names []string
	for _, s := range sources {
		names = append(names, s.Name)
	}
	if got := strings.Join(names, ","); got != "types,shapes,extra" {
		t.Errorf("expected types,shapes,extra, got %s", got)
	}
}

func TestReadSourcesErrors(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "shapes.idl", "")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	second := writeFile(t, filepath.Join(dir, "sub"), "shapes.idl", "")

	tests := []struct {
		name    string
		paths   []string
		wantErr string
	}{
		{"missing file", []string{filepath.Join(dir, "missing.idl")}, "failed to read input"},
		{"stem collision", []string{first, second}, "share the file stem \"shapes\""},
		{"bad bundle", []string{writeFile(t, dir, "bad.txtar", "-- notes.txt --\nhello\n")}, "not an .idl file"},
		{"empty bundle", []string{writeFile(t, dir, "empty.txtar", "just a comment\n")}, "no .idl files"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSources(tt.paths)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
