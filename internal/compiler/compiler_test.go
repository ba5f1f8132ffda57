package compiler

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lhaig/idlgen/internal/emit"
	"github.com/lhaig/idlgen/internal/idltest"
)

func geometrySources(t *testing.T) []Source {
	t.Helper()
	sources, err := SourcesFromArchive([]byte(idltest.Geometry))
	if err != nil {
		t.Fatalf("SourcesFromArchive: %v", err)
	}
	return sources
}

func artifactNames(res *Result) []string {
	names := make([]string, 0, len(res.Artifacts))
	for _, a := range res.Artifacts {
		names = append(names, a.Name)
	}
	return names
}

func TestGenerateDefaultTargets(t *testing.T) {
	res, err := Generate(Request{Sources: geometrySources(t), Options: emit.Options{Namespace: "geo"}})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := []string{
		"geo_export.h",
		"shapes_c_api.cpp",
		"shapes_c_api.h",
		"types_c_api.cpp",
		"types_c_api.h",
		"idl_client.hpp",
		"shapes_client.cpp",
		"shapes_client.hpp",
		"types_client.cpp",
		"types_client.hpp",
		"geo_wasm_bindings.cpp",
	}
	if got := artifactNames(res); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("expected artifacts %v, got %v", want, got)
	}
	for _, a := range res.Artifacts {
		if a.Target == "" {
			t.Errorf("expected %s to record its target", a.Name)
		}
	}
}

func TestGenerateDefaultNamespace(t *testing.T) {
	sources := []Source{{Name: "face-detector", Text: "class Detector { Detector(); }"}}
	res, err := Generate(Request{Sources: sources, Targets: []string{"python"}})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Artifacts) != 1 || res.Artifacts[0].Name != "face_detector.py" {
		t.Errorf("expected face_detector.py, got %v", artifactNames(res))
	}
}

func TestUnresolvedTypeIsFatal(t *testing.T) {
	sources := []Source{{Name: "shapes", Text: "class Shape { Shape(); Pointt origin(); }"}}
	res, err := Generate(Request{Sources: sources, Options: emit.Options{Namespace: "geo"}})
	if err == nil {
		t.Fatal("expected an error for an unresolved type")
	}
	if !errors.Is(err, ErrDiagnostics) {
		t.Errorf("expected the error to wrap ErrDiagnostics, got %v", err)
	}
	var derr *DiagnosticError
	if !errors.As(err, &derr) {
		t.Fatalf("expected a *DiagnosticError, got %T", err)
	}
	if !strings.Contains(derr.Diagnostics.Format(), "unknown type 'Pointt'") {
		t.Errorf("expected the unknown type to be reported, got:\n%s", derr.Diagnostics.Format())
	}
	if res == nil || len(res.Artifacts) != 0 {
		t.Error("expected no artifacts when the sources have errors")
	}
}

func TestStrictParsing(t *testing.T) {
	sources := []Source{{Name: "shapes", Text: "struct Point { int x; int; }\nclass Shape { Shape(); }"}}

	res, err := Generate(Request{Sources: sources, Options: emit.Options{Namespace: "geo"}, Targets: []string{"capi"}})
	if err != nil {
		t.Fatalf("expected lenient parsing to succeed, got %v", err)
	}
	if res.Diagnostics.WarningCount() == 0 {
		t.Error("expected a warning for the malformed member")
	}

	_, err = Generate(Request{Sources: sources, Options: emit.Options{Namespace: "geo"}, Strict: true})
	if !errors.Is(err, ErrDiagnostics) {
		t.Errorf("expected strict parsing to fail, got %v", err)
	}
}

func TestGenerateRejectsBadRequests(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr string
	}{
		{"no sources", Request{}, "no input sources"},
		{"bad namespace", Request{Sources: []Source{{Name: "a", Text: ""}}, Options: emit.Options{Namespace: "9lives"}}, "not a valid identifier"},
		{"unknown target", Request{Sources: []Source{{Name: "a", Text: ""}}, Targets: []string{"rust"}}, "unknown target"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Generate(tt.req)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCheckReportsCycles(t *testing.T) {
	sources := []Source{
		{Name: "a", Text: "struct A { int x; }\ncallback UsesB(B b) -> void;"},
		{Name: "b", Text: "struct B { int y; }\ncallback UsesA(A a) -> void;"},
	}
	_, diags := Check(sources, false)
	if !diags.HasErrors() || !strings.Contains(diags.Format(), "cycle") {
		t.Errorf("expected a dependency cycle error, got:\n%s", diags.Format())
	}
}

func TestWriteLayout(t *testing.T) {
	dir := t.TempDir()
	res, err := Generate(Request{
		Sources: geometrySources(t),
		Options: emit.Options{Namespace: "geo", JavaPackage: "com.example.geo"},
		Targets: []string{"jni", "python"},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	layout := Layout{
		Dir:       filepath.Join(dir, "out"),
		JavaDir:   filepath.Join(dir, "src", "main", "java"),
		PythonDir: filepath.Join(dir, "py"),
	}
	paths, err := res.Write(layout)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(paths) != len(res.Artifacts) {
		t.Fatalf("expected %d paths, got %d", len(res.Artifacts), len(paths))
	}
	for _, want := range []string{
		filepath.Join(dir, "out", "geo_jni.cpp"),
		filepath.Join(dir, "src", "main", "java", "com", "example", "geo", "Geometry.java"),
		filepath.Join(dir, "py", "geo.py"),
	} {
		if _, err := os.Stat(want); err != nil {
			t.Errorf("expected %s to be written: %v", want, err)
		}
	}
}

func TestDeterministic(t *testing.T) {
	req := Request{Sources: geometrySources(t), Options: emit.Options{Namespace: "geo"}, Targets: []string{"capi", "client", "wasm", "jni", "python"}}
	first, err := Generate(req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	second, err := Generate(req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(first.Artifacts) != len(second.Artifacts) {
		t.Fatalf("expected the same artifact count, got %d and %d", len(first.Artifacts), len(second.Artifacts))
	}
	for i := range first.Artifacts {
		if first.Artifacts[i] != second.Artifacts[i] {
			t.Errorf("expected artifact %s to be identical across runs", first.Artifacts[i].Name)
		}
	}
}
