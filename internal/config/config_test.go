package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sample = `
[[bundle]]
namespace = "geo"
inputs = ["idl/types.idl", "idl/shapes.idl"]
targets = ["capi", "client", "jni"]
output = "out/geo"
api-macro = "GEO_API"
impl-header = "include/geo.hpp"
java-package = "com.example.geo"
java-output = "android/src/main/java"
strict = true

[[bundle]]
namespace = "audio"
inputs = ["audio/*.idl"]
targets = ["python"]
python-output = "py"
library-name = "audio_engine"
`

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, sample)

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(c.Bundles) != 2 {
		t.Fatalf("bundle count = %d, want 2", len(c.Bundles))
	}
	geo := c.Bundles[0]
	if geo.Namespace != "geo" || !geo.Strict {
		t.Errorf("bundle 1 = %+v, want strict geo", geo)
	}
	if strings.Join(geo.Targets, ",") != "capi,client,jni" {
		t.Errorf("targets = %v, want capi,client,jni", geo.Targets)
	}
	opts := geo.Options()
	if opts.APIMacro != "GEO_API" || opts.ImplHeader != "include/geo.hpp" || opts.JavaPackage != "com.example.geo" {
		t.Errorf("options = %+v", opts)
	}
	if got, want := c.OutputDir(geo), filepath.Join(c.Dir, "out", "geo"); got != want {
		t.Errorf("output dir = %q, want %q", got, want)
	}
	if got, want := c.JavaDir(geo), filepath.Join(c.Dir, "android", "src", "main", "java"); got != want {
		t.Errorf("java dir = %q, want %q", got, want)
	}

	audio := c.Bundles[1]
	if audio.Output != DefaultOutput {
		t.Errorf("output = %q, want default %q", audio.Output, DefaultOutput)
	}
	if audio.Options().LibraryName != "audio_engine" {
		t.Errorf("library name = %q, want audio_engine", audio.Options().LibraryName)
	}
	if c.JavaDir(audio) != "" {
		t.Errorf("java dir = %q, want empty", c.JavaDir(audio))
	}
	if got, want := c.PythonDir(audio), filepath.Join(c.Dir, "py"); got != want {
		t.Errorf("python dir = %q, want %q", got, want)
	}
}

func TestInputPaths(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, sample)
	if err := os.MkdirAll(filepath.Join(dir, "audio"), 0755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"mixer.idl", "codec.idl", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, "audio", name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	geo, err := c.InputPaths(c.Bundles[0])
	if err != nil {
		t.Fatalf("InputPaths: %v", err)
	}
	if len(geo) != 2 || geo[0] != filepath.Join(c.Dir, "idl", "types.idl") {
		t.Errorf("geo inputs = %v, want the listed files in order", geo)
	}

	audio, err := c.InputPaths(c.Bundles[1])
	if err != nil {
		t.Fatalf("InputPaths: %v", err)
	}
	want := []string{filepath.Join(c.Dir, "audio", "codec.idl"), filepath.Join(c.Dir, "audio", "mixer.idl")}
	if strings.Join(audio, ",") != strings.Join(want, ",") {
		t.Errorf("audio inputs = %v, want %v", audio, want)
	}

	_, err = c.InputPaths(Bundle{Namespace: "x", Inputs: []string{"missing/*.idl"}})
	if err == nil || !strings.Contains(err.Error(), "matches no files") {
		t.Errorf("expected an error for an empty glob, got %v", err)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"no bundles", "", "no [[bundle]] entries"},
		{"unknown key", "[[bundle]]\nnamespace = \"a\"\ninputs = [\"a.idl\"]\ntarget = [\"capi\"]\n", "unknown keys: bundle.target"},
		{"missing namespace", "[[bundle]]\ninputs = [\"a.idl\"]\n", "namespace is required"},
		{"missing inputs", "[[bundle]]\nnamespace = \"a\"\n", "inputs are required"},
		{"duplicate output", "[[bundle]]\nnamespace = \"a\"\ninputs = [\"a.idl\"]\n[[bundle]]\nnamespace = \"a\"\ninputs = [\"b.idl\"]\n", "both generate a"},
		{"syntax", "[[bundle]\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content))
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.wantErr != "" && !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestFindAndLoad(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, sample)
	nested := filepath.Join(root, "src", "deep")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	c, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if c == nil {
		t.Fatal("expected to find the configuration in a parent directory")
	}
	abs, _ := filepath.Abs(root)
	if c.Dir != abs {
		t.Errorf("dir = %q, want %q", c.Dir, abs)
	}
}

func TestFindAndLoadMissing(t *testing.T) {
	c, err := FindAndLoad(t.TempDir())
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if c != nil {
		t.Errorf("expected nil without an idlgen.toml, got %+v", c)
	}
}
