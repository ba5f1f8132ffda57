package main

import (
	"bytes"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const calculator = `struct Point { int x; int y; }
interface Calculator {
    Calculator();
    int add(int a, int b);
    Point origin();
}
`

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestSelectTargets(t *testing.T) {
	tests := []struct {
		list         string
		java, python bool
		want         string
	}{
		{"", false, false, "capi,client,wasm"},
		{"", true, false, "capi,client,wasm,jni"},
		{"", true, true, "capi,client,wasm,jni,python"},
		{"python", false, false, "python"},
		{"capi, jni", true, false, "capi,jni"},
		{"capi,,client", false, true, "capi,client,python"},
	}
	for _, tt := range tests {
		got := strings.Join(selectTargets(tt.list, tt.java, tt.python), ",")
		if got != tt.want {
			t.Errorf("selectTargets(%q, %v, %v) = %s, want %s", tt.list, tt.java, tt.python, got, tt.want)
		}
	}
}

func TestParseInterleaved(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	out := fs.String("o", "", "")
	strict := fs.Bool("strict", false, "")
	var v verbosity
	fs.Var(&v, "v", "")

	paths, err := parseInterleaved(fs, []string{"a.idl", "-o", "out", "b.idl", "--strict", "-v", "-v", "--", "-c.idl"})
	if err != nil {
		t.Fatalf("parseInterleaved: %v", err)
	}
	if strings.Join(paths, ",") != "a.idl,b.idl,-c.idl" {
		t.Errorf("expected [a.idl b.idl -c.idl], got %v", paths)
	}
	if *out != "out" || !*strict || v != 2 {
		t.Errorf("expected -o out --strict and verbosity 2, got %q %v %d", *out, *strict, v)
	}
}

func TestUnknownCommand(t *testing.T) {
	code, _, stderr := runCommand(t, "build")
	if code != 1 || !strings.Contains(stderr, "Unknown command: build") {
		t.Errorf("expected exit 1 with an unknown command error, got %d %q", code, stderr)
	}
	if code, _, _ := runCommand(t); code != 1 {
		t.Errorf("expected exit 1 without arguments, got %d", code)
	}
}

func TestVersion(t *testing.T) {
	code, stdout, _ := runCommand(t, "version")
	if code != 0 || stdout != "idlgen "+version+"\n" {
		t.Errorf("unexpected version output %d %q", code, stdout)
	}
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, filepath.Join(dir, "calculator.idl"), calculator)
	out := filepath.Join(dir, "out")

	code, stdout, stderr := runCommand(t, "generate", "-o", out, "--python", input)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d\n%s", code, stderr)
	}
	for _, name := range []string{"calculator_c_api.h", "calculator_c_api.cpp", "calculator_export.h", "calculator_client.hpp", "idl_client.hpp", "calculator_wasm_bindings.cpp", "calculator.py"} {
		path := filepath.Join(out, name)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected %s to be written: %v", name, err)
		}
		if !strings.Contains(stdout, "Generated: "+path) {
			t.Errorf("expected stdout to report %s\n%s", path, stdout)
		}
	}
	if !strings.Contains(stdout, "Done in ") {
		t.Errorf("expected the elapsed time, got %q", stdout)
	}
}

func TestGenerateJavaOutput(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, filepath.Join(dir, "calculator.idl"), calculator)
	out := filepath.Join(dir, "out")
	javaRoot := filepath.Join(dir, "android")

	code, _, stderr := runCommand(t, "generate", "-o", out, "--targets", "capi", "--java-package", "com.example.calc", "--java-output", javaRoot, input)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d\n%s", code, stderr)
	}
	for _, path := range []string{
		filepath.Join(out, "calculator_jni.cpp"),
		filepath.Join(javaRoot, "com", "example", "calc", "Calculator.java"),
	} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected %s to be written: %v", path, err)
		}
	}
	if _, err := os.Stat(filepath.Join(out, "calculator_client.hpp")); err == nil {
		t.Error("the client backend was not requested")
	}
}

func TestGenerateReportsDiagnostics(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, filepath.Join(dir, "shapes.idl"), "interface Shape { Shape(); point origin(); }\n")

	code, stdout, stderr := runCommand(t, "generate", "-o", filepath.Join(dir, "out"), input)
	if code != 1 {
		t.Errorf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stderr, "unknown type 'point'") {
		t.Errorf("expected the resolution error on stderr, got %q", stderr)
	}
	if strings.Contains(stdout, "Generated:") {
		t.Errorf("expected nothing to be generated, got %q", stdout)
	}
}

func TestGenerateFromConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "idl", "calculator.idl"), calculator)
	writeFile(t, filepath.Join(dir, "idl", "extra", "audio.idl"), "interface Mixer { Mixer(); void mute(); }\n")
	writeFile(t, filepath.Join(dir, "idlgen.toml"), `
[[bundle]]
namespace = "calc"
inputs = ["idl/calculator.idl"]
targets = ["capi"]
output = "gen/calc"

[[bundle]]
namespace = "audio"
inputs = ["idl/extra/*.idl"]
targets = ["python"]
`)
	t.Chdir(filepath.Join(dir, "idl"))

	code, stdout, stderr := runCommand(t, "generate")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d\n%s", code, stderr)
	}
	for _, path := range []string{
		filepath.Join(dir, "gen", "calc", "calculator_c_api.h"),
		filepath.Join(dir, "generated", "audio.py"),
	} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected %s to be written: %v", path, err)
		}
	}
	calc := strings.Index(stdout, "calculator_c_api.h")
	audio := strings.Index(stdout, "audio.py")
	if calc < 0 || audio < 0 || calc > audio {
		t.Errorf("expected output in bundle order, got:\n%s", stdout)
	}
	if !strings.Contains(stdout, "(2 bundles)") {
		t.Errorf("expected the bundle count, got %q", stdout)
	}
}

func TestGenerateWithoutInputs(t *testing.T) {
	t.Chdir(t.TempDir())
	code, _, stderr := runCommand(t, "generate")
	if code != 1 || !strings.Contains(stderr, "no idlgen.toml found") {
		t.Errorf("expected a missing configuration error, got %d %q", code, stderr)
	}
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, filepath.Join(dir, "calculator.idl"), calculator)
	bad := writeFile(t, filepath.Join(dir, "broken.idl"), "struct Point { int x }\n")

	if code, stdout, _ := runCommand(t, "check", good); code != 0 || !strings.Contains(stdout, "No errors found.") {
		t.Errorf("expected a clean check, got %d %q", code, stdout)
	}
	if code, _, _ := runCommand(t, "check", bad); code != 0 {
		t.Errorf("expected a lenient check to pass with warnings, got %d", code)
	}
	code, _, stderr := runCommand(t, "check", "--strict", bad)
	if code != 1 || !strings.Contains(stderr, "error[broken:") {
		t.Errorf("expected a strict check to fail, got %d %q", code, stderr)
	}
}

func TestLint(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, filepath.Join(dir, "a.idl"), "interface Store { Store(); void delete(int Key); }\n")

	code, stdout, _ := runCommand(t, "lint", input)
	if code != 0 {
		t.Errorf("expected exit 0 for warnings, got %d", code)
	}
	for _, want := range []string{"reserved word in C++", "should be lowerCamelCase", "2 warning(s) found."} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in:\n%s", want, stdout)
		}
	}
	if code, _, _ := runCommand(t, "lint", "--werror", input); code != 1 {
		t.Errorf("expected --werror to fail, got %d", code)
	}
}

func TestFmt(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, filepath.Join(dir, "a.idl"), "struct Point {int x;int y;}")
	want := "struct Point {\n    int x;\n    int y;\n}\n"

	code, stdout, _ := runCommand(t, "fmt", input)
	if code != 0 || stdout != want {
		t.Errorf("expected %q, got %d %q", want, code, stdout)
	}

	if code, _, _ := runCommand(t, "fmt", "-w", input); code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	data, err := os.ReadFile(input)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != want {
		t.Errorf("expected the file to be rewritten, got %q", data)
	}
}

func TestDescribe(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, filepath.Join(dir, "calculator.idl"), calculator)

	code, stdout, stderr := runCommand(t, "describe", "-n", "calc", input)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d\n%s", code, stderr)
	}
	for _, want := range []string{`"namespace": "calc"`, `"symbol": "Calculator_add"`} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %s in:\n%s", want, stdout)
		}
	}

	out := filepath.Join(dir, "calc.cbor")
	if code, _, stderr := runCommand(t, "describe", "--format", "cbor", "-o", out, input); code != 0 {
		t.Fatalf("expected exit 0, got %d\n%s", code, stderr)
	}
	if info, err := os.Stat(out); err != nil || info.Size() == 0 {
		t.Errorf("expected a CBOR descriptor at %s: %v", out, err)
	}

	if code, _, stderr := runCommand(t, "describe", "--format", "xml", input); code != 1 || !strings.Contains(stderr, "unknown descriptor format") {
		t.Errorf("expected a format error, got %d %q", code, stderr)
	}
}
