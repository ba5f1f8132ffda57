package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/lhaig/idlgen/internal/compiler"
	"github.com/lhaig/idlgen/internal/descriptor"
	"github.com/lhaig/idlgen/internal/formatter"
	"github.com/lhaig/idlgen/internal/linter"
	"github.com/lhaig/idlgen/internal/lsp"
	"github.com/lhaig/idlgen/internal/parser"
)

const version = "0.1.0"

const usage = `idlgen - C ABI and language binding generator for IDL files

Usage:
  idlgen generate [options] <file.idl|bundle.txtar>...   Generate bindings
  idlgen generate                                        Generate every bundle in idlgen.toml
  idlgen check [--strict] <files>...                     Parse and resolve only
  idlgen lint [--werror] <files>...                      Check naming and usage conventions
  idlgen fmt [-w] <file.idl>...                          Print files in canonical form
  idlgen describe [--format json|cbor] [-o file] <files>...
                                                         Export the resolved declarations
  idlgen lsp [--log file]                                Run the language server on stdio
  idlgen version                                         Print the version

Generate options:
  -o dir               Output directory (default .)
  -n namespace         C++ namespace (default: first file stem, '-' -> '_')
  --targets list       Comma-separated backends: capi, client, wasm, jni, python
                       (default capi,client,wasm)
  --impl-header file   Header declaring the implementation classes (default <namespace>.hpp)
  --api-macro NAME     Export macro (default <NAMESPACE>_API)
  --java               Also generate JNI and Java bindings
  --java-package pkg   Java package (default: namespace with '_' -> '.')
  --java-output dir    Java source root (default <out>/java)
  --python             Also generate the Python ctypes module
  --python-output dir  Python module directory (default <out>)
  --library-name name  Shared library loaded by the Python module (default namespace)
  --strict             Treat malformed declarations as errors
  -v                   Verbose logging (repeat for more)

Examples:
  idlgen generate -o out face_detector.idl
  idlgen generate -n geo --java --python types.idl shapes.idl
  idlgen describe --format cbor -o geo.cbor types.idl shapes.idl
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprint(stderr, usage)
		return 1
	}

	command := args[0]
	switch command {
	case "generate":
		return handleGenerate(args[1:], stdout, stderr)
	case "check":
		return handleCheck(args[1:], stdout, stderr)
	case "lint":
		return handleLint(args[1:], stdout, stderr)
	case "fmt":
		return handleFmt(args[1:], stdout, stderr)
	case "describe":
		return handleDescribe(args[1:], stdout, stderr)
	case "lsp":
		return handleLSP(args[1:], stderr)
	case "version", "--version":
		fmt.Fprintf(stdout, "idlgen %s\n", version)
		return 0
	case "help", "--help", "-h":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", command)
		fmt.Fprint(stderr, usage)
		return 1
	}
}

// verbosity counts repeated -v flags
type verbosity int

func (v *verbosity) String() string { return strconv.Itoa(int(*v)) }

func (v *verbosity) Set(s string) error {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	if b {
		*v++
	}
	return nil
}

func (v *verbosity) IsBoolFlag() bool { return true }

func configureLogging(v verbosity, path *string) {
	commonlog.Configure(int(v), path)
}

// newFlagSet creates a flag set that reports errors to stderr instead of
// exiting
func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	return fs
}

// parseInterleaved parses args allowing flags after positional
// arguments, and returns the positional arguments in order
func parseInterleaved(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		if args[0] == "--" {
			return append(positional, args[1:]...), nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func readSources(paths []string, stderr io.Writer) ([]compiler.Source, bool) {
	if len(paths) == 0 {
		fmt.Fprintln(stderr, "Error: no input files specified")
		return nil, false
	}
	sources, err := compiler.ReadSources(paths)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return nil, false
	}
	return sources, true
}

func handleCheck(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("check", stderr)
	strict := fs.Bool("strict", false, "treat malformed declarations as errors")
	var v verbosity
	fs.Var(&v, "v", "verbose logging")
	paths, err := parseInterleaved(fs, args)
	if err != nil {
		return 1
	}
	configureLogging(v, nil)

	sources, ok := readSources(paths, stderr)
	if !ok {
		return 1
	}
	_, diags := compiler.Check(sources, *strict)
	if diags.Count() > 0 {
		fmt.Fprintln(stderr, diags.Format())
	}
	if diags.HasErrors() {
		return 1
	}
	fmt.Fprintln(stdout, "No errors found.")
	return 0
}

func handleLint(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("lint", stderr)
	werror := fs.Bool("werror", false, "treat lint warnings as errors")
	var v verbosity
	fs.Var(&v, "v", "verbose logging")
	paths, err := parseInterleaved(fs, args)
	if err != nil {
		return 1
	}
	configureLogging(v, nil)

	sources, ok := readSources(paths, stderr)
	if !ok {
		return 1
	}
	g, diags := compiler.Check(sources, false)
	if diags.HasErrors() {
		fmt.Fprintln(stderr, diags.Format())
		return 1
	}

	lint := linter.Lint(g)
	if *werror {
		lint.Promote()
	}
	if lint.Count() == 0 {
		fmt.Fprintln(stdout, "No lint warnings.")
		return 0
	}
	fmt.Fprintln(stdout, lint.Format())
	fmt.Fprintf(stdout, "%d warning(s) found.\n", lint.WarningCount()+lint.ErrorCount())
	if lint.HasErrors() {
		return 1
	}
	return 0
}

func handleFmt(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("fmt", stderr)
	write := fs.Bool("w", false, "write the result back to the source file")
	paths, err := parseInterleaved(fs, args)
	if err != nil {
		return 1
	}
	if len(paths) == 0 {
		fmt.Fprintln(stderr, "Error: no input files specified")
		return 1
	}

	status := 0
	for _, path := range paths {
		source, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stderr, "Error reading file: %s\n", err)
			status = 1
			continue
		}
		f, diags := parser.ParseFile(compiler.Stem(path), string(source), true)
		if diags.HasErrors() {
			fmt.Fprintln(stderr, diags.Format())
			status = 1
			continue
		}
		formatted := formatter.Format(f)
		if !*write {
			fmt.Fprint(stdout, formatted)
			continue
		}
		if formatted == string(source) {
			continue
		}
		if err := os.WriteFile(path, []byte(formatted), 0644); err != nil {
			fmt.Fprintf(stderr, "Error writing file: %s\n", err)
			status = 1
			continue
		}
		fmt.Fprintf(stdout, "Formatted: %s\n", path)
	}
	return status
}

func handleDescribe(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("describe", stderr)
	formatName := fs.String("format", string(descriptor.JSON), "output format: json or cbor")
	out := fs.String("o", "", "output file (default stdout)")
	namespace := fs.String("n", "", "namespace recorded in the descriptor")
	strict := fs.Bool("strict", false, "treat malformed declarations as errors")
	paths, err := parseInterleaved(fs, args)
	if err != nil {
		return 1
	}
	format, err := descriptor.ParseFormat(*formatName)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}

	sources, ok := readSources(paths, stderr)
	if !ok {
		return 1
	}
	g, diags := compiler.Check(sources, *strict)
	if diags.HasErrors() {
		fmt.Fprintln(stderr, diags.Format())
		return 1
	}
	ns := *namespace
	if ns == "" {
		ns = compiler.DefaultNamespace(sources)
	}

	data, err := descriptor.Encode(descriptor.Build(g, ns), format)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}
	if *out == "" {
		stdout.Write(data)
		return 0
	}
	if err := os.WriteFile(*out, data, 0644); err != nil {
		fmt.Fprintf(stderr, "Error writing file: %s\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Wrote %s\n", *out)
	return 0
}

func handleLSP(args []string, stderr io.Writer) int {
	fs := newFlagSet("lsp", stderr)
	logPath := fs.String("log", "", "write logs to this file")
	var v verbosity
	fs.Var(&v, "v", "verbose logging")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	// stdout carries the protocol; logs go to stderr or the log file
	if *logPath != "" {
		configureLogging(v, logPath)
	} else {
		configureLogging(v, nil)
	}

	if err := lsp.New(version).RunStdio(); err != nil && !errors.Is(err, io.EOF) {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}
	return 0
}
