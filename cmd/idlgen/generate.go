package main

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lhaig/idlgen/internal/backend"
	"github.com/lhaig/idlgen/internal/compiler"
	"github.com/lhaig/idlgen/internal/config"
	"github.com/lhaig/idlgen/internal/diagnostic"
	"github.com/lhaig/idlgen/internal/emit"
)

// selectTargets resolves the backend list: the explicit list or the
// defaults, plus jni and python when their outputs were asked for
func selectTargets(list string, java, python bool) []string {
	var targets []string
	if strings.TrimSpace(list) == "" {
		targets = append(targets, backend.DefaultTargets...)
	} else {
		for _, t := range strings.Split(list, ",") {
			if t = strings.TrimSpace(t); t != "" {
				targets = append(targets, t)
			}
		}
	}
	has := func(name string) bool {
		for _, t := range targets {
			if t == name {
				return true
			}
		}
		return false
	}
	if java && !has(backend.JNI) {
		targets = append(targets, backend.JNI)
	}
	if python && !has(backend.Python) {
		targets = append(targets, backend.Python)
	}
	return targets
}

func handleGenerate(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("generate", stderr)
	out := fs.String("o", ".", "output directory")
	namespace := fs.String("n", "", "C++ namespace")
	targetList := fs.String("targets", "", "comma-separated backends")
	implHeader := fs.String("impl-header", "", "implementation header")
	apiMacro := fs.String("api-macro", "", "export macro")
	java := fs.Bool("java", false, "generate JNI and Java bindings")
	javaPackage := fs.String("java-package", "", "Java package")
	javaOutput := fs.String("java-output", "", "Java source root")
	python := fs.Bool("python", false, "generate the Python module")
	pythonOutput := fs.String("python-output", "", "Python module directory")
	libraryName := fs.String("library-name", "", "shared library loaded by the Python module")
	strict := fs.Bool("strict", false, "treat malformed declarations as errors")
	var v verbosity
	fs.Var(&v, "v", "verbose logging")
	paths, err := parseInterleaved(fs, args)
	if err != nil {
		return 1
	}
	configureLogging(v, nil)

	if len(paths) == 0 {
		return generateFromConfig(stdout, stderr)
	}

	start := time.Now()
	sources, ok := readSources(paths, stderr)
	if !ok {
		return 1
	}
	req := compiler.Request{
		Sources: sources,
		Options: emit.Options{
			Namespace:   *namespace,
			APIMacro:    *apiMacro,
			ImplHeader:  *implHeader,
			JavaPackage: *javaPackage,
			LibraryName: *libraryName,
		},
		Targets: selectTargets(*targetList, *java || *javaPackage != "" || *javaOutput != "", *python || *pythonOutput != ""),
		Strict:  *strict,
	}
	layout := compiler.Layout{Dir: *out, JavaDir: *javaOutput, PythonDir: *pythonOutput}

	written, diags, err := generate(req, layout)
	printWarnings(stderr, diags)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}
	for _, path := range written {
		fmt.Fprintf(stdout, "Generated: %s\n", path)
	}
	fmt.Fprintf(stdout, "Done in %s\n", time.Since(start).Round(time.Millisecond))
	return 0
}

// generate runs one request and writes its artifacts
func generate(req compiler.Request, layout compiler.Layout) ([]string, *diagnostic.Diagnostics, error) {
	res, err := compiler.Generate(req)
	var diags *diagnostic.Diagnostics
	if res != nil {
		diags = res.Diagnostics
	}
	if err != nil {
		return nil, diags, err
	}
	written, err := res.Write(layout)
	return written, diags, err
}

type bundleOutput struct {
	written []string
	diags   *diagnostic.Diagnostics
}

// generateFromConfig runs every bundle of the nearest idlgen.toml
// concurrently. Output is printed in bundle order once all have finished.
func generateFromConfig(stdout, stderr io.Writer) int {
	start := time.Now()
	cfg, err := config.FindAndLoad(".")
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}
	if cfg == nil {
		fmt.Fprintf(stderr, "Error: no input files specified and no %s found\n", config.FileName)
		return 1
	}

	outputs := make([]bundleOutput, len(cfg.Bundles))
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(runtime.NumCPU())
	for i, b := range cfg.Bundles {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			paths, err := cfg.InputPaths(b)
			if err != nil {
				return err
			}
			sources, err := compiler.ReadSources(paths)
			if err != nil {
				return fmt.Errorf("bundle %s: %w", b.Namespace, err)
			}
			req := compiler.Request{
				Sources: sources,
				Options: b.Options(),
				Targets: selectTargets(strings.Join(b.Targets, ","), b.JavaPackage != "" || b.JavaOutput != "", b.PythonOutput != ""),
				Strict:  b.Strict,
			}
			layout := compiler.Layout{Dir: cfg.OutputDir(b), JavaDir: cfg.JavaDir(b), PythonDir: cfg.PythonDir(b)}
			written, diags, err := generate(req, layout)
			outputs[i] = bundleOutput{written: written, diags: diags}
			if err != nil {
				return fmt.Errorf("bundle %s: %w", b.Namespace, err)
			}
			return nil
		})
	}
	err = g.Wait()

	for _, o := range outputs {
		printWarnings(stderr, o.diags)
		for _, path := range o.written {
			fmt.Fprintf(stdout, "Generated: %s\n", path)
		}
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Done in %s (%d bundles)\n", time.Since(start).Round(time.Millisecond), len(cfg.Bundles))
	return 0
}

func printWarnings(stderr io.Writer, diags *diagnostic.Diagnostics) {
	if diags == nil || diags.HasErrors() {
		return
	}
	for _, w := range diags.Warnings() {
		fmt.Fprintln(stderr, w)
	}
}
