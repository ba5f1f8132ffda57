// Package compiler runs the generation pipeline: parse every source,
// resolve the sources into one module graph, then run each requested
// backend over the graph.
package compiler

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/tliron/commonlog"

	"github.com/lhaig/idlgen/internal/backend"
	"github.com/lhaig/idlgen/internal/diagnostic"
	"github.com/lhaig/idlgen/internal/emit"
	"github.com/lhaig/idlgen/internal/model"
	"github.com/lhaig/idlgen/internal/module"
	"github.com/lhaig/idlgen/internal/parser"
)

var log = commonlog.GetLogger("idlgen.compiler")

// ErrDiagnostics is wrapped by every DiagnosticError.
var ErrDiagnostics = errors.New("compilation errors")

// DiagnosticError reports a run that stopped because the sources have
// errors.
type DiagnosticError struct {
	Diagnostics *diagnostic.Diagnostics
}

func (e *DiagnosticError) Error() string {
	return fmt.Sprintf("%s:\n%s", ErrDiagnostics, e.Diagnostics.Format())
}

func (e *DiagnosticError) Unwrap() error { return ErrDiagnostics }

// Request describes one generation run.
type Request struct {
	Sources []Source
	Options emit.Options
	// Targets names the backends to run. Empty means backend.DefaultTargets.
	Targets []string
	// Strict makes malformed constructs errors instead of warnings.
	Strict bool
}

// Artifact is one generated file.
type Artifact struct {
	Target  string
	Name    string
	Content string
}

// Result holds the output of a generation run
type Result struct {
	Diagnostics *diagnostic.Diagnostics
	Graph       *module.Graph
	Artifacts   []Artifact
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DefaultNamespace derives a namespace from the first source stem, with
// '-' replaced by '_'.
func DefaultNamespace(sources []Source) string {
	if len(sources) == 0 {
		return ""
	}
	return strings.ReplaceAll(sources[0].Name, "-", "_")
}

// Check runs parse + resolve only (no codegen). Diagnostics are sorted by
// file and position.
func Check(sources []Source, strict bool) (*module.Graph, *diagnostic.Diagnostics) {
	diags := diagnostic.New()
	files := make([]*model.File, 0, len(sources))
	for _, s := range sources {
		f, d := parser.ParseFile(s.Name, s.Text, strict)
		diags.Merge(d)
		files = append(files, f)
	}
	g, d := module.Resolve(files)
	diags.Merge(d)
	diags.Sort()
	return g, diags
}

// Generate runs the full pipeline. When the sources have errors it
// returns the diagnostics in both the Result and a *DiagnosticError, and
// no artifacts; a failing backend likewise leaves Artifacts empty.
func Generate(req Request) (*Result, error) {
	if len(req.Sources) == 0 {
		return nil, errors.New("no input sources")
	}
	opts := req.Options
	if opts.Namespace == "" {
		opts.Namespace = DefaultNamespace(req.Sources)
	}
	if !identifier.MatchString(opts.Namespace) {
		return nil, fmt.Errorf("namespace %q is not a valid identifier", opts.Namespace)
	}
	targets := req.Targets
	if len(targets) == 0 {
		targets = backend.DefaultTargets
	}
	backends, err := backend.Lookup(targets)
	if err != nil {
		return nil, fmt.Errorf("failed to select targets: %w", err)
	}

	start := time.Now()
	g, diags := Check(req.Sources, req.Strict)
	res := &Result{Diagnostics: diags, Graph: g}
	log.Debugf("resolved %d files in %s", len(req.Sources), time.Since(start))
	if diags.HasErrors() {
		return res, &DiagnosticError{Diagnostics: diags}
	}
	for _, w := range diags.Warnings() {
		log.Warningf("%s", w)
	}

	var artifacts []Artifact
	owner := make(map[string]string)
	for _, b := range backends {
		stage := time.Now()
		out, err := b.Generate(g, opts)
		if err != nil {
			return res, fmt.Errorf("%s backend: %w", b.Name(), err)
		}
		names := make([]string, 0, len(out))
		for name := range out {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if prev, dup := owner[name]; dup {
				return res, fmt.Errorf("%s and %s both generate %s", prev, b.Name(), name)
			}
			owner[name] = b.Name()
			artifacts = append(artifacts, Artifact{Target: b.Name(), Name: name, Content: out[name]})
		}
		log.Debugf("%s: %d artifacts in %s", b.Name(), len(out), time.Since(stage))
	}
	res.Artifacts = artifacts
	log.Debugf("generated %d artifacts in %s", len(artifacts), time.Since(start))
	return res, nil
}
