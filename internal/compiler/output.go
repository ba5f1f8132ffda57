package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lhaig/idlgen/internal/backend"
	"github.com/lhaig/idlgen/internal/jnibe"
)

// Layout places artifacts on disk. Empty JavaDir and PythonDir fall back
// to Dir.
type Layout struct {
	Dir string
	// JavaDir replaces the java/ prefix of the JNI Java sources; the
	// package path is kept.
	JavaDir   string
	PythonDir string
}

// Path returns where a is written
func (l Layout) Path(a Artifact) string {
	name := filepath.FromSlash(a.Name)
	switch {
	case a.Target == backend.JNI && l.JavaDir != "" && strings.HasPrefix(a.Name, jnibe.JavaDir+"/"):
		return filepath.Join(l.JavaDir, filepath.FromSlash(strings.TrimPrefix(a.Name, jnibe.JavaDir+"/")))
	case a.Target == backend.Python && l.PythonDir != "":
		return filepath.Join(l.PythonDir, name)
	}
	return filepath.Join(l.Dir, name)
}

// Write writes every artifact of r and returns the written paths in
// artifact order.
func (r *Result) Write(l Layout) ([]string, error) {
	paths := make([]string, 0, len(r.Artifacts))
	for _, a := range r.Artifacts {
		path := l.Path(a)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return paths, fmt.Errorf("failed to create output dir: %w", err)
		}
		if err := os.WriteFile(path, []byte(a.Content), 0644); err != nil {
			return paths, fmt.Errorf("failed to write output file: %w", err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
