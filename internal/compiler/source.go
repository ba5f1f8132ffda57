package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/tools/txtar"
)

// Source is one IDL input: the stem naming its artifacts and its text.
type Source struct {
	Name string
	Text string
}

// Stem returns the file stem of an IDL path: "src/shapes.idl" is
// "shapes".
func Stem(path string) string {
	base := filepath.Base(filepath.ToSlash(path))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ReadSources reads the IDL files at paths in the given order. A path
// ending in .txtar is a bundle whose members are expanded in place.
func ReadSources(paths []string) ([]Source, error) {
	var sources []Source
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}
		if strings.HasSuffix(path, ".txtar") {
			bundled, err := SourcesFromArchive(data)
			if err != nil {
				return nil, fmt.Errorf("bundle %s: %w", path, err)
			}
			sources = append(sources, bundled...)
			continue
		}
		sources = append(sources, Source{Name: Stem(path), Text: string(data)})
	}
	if err := checkStems(sources); err != nil {
		return nil, err
	}
	return sources, nil
}

// SourcesFromArchive returns the .idl members of a txtar archive in
// archive order. The archive comment is ignored.
func SourcesFromArchive(data []byte) ([]Source, error) {
	ar := txtar.Parse(data)
	var sources []Source
	for _, f := range ar.Files {
		if filepath.Ext(f.Name) != ".idl" {
			return nil, fmt.Errorf("archive member %s is not an .idl file", f.Name)
		}
		sources = append(sources, Source{Name: Stem(f.Name), Text: string(f.Data)})
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("archive contains no .idl files")
	}
	return sources, nil
}

// checkStems rejects inputs whose stems collide, since each stem names
// its own set of artifacts.
func checkStems(sources []Source) error {
	seen := make(map[string]bool, len(sources))
	for _, s := range sources {
		if seen[s.Name] {
			return fmt.Errorf("two inputs share the file stem %q", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}
