package backend

import (
	"strings"
	"testing"

	"github.com/lhaig/idlgen/internal/emit"
	"github.com/lhaig/idlgen/internal/idltest"
)

func TestAllTargetsRegistered(t *testing.T) {
	want := []string{"capi", "client", "jni", "python", "wasm"}
	got := All()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("expected targets %v, got %v", want, got)
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		names   []string
		wantErr string
	}{
		{names: DefaultTargets},
		{names: []string{"python", "jni"}},
		{names: []string{"rust"}, wantErr: "unknown target \"rust\""},
		{names: []string{"capi", "capi"}, wantErr: "requested twice"},
	}
	for _, tt := range tests {
		backends, err := Lookup(tt.names)
		if tt.wantErr != "" {
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Lookup(%v): expected error containing %q, got %v", tt.names, tt.wantErr, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Lookup(%v): unexpected error: %v", tt.names, err)
		}
		for i, b := range backends {
			if b.Name() != tt.names[i] {
				t.Errorf("expected backend %d to be %s, got %s", i, tt.names[i], b.Name())
			}
		}
	}
}

func TestRegisterTwicePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic when registering capi twice")
		}
	}()
	RegisterFunc(CAPI, nil)
}

func TestEveryBackendGenerates(t *testing.T) {
	g := idltest.Graph(t, idltest.Geometry)
	for _, name := range All() {
		b, _ := Get(name)
		out, err := b.Generate(g, emit.Options{Namespace: "geo"})
		if err != nil {
			t.Errorf("%s: unexpected error: %v", name, err)
			continue
		}
		if len(out) == 0 {
			t.Errorf("%s: expected artifacts", name)
		}
		for file, text := range out {
			if !strings.Contains(text, "AUTO-GENERATED - DO NOT EDIT") {
				t.Errorf("%s: expected %s to carry the banner", name, file)
			}
		}
	}
}
