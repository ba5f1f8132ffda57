package diagnostic

import (
	"strings"
	"testing"
)

func TestDiagnosticString(t *testing.T) {
	tests := []struct {
		d    Diagnostic
		want string
	}{
		{Diagnostic{Severity: Error, Message: "unknown type 'Pointt'", File: "shapes", Line: 3, Column: 10},
			"error[shapes:3:10]: unknown type 'Pointt'"},
		{Diagnostic{Severity: Warning, Message: "skipped member", File: "types", Line: 1, Column: 2, Hint: "add a semicolon"},
			"warning[types:1:2]: skipped member\n  hint: add a semicolon"},
		{Diagnostic{Severity: Error, Message: "dependency cycle detected: a -> b -> a"},
			"error: dependency cycle detected: a -> b -> a"},
	}
	for _, tt := range tests {
		if got := tt.d.String(); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestHelpersUseCurrentFile(t *testing.T) {
	d := ForFile("types")
	d.Warningf(1, 1, "first")
	d.SetFile("shapes")
	d.ErrorWithHint(2, 5, "second", "hint")
	d.ErrorfInFile("other", 3, 1, "third %d", 3)

	all := d.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 diagnostics, got %d", len(all))
	}
	if all[0].File != "types" || all[1].File != "shapes" || all[2].File != "other" {
		t.Errorf("unexpected files %q %q %q", all[0].File, all[1].File, all[2].File)
	}
	if all[2].Message != "third 3" {
		t.Errorf("expected formatted message, got %q", all[2].Message)
	}
}

func TestCounts(t *testing.T) {
	d := New()
	d.Errorf(1, 1, "e")
	d.Warningf(2, 1, "w1")
	d.Warningf(3, 1, "w2")
	d.Infof(4, 1, "i")

	if !d.HasErrors() || d.ErrorCount() != 1 || d.WarningCount() != 2 || d.Count() != 4 {
		t.Errorf("unexpected counts: errors %d warnings %d total %d", d.ErrorCount(), d.WarningCount(), d.Count())
	}
	if got := len(d.InFile("")); got != 4 {
		t.Errorf("expected 4 diagnostics without a file, got %d", got)
	}
	d.Clear()
	if d.Count() != 0 || d.HasErrors() {
		t.Error("expected Clear to remove everything")
	}
}

func TestMerge(t *testing.T) {
	a := ForFile("a")
	a.Errorf(1, 1, "from a")
	b := ForFile("b")
	b.Warningf(1, 1, "from b")
	a.Merge(b)
	a.Merge(nil)
	if a.Count() != 2 || a.All()[1].File != "b" {
		t.Errorf("expected b's diagnostic appended, got %v", a.All())
	}
}

func TestSortIsStableByFileAndPosition(t *testing.T) {
	d := New()
	d.ErrorfInFile("types", 5, 1, "types 5")
	d.ErrorfInFile("shapes", 2, 9, "shapes 2:9 first")
	d.ErrorfInFile("shapes", 2, 3, "shapes 2:3")
	d.WarningfInFile("shapes", 2, 9, "shapes 2:9 second")
	d.Errorf(0, 0, "no file")
	d.Sort()

	var got []string
	for _, item := range d.All() {
		got = append(got, item.Message)
	}
	want := "no file|shapes 2:3|shapes 2:9 first|shapes 2:9 second|types 5"
	if strings.Join(got, "|") != want {
		t.Errorf("expected %s, got %s", want, strings.Join(got, "|"))
	}
}

func TestPromote(t *testing.T) {
	d := New()
	d.Warningf(1, 1, "w")
	d.Infof(2, 1, "i")
	if d.HasErrors() {
		t.Fatal("expected no errors before promotion")
	}
	d.Promote()
	if d.ErrorCount() != 1 {
		t.Errorf("expected the warning to become an error, got %d errors", d.ErrorCount())
	}
	if d.All()[1].Severity != Info {
		t.Error("expected infos to stay infos")
	}
}

func TestFormat(t *testing.T) {
	d := ForFile("shapes")
	if d.Format() != "" {
		t.Errorf("expected empty output, got %q", d.Format())
	}
	d.Errorf(3, 10, "unknown type 'Pointt'")
	d.Warningf(5, 1, "skipped malformed struct member")
	want := "error[shapes:3:10]: unknown type 'Pointt'\nwarning[shapes:5:1]: skipped malformed struct member"
	if got := d.Format(); got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}
