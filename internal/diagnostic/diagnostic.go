package diagnostic

import (
	"fmt"
	"sort"
	"strings"
)

// Severity represents the severity level of a diagnostic message
type Severity int

const (
	Error Severity = iota
	Warning
	Info
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	default:
		return "unknown"
	}
}

// Diagnostic is a single problem found in an IDL source file
type Diagnostic struct {
	Severity Severity
	Message  string
	File     string // file stem, empty for problems not tied to one file
	Line     int
	Column   int
	Hint     string // optional suggestion
}

// String formats the diagnostic as error[file:line:col]: message
func (d Diagnostic) String() string {
	var b strings.Builder
	if d.File == "" && d.Line == 0 {
		fmt.Fprintf(&b, "%s: %s", d.Severity, d.Message)
	} else {
		fmt.Fprintf(&b, "%s[%s:%d:%d]: %s", d.Severity, d.File, d.Line, d.Column, d.Message)
	}
	if d.Hint != "" {
		fmt.Fprintf(&b, "\n  hint: %s", d.Hint)
	}
	return b.String()
}

// Diagnostics collects diagnostics for one or more files. Messages added
// through the formatted helpers are attributed to the current file.
type Diagnostics struct {
	file  string
	items []Diagnostic
}

// New creates a new empty Diagnostics collection
func New() *Diagnostics {
	return &Diagnostics{
		items: make([]Diagnostic, 0),
	}
}

// ForFile creates a collection whose helpers attribute messages to file
func ForFile(file string) *Diagnostics {
	d := New()
	d.file = file
	return d
}

// SetFile changes the file that subsequent helpers attribute messages to
func (d *Diagnostics) SetFile(file string) {
	d.file = file
}

// Add appends a fully populated diagnostic
func (d *Diagnostics) Add(item Diagnostic) {
	d.items = append(d.items, item)
}

// Merge appends every diagnostic from other
func (d *Diagnostics) Merge(other *Diagnostics) {
	if other == nil {
		return
	}
	d.items = append(d.items, other.items...)
}

// Errorf adds an error diagnostic with formatted message
func (d *Diagnostics) Errorf(line, col int, format string, args ...interface{}) {
	d.add(Error, line, col, fmt.Sprintf(format, args...), "")
}

// Warningf adds a warning diagnostic with formatted message
func (d *Diagnostics) Warningf(line, col int, format string, args ...interface{}) {
	d.add(Warning, line, col, fmt.Sprintf(format, args...), "")
}

// Infof adds an info diagnostic with formatted message
func (d *Diagnostics) Infof(line, col int, format string, args ...interface{}) {
	d.add(Info, line, col, fmt.Sprintf(format, args...), "")
}

// ErrorWithHint adds an error diagnostic with an optional hint
func (d *Diagnostics) ErrorWithHint(line, col int, msg, hint string) {
	d.add(Error, line, col, msg, hint)
}

// WarningWithHint adds a warning diagnostic with an optional hint
func (d *Diagnostics) WarningWithHint(line, col int, msg, hint string) {
	d.add(Warning, line, col, msg, hint)
}

// ErrorfInFile adds an error diagnostic attributed to an explicit file
func (d *Diagnostics) ErrorfInFile(file string, line, col int, format string, args ...interface{}) {
	d.items = append(d.items, Diagnostic{
		Severity: Error,
		Message:  fmt.Sprintf(format, args...),
		File:     file,
		Line:     line,
		Column:   col,
	})
}

// WarningfInFile adds a warning diagnostic attributed to an explicit file
func (d *Diagnostics) WarningfInFile(file string, line, col int, format string, args ...interface{}) {
	d.items = append(d.items, Diagnostic{
		Severity: Warning,
		Message:  fmt.Sprintf(format, args...),
		File:     file,
		Line:     line,
		Column:   col,
	})
}

func (d *Diagnostics) add(sev Severity, line, col int, msg, hint string) {
	d.items = append(d.items, Diagnostic{
		Severity: sev,
		Message:  msg,
		File:     d.file,
		Line:     line,
		Column:   col,
		Hint:     hint,
	})
}

// HasErrors returns true if there are any error-level diagnostics
func (d *Diagnostics) HasErrors() bool {
	for _, item := range d.items {
		if item.Severity == Error {
			return true
		}
	}
	return false
}

// Errors returns only the error-level diagnostics
func (d *Diagnostics) Errors() []Diagnostic {
	return d.filter(func(item Diagnostic) bool { return item.Severity == Error })
}

// Warnings returns only the warning-level diagnostics
func (d *Diagnostics) Warnings() []Diagnostic {
	return d.filter(func(item Diagnostic) bool { return item.Severity == Warning })
}

// InFile returns the diagnostics attributed to file
func (d *Diagnostics) InFile(file string) []Diagnostic {
	return d.filter(func(item Diagnostic) bool { return item.File == file })
}

func (d *Diagnostics) filter(keep func(Diagnostic) bool) []Diagnostic {
	out := make([]Diagnostic, 0)
	for _, item := range d.items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// All returns all diagnostics regardless of severity
func (d *Diagnostics) All() []Diagnostic {
	return d.items
}

// Count returns the total number of diagnostics
func (d *Diagnostics) Count() int {
	return len(d.items)
}

// ErrorCount returns the number of error-level diagnostics
func (d *Diagnostics) ErrorCount() int {
	return len(d.Errors())
}

// WarningCount returns the number of warning-level diagnostics
func (d *Diagnostics) WarningCount() int {
	return len(d.Warnings())
}

// Promote turns every warning into an error. Used by strict mode.
func (d *Diagnostics) Promote() {
	for i := range d.items {
		if d.items[i].Severity == Warning {
			d.items[i].Severity = Error
		}
	}
}

// Sort orders diagnostics by file, then position. The sort is stable so
// diagnostics at the same position keep their insertion order.
func (d *Diagnostics) Sort() {
	sort.SliceStable(d.items, func(i, j int) bool {
		a, b := d.items[i], d.items[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}

// Format returns human-readable messages, one per line.
// Output format:
//
//	error[shapes:3:10]: unknown type 'Pointt'
//	  hint: did you mean 'Point'?
//	warning[shapes:5:1]: skipped malformed struct member
func (d *Diagnostics) Format() string {
	if len(d.items) == 0 {
		return ""
	}
	lines := make([]string, len(d.items))
	for i, item := range d.items {
		lines[i] = item.String()
	}
	return strings.Join(lines, "\n")
}

// Clear removes all diagnostics from the collection
func (d *Diagnostics) Clear() {
	d.items = make([]Diagnostic, 0)
}
