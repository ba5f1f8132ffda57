// Package emit holds what the binding generators share: an indenting text
// writer, the generation options, the ABI naming rules every target must
// agree on, and the per-class emission contract.
package emit

import (
	"fmt"
	"strings"
)

// Banner opens every generated artifact.
const Banner = "// AUTO-GENERATED - DO NOT EDIT"

// Writer accumulates generated text line by line with four-space
// indentation.
type Writer struct {
	sb     strings.Builder
	indent int
	unit   string
}

// NewWriter creates a Writer indenting with four spaces
func NewWriter() *Writer {
	return &Writer{unit: "    "}
}

// Line writes s at the current indentation. An empty s writes a bare
// newline.
func (w *Writer) Line(s string) {
	if s != "" {
		w.sb.WriteString(strings.Repeat(w.unit, w.indent))
		w.sb.WriteString(s)
	}
	w.sb.WriteString("\n")
}

// Linef formats and writes one line at the current indentation
func (w *Writer) Linef(format string, args ...any) {
	w.Line(fmt.Sprintf(format, args...))
}

// Lines writes each line at the current indentation
func (w *Writer) Lines(lines ...string) {
	for _, l := range lines {
		w.Line(l)
	}
}

// Blank writes an empty line
func (w *Writer) Blank() {
	w.sb.WriteString("\n")
}

// Append copies the text of other verbatim
func (w *Writer) Append(other *Writer) {
	w.sb.WriteString(other.String())
}

// Indent increases the indentation by one level
func (w *Writer) Indent() { w.indent++ }

// Dedent decreases the indentation by one level
func (w *Writer) Dedent() {
	if w.indent > 0 {
		w.indent--
	}
}

// String returns the text written so far
func (w *Writer) String() string {
	return w.sb.String()
}
