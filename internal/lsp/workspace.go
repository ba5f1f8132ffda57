package lsp

import (
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"
	"unicode"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/lhaig/idlgen/internal/diagnostic"
	"github.com/lhaig/idlgen/internal/emit"
	"github.com/lhaig/idlgen/internal/formatter"
	"github.com/lhaig/idlgen/internal/linter"
	"github.com/lhaig/idlgen/internal/model"
	"github.com/lhaig/idlgen/internal/module"
	"github.com/lhaig/idlgen/internal/parser"
	"github.com/lhaig/idlgen/internal/typemap"
)

// Workspace holds the text of the open documents. It is not safe for
// concurrent use.
type Workspace struct {
	docs map[protocol.DocumentUri]string
}

// NewWorkspace creates an empty workspace
func NewWorkspace() *Workspace {
	return &Workspace{docs: make(map[protocol.DocumentUri]string)}
}

// Open sets the text of uri, replacing any previous version
func (w *Workspace) Open(uri protocol.DocumentUri, text string) {
	w.docs[uri] = text
}

// Close forgets uri
func (w *Workspace) Close(uri protocol.DocumentUri) {
	delete(w.docs, uri)
}

// Snapshot is the analysis of every open document at one point in time.
// It is immutable.
type Snapshot struct {
	uris   []protocol.DocumentUri
	texts  map[protocol.DocumentUri]string
	stems  map[string]protocol.DocumentUri
	files  map[protocol.DocumentUri]*model.File
	graph  *module.Graph
	diags  map[protocol.DocumentUri][]protocol.Diagnostic
	broken map[protocol.DocumentUri]bool
}

// Analyze parses every open document strictly and resolves them together.
// Lint findings are added when the graph resolves cleanly.
func (w *Workspace) Analyze() *Snapshot {
	s := &Snapshot{
		texts:  make(map[protocol.DocumentUri]string, len(w.docs)),
		stems:  make(map[string]protocol.DocumentUri, len(w.docs)),
		files:  make(map[protocol.DocumentUri]*model.File, len(w.docs)),
		diags:  make(map[protocol.DocumentUri][]protocol.Diagnostic, len(w.docs)),
		broken: make(map[protocol.DocumentUri]bool),
	}
	for uri, text := range w.docs {
		s.uris = append(s.uris, uri)
		s.texts[uri] = text
	}
	sort.Slice(s.uris, func(i, j int) bool { return s.uris[i] < s.uris[j] })

	all := diagnostic.New()
	var files []*model.File
	for _, uri := range s.uris {
		stem := stemOf(uri)
		f, diags := parser.ParseFile(stem, s.texts[uri], true)
		if diags.HasErrors() {
			s.broken[uri] = true
		}
		if _, dup := s.stems[stem]; !dup {
			s.stems[stem] = uri
		}
		s.files[uri] = f
		files = append(files, f)
		all.Merge(diags)
	}

	g, diags := module.Resolve(files)
	s.graph = g
	all.Merge(diags)
	if !all.HasErrors() {
		all.Merge(linter.Lint(g))
	}
	all.Sort()

	for _, d := range all.All() {
		targets := s.uris
		if uri, ok := s.stems[d.File]; ok {
			targets = []protocol.DocumentUri{uri}
		}
		for _, uri := range targets {
			s.diags[uri] = append(s.diags[uri], toProtocol(d))
		}
	}
	log.Debugf("analyzed %d documents, %d diagnostics", len(s.uris), all.Count())
	return s
}

// URIs returns the analyzed documents in sorted order
func (s *Snapshot) URIs() []protocol.DocumentUri {
	return s.uris
}

// Diagnostics returns the diagnostics of uri, never nil
func (s *Snapshot) Diagnostics(uri protocol.DocumentUri) []protocol.Diagnostic {
	if d := s.diags[uri]; d != nil {
		return d
	}
	return []protocol.Diagnostic{}
}

// Hover describes the declared type under the cursor
func (s *Snapshot) Hover(uri protocol.DocumentUri, pos protocol.Position) *protocol.Hover {
	sym := s.symbolAt(uri, pos)
	if sym == nil {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s %s**\n\nDeclared in `%s.idl`\n", sym.Kind, sym.Name, sym.File)

	decl := &model.File{}
	switch sym.Kind {
	case model.KindEnum:
		decl.Enums = append(decl.Enums, *sym.Enum)
	case model.KindStruct:
		decl.Structs = append(decl.Structs, *sym.Struct)
	case model.KindCallback:
		decl.Callbacks = append(decl.Callbacks, *sym.Callback)
	}
	if !decl.Empty() {
		fmt.Fprintf(&b, "\n```idl\n%s```\n", formatter.Format(decl))
	}
	if sym.Kind == model.KindClass {
		writeClassABI(&b, sym.Class)
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: b.String(),
		},
	}
}

// writeClassABI lists the C ABI symbols generated for c
func writeClassABI(b *strings.Builder, c *model.Class) {
	b.WriteString("\nC ABI:\n")
	fmt.Fprintf(b, "- `%s`\n", emit.HandleType(c.Name))
	if c.Constructor() != nil {
		fmt.Fprintf(b, "- `%s`\n", emit.CreateSymbol(c.Name))
	}
	fmt.Fprintf(b, "- `%s`\n", emit.DestroySymbol(c.Name))
	for _, m := range c.Operations() {
		fmt.Fprintf(b, "- `%s`\n", emit.MethodSymbol(c.Name, m.Name))
	}
	for _, a := range c.Attributes {
		fmt.Fprintf(b, "- `%s`\n", emit.GetterSymbol(c.Name, a))
	}
	for _, elem := range emit.ResultElems(c) {
		fmt.Fprintf(b, "- `%s`\n", emit.CResultName(c.Name, elem))
	}
}

// Definition returns the declaration of the type under the cursor
func (s *Snapshot) Definition(uri protocol.DocumentUri, pos protocol.Position) *protocol.Location {
	sym := s.symbolAt(uri, pos)
	if sym == nil {
		return nil
	}
	target, ok := s.stems[sym.File]
	if !ok {
		return nil
	}
	start := toPosition(sym.Line, sym.Column)
	return &protocol.Location{
		URI:   target,
		Range: protocol.Range{Start: start, End: start},
	}
}

// Complete offers declared type names and primitives matching the word
// before the cursor
func (s *Snapshot) Complete(uri protocol.DocumentUri, pos protocol.Position) []protocol.CompletionItem {
	text, ok := s.texts[uri]
	if !ok {
		return nil
	}
	prefix := strings.ToLower(extractPrefix(text, pos))

	var items []protocol.CompletionItem
	add := func(label, detail string, kind protocol.CompletionItemKind) {
		if !strings.HasPrefix(strings.ToLower(label), prefix) {
			return
		}
		items = append(items, protocol.CompletionItem{
			Label:  label,
			Kind:   &kind,
			Detail: &detail,
		})
	}

	table := s.graph.Symbols()
	for _, name := range table.Names() {
		sym := table.Lookup(name)
		add(name, fmt.Sprintf("%s in %s.idl", sym.Kind, sym.File), completionKind(sym.Kind))
	}
	for _, p := range typemap.Primitives() {
		add(p, "primitive", protocol.CompletionItemKindKeyword)
	}
	add("vector", "vector<T> return type", protocol.CompletionItemKindKeyword)
	return items
}

func completionKind(k model.Kind) protocol.CompletionItemKind {
	switch k {
	case model.KindEnum:
		return protocol.CompletionItemKindEnum
	case model.KindStruct:
		return protocol.CompletionItemKindStruct
	case model.KindCallback:
		return protocol.CompletionItemKindFunction
	default:
		return protocol.CompletionItemKindClass
	}
}

// Format returns an edit replacing uri with its canonical form. Documents
// with parse errors are left alone, since formatting would drop whatever
// failed to parse.
func (s *Snapshot) Format(uri protocol.DocumentUri) []protocol.TextEdit {
	f, ok := s.files[uri]
	if !ok || s.broken[uri] {
		return nil
	}
	text := s.texts[uri]
	formatted := formatter.Format(f)
	if formatted == text {
		return []protocol.TextEdit{}
	}
	lines := strings.Split(text, "\n")
	end := protocol.Position{
		Line:      protocol.UInteger(len(lines) - 1),
		Character: protocol.UInteger(len(lines[len(lines)-1])),
	}
	return []protocol.TextEdit{{
		Range:   protocol.Range{Start: protocol.Position{}, End: end},
		NewText: formatted,
	}}
}

// symbolAt resolves the identifier under the cursor to a declared type
func (s *Snapshot) symbolAt(uri protocol.DocumentUri, pos protocol.Position) *module.Symbol {
	text, ok := s.texts[uri]
	if !ok {
		return nil
	}
	word := extractWord(text, pos)
	if word == "" {
		return nil
	}
	return s.graph.Symbols().Lookup(word)
}

// stemOf returns the file stem a document URI resolves under
func stemOf(uri protocol.DocumentUri) string {
	p := string(uri)
	if u, err := url.Parse(p); err == nil {
		switch {
		case u.Path != "":
			p = u.Path
		case u.Opaque != "":
			p = u.Opaque
		}
	}
	return strings.TrimSuffix(path.Base(p), ".idl")
}

func toProtocol(d diagnostic.Diagnostic) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	switch d.Severity {
	case diagnostic.Warning:
		severity = protocol.DiagnosticSeverityWarning
	case diagnostic.Info:
		severity = protocol.DiagnosticSeverityInformation
	}
	source := lspName
	msg := d.Message
	if d.Hint != "" {
		msg += "\nhint: " + d.Hint
	}
	start := toPosition(d.Line, d.Column)
	return protocol.Diagnostic{
		Range:    protocol.Range{Start: start, End: start},
		Severity: &severity,
		Source:   &source,
		Message:  msg,
	}
}

// toPosition converts a 1-based source position; 0 means unknown
func toPosition(line, col int) protocol.Position {
	var p protocol.Position
	if line > 0 {
		p.Line = protocol.UInteger(line - 1)
	}
	if col > 0 {
		p.Character = protocol.UInteger(col - 1)
	}
	return p
}

// extractPrefix returns the word fragment before the cursor
func extractPrefix(text string, pos protocol.Position) string {
	line, col, ok := lineAt(text, pos)
	if !ok {
		return ""
	}
	start := col
	for start > 0 && isIdent(rune(line[start-1])) {
		start--
	}
	return line[start:col]
}

// extractWord returns the full identifier under the cursor
func extractWord(text string, pos protocol.Position) string {
	line, col, ok := lineAt(text, pos)
	if !ok {
		return ""
	}
	start := col
	for start > 0 && isIdent(rune(line[start-1])) {
		start--
	}
	end := col
	for end < len(line) && isIdent(rune(line[end])) {
		end++
	}
	return line[start:end]
}

func lineAt(text string, pos protocol.Position) (string, int, bool) {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return "", 0, false
	}
	line := strings.TrimSuffix(lines[pos.Line], "\r")
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}
	return line, col, true
}

func isIdent(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_'
}
