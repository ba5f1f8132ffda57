// Package lsp serves IDL files to editors over the Language Server
// Protocol. Every open document belongs to one module graph, so a type
// declared in one open file resolves from the others.
package lsp

import (
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"
)

const lspName = "idlgen-lsp"

var log = commonlog.GetLogger("idlgen.lsp")

// Server bridges LSP editor features to the parser and resolver.
type Server struct {
	mu   sync.Mutex
	ws   *Workspace
	snap *Snapshot

	handler protocol.Handler
	server  *glspserver.Server
	version string
}

// New creates a language server reporting version to clients.
func New(version string) *Server {
	s := &Server{
		ws:      NewWorkspace(),
		version: version,
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion: s.textDocumentCompletion,
		TextDocumentHover:      s.textDocumentHover,
		TextDocumentDefinition: s.textDocumentDefinition,
		TextDocumentFormatting: s.textDocumentFormatting,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)
	return s
}

// RunStdio serves on stdin and stdout until the client disconnects.
func (s *Server) RunStdio() error {
	return s.server.RunStdio()
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Info("initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{}
	capabilities.HoverProvider = true
	capabilities.DefinitionProvider = true
	capabilities.DocumentFormattingProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.mu.Lock()
	s.ws.Open(params.TextDocument.URI, params.TextDocument.Text)
	s.mu.Unlock()

	s.refresh(ctx, nil)
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	// With full sync, the last change event carries the whole text
	last := params.ContentChanges[len(params.ContentChanges)-1]
	whole, ok := last.(protocol.TextDocumentContentChangeEventWhole)
	if !ok {
		return nil
	}

	s.mu.Lock()
	s.ws.Open(params.TextDocument.URI, whole.Text)
	s.mu.Unlock()

	s.refresh(ctx, nil)
	return nil
}

func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	s.ws.Close(uri)
	s.mu.Unlock()

	s.refresh(ctx, []protocol.DocumentUri{uri})
	return nil
}

// refresh re-analyzes the workspace and publishes diagnostics for every
// open document. Closed documents have their diagnostics cleared.
func (s *Server) refresh(ctx *glsp.Context, closed []protocol.DocumentUri) {
	s.mu.Lock()
	snap := s.ws.Analyze()
	s.snap = snap
	s.mu.Unlock()

	for _, uri := range snap.URIs() {
		go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
			URI:         uri,
			Diagnostics: snap.Diagnostics(uri),
		})
	}
	for _, uri := range closed {
		go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
			URI:         uri,
			Diagnostics: []protocol.Diagnostic{},
		})
	}
}

func (s *Server) snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		s.snap = s.ws.Analyze()
	}
	return s.snap
}

func (s *Server) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	return s.snapshot().Complete(params.TextDocument.URI, params.Position), nil
}

func (s *Server) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	return s.snapshot().Hover(params.TextDocument.URI, params.Position), nil
}

func (s *Server) textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	loc := s.snapshot().Definition(params.TextDocument.URI, params.Position)
	if loc == nil {
		return nil, nil
	}
	return *loc, nil
}

func (s *Server) textDocumentFormatting(ctx *glsp.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	return s.snapshot().Format(params.TextDocument.URI), nil
}

func boolPtr(b bool) *bool {
	return &b
}
