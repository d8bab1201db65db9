package codebase

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/dhamidi/pqls/format"
	"github.com/dhamidi/pqls/pq/parser"

	_ "github.com/tliron/commonlog/simple"
)

const lsName = "pqls"

type LSPServer struct {
	codebase *Codebase
	handler  protocol.Handler
	server   *server.Server
	version  string
	options  []Option
}

// NewLSPServer returns a language server. The codebase is created when the
// client sends its workspace root, using opts.
func NewLSPServer(version string, opts ...Option) *LSPServer {
	ls := &LSPServer{
		version: version,
		options: opts,
	}

	ls.handler = protocol.Handler{
		Initialize:             ls.initialize,
		Initialized:            ls.initialized,
		Shutdown:               ls.shutdown,
		SetTrace:               ls.setTrace,
		TextDocumentDidOpen:    ls.textDocumentDidOpen,
		TextDocumentDidChange:  ls.textDocumentDidChange,
		TextDocumentDidClose:   ls.textDocumentDidClose,
		TextDocumentDidSave:    ls.textDocumentDidSave,
		TextDocumentCompletion: ls.textDocumentCompletion,
		TextDocumentHover:      ls.textDocumentHover,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *LSPServer) RunTCP(address string) error {
	return ls.server.RunTCP(address)
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := getRootDir()
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	}

	ls.codebase = New(rootDir, ls.options...)
	log.Infof("initialize: root %s", rootDir)

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindIncremental),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{"[", " "},
	}
	capabilities.HoverProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	if err := ls.codebase.ScanAll(context.Background()); err != nil {
		log.Errorf("initial scan: %s", err)
	}
	return nil
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if _, err := ls.codebase.UpdateFile(context.Background(), path, params.TextDocument.Version, params.TextDocument.Text); err != nil {
		log.Errorf("open %s: %s", path, err)
		return nil
	}
	ls.publishDiagnostics(ctx, params.TextDocument.URI, path)
	return nil
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	version := params.TextDocument.Version
	for _, change := range params.ContentChanges {
		switch change := change.(type) {
		case protocol.TextDocumentContentChangeEvent:
			doc := ls.codebase.GetFile(path)
			if doc == nil || doc.State == nil {
				log.Warningf("change %s: document is not open", path)
				return nil
			}
			r := parser.Range{
				Start: toPosition(doc.State, change.Range.Start),
				End:   toPosition(doc.State, change.Range.End),
			}
			_, err = ls.codebase.ChangeFile(context.Background(), path, version, r, change.Text)
		case protocol.TextDocumentContentChangeEventWhole:
			_, err = ls.codebase.UpdateFile(context.Background(), path, version, change.Text)
		}
		if err != nil {
			log.Errorf("change %s: %s", path, err)
			return nil
		}
	}
	ls.publishDiagnostics(ctx, params.TextDocument.URI, path)
	return nil
}

func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if err := ls.codebase.ScanFile(context.Background(), path); err != nil {
		ls.codebase.RemoveFile(path)
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (ls *LSPServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	version := int32(0)
	if doc := ls.codebase.GetFile(path); doc != nil {
		version = doc.Version
	}
	if params.Text != nil {
		_, err = ls.codebase.UpdateFile(context.Background(), path, version, *params.Text)
	} else {
		err = ls.codebase.ScanFile(context.Background(), path)
	}
	if err != nil {
		log.Errorf("save %s: %s", path, err)
		return nil
	}
	ls.publishDiagnostics(ctx, params.TextDocument.URI, path)
	return nil
}

func (ls *LSPServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	doc := ls.codebase.GetFile(path)
	if doc == nil || doc.State == nil {
		return nil, nil
	}

	completions, err := ls.codebase.Completions(context.Background(), path, toPosition(doc.State, params.Position))
	if err != nil {
		log.Debugf("completion %s: %s", path, err)
		return nil, nil
	}
	if len(completions) == 0 {
		return nil, nil
	}

	var items []protocol.CompletionItem
	for _, c := range completions {
		kind := toProtocolKind(c.Kind)
		item := protocol.CompletionItem{
			Label: c.Label,
			Kind:  &kind,
		}
		if c.Detail != "" {
			detail := c.Detail
			item.Detail = &detail
		}
		items = append(items, item)
	}
	return items, nil
}

func (ls *LSPServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	doc := ls.codebase.GetFile(path)
	if doc == nil || doc.State == nil {
		return nil, nil
	}
	text, ok, err := ls.codebase.Hover(context.Background(), path, toPosition(doc.State, params.Position))
	if err != nil {
		log.Debugf("hover %s: %s", path, err)
		return nil, nil
	}
	if !ok {
		return nil, nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: text,
		},
	}, nil
}

func (ls *LSPServer) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, path string) {
	doc := ls.codebase.GetFile(path)
	if doc == nil {
		return
	}
	diags, err := ls.codebase.Diagnostics(context.Background(), path)
	if err != nil {
		log.Errorf("diagnostics %s: %s", path, err)
		return
	}
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		severity := toProtocolSeverity(d.Severity)
		source := lsName
		out = append(out, protocol.Diagnostic{
			Range: protocol.Range{
				Start: fromPosition(doc.State, d.Position),
				End:   fromPosition(doc.State, d.End),
			},
			Severity: &severity,
			Source:   &source,
			Message:  d.Message,
		})
	}
	version := protocol.UInteger(doc.Version)
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Version:     &version,
		Diagnostics: out,
	})
}

// toPosition converts a client position, counted in UTF-16 code units, to
// a byte column on the same line.
func toPosition(state *parser.State, p protocol.Position) parser.Position {
	line := int(p.Line)
	text := ""
	if l, ok := state.Line(line); ok {
		text = l.Text
	}
	units := int(p.Character)
	col := 0
	for col < len(text) && units > 0 {
		r, size := utf8.DecodeRuneInString(text[col:])
		units -= utf16Len(r)
		col += size
	}
	return parser.Position{Line: line, Column: col}
}

func fromPosition(state *parser.State, p parser.Position) protocol.Position {
	units := 0
	if l, ok := state.Line(p.Line); ok {
		text := l.Text
		if p.Column < len(text) {
			text = text[:p.Column]
		}
		for _, r := range text {
			units += utf16Len(r)
		}
	}
	return protocol.Position{Line: protocol.UInteger(p.Line), Character: protocol.UInteger(units)}
}

func utf16Len(r rune) int {
	if r >= 0x10000 {
		return 2
	}
	return 1
}

func toProtocolKind(kind CompletionKind) protocol.CompletionItemKind {
	switch kind {
	case CompletionKindVariable:
		return protocol.CompletionItemKindVariable
	case CompletionKindField:
		return protocol.CompletionItemKindField
	case CompletionKindKeyword:
		return protocol.CompletionItemKindKeyword
	case CompletionKindConstant:
		return protocol.CompletionItemKindConstant
	case CompletionKindType:
		return protocol.CompletionItemKindTypeParameter
	default:
		return protocol.CompletionItemKindText
	}
}

func toProtocolSeverity(severity string) protocol.DiagnosticSeverity {
	switch severity {
	case format.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case format.SeverityHint:
		return protocol.DiagnosticSeverityHint
	default:
		return protocol.DiagnosticSeverityError
	}
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(kind protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &kind
}

func getRootDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return dir
}
