// Package codebase keeps the documents of a workspace lexed, parsed and
// ready for inspection. Edits reach the lexer incrementally, so only the
// changed lines are re-tokenized before the document is parsed again.
package codebase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/pqls/format"
	"github.com/dhamidi/pqls/pq"
	"github.com/dhamidi/pqls/pq/parser"
)

var log = commonlog.GetLogger("pqls.codebase")

// Document is the latest analysis of one file. State is kept even when the
// snapshot fails to lex, so later edits stay incremental.
type Document struct {
	Path    string
	Version int32
	State   *parser.State
	Result  *pq.LexParse
	LexErr  error
}

// Text returns the document source.
func (d *Document) Text() string {
	if d.State == nil {
		return ""
	}
	return d.State.Text()
}

type Codebase struct {
	mu          sync.RWMutex
	rootDir     string
	settings    pq.Settings
	match       func(path string) bool
	fileTimeout time.Duration
	files       map[string]*Document
}

type Option func(*Codebase)

// WithMatcher replaces the default test for which files ScanAll picks up.
func WithMatcher(match func(path string) bool) Option {
	return func(c *Codebase) {
		c.match = match
	}
}

// WithFileTimeout bounds the time ScanAll spends on a single file.
func WithFileTimeout(d time.Duration) Option {
	return func(c *Codebase) {
		c.fileTimeout = d
	}
}

func WithSettings(settings pq.Settings) Option {
	return func(c *Codebase) {
		c.settings = settings
	}
}

func New(rootDir string, opts ...Option) *Codebase {
	c := &Codebase{
		rootDir:  rootDir,
		settings: pq.DefaultSettings(),
		match:    IsSourceFile,
		files:    make(map[string]*Document),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsSourceFile reports whether path has a Power Query extension.
func IsSourceFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pq", ".m", ".pqm":
		return true
	}
	return false
}

func (c *Codebase) RootDir() string {
	return c.rootDir
}

func (c *Codebase) Settings() pq.Settings {
	return c.settings
}

func (c *Codebase) Match(path string) bool {
	return c.match(path)
}

// ScanAll analyses every matching file under the root directory. A file
// that cannot be read or runs out of time does not stop the scan; the
// per-file errors are returned together.
func (c *Codebase) ScanAll(ctx context.Context) error {
	var errs []error
	err := filepath.WalkDir(c.rootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != c.rootDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !c.match(path) {
			return nil
		}
		if err := c.scanWithTimeout(ctx, path); err != nil {
			if ctx.Err() != nil {
				return err
			}
			log.Warningf("scan %s: %s", path, err)
			errs = append(errs, fmt.Errorf("scan %s: %w", path, err))
		}
		return nil
	})
	if err != nil {
		return err
	}
	return errors.Join(errs...)
}

func (c *Codebase) scanWithTimeout(ctx context.Context, path string) error {
	if c.fileTimeout <= 0 {
		return c.ScanFile(ctx, path)
	}
	ctx, cancel := context.WithTimeout(ctx, c.fileTimeout)
	defer cancel()
	return c.ScanFile(ctx, path)
}

func (c *Codebase) ScanFile(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_, err = c.UpdateFile(ctx, path, 0, string(content))
	return err
}

// UpdateFile replaces the whole text of a document.
func (c *Codebase) UpdateFile(ctx context.Context, path string, version int32, text string) (*Document, error) {
	state, err := parser.Lex(ctx, c.settings.Parser, text)
	if err != nil {
		return nil, err
	}
	return c.store(ctx, path, version, state)
}

// ChangeFile applies a range edit to an open document. Lines outside the
// edit keep their tokens unless a comment or string mode change cascades
// into them.
func (c *Codebase) ChangeFile(ctx context.Context, path string, version int32, r parser.Range, text string) (*Document, error) {
	doc := c.GetFile(path)
	if doc == nil || doc.State == nil {
		return nil, fmt.Errorf("change %s: document is not open", path)
	}
	state, err := doc.State.UpdateRange(ctx, r, text)
	if err != nil {
		return nil, fmt.Errorf("change %s: %w", path, err)
	}
	return c.store(ctx, path, version, state)
}

func (c *Codebase) store(ctx context.Context, path string, version int32, state *parser.State) (*Document, error) {
	doc := &Document{Path: path, Version: version, State: state}
	lp, err := pq.ParseState(ctx, c.settings, state)
	switch {
	case err == nil:
		doc.Result = lp
		if lp.ParseErr != nil {
			log.Debugf("%s: %s", path, lp.ParseErr)
		}
	case errors.Is(err, parser.ErrCancelled):
		return nil, err
	default:
		doc.LexErr = err
		log.Debugf("%s: %s", path, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.files[path] = doc
	return doc, nil
}

func (c *Codebase) RemoveFile(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.files, path)
}

func (c *Codebase) GetFile(path string) *Document {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.files[path]
}

// Paths returns the known documents in lexical order.
func (c *Codebase) Paths() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	paths := make([]string, 0, len(c.files))
	for path := range c.files {
		paths = append(paths, path)
	}
	slices.Sort(paths)
	return paths
}

// Diagnostics lists the lexer and parser errors of a document, followed by
// hints for identifiers that look like misspelled local names.
func (c *Codebase) Diagnostics(ctx context.Context, path string) ([]format.Diagnostic, error) {
	doc := c.GetFile(path)
	if doc == nil {
		return nil, fmt.Errorf("diagnostics %s: unknown document", path)
	}
	diags := format.DiagnosticsFor(doc.Result, doc.LexErr)
	if doc.Result == nil {
		return diags, nil
	}
	hints, err := misspellings(ctx, doc.Result)
	if err != nil {
		return nil, err
	}
	return append(diags, hints...), nil
}

// Inspect analyses pos in a document.
func (c *Codebase) Inspect(ctx context.Context, path string, pos parser.Position) (*pq.Inspection, error) {
	return c.inspect(ctx, c.GetFile(path), path, pos)
}

// inspect analyses pos in doc, which callers fetch once so that the
// inspection and any node lookups that follow refer to the same parse.
func (c *Codebase) inspect(ctx context.Context, doc *Document, path string, pos parser.Position) (*pq.Inspection, error) {
	if doc == nil {
		return nil, fmt.Errorf("inspect %s: unknown document", path)
	}
	if doc.Result == nil {
		return nil, fmt.Errorf("inspect %s: %w", path, doc.LexErr)
	}
	return doc.Result.Inspect(ctx, c.settings, pos)
}

type CompletionKind int

const (
	CompletionKindVariable CompletionKind = iota
	CompletionKindField
	CompletionKindKeyword
	CompletionKindConstant
	CompletionKindType
)

type CompletionItem struct {
	Label  string
	Kind   CompletionKind
	Detail string
}

// Completions merges the names in scope with the autocomplete strategies.
// Names that match the typed prefix only loosely are ranked after exact
// prefix matches.
func (c *Codebase) Completions(ctx context.Context, path string, pos parser.Position) ([]CompletionItem, error) {
	in, err := c.Inspect(ctx, path, pos)
	if err != nil {
		return nil, err
	}
	var items []CompletionItem
	seen := map[string]bool{}
	add := func(item CompletionItem) {
		if !seen[item.Label] {
			seen[item.Label] = true
			items = append(items, item)
		}
	}

	ac := in.Autocomplete
	for _, f := range ac.FieldAccess.Items {
		add(CompletionItem{Label: f.Key, Kind: CompletionKindField, Detail: "field"})
	}
	if len(ac.FieldAccess.Items) == 0 {
		for _, item := range in.Scope.Items() {
			if item.Kind == pq.ScopeUndefined {
				continue
			}
			detail := item.Kind.String()
			if t, ok := in.ScopeType[item.Name]; ok {
				detail = t.String()
			}
			add(CompletionItem{Label: item.Name, Kind: CompletionKindVariable, Detail: detail})
		}
	}
	for _, label := range ac.LanguageConstant.Items {
		add(CompletionItem{Label: label, Kind: CompletionKindConstant})
	}
	for _, label := range ac.PrimitiveType.Items {
		add(CompletionItem{Label: label, Kind: CompletionKindType})
	}
	for _, label := range ac.Keyword.Items {
		add(CompletionItem{Label: label, Kind: CompletionKindKeyword})
	}
	for _, err := range ac.Errors() {
		log.Warningf("complete %s at %s: %s", path, pos, err)
	}
	return Rank(in.Prefix, items), nil
}

// Hover describes the identifier under the cursor: its binding and type,
// or suggestions when nothing binds it.
func (c *Codebase) Hover(ctx context.Context, path string, pos parser.Position) (string, bool, error) {
	return c.hover(ctx, c.GetFile(path), path, pos)
}

func (c *Codebase) hover(ctx context.Context, doc *Document, path string, pos parser.Position) (string, bool, error) {
	in, err := c.inspect(ctx, doc, path, pos)
	if err != nil {
		return "", false, err
	}
	nodes, _ := doc.Result.Nodes()
	anchor, ok := nodes.Node(in.Anchor)
	if !ok || anchor.Token == nil || nodes.Kind(nodes.Parent(anchor.ID)) != parser.KindIdentifierExpression {
		return "", false, nil
	}
	if !anchor.Token.Span.Contains(pos) && anchor.Token.Span.End != pos {
		return "", false, nil
	}

	items := in.Scope.Items()
	if len(items) > 0 && items[0].Kind == pq.ScopeUndefined {
		msg := fmt.Sprintf("`%s` is not defined here", items[0].Name)
		if alts := Suggest(items[0].Name, in.Scope.Keys()); len(alts) > 0 {
			msg += "; did you mean " + quoteAll(alts) + "?"
		}
		return msg, true, nil
	}
	item, ok := in.Scope.Lookup(anchor.Token.Data)
	if !ok {
		return "", false, nil
	}
	typ := "unknown"
	if t, ok := in.ScopeType[item.Name]; ok {
		typ = t.String()
	}
	return fmt.Sprintf("`%s`: %s\n\n%s", item.Name, typ, item.Kind), true, nil
}

func quoteAll(names []string) string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = "`" + name + "`"
	}
	return strings.Join(quoted, ", ")
}

// misspellings reports unbound identifiers that closely match a name in
// scope. Unbound names without a close match are left alone, since they
// usually refer to library functions.
func misspellings(ctx context.Context, lp *pq.LexParse) ([]format.Diagnostic, error) {
	if lp.ParseErr != nil {
		return nil, nil
	}
	nodes, leaves := lp.Nodes()
	var out []format.Diagnostic
	for _, id := range leaves {
		n, _ := nodes.Node(id)
		if nodes.Kind(nodes.Parent(id)) != parser.KindIdentifierExpression || n.Attribute != parser.AttrIdentifier {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", parser.ErrCancelled, err)
		}
		site := pq.Locate(n.Token.Span.End, nodes, leaves, nil)
		scope := pq.ResolveScope(site)
		items := scope.Items()
		if len(items) == 0 || items[0].Kind != pq.ScopeUndefined {
			continue
		}
		alts := Suggest(items[0].Name, scope.Keys())
		if len(alts) == 0 {
			continue
		}
		out = append(out, format.Diagnostic{
			Position: n.Token.Span.Start,
			End:      n.Token.Span.End,
			Severity: format.SeverityHint,
			Message:  fmt.Sprintf("%s is not defined here; did you mean %s?", items[0].Name, strings.Join(alts, ", ")),
		})
	}
	return out, nil
}
