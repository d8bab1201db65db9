package codebase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/dhamidi/pqls/format"
	"github.com/dhamidi/pqls/pq/parser"
)

func openFile(t *testing.T, c *Codebase, path, text string) *Document {
	t.Helper()
	doc, err := c.UpdateFile(context.Background(), path, 1, text)
	if err != nil {
		t.Fatalf("UpdateFile(%q): %v", text, err)
	}
	return doc
}

func endOf(text string) parser.Position {
	lines := strings.Split(text, "\n")
	return parser.Position{Line: len(lines) - 1, Column: len(lines[len(lines)-1])}
}

func labels(items []CompletionItem) []string {
	var out []string
	for _, item := range items {
		out = append(out, item.Label)
	}
	return out
}

func TestUpdateFile(t *testing.T) {
	c := New(t.TempDir())
	tests := []struct {
		name     string
		text     string
		parseErr bool
		lexErr   bool
	}{
		{"ok", "let x = 1 in x", false, false},
		{"parse error", "let x = in x", true, false},
		{"lex error", "let x = $ in x", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := openFile(t, c, tt.name+".pq", tt.text)
			if doc.Text() != tt.text {
				t.Errorf("Text() = %q, want %q", doc.Text(), tt.text)
			}
			if (doc.LexErr != nil) != tt.lexErr {
				t.Errorf("LexErr = %v, want error %v", doc.LexErr, tt.lexErr)
			}
			if tt.lexErr {
				return
			}
			if (doc.Result.ParseErr != nil) != tt.parseErr {
				t.Errorf("ParseErr = %v, want error %v", doc.Result.ParseErr, tt.parseErr)
			}
		})
	}
}

func TestChangeFile(t *testing.T) {
	ctx := context.Background()
	c := New(t.TempDir())
	openFile(t, c, "a.pq", "let\n  x = 1\nin x")

	doc, err := c.ChangeFile(ctx, "a.pq", 2, parser.Range{
		Start: parser.Position{Line: 1, Column: 6},
		End:   parser.Position{Line: 1, Column: 7},
	}, "2")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := doc.Text(), "let\n  x = 2\nin x"; got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
	if doc.Version != 2 || doc.Result == nil || doc.Result.ParseErr != nil {
		t.Fatalf("unexpected document state: version %d, result %+v", doc.Version, doc.Result)
	}

	doc, err = c.ChangeFile(ctx, "a.pq", 3, parser.Range{
		Start: parser.Position{Line: 2, Column: 0},
		End:   parser.Position{Line: 2, Column: 2},
	}, "")
	if err != nil {
		t.Fatal(err)
	}
	diags, err := c.Diagnostics(ctx, "a.pq")
	if err != nil {
		t.Fatal(err)
	}
	if len(diags) != 1 || diags[0].Severity != format.SeverityError {
		t.Errorf("got %+v, want one error", diags)
	}

	if _, err := c.ChangeFile(ctx, "missing.pq", 1, parser.Range{}, "x"); err == nil {
		t.Error("expected an error for a document that is not open")
	}
}

func TestDiagnostics(t *testing.T) {
	c := New(t.TempDir())
	tests := []struct {
		text     string
		severity []string
	}{
		{"let total = 1 in total", nil},
		{"let total = 1 in totl", []string{format.SeverityHint}},
		{"let total = 1 in Text.Combine({total})", nil},
		{"let x = in x", []string{format.SeverityError}},
		{"$", []string{format.SeverityError}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			openFile(t, c, "d.pq", tt.text)
			diags, err := c.Diagnostics(context.Background(), "d.pq")
			if err != nil {
				t.Fatal(err)
			}
			var got []string
			for _, d := range diags {
				got = append(got, d.Severity)
			}
			if !slices.Equal(got, tt.severity) {
				t.Errorf("got %v (%+v), want %v", got, diags, tt.severity)
			}
		})
	}
}

func TestCompletions(t *testing.T) {
	c := New(t.TempDir())
	tests := []struct {
		text    string
		first   string
		absent  string
		present []string
	}{
		{"let foo = 1, bar = 2 in f", "foo", "bar", nil},
		{"let foo = [cat = 1, car = 2] in foo[c", "cat", "foo", []string{"car"}},
		{"let foo = 1 in foo as ", "", "", []string{"number", "nullable", "foo"}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			openFile(t, c, "c.pq", tt.text)
			items, err := c.Completions(context.Background(), "c.pq", endOf(tt.text))
			if err != nil {
				t.Fatal(err)
			}
			got := labels(items)
			if tt.first != "" && (len(got) == 0 || got[0] != tt.first) {
				t.Errorf("got %v, want %q first", got, tt.first)
			}
			if tt.absent != "" && slices.Contains(got, tt.absent) {
				t.Errorf("got %v, want no %q", got, tt.absent)
			}
			for _, want := range tt.present {
				if !slices.Contains(got, want) {
					t.Errorf("got %v, want %q", got, want)
				}
			}
		})
	}
}

func TestHover(t *testing.T) {
	c := New(t.TempDir())
	tests := []struct {
		text string
		pos  parser.Position
		want string
		ok   bool
	}{
		{"let foo = 1 in foo", parser.Position{Column: 16}, "`foo`: number", true},
		{"(x as text) => x", parser.Position{Column: 16}, "`x`: text", true},
		{"let total = 1 in totl", parser.Position{Column: 21}, "did you mean `total`?", true},
		{"let foo = 1 in foo", parser.Position{Column: 1}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			openFile(t, c, "h.pq", tt.text)
			got, ok, err := c.Hover(context.Background(), "h.pq", tt.pos)
			if err != nil {
				t.Fatal(err)
			}
			if ok != tt.ok || !strings.Contains(got, tt.want) {
				t.Errorf("Hover = %q, %v; want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestHoverUsesOneDocument(t *testing.T) {
	c := New(t.TempDir())
	old := openFile(t, c, "h.pq", "let foo = 1 in foo")
	openFile(t, c, "h.pq", "let a = [x = 1], bar = \"b\" in bar")

	got, ok, err := c.hover(context.Background(), old, "h.pq", parser.Position{Column: 16})
	if err != nil {
		t.Fatal(err)
	}
	if !ok || !strings.Contains(got, "`foo`: number") {
		t.Errorf("hover = %q, %v; want foo from the earlier text", got, ok)
	}
}

func TestHoverErrors(t *testing.T) {
	c := New(t.TempDir())
	if _, _, err := c.Hover(context.Background(), "missing.pq", parser.Position{}); err == nil {
		t.Error("expected an error for an unknown document")
	}
	openFile(t, c, "bad.pq", "$")
	if _, _, err := c.Hover(context.Background(), "bad.pq", parser.Position{}); err == nil {
		t.Error("expected an error for a document that does not lex")
	}
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, text := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestScanAll(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.pq":          "1",
		"sub/b.m":       "let x = 1 in x",
		"notes.txt":     "not a query",
		".hidden/c.pq":  "2",
		"sub/broken.pq": "let x =",
	})
	c := New(root)
	if err := c.ScanAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(root, "a.pq"),
		filepath.Join(root, "sub/b.m"),
		filepath.Join(root, "sub/broken.pq"),
	}
	if got := c.Paths(); !slices.Equal(got, want) {
		t.Errorf("Paths() = %v, want %v", got, want)
	}
}

func TestFileWatcher(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.pq": "1"})
	c := New(root)
	w := NewFileWatcher(c, 0)
	var changes []string
	w.OnChange = func(path string, removed bool) {
		name := filepath.Base(path)
		if removed {
			name = "-" + name
		}
		changes = append(changes, name)
	}

	w.scan(ctx)
	w.scan(ctx)
	if err := os.Remove(filepath.Join(root, "a.pq")); err != nil {
		t.Fatal(err)
	}
	w.scan(ctx)

	if want := []string{"a.pq", "-a.pq"}; !slices.Equal(changes, want) {
		t.Errorf("changes = %v, want %v", changes, want)
	}
	if paths := c.Paths(); len(paths) != 0 {
		t.Errorf("Paths() = %v, want none", paths)
	}
}

func TestScanAllFileTimeout(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.pq": "1", "b.pq": "2"})
	c := New(root, WithFileTimeout(time.Nanosecond))
	err := c.ScanAll(context.Background())
	if !errors.Is(err, parser.ErrCancelled) {
		t.Fatalf("ScanAll: got %v, want per-file cancellation", err)
	}
	if !strings.Contains(err.Error(), "a.pq") || !strings.Contains(err.Error(), "b.pq") {
		t.Errorf("error %q does not name both files", err)
	}
	if paths := c.Paths(); len(paths) != 0 {
		t.Errorf("Paths() = %v, want none", paths)
	}
}
