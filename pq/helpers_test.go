package pq

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/dhamidi/pqls/pq/parser"
)

// cursorText removes the `|` marker from text and returns its position.
func cursorText(t *testing.T, text string) (string, parser.Position) {
	t.Helper()
	i := strings.Index(text, "|")
	if i < 0 {
		t.Fatalf("no cursor marker in %q", text)
	}
	before := text[:i]
	pos := parser.Position{Line: strings.Count(before, "\n")}
	pos.Column = len(before) - (strings.LastIndex(before, "\n") + 1)
	return before + text[i+1:], pos
}

func inspectAt(t *testing.T, text string) (*LexParse, *Inspection) {
	t.Helper()
	src, pos := cursorText(t, text)
	lp, in, err := TryLexParseInspect(context.Background(), DefaultSettings(), src, pos)
	if err != nil {
		t.Fatalf("TryLexParseInspect(%q): %v", text, err)
	}
	return lp, in
}

func siteAt(t *testing.T, text string) *Site {
	t.Helper()
	src, pos := cursorText(t, text)
	lp, err := TryLexParse(context.Background(), DefaultSettings(), src)
	if err != nil {
		t.Fatalf("TryLexParse(%q): %v", text, err)
	}
	nodes, leaves := lp.Nodes()
	return Locate(pos, nodes, leaves, lp.ParseErr)
}

func sorted(items []string) []string {
	out := slices.Clone(items)
	slices.Sort(out)
	return out
}

func equalStrings(a, b []string) bool {
	return slices.Equal(a, b) || len(a) == 0 && len(b) == 0
}
