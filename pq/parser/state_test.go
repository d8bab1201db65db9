package parser

import (
	"context"
	"errors"
	"testing"
)

func mustLex(t *testing.T, text string) *State {
	t.Helper()
	s, err := Lex(context.Background(), DefaultSettings(), text)
	if err != nil {
		t.Fatalf("Lex(%q): %v", text, err)
	}
	return s
}

func TestLexSplitsLines(t *testing.T) {
	s := mustLex(t, "a\r\nb\nc\rd\u2028e")
	wantTexts := []string{"a", "b", "c", "d", "e"}
	wantTerms := []string{"\r\n", "\n", "\r", "\u2028", ""}
	lines := s.Lines()
	if len(lines) != len(wantTexts) {
		t.Fatalf("got %d lines, want %d", len(lines), len(wantTexts))
	}
	for i, line := range lines {
		if line.Text != wantTexts[i] {
			t.Errorf("line %d text: got %q, want %q", i, line.Text, wantTexts[i])
		}
		if line.Terminator != wantTerms[i] {
			t.Errorf("line %d terminator: got %q, want %q", i, line.Terminator, wantTerms[i])
		}
	}
	if got := s.Text(); got != "a\r\nb\nc\rd\u2028e" {
		t.Errorf("Text() = %q", got)
	}
}

func TestLexCarriesModes(t *testing.T) {
	s := mustLex(t, "x /* a\nb\nc */ y")
	tests := []struct {
		start, end LineMode
		kinds      []TokenKind
	}{
		{ModeDefault, ModeComment, []TokenKind{TokenIdentifier, TokenMultilineCommentStart}},
		{ModeComment, ModeComment, []TokenKind{TokenMultilineCommentContent}},
		{ModeComment, ModeDefault, []TokenKind{TokenMultilineCommentEnd, TokenIdentifier}},
	}
	for i, tt := range tests {
		line, ok := s.Line(i)
		if !ok {
			t.Fatalf("line %d missing", i)
		}
		if line.ModeStart != tt.start || line.ModeEnd != tt.end {
			t.Errorf("line %d modes: got %v->%v, want %v->%v", i, line.ModeStart, line.ModeEnd, tt.start, tt.end)
		}
		got := lineKinds(line.Tokens)
		if len(got) != len(tt.kinds) {
			t.Errorf("line %d: got %v, want %v", i, got, tt.kinds)
			continue
		}
		for j := range got {
			if got[j] != tt.kinds[j] {
				t.Errorf("line %d token %d: got %v, want %v", i, j, got[j], tt.kinds[j])
			}
		}
	}
}

func TestUpdateLineCascades(t *testing.T) {
	ctx := context.Background()
	before := mustLex(t, "a\nb\nc")
	after, err := before.UpdateLine(ctx, 0, "/* open")
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < 3; i++ {
		line, _ := after.Line(i)
		if line.ModeStart != ModeComment {
			t.Errorf("line %d start mode: got %v, want %v", i, line.ModeStart, ModeComment)
		}
	}
	line, _ := before.Line(1)
	if line.ModeStart != ModeDefault {
		t.Errorf("original state changed: line 1 start mode %v", line.ModeStart)
	}
	if got := before.Text(); got != "a\nb\nc" {
		t.Errorf("original text changed: %q", got)
	}
}

func TestUpdateLineConverges(t *testing.T) {
	ctx := context.Background()
	before := mustLex(t, "/* x\ny */\nz")
	after, err := before.UpdateLine(ctx, 0, "/* changed")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := after.Text(), "/* changed\ny */\nz"; got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
	line, _ := after.Line(2)
	if line.ModeStart != ModeDefault || len(line.Tokens) != 1 {
		t.Errorf("line 2: got mode %v with %d tokens", line.ModeStart, len(line.Tokens))
	}
}

func TestUpdateLineClosesComment(t *testing.T) {
	ctx := context.Background()
	before := mustLex(t, "/* x\ny\nz")
	after, err := before.UpdateLine(ctx, 0, "/* x */")
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < 3; i++ {
		line, _ := after.Line(i)
		if line.ModeStart != ModeDefault {
			t.Errorf("line %d start mode: got %v, want %v", i, line.ModeStart, ModeDefault)
		}
		if len(line.Tokens) != 1 || line.Tokens[0].Kind != TokenIdentifier {
			t.Errorf("line %d: got %v, want one identifier", i, lineKinds(line.Tokens))
		}
	}
}

func TestUpdateLineBadLineNumber(t *testing.T) {
	s := mustLex(t, "a")
	for _, n := range []int{-1, 1} {
		_, err := s.UpdateLine(context.Background(), n, "b")
		var lexErr *LexError
		if !errors.As(err, &lexErr) || lexErr.Kind != LexErrBadLineNumber {
			t.Errorf("UpdateLine(%d): got %v, want BadLineNumber", n, err)
		}
	}
}

func TestUpdateRange(t *testing.T) {
	ctx := context.Background()
	base := "let\n  x = 1\nin x"
	tests := []struct {
		name  string
		r     Range
		text  string
		want  string
		lines int
	}{
		{"replace within a line", Range{Position{1, 6}, Position{1, 7}}, "2", "let\n  x = 2\nin x", 3},
		{"insert lines", Range{Position{0, 3}, Position{0, 3}}, "\n  y = 0,", "let\n  y = 0,\n  x = 1\nin x", 4},
		{"join lines", Range{Position{0, 3}, Position{1, 0}}, "", "let  x = 1\nin x", 2},
		{"replace everything", Range{Position{0, 0}, Position{2, 4}}, "1", "1", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustLex(t, base)
			got, err := s.UpdateRange(ctx, tt.r, tt.text)
			if err != nil {
				t.Fatal(err)
			}
			if got.Text() != tt.want {
				t.Errorf("Text() = %q, want %q", got.Text(), tt.want)
			}
			if got.LineCount() != tt.lines {
				t.Errorf("LineCount() = %d, want %d", got.LineCount(), tt.lines)
			}
			fresh := mustLex(t, tt.want)
			for i := range fresh.lines {
				a, b := got.lines[i], fresh.lines[i]
				if len(a.Tokens) != len(b.Tokens) || a.ModeStart != b.ModeStart || a.ModeEnd != b.ModeEnd {
					t.Errorf("line %d differs from a fresh lex", i)
				}
			}
		})
	}
}

func TestUpdateRangeBadRange(t *testing.T) {
	s := mustLex(t, "abc\ndef")
	bad := []Range{
		{Position{1, 0}, Position{0, 0}},
		{Position{0, 0}, Position{2, 0}},
		{Position{0, 4}, Position{0, 4}},
	}
	for _, r := range bad {
		_, err := s.UpdateRange(context.Background(), r, "x")
		var lexErr *LexError
		if !errors.As(err, &lexErr) || lexErr.Kind != LexErrBadRange {
			t.Errorf("UpdateRange(%v): got %v, want BadRange", r, err)
		}
	}
}

func TestUpdateRangeRenumbersErrors(t *testing.T) {
	s := mustLex(t, "a\nb\n$")
	got, err := s.UpdateRange(context.Background(), Range{Position{0, 1}, Position{0, 1}}, "\n")
	if err != nil {
		t.Fatal(err)
	}
	errs := got.ErrorLineMap()
	lexErr, ok := errs[3]
	if !ok || len(errs) != 1 {
		t.Fatalf("got error lines %v, want only line 3", errs)
	}
	if lexErr.Position.Line != 3 {
		t.Errorf("error position line = %d, want 3", lexErr.Position.Line)
	}
}

func TestAppendLine(t *testing.T) {
	ctx := context.Background()
	s := mustLex(t, "x = /* a")
	got, err := s.AppendLine(ctx, "b */ 1", "\n")
	if err != nil {
		t.Fatal(err)
	}
	if got.LineCount() != 2 {
		t.Fatalf("LineCount() = %d, want 2", got.LineCount())
	}
	line, _ := got.Line(1)
	if line.Terminator != "\n" {
		t.Errorf("terminator = %q, want %q", line.Terminator, "\n")
	}
	if line.ModeStart != ModeComment || line.ModeEnd != ModeDefault {
		t.Errorf("modes: got %v->%v, want Comment->Default", line.ModeStart, line.ModeEnd)
	}
	if s.LineCount() != 1 {
		t.Errorf("original state changed: %d lines", s.LineCount())
	}
}

func TestAppendLineKeepsExistingLines(t *testing.T) {
	s := mustLex(t, "let\n a = 1")
	got, err := s.AppendLine(context.Background(), "in a", "")
	if err != nil {
		t.Fatal(err)
	}
	if got.LineCount() != 3 {
		t.Fatalf("LineCount() = %d, want 3", got.LineCount())
	}
	if want := "let\n a = 1in a"; got.Text() != want {
		t.Errorf("Text() = %q, want %q", got.Text(), want)
	}
	for i, want := range []string{"let", " a = 1", "in a"} {
		line, _ := got.Line(i)
		if line.Text != want {
			t.Errorf("line %d: got %q, want %q", i, line.Text, want)
		}
	}
	first, _ := got.Line(0)
	if len(first.Tokens) != 1 || first.Tokens[0].Kind != TokenKeywordLet {
		t.Errorf("line 0 tokens: got %v", lineKinds(first.Tokens))
	}
}

func TestErrorLineMap(t *testing.T) {
	s := mustLex(t, "a\n$\nb")
	errs := s.ErrorLineMap()
	if len(errs) != 1 || errs[1] == nil {
		t.Fatalf("got %v, want an error on line 1", errs)
	}
	fixed, err := s.UpdateLine(context.Background(), 1, "c")
	if err != nil {
		t.Fatal(err)
	}
	if errs := fixed.ErrorLineMap(); errs != nil {
		t.Errorf("got %v, want nil", errs)
	}
}

func TestLexCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Lex(ctx, DefaultSettings(), "a\nb")
	if !errors.Is(err, ErrCancelled) {
		t.Errorf("got %v, want ErrCancelled", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want it to wrap context.Canceled", err)
	}
}
