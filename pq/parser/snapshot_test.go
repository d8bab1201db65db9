package parser

import (
	"errors"
	"testing"
)

func TestSnapshotMergesMultilineTokens(t *testing.T) {
	snap := snapshotOf(t, "x = \"a\nb\" & c")
	tokens := snap.Tokens()
	want := []TokenKind{TokenIdentifier, TokenEqual, TokenTextLiteral, TokenAmpersand, TokenIdentifier}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(tokens), len(want), tokens)
	}
	for i, tok := range tokens {
		if tok.Kind != want[i] {
			t.Errorf("token %d: got %v, want %v", i, tok.Kind, want[i])
		}
	}
	text := tokens[2]
	if text.Data != "\"a\nb\"" {
		t.Errorf("merged data = %q", text.Data)
	}
	wantSpan := Span{Start: Position{0, 4}, End: Position{1, 2}}
	if text.Span != wantSpan {
		t.Errorf("merged span = %v, want %v", text.Span, wantSpan)
	}
}

func TestSnapshotSeparatesComments(t *testing.T) {
	snap := snapshotOf(t, "a // c\n/* x\ny */ b")
	if got := len(snap.Tokens()); got != 2 {
		t.Errorf("got %d tokens, want 2", got)
	}
	comments := snap.Comments()
	if len(comments) != 2 {
		t.Fatalf("got %d comments, want 2", len(comments))
	}
	if comments[0].Kind != TokenLineComment {
		t.Errorf("comment 0: got %v, want %v", comments[0].Kind, TokenLineComment)
	}
	if comments[1].Kind != TokenMultilineComment || comments[1].Data != "/* x\ny */" {
		t.Errorf("comment 1: got %v", comments[1])
	}
}

func TestSnapshotErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  LexErrorKind
		pos   Position
	}{
		{"unterminated text", "x = \"abc", LexErrUnterminatedMultilineToken, Position{0, 4}},
		{"unterminated comment", "x /* a\nb", LexErrUnterminatedMultilineToken, Position{0, 2}},
		{"unterminated quoted identifier", "#\"a", LexErrUnterminatedMultilineToken, Position{0, 0}},
		{"line errors", "a\n$", LexErrErrorLines, Position{1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mustLex(t, tt.input).Snapshot()
			var lexErr *LexError
			if !errors.As(err, &lexErr) {
				t.Fatalf("got %v, want a *LexError", err)
			}
			if lexErr.Kind != tt.kind {
				t.Errorf("kind = %v, want %v", lexErr.Kind, tt.kind)
			}
			if lexErr.Position != tt.pos {
				t.Errorf("position = %v, want %v", lexErr.Position, tt.pos)
			}
		})
	}
}

func TestSnapshotErrorLinesCarriesLines(t *testing.T) {
	_, err := mustLex(t, "$\nok\n$").Snapshot()
	var lexErr *LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("got %v, want a *LexError", err)
	}
	if len(lexErr.Lines) != 2 || lexErr.Lines[0] == nil || lexErr.Lines[2] == nil {
		t.Errorf("Lines = %v, want entries for 0 and 2", lexErr.Lines)
	}
}

func TestSnapshotOffset(t *testing.T) {
	snap := snapshotOf(t, "ab\r\ncd")
	tests := []struct {
		pos  Position
		want int
	}{
		{Position{0, 0}, 0},
		{Position{0, 2}, 2},
		{Position{1, 0}, 4},
		{Position{1, 2}, 6},
		{Position{5, 0}, 6},
	}
	for _, tt := range tests {
		if got := snap.Offset(tt.pos); got != tt.want {
			t.Errorf("Offset(%v) = %d, want %d", tt.pos, got, tt.want)
		}
	}
	if got := snap.Slice(Span{Start: Position{0, 1}, End: Position{1, 1}}); got != "b\r\nc" {
		t.Errorf("Slice = %q", got)
	}
}

func TestSnapshotAccessorsCopy(t *testing.T) {
	snap := snapshotOf(t, "a // c\nb")
	tokens := snap.Tokens()
	tokens[0].Data = "changed"
	comments := snap.Comments()
	comments[0].Data = "changed"
	if got := snap.Tokens()[0].Data; got != "a" {
		t.Errorf("token data = %q, want %q", got, "a")
	}
	if got := snap.Comments()[0].Data; got != "// c" {
		t.Errorf("comment data = %q, want %q", got, "// c")
	}
}
