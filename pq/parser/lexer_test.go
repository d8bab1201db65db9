package parser

import (
	"testing"
)

func lineKinds(tokens []LineToken) []TokenKind {
	kinds := make([]TokenKind, len(tokens))
	for i, tok := range tokens {
		kinds[i] = tok.Kind
	}
	return kinds
}

func TestTokenizeLine(t *testing.T) {
	tests := []struct {
		input    string
		expected []TokenKind
	}{
		{"", []TokenKind{}},
		{"let x = 1 in x", []TokenKind{TokenKeywordLet, TokenIdentifier, TokenEqual, TokenNumericLiteral, TokenKeywordIn, TokenIdentifier}},
		{`Table.AddColumn(t, "A")`, []TokenKind{TokenIdentifier, TokenLeftParenthesis, TokenIdentifier, TokenComma, TokenTextLiteral, TokenRightParenthesis}},
		{`#"a b" ?? null`, []TokenKind{TokenQuotedIdentifier, TokenNullCoalescing, TokenNullLiteral}},
		{"0xff 1.5 .5 1e3", []TokenKind{TokenHexLiteral, TokenNumericLiteral, TokenNumericLiteral, TokenNumericLiteral}},
		{"a <> b <= c >= d => ...", []TokenKind{TokenIdentifier, TokenNotEqual, TokenIdentifier, TokenLessThanEqualTo, TokenIdentifier, TokenGreaterThanEqualTo, TokenIdentifier, TokenFatArrow, TokenEllipsis}},
		{"{1..2}", []TokenKind{TokenLeftBrace, TokenNumericLiteral, TokenDotDot, TokenNumericLiteral, TokenRightBrace}},
		{`"say ""hi"""`, []TokenKind{TokenTextLiteral}},
		{"x // trailing", []TokenKind{TokenIdentifier, TokenLineComment}},
		{"a /* inline */ b", []TokenKind{TokenIdentifier, TokenMultilineComment, TokenIdentifier}},
		{"#date(2020, 1, 1)", []TokenKind{TokenKeywordHashDate, TokenLeftParenthesis, TokenNumericLiteral, TokenComma, TokenNumericLiteral, TokenComma, TokenNumericLiteral, TokenRightParenthesis}},
		{"true false not", []TokenKind{TokenKeywordTrue, TokenKeywordFalse, TokenKeywordNot}},
		{"@x", []TokenKind{TokenAtSign, TokenIdentifier}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, mode, err := tokenizeLine(tt.input, 0, ModeDefault, DefaultLocale)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if mode != ModeDefault {
				t.Errorf("mode = %v, want %v", mode, ModeDefault)
			}
			got := lineKinds(tokens)
			if len(got) != len(tt.expected) {
				t.Fatalf("got %v, want %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("token %d: got %v, want %v", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestTokenizeLineOffsets(t *testing.T) {
	tokens, _, err := tokenizeLine("ab  = 12", 0, ModeDefault, DefaultLocale)
	if err != nil {
		t.Fatal(err)
	}
	want := []LineToken{
		{Kind: TokenIdentifier, Start: 0, End: 2, Data: "ab"},
		{Kind: TokenEqual, Start: 4, End: 5, Data: "="},
		{Kind: TokenNumericLiteral, Start: 6, End: 8, Data: "12"},
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(want))
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Errorf("token %d: got %+v, want %+v", i, tokens[i], want[i])
		}
	}
}

func TestTokenizeLineModes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		start    LineMode
		expected []TokenKind
		end      LineMode
	}{
		{"open comment", "x /* open", ModeDefault, []TokenKind{TokenIdentifier, TokenMultilineCommentStart}, ModeComment},
		{"inside comment", "still inside", ModeComment, []TokenKind{TokenMultilineCommentContent}, ModeComment},
		{"empty line inside comment", "", ModeComment, []TokenKind{}, ModeComment},
		{"close comment", "done */ y", ModeComment, []TokenKind{TokenMultilineCommentEnd, TokenIdentifier}, ModeDefault},
		{"open text", `x = "abc`, ModeDefault, []TokenKind{TokenIdentifier, TokenEqual, TokenTextLiteralStart}, ModeText},
		{"close text", `def" & y`, ModeText, []TokenKind{TokenTextLiteralEnd, TokenAmpersand, TokenIdentifier}, ModeDefault},
		{"escaped quote in text", `a""b`, ModeText, []TokenKind{TokenTextLiteralContent}, ModeText},
		{"open quoted identifier", `#"abc`, ModeDefault, []TokenKind{TokenQuotedIdentifierStart}, ModeQuotedIdentifier},
		{"close quoted identifier", `c"`, ModeQuotedIdentifier, []TokenKind{TokenQuotedIdentifierEnd}, ModeDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, mode, err := tokenizeLine(tt.input, 0, tt.start, DefaultLocale)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if mode != tt.end {
				t.Errorf("mode = %v, want %v", mode, tt.end)
			}
			got := lineKinds(tokens)
			if len(got) != len(tt.expected) {
				t.Fatalf("got %v, want %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("token %d: got %v, want %v", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestTokenizeLineErrors(t *testing.T) {
	tests := []struct {
		input  string
		kind   LexErrorKind
		column int
		kept   int
	}{
		{"0x", LexErrExpectedHexDigits, 2, 0},
		{"1e", LexErrExpectedNumericLiteral, 2, 0},
		{"a #foo", LexErrUnknownHashKeyword, 2, 1},
		{"a $ b", LexErrUnexpectedCharacter, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, mode, err := tokenizeLine(tt.input, 3, ModeDefault, DefaultLocale)
			if err == nil {
				t.Fatal("expected an error")
			}
			if err.Kind != tt.kind {
				t.Errorf("kind = %v, want %v", err.Kind, tt.kind)
			}
			if err.Position != (Position{Line: 3, Column: tt.column}) {
				t.Errorf("position = %v, want 3:%d", err.Position, tt.column)
			}
			if len(tokens) != tt.kept {
				t.Errorf("kept %d tokens, want %d", len(tokens), tt.kept)
			}
			if mode != ModeDefault {
				t.Errorf("mode = %v, want %v", mode, ModeDefault)
			}
		})
	}
}

func TestLookupKeyword(t *testing.T) {
	tests := []struct {
		input string
		kind  TokenKind
	}{
		{"let", TokenKeywordLet},
		{"otherwise", TokenKeywordOtherwise},
		{"#table", TokenKeywordHashTable},
		{"null", TokenNullLiteral},
		{"Let", TokenIdentifier},
		{"optional", TokenIdentifier},
	}
	for _, tt := range tests {
		if got := LookupKeyword(tt.input); got != tt.kind {
			t.Errorf("LookupKeyword(%q) = %v, want %v", tt.input, got, tt.kind)
		}
	}
}

func TestKeywordsCatalog(t *testing.T) {
	got := Keywords()
	if len(got) != 31 {
		t.Fatalf("got %d keywords, want 31", len(got))
	}
	if got[0] != "and" || got[len(got)-1] != "#time" {
		t.Errorf("got %q ... %q, want \"and\" ... \"#time\"", got[0], got[len(got)-1])
	}
}
