package parser

import "fmt"

// Position addresses a code unit in a document. Line is zero-based and
// Column counts bytes of the UTF-8 line text.
type Position struct {
	Line   int
	Column int
}

func (p Position) Compare(q Position) int {
	switch {
	case p.Line < q.Line:
		return -1
	case p.Line > q.Line:
		return 1
	case p.Column < q.Column:
		return -1
	case p.Column > q.Column:
		return 1
	}
	return 0
}

func (p Position) Before(q Position) bool { return p.Compare(q) < 0 }

func (p Position) After(q Position) bool { return p.Compare(q) > 0 }

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span is a half-open range [Start, End).
type Span struct {
	Start Position
	End   Position
}

func (s Span) Contains(pos Position) bool {
	return !pos.Before(s.Start) && pos.Before(s.End)
}

func (s Span) String() string {
	return s.Start.String() + "-" + s.End.String()
}

type TokenKind int

const (
	TokenEOF TokenKind = iota

	// Literals
	TokenIdentifier
	TokenQuotedIdentifier
	TokenNumericLiteral
	TokenHexLiteral
	TokenTextLiteral
	TokenNullLiteral

	// Comments
	TokenLineComment
	TokenMultilineComment

	// Line fragments of multi-line tokens
	TokenTextLiteralStart
	TokenTextLiteralContent
	TokenTextLiteralEnd
	TokenQuotedIdentifierStart
	TokenQuotedIdentifierContent
	TokenQuotedIdentifierEnd
	TokenMultilineCommentStart
	TokenMultilineCommentContent
	TokenMultilineCommentEnd

	// Keywords
	TokenKeywordAnd
	TokenKeywordAs
	TokenKeywordEach
	TokenKeywordElse
	TokenKeywordError
	TokenKeywordFalse
	TokenKeywordIf
	TokenKeywordIn
	TokenKeywordIs
	TokenKeywordLet
	TokenKeywordMeta
	TokenKeywordNot
	TokenKeywordOtherwise
	TokenKeywordOr
	TokenKeywordSection
	TokenKeywordShared
	TokenKeywordThen
	TokenKeywordTrue
	TokenKeywordTry
	TokenKeywordType
	TokenKeywordHashBinary
	TokenKeywordHashDate
	TokenKeywordHashDateTime
	TokenKeywordHashDateTimeZone
	TokenKeywordHashDuration
	TokenKeywordHashInfinity
	TokenKeywordHashNan
	TokenKeywordHashSections
	TokenKeywordHashShared
	TokenKeywordHashTable
	TokenKeywordHashTime

	// Operators and punctuation
	TokenAmpersand
	TokenAsterisk
	TokenAtSign
	TokenBang
	TokenComma
	TokenDivision
	TokenDotDot
	TokenEllipsis
	TokenEqual
	TokenFatArrow
	TokenGreaterThan
	TokenGreaterThanEqualTo
	TokenLeftBrace
	TokenLeftBracket
	TokenLeftParenthesis
	TokenLessThan
	TokenLessThanEqualTo
	TokenMinus
	TokenNotEqual
	TokenNullCoalescing
	TokenPlus
	TokenQuestionMark
	TokenRightBrace
	TokenRightBracket
	TokenRightParenthesis
	TokenSemicolon
)

var tokenKindNames = map[TokenKind]string{
	TokenEOF:                     "EOF",
	TokenIdentifier:              "Identifier",
	TokenQuotedIdentifier:        "QuotedIdentifier",
	TokenNumericLiteral:          "NumericLiteral",
	TokenHexLiteral:              "HexLiteral",
	TokenTextLiteral:             "TextLiteral",
	TokenNullLiteral:             "NullLiteral",
	TokenLineComment:             "LineComment",
	TokenMultilineComment:        "MultilineComment",
	TokenTextLiteralStart:        "TextLiteralStart",
	TokenTextLiteralContent:      "TextLiteralContent",
	TokenTextLiteralEnd:          "TextLiteralEnd",
	TokenQuotedIdentifierStart:   "QuotedIdentifierStart",
	TokenQuotedIdentifierContent: "QuotedIdentifierContent",
	TokenQuotedIdentifierEnd:     "QuotedIdentifierEnd",
	TokenMultilineCommentStart:   "MultilineCommentStart",
	TokenMultilineCommentContent: "MultilineCommentContent",
	TokenMultilineCommentEnd:     "MultilineCommentEnd",
	TokenKeywordAnd:              "and",
	TokenKeywordAs:               "as",
	TokenKeywordEach:             "each",
	TokenKeywordElse:             "else",
	TokenKeywordError:            "error",
	TokenKeywordFalse:            "false",
	TokenKeywordIf:               "if",
	TokenKeywordIn:               "in",
	TokenKeywordIs:               "is",
	TokenKeywordLet:              "let",
	TokenKeywordMeta:             "meta",
	TokenKeywordNot:              "not",
	TokenKeywordOtherwise:        "otherwise",
	TokenKeywordOr:               "or",
	TokenKeywordSection:          "section",
	TokenKeywordShared:           "shared",
	TokenKeywordThen:             "then",
	TokenKeywordTrue:             "true",
	TokenKeywordTry:              "try",
	TokenKeywordType:             "type",
	TokenKeywordHashBinary:       "#binary",
	TokenKeywordHashDate:         "#date",
	TokenKeywordHashDateTime:     "#datetime",
	TokenKeywordHashDateTimeZone: "#datetimezone",
	TokenKeywordHashDuration:     "#duration",
	TokenKeywordHashInfinity:     "#infinity",
	TokenKeywordHashNan:          "#nan",
	TokenKeywordHashSections:     "#sections",
	TokenKeywordHashShared:       "#shared",
	TokenKeywordHashTable:        "#table",
	TokenKeywordHashTime:         "#time",
	TokenAmpersand:               "&",
	TokenAsterisk:                "*",
	TokenAtSign:                  "@",
	TokenBang:                    "!",
	TokenComma:                   ",",
	TokenDivision:                "/",
	TokenDotDot:                  "..",
	TokenEllipsis:                "...",
	TokenEqual:                   "=",
	TokenFatArrow:                "=>",
	TokenGreaterThan:             ">",
	TokenGreaterThanEqualTo:      ">=",
	TokenLeftBrace:               "{",
	TokenLeftBracket:             "[",
	TokenLeftParenthesis:         "(",
	TokenLessThan:                "<",
	TokenLessThanEqualTo:         "<=",
	TokenMinus:                   "-",
	TokenNotEqual:                "<>",
	TokenNullCoalescing:          "??",
	TokenPlus:                    "+",
	TokenQuestionMark:            "?",
	TokenRightBrace:              "}",
	TokenRightBracket:            "]",
	TokenRightParenthesis:        ")",
	TokenSemicolon:               ";",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

func (k TokenKind) IsKeyword() bool {
	return k >= TokenKeywordAnd && k <= TokenKeywordHashTime
}

func (k TokenKind) IsComment() bool {
	switch k {
	case TokenLineComment, TokenMultilineComment,
		TokenMultilineCommentStart, TokenMultilineCommentContent, TokenMultilineCommentEnd:
		return true
	}
	return false
}

// IsFragment reports whether k is one piece of a token that spans lines.
func (k TokenKind) IsFragment() bool {
	return k >= TokenTextLiteralStart && k <= TokenMultilineCommentEnd
}

var keywords = map[string]TokenKind{
	"and":           TokenKeywordAnd,
	"as":            TokenKeywordAs,
	"each":          TokenKeywordEach,
	"else":          TokenKeywordElse,
	"error":         TokenKeywordError,
	"false":         TokenKeywordFalse,
	"if":            TokenKeywordIf,
	"in":            TokenKeywordIn,
	"is":            TokenKeywordIs,
	"let":           TokenKeywordLet,
	"meta":          TokenKeywordMeta,
	"not":           TokenKeywordNot,
	"otherwise":     TokenKeywordOtherwise,
	"or":            TokenKeywordOr,
	"section":       TokenKeywordSection,
	"shared":        TokenKeywordShared,
	"then":          TokenKeywordThen,
	"true":          TokenKeywordTrue,
	"try":           TokenKeywordTry,
	"type":          TokenKeywordType,
	"#binary":       TokenKeywordHashBinary,
	"#date":         TokenKeywordHashDate,
	"#datetime":     TokenKeywordHashDateTime,
	"#datetimezone": TokenKeywordHashDateTimeZone,
	"#duration":     TokenKeywordHashDuration,
	"#infinity":     TokenKeywordHashInfinity,
	"#nan":          TokenKeywordHashNan,
	"#sections":     TokenKeywordHashSections,
	"#shared":       TokenKeywordHashShared,
	"#table":        TokenKeywordHashTable,
	"#time":         TokenKeywordHashTime,
}

// LookupKeyword returns the keyword kind for text, or TokenIdentifier.
func LookupKeyword(text string) TokenKind {
	if kind, ok := keywords[text]; ok {
		return kind
	}
	if text == "null" {
		return TokenNullLiteral
	}
	return TokenIdentifier
}

// Keywords returns the keyword catalog in declaration order.
func Keywords() []string {
	out := make([]string, 0, len(keywords))
	for k := TokenKeywordAnd; k <= TokenKeywordHashTime; k++ {
		out = append(out, k.String())
	}
	return out
}

// Token is a fully merged token from a Snapshot.
type Token struct {
	Kind TokenKind
	Data string
	Span Span
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q @%s", t.Kind, t.Data, t.Span)
}

// IsWord reports whether the token reads like a word: an identifier, a
// keyword, or one of the word-shaped literals (null, true, false).
func (t Token) IsWord() bool {
	switch t.Kind {
	case TokenIdentifier, TokenNullLiteral:
		return true
	}
	return t.Kind.IsKeyword()
}
