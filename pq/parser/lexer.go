package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// LineMode is the lexer state carried across a line boundary.
type LineMode int

const (
	ModeDefault LineMode = iota
	ModeComment
	ModeQuotedIdentifier
	ModeText
)

var lineModeNames = map[LineMode]string{
	ModeDefault:          "Default",
	ModeComment:          "Comment",
	ModeQuotedIdentifier: "QuotedIdentifier",
	ModeText:             "Text",
}

func (m LineMode) String() string {
	if name, ok := lineModeNames[m]; ok {
		return name
	}
	return "Unknown"
}

// LineToken is a token local to one line. Start and End are code-unit
// offsets into the line text.
type LineToken struct {
	Kind  TokenKind
	Start int
	End   int
	Data  string
}

// lineLexer tokenizes a single line of text, starting in a given mode.
type lineLexer struct {
	input  string
	line   int
	pos    int
	mode   LineMode
	tokens []LineToken
	locale string
}

func newLineLexer(input string, line int, mode LineMode, locale string) *lineLexer {
	return &lineLexer{
		input:  input,
		line:   line,
		mode:   mode,
		locale: locale,
	}
}

// tokenizeLine returns the tokens of one line, the mode in effect at the end
// of the line, and the first error encountered. Tokens read before the error
// are kept.
func tokenizeLine(text string, line int, mode LineMode, locale string) ([]LineToken, LineMode, *LexError) {
	l := newLineLexer(text, line, mode, locale)
	if err := l.run(); err != nil {
		return l.tokens, ModeDefault, err
	}
	return l.tokens, l.mode, nil
}

func (l *lineLexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *lineLexer) peekN(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *lineLexer) peekRune() (rune, int) {
	if l.pos >= len(l.input) {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRuneInString(l.input[l.pos:])
}

func (l *lineLexer) emit(kind TokenKind, start int) {
	l.tokens = append(l.tokens, LineToken{
		Kind:  kind,
		Start: start,
		End:   l.pos,
		Data:  l.input[start:l.pos],
	})
}

func (l *lineLexer) errorf(id messageID, args ...any) *LexError {
	kind := LexErrUnexpectedCharacter
	switch id {
	case msgExpectedHexDigits:
		kind = LexErrExpectedHexDigits
	case msgUnknownHashKeyword:
		kind = LexErrUnknownHashKeyword
	case msgExpectedExponentDigits:
		kind = LexErrExpectedNumericLiteral
	}
	return &LexError{
		Kind:     kind,
		Position: Position{Line: l.line, Column: l.pos},
		Message:  message(l.locale, id, args...),
	}
}

func (l *lineLexer) run() *LexError {
	switch l.mode {
	case ModeComment:
		l.continueMultilineComment()
	case ModeText:
		l.continueQuoted(TokenTextLiteralContent, TokenTextLiteralEnd, ModeText)
	case ModeQuotedIdentifier:
		l.continueQuoted(TokenQuotedIdentifierContent, TokenQuotedIdentifierEnd, ModeQuotedIdentifier)
	}

	for l.mode == ModeDefault && l.pos < len(l.input) {
		l.skipWhitespace()
		if l.pos >= len(l.input) {
			break
		}
		if err := l.next(); err != nil {
			return err
		}
	}
	return nil
}

func (l *lineLexer) skipWhitespace() {
	for l.pos < len(l.input) {
		r, size := l.peekRune()
		if r == ' ' || r == '\t' || (r > 0x7f && unicode.IsSpace(r)) || r == '\v' || r == '\f' {
			l.pos += size
			continue
		}
		break
	}
}

func (l *lineLexer) next() *LexError {
	start := l.pos
	ch := l.peek()

	switch {
	case ch == '/' && l.peekN(1) == '/':
		l.pos = len(l.input)
		l.emit(TokenLineComment, start)
		return nil
	case ch == '/' && l.peekN(1) == '*':
		l.scanMultilineComment(start)
		return nil
	case ch == '"':
		l.pos++
		l.scanQuoted(start, TokenTextLiteral, TokenTextLiteralStart, ModeText)
		return nil
	case ch == '#' && l.peekN(1) == '"':
		l.pos += 2
		l.scanQuoted(start, TokenQuotedIdentifier, TokenQuotedIdentifierStart, ModeQuotedIdentifier)
		return nil
	case ch == '#':
		return l.scanHashKeyword(start)
	case isDigit(ch), ch == '.' && isDigit(l.peekN(1)):
		return l.scanNumber(start)
	}

	if r, _ := l.peekRune(); isIdentifierStart(r) {
		l.scanIdentifierOrKeyword(start)
		return nil
	}

	return l.scanOperator(start)
}

func (l *lineLexer) scanMultilineComment(start int) {
	l.pos += 2
	if idx := strings.Index(l.input[l.pos:], "*/"); idx >= 0 {
		l.pos += idx + 2
		l.emit(TokenMultilineComment, start)
		return
	}
	l.pos = len(l.input)
	l.emit(TokenMultilineCommentStart, start)
	l.mode = ModeComment
}

func (l *lineLexer) continueMultilineComment() {
	if idx := strings.Index(l.input, "*/"); idx >= 0 {
		l.pos = idx + 2
		l.emit(TokenMultilineCommentEnd, 0)
		l.mode = ModeDefault
		return
	}
	l.pos = len(l.input)
	if l.pos > 0 {
		l.emit(TokenMultilineCommentContent, 0)
	}
}

// scanQuoted reads the body of a text literal or quoted identifier whose
// opening delimiter was already consumed. Doubled quotes are escapes.
func (l *lineLexer) scanQuoted(start int, whole, fragment TokenKind, mode LineMode) {
	if l.closeQuote() {
		l.emit(whole, start)
		return
	}
	l.emit(fragment, start)
	l.mode = mode
}

func (l *lineLexer) continueQuoted(content, end TokenKind, mode LineMode) {
	if l.closeQuote() {
		l.emit(end, 0)
		l.mode = ModeDefault
		return
	}
	if l.pos > 0 {
		l.emit(content, 0)
	}
	l.mode = mode
}

// closeQuote advances past the closing quote if the line has one, otherwise
// to the end of the line.
func (l *lineLexer) closeQuote() bool {
	for l.pos < len(l.input) {
		if l.input[l.pos] == '"' {
			if l.peekN(1) == '"' {
				l.pos += 2
				continue
			}
			l.pos++
			return true
		}
		l.pos++
	}
	return false
}

func (l *lineLexer) scanHashKeyword(start int) *LexError {
	l.pos++
	for l.pos < len(l.input) && isASCIILetter(l.input[l.pos]) {
		l.pos++
	}
	word := l.input[start:l.pos]
	kind, ok := keywords[word]
	if !ok {
		l.pos = start
		return l.errorf(msgUnknownHashKeyword, word)
	}
	l.emit(kind, start)
	return nil
}

func (l *lineLexer) scanNumber(start int) *LexError {
	if l.peek() == '0' && (l.peekN(1) == 'x' || l.peekN(1) == 'X') {
		l.pos += 2
		digits := l.pos
		for isHexDigit(l.peek()) {
			l.pos++
		}
		if l.pos == digits {
			return l.errorf(msgExpectedHexDigits)
		}
		l.emit(TokenHexLiteral, start)
		return nil
	}

	for isDigit(l.peek()) {
		l.pos++
	}
	if l.peek() == '.' && isDigit(l.peekN(1)) {
		l.pos++
		for isDigit(l.peek()) {
			l.pos++
		}
	}
	if l.peek() == 'e' || l.peek() == 'E' {
		n := 1
		if l.peekN(1) == '+' || l.peekN(1) == '-' {
			n = 2
		}
		if !isDigit(l.peekN(n)) {
			l.pos += n
			return l.errorf(msgExpectedExponentDigits)
		}
		l.pos += n
		for isDigit(l.peek()) {
			l.pos++
		}
	}
	l.emit(TokenNumericLiteral, start)
	return nil
}

func (l *lineLexer) scanIdentifierOrKeyword(start int) {
	for {
		for l.pos < len(l.input) {
			r, size := l.peekRune()
			if !isIdentifierPart(r) {
				break
			}
			l.pos += size
		}
		// Dotted identifiers such as Table.AddColumn are one token.
		if l.peek() == '.' && l.pos+1 < len(l.input) {
			r, _ := utf8.DecodeRuneInString(l.input[l.pos+1:])
			if isIdentifierStart(r) {
				l.pos++
				continue
			}
		}
		break
	}
	l.emit(LookupKeyword(l.input[start:l.pos]), start)
}

var operators = []struct {
	text string
	kind TokenKind
}{
	{"...", TokenEllipsis},
	{"..", TokenDotDot},
	{"=>", TokenFatArrow},
	{"<>", TokenNotEqual},
	{"<=", TokenLessThanEqualTo},
	{">=", TokenGreaterThanEqualTo},
	{"??", TokenNullCoalescing},
	{"=", TokenEqual},
	{"<", TokenLessThan},
	{">", TokenGreaterThan},
	{"+", TokenPlus},
	{"-", TokenMinus},
	{"*", TokenAsterisk},
	{"/", TokenDivision},
	{"&", TokenAmpersand},
	{"?", TokenQuestionMark},
	{"@", TokenAtSign},
	{"!", TokenBang},
	{",", TokenComma},
	{";", TokenSemicolon},
	{"(", TokenLeftParenthesis},
	{")", TokenRightParenthesis},
	{"[", TokenLeftBracket},
	{"]", TokenRightBracket},
	{"{", TokenLeftBrace},
	{"}", TokenRightBrace},
}

func (l *lineLexer) scanOperator(start int) *LexError {
	rest := l.input[l.pos:]
	for _, op := range operators {
		if strings.HasPrefix(rest, op.text) {
			l.pos += len(op.text)
			l.emit(op.kind, start)
			return nil
		}
	}
	r, _ := l.peekRune()
	return l.errorf(msgUnexpectedCharacter, string(r))
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isASCIILetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentifierStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.Is(unicode.Nl, r)
}

func isIdentifierPart(r rune) bool {
	return isIdentifierStart(r) ||
		unicode.IsDigit(r) ||
		unicode.In(r, unicode.Mn, unicode.Mc, unicode.Pc, unicode.Cf)
}
