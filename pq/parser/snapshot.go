package parser

import "slices"

// Snapshot is the flat, immutable token stream of an error-free State.
// Tokens that spanned lines are merged into one Token.
type Snapshot struct {
	text       string
	lineStarts []int
	tokens     []Token
	comments   []Token
}

type pendingFragment struct {
	kind  TokenKind
	mode  LineMode
	start Position
}

// Snapshot consolidates the state. It fails with an ErrorLines LexError if
// any line has a lex error, and with an UnterminatedMultilineToken LexError
// if a text literal, quoted identifier or block comment never closes.
func (s *State) Snapshot() (*Snapshot, error) {
	if errs := s.ErrorLineMap(); errs != nil {
		first := -1
		for n := range errs {
			if first < 0 || n < first {
				first = n
			}
		}
		return nil, &LexError{
			Kind:     LexErrErrorLines,
			Position: errs[first].Position,
			Message:  message(s.settings.locale(), msgErrorLines, len(errs)),
			Lines:    errs,
		}
	}

	snap := &Snapshot{
		text:       s.Text(),
		lineStarts: make([]int, len(s.lines)),
	}
	offset := 0
	for i, line := range s.lines {
		snap.lineStarts[i] = offset
		offset += len(line.Text) + len(line.Terminator)
	}

	var pending *pendingFragment
	for i, line := range s.lines {
		for _, lt := range line.Tokens {
			start := Position{Line: i, Column: lt.Start}
			end := Position{Line: i, Column: lt.End}

			switch lt.Kind {
			case TokenTextLiteralStart:
				pending = &pendingFragment{kind: TokenTextLiteral, mode: ModeText, start: start}
			case TokenQuotedIdentifierStart:
				pending = &pendingFragment{kind: TokenQuotedIdentifier, mode: ModeQuotedIdentifier, start: start}
			case TokenMultilineCommentStart:
				pending = &pendingFragment{kind: TokenMultilineComment, mode: ModeComment, start: start}
			case TokenTextLiteralContent, TokenQuotedIdentifierContent, TokenMultilineCommentContent:
				// Merged when the matching end fragment arrives.
			case TokenTextLiteralEnd, TokenQuotedIdentifierEnd, TokenMultilineCommentEnd:
				if pending == nil {
					return nil, invariantf("end fragment %s at %s without a start", lt.Kind, start)
				}
				snap.push(Token{
					Kind: pending.kind,
					Data: snap.text[snap.Offset(pending.start):snap.Offset(end)],
					Span: Span{Start: pending.start, End: end},
				})
				pending = nil
			default:
				snap.push(Token{Kind: lt.Kind, Data: lt.Data, Span: Span{Start: start, End: end}})
			}
		}
	}

	if pending != nil {
		return nil, &LexError{
			Kind:     LexErrUnterminatedMultilineToken,
			Position: pending.start,
			Mode:     pending.mode,
			Message:  message(s.settings.locale(), msgUnterminated, pending.kind),
		}
	}
	return snap, nil
}

func (s *Snapshot) push(tok Token) {
	if tok.Kind.IsComment() {
		s.comments = append(s.comments, tok)
		return
	}
	s.tokens = append(s.tokens, tok)
}

// Tokens returns the non-comment tokens in document order.
func (s *Snapshot) Tokens() []Token {
	return slices.Clone(s.tokens)
}

// Comments returns the comment tokens in document order.
func (s *Snapshot) Comments() []Token {
	return slices.Clone(s.comments)
}

func (s *Snapshot) Text() string {
	return s.text
}

// Offset converts a position into a byte offset in the document text.
func (s *Snapshot) Offset(pos Position) int {
	if pos.Line < 0 {
		return 0
	}
	if pos.Line >= len(s.lineStarts) {
		return len(s.text)
	}
	return min(s.lineStarts[pos.Line]+pos.Column, len(s.text))
}

// Slice returns the document text covered by span.
func (s *Snapshot) Slice(span Span) string {
	return s.text[s.Offset(span.Start):s.Offset(span.End)]
}
