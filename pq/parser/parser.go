package parser

import (
	"context"
	"slices"
)

type Option func(*Parser)

func WithSettings(settings Settings) Option {
	return func(p *Parser) {
		p.settings = settings
	}
}

func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		p.settings.MaxDepth = depth
	}
}

// ParseOk is a successful parse: the root node and the arena holding it.
type ParseOk struct {
	Root   NodeID
	Nodes  *Collection
	Leaves []NodeID
}

// Parser is a recursive descent parser over a Snapshot. It stops at the
// first error, leaving the unfinished productions in the arena as Context
// nodes.
type Parser struct {
	settings Settings
	snapshot *Snapshot
	tokens   []Token
	pos      int
	nodes    *Collection
	depth    int
	ctx      context.Context
	err      error
}

// bailout unwinds the parser after err has been recorded.
type bailout struct{}

type parseFunc func(*Parser) NodeID

// ReadDocument parses a section document or a single expression, whichever
// the input starts with. On failure the error is a *ParseError carrying the
// partial arena, an *InvariantError, or wraps ErrCancelled.
func ReadDocument(ctx context.Context, snapshot *Snapshot, opts ...Option) (*ParseOk, error) {
	return newParser(ctx, snapshot, opts).run((*Parser).readDocument)
}

// ReadExpression parses the input as exactly one expression.
func ReadExpression(ctx context.Context, snapshot *Snapshot, opts ...Option) (*ParseOk, error) {
	return newParser(ctx, snapshot, opts).run((*Parser).readRootExpression)
}

func newParser(ctx context.Context, snapshot *Snapshot, opts []Option) *Parser {
	p := &Parser{
		settings: DefaultSettings(),
		snapshot: snapshot,
		tokens:   snapshot.Tokens(),
		nodes:    NewCollection(),
		ctx:      ctx,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Parser) run(entry parseFunc) (ok *ParseOk, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		switch r := r.(type) {
		case bailout:
			ok, err = nil, p.err
		case *InvariantError:
			ok, err = nil, r
		default:
			panic(r)
		}
	}()

	root := entry(p)
	return &ParseOk{
		Root:   root,
		Nodes:  p.nodes,
		Leaves: p.nodes.Leaves(),
	}, nil
}

func (p *Parser) readDocument() NodeID {
	if p.atEOF() {
		p.failExpectedAny(expressionStartKinds...)
	}
	if p.isSectionDocument() {
		return p.readSection()
	}
	return p.readRootExpression()
}

func (p *Parser) readRootExpression() NodeID {
	if p.atEOF() {
		p.failExpectedAny(expressionStartKinds...)
	}
	root := p.readExpression(0, 0)
	if !p.atEOF() {
		tok := p.peek()
		p.fail(ParseErrUnusedTokensRemain, message(p.settings.locale(), msgUnusedTokens, tok.Span.Start))
	}
	return root
}

// isSectionDocument reports whether the input is `section ...` or a literal
// attribute record followed by `section`.
func (p *Parser) isSectionDocument() bool {
	switch p.peek().Kind {
	case TokenKeywordSection:
		return true
	case TokenLeftBracket:
		end := p.matching(p.pos)
		return end >= 0 && p.kindAt(end+1) == TokenKeywordSection
	}
	return false
}

// Section{attributes, section, name, ;, members}
func (p *Parser) readSection() NodeID {
	section := p.start(KindSection, 0, 0)
	if p.at(TokenLeftBracket) {
		p.readRecordExpression(section, AttrSectionAttributes)
	}
	p.expectConstant(section, AttrSectionKeyword, TokenKeywordSection)
	if p.at(TokenIdentifier) || p.at(TokenQuotedIdentifier) {
		p.nodes.addLeaf(KindIdentifier, section, AttrSectionName, p.next())
	}
	p.expectConstant(section, AttrSectionSemicolon, TokenSemicolon)

	members := p.start(KindArrayWrapper, section, AttrSectionMembers)
	for i := 0; !p.atEOF(); i++ {
		p.readSectionMember(members, i)
	}
	p.nodes.finalize(members)
	p.nodes.finalize(section)
	return section
}

// SectionMember{attributes, shared, IdentifierPairedExpression, ;}
func (p *Parser) readSectionMember(parent NodeID, attr int) NodeID {
	member := p.start(KindSectionMember, parent, attr)
	if p.at(TokenLeftBracket) {
		p.readRecordExpression(member, AttrMemberAttributes)
	}
	if p.at(TokenKeywordShared) {
		p.constant(member, AttrMemberShared)
	}
	p.readIdentifierPair(member, AttrMemberPair)
	p.expectConstant(member, AttrMemberSemicolon, TokenSemicolon)
	p.nodes.finalize(member)
	return member
}

func (p *Parser) peek() Token {
	return p.peekN(0)
}

func (p *Parser) peekN(n int) Token {
	if i := p.pos + n; i < len(p.tokens) {
		return p.tokens[i]
	}
	return p.eofToken()
}

func (p *Parser) eofToken() Token {
	var end Position
	if n := len(p.tokens); n > 0 {
		end = p.tokens[n-1].Span.End
	}
	return Token{Kind: TokenEOF, Span: Span{Start: end, End: end}}
}

func (p *Parser) kindAt(i int) TokenKind {
	if i < 0 || i >= len(p.tokens) {
		return TokenEOF
	}
	return p.tokens[i].Kind
}

func (p *Parser) next() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) at(kind TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) atEOF() bool {
	return p.pos >= len(p.tokens)
}

func (p *Parser) atIdentifier(text string) bool {
	tok := p.peek()
	return tok.Kind == TokenIdentifier && tok.Data == text
}

// matching returns the index of the bracket closing the one at index open,
// or -1 if the input ends first.
func (p *Parser) matching(open int) int {
	depth := 0
	for i := open; i < len(p.tokens); i++ {
		switch p.tokens[i].Kind {
		case TokenLeftBracket, TokenLeftParenthesis, TokenLeftBrace:
			depth++
		case TokenRightBracket, TokenRightParenthesis, TokenRightBrace:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// start opens a context node. Every production begins here, so this is
// where cancellation is observed.
func (p *Parser) start(kind NodeKind, parent NodeID, attr int) NodeID {
	p.checkCancelled()
	return p.nodes.startContext(kind, parent, attr)
}

func (p *Parser) wrap(operand NodeID, kind NodeKind) NodeID {
	p.checkCancelled()
	return p.nodes.wrap(operand, kind)
}

func (p *Parser) checkCancelled() {
	if err := checkCancelled(p.ctx); err != nil {
		p.err = err
		panic(bailout{})
	}
}

func (p *Parser) enter() {
	p.depth++
	if limit := p.settings.maxDepth(); p.depth > limit {
		p.fail(ParseErrNestingTooDeep, message(p.settings.locale(), msgNestingTooDeep, limit))
	}
}

func (p *Parser) leave() {
	p.depth--
}

// constant consumes the current token as a Constant leaf.
func (p *Parser) constant(parent NodeID, attr int) NodeID {
	return p.nodes.addLeaf(KindConstant, parent, attr, p.next())
}

func (p *Parser) expectConstant(parent NodeID, attr int, kind TokenKind) NodeID {
	if !p.at(kind) {
		p.failExpected(kind)
	}
	return p.constant(parent, attr)
}

func (p *Parser) optionalConstant(parent NodeID, attr int, kind TokenKind) bool {
	if !p.at(kind) {
		return false
	}
	p.constant(parent, attr)
	return true
}

// expectClose consumes a closing bracket. Running out of input instead is
// reported as an unterminated bracket.
func (p *Parser) expectClose(parent NodeID, attr int, kind TokenKind) NodeID {
	if p.atEOF() {
		p.fail(ParseErrUnterminatedBracket, message(p.settings.locale(), msgUnterminatedBracket, kind), kind)
	}
	return p.expectConstant(parent, attr, kind)
}

// fail records a *ParseError at the current token and unwinds.
func (p *Parser) fail(kind ParseErrorKind, msg string, expected ...TokenKind) {
	tok := p.peek()
	err := &ParseError{
		Kind:     kind,
		Message:  msg,
		Expected: slices.Clone(expected),
		Position: tok.Span.Start,
		Nodes:    p.nodes,
		Leaves:   p.nodes.Leaves(),
	}
	if tok.Kind != TokenEOF {
		err.Found = &tok
	}
	p.err = err
	panic(bailout{})
}

func (p *Parser) found() *Token {
	if p.atEOF() {
		return nil
	}
	tok := p.peek()
	return &tok
}

func (p *Parser) failExpected(kind TokenKind) {
	p.fail(ParseErrExpectedTokenKind,
		message(p.settings.locale(), msgExpectedToken, kind, describeToken(p.found())), kind)
}

func (p *Parser) failExpectedAny(kinds ...TokenKind) {
	p.fail(ParseErrExpectedAnyTokenKind,
		message(p.settings.locale(), msgExpectedAnyToken, describeKinds(kinds), describeToken(p.found())), kinds...)
}

func (p *Parser) failUnexpected() {
	p.fail(ParseErrUnexpectedToken, message(p.settings.locale(), msgUnexpectedToken, describeToken(p.found())))
}

var expressionStartKinds = []TokenKind{
	TokenIdentifier, TokenQuotedIdentifier, TokenAtSign,
	TokenNumericLiteral, TokenHexLiteral, TokenTextLiteral, TokenNullLiteral,
	TokenKeywordTrue, TokenKeywordFalse,
	TokenLeftParenthesis, TokenLeftBracket, TokenLeftBrace,
	TokenPlus, TokenMinus, TokenKeywordNot,
	TokenKeywordLet, TokenKeywordIf, TokenKeywordEach, TokenKeywordTry,
	TokenKeywordError, TokenKeywordType, TokenKeywordSection, TokenEllipsis,
}
