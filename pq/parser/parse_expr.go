package parser

type binaryOperator struct {
	kind       NodeKind
	precedence int
}

// Higher binds tighter. Every operator is left associative.
var binaryOperators = map[TokenKind]binaryOperator{
	TokenNullCoalescing:     {KindNullCoalescingExpression, 1},
	TokenKeywordOr:          {KindLogicalExpression, 2},
	TokenKeywordAnd:         {KindLogicalExpression, 3},
	TokenKeywordIs:          {KindIsExpression, 4},
	TokenKeywordAs:          {KindAsExpression, 5},
	TokenEqual:              {KindEqualityExpression, 6},
	TokenNotEqual:           {KindEqualityExpression, 6},
	TokenLessThan:           {KindRelationalExpression, 7},
	TokenLessThanEqualTo:    {KindRelationalExpression, 7},
	TokenGreaterThan:        {KindRelationalExpression, 7},
	TokenGreaterThanEqualTo: {KindRelationalExpression, 7},
	TokenPlus:               {KindArithmeticExpression, 8},
	TokenMinus:              {KindArithmeticExpression, 8},
	TokenAmpersand:          {KindArithmeticExpression, 8},
	TokenAsterisk:           {KindArithmeticExpression, 9},
	TokenDivision:           {KindArithmeticExpression, 9},
	TokenKeywordMeta:        {KindMetadataExpression, 10},
}

// IsBinaryOperator reports whether kind can join two operands.
func IsBinaryOperator(kind TokenKind) bool {
	_, ok := binaryOperators[kind]
	return ok
}

func (p *Parser) readExpression(parent NodeID, attr int) NodeID {
	return p.readBinary(parent, attr, 1)
}

// readBinary is a precedence climber. A finished left operand is wrapped in
// the operator node, which takes over the operand's slot in the parent.
func (p *Parser) readBinary(parent NodeID, attr, minPrecedence int) NodeID {
	p.enter()
	defer p.leave()

	left := p.readUnary(parent, attr)
	for {
		op, ok := binaryOperators[p.peek().Kind]
		if !ok || op.precedence < minPrecedence {
			return left
		}
		node := p.wrap(left, op.kind)
		p.constant(node, AttrOperator)
		if op.kind == KindAsExpression || op.kind == KindIsExpression {
			p.readNullablePrimitiveType(node, AttrRight)
		} else {
			p.readBinary(node, AttrRight, op.precedence+1)
		}
		p.nodes.finalize(node)
		left = node
	}
}

func (p *Parser) readUnary(parent NodeID, attr int) NodeID {
	switch p.peek().Kind {
	case TokenPlus, TokenMinus, TokenKeywordNot:
		p.enter()
		defer p.leave()

		node := p.start(KindUnaryExpression, parent, attr)
		p.constant(node, AttrPrefix)
		p.readUnary(node, AttrOperand)
		p.nodes.finalize(node)
		return node
	}
	return p.readPostfix(parent, attr)
}

func (p *Parser) readPostfix(parent NodeID, attr int) NodeID {
	left := p.readPrimary(parent, attr)
	for {
		switch p.peek().Kind {
		case TokenLeftParenthesis:
			left = p.readInvoke(left)
		case TokenLeftBrace:
			left = p.readItemAccess(left)
		case TokenLeftBracket:
			if p.peekN(1).Kind == TokenLeftBracket {
				left = p.readFieldProjection(p.wrap(left, KindFieldProjection))
			} else {
				left = p.readFieldSelector(p.wrap(left, KindFieldSelector))
			}
		default:
			return left
		}
	}
}

func (p *Parser) readPrimary(parent NodeID, attr int) NodeID {
	tok := p.peek()
	switch tok.Kind {
	case TokenIdentifier, TokenQuotedIdentifier, TokenAtSign,
		TokenKeywordHashBinary, TokenKeywordHashDate, TokenKeywordHashDateTime,
		TokenKeywordHashDateTimeZone, TokenKeywordHashDuration, TokenKeywordHashTable,
		TokenKeywordHashTime, TokenKeywordHashSections, TokenKeywordHashShared:
		return p.readIdentifierExpression(parent, attr)
	case TokenNumericLiteral, TokenHexLiteral, TokenTextLiteral, TokenNullLiteral,
		TokenKeywordTrue, TokenKeywordFalse, TokenKeywordHashInfinity, TokenKeywordHashNan:
		return p.nodes.addLeaf(KindLiteralExpression, parent, attr, p.next())
	case TokenEllipsis:
		return p.nodes.addLeaf(KindNotImplementedExpression, parent, attr, p.next())
	case TokenLeftParenthesis:
		if p.isFunction() {
			return p.readFunction(parent, attr)
		}
		return p.readParenthesized(parent, attr)
	case TokenLeftBracket:
		return p.readBracketPrimary(parent, attr)
	case TokenLeftBrace:
		return p.readList(parent, attr)
	case TokenKeywordLet:
		return p.readLet(parent, attr)
	case TokenKeywordIf:
		return p.readIf(parent, attr)
	case TokenKeywordEach:
		return p.readEach(parent, attr)
	case TokenKeywordTry:
		return p.readTry(parent, attr)
	case TokenKeywordError:
		return p.readErrorRaising(parent, attr)
	case TokenKeywordType:
		return p.readTypeExpression(parent, attr)
	case TokenEOF:
		p.failExpectedAny(expressionStartKinds...)
	default:
		p.failUnexpected()
	}
	return 0
}

// IdentifierExpression{@, Identifier}
func (p *Parser) readIdentifierExpression(parent NodeID, attr int) NodeID {
	node := p.start(KindIdentifierExpression, parent, attr)
	p.optionalConstant(node, AttrInclusive, TokenAtSign)
	switch tok := p.peek(); {
	case tok.Kind == TokenIdentifier, tok.Kind == TokenQuotedIdentifier, tok.Kind.IsKeyword() && tok.Data[0] == '#':
		p.nodes.addLeaf(KindIdentifier, node, AttrIdentifier, p.next())
	default:
		p.failExpected(TokenIdentifier)
	}
	p.nodes.finalize(node)
	return node
}

// isFunction decides whether the parenthesis at the cursor opens a
// parameter list. A closed list must be followed by `=>`, optionally after
// a return type. An unclosed one must already read like parameters.
func (p *Parser) isFunction() bool {
	end := p.matching(p.pos)
	if end < 0 {
		return p.looksLikeParameters(p.pos + 1)
	}
	i := end + 1
	if p.kindAt(i) == TokenKeywordAs {
		i = p.skipNullablePrimitiveType(i + 1)
		if i < 0 {
			return false
		}
	}
	return p.kindAt(i) == TokenFatArrow
}

// looksLikeParameters scans `[optional] name [as type]` items separated by
// commas up to the end of input. It asks for a comma or an `optional`
// marker so that `(x` stays a parenthesized expression.
func (p *Parser) looksLikeParameters(i int) bool {
	marked := false
	for {
		if p.kindAt(i) == TokenEOF {
			return marked
		}
		if p.identifierAt(i, "optional") && p.kindAt(i+1) == TokenIdentifier {
			marked = true
			i++
		}
		if p.kindAt(i) != TokenIdentifier {
			return false
		}
		i++
		if p.kindAt(i) == TokenKeywordAs {
			if i = p.skipNullablePrimitiveType(i + 1); i < 0 {
				return false
			}
		}
		switch p.kindAt(i) {
		case TokenEOF:
			return marked
		case TokenComma:
			marked = true
			i++
		default:
			return false
		}
	}
}

func (p *Parser) identifierAt(i int, text string) bool {
	return p.kindAt(i) == TokenIdentifier && p.tokens[i].Data == text
}

// skipNullablePrimitiveType returns the index after `[nullable] type` or -1.
func (p *Parser) skipNullablePrimitiveType(i int) int {
	if p.identifierAt(i, "nullable") {
		i++
	}
	switch p.kindAt(i) {
	case TokenIdentifier, TokenNullLiteral, TokenKeywordType:
		return i + 1
	}
	return -1
}

// FunctionExpression{ParameterList, AsType, =>, body}
func (p *Parser) readFunction(parent NodeID, attr int) NodeID {
	node := p.start(KindFunctionExpression, parent, attr)
	p.readParameterList(node, AttrFunctionParameters)
	if p.at(TokenKeywordAs) {
		p.readAsType(node, AttrFunctionReturnType)
	}
	p.expectConstant(node, AttrFunctionArrow, TokenFatArrow)
	p.readExpression(node, AttrFunctionBody)
	p.nodes.finalize(node)
	return node
}

// ParameterList{(, ArrayWrapper of Csv(Parameter), )}
func (p *Parser) readParameterList(parent NodeID, attr int) NodeID {
	node := p.start(KindParameterList, parent, attr)
	p.expectConstant(node, AttrOpen, TokenLeftParenthesis)
	wrapper := p.start(KindArrayWrapper, node, AttrContent)
	if !p.at(TokenRightParenthesis) {
		p.readCsv(wrapper, p.readParameter)
	}
	p.nodes.finalize(wrapper)
	p.expectClose(node, AttrClose, TokenRightParenthesis)
	p.nodes.finalize(node)
	return node
}

// Parameter{optional, name, AsType}
func (p *Parser) readParameter(parent NodeID, attr int) NodeID {
	node := p.start(KindParameter, parent, attr)
	if p.atIdentifier("optional") && p.peekN(1).Kind == TokenIdentifier {
		p.constant(node, AttrParameterOptional)
	}
	if !p.at(TokenIdentifier) {
		p.failExpected(TokenIdentifier)
	}
	p.nodes.addLeaf(KindIdentifier, node, AttrParameterName, p.next())
	if p.at(TokenKeywordAs) {
		p.readAsType(node, AttrParameterType)
	}
	p.nodes.finalize(node)
	return node
}

// AsType{as, nullable primitive type}
func (p *Parser) readAsType(parent NodeID, attr int) NodeID {
	node := p.start(KindAsType, parent, attr)
	p.expectConstant(node, AttrPrefix, TokenKeywordAs)
	p.readNullablePrimitiveType(node, AttrOperand)
	p.nodes.finalize(node)
	return node
}

// readCsv reads comma separated items into wrapper, one Csv node per item.
func (p *Parser) readCsv(wrapper NodeID, item func(NodeID, int) NodeID) {
	for i := 0; ; i++ {
		csv := p.start(KindCsv, wrapper, i)
		item(csv, AttrCsvNode)
		more := p.optionalConstant(csv, AttrCsvComma, TokenComma)
		p.nodes.finalize(csv)
		if !more {
			return
		}
	}
}

// ParenthesizedExpression{(, expression, )}
func (p *Parser) readParenthesized(parent NodeID, attr int) NodeID {
	node := p.start(KindParenthesizedExpression, parent, attr)
	p.constant(node, AttrOpen)
	p.readExpression(node, AttrContent)
	p.expectClose(node, AttrClose, TokenRightParenthesis)
	p.nodes.finalize(node)
	return node
}

// readBracketPrimary picks between a record literal, an implicit field
// projection and an implicit field selector.
func (p *Parser) readBracketPrimary(parent NodeID, attr int) NodeID {
	switch {
	case p.isRecordAhead():
		return p.readRecordExpression(parent, attr)
	case p.peekN(1).Kind == TokenLeftBracket:
		return p.readFieldProjection(p.start(KindFieldProjection, parent, attr))
	default:
		return p.readFieldSelector(p.start(KindFieldSelector, parent, attr))
	}
}

// isRecordAhead looks past the `[` at the cursor for an `=` at the same
// nesting level before the first `,` or `]`.
func (p *Parser) isRecordAhead() bool {
	switch p.peekN(1).Kind {
	case TokenRightBracket, TokenEOF:
		return true
	case TokenLeftBracket:
		return false
	}
	depth := 0
	for i := p.pos + 1; i < len(p.tokens); i++ {
		switch p.tokens[i].Kind {
		case TokenLeftBracket, TokenLeftParenthesis, TokenLeftBrace:
			depth++
		case TokenRightBracket, TokenRightParenthesis, TokenRightBrace:
			if depth == 0 {
				return false
			}
			depth--
		case TokenComma:
			if depth == 0 {
				return false
			}
		case TokenEqual:
			if depth == 0 {
				return true
			}
		}
	}
	return false
}

// RecordExpression{[, ArrayWrapper of Csv(GeneralizedIdentifierPairedExpression), ]}
func (p *Parser) readRecordExpression(parent NodeID, attr int) NodeID {
	node := p.start(KindRecordExpression, parent, attr)
	p.expectConstant(node, AttrOpen, TokenLeftBracket)
	wrapper := p.start(KindArrayWrapper, node, AttrContent)
	if !p.at(TokenRightBracket) && !p.atEOF() {
		p.readCsv(wrapper, p.readGeneralizedPair)
	}
	p.nodes.finalize(wrapper)
	p.expectClose(node, AttrClose, TokenRightBracket)
	p.nodes.finalize(node)
	return node
}

// GeneralizedIdentifierPairedExpression{key, =, value}
func (p *Parser) readGeneralizedPair(parent NodeID, attr int) NodeID {
	node := p.start(KindGeneralizedIdentifierPairedExpression, parent, attr)
	p.readGeneralizedIdentifier(node, AttrKey)
	p.expectConstant(node, AttrEquals, TokenEqual)
	p.readExpression(node, AttrValue)
	p.nodes.finalize(node)
	return node
}

// IdentifierPairedExpression{Identifier, =, value}
func (p *Parser) readIdentifierPair(parent NodeID, attr int) NodeID {
	node := p.start(KindIdentifierPairedExpression, parent, attr)
	if !p.at(TokenIdentifier) && !p.at(TokenQuotedIdentifier) {
		p.failExpected(TokenIdentifier)
	}
	p.nodes.addLeaf(KindIdentifier, node, AttrKey, p.next())
	p.expectConstant(node, AttrEquals, TokenEqual)
	p.readExpression(node, AttrValue)
	p.nodes.finalize(node)
	return node
}

// readGeneralizedIdentifier merges a run of word tokens, such as
// `Column Name`, into one leaf whose data is the covered source text.
func (p *Parser) readGeneralizedIdentifier(parent NodeID, attr int) NodeID {
	first := p.peek()
	switch {
	case first.Kind == TokenQuotedIdentifier:
		return p.nodes.addLeaf(KindGeneralizedIdentifier, parent, attr, p.next())
	case !first.IsWord():
		p.failExpected(TokenIdentifier)
	}
	last := p.next()
	for tok := p.peek(); tok.IsWord() || tok.Kind == TokenNumericLiteral; tok = p.peek() {
		last = p.next()
	}
	merged := first
	if last.Span.End != first.Span.End {
		merged.Kind = TokenIdentifier
		merged.Span.End = last.Span.End
		merged.Data = p.snapshot.Slice(merged.Span)
	}
	return p.nodes.addLeaf(KindGeneralizedIdentifier, parent, attr, merged)
}

// readFieldSelector fills an open FieldSelector node:
// {target, [, GeneralizedIdentifier, ], ?}
func (p *Parser) readFieldSelector(node NodeID) NodeID {
	p.expectConstant(node, AttrPostfixOpen, TokenLeftBracket)
	p.readGeneralizedIdentifier(node, AttrPostfixBody)
	p.expectClose(node, AttrPostfixClose, TokenRightBracket)
	p.optionalConstant(node, AttrPostfixOption, TokenQuestionMark)
	p.nodes.finalize(node)
	return node
}

// readFieldProjection fills an open FieldProjection node:
// {target, [, ArrayWrapper of Csv(FieldSelector), ], ?}
func (p *Parser) readFieldProjection(node NodeID) NodeID {
	p.expectConstant(node, AttrPostfixOpen, TokenLeftBracket)
	wrapper := p.start(KindArrayWrapper, node, AttrPostfixBody)
	p.readCsv(wrapper, func(parent NodeID, attr int) NodeID {
		return p.readFieldSelector(p.start(KindFieldSelector, parent, attr))
	})
	p.nodes.finalize(wrapper)
	p.expectClose(node, AttrPostfixClose, TokenRightBracket)
	p.optionalConstant(node, AttrPostfixOption, TokenQuestionMark)
	p.nodes.finalize(node)
	return node
}

// ListExpression{{, ArrayWrapper of Csv(expression or RangeExpression), }}
func (p *Parser) readList(parent NodeID, attr int) NodeID {
	node := p.start(KindListExpression, parent, attr)
	p.constant(node, AttrOpen)
	wrapper := p.start(KindArrayWrapper, node, AttrContent)
	if !p.at(TokenRightBrace) && !p.atEOF() {
		p.readCsv(wrapper, p.readListItem)
	}
	p.nodes.finalize(wrapper)
	p.expectClose(node, AttrClose, TokenRightBrace)
	p.nodes.finalize(node)
	return node
}

func (p *Parser) readListItem(parent NodeID, attr int) NodeID {
	item := p.readExpression(parent, attr)
	if !p.at(TokenDotDot) {
		return item
	}
	node := p.wrap(item, KindRangeExpression)
	p.constant(node, AttrRangeDots)
	p.readExpression(node, AttrRangeRight)
	p.nodes.finalize(node)
	return node
}

// InvokeExpression{callee, (, ArrayWrapper of Csv(expression), )}
func (p *Parser) readInvoke(callee NodeID) NodeID {
	node := p.wrap(callee, KindInvokeExpression)
	p.constant(node, AttrPostfixOpen)
	wrapper := p.start(KindArrayWrapper, node, AttrPostfixBody)
	if !p.at(TokenRightParenthesis) && !p.atEOF() {
		p.readCsv(wrapper, p.readExpression)
	}
	p.nodes.finalize(wrapper)
	p.expectClose(node, AttrPostfixClose, TokenRightParenthesis)
	p.nodes.finalize(node)
	return node
}

// ItemAccessExpression{target, {, expression, }, ?}
func (p *Parser) readItemAccess(target NodeID) NodeID {
	node := p.wrap(target, KindItemAccessExpression)
	p.constant(node, AttrPostfixOpen)
	p.readExpression(node, AttrPostfixBody)
	p.expectClose(node, AttrPostfixClose, TokenRightBrace)
	p.optionalConstant(node, AttrPostfixOption, TokenQuestionMark)
	p.nodes.finalize(node)
	return node
}

// LetExpression{let, ArrayWrapper of Csv(IdentifierPairedExpression), in, body}
func (p *Parser) readLet(parent NodeID, attr int) NodeID {
	node := p.start(KindLetExpression, parent, attr)
	p.constant(node, AttrLetKeyword)
	wrapper := p.start(KindArrayWrapper, node, AttrLetVariables)
	p.readCsv(wrapper, p.readIdentifierPair)
	p.nodes.finalize(wrapper)
	p.expectConstant(node, AttrLetIn, TokenKeywordIn)
	p.readExpression(node, AttrLetBody)
	p.nodes.finalize(node)
	return node
}

// IfExpression{if, condition, then, true branch, else, false branch}
func (p *Parser) readIf(parent NodeID, attr int) NodeID {
	node := p.start(KindIfExpression, parent, attr)
	p.constant(node, AttrIfKeyword)
	p.readExpression(node, AttrIfCondition)
	p.expectConstant(node, AttrIfThen, TokenKeywordThen)
	p.readExpression(node, AttrIfTrue)
	p.expectConstant(node, AttrIfElse, TokenKeywordElse)
	p.readExpression(node, AttrIfFalse)
	p.nodes.finalize(node)
	return node
}

// EachExpression{each, body}
func (p *Parser) readEach(parent NodeID, attr int) NodeID {
	node := p.start(KindEachExpression, parent, attr)
	p.constant(node, AttrPrefix)
	p.readExpression(node, AttrOperand)
	p.nodes.finalize(node)
	return node
}

// ErrorHandlingExpression{try, protected, OtherwiseExpression{otherwise, fallback}}
func (p *Parser) readTry(parent NodeID, attr int) NodeID {
	node := p.start(KindErrorHandlingExpression, parent, attr)
	p.constant(node, AttrTryKeyword)
	p.readExpression(node, AttrTryProtected)
	if p.at(TokenKeywordOtherwise) {
		otherwise := p.start(KindOtherwiseExpression, node, AttrTryOtherwise)
		p.constant(otherwise, AttrPrefix)
		p.readExpression(otherwise, AttrOperand)
		p.nodes.finalize(otherwise)
	}
	p.nodes.finalize(node)
	return node
}

// ErrorRaisingExpression{error, expression}
func (p *Parser) readErrorRaising(parent NodeID, attr int) NodeID {
	node := p.start(KindErrorRaisingExpression, parent, attr)
	p.constant(node, AttrPrefix)
	p.readExpression(node, AttrOperand)
	p.nodes.finalize(node)
	return node
}
