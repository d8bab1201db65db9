package parser

import "slices"

var primitiveTypes = []string{
	"action",
	"any",
	"anynonnull",
	"binary",
	"date",
	"datetime",
	"datetimezone",
	"duration",
	"function",
	"list",
	"logical",
	"none",
	"null",
	"number",
	"record",
	"table",
	"text",
	"time",
	"type",
}

// PrimitiveTypes returns the primitive type names in alphabetical order.
func PrimitiveTypes() []string {
	return slices.Clone(primitiveTypes)
}

func IsPrimitiveType(name string) bool {
	_, found := slices.BinarySearch(primitiveTypes, name)
	return found
}

func isPrimitiveTypeToken(tok Token) bool {
	switch tok.Kind {
	case TokenNullLiteral, TokenKeywordType:
		return true
	case TokenIdentifier:
		return IsPrimitiveType(tok.Data)
	}
	return false
}

// TypePrimaryType{type, primary type}
func (p *Parser) readTypeExpression(parent NodeID, attr int) NodeID {
	node := p.start(KindTypePrimaryType, parent, attr)
	p.constant(node, AttrPrefix)
	p.readPrimaryType(node, AttrOperand)
	p.nodes.finalize(node)
	return node
}

func (p *Parser) readPrimaryType(parent NodeID, attr int) NodeID {
	p.enter()
	defer p.leave()

	switch {
	case p.at(TokenLeftBracket):
		return p.readRecordType(parent, attr)
	case p.at(TokenLeftBrace):
		return p.readListType(parent, attr)
	case p.atIdentifier("function") && p.peekN(1).Kind == TokenLeftParenthesis:
		return p.readFunctionType(parent, attr)
	case p.atIdentifier("table") && p.peekN(1).Kind == TokenLeftBracket:
		return p.readTableType(parent, attr)
	case p.atIdentifier("nullable"):
		node := p.start(KindNullableType, parent, attr)
		p.constant(node, AttrPrefix)
		p.readPrimaryType(node, AttrOperand)
		p.nodes.finalize(node)
		return node
	}
	return p.readPrimitiveType(parent, attr)
}

func (p *Parser) readPrimitiveType(parent NodeID, attr int) NodeID {
	if !isPrimitiveTypeToken(p.peek()) {
		p.fail(ParseErrInvalidPrimitiveType,
			message(p.settings.locale(), msgInvalidPrimitiveType, describeToken(p.found())))
	}
	return p.nodes.addLeaf(KindPrimitiveType, parent, attr, p.next())
}

// readNullablePrimitiveType reads the right side of `as` and `is`:
// NullablePrimitiveType{nullable, PrimitiveType} or a bare PrimitiveType.
func (p *Parser) readNullablePrimitiveType(parent NodeID, attr int) NodeID {
	if !p.atIdentifier("nullable") {
		return p.readPrimitiveType(parent, attr)
	}
	node := p.start(KindNullablePrimitiveType, parent, attr)
	p.constant(node, AttrPrefix)
	p.readPrimitiveType(node, AttrOperand)
	p.nodes.finalize(node)
	return node
}

// RecordType{[, ArrayWrapper of Csv(FieldSpecification or ...), ]}
func (p *Parser) readRecordType(parent NodeID, attr int) NodeID {
	node := p.start(KindRecordType, parent, attr)
	p.expectConstant(node, AttrOpen, TokenLeftBracket)
	wrapper := p.start(KindArrayWrapper, node, AttrContent)
	if !p.at(TokenRightBracket) && !p.atEOF() {
		p.readCsv(wrapper, p.readFieldSpecification)
	}
	p.nodes.finalize(wrapper)
	p.expectClose(node, AttrClose, TokenRightBracket)
	p.nodes.finalize(node)
	return node
}

// FieldSpecification{optional, GeneralizedIdentifier, =, type}. An open
// record marker `...` takes the place of a specification.
func (p *Parser) readFieldSpecification(parent NodeID, attr int) NodeID {
	if p.at(TokenEllipsis) {
		return p.constant(parent, attr)
	}
	node := p.start(KindFieldSpecification, parent, attr)
	if p.atIdentifier("optional") && p.peekN(1).Kind != TokenEqual &&
		p.peekN(1).Kind != TokenComma && p.peekN(1).Kind != TokenRightBracket {
		p.constant(node, AttrFieldOptional)
	}
	p.readGeneralizedIdentifier(node, AttrFieldName)
	if p.optionalConstant(node, AttrFieldEquals, TokenEqual) {
		p.readPrimaryType(node, AttrFieldType)
	}
	p.nodes.finalize(node)
	return node
}

// ListType{{, type, }}
func (p *Parser) readListType(parent NodeID, attr int) NodeID {
	node := p.start(KindListType, parent, attr)
	p.constant(node, AttrOpen)
	p.readPrimaryType(node, AttrContent)
	p.expectClose(node, AttrClose, TokenRightBrace)
	p.nodes.finalize(node)
	return node
}

// FunctionType{function, ParameterList, AsType}
func (p *Parser) readFunctionType(parent NodeID, attr int) NodeID {
	node := p.start(KindFunctionType, parent, attr)
	p.constant(node, AttrFunctionTypeKeyword)
	p.readParameterList(node, AttrFunctionTypeParameters)
	p.readAsType(node, AttrFunctionTypeReturn)
	p.nodes.finalize(node)
	return node
}

// TableType{table, RecordType}
func (p *Parser) readTableType(parent NodeID, attr int) NodeID {
	node := p.start(KindTableType, parent, attr)
	p.constant(node, AttrPrefix)
	p.readRecordType(node, AttrOperand)
	p.nodes.finalize(node)
	return node
}
