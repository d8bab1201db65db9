package pq

import (
	"context"

	"github.com/dhamidi/pqls/pq/parser"
)

type TypeKind int

const (
	TypeUnknown TypeKind = iota
	TypeAny
	TypeNone
	TypeNull
	TypeLogical
	TypeNumber
	TypeText
	TypeBinary
	TypeDate
	TypeDateTime
	TypeDateTimeZone
	TypeDuration
	TypeTime
	TypeList
	TypeRecord
	TypeTable
	TypeFunction
	TypeType
	TypeAction
	TypeAnyNonNull
)

var typeKindNames = map[TypeKind]string{
	TypeUnknown:      "unknown",
	TypeAny:          "any",
	TypeNone:         "none",
	TypeNull:         "null",
	TypeLogical:      "logical",
	TypeNumber:       "number",
	TypeText:         "text",
	TypeBinary:       "binary",
	TypeDate:         "date",
	TypeDateTime:     "datetime",
	TypeDateTimeZone: "datetimezone",
	TypeDuration:     "duration",
	TypeTime:         "time",
	TypeList:         "list",
	TypeRecord:       "record",
	TypeTable:        "table",
	TypeFunction:     "function",
	TypeType:         "type",
	TypeAction:       "action",
	TypeAnyNonNull:   "anynonnull",
}

var primitiveTypeKinds = func() map[string]TypeKind {
	out := make(map[string]TypeKind, len(typeKindNames))
	for kind, name := range typeKindNames {
		if kind != TypeUnknown {
			out[name] = kind
		}
	}
	return out
}()

func (k TypeKind) String() string {
	if name, ok := typeKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Type is the inferred type of a scope item.
type Type struct {
	Kind     TypeKind
	Nullable bool
}

func (t Type) String() string {
	if t.Nullable {
		return "nullable " + t.Kind.String()
	}
	return t.Kind.String()
}

// ScopeTyper assigns a type to every item of a scope. Implementations must
// return an entry for each key of scope.
type ScopeTyper interface {
	ScopeType(ctx context.Context, nodes *parser.Collection, scope *Scope) (map[string]Type, error)
}

// DefaultScopeTyper infers types from literals, constructors, type
// annotations and the obvious result types of operators. Anything else is
// TypeUnknown.
type DefaultScopeTyper struct{}

func (DefaultScopeTyper) ScopeType(ctx context.Context, nodes *parser.Collection, scope *Scope) (map[string]Type, error) {
	out := make(map[string]Type, scope.Len())
	for _, item := range scope.Items() {
		if err := cancelled(ctx); err != nil {
			return nil, err
		}
		t := typer{nodes: nodes, scope: scope, visited: map[parser.NodeID]bool{}}
		out[item.Name] = t.item(item)
	}
	return out, nil
}

type typer struct {
	nodes   *parser.Collection
	scope   *Scope
	visited map[parser.NodeID]bool
}

func (t *typer) item(item ScopeItem) Type {
	switch item.Kind {
	case ScopeParameter:
		annotation, ok := t.nodes.ChildByAttribute(item.Node, parser.AttrParameterType)
		if !ok {
			return Type{Kind: TypeAny}
		}
		_, optional := t.nodes.ChildByAttribute(item.Node, parser.AttrParameterOptional)
		typ := t.annotation(annotation.ID)
		typ.Nullable = typ.Nullable || optional
		return typ
	case ScopeKeyValuePair, ScopeSectionMember:
		if item.Value == 0 || t.visited[item.Node] {
			return Type{}
		}
		t.visited[item.Node] = true
		return t.expression(item.Value)
	}
	return Type{}
}

// annotation reads an AsType or a nullable primitive type.
func (t *typer) annotation(id parser.NodeID) Type {
	switch t.nodes.Kind(id) {
	case parser.KindAsType:
		operand, _ := t.nodes.ChildByAttribute(id, parser.AttrOperand)
		return t.annotation(operand.ID)
	case parser.KindNullablePrimitiveType:
		operand, _ := t.nodes.ChildByAttribute(id, parser.AttrOperand)
		typ := t.annotation(operand.ID)
		typ.Nullable = true
		return typ
	case parser.KindPrimitiveType:
		n, _ := t.nodes.Node(id)
		return Type{Kind: primitiveTypeKinds[n.Token.Data]}
	}
	return Type{}
}

func (t *typer) expression(id parser.NodeID) Type {
	n, ok := t.nodes.Node(id)
	if !ok {
		return Type{}
	}
	switch n.Kind {
	case parser.KindLiteralExpression:
		return literalType(n.Token.Kind)
	case parser.KindRecordExpression:
		return Type{Kind: TypeRecord}
	case parser.KindListExpression:
		return Type{Kind: TypeList}
	case parser.KindFunctionExpression, parser.KindEachExpression:
		return Type{Kind: TypeFunction}
	case parser.KindTypePrimaryType:
		return Type{Kind: TypeType}
	case parser.KindNotImplementedExpression, parser.KindErrorRaisingExpression:
		return Type{Kind: TypeNone}
	case parser.KindEqualityExpression, parser.KindRelationalExpression,
		parser.KindLogicalExpression, parser.KindIsExpression:
		return Type{Kind: TypeLogical}
	case parser.KindAsExpression:
		right, _ := t.nodes.ChildByAttribute(id, parser.AttrRight)
		return t.annotation(right.ID)
	case parser.KindParenthesizedExpression:
		return t.child(id, parser.AttrContent)
	case parser.KindMetadataExpression:
		return t.child(id, parser.AttrLeft)
	case parser.KindUnaryExpression:
		prefix, _ := t.nodes.ChildByAttribute(id, parser.AttrPrefix)
		if prefix.IsLeaf() && prefix.Token.Kind == parser.TokenKeywordNot {
			return Type{Kind: TypeLogical}
		}
		return Type{Kind: TypeNumber}
	case parser.KindArithmeticExpression:
		left, right := t.child(id, parser.AttrLeft), t.child(id, parser.AttrRight)
		if left == right {
			return left
		}
	case parser.KindIfExpression:
		yes, no := t.child(id, parser.AttrIfTrue), t.child(id, parser.AttrIfFalse)
		if yes == no {
			return yes
		}
	case parser.KindInvokeExpression:
		return t.constructor(id)
	case parser.KindIdentifierExpression:
		name, ok := identifierName(t.nodes, id)
		if !ok {
			return Type{}
		}
		if item, ok := t.scope.Lookup(name); ok {
			return t.item(item)
		}
	}
	return Type{}
}

func (t *typer) child(id parser.NodeID, attr int) Type {
	n, ok := t.nodes.ChildByAttribute(id, attr)
	if !ok {
		return Type{}
	}
	return t.expression(n.ID)
}

var constructorTypes = map[parser.TokenKind]TypeKind{
	parser.TokenKeywordHashBinary:       TypeBinary,
	parser.TokenKeywordHashDate:         TypeDate,
	parser.TokenKeywordHashDateTime:     TypeDateTime,
	parser.TokenKeywordHashDateTimeZone: TypeDateTimeZone,
	parser.TokenKeywordHashDuration:     TypeDuration,
	parser.TokenKeywordHashTable:        TypeTable,
	parser.TokenKeywordHashTime:         TypeTime,
}

// constructor types invocations of the #date family.
func (t *typer) constructor(id parser.NodeID) Type {
	callee, ok := t.nodes.ChildByAttribute(id, parser.AttrTarget)
	if !ok || callee.Kind != parser.KindIdentifierExpression {
		return Type{}
	}
	ident, ok := t.nodes.ChildByAttribute(callee.ID, parser.AttrIdentifier)
	if !ok {
		return Type{}
	}
	return Type{Kind: constructorTypes[ident.Token.Kind]}
}

func literalType(kind parser.TokenKind) Type {
	switch kind {
	case parser.TokenNumericLiteral, parser.TokenHexLiteral,
		parser.TokenKeywordHashInfinity, parser.TokenKeywordHashNan:
		return Type{Kind: TypeNumber}
	case parser.TokenTextLiteral:
		return Type{Kind: TypeText}
	case parser.TokenNullLiteral:
		return Type{Kind: TypeNull}
	case parser.TokenKeywordTrue, parser.TokenKeywordFalse:
		return Type{Kind: TypeLogical}
	}
	return Type{}
}
