package pq

import (
	"context"

	"github.com/dhamidi/pqls/pq/parser"
)

// AutocompletePrimitiveType lists primitive type names where a type is
// expected: after `type`, `as`, `is` or `nullable`.
func AutocompletePrimitiveType(ctx context.Context, site *Site) ([]string, error) {
	if err := cancelled(ctx); err != nil {
		return nil, err
	}
	prev, w, hasWord, ok := site.previous()
	if !ok || prev.Kind != parser.KindConstant || !introducesType(*prev.Token) {
		return nil, nil
	}
	if hasWord {
		return filterPrefix(PrimitiveTypes(), site.prefix(w)), nil
	}
	if !site.Position.After(prev.Token.Span.End) {
		return nil, nil
	}
	return PrimitiveTypes(), nil
}

func introducesType(tok parser.Token) bool {
	switch tok.Kind {
	case parser.TokenKeywordType, parser.TokenKeywordAs, parser.TokenKeywordIs:
		return true
	case parser.TokenIdentifier:
		return tok.Data == ConstantNullable
	}
	return false
}
