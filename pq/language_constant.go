package pq

import (
	"context"
	"strings"

	"github.com/dhamidi/pqls/pq/parser"
)

// AutocompleteLanguageConstant offers `nullable` in an empty type slot after
// `as` or `is`, and `optional` where the next parameter of a parameter
// list goes.
func AutocompleteLanguageConstant(ctx context.Context, site *Site) ([]string, error) {
	if err := cancelled(ctx); err != nil {
		return nil, err
	}
	prev, w, hasWord, ok := site.previous()
	if !ok || prev.Kind != parser.KindConstant {
		return nil, nil
	}
	offer := func(constant string) []string {
		if hasWord && !strings.HasPrefix(constant, site.prefix(w)) {
			return nil
		}
		return []string{constant}
	}
	nodes := site.Nodes

	switch prev.Token.Kind {
	case parser.TokenKeywordAs, parser.TokenKeywordIs:
		// The type follows the operator in both AsType and the binary forms.
		if _, filled := nodes.ChildByAttribute(nodes.Parent(prev.ID), prev.Attribute+1); filled {
			return nil, nil
		}
		if !hasWord && !site.Position.After(prev.Token.Span.End) {
			return nil, nil
		}
		return offer(ConstantNullable), nil
	case parser.TokenComma:
		if nodes.Kind(owner(nodes, prev.ID)) != parser.KindParameterList {
			return nil, nil
		}
		return offer(ConstantOptional), nil
	}
	return nil, nil
}
