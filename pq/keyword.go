package pq

import (
	"context"

	"github.com/dhamidi/pqls/pq/parser"
)

// AutocompleteKeyword lists the keywords that could be typed at the site.
// When the cursor is on a partial word, only keywords it is a prefix of
// are returned.
func AutocompleteKeyword(ctx context.Context, site *Site) ([]string, error) {
	if err := cancelled(ctx); err != nil {
		return nil, err
	}
	prefix := ""
	before := site.Position
	if w, ok := site.word(); ok {
		if n, _ := site.Nodes.Node(w.leaf); n.Kind == parser.KindConstant && n.Token.Kind.IsKeyword() &&
			n.Token.Span.End == site.Position {
			// A finished keyword.
			return nil, nil
		}
		prefix = site.prefix(w)
		before = w.token.Span.Start
	} else if site.blocked() {
		return nil, nil
	}

	prev, ok := site.leafBefore(before)
	if !ok {
		return filterPrefix(withKeywords(expressionKeywords, "section"), prefix), nil
	}
	return filterPrefix(keywordsAfter(site.Nodes, prev), prefix), nil
}

// blocked reports a cursor that no keyword can start at: touching a
// literal, or next to the token a failed parse stopped at.
func (s *Site) blocked() bool {
	if tok := s.unconsumed(); tok != nil {
		if tok.Span.Start == s.Position && tok.IsWord() {
			return true
		}
		if !tok.Span.End.After(s.Position) || s.touches(tok.Span) {
			return true
		}
	}
	for _, id := range s.Leaves {
		n, ok := s.Nodes.Node(id)
		if ok && !n.Token.IsWord() && n.Kind != parser.KindConstant && s.touches(n.Token.Span) {
			return true
		}
	}
	return false
}

// keywordsAfter lists the keywords that may follow leaf prev.
func keywordsAfter(nodes *parser.Collection, prev parser.Node) []string {
	if prev.Kind == parser.KindConstant {
		if kws, ok := keywordsAfterConstant(nodes, prev); ok {
			return kws
		}
	}
	return keywordsAfterExpression(nodes, prev.ID)
}

func keywordsAfterConstant(nodes *parser.Collection, prev parser.Node) ([]string, bool) {
	parent := nodes.Kind(nodes.Parent(prev.ID))
	switch kind := prev.Token.Kind; kind {
	case parser.TokenComma:
		switch nodes.Kind(owner(nodes, prev.ID)) {
		case parser.KindListExpression, parser.KindInvokeExpression:
			return expressionKeywords, true
		}
		return nil, true
	case parser.TokenLeftParenthesis:
		if parent == parser.KindParameterList {
			return nil, true
		}
		return expressionKeywords, true
	case parser.TokenLeftBrace:
		if parent == parser.KindListType {
			return nil, true
		}
		return expressionKeywords, true
	case parser.TokenEqual:
		if parent == parser.KindFieldSpecification {
			return nil, true
		}
		return expressionKeywords, true
	case parser.TokenSemicolon:
		return []string{"shared"}, true
	case parser.TokenLeftBracket, parser.TokenAtSign, parser.TokenKeywordAs, parser.TokenKeywordIs,
		parser.TokenKeywordType, parser.TokenKeywordLet, parser.TokenKeywordSection, parser.TokenKeywordShared:
		return nil, true
	case parser.TokenDotDot, parser.TokenFatArrow, parser.TokenKeywordIn, parser.TokenKeywordThen,
		parser.TokenKeywordElse, parser.TokenKeywordIf, parser.TokenKeywordEach, parser.TokenKeywordError,
		parser.TokenKeywordTry, parser.TokenKeywordOtherwise, parser.TokenKeywordNot:
		return expressionKeywords, true
	case parser.TokenIdentifier:
		// nullable, optional
		return nil, true
	default:
		if parser.IsBinaryOperator(kind) || parent == parser.KindUnaryExpression {
			return expressionKeywords, true
		}
	}
	return nil, false
}

// keywordsAfterExpression climbs from the last leaf of a finished
// expression to the construct deciding what may follow it.
func keywordsAfterExpression(nodes *parser.Collection, id parser.NodeID) []string {
	for {
		parent := nodes.Parent(id)
		if parent == 0 {
			if nodes.Kind(id) == parser.KindRecordExpression {
				return []string{"section"}
			}
			return operatorKeywords
		}
		n, _ := nodes.Node(id)
		p, _ := nodes.Node(parent)
		if kws, ok := slotKeywords(p.Kind, n.Attribute); ok {
			return kws
		}
		last, _ := nodes.LastChild(parent)
		if p.State != parser.NodeAst || last.ID != id {
			return nil
		}
		id = parent
	}
}

// slotKeywords decides by the slot a finished expression fills.
func slotKeywords(parent parser.NodeKind, attr int) ([]string, bool) {
	switch {
	case parent == parser.KindParameter && attr == parser.AttrParameterName:
		return []string{"as"}, true
	case parent == parser.KindIfExpression && attr == parser.AttrIfCondition:
		return []string{"then"}, true
	case parent == parser.KindIfExpression && attr == parser.AttrIfTrue:
		return []string{"else"}, true
	case parent == parser.KindErrorHandlingExpression && attr == parser.AttrTryProtected:
		return withKeywords(operatorKeywords, "otherwise"), true
	case parent == parser.KindLetExpression && attr == parser.AttrLetVariables:
		return withKeywords(operatorKeywords, "in"), true
	case parent == parser.KindSectionMember && attr == parser.AttrMemberPair:
		return operatorKeywords, true
	case parent == parser.KindSectionMember && attr == parser.AttrMemberAttributes:
		return []string{"shared"}, true
	case parent == parser.KindIdentifierPairedExpression && attr == parser.AttrKey,
		parent == parser.KindGeneralizedIdentifierPairedExpression:
		return nil, true
	}
	return nil, false
}
