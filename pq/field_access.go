package pq

import (
	"context"
	"strings"

	"github.com/dhamidi/pqls/pq/parser"
)

// AutocompleteFieldAccess lists the fields of the record a selector
// applies to, when the cursor is in the selector's key slot. Fields
// already selected by the surrounding projection are left out.
func AutocompleteFieldAccess(ctx context.Context, site *Site) ([]FieldAccessItem, error) {
	if err := cancelled(ctx); err != nil {
		return nil, err
	}
	selector, ok := site.selectorAtCursor()
	if !ok {
		return nil, nil
	}
	nodes := site.Nodes

	prefix := ""
	replace := parser.Span{Start: site.Position, End: site.Position}
	if key, ok := nodes.ChildByAttribute(selector, parser.AttrPostfixBody); ok {
		if !site.touches(key.Token.Span) {
			return nil, nil
		}
		prefix = site.prefix(word{token: *key.Token, leaf: key.ID})
		replace = key.Token.Span
	} else if tok := site.unconsumed(); tok != nil && tok.Span.Start.Before(site.Position) {
		return nil, nil
	}

	target, exclude := selectorTarget(nodes, selector)
	if target == 0 {
		return nil, nil
	}
	r := resolver{nodes: nodes, visited: map[parser.NodeID]bool{}}
	var items []FieldAccessItem
	for _, key := range r.fields(target) {
		if exclude[key] || !strings.HasPrefix(key, prefix) {
			continue
		}
		items = append(items, FieldAccessItem{Key: key, Span: replace})
	}
	return items, nil
}

// selectorAtCursor returns the innermost field selector whose brackets
// enclose the cursor.
func (s *Site) selectorAtCursor() (parser.NodeID, bool) {
	var best parser.NodeID
	var bestOpen parser.Position
	for id := parser.NodeID(1); int(id) <= s.Nodes.Len(); id++ {
		if s.Nodes.Kind(id) != parser.KindFieldSelector {
			continue
		}
		open, ok := s.Nodes.ChildByAttribute(id, parser.AttrPostfixOpen)
		if !ok || s.Position.Before(open.Token.Span.End) {
			continue
		}
		if closing, ok := s.Nodes.ChildByAttribute(id, parser.AttrPostfixClose); ok &&
			s.Position.After(closing.Token.Span.Start) {
			continue
		}
		if best == 0 || open.Token.Span.Start.After(bestOpen) {
			best, bestOpen = id, open.Token.Span.Start
		}
	}
	return best, best != 0
}

// selectorTarget returns the expression a selector applies to and the
// keys already selected next to it.
func selectorTarget(nodes *parser.Collection, selector parser.NodeID) (parser.NodeID, map[string]bool) {
	exclude := map[string]bool{}
	projection := owner(nodes, selector)
	if nodes.Kind(projection) != parser.KindFieldProjection {
		if key, ok := nodes.ChildByAttribute(selector, parser.AttrPostfixBody); ok {
			exclude[key.Token.Data] = true
		}
		target, _ := nodes.ChildByAttribute(selector, parser.AttrTarget)
		return target.ID, exclude
	}
	if wrapper, ok := nodes.ChildByAttribute(projection, parser.AttrPostfixBody); ok {
		for _, csv := range nodes.Children(wrapper.ID) {
			item, ok := nodes.ChildByAttribute(csv, parser.AttrCsvNode)
			if !ok {
				continue
			}
			if key, ok := nodes.ChildByAttribute(item.ID, parser.AttrPostfixBody); ok {
				exclude[key.Token.Data] = true
			}
		}
	}
	target, _ := nodes.ChildByAttribute(projection, parser.AttrTarget)
	return target.ID, exclude
}

// resolver follows names, calls and branches to the record literals an
// expression may evaluate to.
type resolver struct {
	nodes   *parser.Collection
	visited map[parser.NodeID]bool
}

func (r *resolver) fields(id parser.NodeID) []string {
	var out []string
	seen := map[string]bool{}
	for _, record := range r.records(id) {
		for _, key := range recordKeys(r.nodes, record) {
			if !seen[key] {
				seen[key] = true
				out = append(out, key)
			}
		}
	}
	return out
}

func recordKeys(nodes *parser.Collection, record parser.NodeID) []string {
	wrapper, ok := nodes.ChildByAttribute(record, parser.AttrContent)
	if !ok {
		return nil
	}
	var keys []string
	for _, csv := range nodes.Children(wrapper.ID) {
		pair, ok := nodes.ChildByAttribute(csv, parser.AttrCsvNode)
		if !ok {
			continue
		}
		if key, ok := nodes.ChildByAttribute(pair.ID, parser.AttrKey); ok {
			keys = append(keys, key.Token.Data)
		}
	}
	return keys
}

func (r *resolver) enter(id parser.NodeID) bool {
	if id == 0 || r.visited[id] {
		return false
	}
	r.visited[id] = true
	return true
}

func (r *resolver) child(id parser.NodeID, attr int) parser.NodeID {
	n, _ := r.nodes.ChildByAttribute(id, attr)
	return n.ID
}

func (r *resolver) records(id parser.NodeID) []parser.NodeID {
	if !r.enter(id) {
		return nil
	}
	switch r.nodes.Kind(id) {
	case parser.KindRecordExpression:
		return []parser.NodeID{id}
	case parser.KindIdentifierExpression:
		return r.records(r.binding(id))
	case parser.KindParenthesizedExpression:
		return r.records(r.child(id, parser.AttrContent))
	case parser.KindMetadataExpression:
		return r.records(r.child(id, parser.AttrLeft))
	case parser.KindLetExpression:
		return r.records(r.child(id, parser.AttrLetBody))
	case parser.KindIfExpression:
		return append(r.records(r.child(id, parser.AttrIfTrue)), r.records(r.child(id, parser.AttrIfFalse))...)
	case parser.KindInvokeExpression:
		var out []parser.NodeID
		for _, body := range r.bodies(r.child(id, parser.AttrTarget)) {
			out = append(out, r.records(body)...)
		}
		return out
	case parser.KindFieldSelector:
		key, ok := r.nodes.ChildByAttribute(id, parser.AttrPostfixBody)
		if !ok {
			return nil
		}
		var out []parser.NodeID
		for _, record := range r.records(r.child(id, parser.AttrTarget)) {
			out = append(out, r.records(recordValue(r.nodes, record, key.Token.Data))...)
		}
		return out
	}
	return nil
}

// bodies returns the bodies of the functions an expression may evaluate
// to.
func (r *resolver) bodies(id parser.NodeID) []parser.NodeID {
	if !r.enter(id) {
		return nil
	}
	switch r.nodes.Kind(id) {
	case parser.KindFunctionExpression:
		if body := r.child(id, parser.AttrFunctionBody); body != 0 {
			return []parser.NodeID{body}
		}
	case parser.KindEachExpression:
		if body := r.child(id, parser.AttrOperand); body != 0 {
			return []parser.NodeID{body}
		}
	case parser.KindIdentifierExpression:
		return r.bodies(r.binding(id))
	case parser.KindParenthesizedExpression:
		return r.bodies(r.child(id, parser.AttrContent))
	case parser.KindLetExpression:
		return r.bodies(r.child(id, parser.AttrLetBody))
	case parser.KindIfExpression:
		return append(r.bodies(r.child(id, parser.AttrIfTrue)), r.bodies(r.child(id, parser.AttrIfFalse))...)
	case parser.KindInvokeExpression:
		var out []parser.NodeID
		for _, body := range r.bodies(r.child(id, parser.AttrTarget)) {
			out = append(out, r.bodies(body)...)
		}
		return out
	}
	return nil
}

// binding returns the value bound to an identifier expression.
func (r *resolver) binding(expr parser.NodeID) parser.NodeID {
	name, ok := identifierName(r.nodes, expr)
	if !ok {
		return 0
	}
	item, ok := scopeOf(r.nodes, expr).Lookup(name)
	if !ok {
		return 0
	}
	return item.Value
}

func recordValue(nodes *parser.Collection, record parser.NodeID, key string) parser.NodeID {
	wrapper, ok := nodes.ChildByAttribute(record, parser.AttrContent)
	if !ok {
		return 0
	}
	for _, csv := range nodes.Children(wrapper.ID) {
		pair, ok := nodes.ChildByAttribute(csv, parser.AttrCsvNode)
		if !ok {
			continue
		}
		k, ok := nodes.ChildByAttribute(pair.ID, parser.AttrKey)
		if ok && normalizeIdentifier(k.Token.Data) == normalizeIdentifier(key) {
			v, _ := nodes.ChildByAttribute(pair.ID, parser.AttrValue)
			return v.ID
		}
	}
	return 0
}
