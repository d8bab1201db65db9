package pq

import "github.com/dhamidi/pqls/pq/parser"

// InvokeInfo describes the call whose argument list holds the cursor.
type InvokeInfo struct {
	Node parser.NodeID
	// Name is the callee as written when it is a plain identifier.
	Name            string
	NumArguments    int
	ArgumentOrdinal int
}

// InvokeAt finds the innermost invocation whose parentheses enclose the
// cursor.
func InvokeAt(site *Site) (*InvokeInfo, bool) {
	nodes := site.Nodes
	var best parser.NodeID
	var bestOpen parser.Position
	for id := parser.NodeID(1); int(id) <= nodes.Len(); id++ {
		if nodes.Kind(id) != parser.KindInvokeExpression {
			continue
		}
		open, ok := nodes.ChildByAttribute(id, parser.AttrPostfixOpen)
		if !ok || site.Position.Before(open.Token.Span.End) {
			continue
		}
		if closing, ok := nodes.ChildByAttribute(id, parser.AttrPostfixClose); ok &&
			site.Position.After(closing.Token.Span.Start) {
			continue
		}
		if best == 0 || open.Token.Span.Start.After(bestOpen) {
			best, bestOpen = id, open.Token.Span.Start
		}
	}
	if best == 0 {
		return nil, false
	}

	info := &InvokeInfo{Node: best}
	if callee, ok := nodes.ChildByAttribute(best, parser.AttrTarget); ok && callee.Kind == parser.KindIdentifierExpression {
		info.Name, _ = identifierName(nodes, callee.ID)
	}
	wrapper, ok := nodes.ChildByAttribute(best, parser.AttrPostfixBody)
	if !ok {
		return info, true
	}
	for _, csv := range nodes.Children(wrapper.ID) {
		info.NumArguments++
		comma, ok := nodes.ChildByAttribute(csv, parser.AttrCsvComma)
		if ok && !site.Position.Before(comma.Token.Span.End) {
			info.ArgumentOrdinal++
		}
	}
	return info, true
}
