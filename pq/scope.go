package pq

import (
	"strings"

	"github.com/dhamidi/pqls/pq/parser"
)

type ScopeItemKind int

const (
	ScopeEach ScopeItemKind = iota
	ScopeParameter
	ScopeKeyValuePair
	ScopeSectionMember
	// ScopeUndefined marks the identifier under the cursor when nothing
	// binds it.
	ScopeUndefined
)

var scopeItemKindNames = map[ScopeItemKind]string{
	ScopeEach:          "Each",
	ScopeParameter:     "Parameter",
	ScopeKeyValuePair:  "KeyValuePair",
	ScopeSectionMember: "SectionMember",
	ScopeUndefined:     "Undefined",
}

func (k ScopeItemKind) String() string {
	if name, ok := scopeItemKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// ScopeItem is one name visible at a position.
type ScopeItem struct {
	Kind ScopeItemKind
	Name string
	// Node is the binding site: the each expression, the parameter, the
	// pair, or for ScopeUndefined the identifier expression.
	Node parser.NodeID
	// Value is the bound expression of a pair, or 0.
	Value parser.NodeID
}

// Scope is an ordered set of names, innermost binding first.
type Scope struct {
	items []ScopeItem
	index map[string]int
}

func newScope() *Scope {
	return &Scope{index: map[string]int{}}
}

// add keeps the first binding of a name; later ones are shadowed.
func (s *Scope) add(item ScopeItem) {
	if _, ok := s.index[item.Name]; ok {
		return
	}
	s.index[item.Name] = len(s.items)
	s.items = append(s.items, item)
}

func (s *Scope) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

func (s *Scope) Items() []ScopeItem {
	if s == nil {
		return nil
	}
	return append([]ScopeItem(nil), s.items...)
}

func (s *Scope) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, len(s.items))
	for i, item := range s.items {
		keys[i] = item.Name
	}
	return keys
}

// Get returns the item stored under exactly name.
func (s *Scope) Get(name string) (ScopeItem, bool) {
	if s == nil {
		return ScopeItem{}, false
	}
	i, ok := s.index[name]
	if !ok {
		return ScopeItem{}, false
	}
	return s.items[i], true
}

// Lookup finds the binding an identifier refers to. `@x`, `x` and `#"x"`
// all refer to the same binding.
func (s *Scope) Lookup(name string) (ScopeItem, bool) {
	if s == nil {
		return ScopeItem{}, false
	}
	want := normalizeIdentifier(name)
	for _, item := range s.items {
		if item.Kind != ScopeUndefined && normalizeIdentifier(item.Name) == want {
			return item, true
		}
	}
	return ScopeItem{}, false
}

func normalizeIdentifier(name string) string {
	name = strings.TrimPrefix(name, "@")
	if len(name) >= 3 && strings.HasPrefix(name, `#"`) && strings.HasSuffix(name, `"`) {
		name = strings.ReplaceAll(name[2:len(name)-1], `""`, `"`)
	}
	return name
}

// step is one ancestor on the way from the cursor to the root, with the
// slot through which the path enters it.
type step struct {
	node  parser.Node
	attr  int
	child parser.NodeID // 0 when the slot is still empty
}

func walk(nodes *parser.Collection, id parser.NodeID) []step {
	var steps []step
	for {
		parent := nodes.Parent(id)
		if parent == 0 {
			return steps
		}
		n, _ := nodes.Node(id)
		p, _ := nodes.Node(parent)
		steps = append(steps, step{node: p, attr: n.Attribute, child: id})
		id = parent
	}
}

func (s *Site) steps() []step {
	if s.Context != 0 {
		n, _ := s.Nodes.Node(s.Context)
		return append([]step{{node: n, attr: s.Slot}}, walk(s.Nodes, s.Context)...)
	}
	return walk(s.Nodes, s.Anchor)
}

// ResolveScope lists the names visible at the site.
func ResolveScope(site *Site) *Scope {
	inner := bindings(site.Nodes, site.steps(), site.Position)
	id, name, ok := site.identifierAtCursor()
	if !ok {
		return inner
	}
	if _, bound := inner.Lookup(name); bound {
		return inner
	}
	scope := newScope()
	scope.add(ScopeItem{Kind: ScopeUndefined, Name: name, Node: id})
	for _, item := range inner.items {
		scope.add(item)
	}
	return scope
}

// scopeOf lists the names visible at node id.
func scopeOf(nodes *parser.Collection, id parser.NodeID) *Scope {
	var pos parser.Position
	if span, ok := nodes.Span(id); ok {
		pos = span.End
	}
	return bindings(nodes, walk(nodes, id), pos)
}

func bindings(nodes *parser.Collection, steps []step, pos parser.Position) *Scope {
	scope := newScope()
	for i, st := range steps {
		switch st.node.Kind {
		case parser.KindEachExpression:
			if st.attr == parser.AttrOperand {
				scope.add(ScopeItem{Kind: ScopeEach, Name: "_", Node: st.node.ID})
			}
		case parser.KindFunctionExpression:
			if st.attr == parser.AttrFunctionBody || st.attr == parser.AttrFunctionArrow && afterArrow(nodes, st.child, pos) {
				addParameters(nodes, scope, st.node.ID)
			}
		case parser.KindLetExpression:
			switch st.attr {
			case parser.AttrLetBody:
				if vars, ok := nodes.ChildByAttribute(st.node.ID, parser.AttrLetVariables); ok {
					addPairs(nodes, scope, vars.ID, 0, ScopeKeyValuePair)
				}
			case parser.AttrLetVariables:
				addPairs(nodes, scope, st.child, currentPair(nodes, steps, i), ScopeKeyValuePair)
			}
		case parser.KindRecordExpression:
			if st.attr == parser.AttrContent {
				if pair := currentPair(nodes, steps, i); pair != 0 {
					addPairs(nodes, scope, st.child, pair, ScopeKeyValuePair)
				}
			}
		case parser.KindSection:
			if st.attr == parser.AttrSectionMembers && i >= 2 && steps[i-2].attr == parser.AttrMemberPair {
				addMembers(nodes, scope, st.child, steps[i-2].child)
			}
		}
	}
	return scope
}

func afterArrow(nodes *parser.Collection, arrow parser.NodeID, pos parser.Position) bool {
	n, ok := nodes.Node(arrow)
	return ok && n.IsLeaf() && !pos.Before(n.Token.Span.End)
}

// currentPair returns the pair of the Csv the path passes through below
// steps[i], or 0.
func currentPair(nodes *parser.Collection, steps []step, i int) parser.NodeID {
	if i == 0 || steps[i-1].child == 0 || nodes.Kind(steps[i-1].child) != parser.KindCsv {
		return 0
	}
	pair, _ := nodes.ChildByAttribute(steps[i-1].child, parser.AttrCsvNode)
	return pair.ID
}

func addParameters(nodes *parser.Collection, scope *Scope, fn parser.NodeID) {
	list, ok := nodes.ChildByAttribute(fn, parser.AttrFunctionParameters)
	if !ok {
		return
	}
	wrapper, ok := nodes.ChildByAttribute(list.ID, parser.AttrContent)
	if !ok {
		return
	}
	for _, csv := range nodes.Children(wrapper.ID) {
		param, ok := nodes.ChildByAttribute(csv, parser.AttrCsvNode)
		if !ok {
			continue
		}
		if name, ok := nodes.ChildByAttribute(param.ID, parser.AttrParameterName); ok {
			scope.add(ScopeItem{Kind: ScopeParameter, Name: name.Token.Data, Node: param.ID})
		}
	}
}

func addPairs(nodes *parser.Collection, scope *Scope, wrapper, skip parser.NodeID, kind ScopeItemKind) {
	for _, csv := range nodes.Children(wrapper) {
		pair, ok := nodes.ChildByAttribute(csv, parser.AttrCsvNode)
		if !ok || pair.ID == skip {
			continue
		}
		addPair(nodes, scope, pair.ID, kind)
	}
}

func addMembers(nodes *parser.Collection, scope *Scope, wrapper, skip parser.NodeID) {
	for _, member := range nodes.Children(wrapper) {
		pair, ok := nodes.ChildByAttribute(member, parser.AttrMemberPair)
		if !ok || pair.ID == skip {
			continue
		}
		addPair(nodes, scope, pair.ID, ScopeSectionMember)
	}
}

func addPair(nodes *parser.Collection, scope *Scope, pair parser.NodeID, kind ScopeItemKind) {
	key, ok := nodes.ChildByAttribute(pair, parser.AttrKey)
	if !ok || !key.IsLeaf() {
		return
	}
	value, _ := nodes.ChildByAttribute(pair, parser.AttrValue)
	scope.add(ScopeItem{Kind: kind, Name: key.Token.Data, Node: pair, Value: value.ID})
}

// identifierAtCursor returns the identifier expression the cursor is in or
// at the end of, with its name as written.
func (s *Site) identifierAtCursor() (parser.NodeID, string, bool) {
	if s.Context != 0 || s.Anchor == 0 {
		return 0, "", false
	}
	expr := s.Nodes.Parent(s.Anchor)
	if s.Nodes.Kind(expr) != parser.KindIdentifierExpression {
		return 0, "", false
	}
	span, ok := s.Nodes.Span(expr)
	if !ok || !s.touches(span) {
		return 0, "", false
	}
	name, ok := identifierName(s.Nodes, expr)
	return expr, name, ok
}

func identifierName(nodes *parser.Collection, expr parser.NodeID) (string, bool) {
	ident, ok := nodes.ChildByAttribute(expr, parser.AttrIdentifier)
	if !ok {
		return "", false
	}
	if _, inclusive := nodes.ChildByAttribute(expr, parser.AttrInclusive); inclusive {
		return "@" + ident.Token.Data, true
	}
	return ident.Token.Data, true
}
