package parser

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// NodeID identifies a node in a Collection. IDs start at 1; the zero value
// means "no node".
type NodeID int

type NodeState int

const (
	// NodeContext is a node whose production had not finished when parsing
	// stopped.
	NodeContext NodeState = iota
	// NodeAst is a fully parsed node.
	NodeAst
)

func (s NodeState) String() string {
	if s == NodeAst {
		return "Ast"
	}
	return "Context"
}

// Node is a copy of an arena slot. Leaves carry their token.
type Node struct {
	ID        NodeID
	Kind      NodeKind
	State     NodeState
	Attribute int
	Token     *Token
}

func (n Node) IsLeaf() bool {
	return n.Token != nil
}

// Collection is the arena behind a parse tree. Nodes refer to each other by
// ID only; all structure lives in the parent and children tables.
type Collection struct {
	nodes    []Node
	parents  []NodeID
	children [][]NodeID
	leaves   []NodeID
}

func NewCollection() *Collection {
	return &Collection{}
}

func (c *Collection) valid(id NodeID) bool {
	return id > 0 && int(id) <= len(c.nodes)
}

func (c *Collection) Len() int {
	return len(c.nodes)
}

func (c *Collection) Node(id NodeID) (Node, bool) {
	if !c.valid(id) {
		return Node{}, false
	}
	return c.nodes[id-1], true
}

// Kind returns the kind of id, or KindUnknown if id is not in the arena.
func (c *Collection) Kind(id NodeID) NodeKind {
	if !c.valid(id) {
		return KindUnknown
	}
	return c.nodes[id-1].Kind
}

func (c *Collection) Parent(id NodeID) NodeID {
	if !c.valid(id) {
		return 0
	}
	return c.parents[id-1]
}

// Children returns the children of id ordered by attribute.
func (c *Collection) Children(id NodeID) []NodeID {
	if !c.valid(id) {
		return nil
	}
	return slices.Clone(c.children[id-1])
}

// ChildByAttribute returns the child of id occupying the given slot.
func (c *Collection) ChildByAttribute(id NodeID, attr int) (Node, bool) {
	if !c.valid(id) {
		return Node{}, false
	}
	for _, child := range c.children[id-1] {
		if n := c.nodes[child-1]; n.Attribute == attr {
			return n, true
		}
	}
	return Node{}, false
}

// LastChild returns the child of id with the highest attribute.
func (c *Collection) LastChild(id NodeID) (Node, bool) {
	if !c.valid(id) || len(c.children[id-1]) == 0 {
		return Node{}, false
	}
	kids := c.children[id-1]
	return c.nodes[kids[len(kids)-1]-1], true
}

func (c *Collection) IsLeaf(id NodeID) bool {
	return c.valid(id) && c.nodes[id-1].Token != nil
}

// Leaves returns every leaf in document order.
func (c *Collection) Leaves() []NodeID {
	return slices.Clone(c.leaves)
}

// Root returns the first parentless node, or 0 for an empty arena.
func (c *Collection) Root() NodeID {
	for i, parent := range c.parents {
		if parent == 0 {
			return NodeID(i + 1)
		}
	}
	return 0
}

// Ancestry returns id followed by its ancestors up to the root.
func (c *Collection) Ancestry(id NodeID) []Node {
	var out []Node
	for c.valid(id) {
		out = append(out, c.nodes[id-1])
		id = c.parents[id-1]
	}
	return out
}

// DeepestContext returns the most recently started node still in the
// Context state, or 0 if every node finished.
func (c *Collection) DeepestContext() NodeID {
	for i := len(c.nodes) - 1; i >= 0; i-- {
		if c.nodes[i].State == NodeContext {
			return NodeID(i + 1)
		}
	}
	return 0
}

// FirstLeaf returns the leftmost leaf under id.
func (c *Collection) FirstLeaf(id NodeID) (Node, bool) {
	if !c.valid(id) {
		return Node{}, false
	}
	n := c.nodes[id-1]
	if n.Token != nil {
		return n, true
	}
	for _, kid := range c.children[id-1] {
		if leaf, ok := c.FirstLeaf(kid); ok {
			return leaf, true
		}
	}
	return Node{}, false
}

// LastLeaf returns the rightmost leaf under id.
func (c *Collection) LastLeaf(id NodeID) (Node, bool) {
	if !c.valid(id) {
		return Node{}, false
	}
	n := c.nodes[id-1]
	if n.Token != nil {
		return n, true
	}
	kids := c.children[id-1]
	for i := len(kids) - 1; i >= 0; i-- {
		if leaf, ok := c.LastLeaf(kids[i]); ok {
			return leaf, true
		}
	}
	return Node{}, false
}

// Span returns the source range from the first to the last leaf under id.
// Nodes without leaves have no span.
func (c *Collection) Span(id NodeID) (Span, bool) {
	first, ok := c.FirstLeaf(id)
	if !ok {
		return Span{}, false
	}
	last, _ := c.LastLeaf(id)
	return Span{Start: first.Token.Span.Start, End: last.Token.Span.End}, true
}

// Text joins the token data of every leaf under id with single spaces.
func (c *Collection) Text(id NodeID) string {
	var parts []string
	c.walkLeaves(id, func(n Node) {
		parts = append(parts, n.Token.Data)
	})
	return strings.Join(parts, " ")
}

func (c *Collection) walkLeaves(id NodeID, fn func(Node)) {
	if !c.valid(id) {
		return
	}
	if n := c.nodes[id-1]; n.Token != nil {
		fn(n)
		return
	}
	for _, kid := range c.children[id-1] {
		c.walkLeaves(kid, fn)
	}
}

// Validate checks the structural invariants of the arena: parent and child
// tables agree, attributes are unique and increasing within a parent, leaves
// have no children, and the leaf list is in document order.
func (c *Collection) Validate() error {
	var errs []error
	for i := range c.nodes {
		id := NodeID(i + 1)
		n := c.nodes[i]
		if n.ID != id {
			errs = append(errs, fmt.Errorf("node %d stored with id %d", id, n.ID))
		}
		if parent := c.parents[i]; parent != 0 {
			if !c.valid(parent) {
				errs = append(errs, fmt.Errorf("node %d has unknown parent %d", id, parent))
			} else if !slices.Contains(c.children[parent-1], id) {
				errs = append(errs, fmt.Errorf("node %d missing from children of %d", id, parent))
			}
		}
		if n.Token != nil && len(c.children[i]) > 0 {
			errs = append(errs, fmt.Errorf("leaf %d has children", id))
		}
		last := -1
		for _, kid := range c.children[i] {
			if !c.valid(kid) || c.parents[kid-1] != id {
				errs = append(errs, fmt.Errorf("node %d lists %d as child", id, kid))
				continue
			}
			if attr := c.nodes[kid-1].Attribute; attr <= last {
				errs = append(errs, fmt.Errorf("node %d: attribute %d out of order", id, attr))
			} else {
				last = attr
			}
		}
	}
	for i := 1; i < len(c.leaves); i++ {
		prev, cur := c.nodes[c.leaves[i-1]-1], c.nodes[c.leaves[i]-1]
		if cur.Token.Span.Start.Before(prev.Token.Span.End) {
			errs = append(errs, fmt.Errorf("leaf %d starts before leaf %d ends", cur.ID, prev.ID))
		}
	}
	return errors.Join(errs...)
}

// The builder methods below are used by the parser only. Violations panic
// with an *InvariantError, which ReadDocument recovers.

func (c *Collection) add(kind NodeKind, parent NodeID, attr int, tok *Token) NodeID {
	if parent != 0 {
		if !c.valid(parent) {
			panic(invariantf("parent %d does not exist", parent))
		}
		p := c.nodes[parent-1]
		if p.State != NodeContext {
			panic(invariantf("cannot add %s to finished %s %d", kind, p.Kind, parent))
		}
		if last, ok := c.LastChild(parent); ok && last.Attribute >= attr {
			panic(invariantf("attribute %d of %s %d already used", attr, p.Kind, parent))
		}
	}
	id := NodeID(len(c.nodes) + 1)
	state := NodeContext
	if tok != nil {
		state = NodeAst
	}
	c.nodes = append(c.nodes, Node{ID: id, Kind: kind, State: state, Attribute: attr, Token: tok})
	c.parents = append(c.parents, parent)
	c.children = append(c.children, nil)
	if parent != 0 {
		c.children[parent-1] = append(c.children[parent-1], id)
	}
	return id
}

func (c *Collection) startContext(kind NodeKind, parent NodeID, attr int) NodeID {
	return c.add(kind, parent, attr, nil)
}

func (c *Collection) addLeaf(kind NodeKind, parent NodeID, attr int, tok Token) NodeID {
	id := c.add(kind, parent, attr, &tok)
	c.leaves = append(c.leaves, id)
	return id
}

func (c *Collection) finalize(id NodeID) {
	if !c.valid(id) {
		panic(invariantf("finalize of unknown node %d", id))
	}
	c.nodes[id-1].State = NodeAst
}

// wrap places a new context node where operand was and makes operand its
// first child. It returns the new node, which is left open.
func (c *Collection) wrap(operand NodeID, kind NodeKind) NodeID {
	if !c.valid(operand) {
		panic(invariantf("wrap of unknown node %d", operand))
	}
	parent := c.parents[operand-1]
	attr := c.nodes[operand-1].Attribute

	id := NodeID(len(c.nodes) + 1)
	c.nodes = append(c.nodes, Node{ID: id, Kind: kind, State: NodeContext, Attribute: attr})
	c.parents = append(c.parents, parent)
	c.children = append(c.children, []NodeID{operand})

	if parent != 0 {
		kids := c.children[parent-1]
		i := slices.Index(kids, operand)
		if i < 0 {
			panic(invariantf("node %d missing from children of %d", operand, parent))
		}
		kids[i] = id
	}
	c.parents[operand-1] = id
	c.nodes[operand-1].Attribute = AttrLeft
	return id
}

// mergeLeaf replaces the token of an existing leaf. Generalized identifiers
// grow one token at a time.
func (c *Collection) mergeLeaf(id NodeID, tok Token) {
	if !c.IsLeaf(id) {
		panic(invariantf("merge into non-leaf %d", id))
	}
	c.nodes[id-1].Token = &tok
}
