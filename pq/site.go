package pq

import "github.com/dhamidi/pqls/pq/parser"

// Site is a cursor position resolved against a parse tree, which may be the
// partial tree of a failed parse.
type Site struct {
	Position parser.Position
	Nodes    *parser.Collection
	Leaves   []parser.NodeID
	ParseErr *parser.ParseError

	// Anchor is the leaf at the cursor, or 0 when there is none.
	Anchor parser.NodeID
	// Context is set when a failed parse left the cursor in whitespace
	// after its last leaf. Slot is the attribute the next child of Context
	// would have taken.
	Context parser.NodeID
	Slot    int
}

// Locate resolves pos against a tree. parseErr is the error that produced
// the tree, or nil for a complete parse.
func Locate(pos parser.Position, nodes *parser.Collection, leaves []parser.NodeID, parseErr *parser.ParseError) *Site {
	if nodes == nil {
		nodes = parser.NewCollection()
	}
	s := &Site{Position: pos, Nodes: nodes, Leaves: leaves, ParseErr: parseErr}
	s.Anchor = s.findAnchor()
	if parseErr != nil && s.afterLastLeaf() {
		if ctx := nodes.DeepestContext(); ctx != 0 {
			s.Context = ctx
			s.Slot = nextSlot(nodes, ctx)
		}
	}
	return s
}

// findAnchor returns the leaf containing the cursor, preferring the leaf
// that ends at the cursor over the one starting there. Without such a leaf
// it falls back to the closest leaf before the cursor.
func (s *Site) findAnchor() parser.NodeID {
	var before, prev parser.Node
	for _, id := range s.Leaves {
		n, ok := s.Nodes.Node(id)
		if !ok {
			continue
		}
		span := n.Token.Span
		if span.Contains(s.Position) {
			if span.Start == s.Position && prev.Token != nil && prev.Token.Span.End == s.Position {
				return prev.ID
			}
			return id
		}
		if !span.End.After(s.Position) {
			before = n
		}
		prev = n
	}
	return before.ID
}

func (s *Site) afterLastLeaf() bool {
	last, ok := s.lastLeaf()
	return !ok || s.Position.After(last.Token.Span.End)
}

func (s *Site) lastLeaf() (parser.Node, bool) {
	if len(s.Leaves) == 0 {
		return parser.Node{}, false
	}
	return s.Nodes.Node(s.Leaves[len(s.Leaves)-1])
}

func nextSlot(nodes *parser.Collection, id parser.NodeID) int {
	last, ok := nodes.LastChild(id)
	if !ok {
		return 0
	}
	return last.Attribute + 1
}

// touches reports whether the cursor lies inside span or at its end.
func (s *Site) touches(span parser.Span) bool {
	return s.Position.After(span.Start) && !s.Position.After(span.End)
}

// unconsumed returns the token the parser stopped at, if any.
func (s *Site) unconsumed() *parser.Token {
	if s.ParseErr == nil {
		return nil
	}
	return s.ParseErr.Found
}

// word is a word-shaped token the cursor is in or at the end of. Leaf is 0
// for the unconsumed token of a failed parse.
type word struct {
	token parser.Token
	leaf  parser.NodeID
}

func (s *Site) word() (word, bool) {
	for _, id := range s.Leaves {
		n, ok := s.Nodes.Node(id)
		if ok && n.Token.IsWord() && s.touches(n.Token.Span) {
			return word{token: *n.Token, leaf: id}, true
		}
	}
	if tok := s.unconsumed(); tok != nil && tok.IsWord() && s.touches(tok.Span) {
		return word{token: *tok}, true
	}
	return word{}, false
}

// prefix is the part of the word left of the cursor.
func (s *Site) prefix(w word) string {
	start := w.token.Span.Start
	if start.Line != s.Position.Line {
		return w.token.Data
	}
	n := s.Position.Column - start.Column
	if n < 0 {
		return ""
	}
	if n > len(w.token.Data) {
		n = len(w.token.Data)
	}
	return w.token.Data[:n]
}

// leafBefore returns the last leaf ending at or before pos.
func (s *Site) leafBefore(pos parser.Position) (parser.Node, bool) {
	var found parser.Node
	ok := false
	for _, id := range s.Leaves {
		n, valid := s.Nodes.Node(id)
		if !valid {
			continue
		}
		if n.Token.Span.End.After(pos) {
			break
		}
		found, ok = n, true
	}
	return found, ok
}

// previous returns the leaf before the word at the cursor, or before the
// cursor itself when it is not on a word.
func (s *Site) previous() (parser.Node, word, bool, bool) {
	w, hasWord := s.word()
	before := s.Position
	if hasWord {
		before = w.token.Span.Start
	}
	prev, ok := s.leafBefore(before)
	return prev, w, hasWord, ok
}

// owner returns the construct a Csv item belongs to, skipping the Csv and
// its ArrayWrapper.
func owner(nodes *parser.Collection, csvChild parser.NodeID) parser.NodeID {
	csv := nodes.Parent(csvChild)
	if nodes.Kind(csv) != parser.KindCsv {
		return 0
	}
	return nodes.Parent(nodes.Parent(csv))
}
