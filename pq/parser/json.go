package parser

import "encoding/json"

type jsonNode struct {
	ID        NodeID      `json:"id"`
	Kind      string      `json:"kind"`
	State     string      `json:"state"`
	Attribute int         `json:"attribute"`
	Span      *jsonSpan   `json:"span,omitempty"`
	Token     string      `json:"token,omitempty"`
	Children  []*jsonNode `json:"children,omitempty"`
}

type jsonSpan struct {
	Start jsonPosition `json:"start"`
	End   jsonPosition `json:"end"`
}

type jsonPosition struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func toJSONSpan(s Span) *jsonSpan {
	return &jsonSpan{
		Start: jsonPosition{Line: s.Start.Line, Column: s.Start.Column},
		End:   jsonPosition{Line: s.End.Line, Column: s.End.Column},
	}
}

// MarshalJSON encodes the tree under the root node.
func (c *Collection) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.TreeJSON(c.Root()))
}

// TreeJSON returns a JSON-ready tree for the subtree under id.
func (c *Collection) TreeJSON(id NodeID) any {
	if !c.valid(id) {
		return nil
	}
	return c.toJSON(id)
}

func (c *Collection) toJSON(id NodeID) *jsonNode {
	n := c.nodes[id-1]
	jn := &jsonNode{
		ID:        n.ID,
		Kind:      n.Kind.String(),
		State:     n.State.String(),
		Attribute: n.Attribute,
	}
	if span, ok := c.Span(id); ok {
		jn.Span = toJSONSpan(span)
	}
	if n.Token != nil {
		jn.Token = n.Token.Data
	}
	for _, kid := range c.children[id-1] {
		jn.Children = append(jn.Children, c.toJSON(kid))
	}
	return jn
}

type jsonParseError struct {
	Kind     string       `json:"kind"`
	Message  string       `json:"message"`
	Position jsonPosition `json:"position"`
	Expected []string     `json:"expected,omitempty"`
	Found    string       `json:"found,omitempty"`
}

func (e *ParseError) MarshalJSON() ([]byte, error) {
	je := jsonParseError{
		Kind:     e.Kind.String(),
		Message:  e.Message,
		Position: jsonPosition{Line: e.Position.Line, Column: e.Position.Column},
	}
	for _, k := range e.Expected {
		je.Expected = append(je.Expected, k.String())
	}
	if e.Found != nil {
		je.Found = e.Found.Data
	}
	return json.Marshal(je)
}
