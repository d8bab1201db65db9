package pq

import (
	"context"

	"github.com/dhamidi/pqls/pq/parser"
)

// Inspection is everything known about one cursor position.
type Inspection struct {
	Position parser.Position
	// Anchor is the leaf the cursor resolved to, 0 for an empty tree.
	Anchor parser.NodeID
	// Prefix is the part of the word left of the cursor, empty between
	// tokens.
	Prefix       string
	Scope        *Scope
	ScopeType    map[string]Type
	Autocomplete Autocomplete
	// Invoke is set when the cursor is inside an argument list.
	Invoke *InvokeInfo
}

// Inspect resolves pos against a parse tree. Pass the ParseError as
// parseErr when nodes and leaves come from a failed parse. The error result
// is reserved for cancellation and scope typing failures; autocomplete
// strategies report their own errors in the Autocomplete bundle.
func Inspect(ctx context.Context, settings Settings, pos parser.Position, nodes *parser.Collection, leaves []parser.NodeID, parseErr *parser.ParseError) (*Inspection, error) {
	if err := cancelled(ctx); err != nil {
		return nil, err
	}
	site := Locate(pos, nodes, leaves, parseErr)
	in := &Inspection{
		Position: pos,
		Anchor:   site.Anchor,
		Scope:    ResolveScope(site),
	}
	if w, ok := site.word(); ok {
		in.Prefix = site.prefix(w)
	}
	if err := cancelled(ctx); err != nil {
		return nil, err
	}

	if settings.ScopeTyper != nil {
		types, err := settings.ScopeTyper.ScopeType(ctx, site.Nodes, in.Scope)
		if err != nil {
			return nil, err
		}
		in.ScopeType = types
	}

	in.Autocomplete = autocomplete(ctx, site)
	if info, ok := InvokeAt(site); ok {
		in.Invoke = info
	}
	return in, nil
}
