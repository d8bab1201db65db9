package pq

import (
	"context"
	"errors"

	"github.com/dhamidi/pqls/pq/parser"
)

// LexParse is the result of running the lexer and parser over a text. A
// failed parse still has a State and Snapshot, and ParseErr holds the
// partial tree.
type LexParse struct {
	State    *parser.State
	Snapshot *parser.Snapshot
	Parse    *parser.ParseOk
	ParseErr *parser.ParseError
}

// Nodes returns the tree of the parse, complete or partial.
func (lp *LexParse) Nodes() (*parser.Collection, []parser.NodeID) {
	if lp.Parse != nil {
		return lp.Parse.Nodes, lp.Parse.Leaves
	}
	if lp.ParseErr != nil {
		return lp.ParseErr.Nodes, lp.ParseErr.Leaves
	}
	return parser.NewCollection(), nil
}

// Err returns the parse error as an error, or nil.
func (lp *LexParse) Err() error {
	if lp.ParseErr == nil {
		return nil
	}
	return lp.ParseErr
}

// TryLexParse lexes text and parses it as a document. Lexer errors and
// cancellation are returned as errors; a parse error is not, it is
// recorded in the result.
func TryLexParse(ctx context.Context, settings Settings, text string) (*LexParse, error) {
	state, err := parser.Lex(ctx, settings.Parser, text)
	if err != nil {
		return nil, err
	}
	return ParseState(ctx, settings, state)
}

// ParseState parses an already lexed document.
func ParseState(ctx context.Context, settings Settings, state *parser.State) (*LexParse, error) {
	snap, err := state.Snapshot()
	if err != nil {
		return nil, err
	}
	lp := &LexParse{State: state, Snapshot: snap}
	ok, err := parser.ReadDocument(ctx, snap, parser.WithSettings(settings.Parser))
	var perr *parser.ParseError
	switch {
	case err == nil:
		lp.Parse = ok
	case errors.As(err, &perr):
		lp.ParseErr = perr
	default:
		return nil, err
	}
	return lp, nil
}

// Inspect runs Inspect over the parse.
func (lp *LexParse) Inspect(ctx context.Context, settings Settings, pos parser.Position) (*Inspection, error) {
	nodes, leaves := lp.Nodes()
	return Inspect(ctx, settings, pos, nodes, leaves, lp.ParseErr)
}

// TryLexParseInspect lexes, parses and inspects text at pos.
func TryLexParseInspect(ctx context.Context, settings Settings, text string, pos parser.Position) (*LexParse, *Inspection, error) {
	lp, err := TryLexParse(ctx, settings, text)
	if err != nil {
		return nil, nil, err
	}
	in, err := lp.Inspect(ctx, settings, pos)
	if err != nil {
		return lp, nil, err
	}
	return lp, in, nil
}
