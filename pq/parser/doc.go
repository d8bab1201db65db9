// Package parser lexes and parses Power Query M formulas for editor tooling.
//
// # Overview
//
// Text flows through three stages:
//
//	┌─────────────┐     ┌─────────────┐     ┌─────────────┐
//	│    State    │────▶│  Snapshot   │────▶│   Parser    │
//	│ (per line)  │     │ (tokens)    │     │ (arena)     │
//	└─────────────┘     └─────────────┘     └─────────────┘
//
// A State holds one lexed Line per source line. Each line records the mode it
// started and ended in (inside a block comment, a text literal or a quoted
// identifier), so an edit only re-tokenizes the edited lines plus the
// following lines whose start mode changed:
//
//	s, _ := parser.Lex(ctx, parser.DefaultSettings(), "let\n  x = 1\nin x")
//	s, _ = s.UpdateLine(ctx, 1, "  x = 2")
//
// States are never modified in place; every edit returns a new State.
//
// # Snapshot
//
// Snapshot merges the per-line fragments of multi-line tokens and separates
// comments from the token stream. It fails if any line has a lex error.
//
// # Parsing
//
// ReadDocument builds a tree inside a Collection. Nodes refer to each other
// by NodeID; a Node returned from the collection is a copy.
//
//	snap, _ := s.Snapshot()
//	ok, err := parser.ReadDocument(ctx, snap)
//
// Parsing stops at the first error. The returned *ParseError still carries
// the collection: productions that were in progress stay in the arena with
// State NodeContext, which is what completion and scope analysis work from.
//
// # Positions
//
// Lines and columns are zero based. Columns count bytes of the UTF-8 line
// text. Spans are half open.
package parser
