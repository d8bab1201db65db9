// Package pq answers position queries over Power Query M documents: what is
// in scope at the cursor, what those names probably are, and what could be
// typed next.
//
// Inspection works on the arena produced by package parser and never needs
// the parse to have succeeded. When ReadDocument fails, the *ParseError
// carries the partial arena, and Inspect treats its unfinished productions
// like any other node:
//
//	ok, err := parser.ReadDocument(ctx, snap)
//	var perr *parser.ParseError
//	if errors.As(err, &perr) {
//		in, _ := pq.Inspect(ctx, pq.DefaultSettings(), pos, perr.Nodes, perr.Leaves, perr)
//	}
//
// TryLexParseInspect does all three steps for a string.
//
// # Anchors
//
// Every query starts from the leaf at the cursor, the anchor. A cursor
// sitting exactly between two tokens belongs to the token on its left, so
// `foo|(` anchors on foo. When a failed parse leaves the cursor in
// whitespace after its last token, the query starts from the innermost
// unfinished production instead, as if the next token would go there.
package pq
