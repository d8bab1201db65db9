package parser

import (
	"context"
	"errors"
	"testing"
)

func snapshotOf(t *testing.T, text string) *Snapshot {
	t.Helper()
	snap, err := mustLex(t, text).Snapshot()
	if err != nil {
		t.Fatalf("Snapshot(%q): %v", text, err)
	}
	return snap
}

func parse(t *testing.T, text string, opts ...Option) (*ParseOk, error) {
	t.Helper()
	return ReadDocument(context.Background(), snapshotOf(t, text), opts...)
}

func mustParse(t *testing.T, text string) *ParseOk {
	t.Helper()
	ok, err := parse(t, text)
	if err != nil {
		t.Fatalf("ReadDocument(%q): %v", text, err)
	}
	if err := ok.Nodes.Validate(); err != nil {
		t.Fatalf("Validate(%q): %v", text, err)
	}
	return ok
}

func TestReadDocumentRootKind(t *testing.T) {
	tests := []struct {
		input string
		kind  NodeKind
	}{
		{"1", KindLiteralExpression},
		{"x", KindIdentifierExpression},
		{"@x", KindIdentifierExpression},
		{"#infinity", KindLiteralExpression},
		{"-1", KindUnaryExpression},
		{"not x", KindUnaryExpression},
		{"1 + 2", KindArithmeticExpression},
		{"a & b", KindArithmeticExpression},
		{"a = b", KindEqualityExpression},
		{"a <= b", KindRelationalExpression},
		{"a and b", KindLogicalExpression},
		{"a ?? b", KindNullCoalescingExpression},
		{"x as number", KindAsExpression},
		{"x is nullable text", KindIsExpression},
		{"x meta [a = 1]", KindMetadataExpression},
		{"(x) => x", KindFunctionExpression},
		{"() => 1", KindFunctionExpression},
		{"(x as number, optional y) as text => x", KindFunctionExpression},
		{"(x)", KindParenthesizedExpression},
		{"each _", KindEachExpression},
		{"let a = 1 in a", KindLetExpression},
		{"if a then b else c", KindIfExpression},
		{"try a otherwise b", KindErrorHandlingExpression},
		{"try a", KindErrorHandlingExpression},
		{"error \"bad\"", KindErrorRaisingExpression},
		{"[a = 1]", KindRecordExpression},
		{"[]", KindRecordExpression},
		{"{1, 2..3}", KindListExpression},
		{"f(1)", KindInvokeExpression},
		{"#date(2020, 1, 1)", KindInvokeExpression},
		{"x{0}?", KindItemAccessExpression},
		{"x[a]", KindFieldSelector},
		{"x[a]?", KindFieldSelector},
		{"x[[a],[b]]", KindFieldProjection},
		{"[a]", KindFieldSelector},
		{"[[a]]", KindFieldProjection},
		{"type number", KindTypePrimaryType},
		{"type [a = number, ...]", KindTypePrimaryType},
		{"type table [a = text]", KindTypePrimaryType},
		{"type function (x as number) as text", KindTypePrimaryType},
		{"type {number}", KindTypePrimaryType},
		{"type nullable text", KindTypePrimaryType},
		{"...", KindNotImplementedExpression},
		{"section; a = 1;", KindSection},
		{"section Foo; shared a = 1; b = a;", KindSection},
		{"[version = \"1\"] section s; shared a = 1;", KindSection},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ok := mustParse(t, tt.input)
			if got := ok.Nodes.Kind(ok.Root); got != tt.kind {
				t.Errorf("root kind = %v, want %v", got, tt.kind)
			}
			if n, _ := ok.Nodes.Node(ok.Root); n.State != NodeAst {
				t.Errorf("root state = %v, want %v", n.State, NodeAst)
			}
			if ok.Nodes.Parent(ok.Root) != 0 {
				t.Error("root has a parent")
			}
		})
	}
}

func TestReadDocumentPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		operator string
		side     int
		sideKind NodeKind
	}{
		{"1 + 2 * 3", "+", AttrRight, KindArithmeticExpression},
		{"1 * 2 + 3", "+", AttrLeft, KindArithmeticExpression},
		{"1 - 2 - 3", "-", AttrLeft, KindArithmeticExpression},
		{"a or b and c", "or", AttrRight, KindLogicalExpression},
		{"a ?? b or c", "??", AttrRight, KindLogicalExpression},
		{"a = b < c", "=", AttrRight, KindRelationalExpression},
		{"x as number = y", "=", AttrLeft, KindAsExpression},
		{"-a + b", "+", AttrLeft, KindUnaryExpression},
		{"a + b meta c", "+", AttrRight, KindMetadataExpression},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ok := mustParse(t, tt.input)
			op, found := ok.Nodes.ChildByAttribute(ok.Root, AttrOperator)
			if !found || op.Token.Data != tt.operator {
				t.Fatalf("root operator = %v, want %q", op.Token, tt.operator)
			}
			side, found := ok.Nodes.ChildByAttribute(ok.Root, tt.side)
			if !found || side.Kind != tt.sideKind {
				t.Errorf("side %d kind = %v, want %v", tt.side, side.Kind, tt.sideKind)
			}
		})
	}
}

func TestReadDocumentErrors(t *testing.T) {
	tests := []struct {
		input string
		kind  ParseErrorKind
		found string
		pos   Position
	}{
		{"", ParseErrExpectedAnyTokenKind, "", Position{0, 0}},
		{"1 2", ParseErrUnusedTokensRemain, "2", Position{0, 2}},
		{"let x = 1", ParseErrExpectedTokenKind, "", Position{0, 9}},
		{"if 1 then 2", ParseErrExpectedTokenKind, "", Position{0, 11}},
		{"(1", ParseErrUnterminatedBracket, "", Position{0, 2}},
		{"[a = 1", ParseErrUnterminatedBracket, "", Position{0, 6}},
		{"{1, 2", ParseErrUnterminatedBracket, "", Position{0, 5}},
		{"x as foo", ParseErrInvalidPrimitiveType, "foo", Position{0, 5}},
		{")", ParseErrUnexpectedToken, ")", Position{0, 0}},
		{"let in 1", ParseErrExpectedTokenKind, "in", Position{0, 4}},
		{"1 +", ParseErrExpectedAnyTokenKind, "", Position{0, 3}},
		{"section a = 1;", ParseErrExpectedTokenKind, "=", Position{0, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := parse(t, tt.input)
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("got %v, want a *ParseError", err)
			}
			if parseErr.Kind != tt.kind {
				t.Errorf("kind = %v, want %v", parseErr.Kind, tt.kind)
			}
			found := ""
			if parseErr.Found != nil {
				found = parseErr.Found.Data
			}
			if found != tt.found {
				t.Errorf("found = %q, want %q", found, tt.found)
			}
			if parseErr.Position != tt.pos {
				t.Errorf("position = %v, want %v", parseErr.Position, tt.pos)
			}
			if parseErr.Message == "" {
				t.Error("empty message")
			}
			if err := parseErr.Nodes.Validate(); err != nil {
				t.Errorf("partial tree: %v", err)
			}
		})
	}
}

func TestReadDocumentKeepsPartialTree(t *testing.T) {
	_, err := parse(t, "let x = 1 in")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("got %v, want a *ParseError", err)
	}
	nodes := parseErr.Nodes
	deepest := nodes.DeepestContext()
	if got := nodes.Kind(deepest); got != KindLetExpression {
		t.Errorf("deepest context = %v, want %v", got, KindLetExpression)
	}
	if got := len(parseErr.Leaves); got != 5 {
		t.Errorf("got %d leaves, want 5", got)
	}
	if n, ok := nodes.ChildByAttribute(deepest, AttrLetIn); !ok || n.Token.Data != "in" {
		t.Errorf("in keyword = %v, %v", n, ok)
	}
}

func TestReadDocumentParenthesisDisambiguation(t *testing.T) {
	tests := []struct {
		input string
		kind  NodeKind
	}{
		{"(x", KindParenthesizedExpression},
		{"(x, y", KindFunctionExpression},
		{"(optional x", KindFunctionExpression},
		{"(x as number, ", KindFunctionExpression},
		{"(1, 2", KindParenthesizedExpression},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := parse(t, tt.input)
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("got %v, want a *ParseError", err)
			}
			root := parseErr.Nodes.Root()
			if got := parseErr.Nodes.Kind(root); got != tt.kind {
				t.Errorf("root kind = %v, want %v", got, tt.kind)
			}
		})
	}
}

func TestReadDocumentGeneralizedIdentifier(t *testing.T) {
	ok := mustParse(t, "[Column  Name = 1, #\"b\" = 2, and = 3]")
	var keys []string
	for _, id := range ok.Leaves {
		n, _ := ok.Nodes.Node(id)
		if n.Kind == KindGeneralizedIdentifier {
			keys = append(keys, n.Token.Data)
		}
	}
	want := []string{"Column  Name", "#\"b\"", "and"}
	if len(keys) != len(want) {
		t.Fatalf("got keys %q, want %q", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("key %d: got %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestReadDocumentNestingTooDeep(t *testing.T) {
	snap := snapshotOf(t, "((((((((1))))))))")
	_, err := ReadDocument(context.Background(), snap, WithMaxDepth(4))
	var parseErr *ParseError
	if !errors.As(err, &parseErr) || parseErr.Kind != ParseErrNestingTooDeep {
		t.Fatalf("got %v, want NestingTooDeep", err)
	}

	if _, err := ReadDocument(context.Background(), snap); err != nil {
		t.Errorf("default depth: %v", err)
	}
}

func TestReadDocumentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ReadDocument(ctx, snapshotOf(t, "f(1)"))
	if !errors.Is(err, ErrCancelled) {
		t.Errorf("got %v, want ErrCancelled", err)
	}
}

func TestReadExpressionRejectsSection(t *testing.T) {
	_, err := ReadExpression(context.Background(), snapshotOf(t, "section; a = 1;"))
	var parseErr *ParseError
	if !errors.As(err, &parseErr) || parseErr.Kind != ParseErrUnexpectedToken {
		t.Errorf("got %v, want UnexpectedToken", err)
	}
}

func TestReadDocumentLeavesInOrder(t *testing.T) {
	inputs := []string{
		"let a = [b = 1, c = {1..2}] in a[b] + f(a, 2){0}",
		"(x as number) as nullable text => try x otherwise error \"e\"",
		"section S; shared f = (optional a) => a ?? 0;",
		"type table [a = nullable number, optional b = text]",
	}
	for _, input := range inputs {
		ok := mustParse(t, input)
		tokens := snapshotOf(t, input).Tokens()
		if len(ok.Leaves) != len(tokens) {
			t.Errorf("%q: got %d leaves for %d tokens", input, len(ok.Leaves), len(tokens))
		}
	}
}
