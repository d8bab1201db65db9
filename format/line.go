package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dhamidi/pqls/pq"
	"github.com/dhamidi/pqls/pq/parser"
)

// LineEncoder writes tab separated, one-record-per-line text. With color
// set, names and kinds are styled for a terminal.
type LineEncoder struct {
	w     io.Writer
	color bool
}

func NewLineEncoder(w io.Writer, color bool) *LineEncoder {
	return &LineEncoder{w: w, color: color}
}

func (e *LineEncoder) render(style lipgloss.Style, text string) string {
	if !e.color {
		return text
	}
	return style.Render(text)
}

func (e *LineEncoder) flush(sb *strings.Builder) error {
	_, err := io.WriteString(e.w, sb.String())
	return err
}

func (e *LineEncoder) EncodeState(state *parser.State) error {
	var sb strings.Builder
	for i, line := range state.Lines() {
		fmt.Fprintf(&sb, "line\t%d\t%s\t%s\t%q\n", i, line.ModeStart, line.ModeEnd, line.Terminator)
		for _, tok := range line.Tokens {
			fmt.Fprintf(&sb, "\t%d-%d\t%s\t%q\n", tok.Start, tok.End, e.render(KindStyle, tok.Kind.String()), tok.Data)
		}
		if line.Err != nil {
			fmt.Fprintf(&sb, "\terror\t%s\n", e.render(ErrorStyle, line.Err.Message))
		}
	}
	return e.flush(&sb)
}

func (e *LineEncoder) EncodeSnapshot(snap *parser.Snapshot) error {
	var sb strings.Builder
	for _, tok := range snap.Tokens() {
		fmt.Fprintf(&sb, "token\t%s\t%s\t%q\n", tok.Span, e.render(KindStyle, tok.Kind.String()), tok.Data)
	}
	for _, tok := range snap.Comments() {
		fmt.Fprintf(&sb, "comment\t%s\t%s\t%q\n", tok.Span, e.render(HintStyle, tok.Kind.String()), tok.Data)
	}
	return e.flush(&sb)
}

func (e *LineEncoder) EncodeParse(lp *pq.LexParse) error {
	var sb strings.Builder
	nodes, _ := lp.Nodes()
	e.writeTree(&sb, nodes, nodes.Root(), 0)
	if lp.ParseErr != nil {
		fmt.Fprintf(&sb, "error\t%s\t%s\t%s\n", lp.ParseErr.Position, lp.ParseErr.Kind, e.render(ErrorStyle, lp.ParseErr.Message))
	}
	return e.flush(&sb)
}

func (e *LineEncoder) writeTree(sb *strings.Builder, nodes *parser.Collection, id parser.NodeID, depth int) {
	n, ok := nodes.Node(id)
	if !ok {
		return
	}
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(e.render(KindStyle, n.Kind.String()))
	if n.State == parser.NodeContext {
		sb.WriteString(" " + e.render(ErrorStyle, "(context)"))
	}
	if n.Token != nil {
		fmt.Fprintf(sb, " %q", n.Token.Data)
	}
	if span, ok := nodes.Span(id); ok {
		fmt.Fprintf(sb, " @%s", span)
	}
	sb.WriteString("\n")
	for _, kid := range nodes.Children(id) {
		e.writeTree(sb, nodes, kid, depth+1)
	}
}

func (e *LineEncoder) EncodeInspection(lp *pq.LexParse, in *pq.Inspection) error {
	var sb strings.Builder
	for _, item := range in.Scope.Items() {
		typ := "-"
		if t, ok := in.ScopeType[item.Name]; ok {
			typ = t.String()
		}
		kind := item.Kind.String()
		fmt.Fprintf(&sb, "scope\t%s\t%s\t%s\n",
			e.render(NameStyle, item.Name), e.render(ScopeKindStyle(kind), kind), e.render(TypeStyle, typ))
	}
	ac := in.Autocomplete
	e.writeCandidates(&sb, "keyword", ac.Keyword.Items, ac.Keyword.Err)
	var fields []string
	for _, item := range ac.FieldAccess.Items {
		fields = append(fields, item.Key)
	}
	e.writeCandidates(&sb, "field", fields, ac.FieldAccess.Err)
	e.writeCandidates(&sb, "constant", ac.LanguageConstant.Items, ac.LanguageConstant.Err)
	e.writeCandidates(&sb, "type", ac.PrimitiveType.Items, ac.PrimitiveType.Err)
	if inv := in.Invoke; inv != nil {
		fmt.Fprintf(&sb, "invoke\t%s\t%d/%d\n", inv.Name, inv.ArgumentOrdinal, inv.NumArguments)
	}
	return e.flush(&sb)
}

func (e *LineEncoder) writeCandidates(sb *strings.Builder, label string, items []string, err error) {
	if err != nil {
		fmt.Fprintf(sb, "%s\terror\t%s\n", label, e.render(ErrorStyle, err.Error()))
		return
	}
	for _, item := range items {
		fmt.Fprintf(sb, "%s\t%s\n", label, e.render(KeywordStyle, item))
	}
}

func (e *LineEncoder) EncodeDiagnostics(path string, diags []Diagnostic) error {
	var sb strings.Builder
	if len(diags) == 0 {
		fmt.Fprintf(&sb, "%s\tok\n", path)
	}
	for _, d := range diags {
		fmt.Fprintf(&sb, "%s:%d:%d\t%s\t%s\n", path, d.Position.Line+1, d.Position.Column+1,
			d.Severity, e.render(ErrorStyle, d.Message))
	}
	return e.flush(&sb)
}
