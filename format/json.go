package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/pqls/pq"
	"github.com/dhamidi/pqls/pq/parser"
)

type JSONEncoder struct {
	w io.Writer
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) write(v any) error {
	text, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	text = append(text, '\n')
	_, err = e.w.Write(text)
	return err
}

type jsonPosition struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type jsonSpan struct {
	Start jsonPosition `json:"start"`
	End   jsonPosition `json:"end"`
}

func toPosition(p parser.Position) jsonPosition {
	return jsonPosition{Line: p.Line, Column: p.Column}
}

func toSpan(s parser.Span) jsonSpan {
	return jsonSpan{Start: toPosition(s.Start), End: toPosition(s.End)}
}

type jsonLine struct {
	Number     int             `json:"number"`
	Text       string          `json:"text"`
	Terminator string          `json:"terminator,omitempty"`
	ModeStart  string          `json:"modeStart"`
	ModeEnd    string          `json:"modeEnd"`
	Tokens     []jsonLineToken `json:"tokens,omitempty"`
	Error      string          `json:"error,omitempty"`
}

type jsonLineToken struct {
	Kind  string `json:"kind"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Data  string `json:"data"`
}

func (e *JSONEncoder) EncodeState(state *parser.State) error {
	lines := make([]jsonLine, 0, state.LineCount())
	for i, line := range state.Lines() {
		jl := jsonLine{
			Number:     i,
			Text:       line.Text,
			Terminator: line.Terminator,
			ModeStart:  line.ModeStart.String(),
			ModeEnd:    line.ModeEnd.String(),
		}
		for _, tok := range line.Tokens {
			jl.Tokens = append(jl.Tokens, jsonLineToken{Kind: tok.Kind.String(), Start: tok.Start, End: tok.End, Data: tok.Data})
		}
		if line.Err != nil {
			jl.Error = line.Err.Message
		}
		lines = append(lines, jl)
	}
	return e.write(lines)
}

type jsonToken struct {
	Kind string   `json:"kind"`
	Data string   `json:"data"`
	Span jsonSpan `json:"span"`
}

func toTokens(toks []parser.Token) []jsonToken {
	out := make([]jsonToken, len(toks))
	for i, tok := range toks {
		out[i] = jsonToken{Kind: tok.Kind.String(), Data: tok.Data, Span: toSpan(tok.Span)}
	}
	return out
}

func (e *JSONEncoder) EncodeSnapshot(snap *parser.Snapshot) error {
	return e.write(struct {
		Tokens   []jsonToken `json:"tokens"`
		Comments []jsonToken `json:"comments,omitempty"`
	}{toTokens(snap.Tokens()), toTokens(snap.Comments())})
}

func (e *JSONEncoder) EncodeParse(lp *pq.LexParse) error {
	nodes, _ := lp.Nodes()
	return e.write(struct {
		Tree  any                `json:"tree"`
		Error *parser.ParseError `json:"error,omitempty"`
	}{nodes.TreeJSON(nodes.Root()), lp.ParseErr})
}

type jsonScopeItem struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

type jsonCandidates[T any] struct {
	Items []T    `json:"items"`
	Error string `json:"error,omitempty"`
}

func toCandidates[T any](c pq.Candidates[T]) jsonCandidates[T] {
	out := jsonCandidates[T]{Items: c.Items}
	if out.Items == nil {
		out.Items = []T{}
	}
	if c.Err != nil {
		out.Error = c.Err.Error()
	}
	return out
}

type jsonFieldAccess struct {
	Key  string   `json:"key"`
	Span jsonSpan `json:"span"`
}

type jsonInspection struct {
	Position     jsonPosition    `json:"position"`
	Anchor       string          `json:"anchor,omitempty"`
	Scope        []jsonScopeItem `json:"scope"`
	Autocomplete struct {
		Keyword          jsonCandidates[string]          `json:"keyword"`
		FieldAccess      jsonCandidates[jsonFieldAccess] `json:"fieldAccess"`
		LanguageConstant jsonCandidates[string]          `json:"languageConstant"`
		PrimitiveType    jsonCandidates[string]          `json:"primitiveType"`
	} `json:"autocomplete"`
	Invoke *jsonInvoke `json:"invoke,omitempty"`
}

type jsonInvoke struct {
	Name            string `json:"name,omitempty"`
	NumArguments    int    `json:"numArguments"`
	ArgumentOrdinal int    `json:"argumentOrdinal"`
}

func (e *JSONEncoder) EncodeInspection(lp *pq.LexParse, in *pq.Inspection) error {
	nodes, _ := lp.Nodes()
	ji := jsonInspection{
		Position: toPosition(in.Position),
		Scope:    []jsonScopeItem{},
	}
	if in.Invoke != nil {
		ji.Invoke = &jsonInvoke{Name: in.Invoke.Name, NumArguments: in.Invoke.NumArguments, ArgumentOrdinal: in.Invoke.ArgumentOrdinal}
	}
	if n, ok := nodes.Node(in.Anchor); ok && n.Token != nil {
		ji.Anchor = n.Token.Data
	}
	for _, item := range in.Scope.Items() {
		si := jsonScopeItem{Kind: item.Kind.String(), Name: item.Name}
		if t, ok := in.ScopeType[item.Name]; ok {
			si.Type = t.String()
		}
		ji.Scope = append(ji.Scope, si)
	}
	ac := in.Autocomplete
	ji.Autocomplete.Keyword = toCandidates(ac.Keyword)
	ji.Autocomplete.LanguageConstant = toCandidates(ac.LanguageConstant)
	ji.Autocomplete.PrimitiveType = toCandidates(ac.PrimitiveType)
	fields := pq.Candidates[jsonFieldAccess]{Err: ac.FieldAccess.Err}
	for _, item := range ac.FieldAccess.Items {
		fields.Items = append(fields.Items, jsonFieldAccess{Key: item.Key, Span: toSpan(item.Span)})
	}
	ji.Autocomplete.FieldAccess = toCandidates(fields)
	return e.write(ji)
}

type jsonDiagnostic struct {
	Position jsonPosition `json:"position"`
	Severity string       `json:"severity"`
	Message  string       `json:"message"`
}

func (e *JSONEncoder) EncodeDiagnostics(path string, diags []Diagnostic) error {
	out := struct {
		Path        string           `json:"path"`
		Diagnostics []jsonDiagnostic `json:"diagnostics"`
	}{Path: path, Diagnostics: []jsonDiagnostic{}}
	for _, d := range diags {
		out.Diagnostics = append(out.Diagnostics, jsonDiagnostic{Position: toPosition(d.Position), Severity: d.Severity, Message: d.Message})
	}
	return e.write(out)
}
