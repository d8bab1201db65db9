package format

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/dhamidi/pqls/pq"
	"github.com/dhamidi/pqls/pq/parser"
)

// Encoder writes the results of the lexer, parser and inspection engine.
type Encoder interface {
	EncodeState(state *parser.State) error
	EncodeSnapshot(snap *parser.Snapshot) error
	EncodeParse(lp *pq.LexParse) error
	EncodeInspection(lp *pq.LexParse, in *pq.Inspection) error
	EncodeDiagnostics(path string, diags []Diagnostic) error
}

// Diagnostic is a problem found in a file. End is the end of the offending
// token, or equal to Position when there is none.
type Diagnostic struct {
	Position parser.Position
	End      parser.Position
	Severity string
	Message  string
}

const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityHint    = "hint"
)

// DiagnosticsFor collects the lexer and parser errors of text.
func DiagnosticsFor(lp *pq.LexParse, lexErr error) []Diagnostic {
	var out []Diagnostic
	if lexErr != nil {
		var le *parser.LexError
		if !errors.As(lexErr, &le) {
			return []Diagnostic{{Severity: SeverityError, Message: lexErr.Error()}}
		}
		if len(le.Lines) == 0 {
			return []Diagnostic{lexDiagnostic(le)}
		}
		for _, line := range slices.Sorted(maps.Keys(le.Lines)) {
			out = append(out, lexDiagnostic(le.Lines[line]))
		}
		return out
	}
	if lp != nil && lp.ParseErr != nil {
		perr := lp.ParseErr
		d := Diagnostic{Position: perr.Position, End: perr.Position, Severity: SeverityError, Message: perr.Message}
		if perr.Found != nil {
			d.End = perr.Found.Span.End
		}
		out = append(out, d)
	}
	return out
}

func lexDiagnostic(e *parser.LexError) Diagnostic {
	return Diagnostic{Position: e.Position, End: e.Position, Severity: SeverityError, Message: e.Message}
}

// New returns the encoder registered under name.
func New(name string, w io.Writer) (Encoder, error) {
	switch name {
	case "json":
		return NewJSONEncoder(w), nil
	case "text":
		return NewLineEncoder(w, false), nil
	case "color":
		return NewLineEncoder(w, true), nil
	}
	return nil, fmt.Errorf("unknown format: %s", name)
}
