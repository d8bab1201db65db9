package parser

import (
	"context"
	"slices"
	"strings"
)

// Line is the lexed form of one source line. A Line is never modified after
// it has been placed in a State.
type Line struct {
	Text       string
	Terminator string
	ModeStart  LineMode
	ModeEnd    LineMode
	Tokens     []LineToken
	Err        *LexError
}

// State is an ordered sequence of lexed lines. Every operation returns a new
// State and leaves the receiver untouched, so callers may keep old states
// around (for undo, or to diff against).
type State struct {
	settings Settings
	lines    []Line
}

// Range is a half-open range of positions used by UpdateRange.
type Range struct {
	Start Position
	End   Position
}

func (r Range) String() string {
	return r.Start.String() + "-" + r.End.String()
}

// Lex splits text into lines and tokenizes each, carrying the end mode of a
// line into the next.
func Lex(ctx context.Context, settings Settings, text string) (*State, error) {
	texts, terminators := splitLines(text)
	s := &State{
		settings: settings,
		lines:    make([]Line, 0, len(texts)),
	}
	mode := ModeDefault
	for i := range texts {
		if err := checkCancelled(ctx); err != nil {
			return nil, err
		}
		line := s.tokenize(i, texts[i], terminators[i], mode)
		s.lines = append(s.lines, line)
		mode = line.ModeEnd
	}
	return s, nil
}

// AppendLine tokenizes text as a new trailing line, starting in the end mode
// of the current last line. The terminator is recorded after the new line.
func (s *State) AppendLine(ctx context.Context, text, terminator string) (*State, error) {
	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}
	mode := ModeDefault
	if n := len(s.lines); n > 0 {
		mode = s.lines[n-1].ModeEnd
	}
	next := s.clone(len(s.lines) + 1)
	next.lines = append(next.lines, s.lines...)
	next.lines = append(next.lines, next.tokenize(len(s.lines), text, terminator, mode))
	return next, nil
}

// UpdateLine replaces the text of one line and re-tokenizes it, cascading
// to following lines while their start mode no longer matches.
func (s *State) UpdateLine(ctx context.Context, lineNumber int, text string) (*State, error) {
	if lineNumber < 0 || lineNumber >= len(s.lines) {
		return nil, &LexError{
			Kind:     LexErrBadLineNumber,
			Position: Position{Line: lineNumber},
			Message:  message(s.settings.locale(), msgBadLineNumber, lineNumber, len(s.lines)),
		}
	}
	old := s.lines[lineNumber]
	return s.splice(ctx, lineNumber, lineNumber, []string{text}, []string{old.Terminator})
}

// UpdateRange replaces the text inside r. The replacement may contain line
// terminators, so the number of lines can change.
func (s *State) UpdateRange(ctx context.Context, r Range, text string) (*State, error) {
	if !s.validRange(r) {
		return nil, &LexError{
			Kind:     LexErrBadRange,
			Position: r.Start,
			Message:  message(s.settings.locale(), msgBadRange, r),
		}
	}
	first := s.lines[r.Start.Line]
	last := s.lines[r.End.Line]
	merged := first.Text[:r.Start.Column] + text + last.Text[r.End.Column:]
	texts, terminators := splitLines(merged)
	terminators[len(terminators)-1] = last.Terminator
	return s.splice(ctx, r.Start.Line, r.End.Line, texts, terminators)
}

func (s *State) validRange(r Range) bool {
	if r.End.Before(r.Start) {
		return false
	}
	for _, p := range []Position{r.Start, r.End} {
		if p.Line < 0 || p.Line >= len(s.lines) {
			return false
		}
		if p.Column < 0 || p.Column > len(s.lines[p.Line].Text) {
			return false
		}
	}
	return true
}

// splice replaces lines [from, to] with the given texts, then re-tokenizes
// following lines until the carried mode converges.
func (s *State) splice(ctx context.Context, from, to int, texts, terminators []string) (*State, error) {
	next := s.clone(len(s.lines) - (to - from + 1) + len(texts))
	next.lines = append(next.lines, s.lines[:from]...)

	mode := s.lines[from].ModeStart
	for i := range texts {
		if err := checkCancelled(ctx); err != nil {
			return nil, err
		}
		line := next.tokenize(from+i, texts[i], terminators[i], mode)
		next.lines = append(next.lines, line)
		mode = line.ModeEnd
	}

	rest := s.lines[to+1:]
	for i, line := range rest {
		if line.ModeStart == mode {
			next.appendShifted(rest[i:])
			break
		}
		if err := checkCancelled(ctx); err != nil {
			return nil, err
		}
		line = next.tokenize(len(next.lines), line.Text, line.Terminator, mode)
		next.lines = append(next.lines, line)
		mode = line.ModeEnd
	}
	return next, nil
}

// appendShifted appends untouched lines, renumbering their errors when an
// edit changed the line count above them.
func (s *State) appendShifted(lines []Line) {
	for _, line := range lines {
		n := len(s.lines)
		if line.Err != nil && line.Err.Position.Line != n {
			err := *line.Err
			err.Position.Line = n
			line.Err = &err
		}
		s.lines = append(s.lines, line)
	}
}

func (s *State) clone(capacity int) *State {
	return &State{
		settings: s.settings,
		lines:    make([]Line, 0, capacity),
	}
}

func (s *State) tokenize(lineNumber int, text, terminator string, mode LineMode) Line {
	tokens, end, err := tokenizeLine(text, lineNumber, mode, s.settings.locale())
	return Line{
		Text:       text,
		Terminator: terminator,
		ModeStart:  mode,
		ModeEnd:    end,
		Tokens:     tokens,
		Err:        err,
	}
}

func (s *State) Settings() Settings {
	return s.settings
}

func (s *State) Lines() []Line {
	return slices.Clone(s.lines)
}

func (s *State) LineCount() int {
	return len(s.lines)
}

func (s *State) Line(n int) (Line, bool) {
	if n < 0 || n >= len(s.lines) {
		return Line{}, false
	}
	return s.lines[n], true
}

// Text reassembles the document, terminators included.
func (s *State) Text() string {
	var sb strings.Builder
	for _, line := range s.lines {
		sb.WriteString(line.Text)
		sb.WriteString(line.Terminator)
	}
	return sb.String()
}

// ErrorLineMap returns the lines holding a lex error, keyed by line number,
// or nil when every line lexed cleanly.
func (s *State) ErrorLineMap() map[int]*LexError {
	var out map[int]*LexError
	for i, line := range s.lines {
		if line.Err == nil {
			continue
		}
		if out == nil {
			out = make(map[int]*LexError)
		}
		out[i] = line.Err
	}
	return out
}

// splitLines splits text on \r\n, \n, \r, U+2028 and U+2029. There is always
// at least one line; the last line has an empty terminator.
func splitLines(text string) ([]string, []string) {
	var texts, terminators []string
	start := 0
	for i := 0; i < len(text); {
		term := terminatorAt(text, i)
		if term == 0 {
			i++
			continue
		}
		texts = append(texts, text[start:i])
		terminators = append(terminators, text[i:i+term])
		i += term
		start = i
	}
	texts = append(texts, text[start:])
	terminators = append(terminators, "")
	return texts, terminators
}

// terminatorAt returns the byte length of the line terminator at text[i], or
// zero if there is none.
func terminatorAt(text string, i int) int {
	switch text[i] {
	case '\n':
		return 1
	case '\r':
		if i+1 < len(text) && text[i+1] == '\n' {
			return 2
		}
		return 1
	case 0xE2:
		// U+2028 and U+2029 encode as E2 80 A8 and E2 80 A9.
		if i+2 < len(text) && text[i+1] == 0x80 && (text[i+2] == 0xA8 || text[i+2] == 0xA9) {
			return 3
		}
	}
	return 0
}
