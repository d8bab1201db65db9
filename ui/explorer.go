package ui

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dhamidi/pqls/format"
	"github.com/dhamidi/pqls/pq"
	"github.com/dhamidi/pqls/pq/codebase"
	"github.com/dhamidi/pqls/pq/parser"
)

const (
	prompt        = "pq> "
	maxCandidates = 8
)

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	headingStyle  = lipgloss.NewStyle().Underline(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// explorer re-inspects the expression under edit at the cursor after every
// keystroke. Tab replaces the word left of the cursor with the selected
// completion.
type explorer struct {
	ctx        context.Context
	settings   pq.Settings
	input      textinput.Model
	lp         *pq.LexParse
	inspection *pq.Inspection
	candidates []codebase.CompletionItem
	err        error
	suggIdx    int
	width      int
	quitting   bool
}

// RunExplorer starts the terminal explorer, seeded with text. Line breaks
// are folded into spaces since the editor holds a single line.
func RunExplorer(ctx context.Context, settings pq.Settings, text string) error {
	m := newExplorer(ctx, settings, text)
	p := tea.NewProgram(m, tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func newExplorer(ctx context.Context, settings pq.Settings, text string) *explorer {
	input := textinput.New()
	input.Prompt = prompt
	input.PromptStyle = promptStyle
	input.Placeholder = "type an M expression"
	input.SetValue(strings.Join(strings.Fields(text), " "))
	input.CursorEnd()
	input.Focus()

	m := &explorer{
		ctx:      ctx,
		settings: settings,
		input:    input,
		width:    80,
	}
	m.inspect()
	return m
}

func (m *explorer) Init() tea.Cmd {
	return textinput.Blink
}

func (m *explorer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(prompt) - 1
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyCtrlD:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyTab:
			m.accept()
			return m, nil
		case tea.KeyShiftTab:
			if n := len(m.candidates); n > 0 {
				m.suggIdx = (m.suggIdx + n - 1) % n
			}
			return m, nil
		case tea.KeyDown:
			if n := len(m.candidates); n > 0 {
				m.suggIdx = (m.suggIdx + 1) % n
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	before, pos := m.input.Value(), m.input.Position()
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before || m.input.Position() != pos {
		m.inspect()
	}
	return m, cmd
}

// cursor returns the cursor as a byte column.
func (m *explorer) cursor() int {
	value := m.input.Value()
	runes := m.input.Position()
	col := 0
	for i := 0; i < runes && col < len(value); i++ {
		_, size := utf8.DecodeRuneInString(value[col:])
		col += size
	}
	return col
}

func (m *explorer) inspect() {
	m.suggIdx = 0
	m.candidates = nil
	pos := parser.Position{Line: 0, Column: m.cursor()}
	m.lp, m.inspection, m.err = pq.TryLexParseInspect(m.ctx, m.settings, m.input.Value(), pos)
	if m.err != nil {
		return
	}
	in := m.inspection
	var items []codebase.CompletionItem
	seen := map[string]bool{}
	add := func(label string, kind codebase.CompletionKind) {
		if !seen[label] {
			seen[label] = true
			items = append(items, codebase.CompletionItem{Label: label, Kind: kind})
		}
	}
	for _, item := range in.Autocomplete.FieldAccess.Items {
		add(item.Key, codebase.CompletionKindField)
	}
	if len(in.Autocomplete.FieldAccess.Items) == 0 {
		for _, item := range in.Scope.Items() {
			if item.Kind != pq.ScopeUndefined {
				add(item.Name, codebase.CompletionKindVariable)
			}
		}
	}
	for _, label := range in.Autocomplete.Labels() {
		add(label, codebase.CompletionKindKeyword)
	}
	m.candidates = codebase.Rank(in.Prefix, items)
}

func (m *explorer) accept() {
	if len(m.candidates) == 0 || m.inspection == nil {
		return
	}
	label := m.candidates[m.suggIdx].Label
	value := m.input.Value()
	col := m.cursor()
	start := col - len(m.inspection.Prefix)
	if start < 0 {
		start = 0
	}
	next := value[:start] + label + value[col:]
	m.input.SetValue(next)
	m.input.SetCursor(utf8.RuneCountInString(value[:start] + label))
	m.inspect()
}

func (m *explorer) View() string {
	if m.quitting {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(m.input.View())
	sb.WriteString("\n\n")

	if m.err != nil {
		sb.WriteString(format.ErrorStyle.Render(m.err.Error()))
		sb.WriteString("\n")
		return sb.String()
	}
	if perr := m.lp.ParseErr; perr != nil {
		sb.WriteString(format.ErrorStyle.Render(fmt.Sprintf("%s %s", perr.Position, perr.Message)))
		sb.WriteString("\n\n")
	}

	in := m.inspection
	sb.WriteString(headingStyle.Render("scope"))
	sb.WriteString("\n")
	for _, item := range in.Scope.Items() {
		kind := item.Kind.String()
		typ := ""
		if t, ok := in.ScopeType[item.Name]; ok {
			typ = format.TypeStyle.Render(t.String())
		}
		fmt.Fprintf(&sb, "  %s %s %s\n", format.NameStyle.Render(item.Name), format.ScopeKindStyle(kind).Render(kind), typ)
	}

	sb.WriteString(headingStyle.Render("completions"))
	sb.WriteString("\n ")
	for i, c := range m.candidates {
		if i == maxCandidates {
			sb.WriteString(format.HintStyle.Render(fmt.Sprintf(" +%d", len(m.candidates)-maxCandidates)))
			break
		}
		sb.WriteString(" ")
		if i == m.suggIdx {
			sb.WriteString(selectedStyle.Render(c.Label))
		} else {
			sb.WriteString(format.KeywordStyle.Render(c.Label))
		}
	}
	sb.WriteString("\n")

	if inv := in.Invoke; inv != nil {
		fmt.Fprintf(&sb, "\n%s %s argument %d of %d\n", headingStyle.Render("invoke"), inv.Name, inv.ArgumentOrdinal+1, inv.NumArguments)
	}
	sb.WriteString("\n")
	sb.WriteString(format.HintStyle.Render("tab: complete  shift+tab/down: cycle  esc: quit"))
	sb.WriteString("\n")
	return sb.String()
}
