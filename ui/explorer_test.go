package ui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dhamidi/pqls/pq"
)

func TestExplorerCompletesWord(t *testing.T) {
	m := newExplorer(context.Background(), pq.DefaultSettings(), "let abc = 1,\n    abd = 2 in ab")
	if got := m.input.Value(); got != "let abc = 1, abd = 2 in ab" {
		t.Fatalf("Value() = %q", got)
	}
	if len(m.candidates) < 2 || m.candidates[0].Label != "abc" {
		t.Fatalf("candidates = %+v, want abc first", m.candidates)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if got, want := m.input.Value(), "let abc = 1, abd = 2 in abd"; got != want {
		t.Errorf("after tab: %q, want %q", got, want)
	}
}

func TestExplorerTyping(t *testing.T) {
	m := newExplorer(context.Background(), pq.DefaultSettings(), "")
	for _, r := range "[a = 1][" {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	if len(m.candidates) != 1 || m.candidates[0].Label != "a" {
		t.Errorf("candidates = %+v, want [a]", m.candidates)
	}
	view := m.View()
	if !strings.Contains(view, "completions") {
		t.Errorf("view missing completions:\n%s", view)
	}
}

func TestExplorerShowsLexErrors(t *testing.T) {
	m := newExplorer(context.Background(), pq.DefaultSettings(), "1 + $")
	if m.err == nil {
		t.Fatal("expected a lex error")
	}
	if !strings.Contains(m.View(), "lex error") {
		t.Errorf("view does not show the error:\n%s", m.View())
	}
}

func TestExplorerQuit(t *testing.T) {
	m := newExplorer(context.Background(), pq.DefaultSettings(), "1")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil || !m.quitting {
		t.Error("esc did not quit")
	}
	if m.View() != "" {
		t.Error("view not cleared after quit")
	}
}
