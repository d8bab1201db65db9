package format

import "github.com/charmbracelet/lipgloss"

var (
	KindStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	NameStyle    = lipgloss.NewStyle().Bold(true)
	TypeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	KeywordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	HintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// ScopeKindStyle colors scope items by how they were bound.
func ScopeKindStyle(kind string) lipgloss.Style {
	switch kind {
	case "Undefined":
		return ErrorStyle
	case "Parameter", "Each":
		return TypeStyle
	}
	return KindStyle
}
