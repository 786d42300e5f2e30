package tui

import "github.com/charmbracelet/lipgloss"

// Theme is the set of styles the editor renders with.
type Theme struct {
	Title       lipgloss.Style
	Gutter      lipgloss.Style
	ActiveMark  lipgloss.Style
	DragMark    lipgloss.Style
	Paragraph   lipgloss.Style
	Heading     [3]lipgloss.Style
	Quote       lipgloss.Style
	Code        lipgloss.Style
	ListMarker  lipgloss.Style
	Placeholder lipgloss.Style
	Caret       lipgloss.Style
	Menu        lipgloss.Style
	MenuItem    lipgloss.Style
	MenuCursor  lipgloss.Style
	MenuHint    lipgloss.Style
	AddBlock    lipgloss.Style
	Status      lipgloss.Style
	StatusError lipgloss.Style

	// CodeStyle is the chroma style name for code blocks.
	CodeStyle string
}

// DefaultTheme is tuned for dark terminals.
var DefaultTheme = Theme{
	Title:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).MarginBottom(1),
	Gutter:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	ActiveMark: lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
	DragMark:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	Paragraph:  lipgloss.NewStyle(),
	Heading: [3]lipgloss.Style{
		lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("255")),
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")),
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("248")),
	},
	Quote: lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("250")).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(lipgloss.Color("240")).PaddingLeft(1),
	Code:        lipgloss.NewStyle().Background(lipgloss.Color("235")).Padding(0, 1),
	ListMarker:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true),
	Caret:       lipgloss.NewStyle().Reverse(true),
	Menu: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).Padding(0, 1),
	MenuItem:    lipgloss.NewStyle(),
	MenuCursor:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
	MenuHint:    lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
	AddBlock:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	Status:      lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
	StatusError: lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),

	CodeStyle: "monokai",
}
