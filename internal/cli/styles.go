package cli

import "github.com/charmbracelet/lipgloss"

// Terminal styles for the library listing.
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginTop(1)

	itemStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			PaddingLeft(2)

	emptyStyle = lipgloss.NewStyle().
			Faint(true).
			Italic(true).
			PaddingLeft(2)
)
