package internal

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorMuted   = lipgloss.Color("#6B7280")
	colorSuccess = lipgloss.Color("#10B981")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)
)

// row renders cells left-aligned in columns of the given widths. The last
// cell is not padded.
func row(widths []int, cells ...string) string {
	out := ""
	for i, c := range cells {
		if i < len(widths) && i < len(cells)-1 {
			c = lipgloss.NewStyle().Width(widths[i]).Render(c)
		}
		out += c
	}
	return out
}
