package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cadence/internal/ui/theme"
)

const (
	minContent = 20
	maxContent = 64
)

// ContentWidth is the column width screens lay their sections out in,
// for a screen of the given width.
func ContentWidth(screenWidth int) int {
	// double border and two cells of padding each side
	return min(max(screenWidth-6, minContent), maxContent)
}

// Frame centers content inside a double border filling width x height.
func Frame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Width(width-2).
		Height(height-2).
		Border(lipgloss.DoubleBorder(), true).
		BorderForeground(theme.Primary).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// Card boxes content so that its outer width is cw.
func Card(content string, cw int) string {
	return lipgloss.NewStyle().
		Width(cw-2).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder(), true).
		BorderForeground(theme.Border).
		Render(content)
}
