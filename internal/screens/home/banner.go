package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/cadence/internal/ui/theme"
)

const titleFull = ` ██████╗ █████╗ ██████╗ ███████╗███╗   ██╗ ██████╗███████╗
██╔════╝██╔══██╗██╔══██╗██╔════╝████╗  ██║██╔════╝██╔════╝
██║     ███████║██║  ██║█████╗  ██╔██╗ ██║██║     █████╗
██║     ██╔══██║██║  ██║██╔══╝  ██║╚██╗██║██║     ██╔══╝
╚██████╗██║  ██║██████╔╝███████╗██║ ╚████║╚██████╗███████╗
 ╚═════╝╚═╝  ╚═╝╚═════╝ ╚══════╝╚═╝  ╚═══╝ ╚═════╝╚══════╝`

const titleCompact = "C · A · D · E · N · C · E"

func renderTitle(cw int, compact bool) string {
	art := titleFull
	if compact || cw < lipgloss.Width(titleFull) {
		art = titleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Bold(true).
		Render(art)
}

// renderStats renders the dashboard counters in a bordered box.
func renderStats(st stats, cw int) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	due := dim.Render("● nothing due")
	if st.due > 0 {
		due = theme.Due.Render(fmt.Sprintf("● %d due", st.due))
	}
	parts := []string{
		due,
		lipgloss.NewStyle().Foreground(theme.Secondary).Render(fmt.Sprintf("◇ %d active", st.active)),
		lipgloss.NewStyle().Foreground(theme.Success).Render(fmt.Sprintf("★ %d mastered", st.mastered)),
	}
	if st.upcoming > 0 {
		parts = append(parts, dim.Render(fmt.Sprintf("%d this week", st.upcoming)))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(strings.Join(parts, "   "))
}

func renderError(err error, cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Error).
		Width(cw).
		Align(lipgloss.Center).
		Render("⚠ " + err.Error())
}
