// Package layout draws the chrome around the active screen: a header bar
// with the due counter, a footer of key hints, and the body between them.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/cadence/internal/ui/theme"
)

const (
	MinWidth  = 80
	MinHeight = 24
)

type KeyHint struct {
	Key         string
	Description string
}

// HeaderStats are the counters on the right of the header.
type HeaderStats struct {
	Due    int
	Topics int
}

// IsCompact reports whether screens should drop decorative sections.
func IsCompact(width, height int) bool {
	return width < 100 || height < 30
}

func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

func RenderMinSizeMessage(width, height int) string {
	msg := fmt.Sprintf("The window is %d x %d.\nCadence needs at least %d x %d.",
		width, height, MinWidth, MinHeight)
	return theme.Body.
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(msg)
}

// bar is the rounded strip shared by header and footer.
func bar(content string, width int) string {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(content)
}

// spread places left, center and right on one line of width w, keeping
// center in the middle while there is room.
func spread(left, center, right string, w int) string {
	lw, cw, rw := lipgloss.Width(left), lipgloss.Width(center), lipgloss.Width(right)
	gap1 := max(1, (w-cw)/2-lw)
	gap2 := max(1, w-lw-gap1-cw-rw)
	return left + strings.Repeat(" ", gap1) + center + strings.Repeat(" ", gap2) + right
}

func RenderHeader(title string, stats HeaderStats, width int) string {
	due := lipgloss.NewStyle().Foreground(theme.TextDim)
	if stats.Due > 0 {
		due = theme.Due
	}
	counters := due.Render(fmt.Sprintf("● %d due", stats.Due)) + "   " +
		lipgloss.NewStyle().Foreground(theme.Secondary).Render(fmt.Sprintf("◇ %d topics", stats.Topics))

	// two border columns and two of padding
	line := spread(theme.Selected.Render("  Cadence"), theme.Body.Render(title), counters, max(0, width-4))
	return bar(line, width)
}

func RenderFooter(hints []KeyHint, width int) string {
	key := theme.Body.Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim)
	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = key.Render(h.Key) + " " + desc.Render(h.Description)
	}
	return bar("  "+strings.Join(parts, "   "), width)
}

// RenderFrame stacks the three parts and clips the body to what is left
// between header and footer.
func RenderFrame(header, content, footer string, width, height int) string {
	h := max(0, height-lipgloss.Height(header)-lipgloss.Height(footer))
	body := lipgloss.NewStyle().Width(width).Height(h).MaxHeight(h).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}
