package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/cadence/internal/ui/theme"
)

// ProgressBar displays a horizontal share bar with a label and a trailing
// value.
type ProgressBar struct {
	Label      string
	LabelWidth int
	Percent    float64
	Value      string // shown after the bar; defaults to the percentage
	Width      int
	Fill       lipgloss.Style
}

// NewProgressBar creates a bar of total width w.
func NewProgressBar(label string, percent float64, w int) ProgressBar {
	return ProgressBar{
		Label:   label,
		Percent: percent,
		Width:   w,
		Fill:    lipgloss.NewStyle().Background(theme.Secondary),
	}
}

// View renders the bar.
func (p ProgressBar) View() string {
	var result string
	if p.Label != "" {
		lw := max(p.LabelWidth, lipgloss.Width(p.Label))
		result = lipgloss.NewStyle().Width(lw).Render(p.Label) + "  "
	}

	value := p.Value
	if value == "" {
		value = fmt.Sprintf("%3d%%", int(p.Percent*100+0.5))
	}
	value = "  " + value

	barWidth := max(4, p.Width-lipgloss.Width(result)-lipgloss.Width(value))
	filled := min(barWidth, max(0, int(float64(barWidth)*p.Percent+0.5)))

	result += p.Fill.Render(strings.Repeat(" ", filled))
	result += lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", barWidth-filled))
	result += lipgloss.NewStyle().Foreground(theme.TextDim).Render(value)
	return result
}
