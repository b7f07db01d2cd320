// Package theme is the TUI palette. Blues for chrome, amber for anything
// that is due, and a warm-to-cool ramp for the stage ladder.
package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/cadence/internal/spacedrep"
)

var (
	Primary   = lipgloss.Color("#60A5FA")
	Secondary = lipgloss.Color("#2DD4BF")
	Accent    = lipgloss.Color("#FBBF24")
	Success   = lipgloss.Color("#4ADE80")
	Error     = lipgloss.Color("#F87171")
	Text      = lipgloss.Color("#E2E8F0")
	TextDim   = lipgloss.Color("#94A3B8")
	BgDark    = lipgloss.Color("#0B1120")
	BgCard    = lipgloss.Color("#1E293B")
	Border    = lipgloss.Color("#334155")
)

// ramp runs from the first review to mastered.
var ramp = [...]color.Color{
	spacedrep.StageFirstTime: Error,
	spacedrep.StageEarly:     lipgloss.Color("#FB923C"),
	spacedrep.StageMid:       Accent,
	spacedrep.StageLate:      Secondary,
	spacedrep.StageMastered:  Success,
}

func StageColor(s spacedrep.Stage) color.Color {
	if !s.Valid() {
		return TextDim
	}
	return ramp[s]
}

// StageBadge renders a stage name in its ramp color.
func StageBadge(s spacedrep.Stage) string {
	return fg(StageColor(s)).Render(s.String())
}

func fg(c color.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

var (
	Title    = fg(Primary).Bold(true).Align(lipgloss.Center)
	Subtitle = fg(TextDim).Align(lipgloss.Center)
	Body     = fg(Text)
	Hint     = fg(TextDim).Italic(true)
	Rule     = fg(Border)

	Due  = fg(Accent).Bold(true)
	Good = fg(Success).Bold(true)
	Bad  = fg(Error).Bold(true)

	Selected   = fg(Primary).Bold(true)
	Unselected = fg(Text)
)
