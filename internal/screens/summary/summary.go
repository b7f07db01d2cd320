package summary

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cadence/internal/router"
	"github.com/abhisek/cadence/internal/screen"
	"github.com/abhisek/cadence/internal/spacedrep"
	"github.com/abhisek/cadence/internal/ui/components"
	"github.com/abhisek/cadence/internal/ui/layout"
	"github.com/abhisek/cadence/internal/ui/theme"
)

// Result is one review recorded during a session.
type Result struct {
	ID         string
	Event      spacedrep.ReviewEvent
	NextReview time.Time
}

// Totals counts session results by difficulty and stage movement.
type Totals struct {
	Reviewed int
	Hard     int
	Normal   int
	Easy     int
	Promoted int
	Demoted  int
	Mastered int
}

// Tally computes the totals for results.
func Tally(results []Result) Totals {
	var t Totals
	for _, r := range results {
		t.Reviewed++
		switch r.Event.Difficulty {
		case spacedrep.DifficultyHard:
			t.Hard++
		case spacedrep.DifficultyEasy:
			t.Easy++
		default:
			t.Normal++
		}
		switch {
		case r.Event.StageAfter > r.Event.StageBefore:
			t.Promoted++
			if r.Event.StageAfter == spacedrep.StageMastered {
				t.Mastered++
			}
		case r.Event.StageAfter < r.Event.StageBefore:
			t.Demoted++
		}
	}
	return t
}

// SummaryScreen displays the results of a review session.
type SummaryScreen struct {
	results  []Result
	skipped  int
	duration time.Duration
}

var (
	_ screen.Screen          = (*SummaryScreen)(nil)
	_ screen.KeyHintProvider = (*SummaryScreen)(nil)
)

// New creates a summary for results. skipped counts due items the session
// did not reach.
func New(results []Result, skipped int, duration time.Duration) *SummaryScreen {
	return &SummaryScreen{results: results, skipped: skipped, duration: duration}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Review Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, router.Back
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	center := func(str string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, str)
	}

	var b strings.Builder
	heading := "Session complete!"
	if len(s.results) == 0 {
		heading = "No reviews recorded"
	}
	b.WriteString(center(theme.Title.Render(heading)))
	b.WriteString("\n\n")

	mins := int(s.duration.Minutes())
	secs := int(s.duration.Seconds()) % 60
	b.WriteString(center(theme.Hint.Render(fmt.Sprintf("Duration: %d:%02d", mins, secs))))
	b.WriteString("\n\n")

	t := Tally(s.results)
	counts := fmt.Sprintf("%s   %s   %s",
		theme.Bad.Render(fmt.Sprintf("hard %d", t.Hard)),
		theme.Body.Render(fmt.Sprintf("normal %d", t.Normal)),
		theme.Good.Render(fmt.Sprintf("easy %d", t.Easy)))
	b.WriteString(center(counts))
	b.WriteString("\n")

	movement := fmt.Sprintf("▲ %d promoted   ▼ %d demoted", t.Promoted, t.Demoted)
	if t.Mastered > 0 {
		movement += fmt.Sprintf("   ★ %d mastered", t.Mastered)
	}
	if s.skipped > 0 {
		movement += fmt.Sprintf("   %d left for later", s.skipped)
	}
	b.WriteString(center(theme.Hint.Render(movement)))
	b.WriteString("\n\n")

	if len(s.results) > 0 {
		b.WriteString(center(theme.Rule.Render(strings.Repeat("─", cw))))
		b.WriteString("\n")
		for _, r := range s.results {
			b.WriteString(center(renderResult(r, cw)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func renderResult(r Result, cw int) string {
	stage := theme.StageBadge(r.Event.StageAfter)
	if r.Event.StageBefore != r.Event.StageAfter {
		stage = theme.StageBadge(r.Event.StageBefore) + " → " + theme.StageBadge(r.Event.StageAfter)
	}
	right := fmt.Sprintf("%s  next %s", stage, r.NextReview.Format("Jan 2"))

	style := theme.Body
	switch r.Event.Difficulty {
	case spacedrep.DifficultyHard:
		style = theme.Bad
	case spacedrep.DifficultyEasy:
		style = theme.Good
	}
	left := style.Render(r.ID)

	gap := max(2, cw-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right
}
