package topics

import (
	"fmt"
	"strings"

	"github.com/abhisek/cadence/internal/spacedrep"
	"github.com/abhisek/cadence/internal/topictree"
	"github.com/abhisek/cadence/internal/ui/components"
	"github.com/abhisek/cadence/internal/ui/theme"
)

// historyLimit is the number of recent reviews shown in the detail pane.
const historyLimit = 5

func (s *TopicsScreen) viewDetail(cw int) string {
	it := s.selected()
	now := s.now()

	var b strings.Builder
	b.WriteString(theme.Title.Render(it.ID))
	b.WriteString("\n\n")

	var info strings.Builder
	fmt.Fprintf(&info, "%s   %s\n", theme.StageBadge(it.Stage), theme.Hint.Render(string(it.Status)))
	fmt.Fprintf(&info, "Next review  %s", it.NextReview.Format("Mon Jan 2 2006"))
	if it.IsDue(now) {
		info.WriteString("  " + theme.Due.Render("due"))
	}
	info.WriteString("\n")
	fmt.Fprintf(&info, "Interval     %.1f days\n", it.IntervalDays)
	fmt.Fprintf(&info, "Performance  %.2f", it.Performance)
	if it.HalfLife != nil {
		fmt.Fprintf(&info, "\nHalf-life    %.1f days", *it.HalfLife)
	}
	b.WriteString(components.Card(info.String(), cw))
	b.WriteString("\n\n")

	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("History (%d)", len(it.History))))
	b.WriteString("\n")
	if len(it.History) == 0 {
		b.WriteString(theme.Hint.Render("  never reviewed"))
		b.WriteString("\n")
	}
	start := max(0, len(it.History)-historyLimit)
	for i := len(it.History) - 1; i >= start; i-- {
		b.WriteString(renderEvent(it.History[i]))
		b.WriteString("\n")
	}

	related := s.tree.Related(it.ID)
	if len(related) > 0 {
		b.WriteString("\n")
		b.WriteString(theme.Subtitle.Render("Related"))
		b.WriteString("\n")
		names := make([]string, len(related))
		for i, r := range related {
			names[i] = r.ID
		}
		b.WriteString(theme.Hint.Render("  " + strings.Join(names, ", ")))
	}
	if children := s.tree.Children(it.ID); len(children) > 0 {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render(fmt.Sprintf("  %d subtopic(s) under %s", len(children), topictree.Name(it.ID))))
	}
	return b.String()
}

func renderEvent(ev spacedrep.ReviewEvent) string {
	style := theme.Body
	switch ev.Difficulty {
	case spacedrep.DifficultyHard:
		style = theme.Bad
	case spacedrep.DifficultyEasy:
		style = theme.Good
	}
	line := fmt.Sprintf("  %s  %-6s  %5.1fd", ev.Date.Format("Jan 02"), ev.Difficulty, ev.IntervalApplied)
	if ev.RecallProbability != nil {
		line += fmt.Sprintf("  recall %3.0f%%", *ev.RecallProbability*100)
	}
	return style.Render(line)
}
