package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cadence/internal/review"
	"github.com/abhisek/cadence/internal/screen"
	"github.com/abhisek/cadence/internal/spacedrep"
	"github.com/abhisek/cadence/internal/ui/components"
	"github.com/abhisek/cadence/internal/ui/layout"
	"github.com/abhisek/cadence/internal/ui/theme"
)

// maxPerBucket limits the entries listed under each horizon.
const maxPerBucket = 4

type overviewMsg struct {
	ov  spacedrep.Overview
	err error
}

// ScheduleScreen shows upcoming reviews grouped by horizon and the stage
// distribution of active topics.
type ScheduleScreen struct {
	svc    *review.Service
	ov     *spacedrep.Overview
	err    error
	stages bool // show the stage distribution instead of the buckets
}

var (
	_ screen.Screen          = (*ScheduleScreen)(nil)
	_ screen.Refresher       = (*ScheduleScreen)(nil)
	_ screen.KeyHintProvider = (*ScheduleScreen)(nil)
)

// New creates the schedule screen.
func New(svc *review.Service) *ScheduleScreen {
	return &ScheduleScreen{svc: svc}
}

func (s *ScheduleScreen) Init() tea.Cmd {
	return s.load()
}

func (s *ScheduleScreen) Refresh() tea.Cmd {
	return s.load()
}

func (s *ScheduleScreen) load() tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		ov, err := svc.Overview(ctx)
		return overviewMsg{ov: ov, err: err}
	}
}

func (s *ScheduleScreen) Title() string {
	return "Schedule"
}

func (s *ScheduleScreen) KeyHints() []layout.KeyHint {
	view := "Stages"
	if s.stages {
		view = "Buckets"
	}
	return []layout.KeyHint{
		{Key: "Tab", Description: view},
		{Key: "r", Description: "Reload"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ScheduleScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case overviewMsg:
		s.err = msg.err
		if msg.err == nil {
			s.ov = &msg.ov
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "s":
			s.stages = !s.stages
		case "r":
			return s, s.load()
		}
	}
	return s, nil
}

func (s *ScheduleScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var body string
	switch {
	case s.err != nil:
		body = theme.Bad.Render("⚠ " + s.err.Error())
	case s.ov == nil:
		body = theme.Hint.Render("Loading…")
	case s.ov.Total == 0:
		body = theme.Hint.Render("No active topics yet. Add one from the home screen.")
	case s.stages:
		body = renderStages(*s.ov, cw)
	default:
		body = renderBuckets(*s.ov, cw)
	}
	return components.Frame(lipgloss.NewStyle().Width(cw).Render(body), width, height)
}

func renderBuckets(ov spacedrep.Overview, cw int) string {
	var b strings.Builder
	for i, name := range spacedrep.BucketOrder {
		entries := ov.Buckets[name]
		heading := fmt.Sprintf("%s (%d)", name, len(entries))
		if name == spacedrep.BucketDueNow && len(entries) > 0 {
			b.WriteString(theme.Due.Render(heading))
		} else {
			b.WriteString(theme.Subtitle.Render(heading))
		}
		b.WriteString("\n")

		for j, e := range entries {
			if j == maxPerBucket {
				b.WriteString(theme.Hint.Render(fmt.Sprintf("  … %d more", len(entries)-maxPerBucket)))
				b.WriteString("\n")
				break
			}
			b.WriteString(renderEntry(e, cw))
			b.WriteString("\n")
		}
		if i < len(spacedrep.BucketOrder)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func renderEntry(e spacedrep.BucketEntry, cw int) string {
	left := "  " + e.ID
	when := "today"
	switch {
	case e.DaysUntil < 0:
		when = fmt.Sprintf("%dd overdue", -e.DaysUntil)
	case e.DaysUntil > 0:
		when = "in " + fmt.Sprintf("%dd", e.DaysUntil)
	}
	right := theme.StageBadge(e.Stage) + theme.Hint.Render("  "+when)
	gap := max(2, cw-lipgloss.Width(left)-lipgloss.Width(right))
	return theme.Body.Render(left) + strings.Repeat(" ", gap) + right
}

func renderStages(ov spacedrep.Overview, cw int) string {
	var b strings.Builder
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("%d active topics", ov.Total)))
	b.WriteString("\n\n")

	labelWidth := 0
	for _, st := range (spacedrep.StageTable{}).Stages() {
		labelWidth = max(labelWidth, len(st.String()))
	}
	for _, st := range (spacedrep.StageTable{}).Stages() {
		bar := components.NewProgressBar(st.String(), ov.StageShare(st), cw)
		bar.LabelWidth = labelWidth
		bar.Value = fmt.Sprintf("%3d", ov.Stages[st])
		bar.Fill = lipgloss.NewStyle().Background(theme.StageColor(st))
		b.WriteString(bar.View())
		b.WriteString("\n")
	}
	return b.String()
}
