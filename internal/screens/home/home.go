package home

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cadence/internal/review"
	"github.com/abhisek/cadence/internal/router"
	"github.com/abhisek/cadence/internal/screen"
	"github.com/abhisek/cadence/internal/screens/addtopic"
	reviewscreen "github.com/abhisek/cadence/internal/screens/review"
	"github.com/abhisek/cadence/internal/screens/schedule"
	"github.com/abhisek/cadence/internal/screens/topics"
	"github.com/abhisek/cadence/internal/spacedrep"
	"github.com/abhisek/cadence/internal/ui/components"
	"github.com/abhisek/cadence/internal/ui/layout"
)

type stats struct {
	due      int
	active   int
	mastered int
	upcoming int // due within the next 7 days, excluding today
}

type statsLoadedMsg struct {
	stats stats
	err   error
}

// HomeScreen is the main menu.
type HomeScreen struct {
	svc   *review.Service
	menu  components.Menu
	stats stats
	err   error
}

var (
	_ screen.Screen    = (*HomeScreen)(nil)
	_ screen.Refresher = (*HomeScreen)(nil)
)

// New creates the home screen.
func New(svc *review.Service) *HomeScreen {
	h := &HomeScreen{svc: svc}
	h.menu = components.NewMenu(h.menuItems())
	return h
}

func (h *HomeScreen) menuItems() []components.MenuItem {
	badge := ""
	if h.stats.due > 0 {
		badge = fmt.Sprintf("%d", h.stats.due)
	}
	return []components.MenuItem{
		{Label: "Review due topics", Badge: badge, Action: func() tea.Cmd {
			return router.Open(reviewscreen.New(h.svc, time.Now()))
		}},
		{Label: "Schedule", Action: func() tea.Cmd { return router.Open(schedule.New(h.svc)) }},
		{Label: "Topics", Action: func() tea.Cmd { return router.Open(topics.New(h.svc)) }},
		{Label: "Add topic", Action: func() tea.Cmd { return router.Open(addtopic.New(h.svc)) }},
		{Label: "Exit", Action: func() tea.Cmd { return tea.Quit }},
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.load()
}

func (h *HomeScreen) Refresh() tea.Cmd {
	return h.load()
}

func (h *HomeScreen) load() tea.Cmd {
	svc := h.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		ov, err := svc.Overview(ctx)
		if err != nil {
			return statsLoadedMsg{err: err}
		}
		return statsLoadedMsg{stats: summarize(ov)}
	}
}

func summarize(ov spacedrep.Overview) stats {
	return stats{
		due:      len(ov.Buckets[spacedrep.BucketDueNow]),
		active:   ov.Total,
		mastered: ov.Stages[spacedrep.StageMastered],
		upcoming: len(ov.Buckets[spacedrep.BucketNext3Days]) + len(ov.Buckets[spacedrep.BucketNextWeek]),
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case statsLoadedMsg:
		h.err = msg.err
		if msg.err == nil {
			h.stats = msg.stats
			selected := h.menu.Selected
			h.menu = components.NewMenu(h.menuItems())
			h.menu.Selected = selected
		}
		return h, nil
	case screen.DataChangedMsg:
		return h, h.load()
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	compact := layout.IsCompact(width, height+8)
	cw := components.ContentWidth(width)

	sections := []string{renderTitle(cw, compact)}
	if h.err != nil {
		sections = append(sections, renderError(h.err, cw))
	} else {
		sections = append(sections, renderStats(h.stats, cw))
	}
	sections = append(sections, lipgloss.NewStyle().Width(cw).Render(h.menu.View()))

	return components.Frame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
