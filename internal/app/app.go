// Package app is the root Bubble Tea model of the cadence TUI. It owns the
// screen stack and the header counters and draws the chrome around the
// active screen.
package app

import (
	"context"
	"log/slog"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cadence/internal/logging"
	"github.com/abhisek/cadence/internal/review"
	"github.com/abhisek/cadence/internal/router"
	"github.com/abhisek/cadence/internal/screen"
	"github.com/abhisek/cadence/internal/screens/home"
	"github.com/abhisek/cadence/internal/ui/layout"
)

// countersEvery is how often the header re-counts due items while idle.
// Items fall due with time, not only after reviews.
const countersEvery = time.Minute

type Options struct {
	Service *review.Service
	Logger  *slog.Logger
	// Now is the clock used for due counts. Defaults to time.Now.
	Now func() time.Time
}

type (
	countersMsg struct {
		stats layout.HeaderStats
		err   error
	}
	clockMsg struct{}
)

type AppModel struct {
	screens *router.Router
	svc     *review.Service
	logger  *slog.Logger
	now     func() time.Time

	counters      layout.HeaderStats
	width, height int
}

func newAppModel(opts Options) AppModel {
	m := AppModel{
		screens: router.New(home.New(opts.Service)),
		svc:     opts.Service,
		logger:  opts.Logger,
		now:     opts.Now,
	}
	if m.logger == nil {
		m.logger = logging.Default()
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.screens.Active().Init(), m.countItems(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(countersEvery, func(time.Time) tea.Msg { return clockMsg{} })
}

func (m AppModel) countItems() tea.Cmd {
	svc, now := m.svc, m.now()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var msg countersMsg
		tree, err := svc.Tree(ctx)
		if err != nil {
			msg.err = err
			return msg
		}
		due, err := svc.Due(ctx, now)
		if err != nil {
			msg.err = err
			return msg
		}
		msg.stats = layout.HeaderStats{Due: len(due), Topics: tree.Len()}
		return msg
	}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case countersMsg:
		if msg.err != nil {
			m.logger.Warn("count items for header", logging.ErrAttr(msg.err))
		} else {
			m.counters = msg.stats
		}
		return m, nil

	case clockMsg:
		return m, tea.Batch(m.countItems(), tick())

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.screens.Depth() == 1 {
				return m, nil
			}
			return m, router.Back
		}
	}

	cmd := m.screens.Update(msg)
	switch msg.(type) {
	case router.PopScreenMsg, router.ReplaceScreenMsg, screen.DataChangedMsg:
		cmd = tea.Batch(cmd, m.countItems())
	}
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}
	active := m.screens.Active()
	header := layout.RenderHeader(active.Title(), m.counters, m.width)
	footer := layout.RenderFooter(m.keyHints(active), m.width)
	body := m.screens.View(m.width, max(0, m.height-lipgloss.Height(header)-lipgloss.Height(footer)))
	return layout.RenderFrame(header, body, footer, m.width, m.height)
}

var (
	rootHints = []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "1-9", Description: "Jump"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
	nestedHints = []layout.KeyHint{
		{Key: "Esc", Description: "Back"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
)

func (m AppModel) keyHints(active screen.Screen) []layout.KeyHint {
	if p, ok := active.(screen.KeyHintProvider); ok {
		return p.KeyHints()
	}
	if m.screens.Depth() > 1 {
		return nestedHints
	}
	return rootHints
}

// Run blocks until the user quits or ctx ends.
func Run(ctx context.Context, opts Options) error {
	_, err := tea.NewProgram(newAppModel(opts), tea.WithContext(ctx)).Run()
	return err
}
