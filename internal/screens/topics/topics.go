// Package topics browses the topic tree and edits individual topics.
package topics

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
	"github.com/abhisek/cadence/internal/topictree"
	"github.com/abhisek/cadence/internal/ui/components"
	"github.com/abhisek/cadence/internal/ui/layout"
	"github.com/abhisek/cadence/internal/ui/theme"
)

type row struct {
	item  *spacedrep.Item
	depth int
}

type treeLoadedMsg struct {
	tree *topictree.Tree
	err  error
}

// actionDoneMsg reports the outcome of a propagate or status change.
type actionDoneMsg struct {
	notice string
	err    error
}

// TopicsScreen lists every topic as an indented tree. Enter opens a detail
// pane for the highlighted topic.
type TopicsScreen struct {
	svc  *review.Service
	now  func() time.Time
	tree *topictree.Tree
	rows []row

	cursor       int
	scrollOffset int
	detail       bool

	notice string
	err    error
}

var (
	_ screen.Screen          = (*TopicsScreen)(nil)
	_ screen.Refresher       = (*TopicsScreen)(nil)
	_ screen.KeyHintProvider = (*TopicsScreen)(nil)
)

// New creates the topics screen.
func New(svc *review.Service) *TopicsScreen {
	return &TopicsScreen{svc: svc, now: svc.Scheduler().Now}
}

func (s *TopicsScreen) Init() tea.Cmd {
	return s.load()
}

func (s *TopicsScreen) Refresh() tea.Cmd {
	return s.load()
}

func (s *TopicsScreen) load() tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		tree, err := svc.Tree(ctx)
		return treeLoadedMsg{tree: tree, err: err}
	}
}

func (s *TopicsScreen) Title() string {
	return "Topics"
}

func (s *TopicsScreen) KeyHints() []layout.KeyHint {
	if s.detail {
		return []layout.KeyHint{
			{Key: "p", Description: "Propagate"},
			{Key: "d", Description: "Enable/Disable"},
			{Key: "Enter", Description: "Close"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Details"},
		{Key: "p", Description: "Propagate"},
		{Key: "d", Description: "Enable/Disable"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *TopicsScreen) selected() *spacedrep.Item {
	if s.cursor >= 0 && s.cursor < len(s.rows) {
		return s.rows[s.cursor].item
	}
	return nil
}

func (s *TopicsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case treeLoadedMsg:
		if msg.err != nil {
			s.err = msg.err
			return s, nil
		}
		s.setTree(msg.tree)
		return s, nil

	case actionDoneMsg:
		s.err = msg.err
		s.notice = msg.notice
		if msg.err != nil {
			return s, nil
		}
		return s, tea.Batch(s.load(), screen.DataChanged)

	case tea.KeyMsg:
		return s.handleKey(msg.String())
	}
	return s, nil
}

// setTree rebuilds the rows and keeps the cursor on the same topic.
func (s *TopicsScreen) setTree(tree *topictree.Tree) {
	var keep string
	if it := s.selected(); it != nil {
		keep = it.ID
	}

	s.tree = tree
	s.rows = s.rows[:0]
	tree.Walk(func(it *spacedrep.Item, depth int) bool {
		s.rows = append(s.rows, row{item: it, depth: depth})
		return true
	})

	s.cursor = 0
	for i, r := range s.rows {
		if r.item.ID == keep {
			s.cursor = i
			break
		}
	}
	if len(s.rows) == 0 {
		s.detail = false
	}
}

func (s *TopicsScreen) handleKey(key string) (screen.Screen, tea.Cmd) {
	switch key {
	case "up", "k":
		if !s.detail && s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if !s.detail && s.cursor < len(s.rows)-1 {
			s.cursor++
		}
	case "enter":
		if s.selected() != nil {
			s.detail = !s.detail
		}
	case "p":
		if it := s.selected(); it != nil {
			s.notice = ""
			return s, s.propagate(it.ID)
		}
	case "d":
		if it := s.selected(); it != nil {
			s.notice = ""
			return s, s.toggleStatus(it)
		}
	}
	return s, nil
}

func (s *TopicsScreen) propagate(id string) tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		adjusted, err := svc.Propagate(ctx, id)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{notice: fmt.Sprintf("Adjusted %d subtopic(s) of %s", len(adjusted), id)}
	}
}

func (s *TopicsScreen) toggleStatus(it *spacedrep.Item) tea.Cmd {
	svc, id := s.svc, it.ID
	next := spacedrep.StatusDisabled
	if it.Status != spacedrep.StatusActive {
		next = spacedrep.StatusActive
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := svc.SetStatus(ctx, id, next); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{notice: fmt.Sprintf("%s is now %s", id, next)}
	}
}

func (s *TopicsScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var body string
	switch {
	case s.tree == nil && s.err != nil:
		body = theme.Bad.Render("⚠ " + s.err.Error())
	case s.tree == nil:
		body = theme.Hint.Render("Loading…")
	case len(s.rows) == 0:
		body = theme.Hint.Render("No topics yet. Add one from the home screen.")
	case s.detail:
		body = s.viewDetail(cw)
	default:
		body = s.viewList(cw, height-6)
	}

	if s.err != nil && s.tree != nil {
		body += "\n\n" + theme.Bad.Render("⚠ "+s.err.Error())
	} else if s.notice != "" {
		body += "\n\n" + theme.Good.Render(s.notice)
	}
	return components.Frame(lipgloss.NewStyle().Width(cw).Render(body), width, height)
}

func (s *TopicsScreen) viewList(cw, visible int) string {
	visible = max(3, visible)
	if s.cursor < s.scrollOffset {
		s.scrollOffset = s.cursor
	}
	if s.cursor >= s.scrollOffset+visible {
		s.scrollOffset = s.cursor - visible + 1
	}
	end := min(len(s.rows), s.scrollOffset+visible)

	now := s.now()
	var b strings.Builder
	for i := s.scrollOffset; i < end; i++ {
		r := s.rows[i]
		prefix := "  "
		nameStyle := theme.Unselected
		if i == s.cursor {
			prefix = "▸ "
			nameStyle = theme.Selected
		}
		if r.item.Status != spacedrep.StatusActive {
			nameStyle = nameStyle.Foreground(theme.TextDim).Strikethrough(true)
		}
		left := prefix + strings.Repeat("  ", r.depth) + nameStyle.Render(topictree.Name(r.item.ID))

		right := theme.StageBadge(r.item.Stage)
		if r.item.IsDue(now) {
			right = theme.Due.Render("due ") + right
		}
		gap := max(2, cw-lipgloss.Width(left)-lipgloss.Width(right))
		b.WriteString(left + strings.Repeat(" ", gap) + right)
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
