// Package review is the interactive review session: it walks the due queue
// and records a difficulty for each topic.
package review

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	svcpkg "github.com/abhisek/cadence/internal/review"
	"github.com/abhisek/cadence/internal/router"
	"github.com/abhisek/cadence/internal/screen"
	"github.com/abhisek/cadence/internal/screens/summary"
	"github.com/abhisek/cadence/internal/spacedrep"
	"github.com/abhisek/cadence/internal/topictree"
	"github.com/abhisek/cadence/internal/ui/components"
	"github.com/abhisek/cadence/internal/ui/layout"
	"github.com/abhisek/cadence/internal/ui/theme"
)

type phase int

const (
	phaseLoading phase = iota
	phaseEmpty
	phaseAsking
	phaseSaving
	phaseResult
	phaseFailed
)

var difficulties = []spacedrep.Difficulty{
	spacedrep.DifficultyHard,
	spacedrep.DifficultyNormal,
	spacedrep.DifficultyEasy,
}

type dueLoadedMsg struct {
	items []*spacedrep.Item
	err   error
}

type reviewedMsg struct {
	item *spacedrep.Item
	ev   spacedrep.ReviewEvent
	err  error
}

// ReviewScreen runs one pass over the topics due on a date.
type ReviewScreen struct {
	svc     *svcpkg.Service
	asOf    time.Time
	started time.Time

	phase   phase
	queue   []*spacedrep.Item
	idx     int
	picker  components.Picker
	results []summary.Result
	err     error
}

var (
	_ screen.Screen          = (*ReviewScreen)(nil)
	_ screen.KeyHintProvider = (*ReviewScreen)(nil)
)

// New creates a review session for the items due on asOf's date.
func New(svc *svcpkg.Service, asOf time.Time) *ReviewScreen {
	return &ReviewScreen{svc: svc, asOf: asOf, started: time.Now()}
}

func (s *ReviewScreen) Init() tea.Cmd {
	svc, asOf := s.svc, s.asOf
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		items, err := svc.Due(ctx, asOf)
		return dueLoadedMsg{items: items, err: err}
	}
}

func (s *ReviewScreen) Title() string {
	return "Review"
}

func (s *ReviewScreen) KeyHints() []layout.KeyHint {
	switch s.phase {
	case phaseAsking:
		return []layout.KeyHint{
			{Key: "1-3", Description: "Rate"},
			{Key: "←→", Description: "Move"},
			{Key: "Enter", Description: "Confirm"},
			{Key: "q", Description: "Finish"},
		}
	case phaseResult:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Next"},
			{Key: "q", Description: "Finish"},
		}
	default:
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
}

func (s *ReviewScreen) current() *spacedrep.Item {
	if s.idx < len(s.queue) {
		return s.queue[s.idx]
	}
	return nil
}

func (s *ReviewScreen) newPicker() components.Picker {
	labels := make([]string, len(difficulties))
	for i, d := range difficulties {
		labels[i] = strings.ToUpper(string(d[:1])) + string(d[1:])
	}
	return components.NewPicker("How hard was it to recall?", labels, 1)
}

func (s *ReviewScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case dueLoadedMsg:
		if msg.err != nil {
			s.err = msg.err
			s.phase = phaseFailed
			return s, nil
		}
		s.queue = msg.items
		if len(s.queue) == 0 {
			s.phase = phaseEmpty
			return s, nil
		}
		s.phase = phaseAsking
		s.picker = s.newPicker()
		return s, nil

	case reviewedMsg:
		if msg.err != nil {
			// Let the user try again; the service reloads the item.
			s.err = msg.err
			s.phase = phaseAsking
			s.picker = s.newPicker()
			return s, nil
		}
		s.err = nil
		s.results = append(s.results, summary.Result{
			ID:         msg.item.ID,
			Event:      msg.ev,
			NextReview: msg.item.NextReview,
		})
		s.phase = phaseResult
		return s, screen.DataChanged

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *ReviewScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	switch s.phase {
	case phaseEmpty, phaseFailed:
		if key == "enter" || key == "q" {
			return s, router.Back
		}

	case phaseAsking:
		if key == "q" {
			return s, s.finish()
		}
		s.picker, _ = s.picker.Update(msg)
		if s.picker.Done() {
			s.phase = phaseSaving
			return s, s.submit(difficulties[s.picker.Chosen])
		}

	case phaseResult:
		switch key {
		case "q":
			return s, s.finish()
		case "enter", "space", " ":
			s.idx++
			if s.idx >= len(s.queue) {
				return s, s.finish()
			}
			s.phase = phaseAsking
			s.picker = s.newPicker()
		}
	}
	return s, nil
}

func (s *ReviewScreen) submit(d spacedrep.Difficulty) tea.Cmd {
	svc, id := s.svc, s.current().ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		item, ev, err := svc.Review(ctx, id, spacedrep.Label(d))
		return reviewedMsg{item: item, ev: ev, err: err}
	}
}

// finish hands over to the summary, or goes back when nothing was reviewed.
func (s *ReviewScreen) finish() tea.Cmd {
	if len(s.results) == 0 {
		return router.Back
	}
	reached := s.idx
	if s.phase == phaseResult {
		reached++
	}
	sum := summary.New(s.results, max(0, len(s.queue)-reached), time.Since(s.started))
	return router.Handover(sum)
}

func (s *ReviewScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	var body string
	switch s.phase {
	case phaseLoading:
		body = theme.Hint.Render("Loading due topics…")
	case phaseEmpty:
		body = theme.Title.Render("All caught up!") + "\n\n" +
			theme.Hint.Render("Nothing is due on "+s.asOf.Format("Mon Jan 2")+".")
	case phaseFailed:
		body = theme.Bad.Render("⚠ "+s.err.Error()) + "\n\n" + theme.Hint.Render("Press Enter to go back.")
	default:
		body = s.viewItem(cw)
	}
	return components.Frame(body, width, height)
}

func (s *ReviewScreen) viewItem(cw int) string {
	it := s.current()
	var b strings.Builder

	b.WriteString(theme.Hint.Render(fmt.Sprintf("Topic %d of %d", s.idx+1, len(s.queue))))
	b.WriteString("\n\n")

	var card strings.Builder
	if parent, ok := topictree.Parent(it.ID); ok {
		card.WriteString(theme.Hint.Render(parent + " /"))
		card.WriteString("\n")
	}
	card.WriteString(theme.Title.Render(topictree.Name(it.ID)))
	card.WriteString("\n\n")
	card.WriteString(theme.StageBadge(it.Stage))
	card.WriteString(theme.Hint.Render(fmt.Sprintf("   interval %.1fd", it.IntervalDays)))
	if it.LastReviewed != nil {
		card.WriteString(theme.Hint.Render("   last " + it.LastReviewed.Format("Jan 2")))
	} else {
		card.WriteString(theme.Hint.Render("   never reviewed"))
	}
	if od := it.OverdueDays(s.asOf); od >= 1 {
		card.WriteString("   " + theme.Due.Render(fmt.Sprintf("%d days overdue", int(od))))
	}
	b.WriteString(components.Card(card.String(), cw))
	b.WriteString("\n\n")

	switch s.phase {
	case phaseSaving:
		b.WriteString(theme.Hint.Render("Scheduling…"))
	case phaseResult:
		b.WriteString(renderOutcome(s.results[len(s.results)-1]))
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Render("Press Enter to continue."))
	default:
		b.WriteString(s.picker.View())
		if s.err != nil {
			b.WriteString("\n\n")
			b.WriteString(theme.Bad.Render("⚠ " + s.err.Error()))
		}
	}
	return lipgloss.NewStyle().Width(cw).Render(b.String())
}

func renderOutcome(r summary.Result) string {
	ev := r.Event
	style := theme.Body
	switch ev.Difficulty {
	case spacedrep.DifficultyHard:
		style = theme.Bad
	case spacedrep.DifficultyEasy:
		style = theme.Good
	}

	lines := []string{
		style.Render(fmt.Sprintf("%s · next review %s", ev.Difficulty, r.NextReview.Format("Mon Jan 2"))),
	}
	details := []string{fmt.Sprintf("interval %.1fd", ev.IntervalApplied)}
	if ev.HalfLife != nil {
		details = append(details, fmt.Sprintf("half-life %.1fd (%s)", *ev.HalfLife, ev.HalfLifeSource))
	}
	if ev.RecallProbability != nil {
		details = append(details, fmt.Sprintf("recall %.0f%%", *ev.RecallProbability*100))
	}
	lines = append(lines, theme.Hint.Render(strings.Join(details, " · ")))
	if ev.StageBefore != ev.StageAfter {
		lines = append(lines, theme.StageBadge(ev.StageBefore)+" → "+theme.StageBadge(ev.StageAfter))
	}
	return strings.Join(lines, "\n")
}
