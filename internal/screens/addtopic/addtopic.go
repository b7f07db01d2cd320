package addtopic

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

const maxPathLen = 200

type addedMsg struct {
	path    string
	created []*spacedrep.Item
	err     error
}

// AddTopicScreen prompts for a topic path and creates it along with any
// missing parents.
type AddTopicScreen struct {
	svc    *review.Service
	input  components.TextInput
	saving bool
	notice string
}

var (
	_ screen.Screen          = (*AddTopicScreen)(nil)
	_ screen.KeyHintProvider = (*AddTopicScreen)(nil)
)

// New creates the add-topic screen.
func New(svc *review.Service) *AddTopicScreen {
	return &AddTopicScreen{
		svc:   svc,
		input: components.NewTextInput("Subject/Area/Topic", maxPathLen, validatePath),
	}
}

func validatePath(v string) error {
	_, err := topictree.Clean(v)
	return err
}

func (s *AddTopicScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *AddTopicScreen) Title() string {
	return "Add Topic"
}

func (s *AddTopicScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Add"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *AddTopicScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case addedMsg:
		s.saving = false
		if msg.err != nil {
			s.input.SetError(msg.err)
			return s, nil
		}
		s.input.Reset()
		s.notice = describe(msg.path, msg.created)
		return s, screen.DataChanged

	case tea.KeyMsg:
		if s.saving {
			return s, nil
		}
		if msg.String() == "enter" {
			if err := s.input.Check(); err != nil {
				return s, nil
			}
			s.saving = true
			s.notice = ""
			return s, s.add(s.input.Value())
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *AddTopicScreen) add(raw string) tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		path, err := topictree.Clean(raw)
		if err != nil {
			return addedMsg{err: err}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		created, err := svc.AddTopic(ctx, path, spacedrep.StatusActive)
		return addedMsg{path: path, created: created, err: err}
	}
}

func describe(path string, created []*spacedrep.Item) string {
	if len(created) == 0 {
		return path + " already exists"
	}
	ids := make([]string, len(created))
	for i, it := range created {
		ids[i] = it.ID
	}
	return fmt.Sprintf("Added %s", strings.Join(ids, ", "))
}

func (s *AddTopicScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString(theme.Title.Render("New topic"))
	b.WriteString("\n\n")
	b.WriteString(theme.Hint.Render("Separate levels with /, e.g. Math/Algebra/Quadratics."))
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render("Missing parent topics are created too."))
	b.WriteString("\n\n")
	b.WriteString(components.Card(s.input.View(), cw))
	if s.saving {
		b.WriteString("\n\n" + theme.Hint.Render("Saving…"))
	} else if s.notice != "" {
		b.WriteString("\n\n" + theme.Good.Render("✓ "+s.notice))
	}
	return components.Frame(lipgloss.NewStyle().Width(cw).Render(b.String()), width, height)
}
