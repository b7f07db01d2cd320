package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cadence/internal/ui/theme"
)

// Picker is a single-choice selector. Options can be chosen with the arrow
// keys and Enter or by their number.
type Picker struct {
	Prompt   string
	Options  []string
	Selected int
	Chosen   int // -1 until an option is chosen
}

// NewPicker creates a picker with the given option initially highlighted.
func NewPicker(prompt string, options []string, initial int) Picker {
	if initial < 0 || initial >= len(options) {
		initial = 0
	}
	return Picker{Prompt: prompt, Options: options, Selected: initial, Chosen: -1}
}

// Done reports whether an option has been chosen.
func (p Picker) Done() bool { return p.Chosen >= 0 }

// Update handles navigation and selection. It ignores input once an option
// is chosen.
func (p Picker) Update(msg tea.Msg) (Picker, tea.Cmd) {
	if p.Done() {
		return p, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k", "left", "h":
		if p.Selected > 0 {
			p.Selected--
		}
	case "down", "j", "right", "l":
		if p.Selected < len(p.Options)-1 {
			p.Selected++
		}
	case "enter":
		p.Chosen = p.Selected
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if i := int(key[0] - '1'); i < len(p.Options) {
				p.Selected = i
				p.Chosen = i
			}
		}
	}
	return p, nil
}

// View renders the options on one line.
func (p Picker) View() string {
	var b strings.Builder
	if p.Prompt != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(p.Prompt))
		b.WriteString("\n\n")
	}
	parts := make([]string, len(p.Options))
	for i, opt := range p.Options {
		label := fmt.Sprintf(" %d %s ", i+1, opt)
		switch {
		case i == p.Chosen:
			parts[i] = lipgloss.NewStyle().Foreground(theme.BgDark).Background(theme.Success).Bold(true).Render(label)
		case p.Done():
			parts[i] = lipgloss.NewStyle().Foreground(theme.TextDim).Render(label)
		case i == p.Selected:
			parts[i] = lipgloss.NewStyle().Foreground(theme.BgDark).Background(theme.Primary).Bold(true).Render(label)
		default:
			parts[i] = lipgloss.NewStyle().Foreground(theme.Text).Render(label)
		}
	}
	b.WriteString(strings.Join(parts, "  "))
	return b.String()
}
