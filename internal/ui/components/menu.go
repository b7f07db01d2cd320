package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/cadence/internal/ui/theme"
)

type MenuItem struct {
	Label string
	// Badge is drawn after the label, e.g. a due count.
	Badge  string
	Action func() tea.Cmd
}

// Menu is a vertical list of actions. Arrows and j/k move with wrap-around,
// enter runs the selected action, and the digits 1-9 run an item directly.
type Menu struct {
	Items    []MenuItem
	Selected int
}

func NewMenu(items []MenuItem) Menu {
	return Menu{Items: items}
}

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(m.Items) == 0 {
		return m, nil
	}

	n := len(m.Items)
	switch key := kmsg.String(); key {
	case "up", "k":
		m.Selected = (m.Selected + n - 1) % n
	case "down", "j":
		m.Selected = (m.Selected + 1) % n
	case "home", "g":
		m.Selected = 0
	case "end", "G":
		m.Selected = n - 1
	case "enter":
		return m, m.run()
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if i := int(key[0] - '1'); i < n {
				m.Selected = i
				return m, m.run()
			}
		}
	}
	return m, nil
}

func (m Menu) run() tea.Cmd {
	if m.Selected < 0 || m.Selected >= len(m.Items) {
		return nil
	}
	if a := m.Items[m.Selected].Action; a != nil {
		return a()
	}
	return nil
}

func (m Menu) View() string {
	var b strings.Builder
	for i, item := range m.Items {
		if i > 0 {
			b.WriteByte('\n')
		}
		num := "  "
		if i < 9 {
			num = fmt.Sprintf("%d ", i+1)
		}
		if i == m.Selected {
			b.WriteString(theme.Selected.Render("▸ " + num + item.Label))
		} else {
			b.WriteString(theme.Unselected.Render("  "+num) + theme.Unselected.Render(item.Label))
		}
		if item.Badge != "" {
			b.WriteString("  " + theme.Due.Render(item.Badge))
		}
	}
	return b.String()
}
