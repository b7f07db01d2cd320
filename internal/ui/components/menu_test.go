package components

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/m-mizutani/gt"
)

func menuOf(labels ...string) (Menu, *string) {
	ran := new(string)
	items := make([]MenuItem, len(labels))
	for i, l := range labels {
		items[i] = MenuItem{Label: l, Action: func() tea.Cmd {
			*ran = l
			return nil
		}}
	}
	return NewMenu(items), ran
}

func press(m Menu, keys ...tea.KeyPressMsg) Menu {
	for _, k := range keys {
		m, _ = m.Update(k)
	}
	return m
}

func TestMenu(t *testing.T) {
	up := tea.KeyPressMsg{Code: tea.KeyUp}
	down := tea.KeyPressMsg{Code: tea.KeyDown}
	enter := tea.KeyPressMsg{Code: tea.KeyEnter}

	t.Run("wraps around", func(t *testing.T) {
		m, _ := menuOf("review", "schedule", "topics")
		gt.V(t, press(m, up).Selected).Equal(2)
		gt.V(t, press(m, down, down, down).Selected).Equal(0)
	})

	t.Run("enter runs selected", func(t *testing.T) {
		m, ran := menuOf("review", "schedule", "topics")
		press(m, down, enter)
		gt.V(t, *ran).Equal("schedule")
	})

	t.Run("digit runs item", func(t *testing.T) {
		m, ran := menuOf("review", "schedule", "topics")
		m = press(m, tea.KeyPressMsg{Code: '3', Text: "3"})
		gt.V(t, *ran).Equal("topics")
		gt.V(t, m.Selected).Equal(2)
	})

	t.Run("digit out of range", func(t *testing.T) {
		m, ran := menuOf("review")
		m = press(m, tea.KeyPressMsg{Code: '5', Text: "5"})
		gt.V(t, *ran).Equal("")
		gt.V(t, m.Selected).Equal(0)
	})

	t.Run("badge shown", func(t *testing.T) {
		m := NewMenu([]MenuItem{{Label: "Review", Badge: "4"}})
		gt.S(t, m.View()).Contains("Review")
		gt.S(t, m.View()).Contains("4")
	})
}
