// Package router keeps the TUI's screen stack. Screens navigate by returning
// the commands below instead of holding a reference to the router.
package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/cadence/internal/screen"
)

type (
	PushScreenMsg    struct{ Screen screen.Screen }
	PopScreenMsg     struct{}
	ReplaceScreenMsg struct{ Screen screen.Screen }
)

// Open shows s on top of the current screen.
func Open(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return PushScreenMsg{Screen: s} }
}

// Back returns to the screen below. It is a tea.Cmd.
func Back() tea.Msg { return PopScreenMsg{} }

// Handover swaps the current screen for s, so Back skips the old one.
func Handover(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return ReplaceScreenMsg{Screen: s} }
}

type layer struct {
	screen screen.Screen
	// stale is set when stored data changed while the screen was covered.
	stale bool
}

// Router is a stack of screens. The bottom screen is never removed.
type Router struct {
	layers []layer
}

func New(root screen.Screen) *Router {
	return &Router{layers: []layer{{screen: root}}}
}

func (r *Router) top() *layer { return &r.layers[len(r.layers)-1] }

func (r *Router) Active() screen.Screen { return r.top().screen }

func (r *Router) Depth() int { return len(r.layers) }

func (r *Router) Push(s screen.Screen) tea.Cmd {
	r.layers = append(r.layers, layer{screen: s})
	return s.Init()
}

// Pop uncovers the screen below and refreshes it if it went stale.
func (r *Router) Pop() tea.Cmd {
	if len(r.layers) == 1 {
		return nil
	}
	r.layers = r.layers[:len(r.layers)-1]
	l := r.top()
	if !l.stale {
		return nil
	}
	l.stale = false
	if rf, ok := l.screen.(screen.Refresher); ok {
		return rf.Refresh()
	}
	return nil
}

func (r *Router) Replace(s screen.Screen) tea.Cmd {
	*r.top() = layer{screen: s}
	return s.Init()
}

// Update applies navigation messages. Anything else goes to the active
// screen; a DataChangedMsg also marks every covered screen stale.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushScreenMsg:
		return r.Push(msg.Screen)
	case PopScreenMsg:
		return r.Pop()
	case ReplaceScreenMsg:
		return r.Replace(msg.Screen)
	case screen.DataChangedMsg:
		for i := range r.layers[:len(r.layers)-1] {
			r.layers[i].stale = true
		}
	}

	l := r.top()
	next, cmd := l.screen.Update(msg)
	l.screen = next
	return cmd
}

func (r *Router) View(width, height int) string {
	return r.Active().View(width, height)
}
