// Package screen holds the contract between the router and the TUI screens.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/cadence/internal/ui/layout"
)

// Screen is one page of the TUI. View draws the area between the header
// and the footer; Title goes into the header.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View(width, height int) string
	Title() string
}

// KeyHintProvider replaces the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Refresher reloads a screen that was covered while items changed.
type Refresher interface {
	Refresh() tea.Cmd
}

// DataChangedMsg announces that topics or review state were written.
type DataChangedMsg struct{}

// DataChanged is a tea.Cmd emitting DataChangedMsg.
func DataChanged() tea.Msg { return DataChangedMsg{} }
