package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/m-mizutani/gt"

	"github.com/abhisek/cadence/internal/review"
	"github.com/abhisek/cadence/internal/router"
	"github.com/abhisek/cadence/internal/spacedrep"
	"github.com/abhisek/cadence/internal/store"
)

func newModel(t *testing.T, topics ...string) AppModel {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "cadence.db"))
	gt.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	created := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	sched, err := spacedrep.New(spacedrep.DefaultConfig(), spacedrep.WithClock(spacedrep.FixedClock{T: created}))
	gt.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := review.NewService(st.ItemRepo(), sched, logger)
	for _, p := range topics {
		_, err := svc.AddTopic(context.Background(), p, spacedrep.StatusActive)
		gt.NoError(t, err)
	}
	return newAppModel(Options{
		Service: svc,
		Logger:  logger,
		Now:     func() time.Time { return created.AddDate(1, 0, 0) },
	})
}

func update(m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(AppModel), cmd
}

func TestCounters(t *testing.T) {
	m := newModel(t, "go/channels", "go/maps")
	msg := m.countItems()()
	cm, ok := msg.(countersMsg)
	gt.True(t, ok)
	gt.NoError(t, cm.err)

	// "go" is created as the parent of both
	m, _ = update(m, cm)
	gt.V(t, m.counters.Topics).Equal(3)
	gt.V(t, m.counters.Due).Equal(3)
}

func TestClockRecounts(t *testing.T) {
	m := newModel(t)
	_, cmd := update(m, clockMsg{})
	gt.True(t, cmd != nil)
}

func TestEscape(t *testing.T) {
	m := newModel(t)
	esc := tea.KeyPressMsg{Code: tea.KeyEscape}

	t.Run("ignored at root", func(t *testing.T) {
		_, cmd := update(m, esc)
		gt.True(t, cmd == nil)
	})

	t.Run("goes back when nested", func(t *testing.T) {
		m.screens.Push(m.screens.Active())
		_, cmd := update(m, esc)
		_, ok := cmd().(router.PopScreenMsg)
		gt.True(t, ok)
	})
}

func TestView(t *testing.T) {
	m := newModel(t)
	m, _ = update(m, tea.WindowSizeMsg{Width: 40, Height: 10})
	gt.S(t, m.render()).Contains("at least 80 x 24")

	m, _ = update(m, tea.WindowSizeMsg{Width: 100, Height: 30})
	gt.S(t, m.render()).Contains("Cadence")
	gt.S(t, m.render()).Contains("Navigate")
}
