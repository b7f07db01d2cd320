package schedule

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/cadence/internal/review"
	"github.com/abhisek/cadence/internal/spacedrep"
	"github.com/abhisek/cadence/internal/store"
)

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) *review.Service {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "cadence.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	sched, err := spacedrep.New(spacedrep.DefaultConfig(), spacedrep.WithClock(spacedrep.FixedClock{T: testNow}))
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	return review.NewService(st.ItemRepo(), sched, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func loaded(t *testing.T, svc *review.Service) *ScheduleScreen {
	t.Helper()
	s := New(svc)
	s.Update(s.Init()())
	if s.err != nil {
		t.Fatalf("load overview: %v", s.err)
	}
	return s
}

func TestScheduleScreen_Empty(t *testing.T) {
	s := loaded(t, newTestService(t))
	if !strings.Contains(s.View(80, 30), "No active topics") {
		t.Error("expected empty message")
	}
}

func TestScheduleScreen_Buckets(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	if _, err := svc.AddTopic(ctx, "Math/Algebra", spacedrep.StatusActive); err != nil {
		t.Fatal(err)
	}
	// An easy first review moves Math/Algebra out to the next few days.
	if _, _, err := svc.Review(ctx, "Math/Algebra", spacedrep.Label(spacedrep.DifficultyEasy)); err != nil {
		t.Fatal(err)
	}

	s := loaded(t, svc)
	if got := len(s.ov.Buckets[spacedrep.BucketDueNow]); got != 1 {
		t.Errorf("due now = %d, want 1", got)
	}
	if got := len(s.ov.Buckets[spacedrep.BucketNext3Days]); got != 1 {
		t.Errorf("next 3 days = %d, want 1", got)
	}

	view := s.View(100, 40)
	for _, want := range []string{"Due Now (1)", "Next 3 Days (1)", "Math/Algebra", "in 1d"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestScheduleScreen_ToggleStages(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.AddTopic(context.Background(), "Physics", spacedrep.StatusActive); err != nil {
		t.Fatal(err)
	}
	s := loaded(t, svc)

	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	if !s.stages {
		t.Fatal("expected Tab to switch to stages")
	}
	view := s.View(100, 40)
	for _, st := range (spacedrep.StageTable{}).Stages() {
		if !strings.Contains(view, st.String()) {
			t.Errorf("view missing stage %s", st)
		}
	}
	if s.KeyHints()[0].Description != "Buckets" {
		t.Errorf("tab hint = %q, want Buckets", s.KeyHints()[0].Description)
	}
}

func TestScheduleScreen_Reload(t *testing.T) {
	s := loaded(t, newTestService(t))
	_, cmd := s.Update(tea.KeyPressMsg{Code: 'r', Text: "r"})
	if cmd == nil {
		t.Fatal("expected reload command")
	}
	if _, ok := cmd().(overviewMsg); !ok {
		t.Error("expected overviewMsg from reload")
	}
	if s.Refresh() == nil {
		t.Error("expected Refresh to reload")
	}
}
