package addtopic

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
	"github.com/abhisek/cadence/internal/screen"
	"github.com/abhisek/cadence/internal/spacedrep"
	"github.com/abhisek/cadence/internal/store"
)

func newTestService(t *testing.T) *review.Service {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "cadence.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	sched, err := spacedrep.New(spacedrep.DefaultConfig(), spacedrep.WithClock(spacedrep.FixedClock{T: now}))
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	return review.NewService(st.ItemRepo(), sched, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func typeText(s *AddTopicScreen, text string) {
	for _, r := range text {
		s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func TestAddTopicScreen_CreatesPath(t *testing.T) {
	svc := newTestService(t)
	s := New(svc)
	typeText(s, "Math/Algebra")
	if s.input.Value() != "Math/Algebra" {
		t.Fatalf("value = %q", s.input.Value())
	}

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil || !s.saving {
		t.Fatal("expected save command")
	}
	_, cmd = s.Update(cmd())
	if cmd == nil {
		t.Fatal("expected data-changed command")
	}
	if _, ok := cmd().(screen.DataChangedMsg); !ok {
		t.Error("expected DataChangedMsg")
	}
	if s.notice != "Added Math, Math/Algebra" {
		t.Errorf("notice = %q", s.notice)
	}
	if s.input.Value() != "" {
		t.Errorf("input not reset: %q", s.input.Value())
	}

	tree, err := svc.Tree(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if tree.Len() != 2 {
		t.Errorf("tree has %d items, want 2", tree.Len())
	}
}

func TestAddTopicScreen_Existing(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.AddTopic(context.Background(), "Art", spacedrep.StatusActive); err != nil {
		t.Fatal(err)
	}
	s := New(svc)
	typeText(s, "Art")
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	s.Update(cmd())
	if s.notice != "Art already exists" {
		t.Errorf("notice = %q", s.notice)
	}
}

func TestAddTopicScreen_RejectsInvalidPath(t *testing.T) {
	s := New(newTestService(t))
	typeText(s, "Math//Algebra")

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd != nil || s.saving {
		t.Fatal("expected no save for an invalid path")
	}
	if !strings.Contains(s.View(80, 24), "✗") {
		t.Error("expected validation error in view")
	}
}

func TestAddTopicScreen_EmptyPath(t *testing.T) {
	s := New(newTestService(t))
	if _, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter}); cmd != nil {
		t.Error("expected no save for an empty path")
	}
}
