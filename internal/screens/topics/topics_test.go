package topics

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

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func newTestService(t *testing.T, topics ...string) *review.Service {
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
	svc := review.NewService(st.ItemRepo(), sched, slog.New(slog.NewTextHandler(io.Discard, nil)))
	for _, p := range topics {
		if _, err := svc.AddTopic(context.Background(), p, spacedrep.StatusActive); err != nil {
			t.Fatalf("add %s: %v", p, err)
		}
	}
	return svc
}

func loaded(t *testing.T, svc *review.Service) *TopicsScreen {
	t.Helper()
	s := New(svc)
	s.Update(s.Init()())
	if s.err != nil {
		t.Fatalf("load tree: %v", s.err)
	}
	return s
}

// apply runs an action command and feeds the result back, returning the
// follow-up command.
func apply(t *testing.T, s *TopicsScreen, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	_, next := s.Update(cmd())
	if s.err != nil {
		t.Fatalf("action failed: %v", s.err)
	}
	return next
}

func TestTopicsScreen_TreeOrder(t *testing.T) {
	s := loaded(t, newTestService(t, "Math/Geometry", "Math/Algebra", "Art"))

	var got []string
	for _, r := range s.rows {
		got = append(got, r.item.ID)
	}
	want := []string{"Art", "Math", "Math/Algebra", "Math/Geometry"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("rows = %v, want %v", got, want)
	}
	if s.rows[2].depth != 1 {
		t.Errorf("depth of Math/Algebra = %d, want 1", s.rows[2].depth)
	}
}

func TestTopicsScreen_Navigation(t *testing.T) {
	s := loaded(t, newTestService(t, "A", "B"))

	s.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if s.cursor != 0 {
		t.Errorf("cursor = %d after up at top, want 0", s.cursor)
	}
	s.Update(keyPress('j'))
	s.Update(keyPress('j'))
	if s.cursor != 1 {
		t.Errorf("cursor = %d, want 1 (clamped)", s.cursor)
	}
}

func TestTopicsScreen_Detail(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, "Math/Algebra", "Math/Geometry")
	if _, _, err := svc.Review(ctx, "Math/Algebra", spacedrep.Label(spacedrep.DifficultyNormal)); err != nil {
		t.Fatal(err)
	}
	s := loaded(t, svc)
	s.Update(keyPress('j')) // Math/Algebra

	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !s.detail {
		t.Fatal("expected Enter to open the detail pane")
	}
	view := s.View(100, 40)
	for _, want := range []string{"Math/Algebra", "History (1)", "normal", "Related", "Math/Geometry"} {
		if !strings.Contains(view, want) {
			t.Errorf("detail view missing %q", want)
		}
	}
	if len(s.KeyHints()) != 4 {
		t.Errorf("detail hints = %d, want 4", len(s.KeyHints()))
	}
}

func TestTopicsScreen_ToggleStatus(t *testing.T) {
	svc := newTestService(t, "Physics")
	s := loaded(t, svc)

	_, cmd := s.Update(keyPress('d'))
	next := apply(t, s, cmd)
	if next == nil {
		t.Fatal("expected reload after status change")
	}
	if !strings.Contains(s.notice, "disabled") {
		t.Errorf("notice = %q", s.notice)
	}

	it, err := svc.Item(context.Background(), "Physics")
	if err != nil {
		t.Fatal(err)
	}
	if it.Status != spacedrep.StatusDisabled {
		t.Errorf("status = %s, want disabled", it.Status)
	}

	// Reload the rows and toggle back.
	s.Update(s.load()())
	_, cmd = s.Update(keyPress('d'))
	apply(t, s, cmd)
	it, _ = svc.Item(context.Background(), "Physics")
	if it.Status != spacedrep.StatusActive {
		t.Errorf("status = %s, want active", it.Status)
	}
}

func TestTopicsScreen_Propagate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, "Math/Algebra")
	// An easy parent review pushes children up by 10%.
	if _, _, err := svc.Review(ctx, "Math", spacedrep.Label(spacedrep.DifficultyEasy)); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.Review(ctx, "Math/Algebra", spacedrep.Label(spacedrep.DifficultyNormal)); err != nil {
		t.Fatal(err)
	}
	s := loaded(t, svc)

	_, cmd := s.Update(keyPress('p'))
	next := apply(t, s, cmd)
	if next == nil {
		t.Fatal("expected reload after propagate")
	}
	if !strings.Contains(s.notice, "Adjusted 1") {
		t.Errorf("notice = %q", s.notice)
	}

	child, err := svc.Item(ctx, "Math/Algebra")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := child.Performance, 0.55; got < want-1e-9 || got > want+1e-9 {
		t.Errorf("child performance = %v, want %v", got, want)
	}
}

func TestTopicsScreen_ReloadOnDataChange(t *testing.T) {
	s := loaded(t, newTestService(t, "A"))
	_, cmd := s.Update(actionDoneMsg{notice: "ok"})
	if cmd == nil {
		t.Fatal("expected batch command")
	}
	msgs, ok := cmd().(tea.BatchMsg)
	if !ok {
		t.Fatalf("expected BatchMsg, got %T", cmd())
	}
	var sawChange bool
	for _, c := range msgs {
		if _, ok := c().(screen.DataChangedMsg); ok {
			sawChange = true
		}
	}
	if !sawChange {
		t.Error("expected DataChangedMsg in batch")
	}
}

func TestTopicsScreen_Empty(t *testing.T) {
	s := loaded(t, newTestService(t))
	if !strings.Contains(s.View(80, 24), "No topics yet") {
		t.Error("expected empty message")
	}
	if _, cmd := s.Update(keyPress('p')); cmd != nil {
		t.Error("expected no command without a selection")
	}
}
