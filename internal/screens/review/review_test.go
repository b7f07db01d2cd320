package review

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	svcpkg "github.com/abhisek/cadence/internal/review"
	"github.com/abhisek/cadence/internal/router"
	"github.com/abhisek/cadence/internal/screen"
	"github.com/abhisek/cadence/internal/screens/summary"
	"github.com/abhisek/cadence/internal/spacedrep"
	"github.com/abhisek/cadence/internal/store"
)

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func newTestService(t *testing.T, topics ...string) *svcpkg.Service {
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
	svc := svcpkg.NewService(st.ItemRepo(), sched, slog.New(slog.NewTextHandler(io.Discard, nil)))
	for _, p := range topics {
		if _, err := svc.AddTopic(context.Background(), p, spacedrep.StatusActive); err != nil {
			t.Fatalf("add %s: %v", p, err)
		}
	}
	return svc
}

// run executes cmd and feeds its message back into the screen.
func run(t *testing.T, s *ReviewScreen, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg := cmd()
	s.Update(msg)
	return msg
}

func TestReviewScreen_EmptyQueue(t *testing.T) {
	s := New(newTestService(t), testNow)
	run(t, s, s.Init())

	if s.phase != phaseEmpty {
		t.Fatalf("phase = %d, want empty", s.phase)
	}
	if !strings.Contains(s.View(80, 24), "All caught up") {
		t.Error("expected caught-up message")
	}

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected Enter to pop")
	}
}

func TestReviewScreen_RateAndAdvance(t *testing.T) {
	svc := newTestService(t, "Math/Algebra")
	s := New(svc, testNow)
	run(t, s, s.Init())

	// Math and Math/Algebra are both new and due.
	if len(s.queue) != 2 || s.phase != phaseAsking {
		t.Fatalf("queue = %d phase = %d", len(s.queue), s.phase)
	}
	first := s.current().ID

	_, cmd := s.Update(keyPress('3')) // easy
	if s.phase != phaseSaving {
		t.Fatalf("phase = %d, want saving", s.phase)
	}
	msg := cmd()
	_, cmd = s.Update(msg)
	if s.phase != phaseResult {
		t.Fatalf("phase = %d, want result (err %v)", s.phase, s.err)
	}
	if cmd == nil {
		t.Fatal("expected data-changed command")
	}
	if _, ok := cmd().(screen.DataChangedMsg); !ok {
		t.Error("expected DataChangedMsg after a review")
	}

	got, err := svc.Item(context.Background(), first)
	if err != nil {
		t.Fatalf("load %s: %v", first, err)
	}
	if len(got.History) != 1 || got.History[0].Difficulty != spacedrep.DifficultyEasy {
		t.Errorf("history = %+v, want one easy review", got.History)
	}
	if got.Stage != spacedrep.StageEarly {
		t.Errorf("stage = %s, want early_stage", got.Stage)
	}
	if !strings.Contains(s.View(100, 30), "next review") {
		t.Error("expected outcome in view")
	}

	s.Update(specialKey(tea.KeyEnter))
	if s.idx != 1 || s.phase != phaseAsking {
		t.Errorf("idx = %d phase = %d, want second item asking", s.idx, s.phase)
	}
}

func TestReviewScreen_FinishReplacesWithSummary(t *testing.T) {
	s := New(newTestService(t, "Physics"), testNow)
	run(t, s, s.Init())

	// Arrow to Hard then confirm.
	s.Update(specialKey(tea.KeyLeft))
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	run(t, s, cmd)

	_, cmd = s.Update(specialKey(tea.KeyEnter))
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", cmd())
	}
	sum, ok := msg.Screen.(*summary.SummaryScreen)
	if !ok {
		t.Fatalf("expected summary screen, got %T", msg.Screen)
	}
	if !strings.Contains(sum.View(80, 24), "hard 1") {
		t.Error("expected one hard review in summary")
	}
	if s.results[0].Event.Difficulty != spacedrep.DifficultyHard {
		t.Errorf("difficulty = %s, want hard", s.results[0].Event.Difficulty)
	}
}

func TestReviewScreen_QuitEarly(t *testing.T) {
	s := New(newTestService(t, "A", "B", "C"), testNow)
	run(t, s, s.Init())

	// Nothing reviewed yet: q just goes back.
	_, cmd := s.Update(keyPress('q'))
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Fatal("expected pop when nothing was reviewed")
	}

	_, cmd = s.Update(keyPress('2'))
	run(t, s, cmd)
	_, cmd = s.Update(keyPress('q'))
	if _, ok := cmd().(router.ReplaceScreenMsg); !ok {
		t.Fatal("expected summary after one review")
	}
}

func TestReviewScreen_KeyHintsFollowPhase(t *testing.T) {
	s := New(newTestService(t, "A"), testNow)
	run(t, s, s.Init())
	if len(s.KeyHints()) != 4 {
		t.Errorf("asking hints = %d, want 4", len(s.KeyHints()))
	}
	_, cmd := s.Update(keyPress('1'))
	run(t, s, cmd)
	if len(s.KeyHints()) != 2 {
		t.Errorf("result hints = %d, want 2", len(s.KeyHints()))
	}
}
