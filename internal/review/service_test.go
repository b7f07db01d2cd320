package review

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/cadence/internal/spacedrep"
	"github.com/abhisek/cadence/internal/topictree"
)

// memRepo is an in-memory Repository with the same version rules as the store.
type memRepo struct {
	mu    sync.Mutex
	items map[string]*spacedrep.Item
}

func newMemRepo() *memRepo {
	return &memRepo{items: make(map[string]*spacedrep.Item)}
}

func (r *memRepo) LoadItem(_ context.Context, id string) (*spacedrep.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return nil, spacedrep.ErrItemNotFound
	}
	return it.Clone(), nil
}

func (r *memRepo) SaveItem(_ context.Context, item *spacedrep.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.items[item.ID]
	switch {
	case !ok && item.Version != 0:
		return spacedrep.ErrItemNotFound
	case ok && cur.Version != item.Version:
		return spacedrep.ErrVersionConflict
	case ok && len(item.History) < len(cur.History):
		return spacedrep.ErrVersionConflict
	}
	item.Version++
	r.items[item.ID] = item.Clone()
	return nil
}

func (r *memRepo) ListItems(_ context.Context) ([]*spacedrep.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*spacedrep.Item, 0, len(r.items))
	for _, it := range r.items {
		out = append(out, it.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

var now = time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, strict bool) (*Service, *memRepo) {
	t.Helper()
	cfg := spacedrep.DefaultConfig()
	cfg.Strict = strict
	sched, err := spacedrep.New(cfg, spacedrep.WithClock(spacedrep.FixedClock{T: now}))
	if err != nil {
		t.Fatal(err)
	}
	repo := newMemRepo()
	return NewService(repo, sched, slog.New(slog.NewTextHandler(io.Discard, nil))), repo
}

func TestService_AddTopicAndReview(t *testing.T) {
	svc, repo := newTestService(t, true)
	ctx := context.Background()

	created, err := svc.AddTopic(ctx, "Math/Algebra/Linear", spacedrep.StatusActive)
	if err != nil {
		t.Fatal(err)
	}
	if len(created) != 3 {
		t.Fatalf("created %d items", len(created))
	}
	again, err := svc.AddTopic(ctx, "Math/Algebra/Linear", spacedrep.StatusActive)
	if err != nil || len(again) != 0 {
		t.Fatalf("re-adding created %d items, err %v", len(again), err)
	}

	item, ev, err := svc.Review(ctx, "Math/Algebra/Linear", spacedrep.Label(spacedrep.DifficultyEasy))
	if err != nil {
		t.Fatal(err)
	}
	if item.Stage != spacedrep.StageEarly || ev.IntervalApplied != 1 {
		t.Errorf("stage %s interval %g", item.Stage, ev.IntervalApplied)
	}

	stored, _ := repo.LoadItem(ctx, "Math/Algebra/Linear")
	if len(stored.History) != 1 || stored.Version != 2 {
		t.Errorf("stored history %d version %d", len(stored.History), stored.Version)
	}

	_, _, err = svc.Review(ctx, "Physics", spacedrep.Label(spacedrep.DifficultyNormal))
	var unknown *spacedrep.UnknownItemError
	if !errors.As(err, &unknown) {
		t.Errorf("err = %v, want UnknownItemError", err)
	}
}

func TestService_ConcurrentReviews(t *testing.T) {
	svc, repo := newTestService(t, false)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := svc.Review(ctx, "Chem", spacedrep.Label(spacedrep.DifficultyNormal)); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	stored, err := repo.LoadItem(ctx, "Chem")
	if err != nil {
		t.Fatal(err)
	}
	if len(stored.History) != 20 {
		t.Errorf("history has %d events, want 20", len(stored.History))
	}
}

func TestService_SetStatusAndDue(t *testing.T) {
	svc, _ := newTestService(t, false)
	ctx := context.Background()

	if _, err := svc.AddTopic(ctx, "Math/Geometry", spacedrep.StatusActive); err != nil {
		t.Fatal(err)
	}
	due, err := svc.Due(ctx, now)
	if err != nil || len(due) != 2 {
		t.Fatalf("due = %d, %v", len(due), err)
	}

	if _, err := svc.SetStatus(ctx, "Math", spacedrep.StatusDisabled); err != nil {
		t.Fatal(err)
	}
	due, _ = svc.Due(ctx, now)
	if len(due) != 1 || due[0].ID != "Math/Geometry" {
		t.Errorf("due after disable = %v", due)
	}

	if _, err := svc.SetStatus(ctx, "Nope", spacedrep.StatusActive); !errors.Is(err, spacedrep.ErrItemNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestService_Propagate(t *testing.T) {
	svc, repo := newTestService(t, false)
	ctx := context.Background()

	if _, err := svc.AddTopic(ctx, "Math/Algebra/Linear", spacedrep.StatusActive); err != nil {
		t.Fatal(err)
	}
	algebra, _ := repo.LoadItem(ctx, "Math/Algebra")
	algebra.Performance = 0.5
	if err := repo.SaveItem(ctx, algebra); err != nil {
		t.Fatal(err)
	}

	// Hard review leaves the parent at performance 0.
	if _, _, err := svc.Review(ctx, "Math", spacedrep.Label(spacedrep.DifficultyHard)); err != nil {
		t.Fatal(err)
	}
	adjusted, err := svc.Propagate(ctx, "Math")
	if err != nil {
		t.Fatal(err)
	}
	if len(adjusted) != 1 || adjusted[0].ID != "Math/Algebra" {
		t.Fatalf("adjusted = %v", adjusted)
	}

	got, _ := repo.LoadItem(ctx, "Math/Algebra")
	if d := got.Performance - 0.45; d > 1e-9 || d < -1e-9 {
		t.Errorf("child performance = %g, want 0.45", got.Performance)
	}
	grandchild, _ := repo.LoadItem(ctx, "Math/Algebra/Linear")
	if grandchild.Performance != 0 {
		t.Errorf("grandchild changed to %g", grandchild.Performance)
	}

	if _, err := svc.Propagate(ctx, "Nope"); !errors.Is(err, spacedrep.ErrItemNotFound) {
		t.Errorf("err = %v", err)
	}

	// Algebra was never reviewed, so Linear keeps its performance.
	if _, err := svc.Propagate(ctx, "Math/Algebra"); !errors.Is(err, topictree.ErrParentNotReviewed) {
		t.Errorf("err = %v, want ErrParentNotReviewed", err)
	}
	grandchild, _ = repo.LoadItem(ctx, "Math/Algebra/Linear")
	if grandchild.Performance != 0 {
		t.Errorf("unreviewed parent changed child to %g", grandchild.Performance)
	}
}

func TestService_OverviewAndSamples(t *testing.T) {
	svc, _ := newTestService(t, false)
	ctx := context.Background()

	for _, d := range []spacedrep.Difficulty{spacedrep.DifficultyNormal, spacedrep.DifficultyEasy} {
		if _, _, err := svc.Review(ctx, "Bio", spacedrep.Label(d)); err != nil {
			t.Fatal(err)
		}
	}
	ov, err := svc.Overview(ctx)
	if err != nil || ov.Total != 1 {
		t.Fatalf("overview total %d, %v", ov.Total, err)
	}
	samples, err := svc.Samples(ctx)
	if err != nil || len(samples) != 2 {
		t.Fatalf("samples = %d, %v", len(samples), err)
	}
}
