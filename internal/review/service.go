// Package review ties the scheduler to a Repository and the topic tree.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/abhisek/cadence/internal/halflife"
	"github.com/abhisek/cadence/internal/logging"
	"github.com/abhisek/cadence/internal/spacedrep"
	"github.com/abhisek/cadence/internal/topictree"
)

// Service runs reviews and topic maintenance against a Repository. Writes to
// the same item are serialized within the process; the repository's
// version check guards against other processes.
type Service struct {
	repo      spacedrep.Repository
	scheduler *spacedrep.Scheduler
	logger    *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates a review service.
func NewService(repo spacedrep.Repository, scheduler *spacedrep.Scheduler, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:      repo,
		scheduler: scheduler,
		logger:    logger,
		locks:     make(map[string]*sync.Mutex),
	}
}

// Scheduler returns the scheduler used for reviews.
func (s *Service) Scheduler() *spacedrep.Scheduler { return s.scheduler }

func (s *Service) lock(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Review records one observation for id and persists the result.
func (s *Service) Review(ctx context.Context, id string, obs spacedrep.Observation) (*spacedrep.Item, spacedrep.ReviewEvent, error) {
	defer s.lock(id)()

	prior, err := s.repo.LoadItem(ctx, id)
	if errors.Is(err, spacedrep.ErrItemNotFound) {
		prior = nil
	} else if err != nil {
		return nil, spacedrep.ReviewEvent{}, err
	}

	item, ev, err := s.scheduler.RecordReview(ctx, id, prior, obs)
	if err != nil {
		return nil, spacedrep.ReviewEvent{}, err
	}
	if err := s.repo.SaveItem(ctx, item); err != nil {
		return nil, spacedrep.ReviewEvent{}, err
	}

	s.logger.Info("review recorded",
		slog.String("item", id),
		slog.String("difficulty", string(ev.Difficulty)),
		slog.String("stage", ev.StageAfter.String()),
		slog.Float64("interval_days", ev.IntervalApplied),
		slog.String("halflife_source", string(ev.HalfLifeSource)),
	)
	return item, ev, nil
}

// AddTopic creates the item at path and any missing ancestors. It returns
// only the items that were created.
func (s *Service) AddTopic(ctx context.Context, path string, status spacedrep.Status) ([]*spacedrep.Item, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[string]*spacedrep.Item, len(items))
	for _, it := range items {
		known[it.ID] = it
	}

	created, err := topictree.EnsurePath(known, path, status, s.scheduler.Now())
	if err != nil {
		return nil, err
	}
	for _, it := range created {
		if err := s.repo.SaveItem(ctx, it); err != nil {
			return nil, fmt.Errorf("save %s: %w", it.ID, err)
		}
	}
	return created, nil
}

// SetStatus changes whether id participates in due queries.
func (s *Service) SetStatus(ctx context.Context, id string, status spacedrep.Status) (*spacedrep.Item, error) {
	defer s.lock(id)()

	item, err := s.repo.LoadItem(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Status = status
	if err := s.repo.SaveItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Propagate applies the parent's latest performance to its direct children
// and persists them.
func (s *Service) Propagate(ctx context.Context, parentID string) ([]*spacedrep.Item, error) {
	tree, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}
	parent, ok := tree.Get(parentID)
	if !ok {
		return nil, spacedrep.ErrItemNotFound
	}

	adjusted, err := topictree.Propagate(parent, tree.Children(parentID))
	if err != nil {
		return nil, fmt.Errorf("propagate from %s: %w", parentID, err)
	}
	for _, it := range adjusted {
		unlock := s.lock(it.ID)
		err := s.repo.SaveItem(ctx, it)
		unlock()
		if err != nil {
			return nil, fmt.Errorf("save %s: %w", it.ID, err)
		}
	}
	return adjusted, nil
}

// Item loads one item with its history.
func (s *Service) Item(ctx context.Context, id string) (*spacedrep.Item, error) {
	return s.repo.LoadItem(ctx, id)
}

// Due returns the items due on asOf's date.
func (s *Service) Due(ctx context.Context, asOf time.Time) ([]*spacedrep.Item, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	return spacedrep.DueItems(items, asOf), nil
}

// Overview returns the schedule overview as of now.
func (s *Service) Overview(ctx context.Context) (spacedrep.Overview, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return spacedrep.Overview{}, err
	}
	return spacedrep.Buckets(items, s.scheduler.Now()), nil
}

// Tree indexes every stored item.
func (s *Service) Tree(ctx context.Context) (*topictree.Tree, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	return topictree.New(items), nil
}

// Samples returns training samples from every stored review.
func (s *Service) Samples(ctx context.Context) ([]halflife.Sample, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	return spacedrep.TrainingSamples(items), nil
}
