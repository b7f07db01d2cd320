package spacedrep

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/abhisek/cadence/internal/fuzzy"
	"github.com/abhisek/cadence/internal/halflife"
	"github.com/abhisek/cadence/internal/logging"
	"github.com/google/uuid"
)

// Mode selects how the base interval is derived.
type Mode string

const (
	// ModeDiscrete reads the base interval from the stage table and rounds
	// adjusted intervals to whole days.
	ModeDiscrete Mode = "discrete"
	// ModeFuzzy derives the base interval from days since the last review
	// and keeps fractional days.
	ModeFuzzy Mode = "fuzzy"
)

// Policy selects the post-prediction interval adjustment.
type Policy string

const (
	// PolicyStage applies no adjustment after the half-life is known.
	PolicyStage Policy = "stage"
	// PolicyRecallDamped shrinks the interval by 1.5 when performance or
	// predicted recall is weak and stretches it by 1.5 otherwise.
	PolicyRecallDamped Policy = "recall_damped"
)

const (
	hardFactor   = 0.6
	easyFactor   = 1.4
	dampFactor   = 1.5
	weakRecall   = 0.6
	weakPerf     = 0.5
	minHardDays  = 1.0
	defaultMinIv = 0.1
)

// Config is the immutable configuration of a Scheduler.
type Config struct {
	Mode       Mode
	Policy     Policy
	Thresholds Thresholds

	// Strict rejects reviews for items with no prior state instead of
	// creating them.
	Strict bool

	// MinIntervalDays is the smallest interval ever scheduled.
	MinIntervalDays float64

	// PredictorTimeout bounds each half-life prediction. Zero disables it.
	PredictorTimeout time.Duration
}

// DefaultConfig returns discrete mode with the stage policy.
func DefaultConfig() Config {
	return Config{
		Mode:             ModeDiscrete,
		Policy:           PolicyStage,
		Thresholds:       DefaultThresholds(),
		MinIntervalDays:  defaultMinIv,
		PredictorTimeout: 2 * time.Second,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeDiscrete, ModeFuzzy:
	default:
		return fmt.Errorf("unknown scheduler mode %q", c.Mode)
	}
	switch c.Policy {
	case PolicyStage, PolicyRecallDamped:
	default:
		return fmt.Errorf("unknown scheduler policy %q", c.Policy)
	}
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}
	if !(c.MinIntervalDays > 0) || math.IsInf(c.MinIntervalDays, 0) {
		return fmt.Errorf("min interval must be positive, got %g", c.MinIntervalDays)
	}
	if c.PredictorTimeout < 0 {
		return fmt.Errorf("predictor timeout must not be negative")
	}
	return nil
}

// Scheduler computes item state transitions for reviews. It holds no mutable
// state and is safe for concurrent use.
type Scheduler struct {
	cfg       Config
	stages    StageTable
	selector  *fuzzy.Selector
	predictor halflife.Predictor
	clock     Clock
	logger    *slog.Logger
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithPredictor sets the half-life predictor. A nil predictor makes every
// review use the fallback heuristic.
func WithPredictor(p halflife.Predictor) Option {
	return func(s *Scheduler) { s.predictor = p }
}

// WithSelector replaces the default fuzzy selector used in fuzzy mode.
func WithSelector(sel *fuzzy.Selector) Option {
	return func(s *Scheduler) { s.selector = sel }
}

// WithClock sets the time source.
func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// New creates a Scheduler. The configuration is validated once here.
func New(cfg Config, opts ...Option) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Scheduler{
		cfg:    cfg,
		clock:  SystemClock{},
		logger: logging.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	if s.selector == nil {
		s.selector = fuzzy.Default()
	}
	s.predictor = halflife.WithTimeout(s.predictor, cfg.PredictorTimeout)
	return s, nil
}

// Config returns the scheduler's configuration.
func (s *Scheduler) Config() Config { return s.cfg }

// Now returns the scheduler clock's current time.
func (s *Scheduler) Now() time.Time { return s.clock.Now() }

// RecordReview applies one review observation to an item and returns the
// updated item together with the appended event. prior is never modified;
// on error nothing is produced. A nil prior means the item has never been
// seen: strict schedulers reject it, others start it at the first stage.
func (s *Scheduler) RecordReview(ctx context.Context, id string, prior *Item, obs Observation) (*Item, ReviewEvent, error) {
	now := s.clock.Now()

	difficulty, performance, err := s.cfg.Thresholds.Normalize(obs)
	if err != nil {
		return nil, ReviewEvent{}, err
	}

	var item *Item
	switch {
	case prior != nil:
		item = prior.Clone()
	case s.cfg.Strict:
		return nil, ReviewEvent{}, &UnknownItemError{ID: id}
	default:
		item = NewItem(id, now)
	}

	base, err := s.baseInterval(item, now)
	if err != nil {
		return nil, ReviewEvent{}, err
	}

	stageBefore := item.Stage
	interval := base
	switch difficulty {
	case DifficultyHard:
		interval = math.Max(minHardDays, base*hardFactor)
		item.Stage = s.stages.Previous(item.Stage)
	case DifficultyEasy:
		interval = base * easyFactor
		item.Stage = s.stages.Next(item.Stage)
	}
	if s.cfg.Mode == ModeDiscrete {
		interval = math.Round(interval)
	}

	lapses := item.Lapses()
	if difficulty == DifficultyHard {
		lapses++
	}
	h, source := s.halfLife(ctx, id, performance, interval, lapses)
	recall := halflife.RecallProbability(interval, h)

	if s.cfg.Policy == PolicyRecallDamped {
		if performance < weakPerf || recall < weakRecall {
			interval /= dampFactor
		} else {
			interval *= dampFactor
		}
	}

	if math.IsNaN(interval) || math.IsInf(interval, 0) || interval < s.cfg.MinIntervalDays {
		interval = s.cfg.MinIntervalDays
	}

	ev := ReviewEvent{
		ID:                uuid.NewString(),
		Date:              now,
		Difficulty:        difficulty,
		Performance:       performance,
		IntervalApplied:   interval,
		HalfLife:          &h,
		RecallProbability: &recall,
		HalfLifeSource:    source,
		StageBefore:       stageBefore,
		StageAfter:        item.Stage,
	}

	reviewed := now
	item.LastReviewed = &reviewed
	item.NextReview = now.Add(daysToDuration(interval))
	item.IntervalDays = interval
	item.Performance = performance
	item.HalfLife = cloneFloat(&h)
	item.History = append(item.History, ev)

	return item, ev, nil
}

func (s *Scheduler) baseInterval(item *Item, now time.Time) (float64, error) {
	if s.cfg.Mode == ModeFuzzy {
		days := fuzzy.DaysSince(item.LastReviewed, now)
		if v, ok := s.selector.Interval(days); ok {
			return v, nil
		}
		s.logger.Debug("fuzzy interval undefined, using stage table",
			slog.String("item", item.ID),
			slog.Float64("days_since_last", days))
	}
	return s.stages.BaseInterval(item.Stage)
}

// halfLife asks the predictor and falls back to the heuristic on any failure.
func (s *Scheduler) halfLife(ctx context.Context, id string, performance, interval float64, lapses int) (float64, HalfLifeSource) {
	if s.predictor == nil {
		return halflife.Fallback(interval, lapses), SourceFallback
	}

	h, err := s.predictor.Predict(ctx, performance, interval)
	if err == nil && !halflife.Valid(h) {
		err = fmt.Errorf("predictor returned %g", h)
	}
	if err != nil {
		perr := &PredictorUnavailableError{Err: err}
		s.logger.Warn("half-life prediction failed, using fallback",
			slog.String("item", id),
			slog.Float64("interval_days", interval),
			slog.Int("lapses", lapses),
			logging.ErrAttr(perr))
		return halflife.Fallback(interval, lapses), SourceFallback
	}
	return h, SourcePredictor
}

func daysToDuration(days float64) time.Duration {
	return time.Duration(days * float64(24*time.Hour))
}
