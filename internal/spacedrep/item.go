package spacedrep

import (
	"fmt"
	"math"
	"time"
)

// Status gates whether an item is eligible for scheduling.
type Status string

const (
	StatusActive    Status = "active"
	StatusDisabled  Status = "disabled"
	StatusCompleted Status = "completed"
)

// ParseStatus validates a status label.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusActive, StatusDisabled, StatusCompleted:
		return st, nil
	}
	return "", fmt.Errorf("invalid status %q (want active, disabled or completed)", s)
}

// HalfLifeSource records where a review's half-life came from.
type HalfLifeSource string

const (
	SourcePredictor HalfLifeSource = "predictor"
	SourceFallback  HalfLifeSource = "fallback"
)

// ReviewEvent is one entry of an item's review history. Events are never
// modified after they are appended.
type ReviewEvent struct {
	ID                string         `json:"id"`
	Date              time.Time      `json:"date"`
	Difficulty        Difficulty     `json:"difficulty"`
	Performance       float64        `json:"performance"`
	IntervalApplied   float64        `json:"interval_applied"`
	HalfLife          *float64       `json:"halflife,omitempty"`
	RecallProbability *float64       `json:"recall_probability,omitempty"`
	HalfLifeSource    HalfLifeSource `json:"halflife_source,omitempty"`
	StageBefore       Stage          `json:"stage_before"`
	StageAfter        Stage          `json:"stage_after"`
}

// Item is a reviewable unit of knowledge tracked by the scheduler.
type Item struct {
	ID           string        `json:"id"`
	Stage        Stage         `json:"stage"`
	Status       Status        `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	LastReviewed *time.Time    `json:"last_reviewed,omitempty"`
	NextReview   time.Time     `json:"next_review"`
	IntervalDays float64       `json:"interval_days"`
	Performance  float64       `json:"performance"`
	HalfLife     *float64      `json:"halflife,omitempty"`
	History      []ReviewEvent `json:"history"`

	// Version is maintained by the Repository for optimistic concurrency.
	Version int64 `json:"version"`
}

// NewItem creates an item at the first stage, due immediately.
func NewItem(id string, now time.Time) *Item {
	return &Item{
		ID:           id,
		Stage:        StageFirstTime,
		Status:       StatusActive,
		CreatedAt:    now,
		NextReview:   now,
		IntervalDays: baseIntervals[StageFirstTime],
	}
}

// Clone returns a deep copy of the item. History events share no memory with
// the original.
func (it *Item) Clone() *Item {
	if it == nil {
		return nil
	}
	c := *it
	if it.LastReviewed != nil {
		t := *it.LastReviewed
		c.LastReviewed = &t
	}
	c.HalfLife = cloneFloat(it.HalfLife)
	c.History = make([]ReviewEvent, len(it.History))
	for i, ev := range it.History {
		ev.HalfLife = cloneFloat(ev.HalfLife)
		ev.RecallProbability = cloneFloat(ev.RecallProbability)
		c.History[i] = ev
	}
	return &c
}

// IsDue returns true if the item is active and its review date is on or
// before asOf's calendar date.
func (it *Item) IsDue(asOf time.Time) bool {
	if it.Status != StatusActive {
		return false
	}
	return !dateOf(it.NextReview, asOf.Location()).After(dateOf(asOf, asOf.Location()))
}

// OverdueDays returns how many days past due the item is. Returns 0 if not yet due.
func (it *Item) OverdueDays(now time.Time) float64 {
	if now.Before(it.NextReview) {
		return 0
	}
	return now.Sub(it.NextReview).Hours() / 24.0
}

// DaysUntilReview returns the whole days until the next review, rounded
// down. Negative when the review date has passed.
func (it *Item) DaysUntilReview(now time.Time) int {
	return int(math.Floor(it.NextReview.Sub(now).Hours() / 24.0))
}

// Lapses counts hard reviews in the item's history.
func (it *Item) Lapses() int {
	n := 0
	for _, ev := range it.History {
		if ev.Difficulty == DifficultyHard {
			n++
		}
	}
	return n
}

// LastEvent returns the most recent review event, or nil if never reviewed.
func (it *Item) LastEvent() *ReviewEvent {
	if len(it.History) == 0 {
		return nil
	}
	return &it.History[len(it.History)-1]
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func dateOf(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
