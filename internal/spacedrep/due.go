package spacedrep

import (
	"sort"
	"time"
)

// DueItems returns the active items whose review date is on or before
// asOf's calendar date, most overdue first. Ties are broken by ID so the
// result is deterministic. The input is not modified.
func DueItems(items []*Item, asOf time.Time) []*Item {
	var due []*Item
	for _, it := range items {
		if it != nil && it.IsDue(asOf) {
			due = append(due, it)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		a, b := due[i], due[j]
		if !a.NextReview.Equal(b.NextReview) {
			return a.NextReview.Before(b.NextReview)
		}
		return a.ID < b.ID
	})
	return due
}

// BucketName labels a horizon in the schedule overview.
type BucketName string

const (
	BucketDueNow    BucketName = "Due Now"
	BucketNext3Days BucketName = "Next 3 Days"
	BucketNextWeek  BucketName = "Next Week"
	BucketNextMonth BucketName = "Next Month"
	BucketLater     BucketName = "Later"
)

// BucketOrder is the display order of the overview buckets.
var BucketOrder = []BucketName{BucketDueNow, BucketNext3Days, BucketNextWeek, BucketNextMonth, BucketLater}

// BucketEntry describes one item in the overview.
type BucketEntry struct {
	ID         string
	NextReview time.Time
	DaysUntil  int
	Stage      Stage
	Reviews    int
}

// Overview groups active items by how soon they are due and counts items
// per stage.
type Overview struct {
	Buckets map[BucketName][]BucketEntry
	Stages  map[Stage]int
	Total   int
}

// StageShare returns the fraction of items at stage s.
func (o Overview) StageShare(s Stage) float64 {
	if o.Total == 0 {
		return 0
	}
	return float64(o.Stages[s]) / float64(o.Total)
}

// Buckets builds the schedule overview. Items that are not active are skipped.
// Entries within a bucket are ordered by review date, then ID.
func Buckets(items []*Item, now time.Time) Overview {
	ov := Overview{
		Buckets: make(map[BucketName][]BucketEntry, len(BucketOrder)),
		Stages:  make(map[Stage]int, len(StageTable{}.Stages())),
	}
	for _, s := range (StageTable{}).Stages() {
		ov.Stages[s] = 0
	}

	for _, it := range items {
		if it == nil || it.Status != StatusActive {
			continue
		}
		days := it.DaysUntilReview(now)
		entry := BucketEntry{
			ID:         it.ID,
			NextReview: it.NextReview,
			DaysUntil:  days,
			Stage:      it.Stage,
			Reviews:    len(it.History),
		}
		name := bucketFor(days)
		ov.Buckets[name] = append(ov.Buckets[name], entry)
		ov.Stages[it.Stage]++
		ov.Total++
	}

	for _, entries := range ov.Buckets {
		sort.Slice(entries, func(i, j int) bool {
			if !entries[i].NextReview.Equal(entries[j].NextReview) {
				return entries[i].NextReview.Before(entries[j].NextReview)
			}
			return entries[i].ID < entries[j].ID
		})
	}
	return ov
}

func bucketFor(days int) BucketName {
	switch {
	case days <= 0:
		return BucketDueNow
	case days <= 3:
		return BucketNext3Days
	case days <= 7:
		return BucketNextWeek
	case days <= 30:
		return BucketNextMonth
	default:
		return BucketLater
	}
}
