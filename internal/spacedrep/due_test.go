package spacedrep

import (
	"reflect"
	"testing"
	"time"
)

func dueItem(id string, next time.Time, status Status) *Item {
	it := NewItem(id, next.AddDate(0, 0, -10))
	it.NextReview = next
	it.Status = status
	return it
}

func TestDueItems(t *testing.T) {
	asOf := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	items := []*Item{
		dueItem("b", asOf.Add(-48*time.Hour), StatusActive),
		dueItem("later-today", asOf.Add(10*time.Hour), StatusActive), // same calendar date
		dueItem("tomorrow", asOf.Add(20*time.Hour), StatusActive),
		dueItem("a", asOf.Add(-48*time.Hour), StatusActive),
		dueItem("disabled", asOf.Add(-72*time.Hour), StatusDisabled),
		dueItem("done", asOf.Add(-72*time.Hour), StatusCompleted),
		dueItem("oldest", asOf.AddDate(0, 0, -30), StatusActive),
	}

	got := DueItems(items, asOf)
	want := []string{"oldest", "a", "b", "later-today"}
	if ids := itemIDs(got); !reflect.DeepEqual(ids, want) {
		t.Errorf("DueItems = %q, want %q", ids, want)
	}

	again := DueItems(items, asOf)
	if !reflect.DeepEqual(itemIDs(again), itemIDs(got)) {
		t.Error("DueItems is not idempotent")
	}
	if items[0].ID != "b" {
		t.Error("input slice was reordered")
	}
}

func TestDueItems_Timezone(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	asOf := time.Date(2025, 3, 10, 1, 0, 0, 0, loc) // 2025-03-09 15:00 UTC
	it := dueItem("x", time.Date(2025, 3, 9, 20, 0, 0, 0, time.UTC), StatusActive)

	if len(DueItems([]*Item{it}, asOf)) != 1 {
		t.Error("item due on the local calendar date should be returned")
	}
}

func TestBuckets(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour
	items := []*Item{
		dueItem("overdue", now.Add(-2*day), StatusActive),
		dueItem("soon", now.Add(2*day+time.Hour), StatusActive),
		dueItem("week", now.Add(6*day+time.Hour), StatusActive),
		dueItem("month", now.Add(20*day+time.Hour), StatusActive),
		dueItem("later", now.Add(90*day), StatusActive),
		dueItem("off", now, StatusDisabled),
	}
	items[1].Stage = StageMid

	ov := Buckets(items, now)
	want := map[BucketName][]string{
		BucketDueNow:    {"overdue"},
		BucketNext3Days: {"soon"},
		BucketNextWeek:  {"week"},
		BucketNextMonth: {"month"},
		BucketLater:     {"later"},
	}
	for name, ids := range want {
		var got []string
		for _, e := range ov.Buckets[name] {
			got = append(got, e.ID)
		}
		if !reflect.DeepEqual(got, ids) {
			t.Errorf("%s = %q, want %q", name, got, ids)
		}
	}
	if ov.Total != 5 {
		t.Errorf("total = %d, want 5", ov.Total)
	}
	if ov.Stages[StageMid] != 1 || ov.Stages[StageFirstTime] != 4 {
		t.Errorf("stage counts = %v", ov.Stages)
	}
	if got := ov.StageShare(StageMid); got != 0.2 {
		t.Errorf("StageShare(mid) = %g", got)
	}
}

func TestTrainingSamples(t *testing.T) {
	h1, h2 := 2.5, 6.0
	a := NewItem("a", time.Now())
	a.History = []ReviewEvent{
		{Performance: 0.5, IntervalApplied: 3, HalfLife: &h1},
		{Performance: 1, IntervalApplied: 4},
	}
	b := NewItem("b", time.Now())
	b.History = []ReviewEvent{{Performance: 0, IntervalApplied: 1, HalfLife: &h2}}

	got := TrainingSamples([]*Item{a, nil, b})
	if len(got) != 2 {
		t.Fatalf("got %d samples", len(got))
	}
	if got[0].HalfLife != 2.5 || got[0].IntervalDays != 3 || got[1].Performance != 0 {
		t.Errorf("samples = %+v", got)
	}
}

func itemIDs(items []*Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
