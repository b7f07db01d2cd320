package spacedrep

import "github.com/abhisek/cadence/internal/halflife"

// TrainingSamples extracts one (performance, interval, half-life) sample per
// review event that recorded a half-life. Items are visited in the given
// order and events in history order.
func TrainingSamples(items []*Item) []halflife.Sample {
	var out []halflife.Sample
	for _, it := range items {
		if it == nil {
			continue
		}
		for _, ev := range it.History {
			if ev.HalfLife == nil || !halflife.Valid(*ev.HalfLife) {
				continue
			}
			out = append(out, halflife.Sample{
				Performance:  ev.Performance,
				IntervalDays: ev.IntervalApplied,
				HalfLife:     *ev.HalfLife,
			})
		}
	}
	return out
}
