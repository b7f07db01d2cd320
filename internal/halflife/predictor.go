// Package halflife defines the half-life prediction capability consumed by
// the review scheduler, together with its substitutable implementations.
package halflife

import (
	"context"
	"math"
)

// MinHalfLife is the smallest half-life, in days, the fallback will produce.
const MinHalfLife = 0.1

// Predictor estimates a memory half-life in days from a normalized
// performance score and the review interval in days. Implementations may be
// local computations or network round trips; they should honor ctx.
type Predictor interface {
	Predict(ctx context.Context, performance, intervalDays float64) (float64, error)
}

// PredictorFunc adapts an ordinary function to the Predictor interface.
type PredictorFunc func(ctx context.Context, performance, intervalDays float64) (float64, error)

// Predict calls f.
func (f PredictorFunc) Predict(ctx context.Context, performance, intervalDays float64) (float64, error) {
	return f(ctx, performance, intervalDays)
}

// Fallback is the deterministic heuristic used whenever no usable prediction
// is available: interval × (0.8 + 0.1 × lapses), never below MinHalfLife.
func Fallback(intervalDays float64, lapses int) float64 {
	h := intervalDays * (0.8 + 0.1*float64(lapses))
	if math.IsNaN(h) || h < MinHalfLife {
		return MinHalfLife
	}
	return h
}

// Valid reports whether h is a usable half-life: finite and positive.
func Valid(h float64) bool {
	return !math.IsNaN(h) && !math.IsInf(h, 0) && h > 0
}

// RecallProbability returns exp(-interval/halflife), the estimated retention
// at the end of the interval.
func RecallProbability(intervalDays, halfLife float64) float64 {
	return math.Exp(-intervalDays / halfLife)
}

// Sample is one observed (performance, interval, half-life) triple used to
// fit statistical predictors.
type Sample struct {
	Performance  float64 `json:"performance"`
	IntervalDays float64 `json:"interval"`
	HalfLife     float64 `json:"halflife"`
}
