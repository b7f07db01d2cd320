package halflife

import (
	"context"
	"time"
)

type result struct {
	h   float64
	err error
}

type timeoutPredictor struct {
	inner Predictor
	d     time.Duration
}

// WithTimeout bounds every call to p by d. A call that outlives its deadline
// returns the context error; its eventual result is discarded. A
// non-positive d returns p unchanged.
func WithTimeout(p Predictor, d time.Duration) Predictor {
	if d <= 0 || p == nil {
		return p
	}
	return &timeoutPredictor{inner: p, d: d}
}

func (t *timeoutPredictor) Predict(ctx context.Context, performance, intervalDays float64) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()

	ch := make(chan result, 1)
	go func() {
		h, err := t.inner.Predict(ctx, performance, intervalDays)
		ch <- result{h: h, err: err}
	}()

	select {
	case r := <-ch:
		return r.h, r.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}
