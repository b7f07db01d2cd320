package halflife

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"
)

func TestFallback(t *testing.T) {
	tests := []struct {
		interval float64
		lapses   int
		want     float64
	}{
		{5, 2, 5.0},
		{5, 0, 4.0},
		{10, 1, 9.0},
		{0, 3, MinHalfLife},
		{0.05, 0, MinHalfLife},
		{math.NaN(), 1, MinHalfLife},
	}
	for _, tt := range tests {
		got := Fallback(tt.interval, tt.lapses)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Fallback(%g, %d) = %g, want %g", tt.interval, tt.lapses, got, tt.want)
		}
	}
}

func TestValid(t *testing.T) {
	for _, h := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), 0, -1} {
		if Valid(h) {
			t.Errorf("Valid(%g) = true", h)
		}
	}
	if !Valid(0.1) {
		t.Error("Valid(0.1) = false")
	}
}

func TestRecallProbability(t *testing.T) {
	if got := RecallProbability(5, 5); math.Abs(got-math.Exp(-1)) > 1e-12 {
		t.Errorf("RecallProbability(5, 5) = %g", got)
	}
}

func TestConstant(t *testing.T) {
	if _, err := NewConstant(0); err == nil {
		t.Fatal("expected error for zero days")
	}
	c, err := NewConstant(7)
	if err != nil {
		t.Fatal(err)
	}
	h, err := c.Predict(context.Background(), 0.2, 99)
	if err != nil || h != 7 {
		t.Errorf("Predict = %g, %v", h, err)
	}
}

func TestFit_RecoversModel(t *testing.T) {
	w := [3]float64{0.2, 1.5, 0.9}
	var samples []Sample
	for _, p := range []float64{0, 0.25, 0.5, 0.75, 1} {
		for _, i := range []float64{1, 3, 7, 14, 30} {
			samples = append(samples, Sample{
				Performance:  p,
				IntervalDays: i,
				HalfLife:     math.Exp(w[0] + w[1]*p + w[2]*math.Log(i)),
			})
		}
	}

	r, err := Fit(samples)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	for k := range w {
		if math.Abs(r.W[k]-w[k]) > 1e-6 {
			t.Errorf("W[%d] = %g, want %g", k, r.W[k], w[k])
		}
	}
	if r.N != len(samples) {
		t.Errorf("N = %d, want %d", r.N, len(samples))
	}

	h, err := r.Predict(context.Background(), 0.5, 7)
	if err != nil {
		t.Fatal(err)
	}
	want := math.Exp(w[0] + w[1]*0.5 + w[2]*math.Log(7))
	if math.Abs(h-want) > 1e-6 {
		t.Errorf("Predict = %g, want %g", h, want)
	}
}

func TestFit_Errors(t *testing.T) {
	if _, err := Fit([]Sample{{0.5, 3, 2}, {0.5, 3, 0}}); err == nil {
		t.Error("expected error for too few usable samples")
	}

	same := []Sample{{0.5, 3, 2}, {0.5, 3, 2.5}, {0.5, 3, 3}, {0.5, 3, 1}}
	if _, err := Fit(same); !errors.Is(err, ErrDegenerateSamples) {
		t.Errorf("err = %v, want ErrDegenerateSamples", err)
	}
}

type countingPredictor struct {
	calls atomic.Int32
	h     float64
	err   error
}

func (c *countingPredictor) Predict(context.Context, float64, float64) (float64, error) {
	c.calls.Add(1)
	return c.h, c.err
}

func TestCached(t *testing.T) {
	inner := &countingPredictor{h: 4}
	c, err := NewCached(inner, 100)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	ctx := context.Background()
	if _, err := c.Predict(ctx, 0.5, 3); err != nil {
		t.Fatal(err)
	}
	c.Wait()
	// Rounds to the same key.
	h, err := c.Predict(ctx, 0.5000001, 3.0000004)
	if err != nil || h != 4 {
		t.Fatalf("Predict = %g, %v", h, err)
	}
	if n := inner.calls.Load(); n != 1 {
		t.Errorf("inner calls = %d, want 1", n)
	}

	if _, err := c.Predict(ctx, 0.6, 3); err != nil {
		t.Fatal(err)
	}
	if n := inner.calls.Load(); n != 2 {
		t.Errorf("inner calls = %d, want 2", n)
	}
}

func TestCached_DoesNotCacheErrors(t *testing.T) {
	inner := &countingPredictor{err: errors.New("boom")}
	c, err := NewCached(inner, 10)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	for range 2 {
		if _, err := c.Predict(context.Background(), 0.1, 1); err == nil {
			t.Fatal("expected error")
		}
		c.Wait()
	}
	if n := inner.calls.Load(); n != 2 {
		t.Errorf("inner calls = %d, want 2", n)
	}
}

func TestWithTimeout(t *testing.T) {
	slow := PredictorFunc(func(ctx context.Context, _, _ float64) (float64, error) {
		select {
		case <-time.After(time.Second):
			return 3, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	})

	p := WithTimeout(slow, 10*time.Millisecond)
	_, err := p.Predict(context.Background(), 0.5, 1)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}

	fast := &countingPredictor{h: 2}
	h, err := WithTimeout(fast, time.Second).Predict(context.Background(), 0.5, 1)
	if err != nil || h != 2 {
		t.Errorf("Predict = %g, %v", h, err)
	}

	if WithTimeout(fast, 0) != Predictor(fast) {
		t.Error("zero timeout should return the predictor unchanged")
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	for _, kind := range []string{"", KindHeuristic, KindNone} {
		p, err := New(ctx, kind, Options{})
		if err != nil || p != nil {
			t.Errorf("New(%q) = %v, %v; want nil, nil", kind, p, err)
		}
	}

	p, err := New(ctx, KindConstant, Options{ConstantDays: 3})
	if err != nil {
		t.Fatal(err)
	}
	if h, _ := p.Predict(ctx, 0, 1); h != 3 {
		t.Errorf("constant predictor returned %g", h)
	}

	p, err = New(ctx, KindConstant, Options{ConstantDays: 3, CacheSize: 16})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := p.(*Cached); !ok {
		t.Errorf("cache size set but got %T", p)
	}

	if _, err := New(ctx, "crystal-ball", Options{}); err == nil {
		t.Error("expected error for unknown kind")
	}
	if _, err := New(ctx, KindLLM, Options{}); err == nil {
		t.Error("expected error for llm without provider")
	}
	if _, err := New(ctx, KindRegression, Options{}); err == nil {
		t.Error("expected error for regression without samples")
	}
}
