package halflife

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// MinRegressionSamples is the fewest usable samples Fit accepts.
const MinRegressionSamples = 3

// ErrDegenerateSamples is returned by Fit when the samples cannot determine
// a unique model (for example, every sample has the same interval).
var ErrDegenerateSamples = errors.New("degenerate training samples")

// Regression predicts half-life with a log-linear model
//
//	ln h = W[0] + W[1]·performance + W[2]·ln(interval)
//
// fitted by ordinary least squares.
type Regression struct {
	W [3]float64
	N int // samples used to fit
}

// Fit estimates the model from samples. Samples with a non-positive interval
// or half-life are skipped.
func Fit(samples []Sample) (*Regression, error) {
	// Accumulate the normal equations XᵀX·w = Xᵀy.
	var xtx [3][3]float64
	var xty [3]float64
	n := 0
	for _, s := range samples {
		if !Valid(s.HalfLife) || !Valid(s.IntervalDays) || math.IsNaN(s.Performance) {
			continue
		}
		x := [3]float64{1, s.Performance, math.Log(s.IntervalDays)}
		y := math.Log(s.HalfLife)
		for i := range 3 {
			for j := range 3 {
				xtx[i][j] += x[i] * x[j]
			}
			xty[i] += x[i] * y
		}
		n++
	}
	if n < MinRegressionSamples {
		return nil, fmt.Errorf("need at least %d usable samples, got %d", MinRegressionSamples, n)
	}

	w, err := solve3(xtx, xty)
	if err != nil {
		return nil, err
	}
	return &Regression{W: w, N: n}, nil
}

func (r *Regression) Predict(_ context.Context, performance, intervalDays float64) (float64, error) {
	if !Valid(intervalDays) {
		return 0, fmt.Errorf("interval must be positive, got %g", intervalDays)
	}
	h := math.Exp(r.W[0] + r.W[1]*performance + r.W[2]*math.Log(intervalDays))
	if !Valid(h) {
		return 0, fmt.Errorf("model produced invalid half-life %g", h)
	}
	return h, nil
}

// solve3 solves a·x = b by Gaussian elimination with partial pivoting.
func solve3(a [3][3]float64, b [3]float64) ([3]float64, error) {
	const tiny = 1e-12
	for col := range 3 {
		pivot := col
		for row := col + 1; row < 3; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < tiny {
			return [3]float64{}, ErrDegenerateSamples
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for row := col + 1; row < 3; row++ {
			f := a[row][col] / a[col][col]
			for k := col; k < 3; k++ {
				a[row][k] -= f * a[col][k]
			}
			b[row] -= f * b[col]
		}
	}

	var x [3]float64
	for row := 2; row >= 0; row-- {
		sum := b[row]
		for k := row + 1; k < 3; k++ {
			sum -= a[row][k] * x[k]
		}
		x[row] = sum / a[row][row]
	}
	return x, nil
}
