// Package fuzzy implements a small Mamdani-style fuzzy inference engine for
// choosing review intervals from the number of days since the last review.
package fuzzy

import "fmt"

// Trapezoid is a trapezoidal membership function with breakpoints
// A <= B <= C <= D.
type Trapezoid struct {
	A, B, C, D float64
}

// NewTrapezoid validates the breakpoint order.
func NewTrapezoid(a, b, c, d float64) (Trapezoid, error) {
	t := Trapezoid{A: a, B: b, C: c, D: d}
	if err := t.Validate(); err != nil {
		return Trapezoid{}, err
	}
	return t, nil
}

// Validate checks that the breakpoints are ordered.
func (t Trapezoid) Validate() error {
	if !(t.A <= t.B && t.B <= t.C && t.C <= t.D) {
		return fmt.Errorf("trapezoid breakpoints must be ordered a<=b<=c<=d, got [%g %g %g %g]",
			t.A, t.B, t.C, t.D)
	}
	return nil
}

// Membership returns the degree (0-1) to which x belongs to the set.
//
// The outer bounds are tested first, so x == A yields 0 even when A == B.
func (t Trapezoid) Membership(x float64) float64 {
	switch {
	case x <= t.A || x >= t.D:
		return 0
	case t.B <= x && x <= t.C:
		return 1
	case x < t.B:
		return (x - t.A) / (t.B - t.A)
	default:
		return (t.D - x) / (t.D - t.C)
	}
}
