package fuzzy

import (
	"fmt"
	"math"
	"time"
)

// Set is a named input fuzzy set.
type Set struct {
	Name  string
	Shape Trapezoid
}

// Rule maps an input set to the output bucket it concludes.
type Rule struct {
	If   string
	Then string
}

// Range is the numeric span of an output bucket in days.
type Range struct {
	Lo, Hi float64
}

// Center returns the bucket midpoint used by centroid defuzzification.
func (r Range) Center() float64 {
	return (r.Lo + r.Hi) / 2
}

// Selector maps days-since-last-review to a base interval.
// A Selector is immutable once built and safe for concurrent use.
type Selector struct {
	sets    []Set
	rules   []Rule
	outputs map[string]Range
	order   []string
}

// Output is a named output bucket with its range.
type Output struct {
	Name  string
	Range Range
}

// NewSelector validates and builds a selector. Every rule must reference a
// defined set and output; output ranges must have Lo <= Hi.
func NewSelector(sets []Set, rules []Rule, outputs []Output) (*Selector, error) {
	s := &Selector{
		outputs: make(map[string]Range, len(outputs)),
	}

	known := make(map[string]bool, len(sets))
	for _, set := range sets {
		if set.Name == "" {
			return nil, fmt.Errorf("fuzzy set with empty name")
		}
		if known[set.Name] {
			return nil, fmt.Errorf("duplicate fuzzy set %q", set.Name)
		}
		if err := set.Shape.Validate(); err != nil {
			return nil, fmt.Errorf("fuzzy set %q: %w", set.Name, err)
		}
		known[set.Name] = true
		s.sets = append(s.sets, set)
	}

	for _, out := range outputs {
		if _, dup := s.outputs[out.Name]; dup {
			return nil, fmt.Errorf("duplicate output %q", out.Name)
		}
		if out.Range.Lo > out.Range.Hi {
			return nil, fmt.Errorf("output %q: range [%g, %g] is inverted", out.Name, out.Range.Lo, out.Range.Hi)
		}
		s.outputs[out.Name] = out.Range
		s.order = append(s.order, out.Name)
	}

	for _, r := range rules {
		if !known[r.If] {
			return nil, fmt.Errorf("rule references unknown set %q", r.If)
		}
		if _, ok := s.outputs[r.Then]; !ok {
			return nil, fmt.Errorf("rule references unknown output %q", r.Then)
		}
		s.rules = append(s.rules, r)
	}

	return s, nil
}

// Sets returns the input sets in definition order.
func (s *Selector) Sets() []Set {
	return append([]Set(nil), s.sets...)
}

// Outputs returns the output buckets in definition order.
func (s *Selector) Outputs() []Output {
	out := make([]Output, len(s.order))
	for i, name := range s.order {
		out[i] = Output{Name: name, Range: s.outputs[name]}
	}
	return out
}

// Memberships computes the membership degree of days in every input set.
func (s *Selector) Memberships(days float64) map[string]float64 {
	m := make(map[string]float64, len(s.sets))
	for _, set := range s.sets {
		m[set.Name] = set.Shape.Membership(days)
	}
	return m
}

// EvaluateRules aggregates rule strengths per output bucket. A bucket's
// strength is the maximum membership across the rules concluding it.
func (s *Selector) EvaluateRules(memberships map[string]float64) map[string]float64 {
	strengths := make(map[string]float64, len(s.order))
	for _, r := range s.rules {
		strengths[r.Then] = math.Max(strengths[r.Then], memberships[r.If])
	}
	return strengths
}

// Defuzzify computes the strength-weighted centroid of the output bucket
// centers. ok is false when every strength is zero.
func (s *Selector) Defuzzify(strengths map[string]float64) (value float64, ok bool) {
	var num, den float64
	// Iterate in definition order so the float sum is deterministic.
	for _, name := range s.order {
		st := strengths[name]
		if st <= 0 {
			continue
		}
		num += s.outputs[name].Center() * st
		den += st
	}
	if den == 0 {
		return 0, false
	}
	return num / den, true
}

// Interval runs membership, rule evaluation and defuzzification for days.
func (s *Selector) Interval(days float64) (float64, bool) {
	return s.Defuzzify(s.EvaluateRules(s.Memberships(days)))
}

// Diagnostics is the full trace of one fuzzy evaluation.
type Diagnostics struct {
	Days        float64            `json:"days"`
	Memberships map[string]float64 `json:"memberships"`
	Strengths   map[string]float64 `json:"strengths"`
	Interval    float64            `json:"interval"`
	Defined     bool               `json:"defined"`
}

// Diagnose returns every intermediate value of the evaluation for days.
func (s *Selector) Diagnose(days float64) Diagnostics {
	m := s.Memberships(days)
	st := s.EvaluateRules(m)
	v, ok := s.Defuzzify(st)
	return Diagnostics{Days: days, Memberships: m, Strengths: st, Interval: v, Defined: ok}
}

// DaysSince returns the whole days elapsed between last and now. A nil last
// (never reviewed) counts as one day; negative spans are clamped to zero.
func DaysSince(last *time.Time, now time.Time) float64 {
	if last == nil {
		return 1
	}
	days := math.Floor(now.Sub(*last).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
