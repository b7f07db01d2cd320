package spacedrep

import (
	"fmt"
	"math"
	"strings"
)

// Difficulty is the discrete self-reported review difficulty.
type Difficulty string

const (
	DifficultyHard   Difficulty = "hard"
	DifficultyNormal Difficulty = "normal"
	DifficultyEasy   Difficulty = "easy"
)

// Performance scores assigned to label observations.
const (
	hardPerformance   = 0.0
	normalPerformance = 0.5
	easyPerformance   = 1.0
)

// ParseDifficulty validates a difficulty label. Matching is case-insensitive.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case DifficultyHard, DifficultyNormal, DifficultyEasy:
		return d, nil
	}
	return "", &InvalidObservationError{Reason: fmt.Sprintf("unknown difficulty %q", s)}
}

// Observation is the outcome of a single review: either a difficulty label or
// a continuous performance score in [0, 1]. Build one with Label or Score.
type Observation struct {
	difficulty  Difficulty
	performance float64
	continuous  bool
}

// Label returns an observation carrying a difficulty label.
func Label(d Difficulty) Observation {
	return Observation{difficulty: d}
}

// Score returns an observation carrying a continuous performance score.
func Score(p float64) Observation {
	return Observation{performance: p, continuous: true}
}

// IsScore reports whether the observation is a continuous score.
func (o Observation) IsScore() bool { return o.continuous }

func (o Observation) String() string {
	if o.continuous {
		return fmt.Sprintf("score(%.3f)", o.performance)
	}
	return string(o.difficulty)
}

// Thresholds maps continuous scores onto difficulty labels. Scores below
// HardBelow are hard, scores at or above EasyAtOrAbove are easy, anything in
// between is normal. With equal thresholds there is no normal band.
type Thresholds struct {
	HardBelow     float64
	EasyAtOrAbove float64
}

// DefaultThresholds splits scores at 0.5 with no normal band.
func DefaultThresholds() Thresholds {
	return Thresholds{HardBelow: 0.5, EasyAtOrAbove: 0.5}
}

// Validate checks 0 <= HardBelow <= EasyAtOrAbove <= 1.
func (t Thresholds) Validate() error {
	if !finite(t.HardBelow) || !finite(t.EasyAtOrAbove) {
		return fmt.Errorf("thresholds must be finite, got hard_below %g and easy_at_or_above %g",
			t.HardBelow, t.EasyAtOrAbove)
	}
	if t.HardBelow < 0 || t.EasyAtOrAbove > 1 || t.HardBelow > t.EasyAtOrAbove {
		return fmt.Errorf("thresholds must satisfy 0 <= hard_below (%g) <= easy_at_or_above (%g) <= 1",
			t.HardBelow, t.EasyAtOrAbove)
	}
	return nil
}

// Normalize converts an observation into a (difficulty, performance) pair.
func (t Thresholds) Normalize(o Observation) (Difficulty, float64, error) {
	if !o.continuous {
		switch o.difficulty {
		case DifficultyHard:
			return DifficultyHard, hardPerformance, nil
		case DifficultyNormal:
			return DifficultyNormal, normalPerformance, nil
		case DifficultyEasy:
			return DifficultyEasy, easyPerformance, nil
		}
		return "", 0, &InvalidObservationError{Reason: fmt.Sprintf("unknown difficulty %q", o.difficulty)}
	}

	p := o.performance
	if math.IsNaN(p) || p < 0 || p > 1 {
		return "", 0, &InvalidObservationError{Reason: fmt.Sprintf("performance %v outside [0, 1]", p)}
	}
	switch {
	case p < t.HardBelow:
		return DifficultyHard, p, nil
	case p >= t.EasyAtOrAbove:
		return DifficultyEasy, p, nil
	default:
		return DifficultyNormal, p, nil
	}
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }
