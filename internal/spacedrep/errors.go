package spacedrep

import (
	"errors"
	"fmt"
)

// ErrItemNotFound is returned by a Repository when no item has the given ID.
var ErrItemNotFound = errors.New("item not found")

// ErrVersionConflict is returned by a Repository when the item was modified
// by another writer since it was loaded.
var ErrVersionConflict = errors.New("item version conflict")

// InvalidStageError indicates an unrecognized stage label or value.
type InvalidStageError struct {
	Label string
	Value int
}

func (e *InvalidStageError) Error() string {
	if e.Label == "" || e.Label == "unknown" {
		return fmt.Sprintf("invalid stage %d", e.Value)
	}
	return fmt.Sprintf("invalid stage %q", e.Label)
}

// InvalidObservationError indicates a difficulty label outside the recognized
// set or a performance score outside [0, 1].
type InvalidObservationError struct {
	Reason string
}

func (e *InvalidObservationError) Error() string {
	return "invalid observation: " + e.Reason
}

// PredictorUnavailableError wraps a half-life predictor failure. The
// scheduler recovers from it with the fallback heuristic and never returns it
// from RecordReview.
type PredictorUnavailableError struct {
	Err error
}

func (e *PredictorUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("half-life predictor unavailable: %v", e.Err)
	}
	return "half-life predictor unavailable"
}

func (e *PredictorUnavailableError) Unwrap() error { return e.Err }

// UnknownItemError indicates a review for an item with no prior state while
// the scheduler runs in strict mode.
type UnknownItemError struct {
	ID string
}

func (e *UnknownItemError) Error() string {
	return fmt.Sprintf("unknown item %q", e.ID)
}

// Is makes strict-mode rejections match ErrItemNotFound.
func (e *UnknownItemError) Is(target error) bool { return target == ErrItemNotFound }
