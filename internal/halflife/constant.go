package halflife

import (
	"context"
	"fmt"
)

// Constant always predicts the same half-life.
type Constant struct {
	Days float64
}

// NewConstant validates days.
func NewConstant(days float64) (*Constant, error) {
	if !Valid(days) {
		return nil, fmt.Errorf("constant half-life must be positive, got %g", days)
	}
	return &Constant{Days: days}, nil
}

func (c *Constant) Predict(_ context.Context, _, _ float64) (float64, error) {
	return c.Days, nil
}
