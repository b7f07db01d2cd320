package spacedrep

// Stage is a discrete learning-progress bucket. Stages are ordered; the
// zero value is StageFirstTime.
type Stage int

const (
	StageFirstTime Stage = iota
	StageEarly
	StageMid
	StageLate
	StageMastered
)

var stageLabels = [...]string{
	StageFirstTime: "first_time",
	StageEarly:     "early_stage",
	StageMid:       "mid_stage",
	StageLate:      "late_stage",
	StageMastered:  "mastered",
}

// baseIntervals defines the default review cadence in days for each stage.
var baseIntervals = [...]float64{
	StageFirstTime: 1,
	StageEarly:     3,
	StageMid:       7,
	StageLate:      14,
	StageMastered:  30,
}

// String returns the stage label, e.g. "mid_stage".
func (s Stage) String() string {
	if !s.Valid() {
		return "unknown"
	}
	return stageLabels[s]
}

// Valid reports whether s is a member of the stage table.
func (s Stage) Valid() bool {
	return s >= StageFirstTime && s <= StageMastered
}

// ParseStage converts a stage label into a Stage.
func ParseStage(label string) (Stage, error) {
	for i, l := range stageLabels {
		if l == label {
			return Stage(i), nil
		}
	}
	return 0, &InvalidStageError{Label: label}
}

// MarshalText implements encoding.TextMarshaler.
func (s Stage) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, &InvalidStageError{Label: s.String(), Value: int(s)}
	}
	return []byte(stageLabels[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Stage) UnmarshalText(b []byte) error {
	parsed, err := ParseStage(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// StageTable is the ordered stage sequence with each stage's base interval.
// The zero value is ready to use.
type StageTable struct{}

// Stages returns the stages in learning order.
func (StageTable) Stages() []Stage {
	return []Stage{StageFirstTime, StageEarly, StageMid, StageLate, StageMastered}
}

// BaseInterval returns the base review interval in days for stage.
func (StageTable) BaseInterval(s Stage) (float64, error) {
	if !s.Valid() {
		return 0, &InvalidStageError{Label: s.String(), Value: int(s)}
	}
	return baseIntervals[s], nil
}

// Next returns the stage after s, saturating at StageMastered.
func (StageTable) Next(s Stage) Stage {
	if s >= StageMastered {
		return StageMastered
	}
	if s < StageFirstTime {
		return StageFirstTime
	}
	return s + 1
}

// Previous returns the stage before s, saturating at StageFirstTime.
func (StageTable) Previous(s Stage) Stage {
	if s <= StageFirstTime {
		return StageFirstTime
	}
	if s > StageMastered {
		return StageMastered
	}
	return s - 1
}
