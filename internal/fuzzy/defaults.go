package fuzzy

import "fmt"

// SetSpec is the serializable form of an input set and the output it concludes.
type SetSpec struct {
	Name   string     `yaml:"name" mapstructure:"name" json:"name"`
	Points [4]float64 `yaml:"points" mapstructure:"points" json:"points"`
	Output string     `yaml:"output" mapstructure:"output" json:"output"`
}

// OutputSpec is the serializable form of an output bucket.
type OutputSpec struct {
	Name  string     `yaml:"name" mapstructure:"name" json:"name"`
	Range [2]float64 `yaml:"range" mapstructure:"range" json:"range"`
}

// Spec describes a selector in configuration files.
type Spec struct {
	Sets    []SetSpec    `yaml:"sets" mapstructure:"sets" json:"sets"`
	Outputs []OutputSpec `yaml:"outputs" mapstructure:"outputs" json:"outputs"`
}

// DefaultSpec returns the stage-shaped sets used by default: one input set
// per learning stage, each concluding a single output bucket.
func DefaultSpec() Spec {
	return Spec{
		Sets: []SetSpec{
			{Name: "first_time", Points: [4]float64{0, 0, 1, 2}, Output: "same_day"},
			{Name: "early_stage", Points: [4]float64{1, 2, 3, 5}, Output: "few_days"},
			{Name: "mid_stage", Points: [4]float64{3, 5, 10, 15}, Output: "week_plus"},
			{Name: "late_stage", Points: [4]float64{10, 15, 20, 30}, Output: "two_weeks"},
			{Name: "mastered", Points: [4]float64{20, 30, 60, 60}, Output: "monthly"},
		},
		Outputs: []OutputSpec{
			{Name: "same_day", Range: [2]float64{0, 1}},
			{Name: "few_days", Range: [2]float64{2, 3}},
			{Name: "week_plus", Range: [2]float64{5, 10}},
			{Name: "two_weeks", Range: [2]float64{10, 20}},
			{Name: "monthly", Range: [2]float64{30, 60}},
		},
	}
}

// Build validates sp and constructs its Selector.
func (sp Spec) Build() (*Selector, error) {
	if len(sp.Sets) == 0 {
		return nil, fmt.Errorf("fuzzy spec has no sets")
	}
	sets := make([]Set, len(sp.Sets))
	rules := make([]Rule, 0, len(sp.Sets))
	for i, s := range sp.Sets {
		sets[i] = Set{
			Name:  s.Name,
			Shape: Trapezoid{A: s.Points[0], B: s.Points[1], C: s.Points[2], D: s.Points[3]},
		}
		if s.Output != "" {
			rules = append(rules, Rule{If: s.Name, Then: s.Output})
		}
	}
	outputs := make([]Output, len(sp.Outputs))
	for i, o := range sp.Outputs {
		outputs[i] = Output{Name: o.Name, Range: Range{Lo: o.Range[0], Hi: o.Range[1]}}
	}
	return NewSelector(sets, rules, outputs)
}

// Default returns the selector built from DefaultSpec.
func Default() *Selector {
	s, err := DefaultSpec().Build()
	if err != nil {
		panic(fmt.Sprintf("fuzzy: default spec is invalid: %v", err))
	}
	return s
}
