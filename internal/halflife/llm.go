package halflife

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhisek/cadence/internal/llm"
)

// LLMPurpose labels half-life requests in the LLM call log.
const LLMPurpose = "halflife"

const llmSystemPrompt = `You estimate memory half-lives for a spaced-repetition scheduler.
Given the learner's performance on the last review (0 = failed, 1 = perfect) and the
interval in days until the next review, answer with the number of days after which
recall probability drops to 1/e. Answer with a positive number of days.`

var halfLifeSchema = &llm.Schema{
	Name:        "halflife-estimate",
	Description: "Estimated memory half-life in days",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"halflife_days": map[string]any{
				"type":             "number",
				"exclusiveMinimum": 0,
			},
			"reason": map[string]any{
				"type": "string",
			},
		},
		"required":             []string{"halflife_days", "reason"},
		"additionalProperties": false,
	},
}

type llmEstimate struct {
	HalfLifeDays float64 `json:"halflife_days"`
	Reason       string  `json:"reason"`
}

// LLM asks a language model for the half-life.
type LLM struct {
	provider  llm.Provider
	maxTokens int
}

// NewLLM returns a predictor backed by provider.
func NewLLM(provider llm.Provider) *LLM {
	return &LLM{provider: provider, maxTokens: 256}
}

func (p *LLM) Predict(ctx context.Context, performance, intervalDays float64) (float64, error) {
	ctx = llm.WithPurpose(ctx, LLMPurpose)

	resp, err := p.provider.Generate(ctx, llm.Request{
		System:    llmSystemPrompt,
		Prompt:    fmt.Sprintf("performance: %.3f\ninterval_days: %.3f", performance, intervalDays),
		Schema:    halfLifeSchema,
		MaxTokens: p.maxTokens,
	})
	if err != nil {
		return 0, err
	}

	var est llmEstimate
	if err := json.Unmarshal(resp.Content, &est); err != nil {
		return 0, fmt.Errorf("decode half-life estimate: %w", err)
	}
	if !Valid(est.HalfLifeDays) {
		return 0, fmt.Errorf("model returned invalid half-life %g", est.HalfLifeDays)
	}
	return est.HalfLifeDays, nil
}
