package llm

import (
	"testing"

	"github.com/m-mizutani/gt"
)

func TestPriceOf(t *testing.T) {
	tests := []struct {
		model string
		want  Price
		ok    bool
	}{
		{"claude-haiku-4-5-20251001", Price{1, 5}, true},
		{"claude-opus-4-1-20250805", Price{15, 75}, true},
		{"claude-opus-4-5", Price{5, 25}, true},
		{"gpt-4.1-mini-2025-04-14", Price{0.4, 1.6}, true},
		{"gpt-4.1-2025-04-14", Price{2, 8}, true},
		{"google/gemini-2.5-flash-lite", Price{0.1, 0.4}, true},
		{"gemini-2.5-flash", Price{0.3, 2.5}, true},
		{"scripted", Price{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			got, ok := PriceOf(tt.model)
			gt.V(t, ok).Equal(tt.ok)
			gt.V(t, got).Equal(tt.want)
		})
	}
}

func TestPriceCost(t *testing.T) {
	p := Price{Input: 1, Output: 5}
	gt.V(t, p.Cost(Usage{InputTokens: 2_000_000, OutputTokens: 100_000})).Equal(2.5)
	gt.V(t, p.Cost(Usage{})).Equal(0.0)
}
