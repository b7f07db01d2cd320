// Package llm talks to hosted language models for the half-life predictor.
// A Provider answers one prompt with JSON that matches a schema. Vendors
// sit behind the same client, so retries, schema checks and the call log
// behave identically whichever model is configured.
package llm

import (
	"context"
	"encoding/json"
)

type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	ModelID() string
}

// Request is a single-turn prompt.
type Request struct {
	System string
	Prompt string

	// Schema constrains the reply. Nil means free text.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

// Schema is a named JSON Schema. Name doubles as the cache key for the
// compiled form, so two schemas must not share a name.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

type Response struct {
	Content json.RawMessage
	Usage   Usage
	Model   string

	// Truncated is set when the vendor stopped at the token limit. The
	// client turns truncated schema replies into errors.
	Truncated bool
}

type Usage struct {
	InputTokens  int
	OutputTokens int
}

func (u Usage) Total() int { return u.InputTokens + u.OutputTokens }
