package llm

import (
	"context"
	"encoding/json"
	"slices"
	"sync"

	"github.com/m-mizutani/goerr/v2"
)

// Step is one scripted outcome: either JSON content or an error.
type Step struct {
	JSON  string
	Usage Usage
	Err   error
}

// Reply is a step that answers with js.
func Reply(js string) Step { return Step{JSON: js} }

// Fail is a step that returns err.
func Fail(err error) Step { return Step{Err: err} }

// Scripted is a Provider that plays back steps in order and remembers every
// request. Once the script runs out it reports the vendor as unavailable.
type Scripted struct {
	mu       sync.Mutex
	steps    []Step
	requests []Request
}

func NewScripted(steps ...Step) *Scripted {
	return &Scripted{steps: steps}
}

func (s *Scripted) ModelID() string { return "scripted" }

func (s *Scripted) Generate(_ context.Context, req Request) (*Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)

	if len(s.steps) == 0 {
		return nil, goerr.New("script exhausted", goerr.T(TagUnavailable))
	}
	step := s.steps[0]
	s.steps = s.steps[1:]
	if step.Err != nil {
		return nil, step.Err
	}
	resp := &Response{
		Content: json.RawMessage(step.JSON),
		Usage:   step.Usage,
		Model:   "scripted",
	}
	if err := conform(req.Schema, resp.Content); err != nil {
		return resp, err
	}
	return resp, nil
}

// Requests returns a copy of the requests seen so far.
func (s *Scripted) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}
