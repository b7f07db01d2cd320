package llm

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

var estimateSchema = &Schema{
	Name: "test-estimate",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"halflife_days": map[string]any{"type": "number", "exclusiveMinimum": 0},
			"reason":        map[string]any{"type": "string"},
		},
		"required":             []string{"halflife_days", "reason"},
		"additionalProperties": false,
	},
}

const goodEstimate = `{"halflife_days":4.5,"reason":"steady recall"}`

// serve starts a server that answers every request with status and body.
// Decoded request bodies are appended to seen when it is not nil.
func serve(t *testing.T, status int, header http.Header, body any, seen *[]map[string]any) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			var req map[string]any
			_ = json.NewDecoder(r.Body).Decode(&req)
			*seen = append(*seen, req)
		}
		for k, v := range header {
			w.Header()[k] = v
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

// stubAPI is a completer with canned replies.
type stubAPI struct {
	replies []reply
	errs    []error
	calls   int
}

func (s *stubAPI) complete(_ context.Context, model string, req Request) (reply, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return reply{}, s.errs[i]
	}
	if i < len(s.replies) {
		r := s.replies[i]
		if r.model == "" {
			r.model = model
		}
		return r, nil
	}
	return reply{text: goodEstimate, model: model}, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
