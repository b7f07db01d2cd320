package llm

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

func anthropicMessage(text, stop string) map[string]any {
	return map[string]any{
		"id":          "msg_1",
		"type":        "message",
		"role":        "assistant",
		"model":       "claude-haiku-4-5-20251001",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
	}
}

func anthropicError(kind, msg string) map[string]any {
	return map[string]any{"type": "error", "error": map[string]any{"type": kind, "message": msg}}
}

func anthropicClient(url string) *client {
	return &client{
		vendor: VendorAnthropic,
		model:  "claude-haiku-4-5",
		api:    newAnthropic(Settings{APIKey: "test-key", BaseURL: url}),
	}
}

func TestAnthropic(t *testing.T) {
	ctx := context.Background()
	req := Request{System: "You estimate memory half-lives.", Prompt: "performance: 0.800", Schema: estimateSchema}

	t.Run("reply", func(t *testing.T) {
		var seen []map[string]any
		url := serve(t, http.StatusOK, nil, anthropicMessage(goodEstimate, "end_turn"), &seen)
		resp, err := anthropicClient(url).Generate(ctx, req)
		gt.NoError(t, err)
		gt.V(t, string(resp.Content)).Equal(goodEstimate)
		gt.V(t, resp.Usage).Equal(Usage{InputTokens: 50, OutputTokens: 30})
		gt.V(t, resp.Model).Equal("claude-haiku-4-5-20251001")
		gt.V(t, len(seen)).Equal(1)
		gt.V(t, seen[0]["model"]).Equal("claude-haiku-4-5")
		gt.V(t, seen[0]["max_tokens"]).Equal(float64(defaultMaxTokens))
	})

	t.Run("truncated", func(t *testing.T) {
		url := serve(t, http.StatusOK, nil, anthropicMessage(`{"halflife_days":4`, "max_tokens"), nil)
		resp, err := anthropicClient(url).Generate(ctx, req)
		gt.True(t, goerr.HasTag(err, TagTruncated))
		gt.True(t, resp.Truncated)
		gt.V(t, resp.Usage.OutputTokens).Equal(30)
	})

	t.Run("off schema", func(t *testing.T) {
		url := serve(t, http.StatusOK, nil, anthropicMessage(`{"halflife_days":"soon"}`, "end_turn"), nil)
		_, err := anthropicClient(url).Generate(ctx, req)
		gt.True(t, goerr.HasTag(err, TagBadOutput))
	})

	t.Run("rate limited", func(t *testing.T) {
		hdr := http.Header{"Retry-After": []string{"2"}}
		url := serve(t, http.StatusTooManyRequests, hdr, anthropicError("rate_limit_error", "slow down"), nil)
		_, err := anthropicClient(url).Generate(ctx, req)
		gt.True(t, goerr.HasTag(err, TagRateLimited))
		wait, ok := RetryAfter(err)
		gt.True(t, ok)
		gt.V(t, wait).Equal(2 * time.Second)
	})

	t.Run("server error", func(t *testing.T) {
		url := serve(t, http.StatusInternalServerError, nil, anthropicError("api_error", "boom"), nil)
		_, err := anthropicClient(url).Generate(ctx, req)
		gt.True(t, goerr.HasTag(err, TagUnavailable))
	})

	t.Run("bad request", func(t *testing.T) {
		url := serve(t, http.StatusBadRequest, nil, anthropicError("invalid_request_error", "no"), nil)
		_, err := anthropicClient(url).Generate(ctx, req)
		gt.True(t, goerr.HasTag(err, TagRejected))
	})
}

func chatCompletion(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1767225600,
		"model":   "gpt-4.1-mini-2025-04-14",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
	}
}

func TestOpenAI(t *testing.T) {
	ctx := context.Background()
	req := Request{System: "You estimate memory half-lives.", Prompt: "interval_days: 3.000", Schema: estimateSchema}

	t.Run("reply", func(t *testing.T) {
		var seen []map[string]any
		url := serve(t, http.StatusOK, nil, chatCompletion(goodEstimate, "stop"), &seen)
		c := &client{vendor: VendorOpenAI, model: "gpt-4.1-mini",
			api: newOpenAI(Settings{Vendor: VendorOpenAI, APIKey: "k", BaseURL: url}, "")}

		resp, err := c.Generate(ctx, req)
		gt.NoError(t, err)
		gt.V(t, resp.Usage).Equal(Usage{InputTokens: 40, OutputTokens: 25})
		gt.V(t, resp.Model).Equal("gpt-4.1-mini-2025-04-14")

		gt.V(t, len(seen)).Equal(1)
		msgs := seen[0]["messages"].([]any)
		gt.V(t, len(msgs)).Equal(2)
		gt.V(t, msgs[0].(map[string]any)["role"]).Equal("system")
		format := seen[0]["response_format"].(map[string]any)
		gt.V(t, format["type"]).Equal("json_schema")
		gt.V(t, format["json_schema"].(map[string]any)["name"]).Equal("test-estimate")
	})

	t.Run("truncated", func(t *testing.T) {
		url := serve(t, http.StatusOK, nil, chatCompletion(`{"half`, "length"), nil)
		c := &client{vendor: VendorOpenAI, model: "gpt-4.1-mini",
			api: newOpenAI(Settings{APIKey: "k", BaseURL: url}, "")}
		_, err := c.Generate(ctx, req)
		gt.True(t, goerr.HasTag(err, TagTruncated))
	})

	t.Run("unavailable", func(t *testing.T) {
		body := map[string]any{"error": map[string]any{"message": "overloaded", "type": "server_error"}}
		url := serve(t, http.StatusServiceUnavailable, nil, body, nil)
		c := &client{vendor: VendorOpenAI, model: "gpt-4.1-mini",
			api: newOpenAI(Settings{APIKey: "k", BaseURL: url}, "")}
		_, err := c.Generate(ctx, req)
		gt.True(t, goerr.HasTag(err, TagUnavailable))
	})

	t.Run("openrouter keeps vendor prefix", func(t *testing.T) {
		var seen []map[string]any
		url := serve(t, http.StatusOK, nil, chatCompletion(goodEstimate, "stop"), &seen)
		s := Settings{Vendor: VendorOpenRouter, APIKey: "k", BaseURL: url}
		c := &client{vendor: s.Vendor, model: s.ModelName(), api: newOpenAI(s, openRouterURL)}
		_, err := c.Generate(ctx, req)
		gt.NoError(t, err)
		gt.V(t, seen[0]["model"]).Equal("google/gemini-2.5-flash")
	})
}

func TestGeminiSchema(t *testing.T) {
	s := geminiSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topic":      map[string]any{"type": "string", "description": "topic path"},
			"reviews":    map[string]any{"type": "integer", "minimum": 0},
			"confidence": map[string]any{"type": "string", "enum": []any{"low", "medium", "high"}},
			"intervals":  map[string]any{"type": "array", "items": map[string]any{"type": "number", "maximum": 365.0}},
		},
		"required": []string{"topic", "reviews"},
	})

	gt.V(t, string(s.Type)).Equal("OBJECT")
	gt.V(t, len(s.Properties)).Equal(4)
	gt.V(t, string(s.Properties["topic"].Type)).Equal("STRING")
	gt.V(t, s.Properties["topic"].Description).Equal("topic path")
	gt.V(t, string(s.Properties["reviews"].Type)).Equal("INTEGER")
	gt.V(t, *s.Properties["reviews"].Minimum).Equal(0.0)
	gt.V(t, s.Properties["confidence"].Enum).Equal([]string{"low", "medium", "high"})
	gt.V(t, string(s.Properties["intervals"].Items.Type)).Equal("NUMBER")
	gt.V(t, *s.Properties["intervals"].Items.Maximum).Equal(365.0)
	gt.V(t, s.Required).Equal([]string{"topic", "reviews"})

	// Decoded JSON carries []any rather than []string.
	gt.V(t, geminiSchema(map[string]any{"required": []any{"a", 1, "b"}}).Required).Equal([]string{"a", "b"})
}
