package llm

import (
	"context"
	"encoding/json"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

// OpenRouter speaks the OpenAI chat API, so it shares this adapter.
const openRouterURL = "https://openrouter.ai/api/v1"

type openaiAPI struct {
	vendor Vendor
	client *openai.Client
}

// newOpenAI builds the adapter. fallbackURL applies when the settings carry
// no base URL of their own.
func newOpenAI(s Settings, fallbackURL string) *openaiAPI {
	cfg := openai.DefaultConfig(s.APIKey)
	switch {
	case s.BaseURL != "":
		cfg.BaseURL = s.BaseURL
	case fallbackURL != "":
		cfg.BaseURL = fallbackURL
	}
	vendor := s.Vendor
	if vendor == "" {
		vendor = VendorOpenAI
	}
	return &openaiAPI{vendor: vendor, client: openai.NewClientWithConfig(cfg)}
}

func (a *openaiAPI) complete(ctx context.Context, model string, req Request) (reply, error) {
	chat := openai.ChatCompletionRequest{
		Model:               model,
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         float32(req.Temperature),
	}
	if req.System != "" {
		chat.Messages = append(chat.Messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	chat.Messages = append(chat.Messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})
	if req.Schema != nil {
		def, err := json.Marshal(req.Schema.Definition)
		if err != nil {
			return reply{}, err
		}
		chat.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        req.Schema.Name,
				Description: req.Schema.Description,
				Schema:      json.RawMessage(def),
				Strict:      true,
			},
		}
	}

	resp, err := a.client.CreateChatCompletion(ctx, chat)
	if err != nil {
		return reply{}, a.classify(err)
	}

	out := reply{
		model: resp.Model,
		usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}
	if len(resp.Choices) > 0 {
		out.text = resp.Choices[0].Message.Content
		out.truncated = resp.Choices[0].FinishReason == openai.FinishReasonLength
	}
	return out, nil
}

func (a *openaiAPI) classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(a.vendor, apiErr.HTTPStatusCode, 0, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus(a.vendor, reqErr.HTTPStatusCode, 0, err)
	}
	return classifyStatus(a.vendor, 0, 0, err)
}
