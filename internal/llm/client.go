package llm

import (
	"cmp"
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/abhisek/cadence/internal/logging"
	"github.com/m-mizutani/goerr/v2"
)

const defaultMaxTokens = 512

// reply is what a vendor adapter hands back before any checking.
type reply struct {
	text      string
	usage     Usage
	model     string
	truncated bool
}

// completer is one vendor's API. Adapters only translate; the client does
// the checking.
type completer interface {
	complete(ctx context.Context, model string, req Request) (reply, error)
}

// client turns a completer into a Provider.
type client struct {
	vendor Vendor
	model  string
	api    completer
}

func (c *client) ModelID() string { return c.model }

// Generate sends req and checks the reply. When the reply arrived but was
// unusable the Response is returned with the error, so the call log still
// sees the tokens spent.
func (c *client) Generate(ctx context.Context, req Request) (*Response, error) {
	if req.MaxTokens <= 0 {
		req.MaxTokens = defaultMaxTokens
	}
	r, err := c.api.complete(ctx, c.model, req)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		Content:   json.RawMessage(r.text),
		Usage:     r.usage,
		Model:     cmp.Or(r.model, c.model),
		Truncated: r.truncated,
	}
	if req.Schema == nil {
		text, _ := json.Marshal(r.text)
		resp.Content = text
		return resp, nil
	}
	if r.truncated {
		return resp, goerr.New("reply hit the token limit",
			goerr.T(TagTruncated),
			goerr.V("max_tokens", req.MaxTokens),
			goerr.V("vendor", string(c.vendor)))
	}
	if err := conform(req.Schema, resp.Content); err != nil {
		return resp, err
	}
	return resp, nil
}

// Option configures Open.
type Option func(*openOptions)

type openOptions struct {
	calls  CallLog
	logger *slog.Logger
	api    completer
}

// WithCallLog records every request, including retries, to log.
func WithCallLog(log CallLog) Option {
	return func(o *openOptions) { o.calls = log }
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *openOptions) { o.logger = logger }
}

// withCompleter swaps the vendor API. Tests use it to drive the full
// middleware stack without a network.
func withCompleter(api completer) Option {
	return func(o *openOptions) { o.api = api }
}

// Open builds a Provider for s. Requests pass through retries, then the call
// log, then the vendor, so each attempt is recorded separately.
func Open(ctx context.Context, s Settings, opts ...Option) (Provider, error) {
	o := openOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.Default()
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	if s.Vendor == VendorScripted && o.api == nil {
		base = NewScripted()
	} else {
		api := o.api
		if api == nil {
			var err error
			if api, err = newCompleter(ctx, s); err != nil {
				return nil, err
			}
		}
		base = &client{vendor: s.Vendor, model: s.ModelName(), api: api}
	}

	var p Provider = base
	if o.calls != nil {
		p = withRecorder(p, s.Vendor, o.calls, o.logger)
	}
	p = withRetry(p, s.Retry, o.logger)
	if s.Timeout > 0 {
		p = &deadline{next: p, timeout: s.Timeout}
	}
	return p, nil
}

func newCompleter(ctx context.Context, s Settings) (completer, error) {
	switch s.Vendor {
	case VendorAnthropic:
		return newAnthropic(s), nil
	case VendorOpenAI:
		return newOpenAI(s, ""), nil
	case VendorOpenRouter:
		return newOpenAI(s, openRouterURL), nil
	case VendorGemini:
		return newGemini(ctx, s)
	}
	return nil, goerr.New("no API adapter for vendor", goerr.V("vendor", string(s.Vendor)))
}

// deadline bounds a request, retries included.
type deadline struct {
	next    Provider
	timeout time.Duration
}

func (d *deadline) ModelID() string { return d.next.ModelID() }

func (d *deadline) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.next.Generate(ctx, req)
}
