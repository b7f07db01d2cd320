package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/cadence/internal/logging"
)

type purposeKey struct{}

// WithPurpose labels requests made with ctx. The label groups calls in the
// call log and in `cadence llm usage`.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// Purpose returns the label set by WithPurpose, or "unlabeled".
func Purpose(ctx context.Context) string {
	if p, ok := ctx.Value(purposeKey{}).(string); ok && p != "" {
		return p
	}
	return "unlabeled"
}

// Call is one request as seen by the call log.
type Call struct {
	Vendor       string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	Latency      time.Duration
	Err          string
	Request      string
	Response     string
}

func (c Call) OK() bool { return c.Err == "" }

// CallLog persists calls. The store implements it.
type CallLog interface {
	RecordCall(ctx context.Context, c Call) error
}

type recorder struct {
	next   Provider
	vendor Vendor
	log    CallLog
	logger *slog.Logger
}

func withRecorder(p Provider, vendor Vendor, log CallLog, logger *slog.Logger) *recorder {
	return &recorder{next: p, vendor: vendor, log: log, logger: logger}
}

func (r *recorder) ModelID() string { return r.next.ModelID() }

func (r *recorder) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := r.next.Generate(ctx, req)

	c := Call{
		Vendor:  string(r.vendor),
		Model:   r.next.ModelID(),
		Purpose: Purpose(ctx),
		Latency: time.Since(start),
		Request: transcript(req),
	}
	if resp != nil {
		c.Model = resp.Model
		c.InputTokens = resp.Usage.InputTokens
		c.OutputTokens = resp.Usage.OutputTokens
		c.Response = string(resp.Content)
	}
	if err != nil {
		c.Err = err.Error()
	}

	r.logger.Debug("llm call",
		slog.String("purpose", c.Purpose),
		slog.String("model", c.Model),
		slog.Duration("latency", c.Latency),
		slog.Int("tokens", c.InputTokens+c.OutputTokens),
		slog.Bool("ok", c.OK()))

	// Recording is best effort.
	if lerr := r.log.RecordCall(context.WithoutCancel(ctx), c); lerr != nil {
		r.logger.Warn("could not record llm call", logging.ErrAttr(lerr))
	}
	return resp, err
}

// transcript renders req for humans reading `cadence llm show`.
func transcript(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "system:\n%s\n\n", req.System)
	}
	fmt.Fprintf(&b, "prompt:\n%s\n", req.Prompt)
	if req.Schema != nil {
		def, err := json.MarshalIndent(req.Schema.Definition, "", "  ")
		if err == nil {
			fmt.Fprintf(&b, "\nschema %s:\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}
