package llm

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/m-mizutani/gt"
)

type memoryLog struct {
	calls []Call
	err   error
}

func (m *memoryLog) RecordCall(_ context.Context, c Call) error {
	m.calls = append(m.calls, c)
	return m.err
}

func TestRecorder_Success(t *testing.T) {
	script := NewScripted(Step{JSON: goodEstimate, Usage: Usage{InputTokens: 12, OutputTokens: 7}})
	log := &memoryLog{}
	p := withRecorder(script, VendorScripted, log, quietLogger())

	ctx := WithPurpose(context.Background(), "halflife")
	_, err := p.Generate(ctx, Request{
		System: "be brief",
		Prompt: "interval_days: 3",
		Schema: estimateSchema,
	})
	gt.NoError(t, err)

	gt.V(t, len(log.calls)).Equal(1)
	c := log.calls[0]
	gt.V(t, c.Purpose).Equal("halflife")
	gt.V(t, c.Vendor).Equal("scripted")
	gt.V(t, c.Model).Equal("scripted")
	gt.True(t, c.OK())
	gt.V(t, c.InputTokens).Equal(12)
	gt.V(t, c.OutputTokens).Equal(7)
	gt.S(t, c.Request).Contains("system:\nbe brief").Contains("prompt:\ninterval_days: 3").Contains("schema test-estimate")
	gt.S(t, c.Response).Contains("halflife_days")
}

func TestRecorder_FailureStillReturned(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	log := &memoryLog{err: errors.New("disk full")}
	p := withRecorder(NewScripted(Fail(errors.New("boom"))), VendorOpenAI, log, logger)

	_, err := p.Generate(context.Background(), Request{Prompt: "x"})
	gt.V(t, err.Error()).Equal("boom")
	gt.V(t, len(log.calls)).Equal(1)
	gt.False(t, log.calls[0].OK())
	gt.V(t, log.calls[0].Err).Equal("boom")
	gt.V(t, log.calls[0].Purpose).Equal("unlabeled")
	gt.S(t, buf.String()).Contains("could not record llm call").Contains("disk full")
}

func TestRecorder_KeepsTokensOfUnusableReply(t *testing.T) {
	log := &memoryLog{}
	script := NewScripted(Step{JSON: `{"halflife_days":"soon"}`, Usage: Usage{InputTokens: 9, OutputTokens: 4}})
	p := withRecorder(script, VendorScripted, log, quietLogger())

	_, err := p.Generate(context.Background(), Request{Schema: estimateSchema})
	gt.Error(t, err)
	gt.V(t, log.calls[0].OutputTokens).Equal(4)
	gt.S(t, log.calls[0].Response).Contains("soon")
}
