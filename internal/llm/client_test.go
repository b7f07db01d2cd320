package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

func testSettings(v Vendor) Settings {
	return Settings{
		Vendor:  v,
		APIKey:  "test-key",
		Timeout: time.Second,
		Retry:   Backoff{Attempts: 3},
	}
}

func TestOpen_RecordsEveryAttempt(t *testing.T) {
	api := &stubAPI{errs: []error{classifyStatus(VendorAnthropic, 529, 0, errors.New("overloaded"))}}
	log := &memoryLog{}

	p, err := Open(context.Background(), testSettings(VendorAnthropic),
		withCompleter(api), WithCallLog(log), WithLogger(quietLogger()))
	gt.NoError(t, err)
	gt.V(t, p.ModelID()).Equal("claude-haiku-4-5")

	resp, err := p.Generate(WithPurpose(context.Background(), "halflife"), Request{Schema: estimateSchema})
	gt.NoError(t, err)
	gt.V(t, string(resp.Content)).Equal(goodEstimate)
	gt.V(t, api.calls).Equal(2)
	gt.V(t, len(log.calls)).Equal(2)
	gt.False(t, log.calls[0].OK())
	gt.True(t, log.calls[1].OK())
}

func TestOpen_FreeText(t *testing.T) {
	api := &stubAPI{replies: []reply{{text: `say "hi"`}}}
	p, err := Open(context.Background(), testSettings(VendorOpenAI), withCompleter(api))
	gt.NoError(t, err)

	resp, err := p.Generate(context.Background(), Request{Prompt: "hello"})
	gt.NoError(t, err)
	gt.V(t, string(resp.Content)).Equal(`"say \"hi\""`)
	gt.V(t, resp.Model).Equal("gpt-4.1-mini")
}

func TestOpen_Timeout(t *testing.T) {
	s := testSettings(VendorGemini)
	s.Timeout = 20 * time.Millisecond
	p, err := Open(context.Background(), s, withCompleter(blockingAPI{}))
	gt.NoError(t, err)

	_, err = p.Generate(context.Background(), Request{})
	gt.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestOpen_Scripted(t *testing.T) {
	p, err := Open(context.Background(), Settings{Vendor: VendorScripted, Retry: Backoff{Attempts: 1}})
	gt.NoError(t, err)
	gt.V(t, p.ModelID()).Equal("scripted")

	_, err = p.Generate(context.Background(), Request{})
	gt.True(t, goerr.HasTag(err, TagUnavailable))
}

func TestOpen_InvalidSettings(t *testing.T) {
	_, err := Open(context.Background(), Settings{Vendor: VendorAnthropic, Retry: DefaultBackoff()})
	gt.Error(t, err)
}

type blockingAPI struct{}

func (blockingAPI) complete(ctx context.Context, _ string, _ Request) (reply, error) {
	<-ctx.Done()
	return reply{}, ctx.Err()
}
