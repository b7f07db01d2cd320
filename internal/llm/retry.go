package llm

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/abhisek/cadence/internal/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Backoff is a capped exponential schedule with full jitter: the wait before
// retry n is uniform in [0, min(Cap, Base·2ⁿ)).
type Backoff struct {
	Attempts int           `yaml:"attempts" mapstructure:"attempts"`
	Base     time.Duration `yaml:"base" mapstructure:"base"`
	Cap      time.Duration `yaml:"cap" mapstructure:"cap"`
}

func DefaultBackoff() Backoff {
	return Backoff{Attempts: 3, Base: 500 * time.Millisecond, Cap: 8 * time.Second}
}

func (b Backoff) Validate() error {
	if b.Attempts < 1 {
		return goerr.New("llm.retry.attempts must be at least 1", goerr.V("attempts", b.Attempts))
	}
	if b.Base < 0 || b.Cap < b.Base {
		return goerr.New("llm.retry needs 0 <= base <= cap",
			goerr.V("base", b.Base), goerr.V("cap", b.Cap))
	}
	return nil
}

// ceiling is the upper bound of the jittered wait before retry n.
func (b Backoff) ceiling(n int) time.Duration {
	d := b.Base
	for range n {
		if d >= b.Cap/2 {
			return b.Cap
		}
		d *= 2
	}
	return min(d, b.Cap)
}

type sleepFunc func(ctx context.Context, d time.Duration) error

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// retrying re-sends a request while the failure looks transient. A reply
// that fails the schema is re-asked once since sampling may fix it.
type retrying struct {
	next    Provider
	backoff Backoff
	logger  *slog.Logger
	sleep   sleepFunc
	jitter  func(time.Duration) time.Duration
}

func withRetry(p Provider, b Backoff, logger *slog.Logger) *retrying {
	return &retrying{
		next:    p,
		backoff: b,
		logger:  logger,
		sleep:   sleepCtx,
		jitter: func(d time.Duration) time.Duration {
			if d <= 0 {
				return 0
			}
			return rand.N(d)
		},
	}
}

func (r *retrying) ModelID() string { return r.next.ModelID() }

func (r *retrying) Generate(ctx context.Context, req Request) (*Response, error) {
	badOutputSeen := false
	var err error
	for attempt := range r.backoff.Attempts {
		var resp *Response
		resp, err = r.next.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}

		switch {
		case goerr.HasTag(err, TagBadOutput):
			if badOutputSeen {
				return nil, err
			}
			badOutputSeen = true
		case goerr.HasTag(err, TagRejected), goerr.HasTag(err, TagTruncated):
			return nil, err
		}
		if attempt == r.backoff.Attempts-1 {
			break
		}

		wait, hinted := RetryAfter(err)
		if !hinted {
			wait = r.jitter(r.backoff.ceiling(attempt))
		}
		r.logger.Debug("retrying llm request",
			slog.Int("attempt", attempt+1),
			slog.Duration("wait", wait),
			logging.ErrAttr(err))
		if serr := r.sleep(ctx, wait); serr != nil {
			return nil, serr
		}
	}
	return nil, err
}
