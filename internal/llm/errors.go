package llm

import (
	"errors"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

var (
	// TagRateLimited marks 429 replies. Retried after the vendor's hint
	// when one was given.
	TagRateLimited = goerr.NewTag("llm_rate_limited")
	// TagUnavailable marks outages, 5xx replies and transport failures.
	TagUnavailable = goerr.NewTag("llm_unavailable")
	// TagBadOutput marks replies that are not JSON or fail the schema.
	TagBadOutput = goerr.NewTag("llm_bad_output")
	// TagTruncated marks replies cut off at the token limit.
	TagTruncated = goerr.NewTag("llm_truncated")
	// TagRejected marks 4xx replies other than 429. Never retried.
	TagRejected = goerr.NewTag("llm_rejected")
)

// retryHint carries a vendor's Retry-After through the goerr chain.
type retryHint struct {
	after time.Duration
}

func (h *retryHint) Error() string { return "retry after " + h.after.String() }

// RetryAfter reports the wait a rate-limited vendor asked for.
func RetryAfter(err error) (time.Duration, bool) {
	var h *retryHint
	if errors.As(err, &h) && h.after > 0 {
		return h.after, true
	}
	return 0, false
}

// classifyStatus tags a vendor API error by HTTP status. Status 0 means the
// request never got a reply.
func classifyStatus(vendor Vendor, status int, retryAfter time.Duration, err error) error {
	opts := []goerr.Option{goerr.V("vendor", string(vendor)), goerr.V("status", status)}
	switch {
	case status == http.StatusTooManyRequests:
		if retryAfter > 0 {
			err = errors.Join(err, &retryHint{after: retryAfter})
		}
		return goerr.Wrap(err, "rate limited", append(opts, goerr.T(TagRateLimited))...)
	case status == 0 || status >= 500:
		return goerr.Wrap(err, "provider unavailable", append(opts, goerr.T(TagUnavailable))...)
	default:
		return goerr.Wrap(err, "request rejected", append(opts, goerr.T(TagRejected))...)
	}
}

// parseRetryAfter reads a Retry-After header given in seconds.
func parseRetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	d, err := time.ParseDuration(resp.Header.Get("Retry-After") + "s")
	if err != nil || d < 0 {
		return 0
	}
	return d
}
