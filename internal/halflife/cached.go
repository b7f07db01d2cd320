package halflife

import (
	"context"
	"fmt"
	"math"

	"github.com/dgraph-io/ristretto"
	"github.com/m-mizutani/goerr/v2"
)

// DefaultCacheSize is the number of predictions kept when no size is given.
const DefaultCacheSize = 4096

// Cached memoizes predictions keyed on (performance, interval) rounded to
// three decimal places. Errors are never cached.
type Cached struct {
	inner Predictor
	cache *ristretto.Cache
}

// NewCached wraps p with a cache holding up to size predictions.
func NewCached(p Predictor, size int64) (*Cached, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: size * 10,
		MaxCost:     size,
		BufferItems: 64,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "create prediction cache", goerr.V("size", size))
	}
	return &Cached{inner: p, cache: cache}, nil
}

func (c *Cached) Predict(ctx context.Context, performance, intervalDays float64) (float64, error) {
	key := cacheKey(performance, intervalDays)
	if v, ok := c.cache.Get(key); ok {
		return v.(float64), nil
	}

	h, err := c.inner.Predict(ctx, performance, intervalDays)
	if err != nil {
		return 0, err
	}
	if Valid(h) {
		c.cache.Set(key, h, 1)
	}
	return h, nil
}

// Wait blocks until pending cache writes are visible to Get.
func (c *Cached) Wait() { c.cache.Wait() }

// Close releases the cache's background goroutines.
func (c *Cached) Close() { c.cache.Close() }

func cacheKey(performance, intervalDays float64) string {
	return fmt.Sprintf("%.3f|%.3f", round3(performance), round3(intervalDays))
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
