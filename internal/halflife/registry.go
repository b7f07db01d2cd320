package halflife

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/abhisek/cadence/internal/llm"
	"github.com/m-mizutani/goerr/v2"
)

// Predictor kinds understood by New.
const (
	KindHeuristic  = "heuristic"
	KindNone       = "none"
	KindConstant   = "constant"
	KindRegression = "regression"
	KindLLM        = "llm"
	KindONNX       = "onnx"
)

// Options carries everything a Factory might need. Each kind reads only the
// fields it cares about.
type Options struct {
	ConstantDays float64
	Samples      []Sample
	Provider     llm.Provider
	ModelPath    string
	LibraryPath  string
	CacheSize    int64
}

// Factory builds a Predictor of one kind.
type Factory func(ctx context.Context, opts Options) (Predictor, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes a predictor kind available to New. Registering the same
// kind twice panics.
func Register(kind string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[kind]; dup {
		panic(fmt.Sprintf("halflife: predictor kind %q registered twice", kind))
	}
	registry[kind] = f
}

// Kinds lists the registered kinds plus heuristic and none, sorted.
func Kinds() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	kinds := []string{KindHeuristic, KindNone}
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// New builds the predictor named by kind. The heuristic and none kinds
// return a nil Predictor, which makes the scheduler use Fallback directly.
// A positive opts.CacheSize wraps the result with a Cached decorator.
func New(ctx context.Context, kind string, opts Options) (Predictor, error) {
	if kind == "" || kind == KindHeuristic || kind == KindNone {
		return nil, nil
	}

	registryMu.RLock()
	f, ok := registry[kind]
	registryMu.RUnlock()
	if !ok {
		return nil, goerr.New("unknown predictor kind", goerr.V("kind", kind))
	}

	p, err := f(ctx, opts)
	if err != nil {
		return nil, goerr.Wrap(err, "build predictor", goerr.V("kind", kind))
	}
	if opts.CacheSize > 0 {
		c, err := NewCached(p, opts.CacheSize)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return p, nil
}

func init() {
	Register(KindConstant, func(_ context.Context, opts Options) (Predictor, error) {
		return NewConstant(opts.ConstantDays)
	})
	Register(KindRegression, func(_ context.Context, opts Options) (Predictor, error) {
		return Fit(opts.Samples)
	})
	Register(KindLLM, func(_ context.Context, opts Options) (Predictor, error) {
		if opts.Provider == nil {
			return nil, fmt.Errorf("llm predictor needs a provider")
		}
		return NewLLM(opts.Provider), nil
	})
}
