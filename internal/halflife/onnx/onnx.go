//go:build onnx

// Package onnx runs an exported half-life regressor with ONNX Runtime.
// Importing it registers the "onnx" predictor kind.
package onnx

import (
	"context"
	"fmt"
	"sync"

	"github.com/abhisek/cadence/internal/halflife"
	"github.com/m-mizutani/goerr/v2"
	ort "github.com/yalue/onnxruntime_go"
)

// The model takes a [1, 2] float32 tensor of (performance, interval_days)
// and produces a [1, 1] float32 half-life in days.
const (
	inputName  = "features"
	outputName = "halflife"
)

// Config configures the ONNX predictor.
type Config struct {
	// ModelPath is the path to the .onnx model file.
	ModelPath string

	// LibraryPath is the onnxruntime shared library. Empty uses the
	// runtime's default search.
	LibraryPath string
}

// Predictor evaluates the model once per call. Sessions are not safe for
// concurrent Run calls, so calls are serialized.
type Predictor struct {
	mu      sync.Mutex
	session *ort.DynamicAdvancedSession
}

var initOnce sync.Once
var initErr error

// New loads the model.
func New(cfg Config) (*Predictor, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("onnx model path is required")
	}

	initOnce.Do(func() {
		if cfg.LibraryPath != "" {
			ort.SetSharedLibraryPath(cfg.LibraryPath)
		}
		initErr = ort.InitializeEnvironment()
	})
	if initErr != nil {
		return nil, goerr.Wrap(initErr, "initialize onnx runtime")
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{inputName},
		[]string{outputName},
		nil,
	)
	if err != nil {
		return nil, goerr.Wrap(err, "create onnx session", goerr.V("model", cfg.ModelPath))
	}
	return &Predictor{session: session}, nil
}

func (p *Predictor) Predict(ctx context.Context, performance, intervalDays float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	input, err := ort.NewTensor(ort.NewShape(1, 2), []float32{float32(performance), float32(intervalDays)})
	if err != nil {
		return 0, fmt.Errorf("create input tensor: %w", err)
	}
	defer input.Destroy()

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1))
	if err != nil {
		return 0, fmt.Errorf("create output tensor: %w", err)
	}
	defer output.Destroy()

	p.mu.Lock()
	err = p.session.Run([]ort.Value{input}, []ort.Value{output})
	p.mu.Unlock()
	if err != nil {
		return 0, fmt.Errorf("run onnx session: %w", err)
	}

	h := float64(output.GetData()[0])
	if !halflife.Valid(h) {
		return 0, fmt.Errorf("model produced invalid half-life %g", h)
	}
	return h, nil
}

// Close releases the session.
func (p *Predictor) Close() error {
	return p.session.Destroy()
}

func init() {
	halflife.Register(halflife.KindONNX, func(_ context.Context, opts halflife.Options) (halflife.Predictor, error) {
		return New(Config{ModelPath: opts.ModelPath, LibraryPath: opts.LibraryPath})
	})
}
