//go:build onnx

package cmd

// Registers the onnx predictor kind.
import _ "github.com/abhisek/cadence/internal/halflife/onnx"
