//go:build cgo
// +build cgo

package predict

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ONNXRegressor runs a converted gradient-boosted regressor through
// ONNX Runtime. It requires CGO and the onnxruntime shared library.
type ONNXRegressor struct {
	session      *ort.AdvancedSession
	names        []string
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
	mu           sync.Mutex
}

// NewONNXRegressor loads the model at modelPath. featureNames sets the
// input column order and count; inputName/outputName are the graph's
// tensor names. InitializeEnvironment is called if not already done.
func NewONNXRegressor(modelPath string, featureNames []string, inputName, outputName string) (*ONNXRegressor, error) {
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX runtime: %w", err)
	}

	n := len(featureNames)
	inputTensor, err := ort.NewTensor(ort.NewShape(1, int64(n)), make([]float32, n))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	outputTensor, err := ort.NewTensor(ort.NewShape(1, 1), make([]float32, 1))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{inputName},
		[]string{outputName},
		[]ort.ArbitraryTensor{inputTensor},
		[]ort.ArbitraryTensor{outputTensor},
		nil,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	names := make([]string, n)
	copy(names, featureNames)
	return &ONNXRegressor{
		session:      session,
		names:        names,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
	}, nil
}

// Predict runs inference and clamps the output to a non-negative
// integer count.
func (r *ONNXRegressor) Predict(_ context.Context, values []float32) (int, error) {
	if len(values) != len(r.names) {
		return 0, fmt.Errorf("expected %d feature values, got %d", len(r.names), len(values))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	copy(r.inputTensor.GetData(), values)
	if err := r.session.Run(); err != nil {
		return 0, fmt.Errorf("inference failed: %w", err)
	}

	out := int(r.outputTensor.GetData()[0])
	if out < 0 {
		out = 0
	}
	return out, nil
}

// FeatureNames returns the model's input column order.
func (r *ONNXRegressor) FeatureNames() []string { return r.names }

// Close destroys the session and tensors.
func (r *ONNXRegressor) Close() error {
	var err error
	if r.session != nil {
		err = r.session.Destroy()
		r.session = nil
	}
	if r.inputTensor != nil {
		_ = r.inputTensor.Destroy()
		r.inputTensor = nil
	}
	if r.outputTensor != nil {
		_ = r.outputTensor.Destroy()
		r.outputTensor = nil
	}
	return err
}
