//go:build !cgo
// +build !cgo

package predict

import (
	"context"
	"errors"
)

// ONNXRegressor stub type when built without CGO (see onnx.go for the
// real implementation).
type ONNXRegressor struct{}

// NewONNXRegressor returns an error when built without CGO.
func NewONNXRegressor(_ string, _ []string, _, _ string) (*ONNXRegressor, error) {
	return nil, errors.New("ONNX regressor requires CGO; build with CGO_ENABLED=1 and onnxruntime")
}

func (r *ONNXRegressor) Predict(_ context.Context, _ []float32) (int, error) {
	return 0, errors.New("ONNX regressor not available")
}

func (r *ONNXRegressor) FeatureNames() []string { return nil }

func (r *ONNXRegressor) Close() error { return nil }
