// Package predict wraps the pretrained day/hour demand regressors.
package predict

import (
	"context"
	"math"

	"github.com/hyperjump/pedalcast/internal/models"
)

// Predictor produces a non-negative rental count from a raw feature
// value slice aligned to FeatureNames.
type Predictor interface {
	// Predict runs the regressor on values ordered per FeatureNames.
	Predict(ctx context.Context, values []float32) (int, error)
	// FeatureNames is the authoritative feature ordering the trained
	// model expects; callers must align input columns to it.
	FeatureNames() []string
	Close() error
}

// DayFeatureNames is the default column order of the day model.
var DayFeatureNames = []string{
	"season", "yr", "mnth", "holiday", "weekday", "workingday",
	"weathersit", "temp", "atemp", "hum", "windspeed",
}

// HourFeatureNames is the default column order of the hour model.
var HourFeatureNames = []string{
	"season", "yr", "mnth", "hr", "holiday", "weekday", "workingday",
	"weathersit", "temp", "atemp", "hum", "windspeed",
}

// DefaultFeatureNames returns the default ordering for mode.
func DefaultFeatureNames(mode models.PredictionMode) []string {
	if mode == models.ModeHour {
		return HourFeatureNames
	}
	return DayFeatureNames
}

// HeuristicPredictor is a deterministic stand-in used when no ONNX
// model is available, so the server can still serve forecasts in
// development. It is not the trained model and its outputs only track
// the broad demand shape.
type HeuristicPredictor struct {
	mode  models.PredictionMode
	names []string
}

// NewHeuristicPredictor returns a heuristic predictor for mode.
func NewHeuristicPredictor(mode models.PredictionMode) *HeuristicPredictor {
	return &HeuristicPredictor{mode: mode, names: DefaultFeatureNames(mode)}
}

// Predict computes a rough demand estimate: a seasonal base damped by
// bad weather, humidity, and wind, lifted by temperature.
func (p *HeuristicPredictor) Predict(_ context.Context, values []float32) (int, error) {
	get := func(name string) float64 {
		for i, n := range p.names {
			if n == name {
				return float64(values[i])
			}
		}
		return 0
	}

	base := 4500.0
	if p.mode == models.ModeHour {
		base = 190.0
		// Demand peaks around commute hours.
		hr := get("hr")
		base *= 0.6 + 0.4*math.Sin((hr-6)*math.Pi/12)
	}

	base *= 1 + 0.1*(get("season")-2)
	base *= 1 + 0.5*(get("temp")-0.5)
	base *= 1 - 0.25*(get("weathersit")-1)/3
	base *= 1 - 0.2*get("hum")*get("windspeed")
	if get("workingday") == 0 {
		base *= 0.85
	}
	if get("yr") == 1 {
		base *= 1.6
	}

	if base < 0 {
		base = 0
	}
	return int(base), nil
}

func (p *HeuristicPredictor) FeatureNames() []string { return p.names }

func (p *HeuristicPredictor) Close() error { return nil }
