package predict

import (
	"context"
	"testing"

	"github.com/hyperjump/pedalcast/internal/features"
	"github.com/hyperjump/pedalcast/internal/models"
)

func TestDefaultFeatureNames(t *testing.T) {
	day := DefaultFeatureNames(models.ModeDay)
	if len(day) != 11 {
		t.Errorf("day features: got %d, want 11", len(day))
	}
	hour := DefaultFeatureNames(models.ModeHour)
	if len(hour) != 12 {
		t.Errorf("hour features: got %d, want 12", len(hour))
	}
	if hour[3] != "hr" {
		t.Errorf("hour features: got %v, hr should follow mnth", hour)
	}
	for _, n := range day {
		if n == "hr" {
			t.Error("day features should not include hr")
		}
	}
}

func TestHeuristicPredictor_Deterministic(t *testing.T) {
	p := NewHeuristicPredictor(models.ModeDay)
	fv := features.Normalize(models.RawInput{Date: "2024-06-12", Season: "summer", Weather: "clear"}, models.ModeDay)
	values := fv.Values(p.FeatureNames())

	a, err := p.Predict(context.Background(), values)
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.Predict(context.Background(), values)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("same input gave %d then %d", a, b)
	}
	if a < 0 {
		t.Errorf("prediction should be non-negative, got %d", a)
	}
}

func TestHeuristicPredictor_HourCommuteShape(t *testing.T) {
	p := NewHeuristicPredictor(models.ModeHour)
	base := models.RawInput{Date: "2024-06-12", Season: "summer", Weather: "clear"}

	predict := func(hour int) int {
		in := base
		in.Hour = &hour
		fv := features.Normalize(in, models.ModeHour)
		v, err := p.Predict(context.Background(), fv.Values(p.FeatureNames()))
		if err != nil {
			t.Fatal(err)
		}
		return v
	}

	if noon, night := predict(12), predict(3); noon <= night {
		t.Errorf("midday demand (%d) should exceed 3am demand (%d)", noon, night)
	}
}

func TestHeuristicPredictor_WeatherDampens(t *testing.T) {
	p := NewHeuristicPredictor(models.ModeDay)
	predict := func(weather string) int {
		fv := features.Normalize(models.RawInput{Date: "2024-06-12", Weather: weather}, models.ModeDay)
		v, err := p.Predict(context.Background(), fv.Values(p.FeatureNames()))
		if err != nil {
			t.Fatal(err)
		}
		return v
	}
	if clear, storm := predict("clear"), predict("heavy_rain"); clear <= storm {
		t.Errorf("clear-day demand (%d) should exceed heavy-rain demand (%d)", clear, storm)
	}
}

func TestRegistry_FallbackOnMissingModel(t *testing.T) {
	dayCfg := ModelConfig{Path: "/nonexistent/day.onnx", InputName: "input", OutputName: "variable"}
	hourCfg := ModelConfig{Path: "/nonexistent/hour.onnx", InputName: "input", OutputName: "variable"}

	r := NewRegistry(dayCfg, hourCfg, true, nil)
	defer r.Close()

	if !r.Available(models.ModeDay) || !r.Available(models.ModeHour) {
		t.Fatal("with fallback enabled both modes should be available")
	}
	p := r.Get(models.ModeDay)
	if _, ok := p.(*HeuristicPredictor); !ok {
		t.Errorf("expected heuristic predictor, got %T", p)
	}
}

func TestRegistry_NoFallbackLeavesModeUnavailable(t *testing.T) {
	dayCfg := ModelConfig{Path: "/nonexistent/day.onnx"}
	hourCfg := ModelConfig{Path: "/nonexistent/hour.onnx"}

	r := NewRegistry(dayCfg, hourCfg, false, nil)
	defer r.Close()

	if r.Available(models.ModeDay) {
		t.Error("day model should be unavailable without fallback")
	}
	if r.Get(models.ModeHour) != nil {
		t.Error("hour predictor should be nil without fallback")
	}
}

func TestRegistry_ReloadSwapsPredictor(t *testing.T) {
	cfg := ModelConfig{Path: "/nonexistent/model.onnx"}
	r := NewRegistry(cfg, cfg, true, nil)
	defer r.Close()

	before := r.Get(models.ModeDay)
	r.Reload(models.ModeDay)
	after := r.Get(models.ModeDay)
	if after == nil {
		t.Fatal("reload should leave a predictor in place")
	}
	if before == after {
		t.Error("reload should install a fresh predictor")
	}
}
