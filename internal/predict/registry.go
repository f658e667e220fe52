package predict

import (
	"sync"

	"github.com/hyperjump/pedalcast/internal/models"
	"go.uber.org/zap"
)

// ModelConfig describes one ONNX model to load.
type ModelConfig struct {
	Path         string
	InputName    string
	OutputName   string
	FeatureNames []string
}

// Registry owns the day and hour predictors. It is constructed once at
// startup and passed by handle to request handlers; Reload swaps a
// model in place when its file changes on disk.
type Registry struct {
	mu       sync.RWMutex
	day      Predictor
	hour     Predictor
	dayCfg   ModelConfig
	hourCfg  ModelConfig
	fallback bool
	logger   *zap.Logger
}

// NewRegistry loads both models. When fallback is true, a model that
// fails to load is replaced with the heuristic predictor so the server
// still serves; otherwise that mode stays unavailable and requests for
// it are rejected.
func NewRegistry(dayCfg, hourCfg ModelConfig, fallback bool, logger *zap.Logger) *Registry {
	r := &Registry{
		dayCfg:   dayCfg,
		hourCfg:  hourCfg,
		fallback: fallback,
		logger:   logger,
	}
	r.day = r.load(models.ModeDay, dayCfg)
	r.hour = r.load(models.ModeHour, hourCfg)
	return r
}

func (r *Registry) load(mode models.PredictionMode, cfg ModelConfig) Predictor {
	names := cfg.FeatureNames
	if len(names) == 0 {
		names = DefaultFeatureNames(mode)
	}
	p, err := NewONNXRegressor(cfg.Path, names, cfg.InputName, cfg.OutputName)
	if err != nil {
		if r.logger != nil {
			r.logger.Warn("model load failed",
				zap.String("mode", string(mode)),
				zap.String("path", cfg.Path),
				zap.Bool("fallback", r.fallback),
				zap.Error(err))
		}
		if r.fallback {
			return NewHeuristicPredictor(mode)
		}
		return nil
	}
	if r.logger != nil {
		r.logger.Info("model loaded", zap.String("mode", string(mode)), zap.String("path", cfg.Path))
	}
	return p
}

// Get returns the predictor for mode, or nil when that model is
// unavailable.
func (r *Registry) Get(mode models.PredictionMode) Predictor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if mode == models.ModeHour {
		return r.hour
	}
	return r.day
}

// Available reports whether the model for mode is loaded.
func (r *Registry) Available(mode models.PredictionMode) bool {
	return r.Get(mode) != nil
}

// Reload reloads the model for mode from disk, closing the previous
// predictor. Used by the model watcher when a file changes.
func (r *Registry) Reload(mode models.PredictionMode) {
	cfg := r.dayCfg
	if mode == models.ModeHour {
		cfg = r.hourCfg
	}
	next := r.load(mode, cfg)

	r.mu.Lock()
	var prev Predictor
	if mode == models.ModeHour {
		prev, r.hour = r.hour, next
	} else {
		prev, r.day = r.day, next
	}
	r.mu.Unlock()

	if prev != nil {
		_ = prev.Close()
	}
}

// Close closes both predictors.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.day != nil {
		_ = r.day.Close()
		r.day = nil
	}
	if r.hour != nil {
		_ = r.hour.Close()
		r.hour = nil
	}
}
