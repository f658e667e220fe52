// Package main is the Pedalcast CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hyperjump/pedalcast/internal/chat"
	"github.com/hyperjump/pedalcast/internal/config"
	"github.com/hyperjump/pedalcast/internal/extract"
	"github.com/hyperjump/pedalcast/internal/features"
	"github.com/hyperjump/pedalcast/internal/keyword"
	"github.com/hyperjump/pedalcast/internal/models"
	"github.com/hyperjump/pedalcast/internal/predict"
	"github.com/hyperjump/pedalcast/internal/server"
	"github.com/hyperjump/pedalcast/internal/storage"
	"github.com/hyperjump/pedalcast/internal/watcher"
	"github.com/hyperjump/pedalcast/internal/weather"
	"github.com/hyperjump/pedalcast/pkg/utils"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/pedalcast/config.yaml"

// loadConfig loads config from path. When path is the default, it first
// looks for config.yaml in the current directory (for development); if
// that exists it is used. Returns the config and the path actually
// loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "extract":
		runExtract()
	case "predict":
		runPredict()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("pedalcast version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	// .env carries the chat API key in development; absence is fine.
	_ = godotenv.Load()

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Models.ReloadOrDefault() {
		watchOpts := []watcher.Option{}
		if debugMode {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		modelWatch := watcher.NewModelWatcher(cfg.Models.Directory, func(path string) {
			switch filepath.Base(path) {
			case cfg.Models.DayModel:
				components.Registry.Reload(models.ModeDay)
			case cfg.Models.HourModel:
				components.Registry.Reload(models.ModeHour)
			}
		}, watchOpts...)
		if err := modelWatch.Start(watchCtx); err != nil {
			logger.Warn("model watcher disabled", zap.Error(err))
		}
	}

	srv := server.NewServer(
		components.Registry,
		components.Storage,
		components.Reports,
		components.Extractor,
		components.Responder,
		&cfg.Server,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runExtract() {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: pedalcast extract <report-file>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Failed to read file: %v\n", err)
		os.Exit(1)
	}
	extractor := extract.NewExtractor()
	if !extractor.Supported(path) {
		fmt.Printf("Unsupported report format: %s\n", filepath.Ext(path))
		os.Exit(1)
	}
	text, err := extractor.ExtractBytes(content, path)
	if err != nil {
		fmt.Printf("Extraction failed: %v\n", err)
		os.Exit(1)
	}
	doc := weather.Parse(text)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(doc)
}

func runPredict() {
	fs := flag.NewFlagSet("predict", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = load models directly)")
	mode := fs.String("mode", "day", "prediction mode: day or hour")
	date := fs.String("date", "", "date (YYYY-MM-DD, default today)")
	season := fs.String("season", "", "season label (spring/summer/fall/winter)")
	weatherLabel := fs.String("weather", "", "weather label (clear/cloudy/rainy/...)")
	temp := fs.Float64("temp", 20, "temperature in °C")
	humidity := fs.Float64("humidity", 50, "relative humidity percent")
	wind := fs.Float64("wind", 10, "wind speed in km/h")
	holiday := fs.Bool("holiday", false, "whether the day is a holiday")
	hour := fs.Int("hour", 12, "hour of day (hour mode only)")
	_ = fs.Parse(os.Args[2:])

	predictionMode := models.PredictionMode(*mode)
	if predictionMode != models.ModeDay && predictionMode != models.ModeHour {
		fmt.Printf("Unknown mode %q; use day or hour\n", *mode)
		os.Exit(1)
	}

	raw := models.RawInput{
		Date:        *date,
		Season:      *season,
		Weather:     *weatherLabel,
		Temperature: temp,
		Humidity:    humidity,
		WindSpeed:   wind,
		IsHoliday:   *holiday,
		Hour:        hour,
	}

	if *serverURL != "" {
		value, err := predictViaHTTP(*serverURL, predictionMode, raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Prediction failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%d\n", value)
		return
	}

	// Direct mode: load the models without a running server.
	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	registry := newRegistry(cfg, logger)
	defer registry.Close()
	predictor := registry.Get(predictionMode)
	if predictor == nil {
		fmt.Fprintf(os.Stderr, "%s model not available\n", predictionMode)
		os.Exit(1)
	}

	fv := features.Normalize(raw, predictionMode)
	value, err := predictor.Predict(context.Background(), fv.Values(predictor.FeatureNames()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Prediction failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%d\n", value)
}

func predictViaHTTP(serverURL string, mode models.PredictionMode, raw models.RawInput) (int, error) {
	body, err := json.Marshal(raw)
	if err != nil {
		return 0, err
	}
	resp, err := http.Post(serverURL+"/api/v1/predict/"+string(mode), "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var out struct {
		Prediction int `json:"prediction"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	return out.Prediction, nil
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[2:])

	resp, err := http.Get(*serverURL + "/api/v1/status")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "Status failed (%d): %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
	var status map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		fmt.Fprintf(os.Stderr, "Parse failed: %v\n", err)
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(status)
}

// Components holds initialized services.
type Components struct {
	Storage   storage.Storage
	Registry  *predict.Registry
	Reports   *keyword.ReportIndex
	Extractor *extract.Extractor
	Responder *chat.Responder
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.Registry != nil {
		c.Registry.Close()
	}
	if c.Reports != nil {
		_ = c.Reports.Close()
	}
}

func newRegistry(cfg *config.Config, logger *zap.Logger) *predict.Registry {
	dayCfg := predict.ModelConfig{
		Path:         cfg.Models.DayModelPath(),
		InputName:    cfg.Models.InputName,
		OutputName:   cfg.Models.OutputName,
		FeatureNames: cfg.Models.DayFeatures,
	}
	hourCfg := predict.ModelConfig{
		Path:         cfg.Models.HourModelPath(),
		InputName:    cfg.Models.InputName,
		OutputName:   cfg.Models.OutputName,
		FeatureNames: cfg.Models.HourFeatures,
	}
	return predict.NewRegistry(dayCfg, hourCfg, cfg.Models.FallbackOrDefault(), logger)
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	registry := newRegistry(cfg, logger)

	reports, err := keyword.NewReportIndex(cfg.Storage.ReportIndexPath)
	if err != nil {
		// Uploads still work without the index; only search is lost.
		logger.Warn("report index unavailable", zap.Error(err))
		reports = nil
	}

	var generator chat.Generator
	if apiKey := os.Getenv(cfg.Chat.APIKeyEnv); apiKey != "" {
		generator = chat.NewGeminiClient(
			apiKey,
			cfg.Chat.Model,
			cfg.Chat.Endpoint,
			time.Duration(cfg.Chat.TimeoutSeconds)*time.Second,
		)
		logger.Info("chat fallback configured", zap.String("model", cfg.Chat.Model))
	} else {
		logger.Info("chat API key not found, using canned fallback")
	}
	responder := chat.NewResponder(store, generator, logger)

	return &Components{
		Storage:   store,
		Registry:  registry,
		Reports:   reports,
		Extractor: extract.NewExtractor(),
		Responder: responder,
	}, nil
}

func printUsage() {
	fmt.Println(`pedalcast - Bike rental demand backend

Usage:
  pedalcast server [flags]            Start the HTTP server
  pedalcast predict [flags]           Request a demand forecast
  pedalcast extract <report-file>     Parse a weather report locally
  pedalcast status [flags]            Show server status
  pedalcast version                   Show version
  pedalcast help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/pedalcast/config.yaml)
  --debug            Enable debug logging

Predict Flags:
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") to load models directly.
  --mode string      day or hour (default: day)
  --date string      Date YYYY-MM-DD (default: today)
  --season string    Season label
  --weather string   Weather label
  --temp float       Temperature °C (default: 20)
  --humidity float   Humidity percent (default: 50)
  --wind float       Wind speed km/h (default: 10)
  --holiday          Holiday flag
  --hour int         Hour of day, hour mode only (default: 12)

Examples:
  pedalcast server
  pedalcast predict --mode hour --hour 17 --temp 28 --weather clear
  pedalcast extract weather-report.pdf
  pedalcast status`)
}
