// Package config provides configuration loading and structs for the
// Pedalcast server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Models  ModelsConfig  `yaml:"models"`
	Chat    ChatConfig    `yaml:"chat"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the database and the report index.
type StorageConfig struct {
	DatabasePath    string `yaml:"database_path"`
	ReportIndexPath string `yaml:"report_index_path"`
}

// ModelsConfig holds the ONNX regressor settings. DayFeatures and
// HourFeatures override the model column orderings when the converted
// models differ from the stock layout.
type ModelsConfig struct {
	Directory    string   `yaml:"directory"`
	DayModel     string   `yaml:"day_model"`
	HourModel    string   `yaml:"hour_model"`
	InputName    string   `yaml:"input_name"`
	OutputName   string   `yaml:"output_name"`
	DayFeatures  []string `yaml:"day_features"`
	HourFeatures []string `yaml:"hour_features"`
	Fallback     *bool    `yaml:"fallback"`
	Reload       *bool    `yaml:"reload"`
}

// FallbackOrDefault returns whether to fall back to the heuristic
// predictor when a model fails to load; defaults to true.
func (m *ModelsConfig) FallbackOrDefault() bool {
	if m.Fallback != nil {
		return *m.Fallback
	}
	return true
}

// ReloadOrDefault returns whether to watch the models directory for
// changes; defaults to true.
func (m *ModelsConfig) ReloadOrDefault() bool {
	if m.Reload != nil {
		return *m.Reload
	}
	return true
}

// DayModelPath returns the absolute path of the day model file.
func (m *ModelsConfig) DayModelPath() string {
	return filepath.Join(m.Directory, m.DayModel)
}

// HourModelPath returns the absolute path of the hour model file.
func (m *ModelsConfig) HourModelPath() string {
	return filepath.Join(m.Directory, m.HourModel)
}

// ChatConfig holds the LLM fallback settings. The API key is read from
// the environment variable named by APIKeyEnv; when unset the chat
// falls back to canned replies.
type ChatConfig struct {
	APIKeyEnv      string `yaml:"api_key_env"`
	Model          string `yaml:"model"`
	Endpoint       string `yaml:"endpoint"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Load reads and parses the config file at path, expands paths, and
// applies defaults. Returns an error if the file cannot be read or
// parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.ReportIndexPath = expandPath(cfg.Storage.ReportIndexPath, configDir)
	cfg.Models.Directory = expandPath(cfg.Models.Directory, configDir)

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are
// relative to configDir; other relative paths are relative to the home
// directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
