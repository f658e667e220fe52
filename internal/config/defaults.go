package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/pedalcast/data/db/pedalcast.db"
	}
	if cfg.Storage.ReportIndexPath == "" {
		cfg.Storage.ReportIndexPath = "/usr/local/var/pedalcast/data/indices/reports"
	}
	if cfg.Models.Directory == "" {
		cfg.Models.Directory = "/usr/local/var/pedalcast/data/models"
	}
	if cfg.Models.DayModel == "" {
		cfg.Models.DayModel = "xgb_day_model.onnx"
	}
	if cfg.Models.HourModel == "" {
		cfg.Models.HourModel = "xgb_hour_model.onnx"
	}
	if cfg.Models.InputName == "" {
		cfg.Models.InputName = "input"
	}
	if cfg.Models.OutputName == "" {
		cfg.Models.OutputName = "variable"
	}
	if cfg.Chat.APIKeyEnv == "" {
		cfg.Chat.APIKeyEnv = "GEMINI_API_KEY"
	}
	if cfg.Chat.Model == "" {
		cfg.Chat.Model = "gemini-1.5-flash"
	}
	if cfg.Chat.TimeoutSeconds == 0 {
		cfg.Chat.TimeoutSeconds = 15
	}
}
