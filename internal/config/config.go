package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	UploadDir         string        `mapstructure:"upload_dir" yaml:"upload_dir"`
	LogCapacity       int           `mapstructure:"log_capacity" yaml:"log_capacity"`
	HistoryWindow     int           `mapstructure:"history_window" yaml:"history_window"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		UploadDir:         "uploads",
		LogCapacity:       1000,
		HistoryWindow:     100,
	}
}
