// Package config loads server and CLI settings.
//
// Precedence, lowest to highest: DefaultConfig, the TOML file, FORECAST_*
// environment variables, then command-line flags (applied by the binaries).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
)

// Config holds all configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Forecast ForecastConfig `toml:"forecast"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int      `toml:"port"`
	DBPath         string   `toml:"db_path"`
	AllowedOrigins []string `toml:"allowed_origins,omitempty"`
}

// ForecastConfig holds engine settings.
type ForecastConfig struct {
	// MaxDays caps a forecast over open-ended schedules.
	MaxDays int `toml:"max_days"`
	// Unit labels amounts that arrive without one.
	DefaultUnit string `toml:"default_unit,omitempty"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "text" or "json"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:           8080,
			DBPath:         "inventory.db",
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		},
		Forecast: ForecastConfig{
			MaxDays: 36500,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path (if non-empty and present) and applies env overrides.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// defaults only
		case err != nil:
			return cfg, fmt.Errorf("reading config: %w", err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing config: %w", err)
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	if port := os.Getenv("FORECAST_PORT"); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("FORECAST_PORT: %w", err)
		}
		cfg.Server.Port = n
	}
	if db := os.Getenv("FORECAST_DB"); db != "" {
		cfg.Server.DBPath = db
	}
	if origins := os.Getenv("FORECAST_ALLOWED_ORIGINS"); origins != "" {
		cfg.Server.AllowedOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.Server.AllowedOrigins = append(cfg.Server.AllowedOrigins, o)
			}
		}
	}
	if days := os.Getenv("FORECAST_MAX_DAYS"); days != "" {
		n, err := strconv.Atoi(days)
		if err != nil {
			return fmt.Errorf("FORECAST_MAX_DAYS: %w", err)
		}
		cfg.Forecast.MaxDays = n
	}
	if unit := os.Getenv("FORECAST_DEFAULT_UNIT"); unit != "" {
		cfg.Forecast.DefaultUnit = unit
	}
	if level := os.Getenv("FORECAST_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if format := os.Getenv("FORECAST_LOG_FORMAT"); format != "" {
		cfg.Log.Format = format
	}
	return nil
}

// Validate rejects settings the binaries cannot start with.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Forecast.MaxDays <= 0 {
		return fmt.Errorf("forecast.max_days must be positive, got %d", c.Forecast.MaxDays)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// NewLogger builds a logrus logger from the log settings.
func (c LogConfig) NewLogger() *logrus.Logger {
	logger := logrus.New()
	if level, err := logrus.ParseLevel(c.Level); err == nil {
		logger.SetLevel(level)
	}
	if c.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
