// Package config loads server settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/httplog/v3"
	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Scheduler SchedulerConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	CORSOrigins []string
	Workers     int
}

type DatabaseConfig struct {
	Path string
}

// SchedulerConfig controls the monthly close job.
type SchedulerConfig struct {
	Enabled       bool
	CheckInterval time.Duration
}

// Load reads .env when present, then the environment. Values already set in
// the environment win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() (*Config, error) {
	config := &Config{}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}
	workers, err := strconv.Atoi(getEnv("ANALYSIS_WORKERS", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid ANALYSIS_WORKERS: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: getEnvSlice("CORS_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		Workers:     workers,
	}

	config.Database = DatabaseConfig{
		Path: getEnv("DB_PATH", "timesheet.db"),
	}

	interval, err := time.ParseDuration(getEnv("CLOSE_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid CLOSE_INTERVAL: %w", err)
	}
	enabled, err := strconv.ParseBool(getEnv("CLOSE_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid CLOSE_ENABLED: %w", err)
	}
	config.Scheduler = SchedulerConfig{
		Enabled:       enabled,
		CheckInterval: interval,
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("APP_PORT must be between 1 and 65535, got %d", c.App.Port)
	}
	if c.App.Workers <= 0 {
		return fmt.Errorf("ANALYSIS_WORKERS must be positive, got %d", c.App.Workers)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	if c.Scheduler.Enabled && c.Scheduler.CheckInterval <= 0 {
		return fmt.Errorf("CLOSE_INTERVAL must be positive")
	}
	if _, err := parseLevel(c.App.LogLevel); err != nil {
		return err
	}
	return nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Env, "production")
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

// NewLogger builds the process logger. Production writes ECS-shaped JSON so
// request logs from httplog and application logs share one schema;
// development writes text.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.App.LogLevel)

	var handler slog.Handler
	if c.IsProduction() {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: httplog.SchemaECS.Concise(false).ReplaceAttr,
		})
	} else {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler).With(
		slog.String("app", "timesheet-engine"),
		slog.String("env", c.App.Env),
	)
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
	return level, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
