// Package config loads server settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Holiday  HolidayConfig
	Session  SessionConfig
	// PolicyFile is an optional JSON rules file overlaid on the default policy.
	PolicyFile string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	CORSOrigins []string
}

type DatabaseConfig struct {
	Driver string // sqlite | postgres
	Path   string
	URL    string
}

// HolidayConfig controls the ICS feed. An empty URL disables syncing.
type HolidayConfig struct {
	ICSURL       string
	SyncInterval time.Duration
	CacheTTL     time.Duration
}

// SessionConfig bounds the assistant's dialogue memory.
type SessionConfig struct {
	MaxHistory int
	TTL        time.Duration
	MaxCount   int
}

// Load reads envFiles (".env" when none are given; a missing file is not an
// error), then the process environment, and validates the result.
// Variables already set in the environment win over file values.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := &Config{}
	var err error

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}
	cfg.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}

	cfg.Database = DatabaseConfig{
		Driver: strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		Path:   getEnv("DB_PATH", "payroll.db"),
		URL:    getEnv("DATABASE_URL", ""),
	}

	cfg.Holiday.ICSURL = getEnv("HOLIDAY_ICS_URL", "")
	if cfg.Holiday.SyncInterval, err = getEnvDuration("HOLIDAY_SYNC_INTERVAL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.Holiday.CacheTTL, err = getEnvDuration("HOLIDAY_CACHE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}

	if cfg.Session.MaxHistory, err = getEnvInt("SESSION_MAX_HISTORY", 40); err != nil {
		return nil, err
	}
	if cfg.Session.TTL, err = getEnvDuration("SESSION_TTL", 2*time.Hour); err != nil {
		return nil, err
	}
	if cfg.Session.MaxCount, err = getEnvInt("SESSION_MAX_COUNT", 1000); err != nil {
		return nil, err
	}

	cfg.PolicyFile = getEnv("POLICY_FILE", "")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("DB_PATH is required for sqlite")
		}
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for postgres")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.Database.Driver)
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("APP_PORT out of range: %d", c.App.Port)
	}
	if c.Session.MaxHistory <= 0 {
		return fmt.Errorf("SESSION_MAX_HISTORY must be positive")
	}
	if c.Session.MaxCount <= 0 {
		return fmt.Errorf("SESSION_MAX_COUNT must be positive")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.Holiday.ICSURL != "" && c.Holiday.SyncInterval <= 0 {
		return fmt.Errorf("HOLIDAY_SYNC_INTERVAL must be positive")
	}
	return nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// SlogLevel maps LOG_LEVEL to a slog level; unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
