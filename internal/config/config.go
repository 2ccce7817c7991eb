package config

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL        = "https://aur.archlinux.org"
	defaultDBPath         = "auric.db"
	defaultMaxConnections = 5
	defaultConnectTimeout = 10 * time.Second

	envBaseURL        = "AURIC_BASEURL"
	envDBPath         = "AURIC_DB_PATH"
	envLogLevel       = "AURIC_LOG_LEVEL"
	envMaxConnections = "AURIC_MAX_CONNECTIONS"
	envConnectTimeout = "AURIC_CONNECT_TIMEOUT"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BaseURL        string
	DBPath         string
	LogLevel       slog.Level
	MaxConnections int
	ConnectTimeout time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	cfg := Config{
		BaseURL:        defaultBaseURL,
		DBPath:         defaultDBPath,
		LogLevel:       slog.LevelInfo,
		MaxConnections: defaultMaxConnections,
		ConnectTimeout: defaultConnectTimeout,
	}

	if v := os.Getenv(envBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv(envDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = parseLogLevel(v)
	}
	if v := os.Getenv(envMaxConnections); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxConnections = n
		}
	}
	if v := os.Getenv(envConnectTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.ConnectTimeout = d
		}
	}

	return cfg
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a structured JSON logger writing to w at the configured level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}
