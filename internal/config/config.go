// Package config reads folio's settings from the environment, after loading
// an optional .env file.
package config

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// Config is the process configuration
type Config struct {
	// Env carries the compiled-in defaults overrides for settings resolution
	Env domain.Environment

	Host           string
	Port           int
	AllowedOrigins []string
	HTTPTimeout    time.Duration

	// RedisURL enables the push relay, the shared snapshot and the prefetch lock
	RedisURL string
	// PushSecret signs dashboard push tokens; empty disables push endpoints
	PushSecret string

	SnapshotPath  string
	SnapshotWatch bool

	LogLevel  string
	LogFormat string
}

// Load reads .env files (missing ones are ignored) and then the environment.
// Variables already set in the environment win over .env values.
func Load(files ...string) Config {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}

	return Config{
		Env: domain.Environment{
			Production:             strings.EqualFold(getEnv("APP_ENV", "development"), "production"),
			APIBase:                getEnv("CMS_API_URL", ""),
			DashboardURL:           getEnv("CMS_DASHBOARD_URL", ""),
			LoginURL:               getEnv("CMS_LOGIN_URL", ""),
			NotificationDurationMs: getEnvInt("CMS_NOTIFICATION_DURATION", 0),
		},
		Host:           getEnv("HOST", "0.0.0.0"),
		Port:           getEnvInt("PORT", 8080),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS"),
		HTTPTimeout:    time.Duration(getEnvInt("CMS_HTTP_TIMEOUT_SEC", 10)) * time.Second,
		RedisURL:       getEnv("REDIS_URL", ""),
		PushSecret:     getEnv("PUSH_SECRET", ""),
		SnapshotPath:   getEnv("SNAPSHOT_PATH", "data/cms-snapshot.json"),
		SnapshotWatch:  getEnvBool("SNAPSHOT_WATCH", false),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
	}
}

// SetupLogger builds the process logger from a level and format name.
// Unknown levels fall back to info, unknown formats to text.
func SetupLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intVal, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}
	return intVal
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolVal
}

// getEnvList splits a comma-separated variable, dropping blanks
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
