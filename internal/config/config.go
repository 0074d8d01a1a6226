package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends for the session blob.
const (
	StoreBackendFile  = "file"
	StoreBackendRedis = "redis"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string
	LogFormat  string

	// DataDir hosts the session blob and the history database.
	DataDir      string
	StoreBackend string
	RedisURL     string

	AutosaveInterval time.Duration
	// SessionWarnings are the session-clock warning thresholds in seconds
	// remaining, e.g. "300,60".
	SessionWarnings []int
	// QuestionWarnings are the per-question-clock thresholds.
	QuestionWarnings []int

	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // .env is optional

	return &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		GinMode:          getEnv("GIN_MODE", "debug"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "pretty"),
		DataDir:          getEnv("DATA_DIR", "./data"),
		StoreBackend:     getEnv("STORE_BACKEND", StoreBackendFile),
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379/0"),
		AutosaveInterval: time.Duration(getEnvInt("AUTOSAVE_INTERVAL_SECONDS", 5)) * time.Second,
		SessionWarnings:  parseIntList(getEnv("SESSION_WARNINGS", "300,60")),
		QuestionWarnings: parseIntList(getEnv("QUESTION_WARNINGS", "10")),
		AllowedOrigins:   parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// parseIntList splits a comma-separated list of integers, skipping anything
// unparsable.
func parseIntList(raw string) []int {
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			continue
		}
		out = append(out, n)
	}
	return out
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
