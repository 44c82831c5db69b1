package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenAddr string
	StaticDir  string

	DatabaseURL string

	LogLevel  string
	LogFormat string

	MetricsPath string
	CacheHTML   string

	// DatastarScript is the URL of the datastar client bundle; its origin is
	// added to the content security policy.
	DatastarScript string

	ShutdownTimeout time.Duration
	NotesExcerpt    int
}

func Load() Config {
	return Config{
		ListenAddr:  getEnv("PATIENTDESK_LISTEN_ADDR", ":8080"),
		StaticDir:   getEnv("PATIENTDESK_STATIC_DIR", "internal/web/static"),
		DatabaseURL: strings.TrimSpace(os.Getenv("PATIENTDESK_DATABASE_URL")),
		LogLevel:    getEnv("PATIENTDESK_LOG_LEVEL", "info"),
		LogFormat:   getEnv("PATIENTDESK_LOG_FORMAT", "text"),
		MetricsPath: getEnv("PATIENTDESK_METRICS_PATH", "/metrics"),
		CacheHTML: strings.TrimSpace(
			os.Getenv("PATIENTDESK_CACHE_HTML"),
		),
		DatastarScript:  strings.TrimSpace(os.Getenv("PATIENTDESK_DATASTAR_SCRIPT")),
		ShutdownTimeout: getEnvDuration("PATIENTDESK_SHUTDOWN_TIMEOUT", 10*time.Second),
		NotesExcerpt:    getEnvInt("PATIENTDESK_NOTES_EXCERPT", 140),
	}
}

func getEnv(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}

	return value
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return fallback
	}

	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}
