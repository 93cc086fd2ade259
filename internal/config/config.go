package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the ingest service settings.
type Config struct {
	Server  ServerConfig
	Sink    SinkConfig
	Archive ArchiveConfig
}

type ServerConfig struct {
	Port         string
	Environment  string
	LogLevel     string
	MaxBodyBytes int64
}

// SinkConfig points at the downstream consumer of processing results.
// An empty URL disables forwarding.
type SinkConfig struct {
	URL         string
	APIKey      string
	Timeout     time.Duration
	MaxRetry    time.Duration
	ValidateOut bool
}

type ArchiveConfig struct {
	Path       string
	ReportPath string
}

// Load reads .env (when present) and the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "local"),
			LogLevel:     getEnv("LOG_LEVEL", "info"),
			MaxBodyBytes: int64(getEnvAsInt("MAX_BODY_BYTES", 1<<20)),
		},
		Sink: SinkConfig{
			URL:         getEnv("SINK_URL", ""),
			APIKey:      getEnv("SINK_API_KEY", ""),
			Timeout:     getEnvAsDuration("SINK_TIMEOUT", 10*time.Second),
			MaxRetry:    getEnvAsDuration("SINK_MAX_RETRY", 30*time.Second),
			ValidateOut: getEnvAsBool("SINK_VALIDATE_CONTRACT", true),
		},
		Archive: ArchiveConfig{
			Path:       getEnv("ARCHIVE_PATH", ""),
			ReportPath: getEnv("REPORT_PATH", "leads_report.xlsx"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("15s") or bare seconds ("15").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
