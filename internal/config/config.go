// Package config reads the application configuration from environment
// variables. Every setting has a default; nothing is required to start.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config is the complete application configuration.
type Config struct {
	Server Server
	Upload Upload
	Log    Log
}

// Server holds web server settings.
type Server struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Upload holds file ingestion limits.
type Upload struct {
	MaxBytes int64
	MaxRows  int
}

// Log holds logging settings.
type Log struct {
	Level string
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		Server: Server{
			Port:            getEnvOrDefault("PORT", "8080"),
			ReadTimeout:     getEnvDurationOrDefault("READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvDurationOrDefault("WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Upload: Upload{
			MaxBytes: getEnvInt64OrDefault("MAX_UPLOAD_BYTES", 32<<20),
			MaxRows:  getEnvIntOrDefault("MAX_UPLOAD_ROWS", 1_000_000),
		},
		Log: Log{
			Level: getEnvOrDefault("LOG_LEVEL", "INFO"),
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
