package config

import (
	"os"
	"strconv"
	"time"
)

// Environment variables read by the CLI.
const (
	EnvConfigPath     = "AURORA_CONFIG"
	EnvTimeout        = "AURORA_TIMEOUT"
	EnvDiscoverDocker = "AURORA_DISCOVER_DOCKER"
)

// GetEnv returns the environment variable value or a default.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetBoolEnv returns a boolean environment variable or a default.
func GetBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// GetDurationEnv returns a duration environment variable or a default.
func GetDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
