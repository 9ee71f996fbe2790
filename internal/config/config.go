// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/logwarden/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	// Server configuration
	Server ServerConfig

	// Detection configuration
	Detection DetectionConfig
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Port is the HTTP port to listen on.
	Port string

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration
}

// DetectionConfig contains detection pipeline settings.
type DetectionConfig struct {
	// RulesPath is an optional YAML rule file. Empty means the
	// built-in default rules are used.
	RulesPath string

	// MaxLogSize is the maximum allowed submitted log size in bytes.
	MaxLogSize int

	// MaxLineLength is the truncation limit for a single log line.
	MaxLineLength int

	// BruteForceThreshold overrides the default rule's failed-attempt
	// threshold. Ignored when a rule file is configured.
	BruteForceThreshold int

	// BruteForceWindow overrides the default rule's sliding window.
	// Ignored when a rule file is configured.
	BruteForceWindow time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnvOrDefault("PORT", "8080"),
			ReadTimeout:  getDurationOrDefault("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationOrDefault("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Detection: DetectionConfig{
			RulesPath:           os.Getenv("RULES_PATH"),
			MaxLogSize:          getIntOrDefault("MAX_LOG_SIZE", 10_000_000), // ~10MB
			MaxLineLength:       getIntOrDefault("MAX_LINE_LENGTH", 8192),
			BruteForceThreshold: getIntOrDefault("BRUTE_FORCE_THRESHOLD", 5),
			BruteForceWindow:    getDurationOrDefault("BRUTE_FORCE_WINDOW", time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Detection.MaxLogSize < 1000 {
		return fmt.Errorf("%w: MAX_LOG_SIZE must be at least 1000 bytes", domain.ErrInvalidConfig)
	}

	if c.Detection.MaxLineLength < 256 {
		return fmt.Errorf("%w: MAX_LINE_LENGTH must be at least 256 bytes", domain.ErrInvalidConfig)
	}

	if c.Detection.BruteForceThreshold < 1 {
		return fmt.Errorf("%w: BRUTE_FORCE_THRESHOLD must be at least 1", domain.ErrInvalidConfig)
	}

	if c.Detection.BruteForceWindow <= 0 {
		return fmt.Errorf("%w: BRUTE_FORCE_WINDOW must be positive", domain.ErrInvalidConfig)
	}

	return nil
}

// Helper functions for reading environment variables

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		// Try parsing as seconds first (e.g., "15")
		if secs, err := strconv.Atoi(val); err == nil {
			return time.Duration(secs) * time.Second
		}
		// Try parsing as duration string (e.g., "15s", "1m")
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
