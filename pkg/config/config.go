// Package config loads service configuration from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the mortgage API.
type Config struct {
	HTTPPort        int
	DBPath          string
	LogLevel        string
	LogFormat       string
	RedisAddr       string
	CacheTTL        time.Duration
	OTELEndpoint    string
	OTELServiceName string
	MaxLoanAmount   float64
	MaxTermMonths   int
}

// Load reads configuration from environment variables with sensible defaults.
// Files are loaded with godotenv first; variables already set win. A missing
// file is not an error.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load env file: %w", err)
	}

	cfg := Config{
		HTTPPort:        getEnvInt("HTTP_PORT", 8080),
		DBPath:          getEnv("DB_PATH", "fredmortgage.db"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		CacheTTL:        time.Duration(getEnvInt("CACHE_TTL_SECONDS", 3600)) * time.Second,
		OTELEndpoint:    getEnv("OTEL_ENDPOINT", ""),
		OTELServiceName: getEnv("OTEL_SERVICE_NAME", "fredmortgage"),
		MaxLoanAmount:   getEnvFloat("MAX_LOAN_AMOUNT", 1e9),
		MaxTermMonths:   getEnvInt("MAX_TERM_MONTHS", 600),
	}
	return cfg, cfg.Validate()
}

// Validate checks the configured bounds.
func (c Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT %d out of range", c.HTTPPort)
	}
	if c.DBPath == "" {
		return errors.New("DB_PATH must be set")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL_SECONDS must not be negative, got %s", c.CacheTTL)
	}
	if c.MaxLoanAmount <= 0 {
		return fmt.Errorf("MAX_LOAN_AMOUNT must be positive, got %v", c.MaxLoanAmount)
	}
	if c.MaxTermMonths <= 0 {
		return fmt.Errorf("MAX_TERM_MONTHS must be positive, got %d", c.MaxTermMonths)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
