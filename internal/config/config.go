// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Log output formats
const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// Config holds server configuration
type Config struct {
	Host            string
	Port            int
	LogLevel        zerolog.Level
	LogFormat       string
	JWTSecret       string
	TokenTTL        time.Duration
	BcryptCost      int
	StorageType     string
	RedisURL        string
	DebugEndpoints  bool
	ShutdownTimeout time.Duration
}

// Load reads configuration from the environment.
// Variables from the given .env files (default ".env") are applied first without
// overriding anything already set; missing files are ignored.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var errs []error
	cfg := &Config{
		Host:        getEnv("HOST", ""),
		LogFormat:   strings.ToLower(getEnv("LOG_FORMAT", LogFormatJSON)),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		StorageType: strings.ToLower(getEnv("STORAGE_TYPE", StorageMemory)),
		RedisURL:    getEnv("REDIS_URL", ""),
	}

	var err error
	if cfg.Port, err = strconv.Atoi(getEnv("PORT", "8080")); err != nil || cfg.Port < 0 || cfg.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be a port number, got %q", os.Getenv("PORT")))
	}
	if cfg.LogLevel, err = zerolog.ParseLevel(strings.ToLower(getEnv("LOG_LEVEL", "info"))); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	if cfg.TokenTTL, err = time.ParseDuration(getEnv("TOKEN_TTL", "2h")); err != nil {
		errs = append(errs, fmt.Errorf("TOKEN_TTL: %w", err))
	}
	if cfg.BcryptCost, err = strconv.Atoi(getEnv("BCRYPT_COST", "10")); err != nil {
		errs = append(errs, fmt.Errorf("BCRYPT_COST: %w", err))
	}
	if cfg.DebugEndpoints, err = strconv.ParseBool(getEnv("DEBUG_ENDPOINTS", "false")); err != nil {
		errs = append(errs, fmt.Errorf("DEBUG_ENDPOINTS: %w", err))
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(getEnv("SHUTDOWN_TIMEOUT", "30s")); err != nil {
		errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and cross-field requirements
func (c *Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.BcryptCost < 10 || c.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 10 and 31, got %d", c.BcryptCost))
	}
	switch c.LogFormat {
	case LogFormatJSON, LogFormatConsole:
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be %q or %q, got %q", LogFormatJSON, LogFormatConsole, c.LogFormat))
	}
	switch c.StorageType {
	case StorageMemory:
	case StorageRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required when STORAGE_TYPE is redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_TYPE must be %q or %q, got %q", StorageMemory, StorageRedis, c.StorageType))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}
