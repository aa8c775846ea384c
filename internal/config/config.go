package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Addr                  string
	Environment           string
	LogLevel              string
	Storage               string
	DatabaseURL           string
	DatabaseDriver        string
	MinAgeForRegistration int
	CORSAllowedOrigins    string
	RateLimitRPM          int
	ShutdownTimeout       time.Duration
}

// Load reads configuration from environment variables. Values are read once
// at startup and never change afterwards.
func Load() (Config, error) {
	cfg := Config{
		Addr:               getEnv("USER_REGISTRY_ADDR", ":8080"),
		Environment:        getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Storage:            strings.ToLower(getEnv("STORAGE", StoragePostgres)),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		DatabaseDriver:     getEnv("DB_DRIVER", "pgx"),
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
	}

	var err error
	if cfg.MinAgeForRegistration, err = getInt("MIN_AGE_FOR_REGISTRATION", 18); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitRPM, err = getInt("RATE_LIMIT_RPM", 600); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.MinAgeForRegistration < 0 {
		return fmt.Errorf("MIN_AGE_FOR_REGISTRATION must not be negative, got %d", c.MinAgeForRegistration)
	}
	if c.RateLimitRPM < 0 {
		return fmt.Errorf("RATE_LIMIT_RPM must not be negative, got %d", c.RateLimitRPM)
	}

	switch c.Storage {
	case StorageMemory:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
	default:
		return fmt.Errorf("unknown STORAGE %q", c.Storage)
	}
	return nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
