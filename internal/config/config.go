package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// devSecret signs tokens when JWT_SECRET is unset in development
const devSecret = "dev-only-insecure-secret"

// EnvDevelopment is the only environment allowed to run without JWT_SECRET
const EnvDevelopment = "development"

// Config holds the process configuration read from the environment
type Config struct {
	Env           string
	Port          string
	DBDriver      string
	DBDSN         string
	JWTSecret     string
	JWTTTL        time.Duration
	LogLevel      string
	NATSURL       string
	RedisAddr     string
	SweepInterval time.Duration
	BidRetries    int
}

// UsesDevSecret reports whether tokens are signed with the built-in development secret
func (c Config) UsesDevSecret() bool {
	return c.JWTSecret == devSecret
}

// Addr returns the listen address for the HTTP server
func (c Config) Addr() string {
	return fmt.Sprintf(":%s", c.Port)
}

// Load reads the configuration from environment variables, applying defaults
func Load() (Config, error) {
	cfg := Config{
		Env:       getEnv("APP_ENV", EnvDevelopment),
		Port:      getEnv("PORT", "8080"),
		DBDriver:  getEnv("DB_DRIVER", "sqlite"),
		DBDSN:     getEnv("DB_DSN", "./data/auctions.db"),
		JWTSecret: getEnv("JWT_SECRET", devSecret),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		NATSURL:   os.Getenv("NATS_URL"),
		RedisAddr: os.Getenv("REDIS_ADDR"),
	}

	if cfg.JWTSecret == devSecret && cfg.Env != EnvDevelopment {
		return Config{}, fmt.Errorf("config: JWT_SECRET is required when APP_ENV is %q", cfg.Env)
	}

	var err error
	if cfg.JWTTTL, err = getDuration("JWT_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.SweepInterval, err = getDuration("SWEEP_INTERVAL", 0); err != nil {
		return Config{}, err
	}
	if cfg.BidRetries, err = getInt("BID_RETRIES", 3); err != nil {
		return Config{}, err
	}

	switch cfg.DBDriver {
	case "sqlite", "postgres":
	default:
		return Config{}, fmt.Errorf("config: DB_DRIVER must be sqlite or postgres, got %q", cfg.DBDriver)
	}
	if cfg.BidRetries < 1 {
		return Config{}, fmt.Errorf("config: BID_RETRIES must be at least 1, got %d", cfg.BidRetries)
	}
	if cfg.SweepInterval < 0 {
		return Config{}, fmt.Errorf("config: SWEEP_INTERVAL must not be negative, got %s", cfg.SweepInterval)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q: %w", key, v, err)
	}
	return n, nil
}
