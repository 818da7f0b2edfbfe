package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds everything the gateway reads from the environment. main loads
// .env via godotenv before calling Load, so local development and deployment
// share the same surface.
type Config struct {
	Addr        string
	PostgresDSN string
	RedisAddr   string
	RedisPass   string
	JWTSecret   string
	AllowOrigin string
	MessageTTL  time.Duration
	PurgePeriod time.Duration
}

// Load assembles the configuration from environment variables, applying
// development defaults for everything except the JWT secret, which has no
// safe default.
func Load() (*Config, error) {
	secret := os.Getenv("JWT_ACCESS_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is not set")
	}

	cfg := &Config{
		Addr:        getenv("ADDR", ":3000"),
		PostgresDSN: getenv("POSTGRES_DSN", "host=localhost user=user password=password dbname=gosipdb port=5432 sslmode=disable"),
		RedisAddr:   getenv("REDIS_ADDR", "localhost:6379"),
		RedisPass:   os.Getenv("REDIS_PASSWORD"),
		JWTSecret:   secret,
		AllowOrigin: getenv("ALLOW_ORIGIN", "http://localhost:5173"),
		MessageTTL:  24 * time.Hour,
		PurgePeriod: time.Hour,
	}

	if v := os.Getenv("MESSAGE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid MESSAGE_TTL %q: %w", v, err)
		}
		cfg.MessageTTL = ttl
	}
	if v := os.Getenv("MESSAGE_PURGE_PERIOD"); v != "" {
		period, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid MESSAGE_PURGE_PERIOD %q: %w", v, err)
		}
		cfg.PurgePeriod = period
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
