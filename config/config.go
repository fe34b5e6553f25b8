package config

import (
	"fmt"
	"os"
	"time"
)

// Config struct holds application configuration
// This is a simple way to make config accessible globally.
type Config struct {
	DatabaseURL        string
	Port               string
	JWTSecret          string
	CacheSweepInterval time.Duration
}

// AppConfig holds the application-wide configuration
var AppConfig Config

// Load reads configuration from the environment. DATABASE_URL and
// JWT_SECRET are required; the rest have defaults. A CACHE_SWEEP_INTERVAL
// of 0 disables the background sweep.
func Load() error {
	AppConfig.DatabaseURL = os.Getenv("DATABASE_URL")
	if AppConfig.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}

	AppConfig.JWTSecret = os.Getenv("JWT_SECRET")
	if AppConfig.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is not set")
	}

	AppConfig.Port = os.Getenv("PORT")
	if AppConfig.Port == "" {
		AppConfig.Port = "3000"
	}

	AppConfig.CacheSweepInterval = 5 * time.Minute
	if raw := os.Getenv("CACHE_SWEEP_INTERVAL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid CACHE_SWEEP_INTERVAL %q: %w", raw, err)
		}
		AppConfig.CacheSweepInterval = d
	}

	return nil
}
