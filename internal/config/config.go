package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime configuration parsed from environment variables.
type Config struct {
	APIBaseURL      string
	GeocodeBaseURL  string
	StoragePath     string
	RequestTimeout  time.Duration
	FixtureAddr     string
	ShutdownTimeout time.Duration
}

// FromEnv builds Config with defaults, overridden by environment
// variables. A .env file in the working directory is loaded first,
// without clobbering variables already set.
func FromEnv() Config {
	_ = godotenv.Load()

	return Config{
		APIBaseURL:      envOrDefault("STOREFRONT_API_URL", "http://localhost:8080"),
		GeocodeBaseURL:  envOrDefault("GEOCODE_URL", "https://nominatim.openstreetmap.org"),
		StoragePath:     envOrDefault("STOREFRONT_STORE", defaultStorePath()),
		RequestTimeout:  envDuration("REQUEST_TIMEOUT_SECONDS", 15*time.Second),
		FixtureAddr:     envOrDefault("FIXTURE_ADDR", ":8080"),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT_SECONDS", 10*time.Second),
	}
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "storefront.db"
	}
	return filepath.Join(home, ".storefront", "storefront.db")
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		seconds, err := strconv.Atoi(v)
		if err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return def
}
