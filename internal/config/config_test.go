package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	if cfg.APIBaseURL != "http://localhost:8080" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v", cfg.ShutdownTimeout)
	}
	if cfg.StoragePath == "" {
		t.Error("StoragePath empty")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("STOREFRONT_API_URL", "http://api.example.com")
	t.Setenv("STOREFRONT_STORE", "/tmp/test-store.db")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "30")

	cfg := FromEnv()

	if cfg.APIBaseURL != "http://api.example.com" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.StoragePath != "/tmp/test-store.db" {
		t.Errorf("StoragePath = %q", cfg.StoragePath)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
}

func TestEnvDurationMalformed(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "pas-un-nombre")

	cfg := FromEnv()
	if cfg.RequestTimeout != 15*time.Second {
		t.Errorf("RequestTimeout = %v, want default on parse failure", cfg.RequestTimeout)
	}
}
