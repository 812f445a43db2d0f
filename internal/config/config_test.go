package config

import (
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIBaseURL == "" {
		t.Error("expected a default API base URL")
	}
	if cfg.APITimeoutSeconds != 10 {
		t.Errorf("expected default timeout 10s, got %d", cfg.APITimeoutSeconds)
	}
	if cfg.DefaultPageLimit != 10 {
		t.Errorf("expected default page limit 10, got %d", cfg.DefaultPageLimit)
	}
	if cfg.StateDir == "" {
		t.Error("expected a default state dir")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.clinic.example/api/v1")
	t.Setenv("ENV", "production")
	t.Setenv("API_TIMEOUT_SECONDS", "30")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIBaseURL != "https://api.clinic.example/api/v1" {
		t.Errorf("expected env override, got %q", cfg.APIBaseURL)
	}
	if cfg.IsDev() {
		t.Error("expected production to not be dev")
	}
	if cfg.APITimeout().Seconds() != 30 {
		t.Errorf("expected 30s timeout, got %v", cfg.APITimeout())
	}
}

func TestLoad_ClampsBadValues(t *testing.T) {
	t.Setenv("API_TIMEOUT_SECONDS", "-5")
	t.Setenv("DEFAULT_PAGE_LIMIT", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APITimeoutSeconds != 10 {
		t.Errorf("expected clamped timeout, got %d", cfg.APITimeoutSeconds)
	}
	if cfg.DefaultPageLimit != 10 {
		t.Errorf("expected clamped page limit, got %d", cfg.DefaultPageLimit)
	}
}
