package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()

	t.Setenv("JIRA_BASE_URL", "https://jira.example.com")
	t.Setenv("JIRA_USERNAME", "svc")
	t.Setenv("JIRA_TOKEN", "token")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("unexpected default port: %q", cfg.HTTPPort)
	}
	if cfg.TokenTTL != 10*time.Hour {
		t.Fatalf("unexpected default token TTL: %v", cfg.TokenTTL)
	}
	if cfg.Environment != "development" {
		t.Fatalf("unexpected default environment: %q", cfg.Environment)
	}
}

func TestLoadRequiresJiraBaseURL(t *testing.T) {
	setRequired(t)
	t.Setenv("JIRA_BASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for missing JIRA_BASE_URL")
	}
}

func TestLoadParsesTokenTTL(t *testing.T) {
	setRequired(t)
	t.Setenv("TOKEN_TTL", "30m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.TokenTTL != 30*time.Minute {
		t.Fatalf("unexpected token TTL: %v", cfg.TokenTTL)
	}
}

func TestLoadIgnoresInvalidDuration(t *testing.T) {
	setRequired(t)
	t.Setenv("TOKEN_TTL", "not-a-duration")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.TokenTTL != 10*time.Hour {
		t.Fatalf("expected fallback to default TTL, got %v", cfg.TokenTTL)
	}
}
