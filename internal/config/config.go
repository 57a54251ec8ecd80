package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config contains runtime configuration values.
type Config struct {
	Environment     string
	HTTPPort        string
	DatabaseURL     string
	JiraBaseURL     string
	JiraUsername    string
	JiraToken       string
	JWTSecret       string
	TokenTTL        time.Duration
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables with sane defaults.
// DATABASE_URL is optional; without it the service runs on in-memory stores.
func Load() (Config, error) {
	_ = godotenv.Load()

	jiraBaseURL := strings.TrimSpace(os.Getenv("JIRA_BASE_URL"))
	if jiraBaseURL == "" {
		return Config{}, fmt.Errorf("JIRA_BASE_URL is required")
	}
	jiraUsername := strings.TrimSpace(os.Getenv("JIRA_USERNAME"))
	if jiraUsername == "" {
		return Config{}, fmt.Errorf("JIRA_USERNAME is required")
	}
	jiraToken := strings.TrimSpace(os.Getenv("JIRA_TOKEN"))
	if jiraToken == "" {
		return Config{}, fmt.Errorf("JIRA_TOKEN is required")
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}

	cfg := Config{
		Environment:     getEnv("APP_ENV", "development"),
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		JiraBaseURL:     jiraBaseURL,
		JiraUsername:    jiraUsername,
		JiraToken:       jiraToken,
		JWTSecret:       jwtSecret,
		TokenTTL:        getDuration("TOKEN_TTL", 10*time.Hour),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
