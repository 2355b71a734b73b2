package config

import (
	"errors"
	"os"
	"strings"
	"time"
)

const (
	defaultTerraAPIURL  = "https://api.tryterra.co/v2"
	defaultOpenAIAPIURL = "https://api.openai.com/v1"
)

type Config struct {
	Env      string
	LogLevel string
	Port     string

	// FrontendURL is the base used to build the widget redirect targets.
	FrontendURL string
	CORSOrigins []string

	TerraDevID  string
	TerraAPIKey string
	TerraAPIURL string

	OpenAIAPIKey string
	OpenAIAPIURL string

	SessionMaxAge        time.Duration
	SessionSweepInterval time.Duration
}

func Load() (*Config, error) {
	_ = loadDotEnv()
	cfg := &Config{
		Env:                  getEnv("APP_ENV", "development"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		Port:                 getEnv("PORT", "3000"),
		FrontendURL:          getEnv("FRONTEND_URL", "http://localhost:5173"),
		CORSOrigins:          splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		TerraDevID:           getEnv("TERRA_DEV_ID", ""),
		TerraAPIKey:          getEnv("TERRA_API_KEY", ""),
		TerraAPIURL:          getEnv("TERRA_API_URL", defaultTerraAPIURL),
		OpenAIAPIKey:         getEnv("OPENAI_API_KEY", ""),
		OpenAIAPIURL:         getEnv("OPENAI_API_URL", defaultOpenAIAPIURL),
		SessionMaxAge:        getDuration("SESSION_MAX_AGE", 24*time.Hour),
		SessionSweepInterval: getDuration("SESSION_SWEEP_INTERVAL", time.Hour),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks shape, not credential presence: a missing provider key is
// reported at the first call that needs it, so the server can still boot for
// flows that never reach that provider.
func (c *Config) Validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	if c.FrontendURL == "" {
		return errors.New("FRONTEND_URL must not be empty")
	}
	if !strings.HasPrefix(c.FrontendURL, "http://") && !strings.HasPrefix(c.FrontendURL, "https://") {
		return errors.New("FRONTEND_URL must be an absolute http(s) URL")
	}
	if c.SessionMaxAge <= 0 {
		return errors.New("SESSION_MAX_AGE must be positive")
	}
	if c.SessionSweepInterval <= 0 {
		return errors.New("SESSION_SWEEP_INTERVAL must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func loadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	data, err := os.ReadFile(".env")
	if err != nil {
		return err
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		if os.Getenv(key) == "" {
			os.Setenv(key, val)
		}
	}
	return nil
}
