package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "http://localhost:5173", cfg.FrontendURL)
	assert.Equal(t, "https://api.tryterra.co/v2", cfg.TerraAPIURL)
	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAIAPIURL)
	assert.Equal(t, 24*time.Hour, cfg.SessionMaxAge)
	assert.Equal(t, time.Hour, cfg.SessionSweepInterval)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "8080")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, https://staging.example.com")
	t.Setenv("SESSION_MAX_AGE", "1h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"https://app.example.com", "https://staging.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, time.Hour, cfg.SessionMaxAge)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Env:                  "development",
			FrontendURL:          "http://localhost:5173",
			SessionMaxAge:        24 * time.Hour,
			SessionSweepInterval: time.Hour,
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("bad env", func(t *testing.T) {
		cfg := base()
		cfg.Env = "qa"
		assert.Error(t, cfg.Validate())
	})

	t.Run("relative frontend url", func(t *testing.T) {
		cfg := base()
		cfg.FrontendURL = "localhost:5173"
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive max age", func(t *testing.T) {
		cfg := base()
		cfg.SessionMaxAge = 0
		assert.Error(t, cfg.Validate())
	})
}

func TestInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("SESSION_MAX_AGE", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, cfg.SessionMaxAge)
}
