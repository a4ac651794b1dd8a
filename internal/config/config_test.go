package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark-c-hall/movie-search/internal/config"
)

func TestLoad(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("TMDB_API_TOKEN", "token")

		cfg, err := config.Load()

		require.NoError(t, err)
		assert.Equal(t, "token", cfg.Client.APIToken)
		assert.Equal(t, "https://api.themoviedb.org", cfg.Client.APIURL)
		assert.Equal(t, "en-US", cfg.Client.Language)
		assert.Equal(t, 30*time.Second, cfg.Client.Timeout)
		assert.Equal(t, 1, cfg.Client.MaxRetries)
		assert.Equal(t, ":8080", cfg.Server.Addr())
		assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
		assert.Equal(t, "none", cfg.Telemetry.TracesExporter)
	})

	t.Run("reads environment overrides", func(t *testing.T) {
		envVars := map[string]string{
			"TMDB_API_TOKEN":       "token",
			"TMDB_LANGUAGE":        "de-DE",
			"TMDB_MAX_RETRIES":     "3",
			"PORT":                 "9090",
			"REQUEST_TIMEOUT":      "2s",
			"RATE_LIMIT_PER_SEC":   "0.5",
			"SESSION_TTL":          "1h",
			"OTEL_TRACES_EXPORTER": "stdout",
			"SENTRY_DSN":           "https://test@sentry.io/123",
		}
		for key, value := range envVars {
			t.Setenv(key, value)
		}

		cfg, err := config.Load()

		require.NoError(t, err)
		assert.Equal(t, "de-DE", cfg.Client.Language)
		assert.Equal(t, 3, cfg.Client.MaxRetries)
		assert.Equal(t, ":9090", cfg.Server.Addr())
		assert.Equal(t, 2*time.Second, cfg.Server.RequestTimeout)
		assert.InDelta(t, 0.5, cfg.Server.RateLimitPerSec, 0.0001)
		assert.Equal(t, time.Hour, cfg.Session.TTL)
		assert.Equal(t, "stdout", cfg.Telemetry.TracesExporter)
		assert.Equal(t, "https://test@sentry.io/123", cfg.SentryDSN)
	})

	t.Run("requires the api token", func(t *testing.T) {
		t.Setenv("TMDB_API_TOKEN", "")
		require.NoError(t, os.Unsetenv("TMDB_API_TOKEN"))

		cfg, err := config.Load()

		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "load config error")
	})

	t.Run("rejects an invalid duration", func(t *testing.T) {
		t.Setenv("TMDB_API_TOKEN", "token")
		t.Setenv("SESSION_TTL", "forever")

		cfg, err := config.Load()

		assert.Error(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("rejects an invalid language tag", func(t *testing.T) {
		t.Setenv("TMDB_API_TOKEN", "token")
		t.Setenv("TMDB_LANGUAGE", "not a language!")

		cfg, err := config.Load()

		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "TMDB_LANGUAGE")
	})

	t.Run("rejects an unknown traces exporter", func(t *testing.T) {
		t.Setenv("TMDB_API_TOKEN", "token")
		t.Setenv("OTEL_TRACES_EXPORTER", "zipkin")

		cfg, err := config.Load()

		assert.Error(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("rejects zero retries", func(t *testing.T) {
		t.Setenv("TMDB_API_TOKEN", "token")
		t.Setenv("TMDB_MAX_RETRIES", "0")

		cfg, err := config.Load()

		assert.Error(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("rejects a non-positive sweep interval", func(t *testing.T) {
		t.Setenv("TMDB_API_TOKEN", "token")
		t.Setenv("SESSION_SWEEP_INTERVAL", "0s")

		cfg, err := config.Load()

		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "SESSION_SWEEP_INTERVAL")
	})
}
