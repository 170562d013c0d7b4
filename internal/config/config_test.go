package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ITCH_BASE_URL", "HTTP_TIMEOUT", "LOG_LEVEL", "LOG_FORMAT", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}
	// Empty values count as set, so pin the ones that must parse.
	t.Setenv("PORT", "3000")
	t.Setenv("ITCH_BASE_URL", "https://itch.io")
	t.Setenv("HTTP_TIMEOUT", "10s")
	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "https://itch.io", cfg.Scraper.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Scraper.Timeout)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8085")
	t.Setenv("ITCH_BASE_URL", "http://localhost:9999")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8085, cfg.Server.Port)
	assert.Equal(t, "http://localhost:9999", cfg.Scraper.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Scraper.Timeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)

	level, err := cfg.Logging.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:  ServerConfig{Port: 3000},
			Scraper: ScraperConfig{BaseURL: "https://itch.io", Timeout: time.Second},
			Logging: LoggingConfig{Level: "info", Format: "json"},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"relative base url", func(c *Config) { c.Scraper.BaseURL = "/itch" }},
		{"zero timeout", func(c *Config) { c.Scraper.Timeout = 0 }},
		{"unknown level", func(c *Config) { c.Logging.Level = "loud" }},
		{"unknown format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	require.NoError(t, valid().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLoadScraper(t *testing.T) {
	t.Setenv("ITCH_BASE_URL", "http://127.0.0.1:8081")
	t.Setenv("HTTP_TIMEOUT", "250ms")
	t.Setenv("HTTP_USER_AGENT", "custom-agent")

	sc := LoadScraper()
	assert.Equal(t, "http://127.0.0.1:8081", sc.BaseURL)
	assert.Equal(t, 250*time.Millisecond, sc.Timeout)
	assert.Equal(t, "custom-agent", sc.UserAgent)
}
