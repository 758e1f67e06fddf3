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

	assert.Equal(t, 7860, cfg.Server.Port)
	assert.Equal(t, "https://www.amazon.com", cfg.Scraper.BaseURL)
	assert.Equal(t, "Lenovo ThinkBook 16", cfg.Scraper.DefaultQuery)
	assert.Equal(t, 3, cfg.Scraper.MaxRetries)
	assert.Equal(t, 15, cfg.Scraper.MaxItems)
	assert.Equal(t, 15*time.Second, cfg.Scraper.ResultsTimeout)
	assert.Equal(t, 60*time.Second, cfg.Scraper.NavigationTimeout)
	assert.InDelta(t, 749.99, cfg.Scraper.PriceThreshold, 0.001)
	assert.InDelta(t, 500.00, cfg.Scraper.MinPrice, 0.001)
	assert.NotEmpty(t, cfg.Scraper.UserAgents)
	assert.Equal(t, "USD", cfg.Browser.Currency)
	assert.True(t, cfg.Browser.Headless)
	assert.False(t, cfg.HistoryEnabled())
	assert.False(t, cfg.DedupEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SCRAPER_MAX_RETRIES", "5")
	t.Setenv("ALERT_PRICE_THRESHOLD", "600")
	t.Setenv("ALERT_MIN_PRICE", "400")
	t.Setenv("BROWSER_HEADLESS", "false")
	t.Setenv("SCRAPER_USER_AGENTS", "ua-one,ua-two")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("DB_HOST", "localhost")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Scraper.MaxRetries)
	assert.InDelta(t, 600, cfg.Scraper.PriceThreshold, 0.001)
	assert.InDelta(t, 400, cfg.Scraper.MinPrice, 0.001)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, []string{"ua-one", "ua-two"}, cfg.Scraper.UserAgents)
	assert.True(t, cfg.DedupEnabled())
	assert.True(t, cfg.HistoryEnabled())
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load()
		require.NoError(t, err)
		return cfg
	}

	t.Run("valid defaults", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("bad port", func(t *testing.T) {
		cfg := base()
		cfg.Server.Port = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing base url", func(t *testing.T) {
		cfg := base()
		cfg.Scraper.BaseURL = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("zero retries", func(t *testing.T) {
		cfg := base()
		cfg.Scraper.MaxRetries = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("no user agents", func(t *testing.T) {
		cfg := base()
		cfg.Scraper.UserAgents = nil
		assert.Error(t, cfg.Validate())
	})

	t.Run("floor above ceiling", func(t *testing.T) {
		cfg := base()
		cfg.Scraper.MinPrice = 1000
		cfg.Scraper.PriceThreshold = 700
		assert.Error(t, cfg.Validate())
	})
}

func TestGetDurationParsing(t *testing.T) {
	t.Setenv("SCRAPER_RESULTS_TIMEOUT", "30s")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Scraper.ResultsTimeout)
}
