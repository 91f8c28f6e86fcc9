package ingest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ingest.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `
[global]
rate_limit_per_minute = 60
max_retries = 5
backoff_factor = 1.5
max_delay_seconds = 30
timeout_seconds = 10

[auth]
token_url = "https://auth.example.com/oauth2/token"
client_id = "importiq"
client_secret = "secret"
scopes = ["feeds:read"]

[jobs.auctions]
enabled = true
feed_url = "https://feeds.example.com/auctions.json"
interval = "6h"
source = "copart"

[jobs.duty_rates]
enabled = false
feed_url = "https://feeds.example.com/duty-rates.json"
`)

	config, err := LoadConfig(path)
	assert.NoError(t, err)

	assert.Equal(t, 60, config.Global.RateLimitPerMinute)
	assert.Equal(t, 5, config.Global.MaxRetries)
	assert.Equal(t, 1.5, config.Global.BackoffFactor)
	assert.Equal(t, "https://auth.example.com/oauth2/token", config.Auth.TokenURL)
	assert.Equal(t, []string{"feeds:read"}, config.Auth.Scopes)

	auctions, ok := config.Jobs["auctions"]
	assert.True(t, ok)
	assert.True(t, auctions.Enabled)
	assert.Equal(t, "copart", auctions.Source)

	interval, err := auctions.IntervalDuration()
	assert.NoError(t, err)
	assert.Equal(t, 6*time.Hour, interval)

	dutyRates := config.Jobs["duty_rates"]
	assert.False(t, dutyRates.Enabled)
}

func TestLoadConfigDefaultsMissingGlobals(t *testing.T) {
	path := writeConfigFile(t, `
[jobs.auctions]
enabled = true
feed_url = "https://feeds.example.com/auctions.json"
`)

	config, err := LoadConfig(path)
	assert.NoError(t, err)

	assert.Equal(t, 30, config.Global.RateLimitPerMinute)
	assert.Equal(t, 3, config.Global.MaxRetries)
	assert.Equal(t, 2.0, config.Global.BackoffFactor)
	assert.Equal(t, 60, config.Global.MaxDelaySeconds)
	assert.Equal(t, 30, config.Global.TimeoutSeconds)
}

func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/ingest.toml")
	assert.Error(t, err)
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	path := writeConfigFile(t, "[global\nrate_limit_per_minute = ")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestIntervalDuration(t *testing.T) {
	job := JobConfig{}
	interval, err := job.IntervalDuration()
	assert.NoError(t, err)
	assert.Equal(t, 24*time.Hour, interval, "empty interval should default to 24h")

	job.Interval = "30m"
	interval, err = job.IntervalDuration()
	assert.NoError(t, err)
	assert.Equal(t, 30*time.Minute, interval)

	job.Interval = "not-a-duration"
	_, err = job.IntervalDuration()
	assert.Error(t, err)

	job.Interval = "-1h"
	_, err = job.IntervalDuration()
	assert.Error(t, err)
}
