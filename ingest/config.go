package ingest

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the ingestion pipeline configuration loaded from a TOML file.
type Config struct {
	Global GlobalConfig         `toml:"global"`
	Auth   AuthConfig           `toml:"auth"`
	Jobs   map[string]JobConfig `toml:"jobs"`
}

// GlobalConfig contains fetcher settings shared by all jobs.
type GlobalConfig struct {
	RateLimitPerMinute int     `toml:"rate_limit_per_minute"`
	MaxRetries         int     `toml:"max_retries"`
	BackoffFactor      float64 `toml:"backoff_factor"`
	MaxDelaySeconds    int     `toml:"max_delay_seconds"`
	TimeoutSeconds     int     `toml:"timeout_seconds"`
}

// AuthConfig contains OAuth2 client-credentials settings for authenticated feeds.
// Left empty, feeds are fetched anonymously.
type AuthConfig struct {
	TokenURL     string   `toml:"token_url"`
	ClientID     string   `toml:"client_id"`
	ClientSecret string   `toml:"client_secret"`
	Scopes       []string `toml:"scopes"`
}

// JobConfig describes one scheduled ingestion job.
type JobConfig struct {
	Enabled  bool   `toml:"enabled"`
	FeedURL  string `toml:"feed_url"`
	Interval string `toml:"interval"`
	Source   string `toml:"source"`
}

// IntervalDuration parses the job's interval string (e.g. "24h", "30m").
func (j JobConfig) IntervalDuration() (time.Duration, error) {
	if j.Interval == "" {
		return 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(j.Interval)
	if err != nil {
		return 0, fmt.Errorf("invalid job interval %q: %w", j.Interval, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("job interval must be positive, got %q", j.Interval)
	}
	return d, nil
}

// DefaultConfig returns a Config with sensible defaults and no jobs.
func DefaultConfig() *Config {
	return &Config{
		Global: GlobalConfig{
			RateLimitPerMinute: 30,
			MaxRetries:         3,
			BackoffFactor:      2,
			MaxDelaySeconds:    60,
			TimeoutSeconds:     30,
		},
		Jobs: make(map[string]JobConfig),
	}
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
// Missing global settings fall back to the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if config.Global.RateLimitPerMinute <= 0 {
		config.Global.RateLimitPerMinute = 30
	}
	if config.Global.MaxRetries < 0 {
		config.Global.MaxRetries = 3
	}
	if config.Global.BackoffFactor <= 0 {
		config.Global.BackoffFactor = 2
	}
	if config.Global.MaxDelaySeconds <= 0 {
		config.Global.MaxDelaySeconds = 60
	}
	if config.Global.TimeoutSeconds <= 0 {
		config.Global.TimeoutSeconds = 30
	}

	return config, nil
}
