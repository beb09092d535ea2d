// Package config holds runtime settings for the quiz client.
package config

import "time"

// Config fields:
//   - BaseURL: scheme://host:port of the quiz backend.
//   - RequestTimeout: per-request HTTP timeout.
//   - DatabasePath: sqlite file holding the credential store.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	DatabasePath   string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://127.0.0.1:8000"
	c.RequestTimeout = 15 * time.Second
	c.DatabasePath = "quiz.db"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
