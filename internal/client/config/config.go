package config

import "time"

// Config holds runtime settings for authctl.
//
// Fields:
//   - ServerURL: base URL of the auth HTTP API.
//   - OnlineCheckInterval: how often the client probes /health.
//   - RequestTimeout: bound on a single API call.
type Config struct {
	ServerURL           string
	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
