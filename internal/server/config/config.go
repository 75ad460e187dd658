// Package config handles configuration for the auth server: defaults, an
// optional JSON overlay, command-line flags and the TOML secrets file.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds runtime settings for the auth server.
//
// Fields:
//   - HTTPAddr / GRPCAddr: bind addresses of the public HTTP API and the gRPC health endpoint.
//   - SecretsFile: TOML file supplying SecretKey and DatabaseURL.
//   - SecretKey: HMAC secret for endpoint and user tokens (HS256).
//   - DatabaseURL: ws:// or wss:// base URL of the database actor.
//   - ReconnectInterval / HeartbeatInterval: fixed schedule of the connection tasks.
//   - EndpointTokenTTL: lifetime of the token embedded in the actor URL; must exceed ReconnectInterval.
//   - UserTokenTTL: lifetime of bearer tokens issued at login.
//   - VerificationTTL: lifetime of email verification codes.
//   - RequestTimeout: bound on one database exchange, 0 disables.
//   - Serial: hold the request gate for the whole round trip.
//   - RateLimit / RateBurst: per-client limit on /auth routes, requests per second.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	HTTPAddr          string
	GRPCAddr          string
	SecretsFile       string
	SecretKey         string
	DatabaseURL       string
	ReconnectInterval time.Duration
	HeartbeatInterval time.Duration
	EndpointTokenTTL  time.Duration
	UserTokenTTL      time.Duration
	VerificationTTL   time.Duration
	RequestTimeout    time.Duration
	Serial            bool
	RateLimit         float64
	RateBurst         int
	LogLevel          string
}

// LoadDefaults populates Config with development defaults. SecretKey and
// DatabaseURL have none and must come from the secrets file or flags.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.GRPCAddr = ":50051"
	c.SecretsFile = "Secrets.toml"
	c.ReconnectInterval = 360 * time.Second
	c.HeartbeatInterval = 30 * time.Second
	c.EndpointTokenTTL = 3600 * time.Second
	c.UserTokenTTL = 31536000 * time.Second
	c.VerificationTTL = 24 * time.Hour
	c.RequestTimeout = 30 * time.Second
	c.RateLimit = 5
	c.RateBurst = 10
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, WSAUTH_* environment variables and finally
// command-line flags. Malformed input panics.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	if err := parseEnv(cfg); err != nil {
		panic(err)
	}
	parseFlags(cfg)
	return cfg
}

var (
	ErrMissingSecretKey   = errors.New("secret key is not configured")
	ErrMissingDatabaseURL = errors.New("database actor URL is not configured")
)

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return ErrMissingSecretKey
	}
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	if c.ReconnectInterval <= 0 || c.HeartbeatInterval <= 0 {
		return errors.New("connection intervals must be positive")
	}
	if c.EndpointTokenTTL <= c.ReconnectInterval {
		return fmt.Errorf("endpoint token TTL %s must exceed reconnect interval %s", c.EndpointTokenTTL, c.ReconnectInterval)
	}
	if c.UserTokenTTL <= 0 {
		return errors.New("user token TTL must be positive")
	}
	return nil
}
