package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/wsauth/internal/flagx"
	"github.com/dmitrijs2005/wsauth/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations are timex.Duration so
// both "30s" and integer nanoseconds are accepted. Absent fields keep their
// current value.
type JsonConfig struct {
	HTTPAddr          *string         `json:"http_addr"`
	GRPCAddr          *string         `json:"grpc_addr"`
	SecretsFile       *string         `json:"secrets_file"`
	DatabaseURL       *string         `json:"database_url"`
	ReconnectInterval *timex.Duration `json:"reconnect_interval"`
	HeartbeatInterval *timex.Duration `json:"heartbeat_interval"`
	EndpointTokenTTL  *timex.Duration `json:"endpoint_token_ttl"`
	UserTokenTTL      *timex.Duration `json:"user_token_ttl"`
	VerificationTTL   *timex.Duration `json:"verification_ttl"`
	RequestTimeout    *timex.Duration `json:"request_timeout"`
	Serial            *bool           `json:"serial"`
	RateLimit         *float64        `json:"rate_limit"`
	RateBurst         *int            `json:"rate_burst"`
	LogLevel          *string         `json:"log_level"`
}

// parseJson loads the file named by -c or -config, if any, into config.
// The secret key is deliberately not read from JSON; it belongs in the
// secrets file. An unreadable or invalid file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCAddr, c.GRPCAddr)
	setString(&config.SecretsFile, c.SecretsFile)
	setString(&config.DatabaseURL, c.DatabaseURL)
	setString(&config.LogLevel, c.LogLevel)

	setDuration(&config.ReconnectInterval, c.ReconnectInterval)
	setDuration(&config.HeartbeatInterval, c.HeartbeatInterval)
	setDuration(&config.EndpointTokenTTL, c.EndpointTokenTTL)
	setDuration(&config.UserTokenTTL, c.UserTokenTTL)
	setDuration(&config.VerificationTTL, c.VerificationTTL)
	setDuration(&config.RequestTimeout, c.RequestTimeout)

	if c.Serial != nil {
		config.Serial = *c.Serial
	}
	if c.RateLimit != nil {
		config.RateLimit = *c.RateLimit
	}
	if c.RateBurst != nil {
		config.RateBurst = *c.RateBurst
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
