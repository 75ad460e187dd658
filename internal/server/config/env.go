package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// EnvConfig lists the environment variables read by parseEnv. Unset
// variables leave the field zero, and zero fields are not applied.
type EnvConfig struct {
	HTTPAddr          string        `env:"WSAUTH_HTTP_ADDR"`
	GRPCAddr          string        `env:"WSAUTH_GRPC_ADDR"`
	SecretsFile       string        `env:"WSAUTH_SECRETS_FILE"`
	SecretKey         string        `env:"WSAUTH_SECRET_KEY"`
	DatabaseURL       string        `env:"WSAUTH_DB_WS_URL"`
	ReconnectInterval time.Duration `env:"WSAUTH_RECONNECT_INTERVAL"`
	HeartbeatInterval time.Duration `env:"WSAUTH_HEARTBEAT_INTERVAL"`
	RequestTimeout    time.Duration `env:"WSAUTH_REQUEST_TIMEOUT"`
	EndpointTokenTTL  time.Duration `env:"WSAUTH_ENDPOINT_TOKEN_TTL"`
	UserTokenTTL      time.Duration `env:"WSAUTH_USER_TOKEN_TTL"`
	VerificationTTL   time.Duration `env:"WSAUTH_VERIFICATION_TTL"`
	Serial            string        `env:"WSAUTH_SERIAL"`
	RateLimit         float64       `env:"WSAUTH_RATE_LIMIT"`
	RateBurst         int           `env:"WSAUTH_RATE_BURST"`
	LogLevel          string        `env:"WSAUTH_LOG_LEVEL"`
}

// parseEnv overlays config with WSAUTH_* variables. It sits between the JSON
// file and the flags in precedence.
func parseEnv(config *Config) error {
	var e EnvConfig
	if err := cleanenv.ReadEnv(&e); err != nil {
		return fmt.Errorf("read env: %w", err)
	}
	return e.apply(config)
}

func (e *EnvConfig) apply(config *Config) error {
	setIfSet(&config.HTTPAddr, e.HTTPAddr)
	setIfSet(&config.GRPCAddr, e.GRPCAddr)
	setIfSet(&config.SecretsFile, e.SecretsFile)
	setIfSet(&config.SecretKey, e.SecretKey)
	setIfSet(&config.DatabaseURL, e.DatabaseURL)
	setIfSet(&config.ReconnectInterval, e.ReconnectInterval)
	setIfSet(&config.HeartbeatInterval, e.HeartbeatInterval)
	setIfSet(&config.RequestTimeout, e.RequestTimeout)
	setIfSet(&config.EndpointTokenTTL, e.EndpointTokenTTL)
	setIfSet(&config.UserTokenTTL, e.UserTokenTTL)
	setIfSet(&config.VerificationTTL, e.VerificationTTL)
	setIfSet(&config.RateLimit, e.RateLimit)
	setIfSet(&config.RateBurst, e.RateBurst)
	setIfSet(&config.LogLevel, e.LogLevel)

	if e.Serial != "" {
		v, err := strconv.ParseBool(e.Serial)
		if err != nil {
			return fmt.Errorf("WSAUTH_SERIAL: %w", err)
		}
		config.Serial = v
	}
	return nil
}

func setIfSet[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}
