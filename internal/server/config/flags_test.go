package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	base := func() Config {
		var c Config
		c.LoadDefaults()
		return c
	}

	tests := []struct {
		name        string
		args        []string
		expected    func() Config
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd",
				"-a", "127.0.0.1:9090", "-g", ":6000", "-k", "prod.toml", "-s", "secret",
				"-d", "wss://db.example", "-r", "120", "-b", "10", "-t", "5", "-l", "debug",
			},
			expected: func() Config {
				c := base()
				c.HTTPAddr = "127.0.0.1:9090"
				c.GRPCAddr = ":6000"
				c.SecretsFile = "prod.toml"
				c.SecretKey = "secret"
				c.DatabaseURL = "wss://db.example"
				c.ReconnectInterval = 120 * time.Second
				c.HeartbeatInterval = 10 * time.Second
				c.RequestTimeout = 5 * time.Second
				c.LogLevel = "debug"
				return c
			},
		},
		{
			name:     "foreign flags are ignored",
			args:     []string{"cmd", "-c", "cfg.json", "-x", "1", "-a", ":1"},
			expected: func() Config { c := base(); c.HTTPAddr = ":1"; return c },
		},
		{
			name:        "bad duration",
			args:        []string{"cmd", "-r", "soon"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			config := base()

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(&config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(&config) })
			assert.Empty(t, cmp.Diff(tt.expected(), config))
		})
	}
}
