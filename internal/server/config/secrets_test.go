package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSecrets(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Secrets.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadSecrets(t *testing.T) {
	t.Run("reads both values", func(t *testing.T) {
		var c Config
		c.LoadDefaults()
		c.SecretsFile = writeSecrets(t, "secret_key = \"s3cr3t\"\ndb_ws_url = \"ws://actor:9000/ws\"\n")

		require.NoError(t, c.LoadSecrets())
		assert.Equal(t, "s3cr3t", c.SecretKey)
		assert.Equal(t, "ws://actor:9000/ws", c.DatabaseURL)
	})

	t.Run("flags win over file", func(t *testing.T) {
		var c Config
		c.LoadDefaults()
		c.SecretKey = "from-flag"
		c.SecretsFile = writeSecrets(t, "secret_key = \"file\"\ndb_ws_url = \"ws://actor\"\n")

		require.NoError(t, c.LoadSecrets())
		assert.Equal(t, "from-flag", c.SecretKey)
		assert.Equal(t, "ws://actor", c.DatabaseURL)
	})

	t.Run("missing key aborts", func(t *testing.T) {
		var c Config
		c.LoadDefaults()
		c.SecretsFile = writeSecrets(t, "db_ws_url = \"ws://actor\"\n")
		require.ErrorIs(t, c.LoadSecrets(), ErrMissingSecretKey)
	})

	t.Run("missing file aborts", func(t *testing.T) {
		var c Config
		c.LoadDefaults()
		c.SecretsFile = filepath.Join(t.TempDir(), "absent.toml")
		require.Error(t, c.LoadSecrets())
	})

	t.Run("missing file tolerated when flags supply everything", func(t *testing.T) {
		var c Config
		c.LoadDefaults()
		c.SecretKey = "k"
		c.DatabaseURL = "ws://actor"
		c.SecretsFile = filepath.Join(t.TempDir(), "absent.toml")
		require.NoError(t, c.LoadSecrets())
	})

	t.Run("malformed toml", func(t *testing.T) {
		var c Config
		c.LoadDefaults()
		c.SecretsFile = writeSecrets(t, "secret_key = ")
		require.Error(t, c.LoadSecrets())
	})
}
