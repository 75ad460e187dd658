package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/BurntSushi/toml"
)

type secretsFile struct {
	SecretKey   string `toml:"secret_key"`
	DatabaseURL string `toml:"db_ws_url"`
}

// LoadSecrets fills SecretKey and DatabaseURL from the TOML secrets file.
// Values already set by flags win. A missing file is tolerated only when
// both values are already set; the result is then validated.
func (c *Config) LoadSecrets() error {
	var raw secretsFile
	meta, err := toml.DecodeFile(c.SecretsFile, &raw)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if c.SecretKey == "" || c.DatabaseURL == "" {
			return fmt.Errorf("load secrets: %w", err)
		}
	case err != nil:
		return fmt.Errorf("load secrets: %w", err)
	}

	if meta.IsDefined("secret_key") && c.SecretKey == "" {
		c.SecretKey = strings.TrimSpace(raw.SecretKey)
	}
	if meta.IsDefined("db_ws_url") && c.DatabaseURL == "" {
		c.DatabaseURL = strings.TrimSpace(raw.DatabaseURL)
	}

	return c.Validate()
}
