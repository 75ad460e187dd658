package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/wsauth/internal/flagx"
	"github.com/dmitrijs2005/wsauth/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent fields
// leave the corresponding Config value untouched.
type JsonConfig struct {
	ServerURL           *string         `json:"server_url"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	RequestTimeout      *timex.Duration `json:"request_timeout"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. It panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != nil {
		cfg.ServerURL = *jc.ServerURL
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
}
