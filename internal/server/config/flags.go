package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/wsauth/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-g string   gRPC health bind address
//	-k string   secrets TOML file
//	-s string   HMAC secret key
//	-d string   database actor base URL (ws:// or wss://)
//	-r int      reconnect interval, seconds
//	-b int      heartbeat interval, seconds
//	-t int      request timeout, seconds (0 disables)
//	-l string   log level
//
// Durations are accepted as whole seconds.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-k", "-s", "-d", "-r", "-b", "-t", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP address and port")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "gRPC health address and port")
	fs.StringVar(&config.SecretsFile, "k", config.SecretsFile, "secrets file")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.DatabaseURL, "d", config.DatabaseURL, "database actor URL")

	reconnect := fs.Int("r", int(config.ReconnectInterval.Seconds()), "reconnect interval (in seconds)")
	heartbeat := fs.Int("b", int(config.HeartbeatInterval.Seconds()), "heartbeat interval (in seconds)")
	timeout := fs.Int("t", int(config.RequestTimeout.Seconds()), "request timeout (in seconds)")

	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.ReconnectInterval = time.Duration(*reconnect) * time.Second
	config.HeartbeatInterval = time.Duration(*heartbeat) * time.Second
	config.RequestTimeout = time.Duration(*timeout) * time.Second
}
