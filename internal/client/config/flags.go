package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/wsauth/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   base URL of the auth API
//	-i int      online check interval in seconds
//	-t int      request timeout in seconds
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-i", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the auth API")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	requestTimeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
}
