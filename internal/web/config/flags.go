package config

import (
	"flag"
	"os"
	"time"

	"github.com/recipecorner/recipecorner/internal/flagx"
)

// parseFlags populates selected web Config fields from command-line flags.
//
//	-a string   HTTP bind address
//	-u string   API base URL
//	-k string   session backend: memory or redis
//	-r string   redis address
//	-p string   redis password
//	-t int      refresh threshold, seconds
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-u", "-k", "-r", "-p", "-t"})

	fs := flag.NewFlagSet("web", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.APIBaseURL, "u", config.APIBaseURL, "API base URL")
	fs.StringVar(&config.SessionBackend, "k", config.SessionBackend, "session backend (memory or redis)")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")
	fs.StringVar(&config.RedisPassword, "p", config.RedisPassword, "redis password")

	refreshThreshold := fs.Int("t", int(config.RefreshThreshold.Seconds()), "refresh threshold (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.RefreshThreshold = time.Duration(*refreshThreshold) * time.Second
}
