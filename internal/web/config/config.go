// Package config holds the web front end's settings: where the API lives,
// which session backend to use, and how eagerly tokens get refreshed.
package config

import "time"

type Config struct {
	EndpointAddr string
	APIBaseURL   string

	// SessionBackend selects the session store: "memory" or "redis".
	SessionBackend string
	RedisAddr      string
	RedisPassword  string

	// SessionTTL bounds how long an idle session survives in the store.
	SessionTTL time.Duration

	// RefreshThreshold is how close to expiry an access token may get
	// before a request triggers a refresh.
	RefreshThreshold time.Duration

	RequestTimeout time.Duration
}

func LoadDefaults() *Config {
	return &Config{
		EndpointAddr:     "localhost:8081",
		APIBaseURL:       "http://localhost:8080",
		SessionBackend:   "memory",
		RedisAddr:        "localhost:6379",
		SessionTTL:       24 * time.Hour,
		RefreshThreshold: time.Minute,
		RequestTimeout:   10 * time.Second,
	}
}

func LoadConfig() *Config {
	config := LoadDefaults()
	parseJson(config)
	parseFlags(config)
	return config
}
