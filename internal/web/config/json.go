package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/recipecorner/recipecorner/internal/flagx"
	"github.com/recipecorner/recipecorner/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling; durations may
// be given as strings like "1m" or as integer nanoseconds.
type JsonConfig struct {
	EndpointAddr     string         `json:"endpoint_addr"`
	APIBaseURL       string         `json:"api_base_url"`
	SessionBackend   string         `json:"session_backend"`
	RedisAddr        string         `json:"redis_addr"`
	RedisPassword    string         `json:"redis_password"`
	SessionTTL       timex.Duration `json:"session_ttl"`
	RefreshThreshold timex.Duration `json:"refresh_threshold"`
	RequestTimeout   timex.Duration `json:"request_timeout"`
}

// parseJson overlays Config with values from the file named by -c/-config.
// Panics on read or unmarshal errors; config problems should abort startup.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.APIBaseURL = c.APIBaseURL
	config.SessionBackend = c.SessionBackend
	config.RedisAddr = c.RedisAddr
	config.RedisPassword = c.RedisPassword
	config.SessionTTL = time.Duration(c.SessionTTL.Duration)
	config.RefreshThreshold = time.Duration(c.RefreshThreshold.Duration)
	config.RequestTimeout = time.Duration(c.RequestTimeout.Duration)
}
