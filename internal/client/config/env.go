package config

import "os"

// Environment variables recognized by parseEnv.
const (
	EnvAPIBaseURL = "WEBFOLIO_API_URL"
	EnvStorePath  = "WEBFOLIO_STORE_PATH"
)

// parseEnv overlays Config with values from the environment. Only set,
// non-empty variables override.
func parseEnv(cfg *Config) {
	if v, ok := os.LookupEnv(EnvAPIBaseURL); ok && v != "" {
		cfg.APIBaseURL = v
	}
	if v, ok := os.LookupEnv(EnvStorePath); ok && v != "" {
		cfg.StorePath = v
	}
}
