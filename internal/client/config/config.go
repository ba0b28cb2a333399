package config

import "time"

// Config holds runtime settings for the webfolio client.
//
// Fields:
//   - APIBaseURL: base URL of the backend REST API, including the /api prefix.
//   - StorePath: SQLite file holding tokens and the cached user record.
//   - RequestTimeout: per-request HTTP deadline.
//   - TokenRefreshInterval: proactive access-token refresh cadence.
//   - SessionPollInterval: how often the server-side session list is checked.
//   - StoreTTL: lifetime of persisted credentials.
//   - DefaultPublicUsername: profile shown when no username is given.
type Config struct {
	APIBaseURL            string
	StorePath             string
	RequestTimeout        time.Duration
	TokenRefreshInterval  time.Duration
	SessionPollInterval   time.Duration
	StoreTTL              time.Duration
	DefaultPublicUsername string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8000/api"
	c.StorePath = "webfolio.db"
	c.RequestTimeout = 5 * time.Second
	c.TokenRefreshInterval = 14 * time.Minute
	c.SessionPollInterval = time.Minute
	c.StoreTTL = 7 * 24 * time.Hour
	c.DefaultPublicUsername = "defaultuser"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), environment variables, and command-line flags. Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
