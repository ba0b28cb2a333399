// Package config loads runtime configuration for the webfolio client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment variables (see parseEnv): WEBFOLIO_API_URL, WEBFOLIO_STORE_PATH.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend REST API
//	-s string   path to the credential store file
//	-i int      token refresh interval (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "14m" or integer nanoseconds:
//
//	{
//	  "api_base_url": "http://localhost:8000/api",
//	  "store_path": "webfolio.db",
//	  "request_timeout": "5s",
//	  "token_refresh_interval": "14m",
//	  "session_poll_interval": "1m",
//	  "store_ttl": "168h",
//	  "default_public_username": "defaultuser"
//	}
//
// Primary API
//
//   - type Config                     — runtime settings for the client
//   - func LoadConfig() *Config       — defaults, then JSON, env, flags
//   - func (*Config) LoadDefaults()   — sets sensible defaults
package config
