package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/webfolio/webfolio/internal/flagx"
	"github.com/webfolio/webfolio/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "14m"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config (which uses time.Duration).
type JsonConfig struct {
	APIBaseURL            string         `json:"api_base_url"`
	StorePath             string         `json:"store_path"`
	RequestTimeout        timex.Duration `json:"request_timeout"`
	TokenRefreshInterval  timex.Duration `json:"token_refresh_interval"`
	SessionPollInterval   timex.Duration `json:"session_poll_interval"`
	StoreTTL              timex.Duration `json:"store_ttl"`
	DefaultPublicUsername string         `json:"default_public_username"`
}

// parseJson overlays Config with values loaded from a JSON file. The file
// path comes from the -c/-config flags; when neither is given nothing is
// loaded. Zero values in the file leave the current Config value untouched,
// so a partial file only overrides what it names.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
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

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.StorePath != "" {
		cfg.StorePath = jc.StorePath
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
	if jc.TokenRefreshInterval.Duration != 0 {
		cfg.TokenRefreshInterval = time.Duration(jc.TokenRefreshInterval.Duration)
	}
	if jc.SessionPollInterval.Duration != 0 {
		cfg.SessionPollInterval = time.Duration(jc.SessionPollInterval.Duration)
	}
	if jc.StoreTTL.Duration != 0 {
		cfg.StoreTTL = time.Duration(jc.StoreTTL.Duration)
	}
	if jc.DefaultPublicUsername != "" {
		cfg.DefaultPublicUsername = jc.DefaultPublicUsername
	}
}
