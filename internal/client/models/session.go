package models

import "time"

// Session is a server-tracked record of one authenticated device/browser.
type Session struct {
	ID              int64     `json:"id"`
	SessionKey      string    `json:"session_key"`
	CreatedAt       time.Time `json:"created_at"`
	LastActivity    time.Time `json:"last_activity"`
	IPAddress       string    `json:"ip_address"`
	UserAgent       string    `json:"user_agent"`
	DeviceType      string    `json:"device_type"`
	Location        string    `json:"location"`
	IsActive        bool      `json:"is_active"`
	ExpiresAt       time.Time `json:"expires_at"`
	Duration        float64   `json:"duration"`
	TimeUntilExpiry float64   `json:"time_until_expiry"`
}

// HasActive reports whether any session in the list is still active for this
// client. An all-inactive list means the server invalidated us elsewhere.
func HasActive(sessions []Session) bool {
	for _, s := range sessions {
		if s.IsActive {
			return true
		}
	}
	return false
}
