package models

import (
	"encoding/json"
	"errors"
)

// TokenPair holds the short-lived access token and the longer-lived refresh
// token that mints new access tokens.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// AuthResult is the response of a successful login: the token pair plus the
// authenticated user record.
type AuthResult struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    User   `json:"user"`
}

// ErrUnrecognizedRegisterResponse is returned when the registration response
// matches neither known variant.
var ErrUnrecognizedRegisterResponse = errors.New("unrecognized registration response shape")

// RegisterOutcome is the decoded registration response. The endpoint's
// contract is not uniform across deployments: some return a full AuthResult,
// others only the created user without tokens. Exactly one field is non-nil.
type RegisterOutcome struct {
	// Tokens is set for the login-equivalent, token-bearing variant.
	Tokens *AuthResult

	// User is set for the bare-user variant; the caller must follow up with
	// a normal login to obtain tokens.
	User *User
}

// DecodeRegisterOutcome classifies a registration response body into one of
// the two variants. A body carrying both access and refresh tokens is the
// token-bearing variant; a body with a username but no tokens is the
// bare-user variant; anything else is ErrUnrecognizedRegisterResponse.
func DecodeRegisterOutcome(body []byte) (RegisterOutcome, error) {
	var full AuthResult
	if err := json.Unmarshal(body, &full); err == nil {
		if full.Access != "" && full.Refresh != "" {
			return RegisterOutcome{Tokens: &full}, nil
		}
		// Tokens absent or incomplete: a nested user without a full token
		// pair is still only a bare-user response.
		if full.User.Username != "" {
			return RegisterOutcome{User: &full.User}, nil
		}
	}

	var bare User
	if err := json.Unmarshal(body, &bare); err == nil && bare.Username != "" {
		return RegisterOutcome{User: &bare}, nil
	}

	return RegisterOutcome{}, ErrUnrecognizedRegisterResponse
}
