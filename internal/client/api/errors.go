package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized is the terminal auth failure: the refresh path was
// exhausted and local auth state has been cleared. Match with errors.Is.
var ErrUnauthorized = errors.New("unauthorized")

// APIError carries the HTTP status and the server-supplied message of a
// failed request.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Is lets a 401 APIError match ErrUnauthorized in errors.Is chains.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// newAPIError builds an APIError from a non-2xx response body. The message
// is sourced from a "detail" or "message" field in the JSON error body,
// falling back to the HTTP status text when the body is unparseable.
func newAPIError(status int, body []byte) *APIError {
	var parsed struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	msg := ""
	if err := json.Unmarshal(body, &parsed); err == nil {
		msg = parsed.Detail
		if msg == "" {
			msg = parsed.Message
		}
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{Status: status, Message: msg}
}

// AsAPIError unwraps err to an *APIError if one is in the chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
