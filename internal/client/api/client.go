// Package api implements the HTTP core every service goes through: base URL
// handling, JSON codec, bearer-token injection from the credential store,
// and the single refresh-and-retry on 401.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/webfolio/webfolio/internal/client/store"
	"github.com/webfolio/webfolio/internal/logging"
)

const (
	// DefaultTimeout bounds every outbound request. A timeout is a generic
	// network failure, never an auth failure.
	DefaultTimeout = 5 * time.Second

	// DefaultStoreTTL is how long written credentials stay valid in the
	// store, mirroring a multi-day cookie expiry.
	DefaultStoreTTL = 7 * 24 * time.Hour
)

// Client issues JSON requests against the portal API.
type Client struct {
	baseURL  string
	http     *http.Client
	store    store.Store
	log      logging.Logger
	timeout  time.Duration
	storeTTL time.Duration

	refresh refreshGroup
}

// Option customizes a Client.
type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithStoreTTL overrides the credential-store entry lifetime.
func WithStoreTTL(d time.Duration) Option {
	return func(c *Client) { c.storeTTL = d }
}

// WithHTTPClient substitutes the underlying http.Client (tests mostly).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New builds a Client for the given base URL backed by the given store.
func New(baseURL string, st store.Store, log logging.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{},
		store:    st,
		log:      log,
		timeout:  DefaultTimeout,
		storeTTL: DefaultStoreTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StoreTTL reports the lifetime applied to credential writes.
func (c *Client) StoreTTL() time.Duration { return c.storeTTL }

// Do issues an authenticated request. The stored access token, when present,
// is attached as a bearer header. On a 401 the client performs exactly one
// token refresh and re-issues the request once with the new token; a second
// 401, or a failed refresh, ends in ErrUnauthorized with local auth state
// cleared. A request is never retried more than once.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	payload, err := marshalBody(body)
	if err != nil {
		return err
	}

	token, _, err := c.store.Get(ctx, store.KeyAccessToken)
	if err != nil {
		return fmt.Errorf("failed to read access token: %w", err)
	}

	status, respBody, err := c.send(ctx, method, path, payload, token)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized {
		// Single retry: refresh, then re-issue the original request once.
		newToken, refreshErr := c.RefreshAccessToken(ctx)
		if refreshErr != nil {
			// The refresh path is exhausted: whatever the proximate cause,
			// the caller sees a terminal unauthorized condition.
			return fmt.Errorf("request to %s: %w: %w", path, ErrUnauthorized, refreshErr)
		}

		status, respBody, err = c.send(ctx, method, path, payload, newToken)
		if err != nil {
			return err
		}
		if status == http.StatusUnauthorized {
			// Retried already; this is terminal.
			if clearErr := c.store.ClearAll(ctx); clearErr != nil {
				c.log.Error(ctx, "failed to clear auth state", "error", clearErr)
			}
			return fmt.Errorf("request to %s: %w", path, ErrUnauthorized)
		}
	}

	return decodeResponse(status, respBody, out)
}

// DoAnon issues a request without bearer injection and without the 401
// retry policy. Login, registration, token refresh and public lookups use
// it: a 401 on those endpoints means bad credentials, not a stale token.
func (c *Client) DoAnon(ctx context.Context, method, path string, body, out any) error {
	payload, err := marshalBody(body)
	if err != nil {
		return err
	}
	status, respBody, err := c.send(ctx, method, path, payload, "")
	if err != nil {
		return err
	}
	return decodeResponse(status, respBody, out)
}

func marshalBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return payload, nil
}

// send performs one HTTP round trip and returns status plus body. Transport
// failures (timeout, DNS, connection reset) come back as errors; any HTTP
// status, including 401, is returned for the caller to interpret.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, token string) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response from %s: %w", path, err)
	}
	return resp.StatusCode, body, nil
}

func decodeResponse(status int, body []byte, out any) error {
	if status < 200 || status > 299 {
		return newAPIError(status, body)
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
