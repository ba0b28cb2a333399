package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/webfolio/webfolio/internal/client/store"
)

// refreshGroup coalesces concurrent token refreshes behind one in-flight
// call so a burst of 401s produces a single POST /token/refresh/.
type refreshGroup struct {
	mu       sync.Mutex
	inflight *refreshCall
}

type refreshCall struct {
	done  chan struct{}
	token string
	err   error
}

// RefreshAccessToken exchanges the stored refresh token for a new access
// token and persists it. On any failure it clears all stored auth state
// before propagating: a refresh failure always invalidates the local
// session. Concurrent callers share one refresh round trip.
func (c *Client) RefreshAccessToken(ctx context.Context) (string, error) {
	c.refresh.mu.Lock()
	if call := c.refresh.inflight; call != nil {
		c.refresh.mu.Unlock()
		select {
		case <-call.done:
			return call.token, call.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	call := &refreshCall{done: make(chan struct{})}
	c.refresh.inflight = call
	c.refresh.mu.Unlock()

	call.token, call.err = c.refreshOnce(ctx)

	c.refresh.mu.Lock()
	c.refresh.inflight = nil
	c.refresh.mu.Unlock()
	close(call.done)

	return call.token, call.err
}

func (c *Client) refreshOnce(ctx context.Context) (string, error) {
	refresh, ok, err := c.store.Get(ctx, store.KeyRefreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to read refresh token: %w", err)
	}
	if !ok {
		c.clearAuthState(ctx)
		return "", fmt.Errorf("no refresh token available: %w", ErrUnauthorized)
	}

	var resp struct {
		Access string `json:"access"`
	}
	err = c.DoAnon(ctx, http.MethodPost, "/token/refresh/", map[string]string{"refresh": refresh}, &resp)
	if err != nil {
		c.clearAuthState(ctx)
		return "", fmt.Errorf("token refresh failed: %w", err)
	}
	if resp.Access == "" {
		c.clearAuthState(ctx)
		return "", fmt.Errorf("token refresh returned no access token: %w", ErrUnauthorized)
	}

	if err := c.store.Set(ctx, store.KeyAccessToken, resp.Access, c.storeTTL); err != nil {
		return "", fmt.Errorf("failed to persist access token: %w", err)
	}
	return resp.Access, nil
}

func (c *Client) clearAuthState(ctx context.Context) {
	if err := c.store.ClearAll(ctx); err != nil {
		c.log.Error(ctx, "failed to clear auth state", "error", err)
	}
}
