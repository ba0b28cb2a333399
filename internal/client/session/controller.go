// Package session holds the application-wide auth state machine: current
// user, authentication flag, and the background refresh/poll loops.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/webfolio/webfolio/internal/client/models"
	"github.com/webfolio/webfolio/internal/client/services"
	"github.com/webfolio/webfolio/internal/client/store"
	"github.com/webfolio/webfolio/internal/logging"
)

const (
	// DefaultRefreshInterval is the proactive access-token refresh cadence,
	// just under the nominal 15-minute token lifetime.
	DefaultRefreshInterval = 14 * time.Minute

	// DefaultPollInterval is how often the server-side session list is
	// checked for remote invalidation.
	DefaultPollInterval = time.Minute

	// DefaultRefreshMargin is subtracted from a JWT exp claim when deriving
	// the next refresh time.
	DefaultRefreshMargin = time.Minute
)

// Navigator receives redirect side effects. The router owns the actual
// navigation; the controller only requests it.
type Navigator interface {
	NavigateTo(path string)
}

// Notifier receives transient user-facing messages (toasts).
type Notifier interface {
	Notify(message string)
}

// Controller owns the Anonymous/Authenticated state and the two background
// tasks: proactive token refresh and session-liveness polling. Both are
// started by Start and torn down together by Close.
type Controller struct {
	auth   services.AuthService
	store  store.Store
	nav    Navigator
	notify Notifier
	log    logging.Logger

	refreshEvery  time.Duration
	pollEvery     time.Duration
	refreshMargin time.Duration

	mu       sync.Mutex
	user     *models.User
	sessions []models.Session

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Option customizes a Controller.
type Option func(*Controller)

func WithRefreshInterval(d time.Duration) Option {
	return func(c *Controller) { c.refreshEvery = d }
}

func WithPollInterval(d time.Duration) Option {
	return func(c *Controller) { c.pollEvery = d }
}

func WithRefreshMargin(d time.Duration) Option {
	return func(c *Controller) { c.refreshMargin = d }
}

// New constructs a Controller. Call Start to hydrate and begin the
// background loops, and Close to tear them down.
func New(auth services.AuthService, st store.Store, nav Navigator, notify Notifier, log logging.Logger, opts ...Option) *Controller {
	c := &Controller{
		auth:          auth,
		store:         st,
		nav:           nav,
		notify:        notify,
		log:           log,
		refreshEvery:  DefaultRefreshInterval,
		pollEvery:     DefaultPollInterval,
		refreshMargin: DefaultRefreshMargin,
		stop:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start hydrates auth state from the store and launches the background
// loops. The cached user record decides whether we start authenticated; a
// missing access token triggers a defensive clear of any partial state.
func (c *Controller) Start(ctx context.Context) error {
	if err := c.hydrate(ctx); err != nil {
		return err
	}

	c.wg.Add(2)
	go c.refreshLoop(ctx)
	go c.pollLoop(ctx)
	return nil
}

// Close stops scheduling further background ticks and waits for in-flight
// ones to finish. In-flight requests are not aborted.
func (c *Controller) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
	c.wg.Wait()
}

// User returns the current user, or nil when anonymous.
func (c *Controller) User() *models.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

// Authenticated reports whether a user is logged in.
func (c *Controller) Authenticated() bool {
	return c.User() != nil
}

// Sessions returns the last fetched session list.
func (c *Controller) Sessions() []models.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessions
}

// Login authenticates and, on success, transitions to Authenticated and
// navigates to the user's dashboard. On failure state stays Anonymous and
// the error is returned for the UI to surface.
func (c *Controller) Login(ctx context.Context, identifier, password string) error {
	result, err := c.auth.Login(ctx, identifier, password)
	if err != nil {
		return err
	}
	c.setUser(&result.User)
	c.fetchSessions(ctx)
	c.nav.NavigateTo("/dashboard/" + result.User.Username)
	return nil
}

// Register creates an account and follows the same success path as Login.
func (c *Controller) Register(ctx context.Context, payload services.RegisterPayload) error {
	result, err := c.auth.Register(ctx, payload)
	if err != nil {
		return err
	}
	c.setUser(&result.User)
	c.fetchSessions(ctx)
	c.nav.NavigateTo("/dashboard/" + result.User.Username)
	return nil
}

// Logout ends the session: storage cleared, Anonymous, navigation to the
// login screen. Safe to call repeatedly; a failed network revocation still
// ends in Anonymous.
func (c *Controller) Logout(ctx context.Context) error {
	err := c.auth.Logout(ctx)
	if err != nil {
		c.log.Warn(ctx, "logout request failed, local state cleared anyway", "error", err)
	}
	c.setUser(nil)
	c.nav.NavigateTo("/login")
	return err
}

// RefreshSessions re-fetches the session list on demand, outside the poll
// cadence. Remote invalidation is handled the same way as a poll tick.
func (c *Controller) RefreshSessions(ctx context.Context) {
	c.fetchSessions(ctx)
}

// DeleteSession revokes one device session and refreshes the list.
func (c *Controller) DeleteSession(ctx context.Context, id int64) error {
	if err := c.auth.DeleteSession(ctx, id); err != nil {
		return err
	}
	c.fetchSessions(ctx)
	return nil
}

// DeleteAllOtherSessions revokes every other device session.
func (c *Controller) DeleteAllOtherSessions(ctx context.Context) error {
	if err := c.auth.DeleteAllOtherSessions(ctx); err != nil {
		return err
	}
	c.fetchSessions(ctx)
	return nil
}

func (c *Controller) hydrate(ctx context.Context) error {
	raw, hasUser, err := c.store.Get(ctx, store.KeyUser)
	if err != nil {
		return err
	}
	_, hasToken, err := c.store.Get(ctx, store.KeyAccessToken)
	if err != nil {
		return err
	}

	if !hasUser || !hasToken {
		// Defensive clear of stale partial state; not an error.
		if err := c.store.ClearAll(ctx); err != nil {
			c.log.Error(ctx, "failed to clear stale auth state", "error", err)
		}
		return nil
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		c.log.Warn(ctx, "corrupt cached user record, clearing auth state", "error", err)
		return c.store.ClearAll(ctx)
	}
	c.setUser(&user)

	// Validate the hydrated session right away.
	if _, err := c.auth.Refresh(ctx); err != nil {
		c.forceLogout(ctx, "Session expired. Please log in again.")
		return nil
	}
	c.fetchSessions(ctx)
	return nil
}

func (c *Controller) setUser(user *models.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = user
	if user == nil {
		c.sessions = nil
	}
}

// fetchSessions refreshes the session list and detects remote invalidation:
// a list with no active session means this client was logged out elsewhere.
func (c *Controller) fetchSessions(ctx context.Context) {
	sessions, err := c.auth.Sessions(ctx)
	if err != nil {
		c.log.Error(ctx, "failed to fetch sessions", "error", err)
		return
	}
	c.mu.Lock()
	c.sessions = sessions
	c.mu.Unlock()

	if !models.HasActive(sessions) {
		c.forceLogout(ctx, "You have been logged out on this device.")
	}
}

// forceLogout is the escalation path for unrecoverable auth failures.
func (c *Controller) forceLogout(ctx context.Context, message string) {
	if !c.Authenticated() {
		return
	}
	if err := c.auth.Logout(ctx); err != nil {
		c.log.Warn(ctx, "forced logout cleanup failed", "error", err)
	}
	c.setUser(nil)
	c.notify.Notify(message)
	c.nav.NavigateTo("/login")
}

func (c *Controller) refreshLoop(ctx context.Context) {
	defer c.wg.Done()

	timer := time.NewTimer(c.nextRefreshIn(ctx))
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			if c.Authenticated() {
				if _, err := c.auth.Refresh(ctx); err != nil {
					c.log.Error(ctx, "token refresh failed", "error", err)
					c.forceLogout(ctx, "Session expired. Please log in again.")
				}
			}
			timer.Reset(c.nextRefreshIn(ctx))

		case <-c.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (c *Controller) pollLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if c.Authenticated() {
				c.fetchSessions(ctx)
			}

		case <-c.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// nextRefreshIn derives the next refresh delay. When the stored access
// token is a parseable JWT its exp claim wins (minus a safety margin),
// clamped to the configured interval; otherwise the fixed interval applies.
func (c *Controller) nextRefreshIn(ctx context.Context) time.Duration {
	raw, ok, err := c.store.Get(ctx, store.KeyAccessToken)
	if err != nil || !ok {
		return c.refreshEvery
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil || claims.ExpiresAt == nil {
		return c.refreshEvery
	}

	until := time.Until(claims.ExpiresAt.Time) - c.refreshMargin
	if until < time.Second {
		return time.Second
	}
	if until > c.refreshEvery {
		return c.refreshEvery
	}
	return until
}
