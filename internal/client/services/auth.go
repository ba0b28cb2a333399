// Package services contains the application services built on the HTTP core:
// authentication (login, register, logout, refresh, sessions) and profile
// access.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/webfolio/webfolio/internal/client/api"
	"github.com/webfolio/webfolio/internal/client/models"
	"github.com/webfolio/webfolio/internal/client/store"
	"github.com/webfolio/webfolio/internal/hashx"
	"github.com/webfolio/webfolio/internal/logging"
	"github.com/webfolio/webfolio/internal/validate"
)

// ErrManualLoginRequired is returned when registration created the account
// but the automatic follow-up login failed; the caller should route the user
// to the login screen.
var ErrManualLoginRequired = errors.New("account created, please log in manually")

// RegisterPayload is the profile-bearing registration request.
type RegisterPayload struct {
	Username  string         `json:"username"`
	Email     string         `json:"email"`
	Password  string         `json:"password"`
	FirstName string         `json:"first_name,omitempty"`
	LastName  string         `json:"last_name,omitempty"`
	Profile   models.Profile `json:"profile"`
}

// AuthService defines the authentication operations exposed to the session
// controller and the CLI.
//
// Contract:
//   - Login/Register persist the token pair and user record on success.
//   - Refresh exchanges the stored refresh token for a new access token.
//   - Logout always ends with local auth state cleared, network or not.
//   - Sessions/DeleteSession/DeleteAllOtherSessions manage device sessions.
//
// All methods honor context cancellation/timeouts.
type AuthService interface {
	Login(ctx context.Context, identifier, password string) (*models.AuthResult, error)
	Register(ctx context.Context, payload RegisterPayload) (*models.AuthResult, error)
	Refresh(ctx context.Context) (string, error)
	Logout(ctx context.Context) error
	Sessions(ctx context.Context) ([]models.Session, error)
	DeleteSession(ctx context.Context, id int64) error
	DeleteAllOtherSessions(ctx context.Context) error
}

type authService struct {
	api   *api.Client
	store store.Store
	log   logging.Logger
}

// NewAuthService constructs an AuthService bound to the given HTTP core and
// credential store.
func NewAuthService(c *api.Client, st store.Store, log logging.Logger) AuthService {
	return &authService{api: c, store: st, log: log}
}

// Login hashes the password, posts the credentials and, on success, stores
// the token pair and user record as one atomic unit.
func (a *authService) Login(ctx context.Context, identifier, password string) (*models.AuthResult, error) {
	body := map[string]string{
		"username_or_email": identifier,
		"password":          hashx.Password(password),
	}

	var result models.AuthResult
	if err := a.api.DoAnon(ctx, http.MethodPost, "/login/", body, &result); err != nil {
		if apiErr, ok := api.AsAPIError(err); ok && apiErr.Message == http.StatusText(apiErr.Status) {
			apiErr.Message = "Login failed"
		}
		return nil, fmt.Errorf("login failed: %w", err)
	}

	if err := a.persistAuth(ctx, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Register validates and hashes the password, posts the profile-bearing
// payload and resolves the endpoint's inconsistent response contract:
// a token-bearing response is stored like a login; a bare-user response
// triggers an automatic login with the original plaintext password; if that
// also fails the caller gets ErrManualLoginRequired. The ordering of the
// three branches is part of the contract.
func (a *authService) Register(ctx context.Context, payload RegisterPayload) (*models.AuthResult, error) {
	if err := validate.Password(payload.Password); err != nil {
		return nil, err
	}

	plaintext := payload.Password
	payload.Password = hashx.Password(plaintext)

	var raw json.RawMessage
	if err := a.api.DoAnon(ctx, http.MethodPost, "/users/", payload, &raw); err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	outcome, err := models.DecodeRegisterOutcome(raw)
	if err == nil && outcome.Tokens != nil {
		if err := a.persistAuth(ctx, outcome.Tokens); err != nil {
			return nil, err
		}
		return outcome.Tokens, nil
	}

	// No usable tokens in the response (bare user or unrecognized 2xx body):
	// fall back to an immediate login with the just-used credentials.
	a.log.Warn(ctx, "registration response carried no tokens, attempting auto-login",
		"username", payload.Username)

	result, loginErr := a.Login(ctx, payload.Username, plaintext)
	if loginErr != nil {
		return nil, fmt.Errorf("%w: auto-login failed: %v", ErrManualLoginRequired, loginErr)
	}
	return result, nil
}

// Refresh mints a new access token from the stored refresh token. A failed
// refresh invalidates the local session before the error propagates.
func (a *authService) Refresh(ctx context.Context) (string, error) {
	return a.api.RefreshAccessToken(ctx)
}

// Logout revokes the current refresh token server-side when one is stored.
// Local auth state is cleared no matter how the network call goes; with no
// refresh token the call short-circuits to a local clear and reports
// success.
func (a *authService) Logout(ctx context.Context) error {
	refresh, ok, err := a.store.Get(ctx, store.KeyRefreshToken)
	if err != nil {
		return fmt.Errorf("failed to read refresh token: %w", err)
	}
	if !ok {
		return a.store.ClearAll(ctx)
	}

	defer func() {
		// Guaranteed clear: stale tokens must never outlive a logout.
		if cerr := a.store.ClearAll(context.WithoutCancel(ctx)); cerr != nil {
			a.log.Error(ctx, "failed to clear auth state on logout", "error", cerr)
		}
	}()

	if err := a.api.Do(ctx, http.MethodPost, "/logout/", map[string]string{"refresh": refresh}, nil); err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

// Sessions lists the server-tracked device sessions for the current user.
func (a *authService) Sessions(ctx context.Context) ([]models.Session, error) {
	var sessions []models.Session
	if err := a.api.Do(ctx, http.MethodGet, "/session/", nil, &sessions); err != nil {
		return nil, fmt.Errorf("failed to fetch sessions: %w", err)
	}
	return sessions, nil
}

// DeleteSession revokes one device session by id.
func (a *authService) DeleteSession(ctx context.Context, id int64) error {
	body := map[string]int64{"session_id": id}
	if err := a.api.Do(ctx, http.MethodDelete, "/session/", body, nil); err != nil {
		return fmt.Errorf("failed to delete session %d: %w", id, err)
	}
	return nil
}

// DeleteAllOtherSessions revokes every session except the current one.
func (a *authService) DeleteAllOtherSessions(ctx context.Context) error {
	body := map[string]bool{"all_except_current": true}
	if err := a.api.Do(ctx, http.MethodDelete, "/session/", body, nil); err != nil {
		return fmt.Errorf("failed to delete other sessions: %w", err)
	}
	return nil
}

// persistAuth writes the token pair and serialized user as one unit.
func (a *authService) persistAuth(ctx context.Context, result *models.AuthResult) error {
	userJSON, err := json.Marshal(result.User)
	if err != nil {
		return fmt.Errorf("failed to encode user record: %w", err)
	}
	if err := a.store.SaveAuth(ctx, result.Access, result.Refresh, string(userJSON), a.api.StoreTTL()); err != nil {
		return fmt.Errorf("failed to persist auth state: %w", err)
	}
	return nil
}
