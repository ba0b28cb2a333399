package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/webfolio/webfolio/internal/client/api"
	"github.com/webfolio/webfolio/internal/client/models"
	"github.com/webfolio/webfolio/internal/client/store"
)

// ErrNotOwner is returned when a profile edit targets a username other than
// the authenticated user's. Detected client-side, before any network call.
var ErrNotOwner = errors.New("cannot edit another user's profile")

// ProfileService reads and edits user profiles.
type ProfileService interface {
	// Get fetches the full user record; requires authentication.
	Get(ctx context.Context, username string) (*models.User, error)

	// Update applies a partial profile edit and refreshes the cached user
	// record. Only the authenticated user's own profile may be edited.
	Update(ctx context.Context, username string, form models.ProfileForm) (*models.User, error)

	// Public fetches the unauthenticated landing-page profile. An empty
	// username falls back to the configured default.
	Public(ctx context.Context, username string) (*models.PublicProfile, error)
}

type profileService struct {
	api             *api.Client
	store           store.Store
	defaultUsername string
}

// NewProfileService constructs a ProfileService. defaultUsername is served
// by Public when no username is supplied.
func NewProfileService(c *api.Client, st store.Store, defaultUsername string) ProfileService {
	return &profileService{api: c, store: st, defaultUsername: defaultUsername}
}

func (p *profileService) Get(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	path := "/users/" + url.PathEscape(username) + "/"
	if err := p.api.Do(ctx, http.MethodGet, path, nil, &user); err != nil {
		return nil, fmt.Errorf("failed to fetch user %s: %w", username, err)
	}
	return &user, nil
}

func (p *profileService) Update(ctx context.Context, username string, form models.ProfileForm) (*models.User, error) {
	owner, err := p.currentUsername(ctx)
	if err != nil {
		return nil, err
	}
	if owner == "" || owner != username {
		return nil, fmt.Errorf("%w: logged in as %q, editing %q", ErrNotOwner, owner, username)
	}

	var user models.User
	path := "/users/" + url.PathEscape(username) + "/"
	if err := p.api.Do(ctx, http.MethodPatch, path, form, &user); err != nil {
		return nil, fmt.Errorf("failed to update user %s: %w", username, err)
	}

	// Keep the cached record in step with the server's view.
	if userJSON, err := json.Marshal(user); err == nil {
		_ = p.store.Set(ctx, store.KeyUser, string(userJSON), p.api.StoreTTL())
	}
	return &user, nil
}

func (p *profileService) Public(ctx context.Context, username string) (*models.PublicProfile, error) {
	if username == "" {
		username = p.defaultUsername
	}
	var profile models.PublicProfile
	path := "/users/public/" + url.PathEscape(username) + "/"
	if err := p.api.DoAnon(ctx, http.MethodGet, path, nil, &profile); err != nil {
		return nil, fmt.Errorf("failed to fetch public profile %s: %w", username, err)
	}
	return &profile, nil
}

// currentUsername reads the cached user record; "" when logged out.
func (p *profileService) currentUsername(ctx context.Context) (string, error) {
	raw, ok, err := p.store.Get(ctx, store.KeyUser)
	if err != nil {
		return "", fmt.Errorf("failed to read cached user: %w", err)
	}
	if !ok {
		return "", nil
	}
	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return "", fmt.Errorf("corrupt cached user record: %w", err)
	}
	return user.Username, nil
}
