package services

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/webfolio/webfolio/internal/client/api"
	"github.com/webfolio/webfolio/internal/client/models"
	"github.com/webfolio/webfolio/internal/client/store"
)

func newProfileService(t *testing.T, rs *recordingServer, st store.Store) ProfileService {
	t.Helper()
	c := api.New(rs.srv.URL, st, testLogger())
	return NewProfileService(c, st, "defaultuser")
}

func TestProfileGet_Authenticated(t *testing.T) {
	ctx := context.Background()
	rs := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/alice/", r.URL.Path)
		w.Write([]byte(`{"id":1,"username":"alice","profile":{"is_available":true,"name":"Alice","social_links":{"github":"https://github.com/alice"}}}`))
	})
	st := store.NewMemoryStore()
	require.NoError(t, st.SaveAuth(ctx, "a1", "r1", `{"username":"alice"}`, time.Hour))
	svc := newProfileService(t, rs, st)

	user, err := svc.Get(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "Alice", user.Profile.Name)
	require.Equal(t, "https://github.com/alice", user.Profile.SocialLinks["github"])
	require.Equal(t, "Bearer a1", rs.requests[0].Auth)
}

func TestProfileUpdate_RejectsForeignProfile(t *testing.T) {
	ctx := context.Background()
	rs := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("ownership violations must not reach the network")
	})
	st := store.NewMemoryStore()
	require.NoError(t, st.SaveAuth(ctx, "a1", "r1", `{"username":"alice"}`, time.Hour))
	svc := newProfileService(t, rs, st)

	_, err := svc.Update(ctx, "bob", models.ProfileForm{})
	require.ErrorIs(t, err, ErrNotOwner)
	require.Empty(t, rs.requests)
}

func TestProfileUpdate_RejectedWhenAnonymous(t *testing.T) {
	rs := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("anonymous edits must not reach the network")
	})
	st := store.NewMemoryStore()
	svc := newProfileService(t, rs, st)

	_, err := svc.Update(context.Background(), "alice", models.ProfileForm{})
	require.ErrorIs(t, err, ErrNotOwner)
}

func TestProfileUpdate_PatchesAndRefreshesCache(t *testing.T) {
	ctx := context.Background()
	rs := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/users/alice/", r.URL.Path)
		w.Write([]byte(`{"id":1,"username":"alice","profile":{"is_available":false,"title":"Staff Engineer"}}`))
	})
	st := store.NewMemoryStore()
	require.NoError(t, st.SaveAuth(ctx, "a1", "r1", `{"id":1,"username":"alice"}`, time.Hour))
	svc := newProfileService(t, rs, st)

	title := "Staff Engineer"
	form := models.ProfileForm{Profile: &models.Profile{Title: title}}
	user, err := svc.Update(ctx, "alice", form)
	require.NoError(t, err)
	require.Equal(t, "Staff Engineer", user.Profile.Title)

	raw, ok, _ := st.Get(ctx, store.KeyUser)
	require.True(t, ok)
	var cached models.User
	require.NoError(t, json.Unmarshal([]byte(raw), &cached))
	require.Equal(t, "Staff Engineer", cached.Profile.Title)
}

func TestProfilePublic_DefaultUsernameFallback(t *testing.T) {
	rs := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/public/defaultuser/", r.URL.Path)
		require.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"username":"defaultuser","profile":{"is_available":true,"name":"Default"}}`))
	})
	st := store.NewMemoryStore()
	svc := newProfileService(t, rs, st)

	profile, err := svc.Public(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, "defaultuser", profile.Username)
}

func TestProfilePublic_NamedUser(t *testing.T) {
	rs := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/public/alice/", r.URL.Path)
		w.Write([]byte(`{"username":"alice","profile":{"is_available":true}}`))
	})
	st := store.NewMemoryStore()
	svc := newProfileService(t, rs, st)

	profile, err := svc.Public(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, "alice", profile.Username)
}
