package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/webfolio/webfolio/internal/client/api"
	"github.com/webfolio/webfolio/internal/client/models"
	"github.com/webfolio/webfolio/internal/client/store"
	"github.com/webfolio/webfolio/internal/logging"
	"github.com/webfolio/webfolio/internal/validate"
)

// Digest of "Sup3r$ecret1" under the MD5-then-SHA256 transport hash.
const superSecretDigest = "59dec944cd50c4852ed1819d29358e241f95b9050ef2f3f581aae057a8380e1b"

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type recordedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]any
}

// recordingServer captures every request and replies from the queue of
// responses configured per path.
type recordingServer struct {
	srv      *httptest.Server
	requests []recordedRequest
	handler  func(w http.ResponseWriter, r *http.Request)
}

func newRecordingServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *recordingServer {
	t.Helper()
	rs := &recordingServer{handler: handler}
	rs.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		rs.requests = append(rs.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Auth:   r.Header.Get("Authorization"),
			Body:   body,
		})
		rs.handler(w, r)
	}))
	t.Cleanup(rs.srv.Close)
	return rs
}

func newAuthService(t *testing.T, rs *recordingServer, st store.Store) AuthService {
	t.Helper()
	c := api.New(rs.srv.URL, st, testLogger())
	return NewAuthService(c, st, testLogger())
}

func TestLogin_StoresTripleAndPostsDigest(t *testing.T) {
	ctx := context.Background()
	rs := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/login/", r.URL.Path)
		w.Write([]byte(`{"access":"a1","refresh":"r1","user":{"id":1,"username":"alice","email":"alice@example.com"}}`))
	})
	st := store.NewMemoryStore()
	svc := newAuthService(t, rs, st)

	result, err := svc.Login(ctx, "alice", "Sup3r$ecret1")
	require.NoError(t, err)
	require.Equal(t, "alice", result.User.Username)

	require.Len(t, rs.requests, 1)
	require.Equal(t, "alice", rs.requests[0].Body["username_or_email"])
	require.Equal(t, superSecretDigest, rs.requests[0].Body["password"])

	access, _, _ := st.Get(ctx, store.KeyAccessToken)
	refresh, _, _ := st.Get(ctx, store.KeyRefreshToken)
	userRaw, _, _ := st.Get(ctx, store.KeyUser)
	require.Equal(t, "a1", access)
	require.Equal(t, "r1", refresh)

	var cached models.User
	require.NoError(t, json.Unmarshal([]byte(userRaw), &cached))
	require.Equal(t, "alice", cached.Username)
}

func TestLogin_FailureCarriesStatusAndMessage(t *testing.T) {
	rs := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"No active account found with the given credentials"}`))
	})
	st := store.NewMemoryStore()
	svc := newAuthService(t, rs, st)

	_, err := svc.Login(context.Background(), "alice", "wrong")
	apiErr, ok := api.AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, "No active account found with the given credentials", apiErr.Message)
}

func TestLogin_UnparseableBodyGetsGenericMessage(t *testing.T) {
	rs := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html>upstream exploded</html>`))
	})
	st := store.NewMemoryStore()
	svc := newAuthService(t, rs, st)

	_, err := svc.Login(context.Background(), "alice", "Sup3r$ecret1")
	apiErr, ok := api.AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, "Login failed", apiErr.Message)
}

func validPayload() RegisterPayload {
	return RegisterPayload{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "Sup3r$ecret1",
		Profile:  models.Profile{IsAvailable: true, Name: "Bob"},
	}
}

func TestRegister_TokenBearingResponse(t *testing.T) {
	ctx := context.Background()
	rs := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/", r.URL.Path)
		w.Write([]byte(`{"access":"a1","refresh":"r1","user":{"id":7,"username":"bob"}}`))
	})
	st := store.NewMemoryStore()
	svc := newAuthService(t, rs, st)

	result, err := svc.Register(ctx, validPayload())
	require.NoError(t, err)
	require.Equal(t, "bob", result.User.Username)

	// One round trip only; no auto-login needed.
	require.Len(t, rs.requests, 1)
	require.Equal(t, superSecretDigest, rs.requests[0].Body["password"])

	access, _, _ := st.Get(ctx, store.KeyAccessToken)
	require.Equal(t, "a1", access)
}

func TestRegister_BareUserTriggersAutoLogin(t *testing.T) {
	ctx := context.Background()
	rs := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/":
			w.Write([]byte(`{"id":7,"username":"bob"}`))
		case "/login/":
			w.Write([]byte(`{"access":"a1","refresh":"r1","user":{"id":7,"username":"bob"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	st := store.NewMemoryStore()
	svc := newAuthService(t, rs, st)

	result, err := svc.Register(ctx, validPayload())
	require.NoError(t, err)
	require.Equal(t, "bob", result.User.Username)

	require.Len(t, rs.requests, 2)
	require.Equal(t, "/users/", rs.requests[0].Path)
	require.Equal(t, "/login/", rs.requests[1].Path)
	// Auto-login re-hashes the original plaintext, not the digest.
	require.Equal(t, "bob", rs.requests[1].Body["username_or_email"])
	require.Equal(t, superSecretDigest, rs.requests[1].Body["password"])

	access, _, _ := st.Get(ctx, store.KeyAccessToken)
	require.Equal(t, "a1", access)
}

func TestRegister_AutoLoginFailureDirectsToManualLogin(t *testing.T) {
	rs := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/":
			w.Write([]byte(`{"id":7,"username":"bob"}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail":"nope"}`))
		}
	})
	st := store.NewMemoryStore()
	svc := newAuthService(t, rs, st)

	_, err := svc.Register(context.Background(), validPayload())
	require.ErrorIs(t, err, ErrManualLoginRequired)

	// Final state is anonymous.
	for _, key := range store.Keys {
		_, ok, _ := st.Get(context.Background(), key)
		require.False(t, ok)
	}
}

func TestRegister_InvalidPasswordSkipsNetwork(t *testing.T) {
	rs := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no network call expected for an invalid password")
	})
	st := store.NewMemoryStore()
	svc := newAuthService(t, rs, st)

	payload := validPayload()
	payload.Password = "short1!"
	_, err := svc.Register(context.Background(), payload)
	require.ErrorIs(t, err, validate.ErrPasswordTooShort)
	require.Empty(t, rs.requests)
}

func TestLogout_PostsRefreshAndClears(t *testing.T) {
	ctx := context.Background()
	rs := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/logout/", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})
	st := store.NewMemoryStore()
	require.NoError(t, st.SaveAuth(ctx, "a1", "r1", `{"username":"alice"}`, time.Hour))
	svc := newAuthService(t, rs, st)

	require.NoError(t, svc.Logout(ctx))

	require.Len(t, rs.requests, 1)
	require.Equal(t, "r1", rs.requests[0].Body["refresh"])
	require.Equal(t, "Bearer a1", rs.requests[0].Auth)

	for _, key := range store.Keys {
		_, ok, _ := st.Get(ctx, key)
		require.False(t, ok)
	}
}

func TestLogout_NetworkFailureStillClears(t *testing.T) {
	ctx := context.Background()
	rs := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	st := store.NewMemoryStore()
	require.NoError(t, st.SaveAuth(ctx, "a1", "r1", `{"username":"alice"}`, time.Hour))
	svc := newAuthService(t, rs, st)

	err := svc.Logout(ctx)
	require.Error(t, err)

	for _, key := range store.Keys {
		_, ok, _ := st.Get(ctx, key)
		require.False(t, ok, "key %s must be cleared even when the logout call fails", key)
	}
}

func TestLogout_Idempotent(t *testing.T) {
	ctx := context.Background()
	rs := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	st := store.NewMemoryStore()
	require.NoError(t, st.SaveAuth(ctx, "a1", "r1", `{"username":"alice"}`, time.Hour))
	svc := newAuthService(t, rs, st)

	require.NoError(t, svc.Logout(ctx))
	require.NoError(t, svc.Logout(ctx))

	// Only the first logout reaches the network; the second short-circuits
	// on the missing refresh token.
	require.Len(t, rs.requests, 1)
}

func TestSessions_DecodeAndSelectors(t *testing.T) {
	ctx := context.Background()
	rs := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte(`[
				{"id":1,"session_key":"k1","is_active":true,"device_type":"desktop","created_at":"2026-08-30T10:00:00Z","last_activity":"2026-08-30T11:00:00Z","expires_at":"2026-09-30T10:00:00Z"},
				{"id":2,"session_key":"k2","is_active":false,"device_type":"mobile","created_at":"2026-08-01T10:00:00Z","last_activity":"2026-08-02T10:00:00Z","expires_at":"2026-09-01T10:00:00Z"}
			]`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	st := store.NewMemoryStore()
	require.NoError(t, st.SaveAuth(ctx, "a1", "r1", `{"username":"alice"}`, time.Hour))
	svc := newAuthService(t, rs, st)

	sessions, err := svc.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	require.True(t, sessions[0].IsActive)
	require.True(t, models.HasActive(sessions))

	require.NoError(t, svc.DeleteSession(ctx, 2))
	require.NoError(t, svc.DeleteAllOtherSessions(ctx))

	require.Len(t, rs.requests, 3)
	require.Equal(t, http.MethodDelete, rs.requests[1].Method)
	require.EqualValues(t, 2, rs.requests[1].Body["session_id"])
	require.Equal(t, true, rs.requests[2].Body["all_except_current"])
}
