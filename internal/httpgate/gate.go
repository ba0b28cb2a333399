// Package httpgate guards the web routes in front of the application: it
// redirects authenticated visitors away from the auth pages and anonymous
// visitors away from the dashboard. Tokens are read from cookies only; no
// validation happens here, the backend rejects stale tokens itself.
package httpgate

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/webfolio/webfolio/internal/client/store"
	"github.com/webfolio/webfolio/internal/logging"
)

// LoginErrorMessage is shown on the login page after an anonymous visitor is
// turned away from a protected path.
const LoginErrorMessage = "Please log in to continue"

func isPublicPath(path string) bool {
	return path == "/login" || path == "/register"
}

func isProtectedPath(path string) bool {
	return strings.HasPrefix(path, "/dashboard")
}

// Middleware returns a chi-compatible middleware enforcing the route rules:
//
//   - /login and /register with an access-token cookie redirect to the
//     visitor's dashboard.
//   - /dashboard/* without both token cookies redirects to /login with an
//     error message and a callbackUrl pointing back at the original path.
//
// Everything else passes through unchanged.
func Middleware(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path

			accessToken := cookieValue(r, store.KeyAccessToken)
			refreshToken := cookieValue(r, store.KeyRefreshToken)

			if isPublicPath(path) && accessToken != "" {
				username := usernameFromCookie(r)
				log.Debug(r.Context(), "redirecting authenticated visitor to dashboard", "path", path, "username", username)
				http.Redirect(w, r, "/dashboard/"+username, http.StatusTemporaryRedirect)
				return
			}

			if isProtectedPath(path) && accessToken == "" && refreshToken == "" {
				params := url.Values{}
				params.Set("error", LoginErrorMessage)
				params.Set("callbackUrl", path)
				log.Debug(r.Context(), "redirecting anonymous visitor to login", "path", path)
				http.Redirect(w, r, "/login?"+params.Encode(), http.StatusTemporaryRedirect)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func cookieValue(r *http.Request, key store.Key) string {
	c, err := r.Cookie(string(key))
	if err != nil {
		return ""
	}
	return c.Value
}

// usernameFromCookie extracts the username from the cached user cookie. A
// missing or corrupt cookie yields an empty username, matching a redirect to
// the bare /dashboard/ path.
func usernameFromCookie(r *http.Request) string {
	raw := cookieValue(r, store.KeyUser)
	if raw == "" {
		return ""
	}
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		decoded = raw
	}
	var user struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal([]byte(decoded), &user); err != nil {
		return ""
	}
	return user.Username
}
