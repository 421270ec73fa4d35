// Package middleware resolves the caller's identity for every request and
// gates protected routes. Two chains exist: the web surface trusts only the
// session cookie, the API tries bearer token, then basic auth, then the
// legacy ?token= parameter. Both produce the same auth.Identity, and the
// authorization rules never see which chain ran.
package middleware

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"

	"github.com/jjpaste/jjbin/auth"
	"github.com/jjpaste/jjbin/models"
	"github.com/jjpaste/jjbin/store"
)

const (
	identityKey    = "identity"
	credentialsKey = "credentials_presented"

	// SessionName is the cookie holding the web login session.
	SessionName    = "jjbin_session"
	sessionUserKey = "user_id"
)

// GetIdentity returns the Identity resolved for this request, or Anonymous
// if no identity middleware ran.
func GetIdentity(c echo.Context) auth.Identity {
	if id, ok := c.Get(identityKey).(auth.Identity); ok {
		return id
	}
	return auth.Anonymous()
}

// Sessions manages the signed web session cookie.
type Sessions struct {
	store sessions.Store
}

// NewSessions builds a cookie-backed session store signed with key.
func NewSessions(key []byte, secure bool) *Sessions {
	cs := sessions.NewCookieStore(key)
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Sessions{store: cs}
}

// Login records userID in the session cookie.
func (s *Sessions) Login(c echo.Context, userID int) error {
	sess, _ := s.store.Get(c.Request(), SessionName)
	sess.Values[sessionUserKey] = userID
	return sess.Save(c.Request(), c.Response())
}

// Logout unconditionally clears the session.
func (s *Sessions) Logout(c echo.Context) error {
	sess, _ := s.store.Get(c.Request(), SessionName)
	delete(sess.Values, sessionUserKey)
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// WebIdentity resolves the caller from the session cookie. A missing or
// invalid session means Anonymous; the web surface never falls through to
// the token mechanisms.
func (s *Sessions) WebIdentity(users store.UserStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(identityKey, auth.Anonymous())

			sess, err := s.store.Get(c.Request(), SessionName)
			if err == nil {
				if userID, ok := sess.Values[sessionUserKey].(int); ok {
					if u, err := users.ByID(c.Request().Context(), userID); err == nil {
						c.Set(identityKey, auth.Authenticated(u))
					}
				}
			}
			return next(c)
		}
	}
}

// APIIdentity resolves the caller from API credentials. Mechanisms are tried
// in fixed order and resolution stops at the first success; any failure falls
// through, ending at Anonymous. Endpoints that require a user stack
// RequireUser on top.
func APIIdentity(users store.UserStore, secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, presented := resolveAPI(c, users, secret)
			c.Set(identityKey, id)
			c.Set(credentialsKey, presented)
			return next(c)
		}
	}
}

func resolveAPI(c echo.Context, users store.UserStore, secret string) (auth.Identity, bool) {
	var token string
	presented := false

	if hdr := c.Request().Header.Get("Authorization"); hdr != "" {
		presented = true
		switch {
		case strings.HasPrefix(hdr, "Bearer "):
			token = strings.TrimPrefix(hdr, "Bearer ")
		case strings.HasPrefix(hdr, "Basic "):
			if u := userFromBasic(c, users, strings.TrimPrefix(hdr, "Basic ")); u != nil {
				return auth.Authenticated(u), true
			}
		}
	}

	// Legacy clients pass the same token as a query parameter.
	if token == "" {
		if qt := c.QueryParam("token"); qt != "" {
			presented = true
			token = qt
		}
	}

	if token != "" {
		if u := userFromToken(c, users, token, secret); u != nil {
			return auth.Authenticated(u), presented
		}
	}
	return auth.Anonymous(), presented
}

func userFromToken(c echo.Context, users store.UserStore, token, secret string) *models.User {
	username, tokenSecret, err := auth.DecodeToken(token)
	if err != nil {
		return nil
	}
	// The token carries the installation secret, not a per-user credential,
	// so any holder of the secret can name any username.
	if tokenSecret != secret {
		return nil
	}
	u, err := users.ByUsername(c.Request().Context(), username)
	if err != nil {
		return nil
	}
	return u
}

func userFromBasic(c echo.Context, users store.UserStore, payload string) *models.User {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil
	}
	username, password, ok := strings.Cut(string(raw), ":")
	if !ok {
		return nil
	}
	u, ok := store.Authenticate(c.Request().Context(), users, username, password)
	if !ok {
		return nil
	}
	return u
}

// RequireUser rejects anonymous callers with 401. The message distinguishes
// absent credentials from presented-but-invalid ones, matching what API
// clients already expect.
func RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if GetIdentity(c).IsAuthenticated() {
				return next(c)
			}
			if presented, _ := c.Get(credentialsKey).(bool); presented {
				return echo.NewHTTPError(http.StatusUnauthorized, "Token is invalid")
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "Token is missing")
		}
	}
}

// RequireSuperuser rejects non-superusers with 403. It assumes RequireUser
// already ran.
func RequireSuperuser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := GetIdentity(c)
			if !id.IsAuthenticated() || !id.User().IsSuperuser {
				return echo.NewHTTPError(http.StatusForbidden, "Admin privileges required")
			}
			return next(c)
		}
	}
}
