package middleware

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authpkg "github.com/jjpaste/jjbin/auth"
	"github.com/jjpaste/jjbin/models"
	"github.com/jjpaste/jjbin/store"
)

const testSecret = "installation-secret"

func seedUser(t *testing.T, users store.UserStore, username, password string) *models.User {
	t.Helper()
	hash, err := authpkg.HashPassword(password)
	require.NoError(t, err)
	u := &models.User{Username: username, Email: username + "@x.com", PasswordHash: hash}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

// runAPI pushes a request through APIIdentity and returns the resolved
// identity.
func runAPI(t *testing.T, users store.UserStore, mutate func(*http.Request)) authpkg.Identity {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/pastes", nil)
	if mutate != nil {
		mutate(req)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var got authpkg.Identity
	h := APIIdentity(users, testSecret)(func(c echo.Context) error {
		got = GetIdentity(c)
		return nil
	})
	require.NoError(t, h(c))
	return got
}

func TestAPIIdentity_BearerToken(t *testing.T) {
	users := store.NewMemory().Users()
	seedUser(t, users, "alice", "pw1")

	id := runAPI(t, users, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+authpkg.EncodeToken("alice", testSecret))
	})
	require.True(t, id.IsAuthenticated())
	assert.Equal(t, "alice", id.User().Username)
}

func TestAPIIdentity_BearerWrongSecret(t *testing.T) {
	users := store.NewMemory().Users()
	seedUser(t, users, "alice", "pw1")

	id := runAPI(t, users, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+authpkg.EncodeToken("alice", "not-the-secret"))
	})
	assert.False(t, id.IsAuthenticated())
}

func TestAPIIdentity_BearerUnknownUser(t *testing.T) {
	users := store.NewMemory().Users()

	id := runAPI(t, users, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+authpkg.EncodeToken("ghost", testSecret))
	})
	assert.False(t, id.IsAuthenticated())
}

func TestAPIIdentity_BasicAuth(t *testing.T) {
	users := store.NewMemory().Users()
	seedUser(t, users, "alice", "pw1")

	id := runAPI(t, users, func(r *http.Request) {
		r.SetBasicAuth("alice", "pw1")
	})
	require.True(t, id.IsAuthenticated())
	assert.Equal(t, "alice", id.User().Username)
}

func TestAPIIdentity_BasicAuthWrongPassword(t *testing.T) {
	users := store.NewMemory().Users()
	seedUser(t, users, "alice", "pw1")

	id := runAPI(t, users, func(r *http.Request) {
		r.SetBasicAuth("alice", "wrongpass")
	})
	assert.False(t, id.IsAuthenticated())
}

func TestAPIIdentity_BasicAuthBadPayload(t *testing.T) {
	users := store.NewMemory().Users()

	id := runAPI(t, users, func(r *http.Request) {
		r.Header.Set("Authorization", "Basic !!!not-base64!!!")
	})
	assert.False(t, id.IsAuthenticated())

	id = runAPI(t, users, func(r *http.Request) {
		r.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("nocolon")))
	})
	assert.False(t, id.IsAuthenticated())
}

func TestAPIIdentity_QueryToken(t *testing.T) {
	users := store.NewMemory().Users()
	seedUser(t, users, "alice", "pw1")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/pastes?token="+authpkg.EncodeToken("alice", testSecret), nil)
	c := e.NewContext(req, httptest.NewRecorder())

	var got authpkg.Identity
	h := APIIdentity(users, testSecret)(func(c echo.Context) error {
		got = GetIdentity(c)
		return nil
	})
	require.NoError(t, h(c))
	require.True(t, got.IsAuthenticated())
	assert.Equal(t, "alice", got.User().Username)
}

func TestAPIIdentity_HeaderBeatsQueryToken(t *testing.T) {
	// A present-but-invalid Authorization header masks the query token; the
	// legacy parameter is only consulted when no header token was sent.
	users := store.NewMemory().Users()
	seedUser(t, users, "alice", "pw1")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/pastes?token="+authpkg.EncodeToken("alice", testSecret), nil)
	req.Header.Set("Authorization", "Bearer garbage")
	c := e.NewContext(req, httptest.NewRecorder())

	var got authpkg.Identity
	h := APIIdentity(users, testSecret)(func(c echo.Context) error {
		got = GetIdentity(c)
		return nil
	})
	require.NoError(t, h(c))
	assert.False(t, got.IsAuthenticated())
}

func TestRequireUser_Messages(t *testing.T) {
	users := store.NewMemory().Users()
	e := echo.New()

	run := func(mutate func(*http.Request)) error {
		req := httptest.NewRequest(http.MethodPost, "/api/pastes", nil)
		if mutate != nil {
			mutate(req)
		}
		c := e.NewContext(req, httptest.NewRecorder())
		chain := APIIdentity(users, testSecret)(RequireUser()(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		}))
		return chain(c)
	}

	err := run(nil)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	assert.Equal(t, "Token is missing", httpErr.Message)

	err = run(func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer garbage")
	})
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	assert.Equal(t, "Token is invalid", httpErr.Message)
}

func TestRequireSuperuser(t *testing.T) {
	users := store.NewMemory().Users()
	seedUser(t, users, "bob", "pw")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+authpkg.EncodeToken("bob", testSecret))
	c := e.NewContext(req, httptest.NewRecorder())

	chain := APIIdentity(users, testSecret)(RequireSuperuser()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}))
	err := chain(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)
}

func TestWebIdentity_SessionRoundTrip(t *testing.T) {
	users := store.NewMemory().Users()
	alice := seedUser(t, users, "alice", "pw1")
	sessions := NewSessions([]byte(testSecret), false)
	e := echo.New()

	// Log in: capture the session cookie.
	loginRec := httptest.NewRecorder()
	loginCtx := e.NewContext(httptest.NewRequest(http.MethodPost, "/login", nil), loginRec)
	require.NoError(t, sessions.Login(loginCtx, alice.ID))
	cookies := loginRec.Result().Cookies()
	require.NotEmpty(t, cookies)

	// Replay the cookie: identity resolves to alice.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var got authpkg.Identity
	h := sessions.WebIdentity(users)(func(c echo.Context) error {
		got = GetIdentity(c)
		return nil
	})
	require.NoError(t, h(c))
	require.True(t, got.IsAuthenticated())
	assert.Equal(t, "alice", got.User().Username)
}

func TestWebIdentity_NoCookieIsAnonymous(t *testing.T) {
	users := store.NewMemory().Users()
	sessions := NewSessions([]byte(testSecret), false)
	e := echo.New()

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	var got authpkg.Identity
	h := sessions.WebIdentity(users)(func(c echo.Context) error {
		got = GetIdentity(c)
		return nil
	})
	require.NoError(t, h(c))
	assert.False(t, got.IsAuthenticated())
}

func TestWebIdentity_TamperedCookieIsAnonymous(t *testing.T) {
	users := store.NewMemory().Users()
	seedUser(t, users, "alice", "pw1")
	sessions := NewSessions([]byte(testSecret), false)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionName, Value: "forged-nonsense"})
	c := e.NewContext(req, httptest.NewRecorder())

	var got authpkg.Identity
	h := sessions.WebIdentity(users)(func(c echo.Context) error {
		got = GetIdentity(c)
		return nil
	})
	require.NoError(t, h(c))
	assert.False(t, got.IsAuthenticated())
}
