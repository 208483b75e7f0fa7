package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodieland/foodieland-api/internal/ratelimit"
)

func whoAmI(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.String(http.StatusOK, "anonymous")
	}
	return c.String(http.StatusOK, user.Name)
}

func serve(e *echo.Echo, method, path string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	auth := newFakeAuth()
	memberWithToken(auth, "good")
	e := echo.New()
	e.GET("/me", whoAmI, RequireAuth(auth))

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"unknown token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer good", http.StatusOK},
		{"scheme is case insensitive", "bearer good", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(e, http.MethodGet, "/me", echo.HeaderAuthorization, tc.header)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestOptionalAuthIgnoresBadTokens(t *testing.T) {
	auth := newFakeAuth()
	memberWithToken(auth, "good")
	e := echo.New()
	e.GET("/me", whoAmI, OptionalAuth(auth))

	rec := serve(e, http.MethodGet, "/me", echo.HeaderAuthorization, "Bearer nope")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())

	rec = serve(e, http.MethodGet, "/me", echo.HeaderAuthorization, "Bearer good")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Member", rec.Body.String())
}

func TestRequireAdmin(t *testing.T) {
	auth := newFakeAuth()
	memberWithToken(auth, "member")
	adminWithToken(auth, "admin")
	e := echo.New()
	e.GET("/admin", whoAmI, RequireAuth(auth), RequireAdmin())

	assert.Equal(t, http.StatusForbidden, serve(e, http.MethodGet, "/admin", echo.HeaderAuthorization, "Bearer member").Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/admin", echo.HeaderAuthorization, "Bearer admin").Code)
}

func TestRateLimitRunsBeforeHandler(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(),
		ratelimit.WithMaxAttempts(2),
		ratelimit.WithWindow(time.Minute),
		ratelimit.WithClock(func() time.Time { return now }),
	)
	calls := 0
	e := echo.New()
	e.POST("/login", func(c echo.Context) error {
		calls++
		return c.NoContent(http.StatusNoContent)
	}, RateLimit(limiter, ratelimit.ActionLogin, nil))

	assert.Equal(t, http.StatusNoContent, serve(e, http.MethodPost, "/login").Code)
	assert.Equal(t, http.StatusNoContent, serve(e, http.MethodPost, "/login").Code)

	rec := serve(e, http.MethodPost, "/login")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get(echo.HeaderRetryAfter))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, 2, calls)

	now = now.Add(61 * time.Second)
	assert.Equal(t, http.StatusNoContent, serve(e, http.MethodPost, "/login").Code)
	assert.Equal(t, 3, calls)
}
