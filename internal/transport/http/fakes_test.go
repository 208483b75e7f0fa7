package http

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/foodieland/foodieland-api/internal/domain"
	"github.com/foodieland/foodieland-api/internal/ratelimit"
	"github.com/foodieland/foodieland-api/internal/service"
)

type fakeAuth struct {
	tokens map[string]*domain.User

	registered  []service.RegisterInput
	registerErr error

	verifyCalls  int
	verifyResult *service.AuthResult
	verifyErr    error

	resendErr error

	loginCalls  int
	loginResult *service.AuthResult
	loginErr    error

	googleResult *service.AuthResult
	googleErr    error

	loggedOut []string
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{tokens: map[string]*domain.User{}}
}

func (f *fakeAuth) Authenticate(_ context.Context, token string) (*domain.User, error) {
	if user, ok := f.tokens[token]; ok {
		return user, nil
	}
	return nil, service.ErrInvalidToken
}

func (f *fakeAuth) Register(_ context.Context, input service.RegisterInput) (*domain.User, error) {
	f.registered = append(f.registered, input)
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &domain.User{ID: uuid.New(), Name: input.Name, Email: input.Email}, nil
}

func (f *fakeAuth) VerifyOTP(context.Context, string, string) (*service.AuthResult, error) {
	f.verifyCalls++
	return f.verifyResult, f.verifyErr
}

func (f *fakeAuth) ResendOTP(context.Context, string) error {
	return f.resendErr
}

func (f *fakeAuth) Login(context.Context, string, string) (*service.AuthResult, error) {
	f.loginCalls++
	return f.loginResult, f.loginErr
}

func (f *fakeAuth) LoginWithGoogle(context.Context, string) (*service.AuthResult, error) {
	return f.googleResult, f.googleErr
}

func (f *fakeAuth) Logout(_ context.Context, token string) error {
	f.loggedOut = append(f.loggedOut, token)
	return nil
}

type fakeResets struct {
	requested  []string
	requestErr error
	confirmErr error
	confirmed  []string
}

func (f *fakeResets) RequestReset(_ context.Context, email string) error {
	f.requested = append(f.requested, email)
	return f.requestErr
}

func (f *fakeResets) ConfirmReset(_ context.Context, email, _, _, _ string) error {
	f.confirmed = append(f.confirmed, email)
	return f.confirmErr
}

func sampleResult() *service.AuthResult {
	return &service.AuthResult{
		Token:     "issued-token",
		ExpiresAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		User:      &domain.User{ID: uuid.New(), Name: "Jane", Email: "jane@example.com"},
	}
}

var errBoom = errors.New("boom")

func newAuthAPI(t *testing.T, auth *fakeAuth, resets *fakeResets) *echo.Echo {
	t.Helper()
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore())
	e := NewRouter([]string{"*"}, zap.NewNop())
	RegisterAuth(e.Group("/api"), auth, resets, limiter, zap.NewNop())
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	return doJSONFrom(t, e, "192.0.2.1:1234", method, path, body, headers...)
}

// doJSONFrom is doJSON with an explicit peer address.
func doJSONFrom(t *testing.T, e *echo.Echo, remoteAddr, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.RemoteAddr = remoteAddr
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	require.Zero(t, len(headers)%2, "headers must be key/value pairs")
	for i := 0; i < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func memberWithToken(auth *fakeAuth, token string) *domain.User {
	user := &domain.User{ID: uuid.New(), Name: "Member", Email: "member@example.com", Roles: []domain.Role{{Name: domain.RoleUser}}}
	auth.tokens[token] = user
	return user
}

func adminWithToken(auth *fakeAuth, token string) *domain.User {
	user := &domain.User{ID: uuid.New(), Name: "Admin", Email: "admin@example.com", Roles: []domain.Role{{Name: domain.RoleAdmin}}}
	auth.tokens[token] = user
	return user
}
