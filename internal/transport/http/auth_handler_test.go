package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/foodieland/foodieland-api/internal/ratelimit"
	"github.com/foodieland/foodieland-api/internal/service"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestRegisterCreatesAccount(t *testing.T) {
	auth := newFakeAuth()
	e := newAuthAPI(t, auth, &fakeResets{})

	rec := doJSON(t, e, http.MethodPost, "/api/register",
		`{"name":"Jane","email":"a@x.com","password":"secret123","password_confirmation":"secret123"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "Registration successful. An OTP has been sent to your email.", body["message"])
	assert.Contains(t, body, "user")
	require.Len(t, auth.registered, 1)
	assert.Equal(t, "a@x.com", auth.registered[0].Email)
}

func TestRegisterRejectsInvalidPayload(t *testing.T) {
	cases := map[string]string{
		"missing name":          `{"email":"a@x.com","password":"secret123"}`,
		"bad email":             `{"name":"Jane","email":"nope","password":"secret123"}`,
		"short password":        `{"name":"Jane","email":"a@x.com","password":"short"}`,
		"confirmation mismatch": `{"name":"Jane","email":"a@x.com","password":"secret123","password_confirmation":"other"}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			auth := newFakeAuth()
			e := newAuthAPI(t, auth, &fakeResets{})

			rec := doJSON(t, e, http.MethodPost, "/api/register", payload)

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Equal(t, "error", decodeBody(t, rec)["status"])
			assert.Empty(t, auth.registered)
		})
	}
}

func TestRegisterErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"email taken", service.ErrEmailTaken, http.StatusUnprocessableEntity},
		{"send failure", service.ErrSendFailure, http.StatusInternalServerError},
		{"unexpected", errBoom, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			auth := newFakeAuth()
			auth.registerErr = tc.err
			e := newAuthAPI(t, auth, &fakeResets{})

			rec := doJSON(t, e, http.MethodPost, "/api/register", `{"name":"Jane","email":"a@x.com","password":"secret123"}`)

			assert.Equal(t, tc.status, rec.Code)
			assert.NotContains(t, rec.Body.String(), "boom")
		})
	}
}

func TestVerifyOTPReturnsBearerToken(t *testing.T) {
	auth := newFakeAuth()
	auth.verifyResult = sampleResult()
	e := newAuthAPI(t, auth, &fakeResets{})

	rec := doJSON(t, e, http.MethodPost, "/api/verify-otp", `{"email":"jane@example.com","otp":"123456"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "issued-token", body["access_token"])
	assert.Equal(t, "Bearer", body["token_type"])
	assert.Equal(t, "2026-01-02T03:04:05Z", body["expires_at"])
}

func TestVerifyOTPErrorMapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"unknown email", service.ErrUserNotFound, http.StatusNotFound, "User not found."},
		{"wrong code", service.ErrInvalidChallenge, http.StatusBadRequest, invalidCodeMessage},
		{"expired code", service.ErrChallengeExpired, http.StatusBadRequest, "OTP has expired. Please request a new one."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			auth := newFakeAuth()
			auth.verifyErr = tc.err
			e := newAuthAPI(t, auth, &fakeResets{})

			rec := doJSON(t, e, http.MethodPost, "/api/verify-otp", `{"email":"jane@example.com","otp":"123456"}`)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.message, decodeBody(t, rec)["message"])
		})
	}
}

func TestVerifyOTPRequiresSixDigits(t *testing.T) {
	auth := newFakeAuth()
	e := newAuthAPI(t, auth, &fakeResets{})

	rec := doJSON(t, e, http.MethodPost, "/api/verify-otp", `{"email":"jane@example.com","otp":"12a"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Zero(t, auth.verifyCalls)
}

func TestResendOTPErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"unknown email", service.ErrUserNotFound, http.StatusBadRequest},
		{"already verified", service.ErrAlreadyVerified, http.StatusBadRequest},
		{"cooldown", service.ErrCooldownActive, http.StatusTooManyRequests},
		{"send failure", service.ErrSendFailure, http.StatusInternalServerError},
		{"ok", nil, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			auth := newFakeAuth()
			auth.resendErr = tc.err
			e := newAuthAPI(t, auth, &fakeResets{})

			rec := doJSON(t, e, http.MethodPost, "/api/resend-otp", `{"email":"jane@example.com"}`)

			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestLoginErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"bad credentials", service.ErrInvalidCredentials, http.StatusUnprocessableEntity},
		{"unverified", service.ErrEmailNotVerified, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			auth := newFakeAuth()
			auth.loginErr = tc.err
			e := newAuthAPI(t, auth, &fakeResets{})

			rec := doJSON(t, e, http.MethodPost, "/api/login", `{"email":"jane@example.com","password":"secret123"}`)

			assert.Equal(t, tc.status, rec.Code)
			assert.NotContains(t, decodeBody(t, rec), "access_token")
		})
	}
}

func TestLoginRateLimitedOnSixthAttempt(t *testing.T) {
	auth := newFakeAuth()
	auth.loginResult = sampleResult()
	e := newAuthAPI(t, auth, &fakeResets{})

	for i := 0; i < ratelimit.DefaultMaxAttempts; i++ {
		rec := doJSON(t, e, http.MethodPost, "/api/login", `{"email":"jane@example.com","password":"secret123"}`)
		require.Equal(t, http.StatusOK, rec.Code, "attempt %d", i+1)
	}

	rec := doJSON(t, e, http.MethodPost, "/api/login", `{"email":"jane@example.com","password":"secret123"}`)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderRetryAfter))
	assert.Equal(t, ratelimit.DefaultMaxAttempts, auth.loginCalls)
}

func TestRateLimitIsPerClientIP(t *testing.T) {
	auth := newFakeAuth()
	auth.loginErr = service.ErrInvalidCredentials
	auth.verifyErr = service.ErrInvalidChallenge
	e := newAuthAPI(t, auth, &fakeResets{})

	for i := 0; i < ratelimit.DefaultMaxAttempts+1; i++ {
		doJSONFrom(t, e, "10.0.0.1:1234", http.MethodPost, "/api/login", `{"email":"jane@example.com","password":"wrong"}`)
	}

	rec := doJSONFrom(t, e, "10.0.0.2:1234", http.MethodPost, "/api/login", `{"email":"jane@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSONFrom(t, e, "10.0.0.1:1234", http.MethodPost, "/api/verify-otp", `{"email":"jane@example.com","otp":"123456"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "actions are counted separately")
}

func TestRateLimitIgnoresSpoofedForwardingHeaders(t *testing.T) {
	auth := newFakeAuth()
	auth.loginErr = service.ErrInvalidCredentials
	e := newAuthAPI(t, auth, &fakeResets{})

	for i := 0; i < ratelimit.DefaultMaxAttempts; i++ {
		rec := doJSONFrom(t, e, "203.0.113.7:4000", http.MethodPost, "/api/login", `{"email":"jane@example.com","password":"wrong"}`,
			echo.HeaderXForwardedFor, fmt.Sprintf("198.51.100.%d", i+1),
			echo.HeaderXRealIP, fmt.Sprintf("198.51.100.%d", i+1))
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code, "attempt %d", i+1)
	}

	rec := doJSONFrom(t, e, "203.0.113.7:4000", http.MethodPost, "/api/login", `{"email":"jane@example.com","password":"wrong"}`,
		echo.HeaderXForwardedFor, "198.51.100.99")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRateLimitBehindTrustedProxy(t *testing.T) {
	auth := newFakeAuth()
	auth.loginErr = service.ErrInvalidCredentials
	e := newAuthAPI(t, auth, &fakeResets{})
	require.NoError(t, TrustProxies(e, []string{"10.1.0.0/16"}))

	for i := 0; i < ratelimit.DefaultMaxAttempts; i++ {
		doJSONFrom(t, e, "10.1.0.5:4000", http.MethodPost, "/api/login", `{"email":"jane@example.com","password":"wrong"}`,
			echo.HeaderXForwardedFor, "198.51.100.1")
	}
	rec := doJSONFrom(t, e, "10.1.0.5:4000", http.MethodPost, "/api/login", `{"email":"jane@example.com","password":"wrong"}`,
		echo.HeaderXForwardedFor, "198.51.100.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = doJSONFrom(t, e, "10.1.0.5:4000", http.MethodPost, "/api/login", `{"email":"jane@example.com","password":"wrong"}`,
		echo.HeaderXForwardedFor, "198.51.100.2")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "each forwarded client has its own budget")

	// An untrusted peer cannot pick its own key.
	rec = doJSONFrom(t, e, "203.0.113.9:4000", http.MethodPost, "/api/login", `{"email":"jane@example.com","password":"wrong"}`,
		echo.HeaderXForwardedFor, "198.51.100.3")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestTrustProxiesRejectsBadCIDR(t *testing.T) {
	e := NewRouter([]string{"*"}, zap.NewNop())
	assert.Error(t, TrustProxies(e, []string{"not-a-cidr"}))
}

func TestGoogleLogin(t *testing.T) {
	auth := newFakeAuth()
	auth.googleErr = service.ErrGoogleLoginDisabled
	e := newAuthAPI(t, auth, &fakeResets{})

	rec := doJSON(t, e, http.MethodPost, "/api/auth/google", `{"id_token":"abc"}`)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)

	auth.googleErr = nil
	auth.googleResult = sampleResult()
	rec = doJSON(t, e, http.MethodPost, "/api/auth/google", `{"id_token":"abc"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bearer", decodeBody(t, rec)["token_type"])
}

func TestLogoutRevokesPresentedToken(t *testing.T) {
	auth := newFakeAuth()
	memberWithToken(auth, "token-a")
	memberWithToken(auth, "token-b")
	e := newAuthAPI(t, auth, &fakeResets{})

	rec := doJSON(t, e, http.MethodPost, "/api/logout", ``, echo.HeaderAuthorization, "Bearer token-a")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"token-a"}, auth.loggedOut)
}

func TestLogoutRequiresToken(t *testing.T) {
	auth := newFakeAuth()
	e := newAuthAPI(t, auth, &fakeResets{})

	rec := doJSON(t, e, http.MethodPost, "/api/logout", ``)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, auth.loggedOut)
}

func TestForgotPasswordErrorMapping(t *testing.T) {
	resets := &fakeResets{requestErr: service.ErrUserNotFound}
	e := newAuthAPI(t, newFakeAuth(), resets)

	rec := doJSON(t, e, http.MethodPost, "/api/forgot-password", `{"email":"ghost@example.com"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	resets.requestErr = service.ErrCooldownActive
	rec = doJSON(t, e, http.MethodPost, "/api/forgot-password", `{"email":"jane@example.com"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	resets.requestErr = nil
	rec = doJSON(t, e, http.MethodPost, "/api/forgot-password", `{"email":"jane@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OTP has been sent to your email.", decodeBody(t, rec)["message"])
}

func TestResetPassword(t *testing.T) {
	resets := &fakeResets{confirmErr: service.ErrInvalidChallenge}
	e := newAuthAPI(t, newFakeAuth(), resets)
	payload := `{"email":"jane@example.com","otp":"123456","password":"newsecret45","password_confirmation":"newsecret45"}`

	rec := doJSON(t, e, http.MethodPost, "/api/reset-password", payload)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, invalidCodeMessage, decodeBody(t, rec)["message"])

	resets.confirmErr = nil
	rec = doJSON(t, e, http.MethodPost, "/api/reset-password", payload)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Password has been reset successfully.", decodeBody(t, rec)["message"])
}
