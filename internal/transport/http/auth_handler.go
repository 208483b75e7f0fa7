package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/foodieland/foodieland-api/internal/domain"
	"github.com/foodieland/foodieland-api/internal/ratelimit"
	"github.com/foodieland/foodieland-api/internal/service"
	"github.com/foodieland/foodieland-api/internal/util"
)

const (
	invalidCodeMessage = "Invalid credentials or OTP."
	sendFailureMessage = "We could not send the verification email. Please try again."
)

type authUseCases interface {
	Authenticator
	Register(ctx context.Context, input service.RegisterInput) (*domain.User, error)
	VerifyOTP(ctx context.Context, email, code string) (*service.AuthResult, error)
	ResendOTP(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (*service.AuthResult, error)
	LoginWithGoogle(ctx context.Context, idToken string) (*service.AuthResult, error)
	Logout(ctx context.Context, token string) error
}

type passwordResetUseCases interface {
	RequestReset(ctx context.Context, email string) error
	ConfirmReset(ctx context.Context, email, code, password, confirmation string) error
}

type AuthHandler struct {
	auth   authUseCases
	resets passwordResetUseCases
	logger *zap.Logger
}

func RegisterAuth(api *echo.Group, auth authUseCases, resets passwordResetUseCases, limiter *ratelimit.Limiter, logger *zap.Logger) {
	h := &AuthHandler{auth: auth, resets: resets, logger: orNop(logger)}

	api.POST("/register", h.register)
	api.POST("/login", h.login, RateLimit(limiter, ratelimit.ActionLogin, logger))
	api.POST("/verify-otp", h.verifyOTP, RateLimit(limiter, ratelimit.ActionVerifyOTP, logger))
	api.POST("/resend-otp", h.resendOTP, RateLimit(limiter, ratelimit.ActionResendOTP, logger))
	api.POST("/forgot-password", h.forgotPassword, RateLimit(limiter, ratelimit.ActionForgotPassword, logger))
	api.POST("/reset-password", h.resetPassword, RateLimit(limiter, ratelimit.ActionResetPassword, logger))
	api.POST("/auth/google", h.googleLogin)
	api.POST("/logout", h.logout, RequireAuth(auth))
}

func (h *AuthHandler) register(c echo.Context) error {
	var req RegisterRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	user, err := h.auth.Register(c.Request().Context(), service.RegisterInput{
		Name:                 req.Name,
		Email:                req.Email,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSendFailure):
			return c.JSON(http.StatusInternalServerError, util.Error(sendFailureMessage))
		default:
			return respondError(c, h.logger, err)
		}
	}

	return c.JSON(http.StatusCreated, util.Success("Registration successful. An OTP has been sent to your email.").With("user", user))
}

func (h *AuthHandler) verifyOTP(c echo.Context) error {
	var req VerifyOTPRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	result, err := h.auth.VerifyOTP(c.Request().Context(), req.Email, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, util.Error("User not found."))
		case errors.Is(err, service.ErrInvalidChallenge):
			return c.JSON(http.StatusBadRequest, util.Error(invalidCodeMessage))
		case errors.Is(err, service.ErrChallengeExpired):
			return c.JSON(http.StatusBadRequest, util.Error("OTP has expired. Please request a new one."))
		default:
			return respondError(c, h.logger, err)
		}
	}

	return c.JSON(http.StatusOK, tokenEnvelope("Email verified successfully.", result))
}

func (h *AuthHandler) resendOTP(c echo.Context) error {
	var req EmailRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	if err := h.auth.ResendOTP(c.Request().Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return c.JSON(http.StatusBadRequest, util.Error("User not found."))
		case errors.Is(err, service.ErrAlreadyVerified):
			return c.JSON(http.StatusBadRequest, util.Error("Email is already verified."))
		case errors.Is(err, service.ErrCooldownActive):
			return c.JSON(http.StatusTooManyRequests, util.Error("Please wait before requesting a new OTP."))
		case errors.Is(err, service.ErrSendFailure):
			return c.JSON(http.StatusInternalServerError, util.Error(sendFailureMessage))
		default:
			return respondError(c, h.logger, err)
		}
	}

	return c.JSON(http.StatusOK, util.Success("A new OTP has been sent to your email."))
}

func (h *AuthHandler) login(c echo.Context) error {
	var req LoginRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	result, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return c.JSON(http.StatusUnprocessableEntity, util.Error("Invalid credentials."))
		case errors.Is(err, service.ErrEmailNotVerified):
			return c.JSON(http.StatusForbidden, util.Error("Please verify your email before logging in."))
		default:
			return respondError(c, h.logger, err)
		}
	}

	return c.JSON(http.StatusOK, tokenEnvelope("Login successful.", result))
}

func (h *AuthHandler) googleLogin(c echo.Context) error {
	var req GoogleLoginRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	result, err := h.auth.LoginWithGoogle(c.Request().Context(), req.IDToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGoogleLoginDisabled):
			return c.JSON(http.StatusNotImplemented, util.Error("Google login is not available."))
		case errors.Is(err, service.ErrInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, util.Error("Invalid Google credentials."))
		default:
			return respondError(c, h.logger, err)
		}
	}

	return c.JSON(http.StatusOK, tokenEnvelope("Login successful.", result))
}

func (h *AuthHandler) logout(c echo.Context) error {
	token, ok := CurrentToken(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("Unauthenticated."))
	}
	if err := h.auth.Logout(c.Request().Context(), token); err != nil {
		return internalError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, util.Success("Logged out successfully."))
}

func (h *AuthHandler) forgotPassword(c echo.Context) error {
	var req EmailRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	if err := h.resets.RequestReset(c.Request().Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, util.Error("User not found."))
		case errors.Is(err, service.ErrCooldownActive):
			return c.JSON(http.StatusTooManyRequests, util.Error("Please wait before requesting a new OTP."))
		case errors.Is(err, service.ErrSendFailure):
			return c.JSON(http.StatusInternalServerError, util.Error(sendFailureMessage))
		default:
			return respondError(c, h.logger, err)
		}
	}

	return c.JSON(http.StatusOK, util.Success("OTP has been sent to your email."))
}

func (h *AuthHandler) resetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	err := h.resets.ConfirmReset(c.Request().Context(), req.Email, req.OTP, req.Password, req.PasswordConfirmation)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidChallenge):
			return c.JSON(http.StatusBadRequest, util.Error(invalidCodeMessage))
		case errors.Is(err, service.ErrChallengeExpired):
			return c.JSON(http.StatusBadRequest, util.Error("OTP has expired. Please request a new one."))
		default:
			return respondError(c, h.logger, err)
		}
	}

	return c.JSON(http.StatusOK, util.Success("Password has been reset successfully."))
}

func tokenEnvelope(message string, result *service.AuthResult) util.Envelope {
	return util.Success(message).
		With("access_token", result.Token).
		With("token_type", "Bearer").
		With("expires_at", result.ExpiresAt.UTC().Format(time.RFC3339)).
		With("user", result.User)
}
