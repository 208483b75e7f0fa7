package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/foodieland/foodieland-api/internal/domain"
	"github.com/foodieland/foodieland-api/internal/repository/ports"
	"github.com/foodieland/foodieland-api/internal/util"
)

type PasswordResetService struct {
	users ports.UserRepository
	otp   *otpIssuer
	now   func() time.Time
}

func NewPasswordResetService(users ports.UserRepository, mailer ports.OTPMailer, logger *zap.Logger) *PasswordResetService {
	return &PasswordResetService{
		users: users,
		otp:   newOTPIssuer(users, mailer, logger),
		now:   time.Now,
	}
}

// RequestReset issues a reset code under the same cooldown as resend-otp. It
// does not look at the verification state.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}
	return s.otp.reissue(ctx, user, domain.OTPPurposePasswordReset)
}

// ConfirmReset swaps the credential when code is current. An unknown email is
// reported as ErrInvalidChallenge.
func (s *PasswordResetService) ConfirmReset(ctx context.Context, email, code, password, confirmation string) error {
	if err := util.ValidatePassword(password); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if password != confirmation {
		return fmt.Errorf("%w: password confirmation does not match", ErrValidation)
	}
	code = strings.TrimSpace(code)
	if !util.IsOTPFormat(code) {
		return ErrInvalidChallenge
	}

	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if isNotFound(err) {
			return ErrInvalidChallenge
		}
		return err
	}
	if err := s.otp.check(user, code); err != nil {
		return err
	}

	hash, salt, err := util.DerivePassword(password)
	if err != nil {
		return err
	}
	if err := s.users.ConsumePasswordReset(ctx, user.ID, code, s.now(), hash, salt); err != nil {
		if isNotFound(err) {
			return ErrInvalidChallenge
		}
		return err
	}
	return nil
}
