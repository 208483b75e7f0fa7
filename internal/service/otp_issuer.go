package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/foodieland/foodieland-api/internal/domain"
	"github.com/foodieland/foodieland-api/internal/repository/ports"
	"github.com/foodieland/foodieland-api/internal/util"
)

var (
	ErrInvalidChallenge = errors.New("invalid otp")
	ErrChallengeExpired = errors.New("otp has expired")
	ErrCooldownActive   = errors.New("otp was issued less than a minute ago")
	ErrSendFailure      = errors.New("failed to send otp")
)

// otpIssuer owns the single OTP slot of an account for both the registration
// and the password reset flow.
type otpIssuer struct {
	users    ports.UserRepository
	mailer   ports.OTPMailer
	logger   *zap.Logger
	now      func() time.Time
	generate func() (string, error)
}

func newOTPIssuer(users ports.UserRepository, mailer ports.OTPMailer, logger *zap.Logger) *otpIssuer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &otpIssuer{
		users:    users,
		mailer:   mailer,
		logger:   logger,
		now:      time.Now,
		generate: util.GenerateOTP,
	}
}

func (o *otpIssuer) newChallenge() (domain.OTPChallenge, error) {
	code, err := o.generate()
	if err != nil {
		return domain.OTPChallenge{}, err
	}
	return domain.NewOTPChallenge(code, o.now()), nil
}

// reissue overwrites the slot of user with a fresh code and delivers it. The
// cooldown is enforced by the store so concurrent callers cannot both pass.
func (o *otpIssuer) reissue(ctx context.Context, user *domain.User, purpose domain.OTPPurpose) error {
	now := o.now()
	if current := user.Challenge(); current != nil && current.CoolingDown(now) {
		return ErrCooldownActive
	}
	challenge, err := o.newChallenge()
	if err != nil {
		return err
	}
	if err := o.users.IssueChallenge(ctx, user.ID, challenge, domain.CooldownCutoff(now)); err != nil {
		if isNotFound(err) {
			return ErrCooldownActive
		}
		return err
	}
	return o.deliver(ctx, user, purpose, challenge.Code)
}

// deliver sends code to the account. When the mail cannot be sent the code is
// withdrawn so no undelivered code stays guessable.
func (o *otpIssuer) deliver(ctx context.Context, user *domain.User, purpose domain.OTPPurpose, code string) error {
	err := o.mailer.SendOTP(ctx, purpose, user.Email, user.Name, code)
	if err == nil {
		return nil
	}
	o.logger.Error("otp delivery failed",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
		zap.String("purpose", string(purpose)),
		zap.Error(err),
	)
	if clearErr := o.users.ClearChallenge(ctx, user.ID, code); clearErr != nil && !isNotFound(clearErr) {
		o.logger.Warn("otp withdraw failed",
			zap.String("user_id", user.ID.String()),
			zap.Error(clearErr),
		)
	}
	return ErrSendFailure
}

// check validates code against the slot without consuming it. A mismatch wins
// over expiry so an expired slot does not confirm a guessed code.
func (o *otpIssuer) check(user *domain.User, code string) error {
	challenge := user.Challenge()
	if challenge == nil || !challenge.Matches(code) {
		return ErrInvalidChallenge
	}
	if challenge.Expired(o.now()) {
		return ErrChallengeExpired
	}
	return nil
}
