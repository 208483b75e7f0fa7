package domain

import (
	"crypto/subtle"
	"time"
)

const (
	OTPTTL            = 10 * time.Minute
	OTPResendCooldown = time.Minute
)

type OTPPurpose string

const (
	OTPPurposeRegistration  OTPPurpose = "registration"
	OTPPurposePasswordReset OTPPurpose = "password_reset"
)

// OTPChallenge is the single outstanding one-time code of an account. Code and
// ExpiresAt are persisted together and cleared together.
type OTPChallenge struct {
	Code      string
	ExpiresAt time.Time
}

func NewOTPChallenge(code string, issuedAt time.Time) OTPChallenge {
	return OTPChallenge{Code: code, ExpiresAt: issuedAt.Add(OTPTTL)}
}

func (c OTPChallenge) IssuedAt() time.Time {
	return c.ExpiresAt.Add(-OTPTTL)
}

func (c OTPChallenge) CooldownEndsAt() time.Time {
	return c.IssuedAt().Add(OTPResendCooldown)
}

func (c OTPChallenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

func (c OTPChallenge) CoolingDown(now time.Time) bool {
	return now.Before(c.CooldownEndsAt())
}

func (c OTPChallenge) Matches(code string) bool {
	if len(code) != len(c.Code) || c.Code == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(code), []byte(c.Code)) == 1
}

// CooldownCutoff is the latest expiry an existing challenge may carry for a new
// one to be issued at now.
func CooldownCutoff(now time.Time) time.Time {
	return now.Add(OTPTTL - OTPResendCooldown)
}
