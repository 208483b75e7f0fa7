package ports

import (
	"context"

	"github.com/foodieland/foodieland-api/internal/domain"
)

type OTPMailer interface {
	SendOTP(ctx context.Context, purpose domain.OTPPurpose, email, name, code string) error
}
