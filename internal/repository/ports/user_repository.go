package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/foodieland/foodieland-api/internal/domain"
)

type UserRepository interface {
	CreateEmailUser(ctx context.Context, name, email string, passwordHash, passwordSalt []byte, challenge domain.OTPChallenge) (*domain.User, error)
	UpsertGoogleUser(ctx context.Context, googleID, email, name string, imageURL *string, verifiedAt time.Time) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update domain.ProfileUpdate) (*domain.User, error)

	// IssueChallenge overwrites the OTP slot unless the current challenge expires
	// after cooldownCutoff. It returns sql.ErrNoRows when the cooldown blocks it.
	IssueChallenge(ctx context.Context, id uuid.UUID, challenge domain.OTPChallenge, cooldownCutoff time.Time) error
	// ClearChallenge empties the slot only while it still holds code.
	ClearChallenge(ctx context.Context, id uuid.UUID, code string) error
	// ConsumeVerification atomically checks code and expiry, marks the account
	// verified and clears the slot. sql.ErrNoRows means nothing matched.
	ConsumeVerification(ctx context.Context, id uuid.UUID, code string, now time.Time) (*domain.User, error)
	// ConsumePasswordReset is ConsumeVerification for the reset flow: it swaps the
	// credential and leaves verified_at untouched.
	ConsumePasswordReset(ctx context.Context, id uuid.UUID, code string, now time.Time, passwordHash, passwordSalt []byte) error
}
