package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	Bio          *string    `db:"bio" json:"bio,omitempty"`
	ImageURL     *string    `db:"profile_image_url" json:"profile_image_url,omitempty"`
	GoogleID     *string    `db:"google_id" json:"-"`
	PasswordHash []byte     `db:"password_hash" json:"-"`
	PasswordSalt []byte     `db:"password_salt" json:"-"`
	VerifiedAt   *time.Time `db:"verified_at" json:"email_verified_at,omitempty"`
	OTPCode      *string    `db:"otp_code" json:"-"`
	OTPExpiresAt *time.Time `db:"otp_expires_at" json:"-"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
	Roles        []Role     `db:"-" json:"roles,omitempty"`
}

func (u *User) IsVerified() bool {
	return u != nil && u.VerifiedAt != nil
}

// Challenge returns the outstanding OTP challenge, or nil when the slot is empty.
func (u *User) Challenge() *OTPChallenge {
	if u == nil || u.OTPCode == nil || u.OTPExpiresAt == nil {
		return nil
	}
	return &OTPChallenge{Code: *u.OTPCode, ExpiresAt: *u.OTPExpiresAt}
}

func (u *User) HasRole(name string) bool {
	for _, role := range u.Roles {
		if role.Name == name {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u != nil && u.HasRole(RoleAdmin)
}

// AuthorSummary is the public projection of an account attached to content.
type AuthorSummary struct {
	ID       uuid.UUID `db:"id" json:"id"`
	Name     string    `db:"name" json:"name"`
	ImageURL *string   `db:"profile_image_url" json:"profile_image_url,omitempty"`
}

// ProfileUpdate holds optional profile changes; nil fields are left untouched.
type ProfileUpdate struct {
	Name     *string
	Email    *string
	Bio      *string
	ImageURL *string
}
