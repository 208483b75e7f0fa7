package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/foodieland/foodieland-api/internal/domain"
	"github.com/foodieland/foodieland-api/internal/repository/ports"
)

const userColumns = `id, name, email, bio, profile_image_url, google_id, password_hash, password_salt,
        verified_at, otp_code, otp_expires_at, created_at, updated_at`

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateEmailUser(ctx context.Context, name, email string, passwordHash, passwordSalt []byte, challenge domain.OTPChallenge) (*domain.User, error) {
	const query = `
        INSERT INTO users (name, email, password_hash, password_salt, otp_code, otp_expires_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING ` + userColumns

	row := r.db.QueryRowxContext(ctx, query, name, email, passwordHash, passwordSalt, challenge.Code, challenge.ExpiresAt)
	var user domain.User
	if err := row.StructScan(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpsertGoogleUser links a Google identity by email. Linking an unverified
// account drops its password and pending code: nobody proved ownership of
// that address before Google did.
func (r *UserRepository) UpsertGoogleUser(ctx context.Context, googleID, email, name string, imageURL *string, verifiedAt time.Time) (*domain.User, error) {
	const query = `
        INSERT INTO users (name, email, google_id, profile_image_url, verified_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (email) DO UPDATE
        SET google_id = COALESCE(users.google_id, EXCLUDED.google_id),
            profile_image_url = COALESCE(users.profile_image_url, EXCLUDED.profile_image_url),
            verified_at = COALESCE(users.verified_at, EXCLUDED.verified_at),
            otp_code = CASE WHEN users.verified_at IS NULL THEN NULL ELSE users.otp_code END,
            otp_expires_at = CASE WHEN users.verified_at IS NULL THEN NULL ELSE users.otp_expires_at END,
            password_hash = CASE WHEN users.verified_at IS NULL THEN NULL ELSE users.password_hash END,
            password_salt = CASE WHEN users.verified_at IS NULL THEN NULL ELSE users.password_salt END,
            updated_at = NOW()
        RETURNING ` + userColumns

	row := r.db.QueryRowxContext(ctx, query, name, email, googleID, imageURL, verifiedAt)
	var user domain.User
	if err := row.StructScan(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, update domain.ProfileUpdate) (*domain.User, error) {
	const query = `
        UPDATE users
        SET name = COALESCE($2, name),
            email = COALESCE($3, email),
            bio = COALESCE($4, bio),
            profile_image_url = COALESCE($5, profile_image_url),
            updated_at = NOW()
        WHERE id = $1
        RETURNING ` + userColumns

	row := r.db.QueryRowxContext(ctx, query, id, update.Name, update.Email, update.Bio, update.ImageURL)
	var user domain.User
	if err := row.StructScan(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) IssueChallenge(ctx context.Context, id uuid.UUID, challenge domain.OTPChallenge, cooldownCutoff time.Time) error {
	const query = `
        UPDATE users
        SET otp_code = $2,
            otp_expires_at = $3,
            updated_at = NOW()
        WHERE id = $1
          AND (otp_expires_at IS NULL OR otp_expires_at <= $4)
    `
	result, err := r.db.ExecContext(ctx, query, id, challenge.Code, challenge.ExpiresAt, cooldownCutoff)
	return expectAffected(result, err)
}

func (r *UserRepository) ClearChallenge(ctx context.Context, id uuid.UUID, code string) error {
	const query = `
        UPDATE users
        SET otp_code = NULL,
            otp_expires_at = NULL,
            updated_at = NOW()
        WHERE id = $1 AND otp_code = $2
    `
	result, err := r.db.ExecContext(ctx, query, id, code)
	return expectAffected(result, err)
}

func (r *UserRepository) ConsumeVerification(ctx context.Context, id uuid.UUID, code string, now time.Time) (*domain.User, error) {
	const query = `
        UPDATE users
        SET verified_at = COALESCE(verified_at, $3),
            otp_code = NULL,
            otp_expires_at = NULL,
            updated_at = NOW()
        WHERE id = $1
          AND otp_code = $2
          AND otp_expires_at >= $3
        RETURNING ` + userColumns

	row := r.db.QueryRowxContext(ctx, query, id, code, now)
	var user domain.User
	if err := row.StructScan(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) ConsumePasswordReset(ctx context.Context, id uuid.UUID, code string, now time.Time, passwordHash, passwordSalt []byte) error {
	const query = `
        UPDATE users
        SET password_hash = $4,
            password_salt = $5,
            otp_code = NULL,
            otp_expires_at = NULL,
            updated_at = NOW()
        WHERE id = $1
          AND otp_code = $2
          AND otp_expires_at >= $3
    `
	result, err := r.db.ExecContext(ctx, query, id, code, now, passwordHash, passwordSalt)
	return expectAffected(result, err)
}

// expectAffected turns "no row matched" into sql.ErrNoRows.
func expectAffected(result sql.Result, err error) error {
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

var _ ports.UserRepository = (*UserRepository)(nil)
