package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/foodieland/foodieland-api/internal/domain"
	"github.com/foodieland/foodieland-api/internal/repository/ports"
)

type ContactMessageRepository struct {
	db *sqlx.DB
}

func NewContactMessageRepo(db *sqlx.DB) *ContactMessageRepository {
	return &ContactMessageRepository{db: db}
}

func (r *ContactMessageRepository) Create(ctx context.Context, msg domain.ContactMessage) (*domain.ContactMessage, error) {
	const query = `
		INSERT INTO contact_messages (reference, name, email, subject, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, reference, name, email, subject, message, created_at
	`
	var saved domain.ContactMessage
	row := r.db.QueryRowxContext(ctx, query, msg.Reference, msg.Name, msg.Email, msg.Subject, msg.Message)
	if err := row.StructScan(&saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

type SettingRepository struct {
	db *sqlx.DB
}

func NewSettingRepo(db *sqlx.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

func (r *SettingRepository) Get(ctx context.Context, key string) (*domain.Setting, error) {
	var setting domain.Setting
	if err := r.db.GetContext(ctx, &setting, `SELECT key, value, updated_at FROM settings WHERE key = $1`, key); err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *SettingRepository) Upsert(ctx context.Context, key string, value domain.JSONDocument) (*domain.Setting, error) {
	const query = `
		INSERT INTO settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value,
		    updated_at = NOW()
		RETURNING key, value, updated_at
	`
	var setting domain.Setting
	if err := r.db.QueryRowxContext(ctx, query, key, value).StructScan(&setting); err != nil {
		return nil, err
	}
	return &setting, nil
}

var (
	_ ports.ContactMessageRepository = (*ContactMessageRepository)(nil)
	_ ports.SettingRepository        = (*SettingRepository)(nil)
)
