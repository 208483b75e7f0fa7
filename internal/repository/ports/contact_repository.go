package ports

import (
	"context"

	"github.com/foodieland/foodieland-api/internal/domain"
)

type ContactMessageRepository interface {
	Create(ctx context.Context, msg domain.ContactMessage) (*domain.ContactMessage, error)
}

type SettingRepository interface {
	Get(ctx context.Context, key string) (*domain.Setting, error)
	Upsert(ctx context.Context, key string, value domain.JSONDocument) (*domain.Setting, error)
}
