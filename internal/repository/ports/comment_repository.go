package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/foodieland/foodieland-api/internal/domain"
)

type CommentRepository interface {
	Create(ctx context.Context, userID uuid.UUID, target domain.CommentTarget, targetID uuid.UUID, body string) (*domain.Comment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	UpdateBody(ctx context.Context, id uuid.UUID, body string) (*domain.Comment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByTarget(ctx context.Context, target domain.CommentTarget, targetID uuid.UUID, limit, offset int) ([]domain.Comment, error)
	CountByTarget(ctx context.Context, target domain.CommentTarget, targetID uuid.UUID) (int64, error)
}
