package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/foodieland/foodieland-api/internal/domain"
)

type BlogPostRepository interface {
	Create(ctx context.Context, userID uuid.UUID, draft domain.BlogPostDraft, categoryIDs, tagIDs []uuid.UUID) (*domain.BlogPost, error)
	Update(ctx context.Context, id uuid.UUID, draft domain.BlogPostDraft, categoryIDs, tagIDs []uuid.UUID) (*domain.BlogPost, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindBySlug(ctx context.Context, slug string) (*domain.BlogPost, error)
	SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	List(ctx context.Context, filter domain.BlogPostFilter) ([]domain.BlogPost, error)
	Count(ctx context.Context, filter domain.BlogPostFilter) (int64, error)
	CategoriesByPost(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID][]domain.Category, error)
	TagsByPost(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID][]domain.Tag, error)
}
