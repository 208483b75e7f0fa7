package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/foodieland/foodieland-api/internal/domain"
)

type CategoryRepository interface {
	List(ctx context.Context) ([]domain.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Category, error)
	Create(ctx context.Context, name, slug string, description *string) (*domain.Category, error)
	Update(ctx context.Context, id uuid.UUID, name, slug string, description *string) (*domain.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountRecipes(ctx context.Context, id uuid.UUID) (int64, error)
	// ExistingIDs returns the subset of ids that exist.
	ExistingIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
}

type TagRepository interface {
	// FirstOrCreate returns the tag with slug, creating it with name when absent.
	FirstOrCreate(ctx context.Context, slug, name string) (*domain.Tag, error)
}
