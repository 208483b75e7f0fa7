package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/foodieland/foodieland-api/internal/domain"
)

type RecipeRepository interface {
	// Create inserts the recipe and its category and tag links in one transaction.
	Create(ctx context.Context, userID uuid.UUID, draft domain.RecipeDraft, categoryIDs, tagIDs []uuid.UUID) (*domain.Recipe, error)
	// Update applies non-nil draft fields; nil id slices keep the current links.
	Update(ctx context.Context, id uuid.UUID, draft domain.RecipeDraft, categoryIDs, tagIDs []uuid.UUID) (*domain.Recipe, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindBySlug(ctx context.Context, slug string) (*domain.Recipe, error)
	SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	List(ctx context.Context, filter domain.RecipeFilter) ([]domain.Recipe, error)
	Count(ctx context.Context, filter domain.RecipeFilter) (int64, error)
	CategoriesByRecipe(ctx context.Context, recipeIDs []uuid.UUID) (map[uuid.UUID][]domain.Category, error)
	TagsByRecipe(ctx context.Context, recipeIDs []uuid.UUID) (map[uuid.UUID][]domain.Tag, error)
}
