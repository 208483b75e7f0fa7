package ports

import (
	"context"

	"github.com/google/uuid"
)

type FavoriteRepository interface {
	// Toggle removes the favorite when present and adds it otherwise, reporting
	// whether the recipe is favorited afterwards.
	Toggle(ctx context.Context, userID, recipeID uuid.UUID) (bool, error)
	Exists(ctx context.Context, userID, recipeID uuid.UUID) (bool, error)
	RecipeIDsByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}
