package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/foodieland/foodieland-api/internal/domain"
	"github.com/foodieland/foodieland-api/internal/repository/ports"
)

type FavoriteService struct {
	favorites ports.FavoriteRepository
	recipes   ports.RecipeRepository
}

func NewFavoriteService(favoriteRepo ports.FavoriteRepository, recipeRepo ports.RecipeRepository) *FavoriteService {
	return &FavoriteService{
		favorites: favoriteRepo,
		recipes:   recipeRepo,
	}
}

// Toggle flips the actor's favorite on the recipe and reports the new state.
func (s *FavoriteService) Toggle(ctx context.Context, actor *domain.User, slug string) (bool, error) {
	if actor == nil {
		return false, ErrForbidden
	}
	recipe, err := s.recipes.FindBySlug(ctx, slug)
	if err != nil {
		if isNotFound(err) {
			return false, ErrRecipeNotFound
		}
		return false, err
	}
	return s.favorites.Toggle(ctx, actor.ID, recipe.ID)
}

func (s *FavoriteService) RecipeIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	ids, err := s.favorites.RecipeIDsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return nonNil(ids), nil
}
