package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/foodieland/foodieland-api/internal/repository/ports"
)

type FavoriteRepository struct {
	db *sqlx.DB
}

func NewFavoriteRepo(db *sqlx.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

func (r *FavoriteRepository) Toggle(ctx context.Context, userID, recipeID uuid.UUID) (bool, error) {
	const query = `
		WITH removed AS (
			DELETE FROM favorites
			WHERE user_id = $1 AND recipe_id = $2
			RETURNING 1
		), added AS (
			INSERT INTO favorites (user_id, recipe_id)
			SELECT $1, $2
			WHERE NOT EXISTS (SELECT 1 FROM removed)
			ON CONFLICT (user_id, recipe_id) DO NOTHING
			RETURNING 1
		)
		SELECT EXISTS (SELECT 1 FROM added)
	`
	var favorited bool
	if err := r.db.GetContext(ctx, &favorited, query, userID, recipeID); err != nil {
		return false, err
	}
	return favorited, nil
}

func (r *FavoriteRepository) Exists(ctx context.Context, userID, recipeID uuid.UUID) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM favorites WHERE user_id = $1 AND recipe_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID, recipeID); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *FavoriteRepository) RecipeIDsByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	const query = `
		SELECT recipe_id
		FROM favorites
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	ids := make([]uuid.UUID, 0)
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, err
	}
	return ids, nil
}

var _ ports.FavoriteRepository = (*FavoriteRepository)(nil)
