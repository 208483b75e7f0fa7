package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/foodieland/foodieland-api/internal/domain"
	"github.com/foodieland/foodieland-api/internal/repository/ports"
)

const recipeSelect = `
	SELECT
		r.id,
		r.user_id,
		r.title,
		r.slug,
		r.description,
		r.prep_time,
		r.cook_time,
		r.difficulty,
		r.ingredients,
		r.instructions,
		r.nutrition_facts,
		r.image_url,
		r.created_at,
		r.updated_at,
		u.id AS "author.id",
		u.name AS "author.name",
		u.profile_image_url AS "author.profile_image_url",
		(SELECT COUNT(*) FROM favorites f WHERE f.recipe_id = r.id) AS favorites_count
	FROM recipes r
	JOIN users u ON u.id = r.user_id
`

type RecipeRepository struct {
	db *sqlx.DB
}

func NewRecipeRepo(db *sqlx.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

func (r *RecipeRepository) Create(ctx context.Context, userID uuid.UUID, draft domain.RecipeDraft, categoryIDs, tagIDs []uuid.UUID) (*domain.Recipe, error) {
	const insert = `
		INSERT INTO recipes (user_id, title, slug, description, prep_time, cook_time, difficulty,
		                     ingredients, instructions, nutrition_facts, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	var recipe domain.Recipe
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var id uuid.UUID
		if err := tx.GetContext(ctx, &id, insert,
			userID, draft.Title, draft.Slug, draft.Description, draft.PrepTime, draft.CookTime, draft.Difficulty,
			draft.Ingredients, draft.Instructions, draft.NutritionFacts, draft.ImageURL,
		); err != nil {
			return err
		}
		if err := recipeCategoryLinks.replace(ctx, tx, id, categoryIDs); err != nil {
			return err
		}
		if err := recipeTagLinks.replace(ctx, tx, id, tagIDs); err != nil {
			return err
		}
		return tx.GetContext(ctx, &recipe, recipeSelect+` WHERE r.id = $1`, id)
	})
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *RecipeRepository) Update(ctx context.Context, id uuid.UUID, draft domain.RecipeDraft, categoryIDs, tagIDs []uuid.UUID) (*domain.Recipe, error) {
	set := &setClause{}
	if draft.Title != nil {
		set.add("title", *draft.Title)
	}
	if draft.Slug != nil {
		set.add("slug", *draft.Slug)
	}
	if draft.Description != nil {
		set.add("description", *draft.Description)
	}
	if draft.PrepTime != nil {
		set.add("prep_time", *draft.PrepTime)
	}
	if draft.CookTime != nil {
		set.add("cook_time", *draft.CookTime)
	}
	if draft.Difficulty != nil {
		set.add("difficulty", *draft.Difficulty)
	}
	if draft.Ingredients != nil {
		set.add("ingredients", draft.Ingredients)
	}
	if draft.Instructions != nil {
		set.add("instructions", draft.Instructions)
	}
	if draft.NutritionFacts != nil {
		set.add("nutrition_facts", draft.NutritionFacts)
	}
	if draft.ImageURL != nil {
		set.add("image_url", *draft.ImageURL)
	}
	set.parts = append(set.parts, "updated_at = NOW()")
	query := fmt.Sprintf(`UPDATE recipes SET %s WHERE id = %s`, strings.Join(set.parts, ", "), set.next(id))

	var recipe domain.Recipe
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, query, set.args...)
		if err := expectAffected(result, err); err != nil {
			return err
		}
		if err := recipeCategoryLinks.replace(ctx, tx, id, categoryIDs); err != nil {
			return err
		}
		if err := recipeTagLinks.replace(ctx, tx, id, tagIDs); err != nil {
			return err
		}
		return tx.GetContext(ctx, &recipe, recipeSelect+` WHERE r.id = $1`, id)
	})
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *RecipeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE commentable_type = $1 AND commentable_id = $2`, domain.CommentTargetRecipe, id); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM recipes WHERE id = $1`, id)
		return expectAffected(result, err)
	})
}

func (r *RecipeRepository) FindBySlug(ctx context.Context, slug string) (*domain.Recipe, error) {
	var recipe domain.Recipe
	if err := r.db.GetContext(ctx, &recipe, recipeSelect+` WHERE r.slug = $1`, slug); err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *RecipeRepository) SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM recipes WHERE slug = $1 AND ($2::uuid IS NULL OR id <> $2))`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, slug, excludeID); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *RecipeRepository) List(ctx context.Context, filter domain.RecipeFilter) ([]domain.Recipe, error) {
	where, params := recipeWhere(filter)
	params = append(params, filter.Limit, filter.Offset)
	query := recipeSelect + where + fmt.Sprintf(`
	ORDER BY r.created_at DESC, r.id DESC
	LIMIT $%d OFFSET $%d`, len(params)-1, len(params))

	recipes := make([]domain.Recipe, 0)
	if err := r.db.SelectContext(ctx, &recipes, query, params...); err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *RecipeRepository) Count(ctx context.Context, filter domain.RecipeFilter) (int64, error) {
	where, params := recipeWhere(filter)
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM recipes r`+where, params...); err != nil {
		return 0, err
	}
	return total, nil
}

func recipeWhere(filter domain.RecipeFilter) (string, []any) {
	clauses := make([]string, 0, 3)
	params := make([]any, 0, 3)

	if search := strings.TrimSpace(filter.Search); search != "" {
		params = append(params, "%"+search+"%")
		p := fmt.Sprintf("$%d", len(params))
		clauses = append(clauses, "(r.title ILIKE "+p+" OR r.description ILIKE "+p+")")
	}
	if slug := strings.TrimSpace(filter.CategorySlug); slug != "" {
		params = append(params, slug)
		clauses = append(clauses, fmt.Sprintf(`EXISTS (
		SELECT 1 FROM recipe_category rc
		JOIN categories c ON c.id = rc.category_id
		WHERE rc.recipe_id = r.id AND c.slug = $%d)`, len(params)))
	}
	if filter.AuthorID != nil {
		params = append(params, *filter.AuthorID)
		clauses = append(clauses, fmt.Sprintf("r.user_id = $%d", len(params)))
	}

	if len(clauses) == 0 {
		return "", params
	}
	return "\n\tWHERE " + strings.Join(clauses, "\n\t  AND "), params
}

func (r *RecipeRepository) CategoriesByRecipe(ctx context.Context, recipeIDs []uuid.UUID) (map[uuid.UUID][]domain.Category, error) {
	return recipeCategoryLinks.categories(ctx, r.db, recipeIDs)
}

func (r *RecipeRepository) TagsByRecipe(ctx context.Context, recipeIDs []uuid.UUID) (map[uuid.UUID][]domain.Tag, error) {
	return recipeTagLinks.tags(ctx, r.db, recipeIDs)
}

var _ ports.RecipeRepository = (*RecipeRepository)(nil)
