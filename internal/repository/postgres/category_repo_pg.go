package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/foodieland/foodieland-api/internal/domain"
	"github.com/foodieland/foodieland-api/internal/repository/ports"
)

type CategoryRepository struct {
	db *sqlx.DB
}

func NewCategoryRepo(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	const query = `
		SELECT c.id, c.name, c.slug, c.description, c.created_at, c.updated_at,
		       (SELECT COUNT(*) FROM recipe_category rc WHERE rc.category_id = c.id) AS recipe_count
		FROM categories c
		ORDER BY c.name
	`
	categories := make([]domain.Category, 0)
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	const query = `SELECT id, name, slug, description, created_at, updated_at FROM categories WHERE id = $1`
	var category domain.Category
	if err := r.db.GetContext(ctx, &category, query, id); err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	const query = `SELECT id, name, slug, description, created_at, updated_at FROM categories WHERE slug = $1`
	var category domain.Category
	if err := r.db.GetContext(ctx, &category, query, slug); err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) Create(ctx context.Context, name, slug string, description *string) (*domain.Category, error) {
	const query = `
		INSERT INTO categories (name, slug, description)
		VALUES ($1, $2, $3)
		RETURNING id, name, slug, description, created_at, updated_at
	`
	var category domain.Category
	if err := r.db.QueryRowxContext(ctx, query, name, slug, description).StructScan(&category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) Update(ctx context.Context, id uuid.UUID, name, slug string, description *string) (*domain.Category, error) {
	const query = `
		UPDATE categories
		SET name = $2,
		    slug = $3,
		    description = COALESCE($4, description),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, slug, description, created_at, updated_at
	`
	var category domain.Category
	if err := r.db.QueryRowxContext(ctx, query, id, name, slug, description).StructScan(&category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	return expectAffected(result, err)
}

func (r *CategoryRepository) CountRecipes(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM recipe_category WHERE category_id = $1`, id); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *CategoryRepository) ExistingIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	found := make([]uuid.UUID, 0, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	if err := r.db.SelectContext(ctx, &found, `SELECT id FROM categories WHERE id = ANY($1::uuid[])`, uuidArray(ids)); err != nil {
		return nil, err
	}
	return found, nil
}

type TagRepository struct {
	db *sqlx.DB
}

func NewTagRepo(db *sqlx.DB) *TagRepository {
	return &TagRepository{db: db}
}

func (r *TagRepository) FirstOrCreate(ctx context.Context, slug, name string) (*domain.Tag, error) {
	// The no-op update makes RETURNING yield the existing row on conflict.
	const query = `
		INSERT INTO tags (slug, name)
		VALUES ($1, $2)
		ON CONFLICT (slug) DO UPDATE SET slug = EXCLUDED.slug
		RETURNING id, name, slug
	`
	var tag domain.Tag
	if err := r.db.QueryRowxContext(ctx, query, slug, name).StructScan(&tag); err != nil {
		return nil, err
	}
	return &tag, nil
}

var (
	_ ports.CategoryRepository = (*CategoryRepository)(nil)
	_ ports.TagRepository      = (*TagRepository)(nil)
)
