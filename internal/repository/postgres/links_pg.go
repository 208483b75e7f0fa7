package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/foodieland/foodieland-api/internal/domain"
)

type linkTable struct {
	name     string
	ownerCol string
	otherCol string
}

var (
	recipeCategoryLinks = linkTable{name: "recipe_category", ownerCol: "recipe_id", otherCol: "category_id"}
	recipeTagLinks      = linkTable{name: "recipe_tag", ownerCol: "recipe_id", otherCol: "tag_id"}
	blogCategoryLinks   = linkTable{name: "blog_post_category", ownerCol: "blog_post_id", otherCol: "category_id"}
	blogTagLinks        = linkTable{name: "blog_post_tag", ownerCol: "blog_post_id", otherCol: "tag_id"}
)

// replace syncs the owner's links to exactly ids. A nil slice leaves them as is.
func (l linkTable) replace(ctx context.Context, tx *sqlx.Tx, ownerID uuid.UUID, ids []uuid.UUID) error {
	if ids == nil {
		return nil
	}
	del := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, l.name, l.ownerCol)
	if _, err := tx.ExecContext(ctx, del, ownerID); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	ins := fmt.Sprintf(`
		INSERT INTO %s (%s, %s)
		SELECT $1, unnest($2::uuid[])
		ON CONFLICT DO NOTHING
	`, l.name, l.ownerCol, l.otherCol)
	_, err := tx.ExecContext(ctx, ins, ownerID, uuidArray(ids))
	return err
}

func (l linkTable) categories(ctx context.Context, db *sqlx.DB, ownerIDs []uuid.UUID) (map[uuid.UUID][]domain.Category, error) {
	result := make(map[uuid.UUID][]domain.Category, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return result, nil
	}
	query := fmt.Sprintf(`
		SELECT l.%s AS owner_id, c.id, c.name, c.slug, c.description, c.created_at, c.updated_at
		FROM %s l
		JOIN categories c ON c.id = l.category_id
		WHERE l.%s = ANY($1::uuid[])
		ORDER BY c.name
	`, l.ownerCol, l.name, l.ownerCol)

	rows := []struct {
		OwnerID uuid.UUID `db:"owner_id"`
		domain.Category
	}{}
	if err := db.SelectContext(ctx, &rows, query, uuidArray(ownerIDs)); err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.OwnerID] = append(result[row.OwnerID], row.Category)
	}
	return result, nil
}

func (l linkTable) tags(ctx context.Context, db *sqlx.DB, ownerIDs []uuid.UUID) (map[uuid.UUID][]domain.Tag, error) {
	result := make(map[uuid.UUID][]domain.Tag, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return result, nil
	}
	query := fmt.Sprintf(`
		SELECT l.%s AS owner_id, t.id, t.name, t.slug
		FROM %s l
		JOIN tags t ON t.id = l.tag_id
		WHERE l.%s = ANY($1::uuid[])
		ORDER BY t.name
	`, l.ownerCol, l.name, l.ownerCol)

	rows := []struct {
		OwnerID uuid.UUID `db:"owner_id"`
		domain.Tag
	}{}
	if err := db.SelectContext(ctx, &rows, query, uuidArray(ownerIDs)); err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.OwnerID] = append(result[row.OwnerID], row.Tag)
	}
	return result, nil
}

// setClause accumulates "col = $n" fragments for partial updates.
type setClause struct {
	parts []string
	args  []any
}

func (s *setClause) add(column string, value any) {
	s.args = append(s.args, value)
	s.parts = append(s.parts, fmt.Sprintf("%s = $%d", column, len(s.args)))
}

func (s *setClause) next(value any) string {
	s.args = append(s.args, value)
	return fmt.Sprintf("$%d", len(s.args))
}
