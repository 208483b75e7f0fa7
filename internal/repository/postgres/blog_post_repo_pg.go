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

const blogPostSelect = `
	SELECT
		b.id,
		b.user_id,
		b.title,
		b.slug,
		b.excerpt,
		b.content,
		b.image_url,
		b.created_at,
		b.updated_at,
		u.id AS "author.id",
		u.name AS "author.name",
		u.profile_image_url AS "author.profile_image_url"
	FROM blog_posts b
	JOIN users u ON u.id = b.user_id
`

type BlogPostRepository struct {
	db *sqlx.DB
}

func NewBlogPostRepo(db *sqlx.DB) *BlogPostRepository {
	return &BlogPostRepository{db: db}
}

func (r *BlogPostRepository) Create(ctx context.Context, userID uuid.UUID, draft domain.BlogPostDraft, categoryIDs, tagIDs []uuid.UUID) (*domain.BlogPost, error) {
	const insert = `
		INSERT INTO blog_posts (user_id, title, slug, excerpt, content, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	var post domain.BlogPost
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var id uuid.UUID
		if err := tx.GetContext(ctx, &id, insert, userID, draft.Title, draft.Slug, draft.Excerpt, draft.Content, draft.ImageURL); err != nil {
			return err
		}
		if err := blogCategoryLinks.replace(ctx, tx, id, categoryIDs); err != nil {
			return err
		}
		if err := blogTagLinks.replace(ctx, tx, id, tagIDs); err != nil {
			return err
		}
		return tx.GetContext(ctx, &post, blogPostSelect+` WHERE b.id = $1`, id)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *BlogPostRepository) Update(ctx context.Context, id uuid.UUID, draft domain.BlogPostDraft, categoryIDs, tagIDs []uuid.UUID) (*domain.BlogPost, error) {
	set := &setClause{}
	if draft.Title != nil {
		set.add("title", *draft.Title)
	}
	if draft.Slug != nil {
		set.add("slug", *draft.Slug)
	}
	if draft.Excerpt != nil {
		set.add("excerpt", *draft.Excerpt)
	}
	if draft.Content != nil {
		set.add("content", *draft.Content)
	}
	if draft.ImageURL != nil {
		set.add("image_url", *draft.ImageURL)
	}
	set.parts = append(set.parts, "updated_at = NOW()")
	query := fmt.Sprintf(`UPDATE blog_posts SET %s WHERE id = %s`, strings.Join(set.parts, ", "), set.next(id))

	var post domain.BlogPost
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, query, set.args...)
		if err := expectAffected(result, err); err != nil {
			return err
		}
		if err := blogCategoryLinks.replace(ctx, tx, id, categoryIDs); err != nil {
			return err
		}
		if err := blogTagLinks.replace(ctx, tx, id, tagIDs); err != nil {
			return err
		}
		return tx.GetContext(ctx, &post, blogPostSelect+` WHERE b.id = $1`, id)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *BlogPostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE commentable_type = $1 AND commentable_id = $2`, domain.CommentTargetBlog, id); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
		return expectAffected(result, err)
	})
}

func (r *BlogPostRepository) FindBySlug(ctx context.Context, slug string) (*domain.BlogPost, error) {
	var post domain.BlogPost
	if err := r.db.GetContext(ctx, &post, blogPostSelect+` WHERE b.slug = $1`, slug); err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *BlogPostRepository) SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM blog_posts WHERE slug = $1 AND ($2::uuid IS NULL OR id <> $2))`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, slug, excludeID); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *BlogPostRepository) List(ctx context.Context, filter domain.BlogPostFilter) ([]domain.BlogPost, error) {
	where, params := blogPostWhere(filter)
	params = append(params, filter.Limit, filter.Offset)
	query := blogPostSelect + where + fmt.Sprintf(`
	ORDER BY b.created_at DESC, b.id DESC
	LIMIT $%d OFFSET $%d`, len(params)-1, len(params))

	posts := make([]domain.BlogPost, 0)
	if err := r.db.SelectContext(ctx, &posts, query, params...); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *BlogPostRepository) Count(ctx context.Context, filter domain.BlogPostFilter) (int64, error) {
	where, params := blogPostWhere(filter)
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM blog_posts b`+where, params...); err != nil {
		return 0, err
	}
	return total, nil
}

func blogPostWhere(filter domain.BlogPostFilter) (string, []any) {
	if filter.AuthorID == nil {
		return "", nil
	}
	return "\n\tWHERE b.user_id = $1", []any{*filter.AuthorID}
}

func (r *BlogPostRepository) CategoriesByPost(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID][]domain.Category, error) {
	return blogCategoryLinks.categories(ctx, r.db, postIDs)
}

func (r *BlogPostRepository) TagsByPost(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID][]domain.Tag, error) {
	return blogTagLinks.tags(ctx, r.db, postIDs)
}

var _ ports.BlogPostRepository = (*BlogPostRepository)(nil)
