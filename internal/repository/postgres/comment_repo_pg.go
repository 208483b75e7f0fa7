package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/foodieland/foodieland-api/internal/domain"
	"github.com/foodieland/foodieland-api/internal/repository/ports"
)

const commentSelect = `
	SELECT
		c.id,
		c.user_id,
		c.commentable_type,
		c.commentable_id,
		c.body,
		c.created_at,
		c.updated_at,
		u.id AS "author.id",
		u.name AS "author.name",
		u.profile_image_url AS "author.profile_image_url"
	FROM comments c
	JOIN users u ON u.id = c.user_id
`

type CommentRepository struct {
	db *sqlx.DB
}

func NewCommentRepo(db *sqlx.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, userID uuid.UUID, target domain.CommentTarget, targetID uuid.UUID, body string) (*domain.Comment, error) {
	const insert = `
		INSERT INTO comments (user_id, commentable_type, commentable_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	var id uuid.UUID
	if err := r.db.GetContext(ctx, &id, insert, userID, target, targetID, body); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *CommentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	var comment domain.Comment
	if err := r.db.GetContext(ctx, &comment, commentSelect+` WHERE c.id = $1`, id); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepository) UpdateBody(ctx context.Context, id uuid.UUID, body string) (*domain.Comment, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE comments SET body = $2, updated_at = NOW() WHERE id = $1`, id, body)
	if err := expectAffected(result, err); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *CommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	return expectAffected(result, err)
}

func (r *CommentRepository) ListByTarget(ctx context.Context, target domain.CommentTarget, targetID uuid.UUID, limit, offset int) ([]domain.Comment, error) {
	const where = `
	WHERE c.commentable_type = $1 AND c.commentable_id = $2
	ORDER BY c.created_at DESC, c.id DESC
	LIMIT $3 OFFSET $4`
	comments := make([]domain.Comment, 0)
	if err := r.db.SelectContext(ctx, &comments, commentSelect+where, target, targetID, limit, offset); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *CommentRepository) CountByTarget(ctx context.Context, target domain.CommentTarget, targetID uuid.UUID) (int64, error) {
	const query = `SELECT COUNT(*) FROM comments WHERE commentable_type = $1 AND commentable_id = $2`
	var count int64
	if err := r.db.GetContext(ctx, &count, query, target, targetID); err != nil {
		return 0, err
	}
	return count, nil
}

var _ ports.CommentRepository = (*CommentRepository)(nil)
