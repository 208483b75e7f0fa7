package domain

import (
	"time"

	"github.com/google/uuid"
)

type CommentTarget string

const (
	CommentTargetRecipe CommentTarget = "recipe"
	CommentTargetBlog   CommentTarget = "blog_post"
)

type Comment struct {
	ID         uuid.UUID     `db:"id" json:"id"`
	UserID     uuid.UUID     `db:"user_id" json:"-"`
	TargetType CommentTarget `db:"commentable_type" json:"commentable_type"`
	TargetID   uuid.UUID     `db:"commentable_id" json:"commentable_id"`
	Body       string        `db:"body" json:"body"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at" json:"updated_at"`
	Author     AuthorSummary `db:"author" json:"author"`
}
