package domain

import (
	"time"

	"github.com/google/uuid"
)

type BlogPost struct {
	ID         uuid.UUID     `db:"id" json:"id"`
	UserID     uuid.UUID     `db:"user_id" json:"-"`
	Title      string        `db:"title" json:"title"`
	Slug       string        `db:"slug" json:"slug"`
	Excerpt    *string       `db:"excerpt" json:"excerpt"`
	Content    string        `db:"content" json:"content"`
	ImageURL   *string       `db:"image_url" json:"image_url"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at" json:"updated_at"`
	Author     AuthorSummary `db:"author" json:"author"`
	Categories []Category    `db:"-" json:"categories"`
	Tags       []Tag         `db:"-" json:"tags"`
	Comments   []Comment     `db:"-" json:"comments,omitempty"`
}

type BlogPostFilter struct {
	AuthorID *uuid.UUID
	Limit    int
	Offset   int
}

type BlogPostDraft struct {
	Title    *string
	Slug     *string
	Excerpt  *string
	Content  *string
	ImageURL *string
}
