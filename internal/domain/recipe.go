package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty accepts any casing of easy, medium or hard.
func ParseDifficulty(value string) (Difficulty, bool) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(value))); d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, true
	default:
		return "", false
	}
}

type Recipe struct {
	ID             uuid.UUID     `db:"id" json:"id"`
	UserID         uuid.UUID     `db:"user_id" json:"-"`
	Title          string        `db:"title" json:"title"`
	Slug           string        `db:"slug" json:"slug"`
	Description    string        `db:"description" json:"description"`
	PrepTime       int           `db:"prep_time" json:"prep_time"`
	CookTime       int           `db:"cook_time" json:"cook_time"`
	Difficulty     Difficulty    `db:"difficulty" json:"difficulty"`
	Ingredients    StringList    `db:"ingredients" json:"ingredients"`
	Instructions   StringList    `db:"instructions" json:"instructions"`
	NutritionFacts JSONDocument  `db:"nutrition_facts" json:"nutrition_facts"`
	ImageURL       *string       `db:"image_url" json:"image_url"`
	FavoritesCount int64         `db:"favorites_count" json:"favorites_count"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
	Author         AuthorSummary `db:"author" json:"author"`
	Categories     []Category    `db:"-" json:"categories"`
	Tags           []Tag         `db:"-" json:"tags"`
	Comments       []Comment     `db:"-" json:"comments,omitempty"`
	IsFavorited    *bool         `db:"-" json:"is_favorited,omitempty"`
}

type RecipeFilter struct {
	Search       string
	CategorySlug string
	AuthorID     *uuid.UUID
	Limit        int
	Offset       int
}

// RecipeDraft carries validated recipe fields. Nil pointers and nil slices mean
// "leave unchanged" on update.
type RecipeDraft struct {
	Title          *string
	Slug           *string
	Description    *string
	PrepTime       *int
	CookTime       *int
	Difficulty     *Difficulty
	Ingredients    StringList
	Instructions   StringList
	NutritionFacts JSONDocument
	ImageURL       *string
}
