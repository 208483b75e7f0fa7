package service

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrValidation is wrapped with field detail by every service.
	ErrValidation = errors.New("validation failed")
	ErrForbidden  = errors.New("this action is unauthorized")

	// ErrSlugConflict is returned when every slug candidate was claimed by a
	// concurrent write.
	ErrSlugConflict = errors.New("the slug is being used by another request, please retry")
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func normalizeString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Page is one slice of a paginated listing. Page numbers start at 1.
type Page[T any] struct {
	Items   []T
	Total   int64
	Page    int
	PerPage int
}

func (p Page[T]) LastPage() int {
	if p.PerPage <= 0 || p.Total == 0 {
		return 1
	}
	return int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
}

const maxPerPage = 100

// pageWindow clamps page and perPage and returns the SQL limit and offset.
func pageWindow(page, perPage, defaultPerPage int) (int, int, int, int) {
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	if page <= 0 {
		page = 1
	}
	return page, perPage, perPage, (page - 1) * perPage
}
