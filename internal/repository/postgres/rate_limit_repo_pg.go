package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/foodieland/foodieland-api/internal/repository/ports"
)

type RateLimitRepository struct {
	db *sqlx.DB
}

func NewRateLimitRepo(db *sqlx.DB) *RateLimitRepository {
	return &RateLimitRepository{db: db}
}

// Hit is a single upsert so concurrent instances never lose a count.
func (r *RateLimitRepository) Hit(ctx context.Context, key string, now time.Time, window time.Duration) (int, time.Time, error) {
	const query = `
		INSERT INTO rate_limit_counters (bucket_key, hits, reset_at)
		VALUES ($1, 1, $3)
		ON CONFLICT (bucket_key) DO UPDATE
		SET hits = CASE WHEN rate_limit_counters.reset_at <= $2 THEN 1 ELSE rate_limit_counters.hits + 1 END,
		    reset_at = CASE WHEN rate_limit_counters.reset_at <= $2 THEN EXCLUDED.reset_at ELSE rate_limit_counters.reset_at END
		RETURNING hits, reset_at
	`
	var row struct {
		Hits    int       `db:"hits"`
		ResetAt time.Time `db:"reset_at"`
	}
	if err := r.db.QueryRowxContext(ctx, query, key, now, now.Add(window)).StructScan(&row); err != nil {
		return 0, time.Time{}, err
	}
	return row.Hits, row.ResetAt, nil
}

func (r *RateLimitRepository) Purge(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM rate_limit_counters WHERE reset_at <= $1`, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

var _ ports.RateLimitStore = (*RateLimitRepository)(nil)
