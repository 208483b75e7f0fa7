package ports

import (
	"context"
	"time"
)

// RateLimitStore is a fixed-window counter shared by every API instance.
type RateLimitStore interface {
	// Hit counts one attempt on key and returns the hits in the current window
	// and when that window resets. An elapsed window restarts at now.
	Hit(ctx context.Context, key string, now time.Time, window time.Duration) (int, time.Time, error)
	Purge(ctx context.Context, before time.Time) (int64, error)
}
