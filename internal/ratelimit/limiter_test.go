package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(c *clock) *Limiter {
	return NewLimiter(NewMemoryStore(), WithClock(c.Now))
}

func TestLimiterSixthAttemptIsRejected(t *testing.T) {
	c := &clock{now: time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)}
	limiter := newTestLimiter(c)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		res, err := limiter.Attempt(ctx, ActionLogin, "10.0.0.1")
		require.NoError(t, err)
		assert.Truef(t, res.Allowed, "attempt %d should be allowed", i)
		assert.Equal(t, 5-i, res.Remaining)
		c.Advance(5 * time.Second)
	}

	res, err := limiter.Attempt(ctx, ActionLogin, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, 35*time.Second, res.RetryAfter)
}

func TestLimiterWindowResets(t *testing.T) {
	c := &clock{now: time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)}
	limiter := newTestLimiter(c)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		_, err := limiter.Attempt(ctx, ActionVerifyOTP, "10.0.0.2")
		require.NoError(t, err)
	}
	c.Advance(time.Minute)

	res, err := limiter.Attempt(ctx, ActionVerifyOTP, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 4, res.Remaining)
}

func TestLimiterKeysAreScopedByActionAndIP(t *testing.T) {
	c := &clock{now: time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)}
	limiter := newTestLimiter(c)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := limiter.Attempt(ctx, ActionLogin, "10.0.0.3")
		require.NoError(t, err)
	}

	other, err := limiter.Attempt(ctx, ActionResendOTP, "10.0.0.3")
	require.NoError(t, err)
	assert.True(t, other.Allowed, "a different action has its own budget")

	otherIP, err := limiter.Attempt(ctx, ActionLogin, "10.0.0.4")
	require.NoError(t, err)
	assert.True(t, otherIP.Allowed, "a different client has its own budget")

	assert.Equal(t, "login:10.0.0.3", Key(ActionLogin, " 10.0.0.3 "))
}

func TestLimiterConcurrentAttemptsShareOneCounter(t *testing.T) {
	c := &clock{now: time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)}
	limiter := newTestLimiter(c)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := limiter.Attempt(ctx, ActionLogin, "10.0.0.5")
			if err == nil && res.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, DefaultMaxAttempts, allowed)
}

type failingStore struct{ MemoryStore }

func (*failingStore) Hit(context.Context, string, time.Time, time.Duration) (int, time.Time, error) {
	return 0, time.Time{}, errors.New("store offline")
}

func TestLimiterPropagatesStoreErrors(t *testing.T) {
	limiter := NewLimiter(&failingStore{})
	_, err := limiter.Attempt(context.Background(), ActionLogin, "10.0.0.6")
	require.Error(t, err)
}

func TestMemoryStorePurge(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)
	ctx := context.Background()

	_, _, err := store.Hit(ctx, "login:a", now, time.Minute)
	require.NoError(t, err)
	_, _, err = store.Hit(ctx, "login:b", now.Add(30*time.Second), time.Minute)
	require.NoError(t, err)

	removed, err := store.Purge(ctx, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}
