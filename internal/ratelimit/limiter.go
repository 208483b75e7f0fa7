package ratelimit

import (
	"context"
	"strings"
	"time"

	"github.com/foodieland/foodieland-api/internal/repository/ports"
)

const (
	DefaultMaxAttempts = 5
	DefaultWindow      = time.Minute
)

const (
	ActionLogin          = "login"
	ActionVerifyOTP      = "verify-otp"
	ActionResendOTP      = "resend-otp"
	ActionForgotPassword = "forgot-password"
	ActionResetPassword  = "reset-password"
)

type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
	ResetAt    time.Time
}

// Limiter allows up to maxAttempts hits per key inside a fixed window. Every
// attempt counts, whether or not the guarded operation later succeeds.
type Limiter struct {
	store       ports.RateLimitStore
	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

type Option func(*Limiter)

func WithMaxAttempts(n int) Option {
	return func(l *Limiter) {
		if n > 0 {
			l.maxAttempts = n
		}
	}
}

func WithWindow(d time.Duration) Option {
	return func(l *Limiter) {
		if d > 0 {
			l.window = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

func NewLimiter(store ports.RateLimitStore, opts ...Option) *Limiter {
	l := &Limiter{
		store:       store,
		maxAttempts: DefaultMaxAttempts,
		window:      DefaultWindow,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func Key(action, clientIP string) string {
	return action + ":" + strings.TrimSpace(clientIP)
}

func (l *Limiter) Attempt(ctx context.Context, action, clientIP string) (Result, error) {
	now := l.now()
	hits, resetAt, err := l.store.Hit(ctx, Key(action, clientIP), now, l.window)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Allowed:   hits <= l.maxAttempts,
		Remaining: l.maxAttempts - hits,
		ResetAt:   resetAt,
	}
	if result.Remaining < 0 {
		result.Remaining = 0
	}
	if !result.Allowed {
		result.RetryAfter = resetAt.Sub(now)
		if result.RetryAfter < 0 {
			result.RetryAfter = 0
		}
	}
	return result, nil
}

func (l *Limiter) MaxAttempts() int {
	return l.maxAttempts
}

// Purge drops counters whose window has elapsed.
func (l *Limiter) Purge(ctx context.Context) (int64, error) {
	return l.store.Purge(ctx, l.now())
}
