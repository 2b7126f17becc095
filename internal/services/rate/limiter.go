package rate

import (
	"context"
	"fmt"
	"time"
)

const window = time.Minute

// WindowStore counts events within a fixed window. IncrementWindow returns the
// count including the current event and the time left until the window closes.
type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// LimitedError reports a refused event and how long the caller should wait.
type LimitedError struct {
	RetryAfterSec int64
}

func (e *LimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry in %ds", e.RetryAfterSec)
}

// Limiter throttles the two abuse-prone entry points: credential guessing via
// login and code flooding via OTP generation. A zero limit disables that check.
type Limiter struct {
	store          WindowStore
	loginPerMinute int
	codesPerMinute int
}

func NewLimiter(store WindowStore, loginPerMinute, codesPerMinute int) *Limiter {
	if loginPerMinute < 0 {
		loginPerMinute = 0
	}
	if codesPerMinute < 0 {
		codesPerMinute = 0
	}

	return &Limiter{
		store:          store,
		loginPerMinute: loginPerMinute,
		codesPerMinute: codesPerMinute,
	}
}

func (l *Limiter) AllowLogin(ctx context.Context, username string) error {
	return l.check(ctx, "rate:login:"+username, l.loginPerMinute)
}

func (l *Limiter) AllowGenerate(ctx context.Context, subject, purpose string) error {
	return l.check(ctx, "rate:otp:"+subject+"|"+purpose, l.codesPerMinute)
}

func (l *Limiter) check(ctx context.Context, key string, limit int) error {
	if limit <= 0 {
		return nil
	}
	if l.store == nil {
		return fmt.Errorf("rate limiter store is nil")
	}

	count, ttl, err := l.store.IncrementWindow(ctx, key, window)
	if err != nil {
		return fmt.Errorf("increment rate window: %w", err)
	}
	if count > int64(limit) {
		return &LimitedError{RetryAfterSec: ceilSeconds(ttl)}
	}

	return nil
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 1
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	return sec
}
