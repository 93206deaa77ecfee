package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrTooManyAttempts = errors.New("too many attempts")

// Limiter admits or rejects an action for a subject.
type Limiter interface {
	Allow(ctx context.Context, subject string) error
}

// Window is a fixed-window counter in Redis: the first hit sets the key's
// expiry and every hit past limit inside the window is rejected.
type Window struct {
	redis  *redis.Client
	action string
	limit  int64
	window time.Duration
}

var _ Limiter = (*Window)(nil)

func NewWindow(client *redis.Client, action string, limit int, window time.Duration) *Window {
	return &Window{redis: client, action: action, limit: int64(limit), window: window}
}

func (w *Window) Allow(ctx context.Context, subject string) error {
	key := fmt.Sprintf("ratelimit:%s:%s", w.action, subject)

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := w.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("rate limit incr: %w", err)
	}
	// A counter without expiry would never reset, so any hit that finds one
	// sets it again.
	if ttl.Val() < 0 {
		if err := w.redis.Expire(ctx, key, w.window).Err(); err != nil {
			return fmt.Errorf("rate limit expire: %w", err)
		}
	}
	if incr.Val() > w.limit {
		return ErrTooManyAttempts
	}
	return nil
}

// Unlimited admits everything; used when Redis is not configured.
type Unlimited struct{}

func (Unlimited) Allow(context.Context, string) error { return nil }
