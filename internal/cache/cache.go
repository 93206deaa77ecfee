package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Cache stores serialized values under string keys.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// HitRecorder receives cache lookup outcomes.
type HitRecorder interface {
	RecordCacheLookup(ctx context.Context, cacheName string, hit bool)
}

// GetOrLoad returns the cached value for key, or calls load and caches its
// result for ttl. Cache failures are logged and never fail the call.
func GetOrLoad[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if raw, ok, err := c.Get(ctx, key); err == nil && ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
	} else if err != nil {
		logger(ctx).Warn("cache get failed", zap.String("key", key), zap.Error(err))
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return v, fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := c.Set(ctx, key, raw, ttl); err != nil {
		logger(ctx).Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return v, nil
}

// Invalidate drops every key under prefix, logging failures.
func Invalidate(ctx context.Context, c Cache, prefix string) {
	if err := c.DeleteByPrefix(ctx, prefix); err != nil {
		logger(ctx).Warn("cache invalidation failed", zap.String("prefix", prefix), zap.Error(err))
	}
}

type loggerKey struct{}

// WithLogger attaches a logger used for cache warnings.
func WithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func logger(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.L()
}

type instrumented struct {
	Cache
	name string
	rec  HitRecorder
}

// Instrument wraps c so every Get reports a hit or miss to rec.
func Instrument(c Cache, name string, rec HitRecorder) Cache {
	if rec == nil {
		return c
	}
	return &instrumented{Cache: c, name: name, rec: rec}
}

func (i *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok, err := i.Cache.Get(ctx, key)
	if err == nil {
		i.rec.RecordCacheLookup(ctx, i.name, ok)
	}
	return v, ok, err
}
