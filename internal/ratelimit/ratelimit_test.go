package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindow_Allow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	l := NewWindow(client, "book", 2, time.Hour)

	require.NoError(t, l.Allow(ctx, "patient-1"))
	require.NoError(t, l.Allow(ctx, "patient-1"))
	assert.ErrorIs(t, l.Allow(ctx, "patient-1"), ErrTooManyAttempts)

	// other subjects have their own counter
	assert.NoError(t, l.Allow(ctx, "patient-2"))

	mr.FastForward(time.Hour + time.Second)
	assert.NoError(t, l.Allow(ctx, "patient-1"))
}

func TestWindow_AllowSetsExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	l := NewWindow(client, "book", 2, time.Hour)

	require.NoError(t, l.Allow(ctx, "patient-1"))
	assert.Equal(t, time.Hour, mr.TTL("ratelimit:book:patient-1"))

	require.NoError(t, l.Allow(ctx, "patient-1"))
	assert.Equal(t, time.Hour, mr.TTL("ratelimit:book:patient-1"), "later hits keep the window")
}

func TestWindow_AllowRepairsMissingExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	// a counter left behind without a TTL, e.g. after a failed EXPIRE
	require.NoError(t, mr.Set("ratelimit:book:patient-1", "5"))

	ctx := context.Background()
	l := NewWindow(client, "book", 2, time.Hour)

	assert.ErrorIs(t, l.Allow(ctx, "patient-1"), ErrTooManyAttempts)
	assert.Equal(t, time.Hour, mr.TTL("ratelimit:book:patient-1"))

	mr.FastForward(time.Hour + time.Second)
	assert.NoError(t, l.Allow(ctx, "patient-1"))
}

func TestWindow_AllowRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	mr.Close()

	l := NewWindow(client, "book", 2, time.Hour)
	err := l.Allow(context.Background(), "patient-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTooManyAttempts)
}

func TestUnlimited(t *testing.T) {
	var l Limiter = Unlimited{}
	for i := 0; i < 100; i++ {
		assert.NoError(t, l.Allow(context.Background(), "x"))
	}
}
