package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name string `json:"name"`
}

type hits struct{ hit, miss int }

func (h *hits) RecordCacheLookup(_ context.Context, _ string, hit bool) {
	if hit {
		h.hit++
	} else {
		h.miss++
	}
}

func newRedisCache(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client, "clinic:", time.Minute), mr
}

func backends(t *testing.T) map[string]Cache {
	r, _ := newRedisCache(t)
	return map[string]Cache{
		"memory": NewMemory(time.Minute),
		"redis":  r,
	}
}

func TestCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
			v, ok, err := c.Get(ctx, "a")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, []byte("1"), v)

			require.NoError(t, c.Delete(ctx, "a"))
			_, ok, err = c.Get(ctx, "a")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestCache_DeleteByPrefix(t *testing.T) {
	ctx := context.Background()
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, c.Set(ctx, "clinics:nearby:1", []byte("x"), 0))
			require.NoError(t, c.Set(ctx, "clinics:nearby:2", []byte("x"), 0))
			require.NoError(t, c.Set(ctx, "services:c1", []byte("y"), 0))

			require.NoError(t, c.DeleteByPrefix(ctx, "clinics:"))

			_, ok, _ := c.Get(ctx, "clinics:nearby:1")
			assert.False(t, ok)
			_, ok, _ = c.Get(ctx, "clinics:nearby:2")
			assert.False(t, ok)
			_, ok, _ = c.Get(ctx, "services:c1")
			assert.True(t, ok)
		})
	}
}

func TestRedis_Expires(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t)
	require.NoError(t, c.Set(ctx, "k", []byte("v"), 10*time.Second))
	assert.True(t, mr.Exists("clinic:k"))

	mr.FastForward(11 * time.Second)
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetOrLoad(t *testing.T) {
	ctx := context.Background()
	rec := &hits{}
	c := Instrument(NewMemory(time.Minute), "test", rec)

	calls := 0
	load := func(context.Context) ([]item, error) {
		calls++
		return []item{{Name: "north"}}, nil
	}

	first, err := GetOrLoad(ctx, c, "k", 0, load)
	require.NoError(t, err)
	second, err := GetOrLoad(ctx, c, "k", 0, load)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, rec.hit)
	assert.Equal(t, 1, rec.miss)
}

func TestGetOrLoad_LoadErrorIsNotCached(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)
	boom := errors.New("db down")

	_, err := GetOrLoad(ctx, c, "k", 0, func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())
}

func TestGetOrLoad_SurvivesBrokenRedis(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t)
	mr.Close()

	v, err := GetOrLoad(ctx, c, "k", 0, func(context.Context) (string, error) { return "fresh", nil })
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)
}
