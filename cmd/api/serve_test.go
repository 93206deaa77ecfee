package main

import (
	"testing"
	"time"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/cache"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/config"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/messaging"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/ratelimit"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func testConfig() *config.Config {
	return &config.Config{
		ServiceName:     "clinic-service",
		CacheBackend:    "memory",
		CacheTTL:        time.Minute,
		BookingsPerHour: 10,
	}
}

func TestNewCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cfg := testConfig()
	assert.IsType(t, &cache.Memory{}, newCache(cfg, client))

	cfg.CacheBackend = "redis"
	assert.IsType(t, &cache.Redis{}, newCache(cfg, client))
	assert.IsType(t, &cache.Memory{}, newCache(cfg, nil))
}

func TestNewLimiter(t *testing.T) {
	logger := zaptest.NewLogger(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cfg := testConfig()
	assert.IsType(t, ratelimit.Unlimited{}, newLimiter(cfg, nil, logger))
	assert.IsType(t, &ratelimit.Window{}, newLimiter(cfg, client, logger))

	cfg.BookingsPerHour = 0
	assert.IsType(t, ratelimit.Unlimited{}, newLimiter(cfg, client, logger))
}

func TestNewPublisher_WithoutBroker(t *testing.T) {
	cfg := testConfig()
	assert.IsType(t, messaging.NoopPublisher{}, newPublisher(cfg, zaptest.NewLogger(t)))
}

func TestRootCommand(t *testing.T) {
	root := newRootCommand()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "migrate"}, names)

	migrate, _, err := root.Find([]string{"migrate", "down"})
	assert.NoError(t, err)
	assert.Equal(t, "down", migrate.Name())
	assert.NotNil(t, migrate.Flags().Lookup("steps"))
}
