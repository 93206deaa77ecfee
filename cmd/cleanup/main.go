package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/appointment"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/cache"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/clinic"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/config"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/db"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/logging"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/messaging"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.IsDev(), cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	logger = logger.Named("cleanup")
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	conn, err := db.Connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	publisher := messaging.PublisherInterface(messaging.NoopPublisher{})
	if cfg.RabbitMQURL != "" {
		p, err := messaging.NewPublisher(cfg.RabbitMQURL, logger)
		if err != nil {
			logger.Warn("RabbitMQ unavailable, expiry events are not published", zap.Error(err))
		} else {
			publisher = p
		}
	}
	defer publisher.Close()

	// The API's clinic cache is only reachable when it lives in Redis.
	var clinicCache cache.Cache = cache.NewMemory(cfg.CacheTTL)
	if cfg.CacheBackend == "redis" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPass, DB: cfg.RedisDB})
		defer client.Close()
		clinicCache = cache.NewRedis(client, cfg.ServiceName+":", cfg.CacheTTL)
	}

	appointments := appointment.NewService(appointment.NewRepository(conn),
		appointment.RulesFrom(cfg), nil, publisher, nil, logger.Named("appointment"))
	expired, err := appointments.ExpireStalePending(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("expire pending appointments: %w", err)
	}

	clinics := clinic.NewCleanupService(clinic.NewRepository(conn), clinicCache, logger.Named("clinic"))
	purged, err := clinics.PurgeDeletedClinics(ctx, cfg.ClinicRetention)
	if err != nil {
		return fmt.Errorf("purge deleted clinics: %w", err)
	}

	logger.Info("cleanup finished",
		zap.Int("appointments_expired", expired),
		zap.Int("clinics_purged", purged),
		zap.Duration("retention", cfg.ClinicRetention),
	)
	return nil
}
