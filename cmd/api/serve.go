package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/appointment"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/auth"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/cache"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/config"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/db"
	httpserver "github.com/WailSalutem-Health-Care/clinic-service/internal/http"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/messaging"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/ratelimit"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCommand() *cobra.Command {
	var migrateFirst bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, migrateFirst)
		},
	}
	cmd.Flags().BoolVar(&migrateFirst, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func serve(ctx context.Context, migrateFirst bool) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	tp, err := telemetry.InitProvider(ctx, telemetry.ConfigFrom(cfg, version), logger)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	conn, err := db.Connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	if migrateFirst {
		m, err := db.NewMigrator(conn, logger.Named("migrate"))
		if err != nil {
			return err
		}
		if err := m.Up(); err != nil {
			return err
		}
	}

	perms, err := auth.LoadPermissions(cfg.PermissionsFile)
	if err != nil {
		return err
	}
	keys, err := auth.NewJWKS(ctx, cfg.AuthJWKSURL, cfg.JWKSRefreshInterval, logger)
	if err != nil {
		return fmt.Errorf("load JWKS: %w", err)
	}
	defer keys.Close()
	verifier := auth.NewVerifier(auth.ConfigFrom(cfg), keys)

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
	}

	publisher := newPublisher(cfg, logger)
	defer publisher.Close()

	router := httpserver.SetupRouter(httpserver.Dependencies{
		DB:          conn,
		Verifier:    verifier,
		Permissions: perms,
		Publisher:   publisher,
		Cache:       newCache(cfg, redisClient),
		CacheTTL:    cfg.CacheTTL,
		Limiter:     newLimiter(cfg, redisClient, logger),
		Rules:       appointment.RulesFrom(cfg),
		Metrics:     metrics,
		Logger:      logger,
		ServiceName: cfg.ServiceName,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpserver.CORSMiddleware(cfg.CORSOrigins)(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("clinic-service listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newPublisher falls back to a no-op publisher so the API keeps serving
// when the broker is absent or unreachable.
func newPublisher(cfg *config.Config, logger *zap.Logger) messaging.PublisherInterface {
	if cfg.RabbitMQURL == "" {
		logger.Info("RABBITMQ_URL not set, events are not published")
		return messaging.NoopPublisher{}
	}
	p, err := messaging.NewPublisher(cfg.RabbitMQURL, logger)
	if err != nil {
		logger.Warn("RabbitMQ unavailable, events are not published", zap.Error(err))
		return messaging.NoopPublisher{}
	}
	return p
}

func newCache(cfg *config.Config, client *redis.Client) cache.Cache {
	if cfg.CacheBackend == "redis" && client != nil {
		return cache.NewRedis(client, cfg.ServiceName+":", cfg.CacheTTL)
	}
	return cache.NewMemory(cfg.CacheTTL)
}

func newLimiter(cfg *config.Config, client *redis.Client, logger *zap.Logger) ratelimit.Limiter {
	if client == nil || cfg.BookingsPerHour <= 0 {
		logger.Info("booking rate limit disabled")
		return ratelimit.Unlimited{}
	}
	return ratelimit.NewWindow(client, "book", cfg.BookingsPerHour, time.Hour)
}
