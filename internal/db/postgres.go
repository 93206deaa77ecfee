package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/config"
	"github.com/XSAM/otelsql"
	_ "github.com/lib/pq"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.uber.org/zap"
)

// Connect opens a PostgreSQL pool with OpenTelemetry instrumentation.
// Sessions run in UTC; zone conversion happens in the application.
func Connect(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*sql.DB, error) {
	attrs := otelsql.WithAttributes(
		semconv.DBSystemPostgreSQL,
		semconv.DBName(cfg.DBName),
	)

	db, err := otelsql.Open("postgres", cfg.DSN()+" TimeZone=UTC", attrs)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := otelsql.RegisterDBStatsMetrics(db, attrs); err != nil {
		logger.Warn("failed to register database stats metrics", zap.Error(err))
	}

	db.SetMaxOpenConns(cfg.DBMaxOpen)
	db.SetMaxIdleConns(cfg.DBMaxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("connected to PostgreSQL",
		zap.String("host", cfg.DBHost),
		zap.String("database", cfg.DBName),
	)
	return db, nil
}
