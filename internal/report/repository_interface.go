package report

import (
	"context"
	"time"
)

type RepositoryInterface interface {
	CountByStatus(ctx context.Context, clinicID string, p Period) (map[string]int, error)
	RevenueByClinic(ctx context.Context, p Period) ([]ClinicRevenue, error)
	TopServices(ctx context.Context, p Period, limit int) ([]ServiceUsage, error)
	InventoryValuation(ctx context.Context, clinicID string, today time.Time) (*InventoryValuation, error)
}
