package catalog

import (
	"context"
	"time"
)

// RepositoryInterface defines the contract for service persistence
type RepositoryInterface interface {
	Create(ctx context.Context, req CreateServiceRequest) (*MedicalService, error)
	Get(ctx context.Context, id string) (*MedicalService, error)
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]MedicalService, int, error)
	Update(ctx context.Context, id string, req UpdateServiceRequest) (*MedicalService, error)
	SoftDelete(ctx context.Context, id string, at time.Time) error
	ListCategories(ctx context.Context, clinicID string) ([]Category, error)
}

var _ RepositoryInterface = (*Repository)(nil)
