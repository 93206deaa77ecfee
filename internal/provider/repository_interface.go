package provider

import (
	"context"
	"time"
)

// RepositoryInterface defines the contract for provider persistence
type RepositoryInterface interface {
	Create(ctx context.Context, req CreateProviderRequest) (*Provider, error)
	Get(ctx context.Context, id string) (*Provider, error)
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]Provider, int, error)
	Update(ctx context.Context, id string, req UpdateProviderRequest) (*Provider, error)
	SoftDelete(ctx context.Context, id string, at time.Time) error
	HasUpcomingAppointments(ctx context.Context, id string) (bool, error)
	ReplaceServices(ctx context.Context, providerID string, serviceIDs []string) error
	ReplaceWorkingHours(ctx context.Context, providerID string, hours []WorkingHours) (clinicID string, err error)
	GetWorkingHours(ctx context.Context, providerID string) ([]WorkingHours, error)
}

var _ RepositoryInterface = (*Repository)(nil)
