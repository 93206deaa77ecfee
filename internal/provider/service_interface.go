package provider

import (
	"context"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/pagination"
)

type ServiceInterface interface {
	CreateProvider(ctx context.Context, req CreateProviderRequest) (*Provider, error)
	GetProvider(ctx context.Context, id string) (*Provider, error)
	UpdateProvider(ctx context.Context, id string, req UpdateProviderRequest) (*Provider, error)
	DeleteProvider(ctx context.Context, id string) error
	ListProviders(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Page[Provider], error)
	SetServices(ctx context.Context, providerID string, serviceIDs []string) (*Provider, error)
	SetWorkingHours(ctx context.Context, providerID string, hours []WorkingHoursInput) ([]WorkingHours, error)
	GetWorkingHours(ctx context.Context, providerID string) ([]WorkingHours, error)
}

var _ ServiceInterface = (*Service)(nil)
