package catalog

import (
	"context"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/pagination"
)

type ServiceInterface interface {
	CreateService(ctx context.Context, req CreateServiceRequest) (*MedicalService, error)
	GetService(ctx context.Context, id string) (*MedicalService, error)
	UpdateService(ctx context.Context, id string, req UpdateServiceRequest) (*MedicalService, error)
	DeleteService(ctx context.Context, id string) error
	ListServices(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Page[MedicalService], error)
	ListCategories(ctx context.Context, clinicID string) ([]Category, error)
}

var _ ServiceInterface = (*Service)(nil)
