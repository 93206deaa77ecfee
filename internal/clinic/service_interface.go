package clinic

import (
	"context"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/pagination"
)

// ServiceInterface defines the contract for clinic business logic
type ServiceInterface interface {
	CreateClinic(ctx context.Context, req CreateClinicRequest) (*Clinic, error)
	GetClinic(ctx context.Context, id string) (*Clinic, error)
	UpdateClinic(ctx context.Context, id string, req UpdateClinicRequest) (*Clinic, error)
	DeleteClinic(ctx context.Context, id string) error
	ListClinics(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Page[Clinic], error)
	FindNearby(ctx context.Context, q NearbyQuery) ([]NearbyClinic, error)
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)
