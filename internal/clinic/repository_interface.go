package clinic

import (
	"context"
	"time"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/geo"
)

// RepositoryInterface defines the contract for clinic data access
type RepositoryInterface interface {
	Create(ctx context.Context, req CreateClinicRequest) (*Clinic, error)
	Get(ctx context.Context, id string) (*Clinic, error)
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]Clinic, int, error)
	Update(ctx context.Context, id string, req UpdateClinicRequest) (*Clinic, error)
	SoftDelete(ctx context.Context, id string, at time.Time) error
	HasActiveAppointments(ctx context.Context, id string) (bool, error)
	FindNearby(ctx context.Context, center geo.Point, radiusKm float64, limit int) ([]NearbyClinic, error)
	PurgeDeleted(ctx context.Context, before time.Time) ([]string, error)
}

var _ RepositoryInterface = (*Repository)(nil)
