package navigation

import (
	"context"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/geo"
)

type ServiceInterface interface {
	Route(ctx context.Context, from, to geo.Point, mode Mode) (*Route, error)
	RouteToClinic(ctx context.Context, from geo.Point, clinicID string, mode Mode) (*Route, error)
}

var _ ServiceInterface = (*Service)(nil)
