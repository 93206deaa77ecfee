package navigation

import (
	"context"
	"math"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/clinic"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/geo"
	"go.uber.org/zap"
)

// ClinicLocator resolves a clinic to its coordinates.
type ClinicLocator interface {
	GetClinic(ctx context.Context, id string) (*clinic.Clinic, error)
}

type Service struct {
	clinics ClinicLocator
	logger  *zap.Logger
}

func NewService(clinics ClinicLocator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{clinics: clinics, logger: logger}
}

func (s *Service) Route(_ context.Context, from, to geo.Point, mode Mode) (*Route, error) {
	if !from.Valid() || !to.Valid() {
		return nil, ErrInvalidPoint
	}
	speed, ok := speeds[mode]
	if !ok {
		return nil, ErrInvalidMode
	}

	km := geo.DistanceKm(from, to)
	return &Route{
		From:            from,
		To:              to,
		Mode:            mode,
		DistanceKm:      math.Round(km*100) / 100,
		DurationMinutes: int(math.Ceil(km / speed * 60)),
		Polyline:        []geo.Point{from, to},
	}, nil
}

// RouteToClinic fails with clinic.ErrClinicNotFound for unknown or deleted clinics.
func (s *Service) RouteToClinic(ctx context.Context, from geo.Point, clinicID string, mode Mode) (*Route, error) {
	c, err := s.clinics.GetClinic(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	route, err := s.Route(ctx, from, geo.Point{Lat: c.Latitude, Lng: c.Longitude}, mode)
	if err != nil {
		return nil, err
	}
	route.ClinicID = c.ID
	route.ClinicName = c.Name

	s.logger.Debug("route to clinic",
		zap.String("clinic_id", c.ID),
		zap.String("mode", string(mode)),
		zap.Float64("distance_km", route.DistanceKm),
	)
	return route, nil
}
