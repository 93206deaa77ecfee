package navigation

import (
	"context"
	"testing"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/clinic"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testClinicID = "7a3e6c1d-2b4f-4e8a-9c0d-5f1e2a3b4c5d"

var (
	amsterdam = geo.Point{Lat: 52.3676, Lng: 4.9041}
	rotterdam = geo.Point{Lat: 51.9244, Lng: 4.4777}
)

type stubLocator struct {
	clinic *clinic.Clinic
	err    error
}

func (s stubLocator) GetClinic(_ context.Context, id string) (*clinic.Clinic, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.clinic, nil
}

func TestRoute_SpeedsPerMode(t *testing.T) {
	svc := NewService(nil, zaptest.NewLogger(t))
	km := geo.DistanceKm(amsterdam, rotterdam)

	tests := []struct {
		mode  Mode
		speed float64
	}{
		{ModeDriving, 40},
		{ModeWalking, 5},
		{ModeCycling, 15},
	}
	for _, tc := range tests {
		t.Run(string(tc.mode), func(t *testing.T) {
			route, err := svc.Route(context.Background(), amsterdam, rotterdam, tc.mode)
			require.NoError(t, err)
			assert.InDelta(t, km, route.DistanceKm, 0.01)
			assert.InDelta(t, km/tc.speed*60, float64(route.DurationMinutes), 1)
			assert.Equal(t, []geo.Point{amsterdam, rotterdam}, route.Polyline)
		})
	}
}

func TestRoute_SamePoint(t *testing.T) {
	svc := NewService(nil, nil)

	route, err := svc.Route(context.Background(), amsterdam, amsterdam, ModeWalking)
	require.NoError(t, err)
	assert.Zero(t, route.DistanceKm)
	assert.Zero(t, route.DurationMinutes)
}

func TestRoute_Invalid(t *testing.T) {
	svc := NewService(nil, nil)

	_, err := svc.Route(context.Background(), geo.Point{Lat: 91}, rotterdam, ModeDriving)
	assert.ErrorIs(t, err, ErrInvalidPoint)

	_, err = svc.Route(context.Background(), amsterdam, rotterdam, Mode("flying"))
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeDriving, m)

	m, err = ParseMode("cycling")
	require.NoError(t, err)
	assert.Equal(t, ModeCycling, m)

	_, err = ParseMode("Driving")
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestRouteToClinic(t *testing.T) {
	loc := stubLocator{clinic: &clinic.Clinic{
		ID: testClinicID, Name: "Rotterdam Centrum", Latitude: rotterdam.Lat, Longitude: rotterdam.Lng,
	}}
	svc := NewService(loc, zaptest.NewLogger(t))

	route, err := svc.RouteToClinic(context.Background(), amsterdam, testClinicID, ModeDriving)
	require.NoError(t, err)
	assert.Equal(t, testClinicID, route.ClinicID)
	assert.Equal(t, "Rotterdam Centrum", route.ClinicName)
	assert.Equal(t, rotterdam, route.To)
}

func TestRouteToClinic_NotFound(t *testing.T) {
	svc := NewService(stubLocator{err: clinic.ErrClinicNotFound}, nil)

	_, err := svc.RouteToClinic(context.Background(), amsterdam, testClinicID, ModeDriving)
	assert.ErrorIs(t, err, clinic.ErrClinicNotFound)
}
