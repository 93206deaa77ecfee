package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	amsterdam = Point{Lat: 52.3676, Lng: 4.9041}
	rotterdam = Point{Lat: 51.9244, Lng: 4.4777}
)

func TestDistanceKm(t *testing.T) {
	assert.InDelta(t, 57.0, DistanceKm(amsterdam, rotterdam), 1.0)
	assert.InDelta(t, DistanceKm(amsterdam, rotterdam), DistanceKm(rotterdam, amsterdam), 1e-9)
	assert.Equal(t, 0.0, DistanceKm(amsterdam, amsterdam))
	// a quarter of the equator
	assert.InDelta(t, 10007.5, DistanceKm(Point{0, 0}, Point{0, 90}), 1.0)
}

func TestBoundingBox_ContainsRadius(t *testing.T) {
	b := BoundingBox(amsterdam, 60)
	assert.True(t, rotterdam.Lat >= b.MinLat && rotterdam.Lat <= b.MaxLat)
	assert.True(t, rotterdam.Lng >= b.MinLng && rotterdam.Lng <= b.MaxLng)
	assert.False(t, b.CrossesAntimeridian())

	small := BoundingBox(amsterdam, 10)
	assert.False(t, rotterdam.Lat >= small.MinLat && rotterdam.Lat <= small.MaxLat)
}

func TestBoundingBox_ContainsRadius_HighLatitude(t *testing.T) {
	center := Point{Lat: 80, Lng: 0}
	b := BoundingBox(center, 200)

	edge := Point{Lat: 79.99, Lng: 10.363}
	assert.Less(t, DistanceKm(center, edge), 200.0)
	assert.True(t, edge.Lng <= b.MaxLng, "MaxLng=%f", b.MaxLng)

	// every point east of the box along the sampled latitudes is out of range
	for lat := 78.3; lat <= 81.7; lat += 0.05 {
		p := Point{Lat: lat, Lng: b.MaxLng + 0.001}
		assert.Greater(t, DistanceKm(center, p), 200.0, "lat %f", lat)
	}
}

func TestBoundingBox_Edges(t *testing.T) {
	pole := BoundingBox(Point{Lat: 89.9, Lng: 0}, 50)
	assert.Equal(t, 90.0, pole.MaxLat)
	assert.Equal(t, -180.0, pole.MinLng)
	assert.Equal(t, 180.0, pole.MaxLng)

	fiji := BoundingBox(Point{Lat: -17.7, Lng: 179.9}, 50)
	assert.True(t, fiji.CrossesAntimeridian())
}

func TestPoint_Valid(t *testing.T) {
	assert.True(t, amsterdam.Valid())
	assert.False(t, Point{Lat: 91}.Valid())
	assert.False(t, Point{Lng: -181}.Valid())
}
