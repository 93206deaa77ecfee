// Package geo holds great-circle helpers shared by clinic search and
// navigation.
package geo

import "math"

const EarthRadiusKm = 6371.0

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lng float64 `json:"lng" validate:"longitude"`
}

// Valid reports whether p lies inside the WGS84 ranges.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// DistanceKm returns the haversine distance between a and b.
func DistanceKm(a, b Point) float64 {
	lat1, lat2 := radians(a.Lat), radians(b.Lat)
	dLat := lat2 - lat1
	dLng := radians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Box is a latitude/longitude rectangle.
type Box struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// BoundingBox returns a rectangle containing every point within radiusKm of
// center. Near the poles the longitude span widens to the full circle.
func BoundingBox(center Point, radiusKm float64) Box {
	dLat := degrees(radiusKm / EarthRadiusKm)
	b := Box{
		MinLat: math.Max(-90, center.Lat-dLat),
		MaxLat: math.Min(90, center.Lat+dLat),
		MinLng: -180,
		MaxLng: 180,
	}
	// Half-width of the circle's longitude extent: asin(sin(r/R) / cos(lat)).
	// When the ratio reaches 1 the circle covers a pole.
	cos := math.Cos(radians(center.Lat))
	if cos > 1e-6 {
		ratio := math.Sin(radiusKm/EarthRadiusKm) / cos
		if ratio < 1 && center.Lat+dLat < 90 && center.Lat-dLat > -90 {
			dLng := degrees(math.Asin(ratio))
			b.MinLng = center.Lng - dLng
			b.MaxLng = center.Lng + dLng
		}
	}
	return b
}

// CrossesAntimeridian reports whether the box wraps past +/-180.
func (b Box) CrossesAntimeridian() bool {
	return b.MinLng < -180 || b.MaxLng > 180
}

func radians(d float64) float64 { return d * math.Pi / 180 }
func degrees(r float64) float64 { return r * 180 / math.Pi }
