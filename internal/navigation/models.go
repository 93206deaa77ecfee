package navigation

import "github.com/WailSalutem-Health-Care/clinic-service/internal/geo"

type Mode string

const (
	ModeDriving Mode = "driving"
	ModeWalking Mode = "walking"
	ModeCycling Mode = "cycling"
)

// speeds are average km/h per travel mode.
var speeds = map[Mode]float64{
	ModeDriving: 40,
	ModeWalking: 5,
	ModeCycling: 15,
}

// ParseMode defaults an empty mode to driving.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeDriving, nil
	}
	m := Mode(s)
	if _, ok := speeds[m]; !ok {
		return "", ErrInvalidMode
	}
	return m, nil
}

// Route is a straight-line estimate between two points.
type Route struct {
	From            geo.Point   `json:"from"`
	To              geo.Point   `json:"to"`
	Mode            Mode        `json:"mode"`
	DistanceKm      float64     `json:"distance_km"`
	DurationMinutes int         `json:"duration_minutes"`
	Polyline        []geo.Point `json:"polyline"`
	ClinicID        string      `json:"clinic_id,omitempty"`
	ClinicName      string      `json:"clinic_name,omitempty"`
}
