package clinic

import "time"

type Clinic struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	Phone        string    `json:"phone,omitempty"`
	Email        string    `json:"email,omitempty"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	OpeningHours string    `json:"opening_hours,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NearbyClinic is a clinic annotated with its distance from the search point.
type NearbyClinic struct {
	Clinic
	DistanceKm float64 `json:"distance_km"`
}

type CreateClinicRequest struct {
	Name         string   `json:"name" validate:"required,max=200"`
	Description  string   `json:"description" validate:"max=2000"`
	Address      string   `json:"address" validate:"required,max=300"`
	City         string   `json:"city" validate:"required,max=120"`
	Phone        string   `json:"phone" validate:"omitempty,max=32"`
	Email        string   `json:"email" validate:"omitempty,email"`
	Latitude     *float64 `json:"latitude" validate:"required,latitude"`
	Longitude    *float64 `json:"longitude" validate:"required,longitude"`
	OpeningHours string   `json:"opening_hours" validate:"max=500"`
	IsActive     *bool    `json:"is_active"`
}

// UpdateClinicRequest is a partial update; nil fields are left unchanged.
type UpdateClinicRequest struct {
	Name         *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Description  *string  `json:"description" validate:"omitempty,max=2000"`
	Address      *string  `json:"address" validate:"omitempty,min=1,max=300"`
	City         *string  `json:"city" validate:"omitempty,min=1,max=120"`
	Phone        *string  `json:"phone" validate:"omitempty,max=32"`
	Email        *string  `json:"email" validate:"omitempty,email"`
	Latitude     *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude    *float64 `json:"longitude" validate:"omitempty,longitude"`
	OpeningHours *string  `json:"opening_hours" validate:"omitempty,max=500"`
	IsActive     *bool    `json:"is_active"`
}

func (r UpdateClinicRequest) empty() bool {
	return r.Name == nil && r.Description == nil && r.Address == nil && r.City == nil &&
		r.Phone == nil && r.Email == nil && r.Latitude == nil && r.Longitude == nil &&
		r.OpeningHours == nil && r.IsActive == nil
}

type ListFilter struct {
	Search string
	Active *bool
}

// NearbyQuery describes a distance search. Zero RadiusKm and Limit take
// their defaults.
type NearbyQuery struct {
	Lat      float64
	Lng      float64
	RadiusKm float64
	Limit    int
}

const (
	DefaultRadiusKm = 10.0
	MaxRadiusKm     = 200.0
	DefaultNearby   = 20
	MaxNearby       = 100
)

// normalize applies defaults and clamps the query into its allowed range.
func (q NearbyQuery) normalize() NearbyQuery {
	if q.RadiusKm <= 0 {
		q.RadiusKm = DefaultRadiusKm
	}
	if q.RadiusKm > MaxRadiusKm {
		q.RadiusKm = MaxRadiusKm
	}
	if q.Limit <= 0 {
		q.Limit = DefaultNearby
	}
	if q.Limit > MaxNearby {
		q.Limit = MaxNearby
	}
	return q
}
