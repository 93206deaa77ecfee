package catalog

import "time"

// MedicalService is a bookable service offered by a clinic.
type MedicalService struct {
	ID              string    `json:"id"`
	ClinicID        string    `json:"clinic_id"`
	Name            string    `json:"name"`
	Category        string    `json:"category"`
	Description     string    `json:"description,omitempty"`
	DurationMinutes int       `json:"duration_minutes"`
	PriceCents      int64     `json:"price_cents"`
	Currency        string    `json:"currency"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

const (
	MinDurationMinutes = 5
	MaxDurationMinutes = 480
	DefaultCurrency    = "EUR"
)

type CreateServiceRequest struct {
	ClinicID        string `json:"clinic_id" validate:"required,uuid"`
	Name            string `json:"name" validate:"required,max=200"`
	Category        string `json:"category" validate:"required,max=100"`
	Description     string `json:"description" validate:"max=2000"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,min=5,max=480"`
	PriceCents      *int64 `json:"price_cents" validate:"required,min=0"`
	Currency        string `json:"currency" validate:"omitempty,len=3,uppercase"`
	IsActive        *bool  `json:"is_active"`
}

type UpdateServiceRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=1,max=200"`
	Category        *string `json:"category" validate:"omitempty,min=1,max=100"`
	Description     *string `json:"description" validate:"omitempty,max=2000"`
	DurationMinutes *int    `json:"duration_minutes" validate:"omitempty,min=5,max=480"`
	PriceCents      *int64  `json:"price_cents" validate:"omitempty,min=0"`
	Currency        *string `json:"currency" validate:"omitempty,len=3,uppercase"`
	IsActive        *bool   `json:"is_active"`
}

func (r UpdateServiceRequest) empty() bool {
	return r.Name == nil && r.Category == nil && r.Description == nil &&
		r.DurationMinutes == nil && r.PriceCents == nil && r.Currency == nil && r.IsActive == nil
}

type ListFilter struct {
	ClinicID string
	Category string
	Search   string
	Active   *bool
}

// cacheKey identifies a list result; every filter field and page
// parameter takes part.
func (f ListFilter) cacheKey(page, limit int) string {
	active := "any"
	if f.Active != nil {
		if *f.Active {
			active = "true"
		} else {
			active = "false"
		}
	}
	return CachePrefix + "list:" + f.ClinicID + ":" + f.Category + ":" + active + ":" + f.Search +
		":" + itoa(page) + ":" + itoa(limit)
}

// Category is a service category with the number of active services in it.
type Category struct {
	Name     string `json:"name"`
	Services int    `json:"services"`
}
