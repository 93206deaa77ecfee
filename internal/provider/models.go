package provider

import "time"

type Provider struct {
	ID         string    `json:"id"`
	ClinicID   string    `json:"clinic_id"`
	FullName   string    `json:"full_name"`
	Specialty  string    `json:"specialty"`
	Email      string    `json:"email,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	Bio        string    `json:"bio,omitempty"`
	IsActive   bool      `json:"is_active"`
	ServiceIDs []string  `json:"service_ids"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// WorkingHours is one weekly availability window. Weekday follows
// time.Weekday (0 = Sunday); times are "HH:MM" in the clinic time zone.
type WorkingHours struct {
	ID         string `json:"id"`
	ProviderID string `json:"provider_id"`
	Weekday    int    `json:"weekday"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
}

type CreateProviderRequest struct {
	ClinicID   string   `json:"clinic_id" validate:"required,uuid"`
	FullName   string   `json:"full_name" validate:"required,max=200"`
	Specialty  string   `json:"specialty" validate:"required,max=120"`
	Email      string   `json:"email" validate:"omitempty,email"`
	Phone      string   `json:"phone" validate:"omitempty,max=32"`
	Bio        string   `json:"bio" validate:"max=4000"`
	IsActive   *bool    `json:"is_active"`
	ServiceIDs []string `json:"service_ids" validate:"omitempty,dive,uuid"`
}

type UpdateProviderRequest struct {
	FullName  *string `json:"full_name" validate:"omitempty,min=1,max=200"`
	Specialty *string `json:"specialty" validate:"omitempty,min=1,max=120"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone" validate:"omitempty,max=32"`
	Bio       *string `json:"bio" validate:"omitempty,max=4000"`
	IsActive  *bool   `json:"is_active"`
}

func (r UpdateProviderRequest) empty() bool {
	return r.FullName == nil && r.Specialty == nil && r.Email == nil &&
		r.Phone == nil && r.Bio == nil && r.IsActive == nil
}

type SetServicesRequest struct {
	ServiceIDs []string `json:"service_ids" validate:"dive,uuid"`
}

type WorkingHoursInput struct {
	Weekday   *int   `json:"weekday" validate:"required,weekday"`
	StartTime string `json:"start_time" validate:"required,hhmm"`
	EndTime   string `json:"end_time" validate:"required,hhmm"`
}

type SetWorkingHoursRequest struct {
	Hours []WorkingHoursInput `json:"hours" validate:"max=70,dive"`
}

type ListFilter struct {
	ClinicID  string
	Specialty string
	ServiceID string
	Search    string
	Active    *bool
}
