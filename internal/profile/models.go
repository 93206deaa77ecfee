package profile

import "time"

// Profile holds a user's personal details. ID is the token subject.
type Profile struct {
	ID                    string    `json:"id"`
	FullName              string    `json:"full_name"`
	Email                 string    `json:"email,omitempty"`
	Phone                 string    `json:"phone,omitempty"`
	DateOfBirth           string    `json:"date_of_birth,omitempty"` // YYYY-MM-DD
	Gender                string    `json:"gender,omitempty"`
	Address               string    `json:"address,omitempty"`
	EmergencyContactName  string    `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone string    `json:"emergency_contact_phone,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// User is the authenticated account behind a profile.
type User struct {
	ID       string   `json:"id"`
	Email    string   `json:"email,omitempty"`
	Roles    []string `json:"roles"`
	ClinicID string   `json:"clinic_id,omitempty"`
}

// UpsertProfileRequest creates or partially updates the caller's profile.
// Omitted fields keep their stored value.
type UpsertProfileRequest struct {
	FullName              *string `json:"full_name" validate:"omitempty,max=200"`
	Email                 *string `json:"email" validate:"omitempty,email"`
	Phone                 *string `json:"phone" validate:"omitempty,max=32"`
	DateOfBirth           *string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Gender                *string `json:"gender" validate:"omitempty,oneof=female male other unspecified"`
	Address               *string `json:"address" validate:"omitempty,max=300"`
	EmergencyContactName  *string `json:"emergency_contact_name" validate:"omitempty,max=200"`
	EmergencyContactPhone *string `json:"emergency_contact_phone" validate:"omitempty,max=32"`
}

type ListFilter struct {
	Search string
}
