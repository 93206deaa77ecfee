package appointment

import (
	"strings"
	"time"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/auth"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusNoShow    Status = "no_show"
)

// transitions lists the statuses reachable from each non-terminal status.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled, StatusNoShow},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted, StatusNoShow:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
	_, ok := transitions[s]
	return !ok
}

// Active statuses hold a slot on the provider's calendar.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

// CanTransition reports whether from -> to is allowed.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Appointment struct {
	ID                 string     `json:"id"`
	PatientID          string     `json:"patient_id"`
	ProviderID         string     `json:"provider_id"`
	ClinicID           string     `json:"clinic_id"`
	ServiceID          string     `json:"service_id"`
	StartsAt           time.Time  `json:"starts_at"`
	EndsAt             time.Time  `json:"ends_at"`
	Status             Status     `json:"status"`
	Notes              string     `json:"notes,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`
	CancelledBy        string     `json:"cancelled_by,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	ConfirmedAt        *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
}

// Slot is a bookable time range.
type Slot struct {
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

func (s Slot) overlaps(start, end time.Time) bool {
	return s.StartsAt.Before(end) && start.Before(s.EndsAt)
}

type BookRequest struct {
	ProviderID string    `json:"provider_id" validate:"required,uuid"`
	ServiceID  string    `json:"service_id" validate:"required,uuid"`
	StartsAt   time.Time `json:"starts_at" validate:"required"`
	Notes      string    `json:"notes" validate:"max=1000"`
	// PatientID lets staff book on behalf of a patient. Ignored for patients.
	PatientID string `json:"patient_id" validate:"omitempty,max=255"`
}

type CancelRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type RescheduleRequest struct {
	StartsAt time.Time `json:"starts_at" validate:"required"`
}

type ListFilter struct {
	PatientID  string
	ProviderID string
	ClinicID   string
	Status     Status
	From       *time.Time
	To         *time.Time
}

// Actor is the caller performing an operation. Patients reach only their
// own appointments; scoped staff and providers only those of ClinicID.
type Actor struct {
	UserID      string
	PatientOnly bool
	Scoped      bool
	ClinicID    string
}

func ActorFrom(p *auth.Principal) Actor {
	a := Actor{UserID: p.UserID, PatientOnly: p.IsPatientOnly()}
	if !a.PatientOnly && !p.HasRole(auth.RoleAdmin) {
		a.Scoped = true
		a.ClinicID = p.ClinicID
	}
	return a
}

func (ac Actor) inClinic(clinicID string) bool {
	return ac.ClinicID != "" && strings.EqualFold(ac.ClinicID, clinicID)
}

// sees reports whether the actor may read or act on a.
func (ac Actor) sees(a *Appointment) bool {
	switch {
	case a.PatientID == ac.UserID:
		return true
	case ac.PatientOnly:
		return false
	case ac.Scoped:
		return ac.inClinic(a.ClinicID)
	}
	return true
}

// Draft is a booking request resolved to a patient.
type Draft struct {
	PatientID  string
	ProviderID string
	ServiceID  string
	StartsAt   time.Time
	Notes      string
}

// Window is a weekly working-hours window in minutes after local midnight.
type Window struct {
	Weekday int
	Start   int
	End     int
}

// Schedule is what booking and availability need to know about a
// provider and service pair.
type Schedule struct {
	ProviderID      string
	ClinicID        string
	ProviderActive  bool
	ServiceClinicID string
	ServiceActive   bool
	Duration        time.Duration
	Offers          bool
	Windows         []Window
}
