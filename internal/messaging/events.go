package messaging

import (
	"time"

	"github.com/google/uuid"
)

// ServiceName identifies this service in event envelopes.
const ServiceName = "clinic-service"

// Event routing keys
const (
	EventClinicCreated = "clinic.created"
	EventClinicUpdated = "clinic.updated"
	EventClinicDeleted = "clinic.deleted"

	EventProviderScheduleUpdated = "provider.schedule_updated"

	EventAppointmentBooked      = "appointment.booked"
	EventAppointmentConfirmed   = "appointment.confirmed"
	EventAppointmentCancelled   = "appointment.cancelled"
	EventAppointmentCompleted   = "appointment.completed"
	EventAppointmentNoShow      = "appointment.no_show"
	EventAppointmentRescheduled = "appointment.rescheduled"

	EventInventoryLowStock = "inventory.low_stock"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventType   string    `json:"event_type"`
	EventID     string    `json:"event_id"`
	Timestamp   time.Time `json:"timestamp"`
	ServiceName string    `json:"service_name"`
}

// NewBaseEvent creates a base event with common fields
func NewBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventType:   eventType,
		EventID:     uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		ServiceName: ServiceName,
	}
}

type ClinicEvent struct {
	BaseEvent
	Data ClinicEventData `json:"data"`
}

type ClinicEventData struct {
	ClinicID  string    `json:"clinic_id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	IsActive  bool      `json:"is_active"`
	ChangedAt time.Time `json:"changed_at"`
}

type ProviderScheduleEvent struct {
	BaseEvent
	Data ProviderScheduleData `json:"data"`
}

type ProviderScheduleData struct {
	ProviderID string    `json:"provider_id"`
	ClinicID   string    `json:"clinic_id"`
	Windows    int       `json:"windows"`
	ChangedAt  time.Time `json:"changed_at"`
}

// AppointmentEvent is emitted on booking and on every status transition.
type AppointmentEvent struct {
	BaseEvent
	Data AppointmentEventData `json:"data"`
}

type AppointmentEventData struct {
	AppointmentID string    `json:"appointment_id"`
	PatientID     string    `json:"patient_id"`
	ProviderID    string    `json:"provider_id"`
	ClinicID      string    `json:"clinic_id"`
	ServiceID     string    `json:"service_id"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
	OldStatus     string    `json:"old_status,omitempty"`
	NewStatus     string    `json:"new_status"`
	Reason        string    `json:"reason,omitempty"`
	ReplacedByID  string    `json:"replaced_by_id,omitempty"`
	ChangedAt     time.Time `json:"changed_at"`
}

type LowStockEvent struct {
	BaseEvent
	Data LowStockData `json:"data"`
}

type LowStockData struct {
	ItemID       string    `json:"item_id"`
	ClinicID     string    `json:"clinic_id"`
	Name         string    `json:"name"`
	SKU          string    `json:"sku"`
	Quantity     int       `json:"quantity"`
	ReorderLevel int       `json:"reorder_level"`
	DetectedAt   time.Time `json:"detected_at"`
}
