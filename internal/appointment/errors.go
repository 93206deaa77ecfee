package appointment

import "errors"

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrProviderNotFound    = errors.New("provider not found")
	ErrServiceNotFound     = errors.New("service not found")
	ErrProviderInactive    = errors.New("provider is not accepting bookings")
	ErrServiceNotOffered   = errors.New("provider does not offer this service")
	ErrTooSoon             = errors.New("appointment starts too soon")
	ErrMisaligned          = errors.New("start time is not aligned to the booking slot grid")
	ErrOutsideWorkingHours = errors.New("requested time is outside the provider's working hours")
	ErrSlotUnavailable     = errors.New("requested time slot is no longer available")
	ErrPatientOverlap      = errors.New("patient already has an appointment at this time")
	ErrInvalidTransition   = errors.New("appointment status does not allow this action")
	ErrNotStarted          = errors.New("appointment has not started yet")
	ErrAlreadyStarted      = errors.New("appointment has already started")
	ErrCancelCutoff        = errors.New("appointment can no longer be cancelled online")
	ErrRateLimited         = errors.New("too many bookings, try again later")
	ErrInvalidDate         = errors.New("date must be formatted as YYYY-MM-DD")
)
