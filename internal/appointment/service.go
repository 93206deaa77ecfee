package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/messaging"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/pagination"
	"github.com/WailSalutem-Health-Care/clinic-service/internal/ratelimit"
	"go.uber.org/zap"
)

// MetricsRecorder is the subset of telemetry.Metrics the service records to.
type MetricsRecorder interface {
	RecordAppointmentOperation(ctx context.Context, action, status string)
	RecordBookingConflict(ctx context.Context, reason string)
}

type noopMetrics struct{}

func (noopMetrics) RecordAppointmentOperation(context.Context, string, string) {}
func (noopMetrics) RecordBookingConflict(context.Context, string)              {}

var eventKeys = map[Status]string{
	StatusPending:   messaging.EventAppointmentBooked,
	StatusConfirmed: messaging.EventAppointmentConfirmed,
	StatusCancelled: messaging.EventAppointmentCancelled,
	StatusCompleted: messaging.EventAppointmentCompleted,
	StatusNoShow:    messaging.EventAppointmentNoShow,
}

// conflictReasons label booking rejections in metrics.
var conflictReasons = map[error]string{
	ErrSlotUnavailable:     "slot_taken",
	ErrPatientOverlap:      "patient_overlap",
	ErrOutsideWorkingHours: "outside_hours",
	ErrTooSoon:             "lead_time",
	ErrMisaligned:          "misaligned",
	ErrRateLimited:         "rate_limited",
}

type Service struct {
	repo      RepositoryInterface
	rules     Rules
	limiter   ratelimit.Limiter
	publisher messaging.PublisherInterface
	metrics   MetricsRecorder
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(repo RepositoryInterface, rules Rules, limiter ratelimit.Limiter, publisher messaging.PublisherInterface, metrics MetricsRecorder, logger *zap.Logger) *Service {
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:      repo,
		rules:     rules,
		limiter:   limiter,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Book reserves a slot for the caller, or for req.PatientID when staff book
// on a patient's behalf.
func (s *Service) Book(ctx context.Context, actor Actor, req BookRequest) (*Appointment, error) {
	patientID := actor.UserID
	if !actor.PatientOnly && req.PatientID != "" {
		patientID = req.PatientID
	}

	if err := s.limiter.Allow(ctx, patientID); err != nil {
		if errors.Is(err, ratelimit.ErrTooManyAttempts) {
			s.metrics.RecordBookingConflict(ctx, conflictReasons[ErrRateLimited])
			return nil, ErrRateLimited
		}
		// limiter outages do not block bookings
		s.logger.Warn("rate limiter unavailable", zap.Error(err))
	}

	now := s.now()
	a, err := s.repo.Book(ctx, Draft{
		PatientID:  patientID,
		ProviderID: req.ProviderID,
		ServiceID:  req.ServiceID,
		StartsAt:   req.StartsAt,
		Notes:      req.Notes,
	}, func(sch Schedule) (time.Time, error) {
		if actor.Scoped && patientID != actor.UserID && !actor.inClinic(sch.ClinicID) {
			return time.Time{}, ErrProviderNotFound
		}
		return s.rules.CheckBooking(sch, req.StartsAt, now)
	})
	if err != nil {
		s.recordConflict(ctx, err)
		return nil, err
	}

	s.logger.Info("appointment booked",
		zap.String("appointment_id", a.ID),
		zap.String("provider_id", a.ProviderID),
		zap.String("patient_id", a.PatientID),
		zap.Time("starts_at", a.StartsAt))
	s.metrics.RecordAppointmentOperation(ctx, "book", string(a.Status))
	s.publish(ctx, messaging.EventAppointmentBooked, a, "", "", "")
	return a, nil
}

func (s *Service) Confirm(ctx context.Context, actor Actor, id string) (*Appointment, error) {
	return s.transition(ctx, "confirm", id, func(a *Appointment, now time.Time) error {
		if !actor.sees(a) {
			return ErrAppointmentNotFound
		}
		if !CanTransition(a.Status, StatusConfirmed) {
			return ErrInvalidTransition
		}
		if !now.Before(a.StartsAt) {
			return ErrAlreadyStarted
		}
		a.Status = StatusConfirmed
		a.ConfirmedAt = &now
		return nil
	}, "")
}

// Cancel frees the slot. Patients may cancel only their own appointments and
// only up to the cancellation cutoff.
func (s *Service) Cancel(ctx context.Context, actor Actor, id, reason string) (*Appointment, error) {
	return s.transition(ctx, "cancel", id, func(a *Appointment, now time.Time) error {
		if !actor.sees(a) {
			return ErrAppointmentNotFound
		}
		if actor.PatientOnly && a.Status.Active() && !s.rules.CancelAllowed(a.StartsAt, now) {
			return ErrCancelCutoff
		}
		if !CanTransition(a.Status, StatusCancelled) {
			return ErrInvalidTransition
		}
		a.Status = StatusCancelled
		a.CancellationReason = reason
		a.CancelledBy = actor.UserID
		a.CancelledAt = &now
		return nil
	}, reason)
}

func (s *Service) Complete(ctx context.Context, actor Actor, id string) (*Appointment, error) {
	return s.transition(ctx, "complete", id, func(a *Appointment, now time.Time) error {
		if !actor.sees(a) {
			return ErrAppointmentNotFound
		}
		if !CanTransition(a.Status, StatusCompleted) {
			return ErrInvalidTransition
		}
		if now.Before(a.StartsAt) {
			return ErrNotStarted
		}
		a.Status = StatusCompleted
		a.CompletedAt = &now
		return nil
	}, "")
}

func (s *Service) MarkNoShow(ctx context.Context, actor Actor, id string) (*Appointment, error) {
	return s.transition(ctx, "no_show", id, func(a *Appointment, now time.Time) error {
		if !actor.sees(a) {
			return ErrAppointmentNotFound
		}
		if !CanTransition(a.Status, StatusNoShow) {
			return ErrInvalidTransition
		}
		if now.Before(a.StartsAt) {
			return ErrNotStarted
		}
		a.Status = StatusNoShow
		return nil
	}, "")
}

func (s *Service) transition(ctx context.Context, action, id string, apply func(a *Appointment, now time.Time) error, reason string) (*Appointment, error) {
	now := s.now()
	var previous Status
	a, err := s.repo.Transition(ctx, id, now, func(a *Appointment) error {
		previous = a.Status
		return apply(a, now)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("appointment status changed",
		zap.String("appointment_id", a.ID),
		zap.String("action", action),
		zap.String("from", string(previous)),
		zap.String("to", string(a.Status)))
	s.metrics.RecordAppointmentOperation(ctx, action, string(a.Status))
	s.publish(ctx, eventKeys[a.Status], a, previous, reason, "")
	return a, nil
}

// Reschedule cancels the appointment and books the new start in one
// transaction. The original keeps reason "rescheduled" and points to the
// replacement in its event.
func (s *Service) Reschedule(ctx context.Context, actor Actor, id string, startsAt time.Time) (*Appointment, error) {
	now := s.now()
	var previous Status
	original, replacement, err := s.repo.Reschedule(ctx, id, startsAt, actor.UserID, now,
		func(orig *Appointment, sch Schedule) (time.Time, error) {
			previous = orig.Status
			if !actor.sees(orig) {
				return time.Time{}, ErrAppointmentNotFound
			}
			if actor.PatientOnly && orig.Status.Active() && !s.rules.CancelAllowed(orig.StartsAt, now) {
				return time.Time{}, ErrCancelCutoff
			}
			if !CanTransition(orig.Status, StatusCancelled) {
				return time.Time{}, ErrInvalidTransition
			}
			return s.rules.CheckBooking(sch, startsAt, now)
		})
	if err != nil {
		s.recordConflict(ctx, err)
		return nil, err
	}

	s.logger.Info("appointment rescheduled",
		zap.String("appointment_id", original.ID),
		zap.String("replacement_id", replacement.ID),
		zap.Time("starts_at", replacement.StartsAt))
	s.metrics.RecordAppointmentOperation(ctx, "reschedule", string(replacement.Status))
	s.publish(ctx, messaging.EventAppointmentCancelled, original, previous, original.CancellationReason, replacement.ID)
	s.publish(ctx, messaging.EventAppointmentRescheduled, replacement, "", "", "")
	return replacement, nil
}

func (s *Service) Get(ctx context.Context, actor Actor, id string) (*Appointment, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.sees(a) {
		return nil, ErrAppointmentNotFound
	}
	return a, nil
}

// List pages through appointments; patients only ever see their own and
// scoped staff only their clinic's.
func (s *Service) List(ctx context.Context, actor Actor, filter ListFilter, params pagination.Params) (pagination.Page[Appointment], error) {
	params.Validate()
	switch {
	case actor.PatientOnly:
		filter.PatientID = actor.UserID
	case actor.Scoped:
		if actor.ClinicID == "" {
			return pagination.NewPage([]Appointment{}, params, 0), nil
		}
		if filter.ClinicID != "" && !actor.inClinic(filter.ClinicID) {
			return pagination.NewPage([]Appointment{}, params, 0), nil
		}
		filter.ClinicID = actor.ClinicID
	}
	items, total, err := s.repo.List(ctx, filter, params.Limit, params.CalculateOffset())
	if err != nil {
		return pagination.Page[Appointment]{}, fmt.Errorf("failed to list appointments: %w", err)
	}
	return pagination.NewPage(items, params, total), nil
}

func (s *Service) recordConflict(ctx context.Context, err error) {
	for target, reason := range conflictReasons {
		if errors.Is(err, target) {
			s.metrics.RecordBookingConflict(ctx, reason)
			return
		}
	}
}

func (s *Service) publish(ctx context.Context, key string, a *Appointment, old Status, reason, replacedBy string) {
	event := messaging.AppointmentEvent{
		BaseEvent: messaging.NewBaseEvent(key),
		Data: messaging.AppointmentEventData{
			AppointmentID: a.ID,
			PatientID:     a.PatientID,
			ProviderID:    a.ProviderID,
			ClinicID:      a.ClinicID,
			ServiceID:     a.ServiceID,
			StartsAt:      a.StartsAt,
			EndsAt:        a.EndsAt,
			OldStatus:     string(old),
			NewStatus:     string(a.Status),
			Reason:        reason,
			ReplacedByID:  replacedBy,
			ChangedAt:     a.UpdatedAt,
		},
	}
	messaging.PublishBestEffort(ctx, s.publisher, s.logger, key, event)
}
