package appointment

import (
	"context"
	"time"
)

// PlanFunc validates a booking against the schedule read under the
// provider lock and returns the end time.
type PlanFunc func(s Schedule) (time.Time, error)

// ReplanFunc is PlanFunc for a reschedule; it also sees the locked original.
type ReplanFunc func(original *Appointment, s Schedule) (time.Time, error)

// ApplyFunc mutates a locked appointment; returning an error aborts the
// transaction.
type ApplyFunc func(a *Appointment) error

type RepositoryInterface interface {
	Book(ctx context.Context, d Draft, plan PlanFunc) (*Appointment, error)
	Reschedule(ctx context.Context, id string, startsAt time.Time, cancelledBy string, at time.Time, plan ReplanFunc) (original, replacement *Appointment, err error)
	Transition(ctx context.Context, id string, at time.Time, apply ApplyFunc) (*Appointment, error)
	Get(ctx context.Context, id string) (*Appointment, error)
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]Appointment, int, error)
	Schedule(ctx context.Context, providerID, serviceID string) (*Schedule, error)
	Busy(ctx context.Context, providerID string, from, to time.Time) ([]Slot, error)
	ExpirePending(ctx context.Context, now time.Time) ([]Appointment, error)
}
