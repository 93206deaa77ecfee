package appointment

import (
	"context"
	"time"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/pagination"
)

type ServiceInterface interface {
	Book(ctx context.Context, actor Actor, req BookRequest) (*Appointment, error)
	Confirm(ctx context.Context, actor Actor, id string) (*Appointment, error)
	Cancel(ctx context.Context, actor Actor, id, reason string) (*Appointment, error)
	Complete(ctx context.Context, actor Actor, id string) (*Appointment, error)
	MarkNoShow(ctx context.Context, actor Actor, id string) (*Appointment, error)
	Reschedule(ctx context.Context, actor Actor, id string, startsAt time.Time) (*Appointment, error)
	Get(ctx context.Context, actor Actor, id string) (*Appointment, error)
	List(ctx context.Context, actor Actor, filter ListFilter, params pagination.Params) (pagination.Page[Appointment], error)
	Availability(ctx context.Context, providerID, serviceID, date string) ([]Slot, error)
}

var _ ServiceInterface = (*Service)(nil)
