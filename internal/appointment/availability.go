package appointment

import (
	"context"
	"time"
)

const dateLayout = "2006-01-02"

// Availability lists open slots for a provider and service on a local date.
func (s *Service) Availability(ctx context.Context, providerID, serviceID, date string) ([]Slot, error) {
	day, err := time.ParseInLocation(dateLayout, date, s.rules.loc())
	if err != nil {
		return nil, ErrInvalidDate
	}

	sch, err := s.repo.Schedule(ctx, providerID, serviceID)
	if err != nil {
		return nil, err
	}
	if !sch.ProviderActive {
		return nil, ErrProviderInactive
	}
	if !sch.ServiceActive || !sch.Offers || sch.ServiceClinicID != sch.ClinicID {
		return nil, ErrServiceNotOffered
	}

	y, m, d := day.Date()
	next := time.Date(y, m, d+1, 0, 0, 0, 0, s.rules.loc())
	busy, err := s.repo.Busy(ctx, providerID, day, next)
	if err != nil {
		return nil, err
	}
	return s.rules.Slots(day, *sch, busy, s.now().Add(s.rules.MinLeadTime)), nil
}
