package appointment

import (
	"time"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/config"
)

// Rules are the booking constraints shared by booking and availability.
type Rules struct {
	SlotStep     time.Duration
	MinLeadTime  time.Duration
	CancelCutoff time.Duration
	Location     *time.Location
}

func RulesFrom(cfg *config.Config) Rules {
	return Rules{
		SlotStep:     cfg.SlotStep,
		MinLeadTime:  cfg.MinLeadTime,
		CancelCutoff: cfg.CancelCutoff,
		Location:     cfg.Location(),
	}
}

func (r Rules) loc() *time.Location {
	if r.Location == nil {
		return time.UTC
	}
	return r.Location
}

func (r Rules) stepMinutes() int {
	if m := int(r.SlotStep / time.Minute); m > 0 {
		return m
	}
	return 1
}

// Aligned reports whether t falls on the slot grid, counted in local
// wall-clock minutes from midnight.
func (r Rules) Aligned(t time.Time) bool {
	local := t.In(r.loc())
	if local.Second() != 0 || local.Nanosecond() != 0 {
		return false
	}
	return (local.Hour()*60+local.Minute())%r.stepMinutes() == 0
}

// WithinWorkingHours reports whether [start, end) fits inside one window
// on the local weekday of start.
func (r Rules) WithinWorkingHours(windows []Window, start, end time.Time) bool {
	ls, le := start.In(r.loc()), end.In(r.loc())
	if y1, m1, d1 := ls.Date(); true {
		y2, m2, d2 := le.Date()
		if y1 != y2 || m1 != m2 || d1 != d2 {
			return false
		}
	}
	startMin := ls.Hour()*60 + ls.Minute()
	endMin := le.Hour()*60 + le.Minute()
	weekday := int(ls.Weekday())

	for _, w := range windows {
		if w.Weekday == weekday && w.Start <= startMin && endMin <= w.End {
			return true
		}
	}
	return false
}

// CheckBooking validates a start time against a schedule and returns the
// end time.
func (r Rules) CheckBooking(s Schedule, startsAt, now time.Time) (time.Time, error) {
	if !s.ProviderActive {
		return time.Time{}, ErrProviderInactive
	}
	if !s.ServiceActive || !s.Offers || s.ServiceClinicID != s.ClinicID {
		return time.Time{}, ErrServiceNotOffered
	}
	if startsAt.Before(now.Add(r.MinLeadTime)) {
		return time.Time{}, ErrTooSoon
	}
	if !r.Aligned(startsAt) {
		return time.Time{}, ErrMisaligned
	}
	endsAt := startsAt.Add(s.Duration)
	if !r.WithinWorkingHours(s.Windows, startsAt, endsAt) {
		return time.Time{}, ErrOutsideWorkingHours
	}
	return endsAt, nil
}

// CancelAllowed reports whether a patient may still cancel an appointment
// starting at startsAt.
func (r Rules) CancelAllowed(startsAt, now time.Time) bool {
	return !now.After(startsAt.Add(-r.CancelCutoff))
}

// Slots lists bookable slots on the local date of day. A slot starts on the
// grid inside a working window, ends inside the same window, starts no
// earlier than earliest and does not overlap busy.
func (r Rules) Slots(day time.Time, s Schedule, busy []Slot, earliest time.Time) []Slot {
	loc := r.loc()
	y, m, d := day.In(loc).Date()
	weekday := int(time.Date(y, m, d, 12, 0, 0, 0, loc).Weekday())
	step := r.stepMinutes()
	duration := int(s.Duration / time.Minute)

	slots := []Slot{}
	if duration <= 0 {
		return slots
	}
	for _, w := range s.Windows {
		if w.Weekday != weekday {
			continue
		}
		first := (w.Start + step - 1) / step * step
		for t := first; t+duration <= w.End; t += step {
			start := time.Date(y, m, d, t/60, t%60, 0, 0, loc)
			// wall times skipped by a DST jump normalise onto later slots
			if hh, mm, _ := start.Clock(); hh*60+mm != t {
				continue
			}
			end := start.Add(s.Duration)
			if start.Before(earliest) {
				continue
			}
			if overlapsAny(busy, start, end) {
				continue
			}
			slots = append(slots, Slot{StartsAt: start, EndsAt: end})
		}
	}
	return slots
}

func overlapsAny(busy []Slot, start, end time.Time) bool {
	for _, b := range busy {
		if b.overlaps(start, end) {
			return true
		}
	}
	return false
}
