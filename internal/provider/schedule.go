package provider

import (
	"fmt"
	"sort"
	"time"

	"github.com/WailSalutem-Health-Care/clinic-service/internal/validation"
)

// Minutes converts an "HH:MM" clock time to minutes after midnight.
func Minutes(hhmm string) (int, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", hhmm, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// NormalizeWindows checks every window has start < end and that windows on
// the same weekday do not overlap. Touching windows (09:00-12:00,
// 12:00-17:00) are allowed. The result is sorted by weekday and start.
func NormalizeWindows(in []WorkingHoursInput) ([]WorkingHours, error) {
	type window struct {
		idx        int
		weekday    int
		start, end int
	}

	windows := make([]window, 0, len(in))
	for i, h := range in {
		if h.Weekday == nil {
			return nil, validation.NewError(fmt.Sprintf("hours[%d].weekday", i), "required")
		}
		start, err := Minutes(h.StartTime)
		if err != nil {
			return nil, validation.NewError(fmt.Sprintf("hours[%d].start_time", i), "hhmm")
		}
		end, err := Minutes(h.EndTime)
		if err != nil {
			return nil, validation.NewError(fmt.Sprintf("hours[%d].end_time", i), "hhmm")
		}
		if start >= end {
			return nil, validation.NewError(fmt.Sprintf("hours[%d].end_time", i), "gtfield=start_time")
		}
		windows = append(windows, window{idx: i, weekday: *h.Weekday, start: start, end: end})
	}

	sort.SliceStable(windows, func(a, b int) bool {
		if windows[a].weekday != windows[b].weekday {
			return windows[a].weekday < windows[b].weekday
		}
		return windows[a].start < windows[b].start
	})

	out := make([]WorkingHours, 0, len(windows))
	for i, w := range windows {
		if i > 0 && windows[i-1].weekday == w.weekday && windows[i-1].end > w.start {
			return nil, validation.NewError(fmt.Sprintf("hours[%d]", w.idx), "overlap")
		}
		out = append(out, WorkingHours{
			Weekday:   w.weekday,
			StartTime: in[w.idx].StartTime,
			EndTime:   in[w.idx].EndTime,
		})
	}
	return out, nil
}
