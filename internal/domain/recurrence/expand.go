package recurrence

import (
	"slices"
	"time"

	"club-scheduler/internal/domain/timeslot"
)

// DefaultLimit bounds a single expansion when the caller sets no cap.
const DefaultLimit = 730

type Options struct {
	// Location used for calendar arithmetic; time-of-day is preserved in it
	// across DST changes. Defaults to UTC.
	Location *time.Location
	// Limit is a safety cap applied on top of the pattern's own bounds.
	Limit int
}

// Expand lists the slots of a pattern starting at first, which is itself the
// first candidate. Weekly windows are Monday-anchored calendar weeks; an
// empty weekday set means first's weekday. Monthly dates past the end of a
// short month clamp to its last day.
func Expand(p Pattern, first timeslot.TimeSlot, opts Options) ([]timeslot.TimeSlot, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if !p.IsRecurring() {
		return nil, ErrNotRecurring
	}
	if first.IsZero() {
		return nil, timeslot.ErrInvalidTimeSlot
	}

	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if p.MaxOccurrences != nil && *p.MaxOccurrences < limit {
		limit = *p.MaxOccurrences
	}

	start := first.Start().In(loc)
	duration := first.Duration()
	out := make([]timeslot.TimeSlot, 0, min(limit, 64))

	// emit appends s and reports whether generation should continue.
	emit := func(s time.Time) bool {
		if p.EndDate != nil && s.After(*p.EndDate) {
			return false
		}
		out = append(out, timeslot.MustNew(s, s.Add(duration)))
		return len(out) < limit
	}

	switch p.Type {
	case TypeDaily:
		for k := 0; ; k++ {
			if !emit(start.AddDate(0, 0, k*p.Interval)) {
				break
			}
		}
	case TypeWeekly:
		expandWeekly(p, start, emit)
	case TypeMonthly:
		expandMonthly(p, start, loc, emit)
	}
	return out, nil
}

func expandWeekly(p Pattern, start time.Time, emit func(time.Time) bool) {
	days := normalizeWeekdays(p.Weekdays)
	if len(days) == 0 {
		days = []time.Weekday{start.Weekday()}
	}
	slices.SortFunc(days, func(a, b time.Weekday) int {
		return mondayOffset(a) - mondayOffset(b)
	})

	monday := start.AddDate(0, 0, -mondayOffset(start.Weekday()))
	for week := 0; ; week += p.Interval {
		for _, d := range days {
			s := monday.AddDate(0, 0, week*7+mondayOffset(d))
			if s.Before(start) {
				continue
			}
			if !emit(s) {
				return
			}
		}
	}
}

func expandMonthly(p Pattern, start time.Time, loc *time.Location, emit func(time.Time) bool) {
	y, m, d := start.Date()
	hh, mm, ss := start.Clock()
	ns := start.Nanosecond()
	for k := 0; ; k++ {
		months := int(m) - 1 + k*p.Interval
		year := y + months/12
		month := time.Month(months%12 + 1)
		day := min(d, daysIn(year, month))
		if !emit(time.Date(year, month, day, hh, mm, ss, ns, loc)) {
			return
		}
	}
}

func mondayOffset(d time.Weekday) int {
	return (int(d) + 6) % 7
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// CombineDateTime places the time-of-day of clock on the calendar date of
// date, both read in loc.
func CombineDateTime(date, clock time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := date.In(loc).Date()
	c := clock.In(loc)
	return time.Date(y, m, d, c.Hour(), c.Minute(), c.Second(), c.Nanosecond(), loc)
}
