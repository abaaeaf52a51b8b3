package timeslot

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidTimeSlot = errors.New("start time must be before end time")

type TimeSlot struct {
	start time.Time
	end   time.Time
}

func New(start, end time.Time) (TimeSlot, error) {
	if !start.Before(end) {
		return TimeSlot{}, ErrInvalidTimeSlot
	}
	return TimeSlot{start: start, end: end}, nil
}

// MustNew is for fixtures and generated occurrences whose bounds are already validated.
func MustNew(start, end time.Time) TimeSlot {
	ts, err := New(start, end)
	if err != nil {
		panic(err)
	}
	return ts
}

func (ts TimeSlot) Start() time.Time {
	return ts.start
}

func (ts TimeSlot) End() time.Time {
	return ts.end
}

func (ts TimeSlot) Duration() time.Duration {
	return ts.end.Sub(ts.start)
}

func (ts TimeSlot) IsZero() bool {
	return ts.start.IsZero() && ts.end.IsZero()
}

func (ts TimeSlot) Overlaps(other TimeSlot) bool {
	return Overlaps(ts.start, ts.end, other.start, other.end)
}

func (ts TimeSlot) Classify(other TimeSlot) OverlapKind {
	return ClassifyOverlap(ts.start, ts.end, other.start, other.end)
}

func (ts TimeSlot) Contains(t time.Time) bool {
	return !t.Before(ts.start) && t.Before(ts.end)
}

// Shift moves both bounds by d, preserving duration.
func (ts TimeSlot) Shift(d time.Duration) TimeSlot {
	return TimeSlot{start: ts.start.Add(d), end: ts.end.Add(d)}
}

// MeetsLeadTime reports whether the slot starts at least leadTime after now.
func (ts TimeSlot) MeetsLeadTime(now time.Time, leadTime time.Duration) bool {
	return !ts.start.Before(now.Add(leadTime))
}

// ToTstzrange renders the slot as a PostgreSQL tstzrange literal.
func (ts TimeSlot) ToTstzrange() string {
	return fmt.Sprintf("[%s,%s)", ts.start.UTC().Format(time.RFC3339Nano), ts.end.UTC().Format(time.RFC3339Nano))
}

func (ts TimeSlot) String() string {
	return ts.ToTstzrange()
}
