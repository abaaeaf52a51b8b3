package scheduling

import (
	"context"
	"time"

	"club-scheduler/internal/domain/recurrence"
	"club-scheduler/internal/domain/reservation"
	"club-scheduler/internal/domain/resource"
	"club-scheduler/internal/domain/timeslot"
	"club-scheduler/internal/pkg/errs"

	"github.com/google/uuid"
)

const (
	ReasonSlotConflict  = "time slot conflicts with existing reservations"
	DefaultHorizonDays  = 7
	maxSearchHorizonDay = 366
)

// ReservationLister is the read the checker needs from the reservation store.
type ReservationLister interface {
	ListOverlapping(ctx context.Context, resourceID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]*reservation.Reservation, error)
}

type AvailabilityResult struct {
	IsAvailable             bool
	ConflictReasons         []string
	ConflictingReservations []*reservation.Reservation
	NextAvailableSlot       *timeslot.TimeSlot
}

// AvailabilityChecker decides whether a resource can take a booking. It only
// reads; callers re-run it inside the write transaction before committing.
type AvailabilityChecker struct {
	horizonDays int
}

func NewAvailabilityChecker(horizonDays int) *AvailabilityChecker {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	if horizonDays > maxSearchHorizonDay {
		horizonDays = maxSearchHorizonDay
	}
	return &AvailabilityChecker{horizonDays: horizonDays}
}

// CheckAvailability evaluates slot against existing bookings and the
// resource rules. On failure it searches the following days, at the same
// local time-of-day and duration, for the first slot that passes.
func (c *AvailabilityChecker) CheckAvailability(
	ctx context.Context,
	reservations ReservationLister,
	res *resource.Resource,
	slot timeslot.TimeSlot,
	excludeID *uuid.UUID,
) (*AvailabilityResult, error) {
	if res == nil {
		return nil, errs.NotFound("resource not found")
	}
	if slot.IsZero() {
		return nil, errs.Mark(timeslot.ErrInvalidTimeSlot, errs.ErrValidation)
	}

	result, durationOnly, err := c.evaluate(ctx, reservations, res, slot, excludeID)
	if err != nil {
		return nil, err
	}
	if result.IsAvailable || durationOnly {
		// A different day cannot fix a duration that breaks the bounds.
		return result, nil
	}

	next, err := c.searchNext(ctx, reservations, res, slot, excludeID)
	if err != nil {
		return nil, err
	}
	result.NextAvailableSlot = next
	return result, nil
}

// evaluate runs the overlap, operating and duration checks once. durationOnly
// reports that the duration rules were the only ones broken.
func (c *AvailabilityChecker) evaluate(
	ctx context.Context,
	reservations ReservationLister,
	res *resource.Resource,
	slot timeslot.TimeSlot,
	excludeID *uuid.UUID,
) (*AvailabilityResult, bool, error) {
	existing, err := reservations.ListOverlapping(ctx, res.ID(), slot.Start(), slot.End(), excludeID)
	if err != nil {
		return nil, false, errs.Wrap(err, "failed to list overlapping reservations")
	}

	result := &AvailabilityResult{}
	for _, r := range existing {
		if !r.IsBlocking() || (excludeID != nil && r.ID() == *excludeID) {
			continue
		}
		if slot.Overlaps(r.Slot()) {
			result.ConflictingReservations = append(result.ConflictingReservations, r)
		}
	}
	if len(result.ConflictingReservations) > 0 {
		result.ConflictReasons = append(result.ConflictReasons, ReasonSlotConflict)
	}
	result.ConflictReasons = append(result.ConflictReasons, res.OperatingViolations(slot.Start(), slot.End())...)
	other := len(result.ConflictReasons)

	durationReasons := res.DurationViolations(slot.Duration())
	result.ConflictReasons = append(result.ConflictReasons, durationReasons...)

	result.IsAvailable = len(result.ConflictReasons) == 0
	return result, other == 0 && len(durationReasons) > 0, nil
}

func (c *AvailabilityChecker) searchNext(
	ctx context.Context,
	reservations ReservationLister,
	res *resource.Resource,
	slot timeslot.TimeSlot,
	excludeID *uuid.UUID,
) (*timeslot.TimeSlot, error) {
	loc := res.Location()
	duration := slot.Duration()
	endDate := slot.End().In(loc)

	for day := 0; day < c.horizonDays; day++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := recurrence.CombineDateTime(endDate.AddDate(0, 0, day), slot.Start(), loc)
		candidate, err := timeslot.New(start, start.Add(duration))
		if err != nil {
			return nil, err
		}
		if candidate.Start().Equal(slot.Start()) {
			continue
		}

		r, _, err := c.evaluate(ctx, reservations, res, candidate, excludeID)
		if err != nil {
			return nil, err
		}
		if r.IsAvailable {
			return &candidate, nil
		}
	}
	return nil, nil
}
