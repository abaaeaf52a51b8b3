package reservation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"club-scheduler/internal/domain/timeslot"

	"github.com/google/uuid"
)

var (
	ErrInvalidPartySize  = errors.New("party size must be at least 1")
	ErrNotesTooLong      = errors.New("notes are too long (max 1000 characters)")
	ErrInvalidTransition = errors.New("invalid reservation status transition")
)

const MaxNotesLength = 1000

type Reservation struct {
	id           uuid.UUID
	resourceID   uuid.UUID
	memberID     uuid.UUID
	slot         timeslot.TimeSlot
	status       Status
	partySize    int
	notes        string
	createdAt    time.Time
	updatedAt    time.Time
	checkedInAt  *time.Time
	checkedOutAt *time.Time
	cancelledAt  *time.Time
}

// NewReservation creates a Confirmed reservation. Availability is the
// caller's concern; this only enforces shape.
func NewReservation(resourceID, memberID uuid.UUID, slot timeslot.TimeSlot, partySize int, notes string, now time.Time) (*Reservation, error) {
	if slot.IsZero() {
		return nil, timeslot.ErrInvalidTimeSlot
	}
	if partySize < 1 {
		return nil, ErrInvalidPartySize
	}
	notes = strings.TrimSpace(notes)
	if len(notes) > MaxNotesLength {
		return nil, ErrNotesTooLong
	}
	return &Reservation{
		id:         uuid.New(),
		resourceID: resourceID,
		memberID:   memberID,
		slot:       slot,
		status:     StatusConfirmed,
		partySize:  partySize,
		notes:      notes,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

type Timestamps struct {
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CheckedInAt  *time.Time
	CheckedOutAt *time.Time
	CancelledAt  *time.Time
}

func ReconstructReservation(
	id, resourceID, memberID uuid.UUID,
	slot timeslot.TimeSlot,
	status Status,
	partySize int,
	notes string,
	ts Timestamps,
) *Reservation {
	return &Reservation{
		id:           id,
		resourceID:   resourceID,
		memberID:     memberID,
		slot:         slot,
		status:       status,
		partySize:    partySize,
		notes:        notes,
		createdAt:    ts.CreatedAt,
		updatedAt:    ts.UpdatedAt,
		checkedInAt:  ts.CheckedInAt,
		checkedOutAt: ts.CheckedOutAt,
		cancelledAt:  ts.CancelledAt,
	}
}

func transitionErr(from Status, action string) error {
	return fmt.Errorf("%w: cannot %s a %s reservation", ErrInvalidTransition, action, from)
}

// CheckIn is allowed from window before start until end.
func (r *Reservation) CheckIn(now time.Time, window time.Duration) error {
	if r.status != StatusConfirmed {
		return transitionErr(r.status, "check in")
	}
	if now.Before(r.slot.Start().Add(-window)) {
		return fmt.Errorf("%w: check-in opens %d minutes before start", ErrInvalidTransition, int(window/time.Minute))
	}
	if !now.Before(r.slot.End()) {
		return fmt.Errorf("%w: reservation has already ended", ErrInvalidTransition)
	}
	r.status = StatusCheckedIn
	r.checkedInAt = &now
	r.updatedAt = now
	return nil
}

func (r *Reservation) CheckOut(now time.Time) error {
	if r.status != StatusCheckedIn {
		return transitionErr(r.status, "check out")
	}
	r.status = StatusCheckedOut
	r.checkedOutAt = &now
	r.updatedAt = now
	return nil
}

func (r *Reservation) Cancel(now time.Time) error {
	if r.status != StatusPending && r.status != StatusConfirmed {
		return transitionErr(r.status, "cancel")
	}
	r.status = StatusCancelled
	r.cancelledAt = &now
	r.updatedAt = now
	return nil
}

// Sweep advances a reservation whose slot has passed: Confirmed turns into
// NoShow once grace has elapsed after end; CheckedIn/CheckedOut become
// Completed after end. It reports whether the status changed.
func (r *Reservation) Sweep(now time.Time, grace time.Duration) bool {
	switch r.status {
	case StatusConfirmed:
		if r.slot.End().Add(grace).Before(now) {
			r.status = StatusNoShow
			r.updatedAt = now
			return true
		}
	case StatusCheckedIn, StatusCheckedOut:
		if r.slot.End().Before(now) {
			r.status = StatusCompleted
			r.updatedAt = now
			return true
		}
	}
	return false
}

// WithinLeadTime reports whether now is too close to start for a member to modify it.
func (r *Reservation) WithinLeadTime(now time.Time, leadTime time.Duration) bool {
	return now.Add(leadTime).After(r.slot.Start())
}

func (r *Reservation) IsBlocking() bool {
	return r.status.IsBlocking()
}

func (r *Reservation) ID() uuid.UUID            { return r.id }
func (r *Reservation) ResourceID() uuid.UUID    { return r.resourceID }
func (r *Reservation) MemberID() uuid.UUID      { return r.memberID }
func (r *Reservation) Slot() timeslot.TimeSlot  { return r.slot }
func (r *Reservation) Status() Status           { return r.status }
func (r *Reservation) PartySize() int           { return r.partySize }
func (r *Reservation) Notes() string            { return r.notes }
func (r *Reservation) CreatedAt() time.Time     { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time     { return r.updatedAt }
func (r *Reservation) CheckedInAt() *time.Time  { return r.checkedInAt }
func (r *Reservation) CheckedOutAt() *time.Time { return r.checkedOutAt }
func (r *Reservation) CancelledAt() *time.Time  { return r.cancelledAt }

// Clone returns an independent copy, used by stores that hand out snapshots.
func (r *Reservation) Clone() *Reservation {
	c := *r
	c.checkedInAt = clonePtr(r.checkedInAt)
	c.checkedOutAt = clonePtr(r.checkedOutAt)
	c.cancelledAt = clonePtr(r.cancelledAt)
	return &c
}

func clonePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
