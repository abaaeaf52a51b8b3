package registration

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAlreadyCancelled = errors.New("registration is already cancelled")
	ErrNotWaitlisted    = errors.New("registration is not waitlisted")
	ErrInvalidPosition  = errors.New("waitlist position must be at least 1")
	ErrNotesTooLong     = errors.New("notes are too long (max 1000 characters)")
)

const MaxNotesLength = 1000

type Registration struct {
	id               uuid.UUID
	activityID       uuid.UUID
	memberID         uuid.UUID
	status           Status
	waitlistPosition *int
	notes            string
	registeredAt     time.Time
	updatedAt        time.Time
	cancelledAt      *time.Time
}

func newRegistration(activityID, memberID uuid.UUID, status Status, notes string, now time.Time) (*Registration, error) {
	notes = strings.TrimSpace(notes)
	if len(notes) > MaxNotesLength {
		return nil, ErrNotesTooLong
	}
	return &Registration{
		id:           uuid.New(),
		activityID:   activityID,
		memberID:     memberID,
		status:       status,
		notes:        notes,
		registeredAt: now,
		updatedAt:    now,
	}, nil
}

func NewConfirmed(activityID, memberID uuid.UUID, notes string, now time.Time) (*Registration, error) {
	return newRegistration(activityID, memberID, StatusConfirmed, notes, now)
}

func NewWaitlisted(activityID, memberID uuid.UUID, notes string, position int, now time.Time) (*Registration, error) {
	if position < 1 {
		return nil, ErrInvalidPosition
	}
	r, err := newRegistration(activityID, memberID, StatusWaitlisted, notes, now)
	if err != nil {
		return nil, err
	}
	r.waitlistPosition = &position
	return r, nil
}

// NewDeclined describes a refused admission. Declined registrations are
// returned to the caller but not stored.
func NewDeclined(activityID, memberID uuid.UUID, notes string, now time.Time) (*Registration, error) {
	return newRegistration(activityID, memberID, StatusDeclined, notes, now)
}

type Timestamps struct {
	RegisteredAt time.Time
	UpdatedAt    time.Time
	CancelledAt  *time.Time
}

func ReconstructRegistration(
	id, activityID, memberID uuid.UUID,
	status Status,
	waitlistPosition *int,
	notes string,
	ts Timestamps,
) *Registration {
	return &Registration{
		id:               id,
		activityID:       activityID,
		memberID:         memberID,
		status:           status,
		waitlistPosition: waitlistPosition,
		notes:            notes,
		registeredAt:     ts.RegisteredAt,
		updatedAt:        ts.UpdatedAt,
		cancelledAt:      ts.CancelledAt,
	}
}

// Cancel reports whether the registration held a confirmed spot before.
func (r *Registration) Cancel(now time.Time) (wasConfirmed bool, err error) {
	if r.status == StatusCancelled {
		return false, ErrAlreadyCancelled
	}
	wasConfirmed = r.status == StatusConfirmed
	r.status = StatusCancelled
	r.waitlistPosition = nil
	r.cancelledAt = &now
	r.updatedAt = now
	return wasConfirmed, nil
}

// Promote moves a waitlisted registration to confirmed.
func (r *Registration) Promote(now time.Time) error {
	if r.status != StatusWaitlisted {
		return ErrNotWaitlisted
	}
	r.status = StatusConfirmed
	r.waitlistPosition = nil
	r.updatedAt = now
	return nil
}

// SetWaitlistPosition reports whether the position changed.
func (r *Registration) SetWaitlistPosition(pos int, now time.Time) (bool, error) {
	if r.status != StatusWaitlisted {
		return false, ErrNotWaitlisted
	}
	if pos < 1 {
		return false, ErrInvalidPosition
	}
	if r.waitlistPosition != nil && *r.waitlistPosition == pos {
		return false, nil
	}
	r.waitlistPosition = &pos
	r.updatedAt = now
	return true, nil
}

func (r *Registration) IsActive() bool {
	return r.status.IsActive()
}

func (r *Registration) ID() uuid.UUID           { return r.id }
func (r *Registration) ActivityID() uuid.UUID   { return r.activityID }
func (r *Registration) MemberID() uuid.UUID     { return r.memberID }
func (r *Registration) Status() Status          { return r.status }
func (r *Registration) Notes() string           { return r.notes }
func (r *Registration) RegisteredAt() time.Time { return r.registeredAt }
func (r *Registration) UpdatedAt() time.Time    { return r.updatedAt }
func (r *Registration) CancelledAt() *time.Time { return r.cancelledAt }

func (r *Registration) WaitlistPosition() *int {
	if r.waitlistPosition == nil {
		return nil
	}
	p := *r.waitlistPosition
	return &p
}

// Clone returns an independent copy, used by stores that hand out snapshots.
func (r *Registration) Clone() *Registration {
	c := *r
	c.waitlistPosition = r.WaitlistPosition()
	if r.cancelledAt != nil {
		t := *r.cancelledAt
		c.cancelledAt = &t
	}
	return &c
}
