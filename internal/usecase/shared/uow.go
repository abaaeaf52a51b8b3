package shared

import (
	"context"
	"time"

	"club-scheduler/internal/domain/activity"
	"club-scheduler/internal/domain/registration"
	"club-scheduler/internal/domain/reservation"
	"club-scheduler/internal/domain/resource"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within runs fn in a write transaction holding every lock in keys.
	// Retryable failures re-run fn from scratch; any error rolls back.
	Within(ctx context.Context, keys []LockKey, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly gives fn a consistent snapshot for multi-table reads.
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type Tx interface {
	Resources() ResourceRepository
	Reservations() ReservationRepository
	Activities() ActivityRepository
	Registrations() RegistrationRepository
	Notifications() NotificationRepository
}

type ResourceRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*resource.Resource, error)
	Create(ctx context.Context, res *resource.Resource) error
}

type ReservationRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	// ListOverlapping returns blocking reservations (confirmed, checked in)
	// on resourceID whose interval intersects [start, end), ordered by start.
	ListOverlapping(ctx context.Context, resourceID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]*reservation.Reservation, error)
	// ListEndedBefore returns reservations in one of statuses whose end is
	// strictly before cutoff.
	ListEndedBefore(ctx context.Context, cutoff time.Time, statuses ...reservation.Status) ([]*reservation.Reservation, error)
	// ListByMember pages a member's reservations by (start, id), strictly
	// after the given position when after is non-nil.
	ListByMember(ctx context.Context, memberID uuid.UUID, after *Position, limit int) ([]*reservation.Reservation, error)
	Create(ctx context.Context, res *reservation.Reservation) error
	Update(ctx context.Context, res *reservation.Reservation) error
}

// Position is a keyset pagination point.
type Position struct {
	At time.Time
	ID uuid.UUID
}

type ActivityRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*activity.Activity, error)
	Create(ctx context.Context, act *activity.Activity) error
	Update(ctx context.Context, act *activity.Activity) error
	// ListSeries returns the scheduled, non-root members of a series ordered
	// by start.
	ListSeries(ctx context.Context, seriesID uuid.UUID) ([]*activity.Activity, error)
}

type RegistrationRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*registration.Registration, error)
	// FindActive returns the confirmed or waitlisted registration of member
	// for activity, or nil when there is none.
	FindActive(ctx context.Context, activityID, memberID uuid.UUID) (*registration.Registration, error)
	CountConfirmed(ctx context.Context, activityID uuid.UUID) (int, error)
	// ListWaitlisted orders by registration time, then id.
	ListWaitlisted(ctx context.Context, activityID uuid.UUID) ([]*registration.Registration, error)
	// ListByActivity returns registrations in one of statuses (all when
	// empty) ordered by registration time.
	ListByActivity(ctx context.Context, activityID uuid.UUID, statuses ...registration.Status) ([]*registration.Registration, error)
	Create(ctx context.Context, reg *registration.Registration) error
	Update(ctx context.Context, reg *registration.Registration) error
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, kind, topic string, payload []byte, runAt time.Time) error
}
