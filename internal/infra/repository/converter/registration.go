package converter

import (
	"time"

	"club-scheduler/internal/domain/registration"
	"club-scheduler/internal/pkg/errs"
	"club-scheduler/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const RegistrationColumns = `id, activity_id, member_id, status, waitlist_position, notes, registered_at, updated_at, cancelled_at`

type RegistrationRow struct {
	ID               uuid.UUID
	ActivityID       uuid.UUID
	MemberID         uuid.UUID
	Status           string
	WaitlistPosition pgtype.Int4
	Notes            pgtype.Text
	RegisteredAt     time.Time
	UpdatedAt        time.Time
	CancelledAt      pgtype.Timestamptz
}

func (r *RegistrationRow) ScanTargets() []any {
	return []any{
		&r.ID, &r.ActivityID, &r.MemberID, &r.Status, &r.WaitlistPosition, &r.Notes,
		&r.RegisteredAt, &r.UpdatedAt, &r.CancelledAt,
	}
}

func RegistrationToDomain(row RegistrationRow) (*registration.Registration, error) {
	status := registration.Status(row.Status)
	if !status.IsValid() {
		return nil, errs.Newf("unknown registration status %q", row.Status)
	}
	return registration.ReconstructRegistration(
		row.ID, row.ActivityID, row.MemberID,
		status,
		pgconv.IntPtrFromPgtype(row.WaitlistPosition),
		pgconv.StringFromPgtype(row.Notes),
		registration.Timestamps{
			RegisteredAt: row.RegisteredAt,
			UpdatedAt:    row.UpdatedAt,
			CancelledAt:  pgconv.TimePtrFromPgtype(row.CancelledAt),
		},
	), nil
}

// RegistrationParams follows RegistrationColumns order.
func RegistrationParams(reg *registration.Registration) ([]any, error) {
	position, err := pgconv.IntPtrToPgtype(reg.WaitlistPosition())
	if err != nil {
		return nil, errs.Wrap(err, "waitlist position")
	}
	return []any{
		reg.ID(),
		reg.ActivityID(),
		reg.MemberID(),
		reg.Status().String(),
		position,
		pgconv.StringToPgtype(reg.Notes()),
		pgconv.TimeToPgtype(reg.RegisteredAt()),
		pgconv.TimeToPgtype(reg.UpdatedAt()),
		pgconv.TimePtrToPgtype(reg.CancelledAt()),
	}, nil
}
