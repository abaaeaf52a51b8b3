package converter

import (
	"time"

	"club-scheduler/internal/domain/reservation"
	"club-scheduler/internal/domain/timeslot"
	"club-scheduler/internal/pkg/errs"
	"club-scheduler/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// ReservationColumns is the select list ScanReservation expects.
const ReservationColumns = `id, resource_id, member_id, lower(slot), upper(slot), status, party_size, notes,
	created_at, updated_at, checked_in_at, checked_out_at, cancelled_at`

type ReservationRow struct {
	ID           uuid.UUID
	ResourceID   uuid.UUID
	MemberID     uuid.UUID
	SlotStart    time.Time
	SlotEnd      time.Time
	Status       string
	PartySize    int32
	Notes        pgtype.Text
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CheckedInAt  pgtype.Timestamptz
	CheckedOutAt pgtype.Timestamptz
	CancelledAt  pgtype.Timestamptz
}

func (r *ReservationRow) ScanTargets() []any {
	return []any{
		&r.ID, &r.ResourceID, &r.MemberID, &r.SlotStart, &r.SlotEnd, &r.Status, &r.PartySize, &r.Notes,
		&r.CreatedAt, &r.UpdatedAt, &r.CheckedInAt, &r.CheckedOutAt, &r.CancelledAt,
	}
}

func ReservationToDomain(row ReservationRow) (*reservation.Reservation, error) {
	status := reservation.Status(row.Status)
	if !status.IsValid() {
		return nil, errs.Newf("unknown reservation status %q", row.Status)
	}
	slot, err := timeslot.New(row.SlotStart, row.SlotEnd)
	if err != nil {
		return nil, errs.Wrapf(err, "reservation %s has an invalid slot", row.ID)
	}
	return reservation.ReconstructReservation(
		row.ID, row.ResourceID, row.MemberID,
		slot,
		status,
		int(row.PartySize),
		pgconv.StringFromPgtype(row.Notes),
		reservation.Timestamps{
			CreatedAt:    row.CreatedAt,
			UpdatedAt:    row.UpdatedAt,
			CheckedInAt:  pgconv.TimePtrFromPgtype(row.CheckedInAt),
			CheckedOutAt: pgconv.TimePtrFromPgtype(row.CheckedOutAt),
			CancelledAt:  pgconv.TimePtrFromPgtype(row.CancelledAt),
		},
	), nil
}

// ReservationParams are the positional arguments of an insert or update, in
// column order: id, resource_id, member_id, slot, status, party_size, notes,
// created_at, updated_at, checked_in_at, checked_out_at, cancelled_at.
func ReservationParams(res *reservation.Reservation) []any {
	return []any{
		res.ID(),
		res.ResourceID(),
		res.MemberID(),
		res.Slot().ToTstzrange(),
		res.Status().String(),
		res.PartySize(),
		pgconv.StringToPgtype(res.Notes()),
		pgconv.TimeToPgtype(res.CreatedAt()),
		pgconv.TimeToPgtype(res.UpdatedAt()),
		pgconv.TimePtrToPgtype(res.CheckedInAt()),
		pgconv.TimePtrToPgtype(res.CheckedOutAt()),
		pgconv.TimePtrToPgtype(res.CancelledAt()),
	}
}
