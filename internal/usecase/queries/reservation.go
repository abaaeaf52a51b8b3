package queries

//go:generate mockgen -source=$GOFILE -destination=../../testutil/mock/queries/$GOFILE -package=queriesmock

import (
	"context"

	"club-scheduler/internal/domain/reservation"
	"club-scheduler/internal/pkg/errs"
	"club-scheduler/internal/usecase/shared"

	"github.com/google/uuid"
)

type ReservationQueries interface {
	GetByID(ctx context.Context, actor shared.Actor, id uuid.UUID) (*ReservationView, error)
	ListByMember(ctx context.Context, actor shared.Actor, memberID uuid.UUID, after string, limit int) ([]*ReservationView, *Cursor, error)
}

type reservationQueriesImpl struct {
	uow shared.UnitOfWork
}

func NewReservationQueries(uow shared.UnitOfWork) ReservationQueries {
	return &reservationQueriesImpl{uow: uow}
}

func (q *reservationQueriesImpl) GetByID(ctx context.Context, actor shared.Actor, id uuid.UUID) (*ReservationView, error) {
	var rsv *reservation.Reservation
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		rsv, err = tx.Reservations().Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(rsv.MemberID()) {
		// Other members' bookings are reported as missing.
		return nil, errs.NotFound("reservation not found")
	}
	return NewReservationView(rsv), nil
}

func (q *reservationQueriesImpl) ListByMember(ctx context.Context, actor shared.Actor, memberID uuid.UUID, after string, limit int) ([]*ReservationView, *Cursor, error) {
	if !actor.CanAccess(memberID) {
		return nil, nil, errs.Forbidden("cannot list another member's reservations")
	}
	pos, err := DecodeAfterCursor(after)
	if err != nil {
		return nil, nil, err
	}
	limit = ValidateLimit(limit)

	var rows []*reservation.Reservation
	err = q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		// One extra row tells whether another page exists.
		rows, err = tx.Reservations().ListByMember(ctx, memberID, pos, limit+1)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	var next *Cursor
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = &Cursor{After: EncodeAfterCursor(last.Slot().Start(), last.ID())}
	}
	return NewReservationViews(rows), next, nil
}
