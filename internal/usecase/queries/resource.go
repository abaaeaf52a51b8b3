package queries

//go:generate mockgen -source=$GOFILE -destination=../../testutil/mock/queries/$GOFILE -package=queriesmock

import (
	"context"
	"time"

	"club-scheduler/internal/domain/reservation"
	"club-scheduler/internal/domain/resource"
	"club-scheduler/internal/domain/timeslot"
	"club-scheduler/internal/pkg/errs"
	"club-scheduler/internal/usecase/scheduling"
	"club-scheduler/internal/usecase/shared"

	"github.com/google/uuid"
)

// MaxCalendarWindow bounds the range of a reservation listing.
const MaxCalendarWindow = 62 * 24 * time.Hour

type ResourceQueries interface {
	GetResource(ctx context.Context, id uuid.UUID) (*ResourceView, error)
	CheckAvailability(ctx context.Context, resourceID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (*AvailabilityView, error)
	// ListReservations returns the blocking reservations intersecting [from, to).
	ListReservations(ctx context.Context, resourceID uuid.UUID, from, to time.Time) ([]*ReservationView, error)
}

type resourceQueriesImpl struct {
	uow     shared.UnitOfWork
	checker *scheduling.AvailabilityChecker
}

func NewResourceQueries(uow shared.UnitOfWork, checker *scheduling.AvailabilityChecker) ResourceQueries {
	return &resourceQueriesImpl{uow: uow, checker: checker}
}

func (q *resourceQueriesImpl) GetResource(ctx context.Context, id uuid.UUID) (*ResourceView, error) {
	var res *resource.Resource
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		res, err = tx.Resources().Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return NewResourceView(res), nil
}

func (q *resourceQueriesImpl) CheckAvailability(ctx context.Context, resourceID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (*AvailabilityView, error) {
	slot, err := timeslot.New(start, end)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrValidation)
	}

	var result *scheduling.AvailabilityResult
	err = q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := tx.Resources().Get(ctx, resourceID)
		if err != nil {
			return err
		}
		result, err = q.checker.CheckAvailability(ctx, tx.Reservations(), res, slot, excludeID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return NewAvailabilityView(result), nil
}

func (q *resourceQueriesImpl) ListReservations(ctx context.Context, resourceID uuid.UUID, from, to time.Time) ([]*ReservationView, error) {
	if !from.Before(to) {
		return nil, errs.Validation("from must be before to")
	}
	if to.Sub(from) > MaxCalendarWindow {
		return nil, errs.Validation("window must not exceed 62 days")
	}

	var rows []*reservation.Reservation
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		if _, err := tx.Resources().Get(ctx, resourceID); err != nil {
			return err
		}
		var err error
		rows, err = tx.Reservations().ListOverlapping(ctx, resourceID, from, to, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return NewReservationViews(rows), nil
}
