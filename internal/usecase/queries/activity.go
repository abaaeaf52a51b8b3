package queries

//go:generate mockgen -source=$GOFILE -destination=../../testutil/mock/queries/$GOFILE -package=queriesmock

import (
	"context"

	"club-scheduler/internal/domain/activity"
	"club-scheduler/internal/domain/registration"
	"club-scheduler/internal/usecase/scheduling"
	"club-scheduler/internal/usecase/shared"

	"github.com/google/uuid"
)

type ActivityQueries interface {
	GetActivity(ctx context.Context, id uuid.UUID) (*ActivityView, error)
	// Waitlist is ordered by position 1..N.
	Waitlist(ctx context.Context, activityID uuid.UUID) ([]*RegistrationView, error)
	// Roster lists confirmed registrations in registration order.
	Roster(ctx context.Context, activityID uuid.UUID) ([]*RegistrationView, error)
	ListSeries(ctx context.Context, activityID uuid.UUID) ([]*ActivityView, error)
	PreviewSeriesUpdate(ctx context.Context, activityID uuid.UUID, update scheduling.SeriesUpdate) (*SeriesUpdateView, error)
}

type activityQueriesImpl struct {
	uow        shared.UnitOfWork
	propagator *scheduling.SeriesPropagator
}

func NewActivityQueries(uow shared.UnitOfWork, propagator *scheduling.SeriesPropagator) ActivityQueries {
	return &activityQueriesImpl{uow: uow, propagator: propagator}
}

func (q *activityQueriesImpl) GetActivity(ctx context.Context, id uuid.UUID) (*ActivityView, error) {
	var act *activity.Activity
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		act, err = tx.Activities().Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return NewActivityView(act), nil
}

func (q *activityQueriesImpl) Waitlist(ctx context.Context, activityID uuid.UUID) ([]*RegistrationView, error) {
	return q.registrations(ctx, activityID, func(ctx context.Context, repo shared.RegistrationRepository) ([]*registration.Registration, error) {
		return repo.ListWaitlisted(ctx, activityID)
	})
}

func (q *activityQueriesImpl) Roster(ctx context.Context, activityID uuid.UUID) ([]*RegistrationView, error) {
	return q.registrations(ctx, activityID, func(ctx context.Context, repo shared.RegistrationRepository) ([]*registration.Registration, error) {
		return repo.ListByActivity(ctx, activityID, registration.StatusConfirmed)
	})
}

func (q *activityQueriesImpl) registrations(
	ctx context.Context,
	activityID uuid.UUID,
	list func(context.Context, shared.RegistrationRepository) ([]*registration.Registration, error),
) ([]*RegistrationView, error) {
	var rows []*registration.Registration
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		if _, err := tx.Activities().Get(ctx, activityID); err != nil {
			return err
		}
		var err error
		rows, err = list(ctx, tx.Registrations())
		return err
	})
	if err != nil {
		return nil, err
	}
	return NewRegistrationViews(rows), nil
}

func (q *activityQueriesImpl) ListSeries(ctx context.Context, activityID uuid.UUID) ([]*ActivityView, error) {
	var members []*activity.Activity
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		root, _, err := q.propagator.ResolveSeries(ctx, tx, activityID)
		if err != nil {
			return err
		}
		members, err = tx.Activities().ListSeries(ctx, root.ID())
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]*ActivityView, len(members))
	for i, m := range members {
		out[i] = NewActivityView(m)
	}
	return out, nil
}

func (q *activityQueriesImpl) PreviewSeriesUpdate(ctx context.Context, activityID uuid.UUID, update scheduling.SeriesUpdate) (*SeriesUpdateView, error) {
	var view *SeriesUpdateView
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		result, err := q.propagator.PreviewUpdate(ctx, tx, activityID, update)
		if err != nil {
			return err
		}
		view = NewSeriesUpdateView(result)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}
