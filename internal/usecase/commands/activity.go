package commands

//go:generate mockgen -source=$GOFILE -destination=../../testutil/mock/commands/$GOFILE -package=commandsmock

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"club-scheduler/internal/domain/activity"
	"club-scheduler/internal/domain/recurrence"
	"club-scheduler/internal/domain/timeslot"
	"club-scheduler/internal/pkg/clock"
	"club-scheduler/internal/pkg/errs"
	"club-scheduler/internal/usecase/queries"
	"club-scheduler/internal/usecase/scheduling"
	"club-scheduler/internal/usecase/shared"

	"github.com/google/uuid"
)

type CreateActivityCommand struct {
	Details activity.Details
	Start   time.Time
	End     time.Time
	// Pattern is optional; nil or type none creates a standalone activity.
	Pattern *recurrence.Pattern
}

type ActivityCreatedResult struct {
	Activity    *queries.ActivityView
	Occurrences []*queries.ActivityView
}

const seriesLockAttempts = 3

// ErrSeriesChanged reports that a series gained members between reading its
// lock set and acquiring it.
var ErrSeriesChanged = errs.New("series changed while acquiring locks")

type ActivityCommands interface {
	CreateActivity(ctx context.Context, cmd CreateActivityCommand) (*ActivityCreatedResult, error)
	UpdateSeries(ctx context.Context, activityID uuid.UUID, update scheduling.SeriesUpdate) (*queries.SeriesUpdateView, error)
}

type activityCommandsImpl struct {
	uow        shared.UnitOfWork
	generator  *activity.Generator
	propagator *scheduling.SeriesPropagator
	clock      clock.Clock
	logger     *slog.Logger
}

func NewActivityCommands(
	uow shared.UnitOfWork,
	generator *activity.Generator,
	propagator *scheduling.SeriesPropagator,
	clock clock.Clock,
	logger *slog.Logger,
) ActivityCommands {
	return &activityCommandsImpl{
		uow:        uow,
		generator:  generator,
		propagator: propagator,
		clock:      clock,
		logger:     logger,
	}
}

func (c *activityCommandsImpl) CreateActivity(ctx context.Context, cmd CreateActivityCommand) (*ActivityCreatedResult, error) {
	slot, err := timeslot.New(cmd.Start, cmd.End)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrValidation)
	}

	now := c.clock.Now()
	var (
		act         *activity.Activity
		occurrences []*activity.Activity
	)
	if cmd.Pattern == nil || !cmd.Pattern.IsRecurring() {
		act, err = activity.NewActivity(cmd.Details, slot, now)
		if err != nil {
			return nil, errs.Mark(err, errs.ErrValidation)
		}
	} else {
		act, err = activity.NewSeriesRoot(cmd.Details, slot, *cmd.Pattern, now)
		if err != nil {
			return nil, errs.Mark(err, errs.ErrValidation)
		}
		occurrences, err = c.generator.GenerateOccurrences(act, *cmd.Pattern)
		if err != nil {
			return nil, errs.Mark(err, errs.ErrValidation)
		}
	}

	keys := []shared.LockKey{shared.ActivityLock(act.ID())}
	if act.IsSeriesRoot() {
		keys = append(keys, shared.SeriesLock(act.ID()))
	}
	err = c.uow.Within(ctx, keys, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Activities().Create(ctx, act); err != nil {
			return err
		}
		for _, occ := range occurrences {
			if err := tx.Activities().Create(ctx, occ); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if act.IsSeriesRoot() {
		c.logger.InfoContext(ctx, "series created",
			"series_id", act.ID(),
			"pattern", act.Pattern().String(),
			"occurrences", len(occurrences))
	}

	views := make([]*queries.ActivityView, len(occurrences))
	for i, occ := range occurrences {
		views[i] = queries.NewActivityView(occ)
	}
	return &ActivityCreatedResult{Activity: queries.NewActivityView(act), Occurrences: views}, nil
}

func (c *activityCommandsImpl) UpdateSeries(ctx context.Context, activityID uuid.UUID, update scheduling.SeriesUpdate) (*queries.SeriesUpdateView, error) {
	for attempt := 1; ; attempt++ {
		view, err := c.updateSeriesLocked(ctx, activityID, update)
		if !errs.Is(err, ErrSeriesChanged) {
			return view, err
		}
		if attempt >= seriesLockAttempts {
			return nil, errs.Mark(err, errs.ErrConflict)
		}
		c.logger.WarnContext(ctx, "series changed while taking locks, retrying",
			"activity_id", activityID,
			"attempt", attempt)
	}
}

func (c *activityCommandsImpl) updateSeriesLocked(ctx context.Context, activityID uuid.UUID, update scheduling.SeriesUpdate) (*queries.SeriesUpdateView, error) {
	var keys []shared.LockKey
	err := c.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		keys, err = c.seriesLockKeys(ctx, tx, activityID)
		return err
	})
	if err != nil {
		return nil, err
	}

	var view *queries.SeriesUpdateView
	err = c.uow.Within(ctx, keys, func(ctx context.Context, tx shared.Tx) error {
		// Another series edit may have added members after keys were read.
		current, err := c.seriesLockKeys(ctx, tx, activityID)
		if err != nil {
			return err
		}
		for _, k := range current {
			if !slices.Contains(keys, k) {
				return errs.Wrapf(ErrSeriesChanged, "%s is not locked", k)
			}
		}

		result, err := c.propagator.ApplyUpdate(ctx, tx, activityID, update)
		if err != nil {
			return err
		}
		view = queries.NewSeriesUpdateView(result)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// seriesLockKeys lists the locks covering every occurrence an edit of the
// series containing activityID may touch.
func (c *activityCommandsImpl) seriesLockKeys(ctx context.Context, tx shared.Tx, activityID uuid.UUID) ([]shared.LockKey, error) {
	root, _, err := c.propagator.ResolveSeries(ctx, tx, activityID)
	if err != nil {
		return nil, err
	}
	members, err := tx.Activities().ListSeries(ctx, root.ID())
	if err != nil {
		return nil, err
	}
	keys := []shared.LockKey{shared.SeriesLock(root.ID()), shared.ActivityLock(root.ID()), shared.ActivityLock(activityID)}
	for _, m := range members {
		keys = append(keys, shared.ActivityLock(m.ID()))
	}
	return shared.NormalizeLockKeys(keys), nil
}
