//go:build unit

package scheduling_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"club-scheduler/internal/domain/activity"
	"club-scheduler/internal/domain/recurrence"
	"club-scheduler/internal/domain/registration"
	"club-scheduler/internal/domain/reservation"
	"club-scheduler/internal/domain/resource"
	"club-scheduler/internal/domain/timeslot"
	"club-scheduler/internal/infra/memstore"
	"club-scheduler/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Monday 2025-03-03 08:00 UTC.
var testNow = time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newStore() *memstore.Store {
	return memstore.New(discardLogger())
}

func slotAt(day, hour, minute int, d time.Duration) timeslot.TimeSlot {
	start := time.Date(2025, 3, day, hour, minute, 0, 0, time.UTC)
	return timeslot.MustNew(start, start.Add(d))
}

func seedResource(t *testing.T, store *memstore.Store, cfg resource.Config) *resource.Resource {
	t.Helper()
	if cfg.Name == "" {
		cfg.Name = "Court 1"
	}
	res, err := resource.NewResource(uuid.New(), cfg, testNow)
	require.NoError(t, err)
	require.NoError(t, store.Within(context.Background(), nil, func(ctx context.Context, tx shared.Tx) error {
		return tx.Resources().Create(ctx, res)
	}))
	return res
}

func seedReservation(t *testing.T, store *memstore.Store, resourceID uuid.UUID, slot timeslot.TimeSlot) *reservation.Reservation {
	t.Helper()
	rsv, err := reservation.NewReservation(resourceID, uuid.New(), slot, 1, "", testNow)
	require.NoError(t, err)
	require.NoError(t, store.Within(context.Background(), nil, func(ctx context.Context, tx shared.Tx) error {
		return tx.Reservations().Create(ctx, rsv)
	}))
	return rsv
}

func classDetails(capacity int, waitlist bool) activity.Details {
	return activity.Details{
		Title:         "Spin Class",
		Capacity:      capacity,
		AllowWaitlist: waitlist,
		PriceCents:    1200,
		Equipment:     []string{"bike"},
	}
}

func seedActivity(t *testing.T, store *memstore.Store, details activity.Details, slot timeslot.TimeSlot) *activity.Activity {
	t.Helper()
	act, err := activity.NewActivity(details, slot, testNow)
	require.NoError(t, err)
	require.NoError(t, store.Within(context.Background(), nil, func(ctx context.Context, tx shared.Tx) error {
		return tx.Activities().Create(ctx, act)
	}))
	return act
}

func seedSeries(t *testing.T, store *memstore.Store, gen *activity.Generator, details activity.Details, first timeslot.TimeSlot, pattern recurrence.Pattern) (*activity.Activity, []*activity.Activity) {
	t.Helper()
	root, err := activity.NewSeriesRoot(details, first, pattern, testNow)
	require.NoError(t, err)
	occs, err := gen.GenerateOccurrences(root, pattern)
	require.NoError(t, err)
	require.NoError(t, store.Within(context.Background(), nil, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Activities().Create(ctx, root); err != nil {
			return err
		}
		for _, o := range occs {
			if err := tx.Activities().Create(ctx, o); err != nil {
				return err
			}
		}
		return nil
	}))
	return root, occs
}

// read runs fn against a committed snapshot.
func read(t *testing.T, store *memstore.Store, fn func(ctx context.Context, tx shared.Tx)) {
	t.Helper()
	require.NoError(t, store.WithinReadOnly(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		fn(ctx, tx)
		return nil
	}))
}

func getActivity(t *testing.T, store *memstore.Store, id uuid.UUID) *activity.Activity {
	t.Helper()
	var act *activity.Activity
	read(t, store, func(ctx context.Context, tx shared.Tx) {
		var err error
		act, err = tx.Activities().Get(ctx, id)
		require.NoError(t, err)
	})
	return act
}

func registrations(t *testing.T, store *memstore.Store, activityID uuid.UUID, statuses ...registration.Status) []*registration.Registration {
	t.Helper()
	var regs []*registration.Registration
	read(t, store, func(ctx context.Context, tx shared.Tx) {
		var err error
		regs, err = tx.Registrations().ListByActivity(ctx, activityID, statuses...)
		require.NoError(t, err)
	})
	return regs
}

func waitlistPositions(t *testing.T, store *memstore.Store, activityID uuid.UUID) []int {
	t.Helper()
	var out []int
	for _, r := range registrations(t, store, activityID, registration.StatusWaitlisted) {
		out = append(out, *r.WaitlistPosition())
	}
	return out
}
