//go:build unit

package commands_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"club-scheduler/internal/domain/activity"
	"club-scheduler/internal/domain/member"
	"club-scheduler/internal/domain/reservation"
	"club-scheduler/internal/domain/resource"
	"club-scheduler/internal/domain/timeslot"
	"club-scheduler/internal/infra/idempotency"
	"club-scheduler/internal/infra/memstore"
	"club-scheduler/internal/pkg/clock"
	"club-scheduler/internal/pkg/config"
	"club-scheduler/internal/usecase/commands"
	"club-scheduler/internal/usecase/scheduling"
	"club-scheduler/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Monday 2025-03-03 08:00 UTC.
var testNow = time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)

func at(day, hour, minute int) time.Time {
	return time.Date(2025, 3, day, hour, minute, 0, 0, time.UTC)
}

func slotOf(start, end time.Time) timeslot.TimeSlot {
	return timeslot.MustNew(start, end)
}

type env struct {
	store         *memstore.Store
	clock         *clock.MockClock
	cfg           config.Config
	logger        *slog.Logger
	generator     *activity.Generator
	propagator    *scheduling.SeriesPropagator
	reservations  commands.ReservationCommands
	registrations commands.RegistrationCommands
	activities    commands.ActivityCommands
	resources     commands.ResourceCommands
	maintenance   commands.MaintenanceCommands
}

func newEnv() *env {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.NewTestConfig()
	clk := clock.NewMockClock(testNow)
	store := memstore.New(logger)
	idem := idempotency.NewMemoryStore(clk, cfg.Redis.IdempotencyTTL)

	capacity := scheduling.NewCapacityManager(clk, logger)
	generator := activity.NewGenerator(clk, time.UTC, cfg.Scheduling.MaxSeriesOccurrences)
	propagator := scheduling.NewSeriesPropagator(generator, capacity, clk, logger)
	checker := scheduling.NewAvailabilityChecker(cfg.Scheduling.NextSlotHorizonDays)

	return &env{
		store:         store,
		clock:         clk,
		cfg:           cfg,
		logger:        logger,
		generator:     generator,
		propagator:    propagator,
		reservations:  commands.NewReservationCommands(store, idem, checker, clk, cfg, logger),
		registrations: commands.NewRegistrationCommands(store, idem, capacity, clk, logger),
		activities:    commands.NewActivityCommands(store, generator, propagator, clk, logger),
		resources:     commands.NewResourceCommands(store, clk, logger),
		maintenance:   commands.NewMaintenanceCommands(store, clk, cfg, logger),
	}
}

func memberActor(id uuid.UUID) commands.Actor {
	return commands.Actor{MemberID: id, Role: member.RoleMember}
}

func staffActor() commands.Actor {
	return commands.Actor{MemberID: uuid.New(), Role: member.RoleStaff}
}

func (e *env) createResource(t *testing.T, cfg resource.Config) uuid.UUID {
	t.Helper()
	if cfg.Name == "" {
		cfg.Name = "Court 1"
	}
	view, err := e.resources.CreateResource(context.Background(), cfg)
	require.NoError(t, err)
	return view.ID
}

func (e *env) book(t *testing.T, resourceID, memberID uuid.UUID, start, end time.Time) *commands.BookingResult {
	t.Helper()
	result, err := e.reservations.CreateReservation(context.Background(), commands.CreateReservationCommand{
		ResourceID: resourceID,
		MemberID:   memberID,
		Start:      start,
		End:        end,
		PartySize:  1,
	})
	require.NoError(t, err)
	return result
}

func (e *env) createClass(t *testing.T, capacity int, waitlist bool, start time.Time) uuid.UUID {
	t.Helper()
	created, err := e.activities.CreateActivity(context.Background(), commands.CreateActivityCommand{
		Details: activity.Details{Title: "Spin Class", Capacity: capacity, AllowWaitlist: waitlist},
		Start:   start,
		End:     start.Add(time.Hour),
	})
	require.NoError(t, err)
	return created.Activity.ID
}

// register advances the clock a minute first so registration order is strict.
func (e *env) register(t *testing.T, activityID, memberID uuid.UUID) *commands.RegistrationOutcome {
	t.Helper()
	e.clock.Add(time.Minute)
	outcome, err := e.registrations.Register(context.Background(), commands.RegisterCommand{
		ActivityID: activityID,
		MemberID:   memberID,
	})
	require.NoError(t, err)
	return outcome
}

func (e *env) reservation(t *testing.T, id uuid.UUID) *reservation.Reservation {
	t.Helper()
	var rsv *reservation.Reservation
	require.NoError(t, e.store.WithinReadOnly(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		var err error
		rsv, err = tx.Reservations().Get(ctx, id)
		return err
	}))
	return rsv
}

func (e *env) activity(t *testing.T, id uuid.UUID) *activity.Activity {
	t.Helper()
	var act *activity.Activity
	require.NoError(t, e.store.WithinReadOnly(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		var err error
		act, err = tx.Activities().Get(ctx, id)
		return err
	}))
	return act
}

func (e *env) topics() []string {
	var out []string
	for _, job := range e.store.Jobs() {
		out = append(out, job.Topic)
	}
	return out
}
