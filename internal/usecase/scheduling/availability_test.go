//go:build unit

package scheduling_test

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"club-scheduler/internal/domain/reservation"
	"club-scheduler/internal/domain/resource"
	"club-scheduler/internal/domain/timeslot"
	"club-scheduler/internal/pkg/errs"
	"club-scheduler/internal/pkg/ptr"
	"club-scheduler/internal/usecase/scheduling"
	"club-scheduler/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkAvailability(t *testing.T, store shared.UnitOfWork, checker *scheduling.AvailabilityChecker, res *resource.Resource, slot timeslot.TimeSlot, excludeID *uuid.UUID) *scheduling.AvailabilityResult {
	t.Helper()
	var result *scheduling.AvailabilityResult
	require.NoError(t, store.WithinReadOnly(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		var err error
		result, err = checker.CheckAvailability(ctx, tx.Reservations(), res, slot, excludeID)
		return err
	}))
	return result
}

func TestCheckAvailability(t *testing.T) {
	weekdays := []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday}

	testCases := []struct {
		name        string
		cfg         resource.Config
		existing    []timeslot.TimeSlot
		request     timeslot.TimeSlot
		wantOK      bool
		wantReasons []string
		wantClashes int
		wantNext    *timeslot.TimeSlot
	}{
		{
			name:     "free slot is available",
			existing: []timeslot.TimeSlot{slotAt(4, 10, 0, time.Hour)},
			request:  slotAt(4, 14, 0, time.Hour),
			wantOK:   true,
		},
		{
			name:     "adjacent slot does not conflict",
			existing: []timeslot.TimeSlot{slotAt(4, 10, 0, time.Hour)},
			request:  slotAt(4, 11, 0, time.Hour),
			wantOK:   true,
		},
		{
			name:        "partial overlap suggests the same time next day",
			existing:    []timeslot.TimeSlot{slotAt(4, 10, 0, time.Hour)},
			request:     slotAt(4, 10, 30, time.Hour),
			wantReasons: []string{scheduling.ReasonSlotConflict},
			wantClashes: 1,
			wantNext:    ptr.Of(slotAt(5, 10, 30, time.Hour)),
		},
		{
			name:        "request spanning two bookings reports both",
			existing:    []timeslot.TimeSlot{slotAt(4, 9, 0, time.Hour), slotAt(4, 11, 0, time.Hour)},
			request:     slotAt(4, 9, 30, 2*time.Hour),
			wantReasons: []string{scheduling.ReasonSlotConflict},
			wantClashes: 2,
			wantNext:    ptr.Of(slotAt(5, 9, 30, 2*time.Hour)),
		},
		{
			name:        "next slot skips days that are also booked",
			existing:    []timeslot.TimeSlot{slotAt(4, 10, 0, time.Hour), slotAt(5, 10, 0, time.Hour)},
			request:     slotAt(4, 10, 0, time.Hour),
			wantReasons: []string{scheduling.ReasonSlotConflict},
			wantClashes: 1,
			wantNext:    ptr.Of(slotAt(6, 10, 0, time.Hour)),
		},
		{
			name:        "closed day moves to the next operating day",
			cfg:         resource.Config{OperatingDays: weekdays},
			request:     slotAt(9, 10, 0, time.Hour),
			wantReasons: []string{"resource is not open on Sunday"},
			wantNext:    ptr.Of(slotAt(10, 10, 0, time.Hour)),
		},
		{
			name:        "ending after closing time has no next slot",
			cfg:         resource.Config{OperatingHours: &resource.OperatingHours{Open: 8 * 60, Close: 22 * 60}},
			request:     slotAt(4, 21, 30, time.Hour),
			wantReasons: []string{"end time is outside operating hours (08:00-22:00)"},
		},
		{
			name:        "duration below minimum skips the search",
			cfg:         resource.Config{MinDuration: 30 * time.Minute},
			request:     slotAt(4, 10, 0, 15*time.Minute),
			wantReasons: []string{"booking duration is shorter than the minimum of 30 minutes"},
		},
		{
			name:        "duration above maximum with overlap finds no next slot",
			cfg:         resource.Config{MaxDuration: 2 * time.Hour},
			existing:    []timeslot.TimeSlot{slotAt(4, 10, 0, time.Hour)},
			request:     slotAt(4, 10, 0, 3*time.Hour),
			wantReasons: []string{scheduling.ReasonSlotConflict, "booking duration exceeds the maximum of 120 minutes"},
			wantClashes: 1,
		},
		{
			name:        "resource under maintenance",
			cfg:         resource.Config{Status: resource.StatusMaintenance},
			request:     slotAt(4, 10, 0, time.Hour),
			wantReasons: []string{"resource is not accepting bookings (status: maintenance)"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := newStore()
			res := seedResource(t, store, tc.cfg)
			for _, s := range tc.existing {
				seedReservation(t, store, res.ID(), s)
			}

			got := checkAvailability(t, store, scheduling.NewAvailabilityChecker(7), res, tc.request, nil)

			assert.Equal(t, tc.wantOK, got.IsAvailable)
			assert.Equal(t, tc.wantReasons, got.ConflictReasons)
			assert.Len(t, got.ConflictingReservations, tc.wantClashes)
			if tc.wantNext == nil {
				assert.Nil(t, got.NextAvailableSlot)
			} else {
				require.NotNil(t, got.NextAvailableSlot)
				assert.True(t, tc.wantNext.Start().Equal(got.NextAvailableSlot.Start()), "next start %s", got.NextAvailableSlot)
				assert.Equal(t, tc.request.Duration(), got.NextAvailableSlot.Duration())
			}
		})
	}
}

func TestCheckAvailability_ExcludesOwnReservation(t *testing.T) {
	store := newStore()
	res := seedResource(t, store, resource.Config{})
	own := seedReservation(t, store, res.ID(), slotAt(4, 10, 0, time.Hour))
	checker := scheduling.NewAvailabilityChecker(7)

	moved := slotAt(4, 10, 30, time.Hour)
	assert.False(t, checkAvailability(t, store, checker, res, moved, nil).IsAvailable)
	assert.True(t, checkAvailability(t, store, checker, res, moved, ptr.Of(own.ID())).IsAvailable)
}

func TestCheckAvailability_CancelledBookingsDoNotBlock(t *testing.T) {
	store := newStore()
	res := seedResource(t, store, resource.Config{})
	rsv := seedReservation(t, store, res.ID(), slotAt(4, 10, 0, time.Hour))
	require.NoError(t, store.Within(context.Background(), nil, func(ctx context.Context, tx shared.Tx) error {
		if err := rsv.Cancel(testNow); err != nil {
			return err
		}
		return tx.Reservations().Update(ctx, rsv)
	}))

	got := checkAvailability(t, store, scheduling.NewAvailabilityChecker(7), res, slotAt(4, 10, 0, time.Hour), nil)
	assert.True(t, got.IsAvailable)
	assert.Empty(t, got.ConflictReasons)
}

func TestCheckAvailability_HorizonLimitsSearch(t *testing.T) {
	store := newStore()
	res := seedResource(t, store, resource.Config{})
	for day := 4; day <= 7; day++ {
		seedReservation(t, store, res.ID(), slotAt(day, 10, 0, time.Hour))
	}

	short := checkAvailability(t, store, scheduling.NewAvailabilityChecker(3), res, slotAt(4, 10, 0, time.Hour), nil)
	assert.Nil(t, short.NextAvailableSlot)

	long := checkAvailability(t, store, scheduling.NewAvailabilityChecker(7), res, slotAt(4, 10, 0, time.Hour), nil)
	require.NotNil(t, long.NextAvailableSlot)
	assert.True(t, slotAt(8, 10, 0, time.Hour).Start().Equal(long.NextAvailableSlot.Start()))
}

func TestCheckAvailability_Errors(t *testing.T) {
	store := newStore()
	checker := scheduling.NewAvailabilityChecker(7)

	err := store.WithinReadOnly(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		_, err := checker.CheckAvailability(ctx, tx.Reservations(), nil, slotAt(4, 10, 0, time.Hour), nil)
		return err
	})
	assert.True(t, errs.IsNotFound(err))

	res := seedResource(t, store, resource.Config{})
	err = store.WithinReadOnly(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		_, err := checker.CheckAvailability(ctx, tx.Reservations(), res, timeslot.TimeSlot{}, nil)
		return err
	})
	assert.True(t, errs.IsValidation(err))
}

// Whatever the booking layout, a suggested slot must itself pass the check,
// and committed blocking bookings never overlap.
func TestCheckAvailability_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	store := newStore()
	res := seedResource(t, store, resource.Config{
		OperatingHours: &resource.OperatingHours{Open: 6 * 60, Close: 23 * 60},
		MaxDuration:    4 * time.Hour,
	})

	randomSlot := func() timeslot.TimeSlot {
		return slotAt(4+rng.Intn(7), 6+rng.Intn(15), 30*rng.Intn(2), time.Duration(1+rng.Intn(6))*30*time.Minute)
	}

	for i := 0; i < 60; i++ {
		rsv, err := reservation.NewReservation(res.ID(), uuid.New(), randomSlot(), 1, "", testNow)
		require.NoError(t, err)
		// Overlapping inserts are refused by the store; that is fine here.
		_ = store.Within(context.Background(), nil, func(ctx context.Context, tx shared.Tx) error {
			return tx.Reservations().Create(ctx, rsv)
		})
	}

	var all []*reservation.Reservation
	read(t, store, func(ctx context.Context, tx shared.Tx) {
		var err error
		from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
		all, err = tx.Reservations().ListOverlapping(ctx, res.ID(), from, from.AddDate(0, 1, 0), nil)
		require.NoError(t, err)
	})
	require.NotEmpty(t, all)
	for i := range all {
		for j := i + 1; j < len(all); j++ {
			assert.False(t, all[i].Slot().Overlaps(all[j].Slot()), "%s overlaps %s", all[i].Slot(), all[j].Slot())
		}
	}

	checker := scheduling.NewAvailabilityChecker(14)
	suggested := 0
	for i := 0; i < 200; i++ {
		got := checkAvailability(t, store, checker, res, randomSlot(), nil)
		if got.NextAvailableSlot == nil {
			continue
		}
		suggested++
		again := checkAvailability(t, store, checker, res, *got.NextAvailableSlot, nil)
		assert.True(t, again.IsAvailable, "suggested %s is not available: %v", got.NextAvailableSlot, again.ConflictReasons)
	}
	assert.Positive(t, suggested)
}
