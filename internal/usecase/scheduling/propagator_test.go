//go:build unit

package scheduling_test

import (
	"context"
	"testing"
	"time"

	"club-scheduler/internal/domain/activity"
	"club-scheduler/internal/domain/recurrence"
	"club-scheduler/internal/domain/registration"
	"club-scheduler/internal/domain/timeslot"
	"club-scheduler/internal/infra/memstore"
	"club-scheduler/internal/pkg/errs"
	"club-scheduler/internal/pkg/ptr"
	"club-scheduler/internal/usecase/scheduling"
	"club-scheduler/internal/usecase/shared"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seriesFixture struct {
	*capacityFixture
	generator  *activity.Generator
	propagator *scheduling.SeriesPropagator
	root       *activity.Activity
	occs       []*activity.Activity
}

// newSeriesFixture builds a daily 10:00-11:00 series of ten occurrences
// from Feb 28. At testNow (Mar 3 08:00) occurrences 1-3 have happened.
func newSeriesFixture(t *testing.T, details activity.Details) *seriesFixture {
	t.Helper()
	f := newCapacityFixture()
	gen := activity.NewGenerator(f.clock, time.UTC, 0)
	first := timeslot.MustNew(
		time.Date(2025, 2, 28, 10, 0, 0, 0, time.UTC),
		time.Date(2025, 2, 28, 11, 0, 0, 0, time.UTC),
	)
	pattern := recurrence.Pattern{Type: recurrence.TypeDaily, Interval: 1, MaxOccurrences: ptr.Of(10)}
	root, occs := seedSeries(t, f.store, gen, details, first, pattern)
	require.Len(t, occs, 10)
	return &seriesFixture{
		capacityFixture: f,
		generator:       gen,
		propagator:      scheduling.NewSeriesPropagator(gen, f.manager, f.clock, discardLogger()),
		root:            root,
		occs:            occs,
	}
}

func (f *seriesFixture) apply(t *testing.T, target uuid.UUID, update scheduling.SeriesUpdate) (*scheduling.RecurrenceUpdateResult, error) {
	t.Helper()
	var result *scheduling.RecurrenceUpdateResult
	err := f.store.Within(context.Background(), []shared.LockKey{shared.SeriesLock(f.root.ID())}, func(ctx context.Context, tx shared.Tx) error {
		var err error
		result, err = f.propagator.ApplyUpdate(ctx, tx, target, update)
		return err
	})
	return result, err
}

func (f *seriesFixture) preview(t *testing.T, target uuid.UUID, update scheduling.SeriesUpdate) (*scheduling.RecurrenceUpdateResult, error) {
	t.Helper()
	var result *scheduling.RecurrenceUpdateResult
	err := f.store.WithinReadOnly(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		var err error
		result, err = f.propagator.PreviewUpdate(ctx, tx, target, update)
		return err
	})
	return result, err
}

type memberRow struct {
	Number int
	Start  time.Time
	Title  string
}

func seriesRows(t *testing.T, store *memstore.Store, seriesID uuid.UUID) []memberRow {
	t.Helper()
	var rows []memberRow
	read(t, store, func(ctx context.Context, tx shared.Tx) {
		members, err := tx.Activities().ListSeries(ctx, seriesID)
		require.NoError(t, err)
		for _, m := range members {
			rows = append(rows, memberRow{Number: m.OccurrenceNumber(), Start: m.Slot().Start(), Title: m.Details().Title})
		}
	})
	return rows
}

func seriesMember(t *testing.T, store *memstore.Store, seriesID uuid.UUID, number int) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	read(t, store, func(ctx context.Context, tx shared.Tx) {
		members, err := tx.Activities().ListSeries(ctx, seriesID)
		require.NoError(t, err)
		for _, m := range members {
			if m.OccurrenceNumber() == number {
				id = m.ID()
			}
		}
	})
	require.NotEqual(t, uuid.Nil, id, "occurrence %d not found", number)
	return id
}

// day returns hour:00 on March d.
func day(d, hour int) time.Time {
	return time.Date(2025, 3, d, hour, 0, 0, 0, time.UTC)
}

func TestApplyUpdate_ThisAndFutureRetimesTail(t *testing.T) {
	f := newSeriesFixture(t, classDetails(5, true))
	booked := f.register(t, f.occs[4].ID(), uuid.New())
	require.Equal(t, registration.StatusConfirmed, booked.Status)

	target := f.occs[3]
	newSlot := timeslot.MustNew(day(3, 14), day(3, 15))
	result, err := f.apply(t, target.ID(), scheduling.SeriesUpdate{Slot: &newSlot, Scope: scheduling.ScopeThisAndFuture})
	require.NoError(t, err)

	assert.True(t, result.Applied)
	assert.Empty(t, result.Reasons)
	assert.Equal(t, 3, result.Retained)
	assert.Equal(t, 7, result.Removed)
	assert.Equal(t, 7, result.Added)
	assert.Equal(t, 7, result.Retimed)
	assert.Equal(t, 1, result.CancelledRegistrations)

	require.NotNil(t, result.SplitFrom)
	assert.Equal(t, f.root.ID(), *result.SplitFrom)
	assert.NotEqual(t, f.root.ID(), result.SeriesID)

	title := classDetails(5, true).Title
	head := []memberRow{
		{Number: 1, Start: time.Date(2025, 2, 28, 10, 0, 0, 0, time.UTC), Title: title},
		{Number: 2, Start: day(1, 10), Title: title},
		{Number: 3, Start: day(2, 10), Title: title},
	}
	var tail []memberRow
	for n := 4; n <= 10; n++ {
		tail = append(tail, memberRow{Number: n, Start: day(n-1, 14), Title: title})
	}
	if diff := cmp.Diff(head, seriesRows(t, f.store, f.root.ID())); diff != "" {
		t.Errorf("head mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(tail, seriesRows(t, f.store, result.SeriesID)); diff != "" {
		t.Errorf("tail mismatch (-want +got):\n%s", diff)
	}

	tailRoot := getActivity(t, f.store, result.SeriesID)
	assert.True(t, tailRoot.IsSeriesRoot())
	assert.Equal(t, 4, tailRoot.StartNumber())
	assert.True(t, day(3, 14).Equal(tailRoot.Slot().Start()))

	regs := registrations(t, f.store, f.occs[4].ID())
	require.Len(t, regs, 1)
	assert.Equal(t, registration.StatusCancelled, regs[0].Status())
	assert.True(t, getActivity(t, f.store, f.occs[4].ID()).IsCancelled())
}

func TestApplyUpdate_ThisAndFutureWithNewPattern(t *testing.T) {
	f := newSeriesFixture(t, classDetails(5, true))
	pattern := recurrence.Pattern{
		Type:           recurrence.TypeWeekly,
		Interval:       1,
		Weekdays:       []time.Weekday{time.Monday, time.Thursday},
		MaxOccurrences: ptr.Of(8),
	}

	result, err := f.apply(t, f.occs[3].ID(), scheduling.SeriesUpdate{Pattern: &pattern, Scope: scheduling.ScopeThisAndFuture})
	require.NoError(t, err)

	// Occurrence 4 is Monday Mar 3; the new pattern allows five more.
	assert.Equal(t, 5, result.Added)
	assert.Equal(t, 7, result.Removed)
	starts := []time.Time{day(3, 10), day(6, 10), day(10, 10), day(13, 10), day(17, 10)}
	for i, occ := range result.AddedOccurrences {
		assert.Equal(t, i+4, occ.Number)
		assert.True(t, starts[i].Equal(occ.Slot.Start()), "occurrence %d at %s", occ.Number, occ.Slot)
	}

	tailRoot := getActivity(t, f.store, result.SeriesID)
	require.NotNil(t, tailRoot.Pattern())
	assert.True(t, tailRoot.Pattern().Equal(pattern))

	// The original root now ends before the split.
	root := getActivity(t, f.store, f.root.ID())
	require.NotNil(t, root.Pattern())
	assert.Equal(t, recurrence.TypeDaily, root.Pattern().Type)
	assert.Equal(t, 3, *root.Pattern().MaxOccurrences)
}

func TestApplyUpdate_EntireSeriesAfterThisAndFutureKeepsTail(t *testing.T) {
	f := newSeriesFixture(t, classDetails(5, true))
	newSlot := timeslot.MustNew(day(3, 14), day(3, 15))
	split, err := f.apply(t, f.occs[3].ID(), scheduling.SeriesUpdate{Slot: &newSlot, Scope: scheduling.ScopeThisAndFuture})
	require.NoError(t, err)
	tailID := split.SeriesID
	tailBefore := seriesRows(t, f.store, tailID)
	require.Len(t, tailBefore, 7)

	renamed := classDetails(5, true)
	renamed.Title = "Spin Class (renamed)"

	headEdit, err := f.apply(t, f.root.ID(), scheduling.SeriesUpdate{Details: &renamed, Scope: scheduling.ScopeEntireSeries})
	require.NoError(t, err)
	assert.True(t, headEdit.Applied)
	assert.Zero(t, headEdit.Retimed)
	assert.Zero(t, headEdit.Removed)
	assert.Zero(t, headEdit.Added)
	assert.Equal(t, 3, headEdit.Retained)
	if diff := cmp.Diff(tailBefore, seriesRows(t, f.store, tailID)); diff != "" {
		t.Errorf("head edit changed the tail (-before +after):\n%s", diff)
	}

	tailMember := seriesMember(t, f.store, tailID, 6)
	tailEdit, err := f.apply(t, tailMember, scheduling.SeriesUpdate{Details: &renamed, Scope: scheduling.ScopeEntireSeries})
	require.NoError(t, err)
	assert.Equal(t, tailID, tailEdit.SeriesID)
	assert.Nil(t, tailEdit.SplitFrom)
	assert.Zero(t, tailEdit.Retimed)
	assert.Equal(t, 7, tailEdit.Removed)
	assert.Equal(t, 7, tailEdit.Added)

	var want []memberRow
	for n := 4; n <= 10; n++ {
		want = append(want, memberRow{Number: n, Start: day(n-1, 14), Title: renamed.Title})
	}
	if diff := cmp.Diff(want, seriesRows(t, f.store, tailID)); diff != "" {
		t.Errorf("tail mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyUpdate_ThisAndFutureAtFirstPendingOccurrenceOfSplitTail(t *testing.T) {
	f := newSeriesFixture(t, classDetails(5, true))
	pattern := recurrence.Pattern{Type: recurrence.TypeDaily, Interval: 2, MaxOccurrences: ptr.Of(10)}
	split, err := f.apply(t, f.occs[3].ID(), scheduling.SeriesUpdate{Pattern: &pattern, Scope: scheduling.ScopeThisAndFuture})
	require.NoError(t, err)

	// The tail's first occurrence is its template's start, so no second split.
	first := seriesMember(t, f.store, split.SeriesID, 4)
	later := timeslot.MustNew(day(3, 16), day(3, 17))
	result, err := f.apply(t, first, scheduling.SeriesUpdate{Slot: &later, Scope: scheduling.ScopeThisAndFuture})
	require.NoError(t, err)
	assert.Equal(t, split.SeriesID, result.SeriesID)
	assert.Nil(t, result.SplitFrom)

	starts := []time.Time{day(3, 16), day(5, 16), day(7, 16), day(9, 16)}
	rows := seriesRows(t, f.store, split.SeriesID)
	require.Len(t, rows, 7)
	for i, want := range starts {
		assert.Equal(t, i+4, rows[i].Number)
		assert.True(t, want.Equal(rows[i].Start), "occurrence %d at %s", rows[i].Number, rows[i].Start)
	}
}

func TestApplyUpdate_EntireSeriesKeepsStartedOccurrences(t *testing.T) {
	f := newSeriesFixture(t, classDetails(5, true))
	details := classDetails(8, false)
	details.Title = "Spin Class (new bikes)"

	result, err := f.apply(t, f.occs[6].ID(), scheduling.SeriesUpdate{Details: &details, Scope: scheduling.ScopeEntireSeries})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Retained)
	assert.Equal(t, 7, result.Removed)
	assert.Equal(t, 7, result.Added)
	assert.Zero(t, result.Retimed)

	rows := seriesRows(t, f.store, f.root.ID())
	require.Len(t, rows, 10)
	for i, r := range rows {
		assert.Equal(t, i+1, r.Number)
		if i < 3 {
			assert.Equal(t, "Spin Class", r.Title)
		} else {
			assert.Equal(t, details.Title, r.Title)
		}
	}
	assert.Equal(t, details.Title, getActivity(t, f.store, f.root.ID()).Details().Title)
}

func TestPreviewUpdate_DoesNotWrite(t *testing.T) {
	f := newSeriesFixture(t, classDetails(5, true))
	before := seriesRows(t, f.store, f.root.ID())
	newSlot := timeslot.MustNew(day(3, 14), day(3, 15))

	preview, err := f.preview(t, f.occs[3].ID(), scheduling.SeriesUpdate{Slot: &newSlot, Scope: scheduling.ScopeThisAndFuture})
	require.NoError(t, err)
	assert.False(t, preview.Applied)
	assert.Equal(t, 7, preview.Added)
	assert.Equal(t, 7, preview.Retimed)

	if diff := cmp.Diff(before, seriesRows(t, f.store, f.root.ID())); diff != "" {
		t.Errorf("preview mutated the series (-before +after):\n%s", diff)
	}

	applied, err := f.apply(t, f.occs[3].ID(), scheduling.SeriesUpdate{Slot: &newSlot, Scope: scheduling.ScopeThisAndFuture})
	require.NoError(t, err)
	assert.Equal(t, preview.Added, applied.Added)
	assert.Equal(t, preview.Removed, applied.Removed)
	assert.Equal(t, preview.Retained, applied.Retained)
}

func TestPreviewUpdate_DefaultsToEntireSeries(t *testing.T) {
	f := newSeriesFixture(t, classDetails(5, true))
	pattern := recurrence.Pattern{Type: recurrence.TypeDaily, Interval: 2, MaxOccurrences: ptr.Of(10)}

	preview, err := f.preview(t, f.root.ID(), scheduling.SeriesUpdate{Pattern: &pattern})
	require.NoError(t, err)
	assert.Equal(t, scheduling.ScopeEntireSeries, preview.Scope)
	assert.Equal(t, 3, preview.Retained)
	assert.Equal(t, 7, preview.Removed)
}

func TestApplyUpdate_SingleOccurrenceDetachesAndPromotes(t *testing.T) {
	f := newSeriesFixture(t, classDetails(1, true))
	target := f.occs[5]
	first := f.register(t, target.ID(), uuid.New())
	waiting := f.register(t, target.ID(), uuid.New())
	require.Equal(t, registration.StatusConfirmed, first.Status)
	require.Equal(t, registration.StatusWaitlisted, waiting.Status)

	details := classDetails(2, true)
	result, err := f.apply(t, target.ID(), scheduling.SeriesUpdate{Details: &details, Scope: scheduling.ScopeSingleOccurrence})
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, 1, result.Promoted)
	assert.Zero(t, result.Added)
	assert.Zero(t, result.Removed)

	updated := getActivity(t, f.store, target.ID())
	assert.False(t, updated.InSeries())
	assert.Equal(t, 2, updated.Capacity())
	assert.Equal(t, 2, updated.Enrolled())
	assert.Len(t, registrations(t, f.store, target.ID(), registration.StatusConfirmed), 2)
	assert.Len(t, seriesRows(t, f.store, f.root.ID()), 9)
}

func TestApplyUpdate_Rejections(t *testing.T) {
	lowCapacity := classDetails(1, true)
	later := timeslot.MustNew(day(3, 14), day(3, 15))

	testCases := []struct {
		name       string
		target     func(t *testing.T, f *seriesFixture) uuid.UUID
		prepare    func(t *testing.T, f *seriesFixture)
		update     scheduling.SeriesUpdate
		wantReason string
		wantErr    func(error) bool
	}{
		{
			name: "standalone activity is not a series",
			target: func(t *testing.T, f *seriesFixture) uuid.UUID {
				return seedActivity(t, f.store, classDetails(5, true), slotAt(10, 9, 0, time.Hour)).ID()
			},
			update:  scheduling.SeriesUpdate{Slot: &later, Scope: scheduling.ScopeEntireSeries},
			wantErr: errs.IsValidation,
		},
		{
			name:    "unknown activity",
			target:  func(*testing.T, *seriesFixture) uuid.UUID { return uuid.New() },
			update:  scheduling.SeriesUpdate{Slot: &later, Scope: scheduling.ScopeEntireSeries},
			wantErr: errs.IsNotFound,
		},
		{
			name:    "empty update",
			target:  func(_ *testing.T, f *seriesFixture) uuid.UUID { return f.occs[5].ID() },
			update:  scheduling.SeriesUpdate{Scope: scheduling.ScopeEntireSeries},
			wantErr: errs.IsValidation,
		},
		{
			name:    "unknown scope",
			target:  func(_ *testing.T, f *seriesFixture) uuid.UUID { return f.occs[5].ID() },
			update:  scheduling.SeriesUpdate{Slot: &later, Scope: "everything"},
			wantErr: errs.IsValidation,
		},
		{
			name:   "pattern change on a single occurrence",
			target: func(_ *testing.T, f *seriesFixture) uuid.UUID { return f.occs[5].ID() },
			update: scheduling.SeriesUpdate{
				Pattern: &recurrence.Pattern{Type: recurrence.TypeDaily, Interval: 1, MaxOccurrences: ptr.Of(2)},
				Scope:   scheduling.ScopeSingleOccurrence,
			},
			wantErr: errs.IsValidation,
		},
		{
			name:    "single occurrence edit of the template",
			target:  func(_ *testing.T, f *seriesFixture) uuid.UUID { return f.root.ID() },
			update:  scheduling.SeriesUpdate{Slot: &later, Scope: scheduling.ScopeSingleOccurrence},
			wantErr: errs.IsValidation,
		},
		{
			name:       "started occurrence",
			target:     func(_ *testing.T, f *seriesFixture) uuid.UUID { return f.occs[1].ID() },
			update:     scheduling.SeriesUpdate{Slot: &later, Scope: scheduling.ScopeSingleOccurrence},
			wantReason: scheduling.ReasonOccurrenceStarted,
		},
		{
			name:   "capacity below confirmed count",
			target: func(_ *testing.T, f *seriesFixture) uuid.UUID { return f.occs[5].ID() },
			prepare: func(t *testing.T, f *seriesFixture) {
				f.register(t, f.occs[5].ID(), uuid.New())
				f.register(t, f.occs[5].ID(), uuid.New())
			},
			update:     scheduling.SeriesUpdate{Details: &lowCapacity, Scope: scheduling.ScopeSingleOccurrence},
			wantReason: activity.ErrCapacityExceeded.Error() + " (2 confirmed)",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newSeriesFixture(t, classDetails(5, true))
			if tc.prepare != nil {
				tc.prepare(t, f)
			}
			before := seriesRows(t, f.store, f.root.ID())

			result, err := f.apply(t, tc.target(t, f), tc.update)

			if tc.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tc.wantErr(err), "unexpected error category: %v", err)
			} else {
				require.NoError(t, err)
				assert.False(t, result.Applied)
				assert.Equal(t, []string{tc.wantReason}, result.Reasons)
			}
			if diff := cmp.Diff(before, seriesRows(t, f.store, f.root.ID())); diff != "" {
				t.Errorf("rejected update mutated the series (-before +after):\n%s", diff)
			}
		})
	}
}
