//go:build unit

package timeslot_test

import (
	"math/rand"
	"testing"
	"time"

	"club-scheduler/internal/domain/timeslot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return base.Add(time.Duration(h-10)*time.Hour + time.Duration(m)*time.Minute)
}

func TestOverlaps(t *testing.T) {
	testCases := []struct {
		name       string
		aStart     time.Time
		aEnd       time.Time
		bStart     time.Time
		bEnd       time.Time
		wantResult bool
		wantKind   timeslot.OverlapKind
		wantMin    int
	}{
		{
			name:   "partial: b starts inside a",
			aStart: at(10, 0), aEnd: at(11, 0), bStart: at(10, 30), bEnd: at(11, 30),
			wantResult: true, wantKind: timeslot.PartialOverlap, wantMin: 30,
		},
		{
			name:   "adjacent: b starts at a end",
			aStart: at(10, 0), aEnd: at(11, 0), bStart: at(11, 0), bEnd: at(12, 0),
			wantResult: false, wantKind: timeslot.Adjacent, wantMin: 0,
		},
		{
			name:   "adjacent: b ends at a start",
			aStart: at(10, 0), aEnd: at(11, 0), bStart: at(9, 0), bEnd: at(10, 0),
			wantResult: false, wantKind: timeslot.Adjacent, wantMin: 0,
		},
		{
			name:   "disjoint",
			aStart: at(10, 0), aEnd: at(11, 0), bStart: at(13, 0), bEnd: at(14, 0),
			wantResult: false, wantKind: timeslot.Adjacent, wantMin: 0,
		},
		{
			name:   "a contains b",
			aStart: at(9, 0), aEnd: at(12, 0), bStart: at(10, 0), bEnd: at(11, 0),
			wantResult: true, wantKind: timeslot.CompleteOverlap, wantMin: 60,
		},
		{
			name:   "b contains a",
			aStart: at(10, 15), aEnd: at(10, 45), bStart: at(10, 0), bEnd: at(11, 0),
			wantResult: true, wantKind: timeslot.ContainedWithin, wantMin: 30,
		},
		{
			name:   "identical intervals",
			aStart: at(10, 0), aEnd: at(11, 0), bStart: at(10, 0), bEnd: at(11, 0),
			wantResult: true, wantKind: timeslot.CompleteOverlap, wantMin: 60,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantResult, timeslot.Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd))
			assert.Equal(t, tc.wantResult, timeslot.Overlaps(tc.bStart, tc.bEnd, tc.aStart, tc.aEnd), "overlap must be symmetric")
			assert.Equal(t, tc.wantKind, timeslot.ClassifyOverlap(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd))
			assert.Equal(t, tc.wantMin, timeslot.OverlapMinutes(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd))
		})
	}
}

func TestTimeSlot(t *testing.T) {
	t.Run("rejects empty and inverted intervals", func(t *testing.T) {
		_, err := timeslot.New(at(10, 0), at(10, 0))
		require.ErrorIs(t, err, timeslot.ErrInvalidTimeSlot)
		_, err = timeslot.New(at(11, 0), at(10, 0))
		require.ErrorIs(t, err, timeslot.ErrInvalidTimeSlot)
	})

	t.Run("contains is half-open", func(t *testing.T) {
		ts := timeslot.MustNew(at(10, 0), at(11, 0))
		assert.True(t, ts.Contains(at(10, 0)))
		assert.True(t, ts.Contains(at(10, 59)))
		assert.False(t, ts.Contains(at(11, 0)))
	})

	t.Run("lead time boundary is inclusive", func(t *testing.T) {
		ts := timeslot.MustNew(at(12, 0), at(13, 0))
		assert.True(t, ts.MeetsLeadTime(at(10, 0), 2*time.Hour))
		assert.False(t, ts.MeetsLeadTime(at(10, 1), 2*time.Hour))
	})

	t.Run("tstzrange literal", func(t *testing.T) {
		ts := timeslot.MustNew(at(10, 0), at(11, 0))
		assert.Equal(t, "[2025-03-03T10:00:00Z,2025-03-03T11:00:00Z)", ts.ToTstzrange())
	})
}

// A greedy admitter that only accepts slots not overlapping anything already
// accepted must leave a pairwise non-overlapping set, whatever the input.
func TestOverlaps_NoDoubleBookingProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42)) // #nosec G404 -- deterministic test data

	for round := 0; round < 200; round++ {
		var accepted []timeslot.TimeSlot
		for i := 0; i < 40; i++ {
			start := base.Add(time.Duration(rng.Intn(48)) * 15 * time.Minute)
			end := start.Add(time.Duration(1+rng.Intn(8)) * 15 * time.Minute)
			candidate := timeslot.MustNew(start, end)

			clash := false
			for _, a := range accepted {
				if a.Overlaps(candidate) {
					clash = true
					break
				}
			}
			if !clash {
				accepted = append(accepted, candidate)
			}
		}

		for i := range accepted {
			for j := i + 1; j < len(accepted); j++ {
				require.False(t, accepted[i].Overlaps(accepted[j]),
					"round %d: %s overlaps %s", round, accepted[i], accepted[j])
				require.Zero(t, timeslot.OverlapMinutes(
					accepted[i].Start(), accepted[i].End(), accepted[j].Start(), accepted[j].End()))
			}
		}
	}
}
