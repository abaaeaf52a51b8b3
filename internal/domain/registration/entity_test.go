//go:build unit

package registration_test

import (
	"testing"
	"time"

	"club-scheduler/internal/domain/registration"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestRegistration(t *testing.T) {
	t.Run("waitlisted requires a position", func(t *testing.T) {
		_, err := registration.NewWaitlisted(uuid.New(), uuid.New(), "", 0, now)
		assert.ErrorIs(t, err, registration.ErrInvalidPosition)

		r, err := registration.NewWaitlisted(uuid.New(), uuid.New(), "", 3, now)
		require.NoError(t, err)
		assert.Equal(t, 3, *r.WaitlistPosition())
		assert.True(t, r.IsActive())
	})

	t.Run("promotion clears the position", func(t *testing.T) {
		r, err := registration.NewWaitlisted(uuid.New(), uuid.New(), "", 1, now)
		require.NoError(t, err)
		require.NoError(t, r.Promote(now.Add(time.Minute)))
		assert.Equal(t, registration.StatusConfirmed, r.Status())
		assert.Nil(t, r.WaitlistPosition())
		assert.ErrorIs(t, r.Promote(now), registration.ErrNotWaitlisted)
	})

	t.Run("cancel twice is rejected", func(t *testing.T) {
		r, err := registration.NewConfirmed(uuid.New(), uuid.New(), "", now)
		require.NoError(t, err)

		wasConfirmed, err := r.Cancel(now)
		require.NoError(t, err)
		assert.True(t, wasConfirmed)
		assert.False(t, r.IsActive())

		_, err = r.Cancel(now)
		assert.ErrorIs(t, err, registration.ErrAlreadyCancelled)
	})

	t.Run("renumbering reports changes only", func(t *testing.T) {
		r, err := registration.NewWaitlisted(uuid.New(), uuid.New(), "", 2, now)
		require.NoError(t, err)

		changed, err := r.SetWaitlistPosition(2, now)
		require.NoError(t, err)
		assert.False(t, changed)

		changed, err = r.SetWaitlistPosition(1, now)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, 1, *r.WaitlistPosition())
	})

	t.Run("declined is not active", func(t *testing.T) {
		r, err := registration.NewDeclined(uuid.New(), uuid.New(), "", now)
		require.NoError(t, err)
		assert.False(t, r.IsActive())
		assert.Nil(t, r.WaitlistPosition())
	})
}
