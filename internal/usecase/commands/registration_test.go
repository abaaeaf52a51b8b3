//go:build unit

package commands_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"club-scheduler/internal/domain/registration"
	"club-scheduler/internal/pkg/errs"
	"club-scheduler/internal/usecase/commands"
	"club-scheduler/internal/usecase/scheduling"
	"club-scheduler/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_ConfirmsThenWaitlists(t *testing.T) {
	e := newEnv()
	activityID := e.createClass(t, 2, true, at(5, 18, 0))

	a := e.register(t, activityID, uuid.New())
	b := e.register(t, activityID, uuid.New())
	c := e.register(t, activityID, uuid.New())
	d := e.register(t, activityID, uuid.New())

	assert.Equal(t, registration.StatusConfirmed, a.Status)
	assert.Equal(t, registration.StatusConfirmed, b.Status)
	assert.Equal(t, registration.StatusWaitlisted, c.Status)
	assert.Equal(t, 1, *c.WaitlistPosition)
	assert.Equal(t, 2, *d.WaitlistPosition)
	assert.Equal(t, 2, e.activity(t, activityID).Enrolled())
	assert.Equal(t, []string{shared.TopicRegistrationConfirmed, shared.TopicRegistrationConfirmed}, e.topics())
}

func TestRegister_Declines(t *testing.T) {
	memberID := uuid.New()

	testCases := []struct {
		name       string
		capacity   int
		waitlist   bool
		setup      func(t *testing.T, e *env, activityID uuid.UUID)
		wantReason string
	}{
		{
			name:     "full without waitlist",
			capacity: 1,
			setup: func(t *testing.T, e *env, activityID uuid.UUID) {
				e.register(t, activityID, uuid.New())
			},
			wantReason: scheduling.ReasonEventFull,
		},
		{
			name:     "already registered",
			capacity: 5,
			setup: func(t *testing.T, e *env, activityID uuid.UUID) {
				e.register(t, activityID, memberID)
			},
			wantReason: scheduling.ReasonAlreadyRegistered,
		},
		{
			name:     "already started",
			capacity: 5,
			setup: func(t *testing.T, e *env, _ uuid.UUID) {
				e.clock.Set(at(5, 18, 30))
			},
			wantReason: scheduling.ReasonEventStarted,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv()
			activityID := e.createClass(t, tc.capacity, tc.waitlist, at(5, 18, 0))
			tc.setup(t, e, activityID)
			jobsBefore := len(e.store.Jobs())

			outcome := e.register(t, activityID, memberID)

			assert.Equal(t, registration.StatusDeclined, outcome.Status)
			assert.Nil(t, outcome.Registration)
			assert.Equal(t, []string{tc.wantReason}, outcome.Reasons)
			assert.Len(t, e.store.Jobs(), jobsBefore)
		})
	}
}

func TestRegister_Errors(t *testing.T) {
	e := newEnv()
	activityID := e.createClass(t, 5, false, at(5, 18, 0))

	_, err := e.registrations.Register(context.Background(), commands.RegisterCommand{ActivityID: uuid.New(), MemberID: uuid.New()})
	assert.True(t, errs.IsNotFound(err))

	_, err = e.registrations.Register(context.Background(), commands.RegisterCommand{
		ActivityID: activityID,
		MemberID:   uuid.New(),
		Notes:      strings.Repeat("x", registration.MaxNotesLength+1),
	})
	assert.True(t, errs.IsValidation(err))
}

func TestRegister_Idempotency(t *testing.T) {
	e := newEnv()
	activityID := e.createClass(t, 1, true, at(5, 18, 0))
	e.register(t, activityID, uuid.New())
	cmd := commands.RegisterCommand{ActivityID: activityID, MemberID: uuid.New(), IdempotencyKey: uuid.New()}

	first, err := e.registrations.Register(context.Background(), cmd)
	require.NoError(t, err)
	require.Equal(t, registration.StatusWaitlisted, first.Status)

	second, err := e.registrations.Register(context.Background(), cmd)
	require.NoError(t, err)
	assert.True(t, second.IsReplayed)
	assert.Equal(t, first.Registration.ID, second.Registration.ID)
	assert.Equal(t, 1, *second.WaitlistPosition)
	assert.Len(t, registrationsOf(t, e, activityID, registration.StatusWaitlisted), 1)
}

func TestCancelRegistration_PromotesFromWaitlist(t *testing.T) {
	e := newEnv()
	activityID := e.createClass(t, 1, true, at(5, 18, 0))
	owner := uuid.New()
	a := e.register(t, activityID, owner)
	b := e.register(t, activityID, uuid.New())
	c := e.register(t, activityID, uuid.New())

	e.clock.Add(time.Minute)
	outcome, err := e.registrations.CancelRegistration(context.Background(), a.Registration.ID, memberActor(owner))

	require.NoError(t, err)
	assert.Empty(t, outcome.Reasons)
	assert.Equal(t, registration.StatusCancelled.String(), outcome.Registration.Status)
	require.Len(t, outcome.Promoted, 1)
	assert.Equal(t, b.Registration.ID, outcome.Promoted[0].ID)
	assert.Equal(t, registration.StatusConfirmed.String(), outcome.Promoted[0].Status)

	waitlisted := registrationsOf(t, e, activityID, registration.StatusWaitlisted)
	require.Len(t, waitlisted, 1)
	assert.Equal(t, c.Registration.ID, waitlisted[0].ID())
	assert.Equal(t, 1, *waitlisted[0].WaitlistPosition())
	assert.Equal(t, 1, e.activity(t, activityID).Enrolled())
	assert.Contains(t, e.topics(), shared.TopicRegistrationPromoted)
	assert.Contains(t, e.topics(), shared.TopicRegistrationCancelled)
}

func TestCancelRegistration_Access(t *testing.T) {
	e := newEnv()
	activityID := e.createClass(t, 3, false, at(5, 18, 0))
	owner := uuid.New()
	reg := e.register(t, activityID, owner)

	_, err := e.registrations.CancelRegistration(context.Background(), reg.Registration.ID, memberActor(uuid.New()))
	assert.True(t, errs.IsForbidden(err))
	assert.Len(t, registrationsOf(t, e, activityID, registration.StatusConfirmed), 1)

	outcome, err := e.registrations.CancelRegistration(context.Background(), reg.Registration.ID, staffActor())
	require.NoError(t, err)
	assert.Empty(t, outcome.Reasons)

	outcome, err = e.registrations.CancelRegistration(context.Background(), reg.Registration.ID, memberActor(owner))
	require.NoError(t, err)
	assert.Equal(t, []string{scheduling.ReasonAlreadyCancelled}, outcome.Reasons)

	_, err = e.registrations.CancelRegistration(context.Background(), uuid.New(), staffActor())
	assert.True(t, errs.IsNotFound(err))
}

func registrationsOf(t *testing.T, e *env, activityID uuid.UUID, statuses ...registration.Status) []*registration.Registration {
	t.Helper()
	var regs []*registration.Registration
	require.NoError(t, e.store.WithinReadOnly(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		var err error
		regs, err = tx.Registrations().ListByActivity(ctx, activityID, statuses...)
		return err
	}))
	return regs
}
