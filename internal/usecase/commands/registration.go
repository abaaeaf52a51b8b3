package commands

//go:generate mockgen -source=$GOFILE -destination=../../testutil/mock/commands/$GOFILE -package=commandsmock

import (
	"context"
	"log/slog"

	"club-scheduler/internal/domain/registration"
	"club-scheduler/internal/infra"
	"club-scheduler/internal/pkg/clock"
	"club-scheduler/internal/pkg/errs"
	"club-scheduler/internal/usecase/queries"
	"club-scheduler/internal/usecase/scheduling"
	"club-scheduler/internal/usecase/shared"

	"github.com/google/uuid"
)

var errRegistrationRaced = errs.New("registration lost a race with a concurrent request")

type RegisterCommand struct {
	ActivityID     uuid.UUID `json:"activityId"`
	MemberID       uuid.UUID `json:"memberId"`
	Notes          string    `json:"notes"`
	IdempotencyKey uuid.UUID `json:"-"`
}

type RegistrationOutcome struct {
	// Registration is nil when the request was declined.
	Registration     *queries.RegistrationView
	Status           registration.Status
	WaitlistPosition *int
	Reasons          []string
	IsReplayed       bool
}

type CancelRegistrationOutcome struct {
	Registration *queries.RegistrationView
	Promoted     []*queries.RegistrationView
	Reasons      []string
}

type RegistrationCommands interface {
	Register(ctx context.Context, cmd RegisterCommand) (*RegistrationOutcome, error)
	CancelRegistration(ctx context.Context, id uuid.UUID, actor Actor) (*CancelRegistrationOutcome, error)
}

type registrationCommandsImpl struct {
	uow         shared.UnitOfWork
	idempotency shared.IdempotencyStore
	capacity    *scheduling.CapacityManager
	clock       clock.Clock
	logger      *slog.Logger
}

func NewRegistrationCommands(
	uow shared.UnitOfWork,
	idempotency shared.IdempotencyStore,
	capacity *scheduling.CapacityManager,
	clock clock.Clock,
	logger *slog.Logger,
) RegistrationCommands {
	return &registrationCommandsImpl{
		uow:         uow,
		idempotency: idempotency,
		capacity:    capacity,
		clock:       clock,
		logger:      logger,
	}
}

func (c *registrationCommandsImpl) Register(ctx context.Context, cmd RegisterCommand) (*RegistrationOutcome, error) {
	if len(cmd.Notes) > registration.MaxNotesLength {
		return nil, errs.Mark(registration.ErrNotesTooLong, errs.ErrValidation)
	}

	guard := newIdempotencyGuard(c.idempotency, c.logger, cmd.MemberID, "POST /activities/registrations", cmd.IdempotencyKey, cmd)
	replayID, err := guard.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer guard.release(ctx)
	if replayID != nil {
		return c.replayRegistration(ctx, *replayID)
	}

	var outcome *RegistrationOutcome
	err = c.uow.Within(ctx, []shared.LockKey{shared.ActivityLock(cmd.ActivityID)}, func(ctx context.Context, tx shared.Tx) error {
		outcome = nil
		result, err := c.capacity.Register(ctx, tx, cmd.ActivityID, cmd.MemberID, cmd.Notes)
		if err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				outcome = &RegistrationOutcome{Status: registration.StatusDeclined, Reasons: []string{scheduling.ReasonAlreadyRegistered}}
				return errRegistrationRaced
			}
			return err
		}

		outcome = &RegistrationOutcome{
			Status:           result.Status,
			WaitlistPosition: result.WaitlistPosition,
			Reasons:          result.Reasons,
		}
		if result.Status == registration.StatusDeclined {
			return nil
		}
		outcome.Registration = queries.NewRegistrationView(result.Registration)

		if result.Status == registration.StatusConfirmed {
			return shared.Notify(ctx, tx.Notifications(), shared.TopicRegistrationConfirmed, map[string]any{
				"registration_id": result.Registration.ID(),
				"activity_id":     cmd.ActivityID,
				"member_id":       cmd.MemberID,
			}, c.clock.Now())
		}
		return nil
	})
	if err != nil && !errs.Is(err, errRegistrationRaced) {
		return nil, err
	}

	if outcome.Registration == nil {
		c.logger.InfoContext(ctx, "registration declined",
			"activity_id", cmd.ActivityID,
			"member_id", cmd.MemberID,
			"reasons", outcome.Reasons)
		return outcome, nil
	}
	if err := guard.complete(ctx, outcome.Registration.ID); err != nil {
		return nil, err
	}
	return outcome, nil
}

func (c *registrationCommandsImpl) replayRegistration(ctx context.Context, id uuid.UUID) (*RegistrationOutcome, error) {
	var outcome *RegistrationOutcome
	err := c.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		reg, err := tx.Registrations().Get(ctx, id)
		if err != nil {
			return err
		}
		outcome = &RegistrationOutcome{
			Registration:     queries.NewRegistrationView(reg),
			Status:           reg.Status(),
			WaitlistPosition: reg.WaitlistPosition(),
			IsReplayed:       true,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

func (c *registrationCommandsImpl) CancelRegistration(ctx context.Context, id uuid.UUID, actor Actor) (*CancelRegistrationOutcome, error) {
	var activityID uuid.UUID
	err := c.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		reg, err := tx.Registrations().Get(ctx, id)
		if err != nil {
			return err
		}
		activityID = reg.ActivityID()
		return nil
	})
	if err != nil {
		return nil, err
	}

	var outcome *CancelRegistrationOutcome
	err = c.uow.Within(ctx, []shared.LockKey{shared.ActivityLock(activityID)}, func(ctx context.Context, tx shared.Tx) error {
		reg, err := tx.Registrations().Get(ctx, id)
		if err != nil {
			return err
		}
		if !actor.CanAccess(reg.MemberID()) {
			return errs.Forbidden("registration belongs to another member")
		}

		result, err := c.capacity.Cancel(ctx, tx, id)
		if err != nil {
			return err
		}
		outcome = &CancelRegistrationOutcome{
			Registration: queries.NewRegistrationView(result.Registration),
			Promoted:     queries.NewRegistrationViews(result.Promotion.Promoted),
			Reasons:      result.Reasons,
		}
		if len(result.Reasons) > 0 {
			return nil
		}
		return shared.Notify(ctx, tx.Notifications(), shared.TopicRegistrationCancelled, map[string]any{
			"registration_id": id,
			"activity_id":     activityID,
			"member_id":       reg.MemberID(),
			"cancelled_by":    actor.MemberID,
		}, c.clock.Now())
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}
