package commands

//go:generate mockgen -source=$GOFILE -destination=../../testutil/mock/commands/$GOFILE -package=commandsmock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"club-scheduler/internal/domain/reservation"
	"club-scheduler/internal/domain/resource"
	"club-scheduler/internal/domain/timeslot"
	"club-scheduler/internal/infra"
	"club-scheduler/internal/pkg/clock"
	"club-scheduler/internal/pkg/config"
	"club-scheduler/internal/pkg/errs"
	"club-scheduler/internal/usecase/queries"
	"club-scheduler/internal/usecase/scheduling"
	"club-scheduler/internal/usecase/shared"

	"github.com/google/uuid"
)

var errBookingRaced = errs.New("reservation lost a race for the slot")

const (
	ReasonTooCloseToStart = "booking too close to start time to modify"
	ReasonPartyTooLarge   = "party size exceeds the resource capacity"
)

type CreateReservationCommand struct {
	ResourceID     uuid.UUID `json:"resourceId"`
	MemberID       uuid.UUID `json:"memberId"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	PartySize      int       `json:"partySize"`
	Notes          string    `json:"notes"`
	IdempotencyKey uuid.UUID `json:"-"`
}

type BookingResult struct {
	// Reservation is nil when the booking was rejected.
	Reservation  *queries.ReservationView
	Availability *queries.AvailabilityView
	Reasons      []string
	IsReplayed   bool
}

func (r *BookingResult) Booked() bool {
	return r.Reservation != nil
}

type ReservationChangeResult struct {
	Reservation *queries.ReservationView
	// Reasons is set when the change was refused.
	Reasons []string
}

type ReservationCommands interface {
	CreateReservation(ctx context.Context, cmd CreateReservationCommand) (*BookingResult, error)
	CancelReservation(ctx context.Context, id uuid.UUID, actor Actor) (*ReservationChangeResult, error)
	CheckIn(ctx context.Context, id uuid.UUID) (*ReservationChangeResult, error)
	CheckOut(ctx context.Context, id uuid.UUID) (*ReservationChangeResult, error)
}

type reservationCommandsImpl struct {
	uow           shared.UnitOfWork
	idempotency   shared.IdempotencyStore
	checker       *scheduling.AvailabilityChecker
	clock         clock.Clock
	checkInWindow time.Duration
	logger        *slog.Logger
}

func NewReservationCommands(
	uow shared.UnitOfWork,
	idempotency shared.IdempotencyStore,
	checker *scheduling.AvailabilityChecker,
	clock clock.Clock,
	cfg config.Config,
	logger *slog.Logger,
) ReservationCommands {
	return &reservationCommandsImpl{
		uow:           uow,
		idempotency:   idempotency,
		checker:       checker,
		clock:         clock,
		checkInWindow: cfg.Scheduling.CheckInWindow,
		logger:        logger,
	}
}

func (c *reservationCommandsImpl) CreateReservation(ctx context.Context, cmd CreateReservationCommand) (*BookingResult, error) {
	slot, err := timeslot.New(cmd.Start, cmd.End)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrValidation)
	}
	if cmd.PartySize < 1 {
		return nil, errs.Mark(reservation.ErrInvalidPartySize, errs.ErrValidation)
	}

	guard := newIdempotencyGuard(c.idempotency, c.logger, cmd.MemberID, "POST /reservations", cmd.IdempotencyKey, cmd)
	replayID, err := guard.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer guard.release(ctx)
	if replayID != nil {
		return c.replayReservation(ctx, *replayID)
	}

	var result *BookingResult
	err = c.uow.Within(ctx, []shared.LockKey{shared.ResourceLock(cmd.ResourceID)}, func(ctx context.Context, tx shared.Tx) error {
		result = nil
		res, err := tx.Resources().Get(ctx, cmd.ResourceID)
		if err != nil {
			return err
		}

		now := c.clock.Now()
		if !slot.MeetsLeadTime(now, res.LeadTime()) {
			result = &BookingResult{Reasons: []string{leadTimeReason(res)}}
			return nil
		}
		if !res.AllowsParty(cmd.PartySize) {
			result = &BookingResult{Reasons: []string{ReasonPartyTooLarge}}
			return nil
		}

		availability, err := c.checker.CheckAvailability(ctx, tx.Reservations(), res, slot, nil)
		if err != nil {
			return err
		}
		if !availability.IsAvailable {
			result = &BookingResult{
				Availability: queries.NewAvailabilityView(availability),
				Reasons:      availability.ConflictReasons,
			}
			return nil
		}

		rsv, err := reservation.NewReservation(cmd.ResourceID, cmd.MemberID, slot, cmd.PartySize, cmd.Notes, now)
		if err != nil {
			return errs.Mark(err, errs.ErrValidation)
		}
		if err := tx.Reservations().Create(ctx, rsv); err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				// The statement failed, so the transaction must roll back.
				result = &BookingResult{Reasons: []string{scheduling.ReasonSlotConflict}}
				return errBookingRaced
			}
			return err
		}
		if err := shared.Notify(ctx, tx.Notifications(), shared.TopicReservationConfirmed, map[string]any{
			"reservation_id": rsv.ID(),
			"resource_id":    rsv.ResourceID(),
			"member_id":      rsv.MemberID(),
			"start":          rsv.Slot().Start(),
			"end":            rsv.Slot().End(),
		}, now); err != nil {
			return err
		}

		result = &BookingResult{
			Reservation:  queries.NewReservationView(rsv),
			Availability: queries.NewAvailabilityView(availability),
		}
		return nil
	})
	if err != nil && !errs.Is(err, errBookingRaced) {
		return nil, err
	}

	if !result.Booked() {
		c.logger.InfoContext(ctx, "booking rejected",
			"resource_id", cmd.ResourceID,
			"member_id", cmd.MemberID,
			"slot", slot.String(),
			"reasons", result.Reasons)
		return result, nil
	}
	if err := guard.complete(ctx, result.Reservation.ID); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *reservationCommandsImpl) replayReservation(ctx context.Context, id uuid.UUID) (*BookingResult, error) {
	var view *queries.ReservationView
	err := c.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		rsv, err := tx.Reservations().Get(ctx, id)
		if err != nil {
			return err
		}
		view = queries.NewReservationView(rsv)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &BookingResult{Reservation: view, IsReplayed: true}, nil
}

func (c *reservationCommandsImpl) CancelReservation(ctx context.Context, id uuid.UUID, actor Actor) (*ReservationChangeResult, error) {
	rsv, err := c.peekReservation(ctx, id)
	if err != nil {
		return nil, err
	}

	var result *ReservationChangeResult
	err = c.uow.Within(ctx, []shared.LockKey{shared.ResourceLock(rsv.ResourceID())}, func(ctx context.Context, tx shared.Tx) error {
		rsv, err := tx.Reservations().Get(ctx, id)
		if err != nil {
			return err
		}
		if !actor.CanAccess(rsv.MemberID()) {
			return errs.Forbidden("reservation belongs to another member")
		}

		now := c.clock.Now()
		if !actor.IsStaff() && (rsv.Status() == reservation.StatusPending || rsv.Status() == reservation.StatusConfirmed) {
			res, err := tx.Resources().Get(ctx, rsv.ResourceID())
			if err != nil {
				return err
			}
			if rsv.WithinLeadTime(now, res.LeadTime()) {
				result = &ReservationChangeResult{Reservation: queries.NewReservationView(rsv), Reasons: []string{ReasonTooCloseToStart}}
				return nil
			}
		}

		if err := rsv.Cancel(now); err != nil {
			if reason, ok := transitionReason(err); ok {
				result = &ReservationChangeResult{Reservation: queries.NewReservationView(rsv), Reasons: []string{reason}}
				return nil
			}
			return err
		}
		if err := tx.Reservations().Update(ctx, rsv); err != nil {
			return err
		}
		if err := shared.Notify(ctx, tx.Notifications(), shared.TopicReservationCancelled, map[string]any{
			"reservation_id": rsv.ID(),
			"member_id":      rsv.MemberID(),
			"cancelled_by":   actor.MemberID,
		}, now); err != nil {
			return err
		}
		result = &ReservationChangeResult{Reservation: queries.NewReservationView(rsv)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *reservationCommandsImpl) CheckIn(ctx context.Context, id uuid.UUID) (*ReservationChangeResult, error) {
	return c.transition(ctx, id, func(rsv *reservation.Reservation, now time.Time) error {
		return rsv.CheckIn(now, c.checkInWindow)
	})
}

func (c *reservationCommandsImpl) CheckOut(ctx context.Context, id uuid.UUID) (*ReservationChangeResult, error) {
	return c.transition(ctx, id, func(rsv *reservation.Reservation, now time.Time) error {
		return rsv.CheckOut(now)
	})
}

func (c *reservationCommandsImpl) transition(ctx context.Context, id uuid.UUID, apply func(*reservation.Reservation, time.Time) error) (*ReservationChangeResult, error) {
	rsv, err := c.peekReservation(ctx, id)
	if err != nil {
		return nil, err
	}

	var result *ReservationChangeResult
	err = c.uow.Within(ctx, []shared.LockKey{shared.ResourceLock(rsv.ResourceID())}, func(ctx context.Context, tx shared.Tx) error {
		rsv, err := tx.Reservations().Get(ctx, id)
		if err != nil {
			return err
		}
		if err := apply(rsv, c.clock.Now()); err != nil {
			if reason, ok := transitionReason(err); ok {
				result = &ReservationChangeResult{Reservation: queries.NewReservationView(rsv), Reasons: []string{reason}}
				return nil
			}
			return err
		}
		if err := tx.Reservations().Update(ctx, rsv); err != nil {
			return err
		}
		result = &ReservationChangeResult{Reservation: queries.NewReservationView(rsv)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// peekReservation reads outside the write transaction to learn which
// resource lock to take; the write re-reads under the lock.
func (c *reservationCommandsImpl) peekReservation(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	var rsv *reservation.Reservation
	err := c.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		rsv, err = tx.Reservations().Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rsv, nil
}

func leadTimeReason(res *resource.Resource) string {
	return fmt.Sprintf("booking must be made at least %d minutes in advance", res.LeadTimeMin())
}
