package commands

//go:generate mockgen -source=$GOFILE -destination=../../testutil/mock/commands/$GOFILE -package=commandsmock

import (
	"context"
	"log/slog"
	"time"

	"club-scheduler/internal/domain/reservation"
	"club-scheduler/internal/pkg/clock"
	"club-scheduler/internal/pkg/config"
	"club-scheduler/internal/usecase/shared"
)

type SweepResult struct {
	NoShow    int
	Completed int
}

type MaintenanceCommands interface {
	// SweepReservations settles reservations whose slot is over: confirmed
	// ones past the grace period become no-shows and checked-in or
	// checked-out ones become completed.
	SweepReservations(ctx context.Context) (*SweepResult, error)
}

type maintenanceCommandsImpl struct {
	uow    shared.UnitOfWork
	clock  clock.Clock
	grace  time.Duration
	logger *slog.Logger
}

func NewMaintenanceCommands(uow shared.UnitOfWork, clock clock.Clock, cfg config.Config, logger *slog.Logger) MaintenanceCommands {
	return &maintenanceCommandsImpl{
		uow:    uow,
		clock:  clock,
		grace:  cfg.Scheduling.NoShowGrace,
		logger: logger,
	}
}

func (c *maintenanceCommandsImpl) SweepReservations(ctx context.Context) (*SweepResult, error) {
	now := c.clock.Now()
	result := &SweepResult{}

	// Status changes of finished slots never create overlaps, so no resource
	// lock is needed.
	err := c.uow.Within(ctx, nil, func(ctx context.Context, tx shared.Tx) error {
		*result = SweepResult{}
		candidates, err := tx.Reservations().ListEndedBefore(ctx, now,
			reservation.StatusConfirmed, reservation.StatusCheckedIn, reservation.StatusCheckedOut)
		if err != nil {
			return err
		}
		for _, rsv := range candidates {
			if !rsv.Sweep(now, c.grace) {
				continue
			}
			if err := tx.Reservations().Update(ctx, rsv); err != nil {
				return err
			}
			if rsv.Status() == reservation.StatusNoShow {
				result.NoShow++
			} else {
				result.Completed++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.NoShow+result.Completed > 0 {
		c.logger.InfoContext(ctx, "reservations swept",
			"no_show", result.NoShow,
			"completed", result.Completed)
	}
	return result, nil
}
