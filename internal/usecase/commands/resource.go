package commands

//go:generate mockgen -source=$GOFILE -destination=../../testutil/mock/commands/$GOFILE -package=commandsmock

import (
	"context"
	"log/slog"

	"club-scheduler/internal/domain/resource"
	"club-scheduler/internal/pkg/clock"
	"club-scheduler/internal/pkg/errs"
	"club-scheduler/internal/usecase/queries"
	"club-scheduler/internal/usecase/shared"

	"github.com/google/uuid"
)

type ResourceCommands interface {
	CreateResource(ctx context.Context, cfg resource.Config) (*queries.ResourceView, error)
}

type resourceCommandsImpl struct {
	uow    shared.UnitOfWork
	clock  clock.Clock
	logger *slog.Logger
}

func NewResourceCommands(uow shared.UnitOfWork, clock clock.Clock, logger *slog.Logger) ResourceCommands {
	return &resourceCommandsImpl{uow: uow, clock: clock, logger: logger}
}

func (c *resourceCommandsImpl) CreateResource(ctx context.Context, cfg resource.Config) (*queries.ResourceView, error) {
	res, err := resource.NewResource(uuid.New(), cfg, c.clock.Now())
	if err != nil {
		return nil, errs.Mark(err, errs.ErrValidation)
	}

	err = c.uow.Within(ctx, []shared.LockKey{shared.ResourceLock(res.ID())}, func(ctx context.Context, tx shared.Tx) error {
		return tx.Resources().Create(ctx, res)
	})
	if err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "resource created", "resource_id", res.ID(), "name", res.Name())
	return queries.NewResourceView(res), nil
}
