package bootstrap

import (
	"context"
	"log/slog"

	"club-scheduler/internal/infra/db"
	"club-scheduler/internal/infra/memstore"
	"club-scheduler/internal/infra/uow"
	"club-scheduler/internal/pkg/config"
	"club-scheduler/internal/usecase/shared"

	"go.uber.org/fx"
)

var StoreModule = fx.Module("store",
	fx.Provide(
		NewUnitOfWork,
	),
)

// NewUnitOfWork picks the backing store by STORE_DRIVER.
func NewUnitOfWork(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (shared.UnitOfWork, error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		logger.Warn("using in-memory store, data is lost on restart")
		return memstore.New(logger), nil
	}

	pool, cleanup, err := db.Connect(context.Background(), cfg.DB)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if cleanup != nil {
				cleanup()
			}
			return nil
		},
	})

	return uow.NewPostgresUoW(pool, logger, cfg.Scheduling.TxMaxRetries), nil
}
