package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"club-scheduler/internal/infra/idempotency"
	"club-scheduler/internal/pkg/clock"
	"club-scheduler/internal/pkg/config"
	"club-scheduler/internal/usecase/shared"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var IdempotencyModule = fx.Module("idempotency",
	fx.Provide(
		NewIdempotencyStore,
	),
)

// NewIdempotencyStore shares keys across replicas through Redis when
// REDIS_URL is set and falls back to process memory otherwise.
func NewIdempotencyStore(lc fx.Lifecycle, cfg config.Config, clk clock.Clock, logger *slog.Logger) (shared.IdempotencyStore, error) {
	if cfg.Redis.URL == "" {
		return idempotency.NewMemoryStore(clk, cfg.Redis.IdempotencyTTL), nil
	}

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("failed to ping redis: %w", err)
			}
			logger.Info("connected to redis", "addr", opts.Addr)
			return nil
		},
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})

	return idempotency.NewRedisStore(client, cfg.Redis.IdempotencyTTL, logger), nil
}
