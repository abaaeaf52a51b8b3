package bootstrap

import (
	"log/slog"

	"club-scheduler/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
	),
	fx.Invoke(logEffectiveConfig),
)

// Secrets and DSNs are never logged.
func logEffectiveConfig(cfg config.Config, logger *slog.Logger) {
	logger.Info("configuration loaded",
		"store", cfg.Store.Driver,
		"redis_idempotency", cfg.Redis.URL != "",
		"idempotency_ttl", cfg.Redis.IdempotencyTTL.String(),
		"scheduling_timezone", cfg.Scheduling.TimeZone,
		"next_slot_horizon_days", cfg.Scheduling.NextSlotHorizonDays,
		"max_series_occurrences", cfg.Scheduling.MaxSeriesOccurrences,
		"sweep_interval", cfg.Scheduling.SweepInterval.String())
}
