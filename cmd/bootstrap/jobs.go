package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"club-scheduler/internal/pkg/config"
	"club-scheduler/internal/usecase/commands"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/fx"
)

const sweepTimeout = time.Minute

var JobsModule = fx.Module("jobs",
	fx.Provide(
		NewScheduler,
	),
	fx.Invoke(RegisterSweepJob),
)

func NewScheduler(lc fx.Lifecycle, logger *slog.Logger) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			sched.Start()
			logger.Info("scheduler started", "jobs", len(sched.Jobs()))
			return nil
		},
		OnStop: func(_ context.Context) error {
			return sched.Shutdown()
		},
	})

	return sched, nil
}

// RegisterSweepJob moves stale reservations to no_show or completed on a
// fixed interval. Runs never overlap.
func RegisterSweepJob(sched gocron.Scheduler, cmds commands.MaintenanceCommands, cfg config.Config, logger *slog.Logger) error {
	if cfg.Scheduling.SweepInterval <= 0 {
		logger.Info("reservation sweep disabled")
		return nil
	}

	j, err := sched.NewJob(
		gocron.DurationJob(cfg.Scheduling.SweepInterval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
			defer cancel()

			// SweepReservations logs its own counts.
			if _, err := cmds.SweepReservations(ctx); err != nil {
				logger.Error("reservation sweep failed", "error", err.Error())
			}
		}),
		gocron.WithName("reservation-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	logger.Info("registered job", "name", j.Name(), "interval", cfg.Scheduling.SweepInterval.String())
	return nil
}
