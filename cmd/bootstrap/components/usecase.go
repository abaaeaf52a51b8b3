package components

import (
	"time"

	"club-scheduler/internal/domain/activity"
	"club-scheduler/internal/pkg/clock"
	"club-scheduler/internal/pkg/config"
	"club-scheduler/internal/usecase"
	"club-scheduler/internal/usecase/commands"
	"club-scheduler/internal/usecase/queries"
	"club-scheduler/internal/usecase/scheduling"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseSchedulingModule,
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	func(cfg config.Config) (*time.Location, error) {
		return cfg.Scheduling.Location()
	},
)

var usecaseSchedulingModule = fx.Module("usecase/scheduling",
	fx.Provide(
		func(clk clock.Clock, loc *time.Location, cfg config.Config) *activity.Generator {
			return activity.NewGenerator(clk, loc, cfg.Scheduling.MaxSeriesOccurrences)
		},
		func(cfg config.Config) *scheduling.AvailabilityChecker {
			return scheduling.NewAvailabilityChecker(cfg.Scheduling.NextSlotHorizonDays)
		},
		scheduling.NewCapacityManager,
		scheduling.NewSeriesPropagator,
	),
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewResourceCommands,
		commands.NewReservationCommands,
		commands.NewActivityCommands,
		commands.NewRegistrationCommands,
		commands.NewMaintenanceCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewResourceQueries,
		queries.NewReservationQueries,
		queries.NewActivityQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)
