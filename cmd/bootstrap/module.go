package bootstrap

import (
	"club-scheduler/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	StoreModule,
	JWTModule,
	components.UseCaseModule,
	IdempotencyModule,
	JobsModule,
	components.HandlerModule,
)
