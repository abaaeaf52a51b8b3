package components

import (
	"club-scheduler/internal/handler"
	"club-scheduler/internal/handler/api"
	"club-scheduler/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewResourceHandler,
		api.NewReservationHandler,
		api.NewActivityHandler,
		api.NewRegistrationHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
