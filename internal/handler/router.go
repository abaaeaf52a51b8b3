package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"

	"club-scheduler/internal/domain/member"
	"club-scheduler/internal/handler/api"
	"club-scheduler/internal/handler/middleware"
	"club-scheduler/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	fx.In

	Resource     *api.ResourceHandler
	Reservation  *api.ReservationHandler
	Activity     *api.ActivityHandler
	Registration *api.RegistrationHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, logger *slog.Logger, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	setupMiddleware(engine, cfg, logger)
	setupRoutes(engine, h, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *slog.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(logger, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	staff := []gin.HandlerFunc{authMiddleware.RequireRoleAtLeast(member.RoleStaff)}
	admin := []gin.HandlerFunc{authMiddleware.RequireRoleAtLeast(member.RoleAdmin)}

	apiGroup := engine.Group("/api")
	apiGroup.Use(authMiddleware.RequireAuth())
	{
		addRoutes(apiGroup.Group("/resources"), []route{
			{Method: http.MethodPost, Path: "", Handler: h.Resource.CreateResource, Mw: admin},
			{Method: http.MethodGet, Path: "/:id", Handler: h.Resource.GetResource},
			{Method: http.MethodGet, Path: "/:id/availability", Handler: h.Resource.CheckAvailability},
			{Method: http.MethodGet, Path: "/:id/reservations", Handler: h.Resource.ListReservations},
		})

		addRoutes(apiGroup.Group("/reservations"), []route{
			{Method: http.MethodPost, Path: "", Handler: h.Reservation.CreateReservation},
			{Method: http.MethodGet, Path: "", Handler: h.Reservation.ListReservations},
			{Method: http.MethodGet, Path: "/:id", Handler: h.Reservation.GetReservation},
			{Method: http.MethodPost, Path: "/:id/cancel", Handler: h.Reservation.CancelReservation},
			{Method: http.MethodPost, Path: "/:id/check-in", Handler: h.Reservation.CheckIn, Mw: staff},
			{Method: http.MethodPost, Path: "/:id/check-out", Handler: h.Reservation.CheckOut, Mw: staff},
		})

		addRoutes(apiGroup.Group("/activities"), []route{
			{Method: http.MethodPost, Path: "", Handler: h.Activity.CreateActivity, Mw: staff},
			{Method: http.MethodGet, Path: "/:id", Handler: h.Activity.GetActivity},
			{Method: http.MethodGet, Path: "/:id/series", Handler: h.Activity.ListSeries},
			{Method: http.MethodPut, Path: "/:id/series", Handler: h.Activity.UpdateSeries, Mw: staff},
			{Method: http.MethodPost, Path: "/:id/series/preview", Handler: h.Activity.PreviewSeriesUpdate, Mw: staff},
			{Method: http.MethodGet, Path: "/:id/waitlist", Handler: h.Activity.Waitlist, Mw: staff},
			{Method: http.MethodGet, Path: "/:id/roster", Handler: h.Activity.Roster, Mw: staff},
			{Method: http.MethodPost, Path: "/:id/registrations", Handler: h.Registration.Register},
		})

		addRoutes(apiGroup.Group("/registrations"), []route{
			{Method: http.MethodPost, Path: "/:id/cancel", Handler: h.Registration.CancelRegistration},
		})
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
