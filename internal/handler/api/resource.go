package api

import (
	"net/http"
	"time"

	reqdto "club-scheduler/internal/handler/dto/request"
	resdto "club-scheduler/internal/handler/dto/response"
	"club-scheduler/internal/handler/httperr"
	"club-scheduler/internal/pkg/config"
	"club-scheduler/internal/usecase/commands"
	"club-scheduler/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type ResourceHandler struct {
	cmds       commands.ResourceCommands
	q          queries.ResourceQueries
	defaultLoc *time.Location
}

func NewResourceHandler(cmds commands.ResourceCommands, q queries.ResourceQueries, cfg config.Config) (*ResourceHandler, error) {
	loc, err := cfg.Scheduling.Location()
	if err != nil {
		return nil, err
	}
	return &ResourceHandler{cmds: cmds, q: q, defaultLoc: loc}, nil
}

// @Summary Create resource
// @Description Register a bookable resource with its scheduling rules.
// @Tags resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateResourceRequest true "Resource configuration"
// @Success 201 {object} queries.ResourceView
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} map[string]string
// @Router /api/resources [post]
func (h *ResourceHandler) CreateResource(c *gin.Context) {
	var req reqdto.CreateResourceRequest
	if !bindJSON(c, &req) {
		return
	}
	cfg, err := req.ToConfig(h.defaultLoc)
	if err != nil {
		httperr.AbortWithUseCaseError(c, err)
		return
	}

	view, err := h.cmds.CreateResource(c.Request.Context(), cfg)
	if err != nil {
		httperr.AbortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// @Summary Get resource
// @Tags resources
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resource ID"
// @Success 200 {object} queries.ResourceView
// @Failure 404 {object} httperr.Response
// @Router /api/resources/{id} [get]
func (h *ResourceHandler) GetResource(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	view, err := h.q.GetResource(c.Request.Context(), id)
	if err != nil {
		httperr.AbortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary Check availability
// @Description Reports whether [start, end) can be booked, why not, and the next slot of the same length that can.
// @Tags resources
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resource ID"
// @Param start query string true "RFC 3339 start"
// @Param end query string true "RFC 3339 end"
// @Param excludeReservationId query string false "Reservation to ignore, for rescheduling"
// @Success 200 {object} queries.AvailabilityView
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/resources/{id}/availability [get]
func (h *ResourceHandler) CheckAvailability(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req reqdto.AvailabilityQuery
	if !bindQuery(c, &req) {
		return
	}
	excludeID, err := req.ExcludeID()
	if err != nil {
		httperr.AbortWithUseCaseError(c, err)
		return
	}

	view, err := h.q.CheckAvailability(c.Request.Context(), id, req.Start, req.End, excludeID)
	if err != nil {
		httperr.AbortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary List blocking reservations
// @Description Confirmed and checked-in reservations overlapping [from, to), for calendars.
// @Tags resources
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resource ID"
// @Param from query string true "RFC 3339 window start"
// @Param to query string true "RFC 3339 window end"
// @Success 200 {object} resdto.ReservationListResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/resources/{id}/reservations [get]
func (h *ResourceHandler) ListReservations(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req reqdto.WindowQuery
	if !bindQuery(c, &req) {
		return
	}

	views, err := h.q.ListReservations(c.Request.Context(), id, req.From, req.To)
	if err != nil {
		httperr.AbortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservationViews(views, nil))
}
