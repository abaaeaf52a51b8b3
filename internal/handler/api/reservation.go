package api

import (
	"net/http"

	reqdto "club-scheduler/internal/handler/dto/request"
	resdto "club-scheduler/internal/handler/dto/response"
	"club-scheduler/internal/handler/httperr"
	"club-scheduler/internal/usecase/commands"
	"club-scheduler/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type ReservationHandler struct {
	cmds commands.ReservationCommands
	q    queries.ReservationQueries
}

func NewReservationHandler(cmds commands.ReservationCommands, q queries.ReservationQueries) *ReservationHandler {
	return &ReservationHandler{cmds: cmds, q: q}
}

// @Summary Create reservation
// @Description Book a resource. Rejections return 409 with reasons and the next slot that fits.
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string true "Idempotency key for duplicate prevention"
// @Param request body reqdto.CreateReservationRequest true "Reservation request"
// @Success 201 {object} resdto.BookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} map[string]string
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} resdto.BookingResponse
// @Router /api/reservations [post]
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	key, ok := requireIdempotencyKey(c)
	if !ok {
		return
	}
	var req reqdto.CreateReservationRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.cmds.CreateReservation(c.Request.Context(), req.ToCommand(actor.MemberID, key))
	if err != nil {
		httperr.AbortWithUseCaseError(c, err)
		return
	}

	resp := resdto.FromBookingResult(result)
	if !result.Booked() {
		c.JSON(http.StatusConflict, resp)
		return
	}
	markReplayed(c, result.IsReplayed)
	c.JSON(http.StatusCreated, resp)
}

// @Summary Get reservation
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} queries.ReservationView
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/reservations/{id} [get]
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	view, err := h.q.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		httperr.AbortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary List reservations of a member
// @Description Keyset-paginated by start time, oldest first.
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param after query string false "Cursor from a previous page"
// @Param limit query int false "Page size (max 200)"
// @Param member_id query string false "Another member's ID (staff only)"
// @Success 200 {object} resdto.ReservationListResponse
// @Failure 400 {object} httperr.Response
// @Router /api/reservations [get]
func (h *ReservationHandler) ListReservations(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req reqdto.ListReservationsQuery
	if !bindQuery(c, &req) {
		return
	}

	views, cursor, err := h.q.ListByMember(c.Request.Context(), actor, req.Member(actor.MemberID), req.After, req.Limit)
	if err != nil {
		httperr.AbortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservationViews(views, cursor))
}

// @Summary Cancel reservation
// @Description Members may cancel their own bookings outside the lead-time window; staff may cancel any.
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationChangeResponse
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} resdto.ReservationChangeResponse
// @Router /api/reservations/{id}/cancel [post]
func (h *ReservationHandler) CancelReservation(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.cmds.CancelReservation(c.Request.Context(), id, actor)
	if err != nil {
		httperr.AbortWithUseCaseError(c, err)
		return
	}
	writeChange(c, result)
}

// @Summary Check in
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationChangeResponse
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} resdto.ReservationChangeResponse
// @Router /api/reservations/{id}/check-in [post]
func (h *ReservationHandler) CheckIn(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	result, err := h.cmds.CheckIn(c.Request.Context(), id)
	if err != nil {
		httperr.AbortWithUseCaseError(c, err)
		return
	}
	writeChange(c, result)
}

// @Summary Check out
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationChangeResponse
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} resdto.ReservationChangeResponse
// @Router /api/reservations/{id}/check-out [post]
func (h *ReservationHandler) CheckOut(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	result, err := h.cmds.CheckOut(c.Request.Context(), id)
	if err != nil {
		httperr.AbortWithUseCaseError(c, err)
		return
	}
	writeChange(c, result)
}

func writeChange(c *gin.Context, result *commands.ReservationChangeResult) {
	status := http.StatusOK
	if len(result.Reasons) > 0 {
		status = http.StatusConflict
	}
	c.JSON(status, resdto.FromReservationChange(result))
}
