package api

import (
	"net/http"

	"club-scheduler/internal/domain/registration"
	reqdto "club-scheduler/internal/handler/dto/request"
	resdto "club-scheduler/internal/handler/dto/response"
	"club-scheduler/internal/handler/httperr"
	"club-scheduler/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type RegistrationHandler struct {
	cmds commands.RegistrationCommands
}

func NewRegistrationHandler(cmds commands.RegistrationCommands) *RegistrationHandler {
	return &RegistrationHandler{cmds: cmds}
}

// @Summary Register for activity
// @Description 201 when a spot is confirmed, 202 when waitlisted, 409 when declined.
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Activity ID"
// @Param Idempotency-Key header string true "Idempotency key for duplicate prevention"
// @Param request body reqdto.RegisterRequest false "Registration"
// @Success 201 {object} resdto.RegistrationResponse
// @Success 202 {object} resdto.RegistrationResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} resdto.RegistrationResponse
// @Router /api/activities/{id}/registrations [post]
func (h *RegistrationHandler) Register(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	activityID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	key, ok := requireIdempotencyKey(c)
	if !ok {
		return
	}
	var req reqdto.RegisterRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	outcome, err := h.cmds.Register(c.Request.Context(), req.ToCommand(activityID, actor.MemberID, key))
	if err != nil {
		httperr.AbortWithUseCaseError(c, err)
		return
	}

	markReplayed(c, outcome.IsReplayed)
	c.JSON(registrationStatus(outcome.Status), resdto.FromRegistrationOutcome(outcome))
}

// @Summary Cancel registration
// @Description Cancelling a confirmed spot promotes the head of the waitlist.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Registration ID"
// @Success 200 {object} resdto.CancelRegistrationResponse
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} resdto.CancelRegistrationResponse
// @Router /api/registrations/{id}/cancel [post]
func (h *RegistrationHandler) CancelRegistration(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	outcome, err := h.cmds.CancelRegistration(c.Request.Context(), id, actor)
	if err != nil {
		httperr.AbortWithUseCaseError(c, err)
		return
	}
	status := http.StatusOK
	if len(outcome.Reasons) > 0 {
		status = http.StatusConflict
	}
	c.JSON(status, resdto.FromCancelRegistration(outcome))
}

func registrationStatus(s registration.Status) int {
	switch s {
	case registration.StatusConfirmed:
		return http.StatusCreated
	case registration.StatusWaitlisted:
		return http.StatusAccepted
	default:
		return http.StatusConflict
	}
}
