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

type ActivityHandler struct {
	cmds commands.ActivityCommands
	q    queries.ActivityQueries
}

func NewActivityHandler(cmds commands.ActivityCommands, q queries.ActivityQueries) *ActivityHandler {
	return &ActivityHandler{cmds: cmds, q: q}
}

// @Summary Create activity
// @Description Creates a standalone activity, or a series root plus its generated occurrences when recurrence is set.
// @Tags activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateActivityRequest true "Activity"
// @Success 201 {object} resdto.ActivityCreatedResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} map[string]string
// @Router /api/activities [post]
func (h *ActivityHandler) CreateActivity(c *gin.Context) {
	var req reqdto.CreateActivityRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd, err := req.ToCommand()
	if err != nil {
		httperr.AbortWithUseCaseError(c, err)
		return
	}

	result, err := h.cmds.CreateActivity(c.Request.Context(), cmd)
	if err != nil {
		httperr.AbortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromActivityCreated(result))
}

// @Summary Get activity
// @Tags activities
// @Produce json
// @Security BearerAuth
// @Param id path string true "Activity ID"
// @Success 200 {object} queries.ActivityView
// @Failure 404 {object} httperr.Response
// @Router /api/activities/{id} [get]
func (h *ActivityHandler) GetActivity(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	view, err := h.q.GetActivity(c.Request.Context(), id)
	if err != nil {
		httperr.AbortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary List series occurrences
// @Description Scheduled occurrences of the series the activity belongs to, in time order.
// @Tags activities
// @Produce json
// @Security BearerAuth
// @Param id path string true "Activity ID"
// @Success 200 {object} resdto.ActivityListResponse
// @Failure 404 {object} httperr.Response
// @Router /api/activities/{id}/series [get]
func (h *ActivityHandler) ListSeries(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	views, err := h.q.ListSeries(c.Request.Context(), id)
	if err != nil {
		httperr.AbortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromActivityViews(views))
}

// @Summary Waitlist
// @Tags activities
// @Produce json
// @Security BearerAuth
// @Param id path string true "Activity ID"
// @Success 200 {object} resdto.RegistrationListResponse
// @Failure 404 {object} httperr.Response
// @Router /api/activities/{id}/waitlist [get]
func (h *ActivityHandler) Waitlist(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	views, err := h.q.Waitlist(c.Request.Context(), id)
	if err != nil {
		httperr.AbortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromRegistrationViews(views))
}

// @Summary Roster
// @Tags activities
// @Produce json
// @Security BearerAuth
// @Param id path string true "Activity ID"
// @Success 200 {object} resdto.RegistrationListResponse
// @Failure 404 {object} httperr.Response
// @Router /api/activities/{id}/roster [get]
func (h *ActivityHandler) Roster(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	views, err := h.q.Roster(c.Request.Context(), id)
	if err != nil {
		httperr.AbortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromRegistrationViews(views))
}

// @Summary Preview series update
// @Description Dry run of a series edit: what would be added, removed and cancelled. Nothing is written.
// @Tags activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Activity ID"
// @Param request body reqdto.SeriesUpdateRequest true "Series update"
// @Success 200 {object} queries.SeriesUpdateView
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/activities/{id}/series/preview [post]
func (h *ActivityHandler) PreviewSeriesUpdate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req reqdto.SeriesUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	update, err := req.ToSeriesUpdate()
	if err != nil {
		httperr.AbortWithUseCaseError(c, err)
		return
	}

	view, err := h.q.PreviewSeriesUpdate(c.Request.Context(), id, update)
	if err != nil {
		httperr.AbortWithUseCaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary Update series
// @Description Applies an edit to one occurrence, this and later occurrences, or the whole series.
// @Tags activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Activity ID"
// @Param request body reqdto.SeriesUpdateRequest true "Series update"
// @Success 200 {object} queries.SeriesUpdateView
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} queries.SeriesUpdateView
// @Router /api/activities/{id}/series [put]
func (h *ActivityHandler) UpdateSeries(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req reqdto.SeriesUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	update, err := req.ToSeriesUpdate()
	if err != nil {
		httperr.AbortWithUseCaseError(c, err)
		return
	}

	view, err := h.cmds.UpdateSeries(c.Request.Context(), id, update)
	if err != nil {
		httperr.AbortWithUseCaseError(c, err)
		return
	}
	status := http.StatusOK
	if len(view.Reasons) > 0 {
		status = http.StatusConflict
	}
	c.JSON(status, view)
}
