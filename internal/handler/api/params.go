package api

import (
	"errors"
	"net/http"

	"club-scheduler/internal/handler/httperr"
	"club-scheduler/internal/handler/middleware"
	"club-scheduler/internal/pkg/errs"
	"club-scheduler/internal/usecase/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const idempotencyKeyHeader = "Idempotency-Key"

var errMissingActor = errors.New("authenticated actor missing from context")

func requireActor(c *gin.Context) (shared.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingActor, "Unauthorized", nil)
		return shared.Actor{}, false
	}
	return actor, true
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid "+name+" format", nil)
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", err.Error())
		return false
	}
	return true
}

func bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query parameters", err.Error())
		return false
	}
	return true
}

// requireIdempotencyKey reads the mandatory Idempotency-Key header.
func requireIdempotencyKey(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetHeader(idempotencyKeyHeader)
	if raw == "" {
		httperr.AbortWithUseCaseError(c, errs.Mark(errs.New("missing Idempotency-Key header"), errs.ErrIdempotencyKeyRequired))
		return uuid.Nil, false
	}
	key, err := uuid.Parse(raw)
	if err != nil || key == uuid.Nil {
		httperr.AbortWithUseCaseError(c, errs.Validation("Idempotency-Key must be a non-nil UUID"))
		return uuid.Nil, false
	}
	return key, true
}

func markReplayed(c *gin.Context, replayed bool) {
	if replayed {
		c.Header("Idempotent-Replayed", "true")
	}
}
