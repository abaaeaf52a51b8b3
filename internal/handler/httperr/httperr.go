package httperr

import (
	"context"
	"net/http"

	"club-scheduler/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{Status: status}
	resp.Error.Message = msg
	resp.Detail = detail

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}

// AbortWithUseCaseError maps an error from the use-case layer onto a status
// by its errs marker. Unmarked errors are 500s and their text is not exposed.
func AbortWithUseCaseError(c *gin.Context, err error) {
	status, msg := Classify(err)
	AbortWithError(c, status, err, msg, nil)
}

func Classify(err error) (int, string) {
	switch {
	case errs.Is(err, errs.ErrIdempotencyKeyRequired):
		return http.StatusBadRequest, "Idempotency-Key header is required"
	case errs.Is(err, errs.ErrIdempotencyMismatch):
		return http.StatusConflict, "Idempotency-Key was already used with a different request"
	case errs.Is(err, errs.ErrIdempotencyInProgress):
		return http.StatusConflict, "A request with this Idempotency-Key is still in progress"
	case errs.IsValidation(err):
		return http.StatusBadRequest, err.Error()
	case errs.IsNotFound(err):
		return http.StatusNotFound, "Resource not found"
	case errs.IsForbidden(err):
		return http.StatusForbidden, "Insufficient permissions"
	case errs.IsConflict(err):
		return http.StatusConflict, "Concurrent update, please retry"
	case errs.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "Request timed out"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
