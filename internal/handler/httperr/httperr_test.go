//go:build unit

package httperr

import (
	"context"
	"net/http"
	"testing"

	"club-scheduler/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{name: "validation exposes its message", err: errs.Validation("start must be before end"), wantStatus: http.StatusBadRequest, wantMsg: "start must be before end"},
		{name: "wrapped not found", err: errs.Wrap(errs.NotFound("resource not found"), "load"), wantStatus: http.StatusNotFound, wantMsg: "Resource not found"},
		{name: "forbidden", err: errs.Forbidden("not yours"), wantStatus: http.StatusForbidden, wantMsg: "Insufficient permissions"},
		{name: "missing key", err: errs.Mark(errs.New("x"), errs.ErrIdempotencyKeyRequired), wantStatus: http.StatusBadRequest},
		{name: "key mismatch", err: errs.Mark(errs.New("x"), errs.ErrIdempotencyMismatch), wantStatus: http.StatusConflict},
		{name: "key in progress", err: errs.Mark(errs.New("x"), errs.ErrIdempotencyInProgress), wantStatus: http.StatusConflict},
		{name: "conflict", err: errs.Mark(errs.New("series changed"), errs.ErrConflict), wantStatus: http.StatusConflict, wantMsg: "Concurrent update, please retry"},
		{name: "deadline", err: errs.Wrap(context.DeadlineExceeded, "tx"), wantStatus: http.StatusServiceUnavailable},
		{name: "anything else hides details", err: errs.New("dial tcp: refused"), wantStatus: http.StatusInternalServerError, wantMsg: "Internal server error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, msg := Classify(tc.err)
			assert.Equal(t, tc.wantStatus, status)
			if tc.wantMsg != "" {
				assert.Equal(t, tc.wantMsg, msg)
			}
		})
	}
}
