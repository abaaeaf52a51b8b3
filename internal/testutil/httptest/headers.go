//go:build unit || e2e

package httptest

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func AssertHeaders(t *testing.T, w *httptest.ResponseRecorder, expected map[string]string) {
	t.Helper()
	for k, v := range expected {
		assert.Equal(t, v, w.Header().Get(k), "header %s mismatch", k)
	}
}

// AssertHeaderContains matches header lists case-insensitively, the way
// CORS preflight responses echo them.
func AssertHeaderContains(t *testing.T, w *httptest.ResponseRecorder, key, want string) {
	t.Helper()
	assert.Contains(t, strings.ToLower(w.Header().Get(key)), strings.ToLower(want), "header %s", key)
}

// AssertNotReplayed checks a response was produced by a fresh execution.
func AssertNotReplayed(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	assert.Empty(t, w.Header().Get("Idempotent-Replayed"), "unexpected replay marker")
}
