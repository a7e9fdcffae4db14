//go:build unit || e2e

package httptest

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"reservation-engine/internal/handler/httperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertSuccessResponse checks the status and decodes a 2xx body into out.
func AssertSuccessResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, out any) {
	t.Helper()

	require.Equal(t, expectedStatus, w.Code, "body: %s", w.Body.String())
	if out != nil && w.Code >= 200 && w.Code < 300 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), "body: %s", w.Body.String())
	}
}

// AssertErrorResponse checks the status, that the public message contains
// expectedMsg, and that the body echoes the request id header when one was set.
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedMsg string) {
	t.Helper()

	assert.Equal(t, expectedStatus, w.Code, "body: %s", w.Body.String())

	var resp httperr.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())

	if expectedMsg != "" {
		assert.Contains(t, resp.Error.Message, expectedMsg)
	}
	if id := w.Header().Get("X-Request-ID"); id != "" {
		assert.Equal(t, id, resp.RequestID)
	}
}
