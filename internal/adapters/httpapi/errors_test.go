package httpapi

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kvetinski/fintech-account/internal/logging"
)

func TestRespondJSONLogsEncodeFailureWithRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil)).With("request_id", "req-42")

	req := httptest.NewRequest(http.MethodGet, "/accounts/1", nil)
	req = req.WithContext(logging.WithLogger(req.Context(), logger))
	rec := httptest.NewRecorder()

	respondJSON(rec, req, http.StatusOK, map[string]any{"bad": make(chan int)})

	assert.Contains(t, buf.String(), "failed to encode response")
	assert.Contains(t, buf.String(), `"request_id":"req-42"`)
}
