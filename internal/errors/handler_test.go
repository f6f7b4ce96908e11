package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dtindex/internal/infrastructure"
	"dtindex/internal/shared/testutil"
)

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantExt    map[string]interface{}
	}{
		{
			name:       "context deadline exceeded",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "validation APIError",
			err:        ErrValidation("year", "must be an integer"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantExt:    map[string]interface{}{"error_code": CodeValidationFailed},
		},
		{
			name:       "wrapped entity not found",
			err:        fmt.Errorf("entity view: %w", EntityNotFound("999999")),
			wantStatus: http.StatusNotFound,
			wantType:   TypeEntityNotFound,
			wantExt:    map[string]interface{}{"error_code": CodeEntityNotFound},
		},
		{
			name: "dataset AppError carries context",
			err: NewDataError("required columns missing", nil).
				WithContext("working_dir", "/srv/report"),
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeDatasetUnavailable,
			wantExt:    map[string]interface{}{"working_dir": "/srv/report", "error_type": "DATA"},
		},
		{
			name:       "parsing AppError",
			err:        NewParsingError("all strategies failed", nil),
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeDatasetParsing,
		},
		{
			name:       "storage AppError",
			err:        NewStorageError("failed to write export", errors.New("disk full")),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
			wantExt:    map[string]interface{}{"error_type": "STORAGE"},
		},
		{
			name:       "plain error hides details",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewTestLogger(t)
			handler := NewErrorHandler(logger, false)

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
			r = r.WithContext(infrastructure.WithTraceID(r.Context(), "trace-1"))

			handler.HandleError(w, r, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, ContentType, w.Header().Get("Content-Type"))

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, "/api/summary", body["instance"])
			assert.Equal(t, "trace-1", body["trace_id"])
			for k, v := range tt.wantExt {
				assert.Equal(t, v, body[k], k)
			}
			assert.NotContains(t, body, "stack")

			assert.True(t, logs.ContainsMessage("request failed"))
		})
	}
}

func TestErrorHandler_DebugContextOnlyInDevelopment(t *testing.T) {
	tests := []struct {
		name         string
		includeStack bool
		wantListing  bool
	}{
		{name: "production hides the directory listing", includeStack: false, wantListing: false},
		{name: "development shows the directory listing", includeStack: true, wantListing: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			handler := NewErrorHandler(logger, tt.includeStack)

			err := NewDataError("找不到数据文件：data.xlsx", nil).
				WithContext("working_dir", "/srv/report").
				WithDebugContext("listing", []string{"config.yaml"})

			w := httptest.NewRecorder()
			handler.HandleError(w, httptest.NewRequest(http.MethodGet, "/api/summary", nil), err)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "/srv/report", body["working_dir"])
			if tt.wantListing {
				assert.Equal(t, []interface{}{"config.yaml"}, body["listing"])
			} else {
				assert.NotContains(t, body, "listing")
			}
		})
	}
}

func TestErrorHandler_HandleErrorNil(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, true)

	w := httptest.NewRecorder()
	handler.HandleError(w, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Equal(t, 0, logs.Count())
	assert.Empty(t, w.Body.String())
}

func TestErrorHandler_LogLevelFollowsStatus(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	handler.HandleError(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/a", nil), EntityNotFound("999999"))
	handler.HandleError(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/b", nil), errors.New("x"))

	assert.Len(t, logs.GetRecordsByLevel(slog.LevelWarn), 1)
	assert.Len(t, logs.GetRecordsByLevel(slog.LevelError), 1)
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	w := httptest.NewRecorder()
	handler.NotFound(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), TypeNotFound)

	w = httptest.NewRecorder()
	handler.MethodNotAllowed(w, httptest.NewRequest(http.MethodDelete, "/api/summary", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Contains(t, w.Body.String(), "Method DELETE is not allowed")
}
