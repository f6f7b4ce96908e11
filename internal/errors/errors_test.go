package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	err := New(http.StatusBadRequest, CodeInvalidParameter, "year must be an integer")
	assert.Equal(t, "year must be an integer", err.Error())
}

func TestAPIError_Render(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/summary", nil)

	require.NoError(t, render.Render(w, r, ErrServiceUnavailable))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, CodeDatasetUnavailable, body["error_code"])
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "validation",
			err:        ErrValidation("year", "must be an integer"),
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeValidationFailed,
			wantMsg:    "Request validation failed",
		},
		{
			name:       "entity not found",
			err:        EntityNotFound("999999"),
			wantStatus: http.StatusNotFound,
			wantCode:   CodeEntityNotFound,
			wantMsg:    `entity "999999" not found in dataset`,
		},
		{
			name:       "multiple validation errors",
			err:        NewValidationErrors([]ValidationError{{Field: "year"}, {Field: "scope"}}),
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeValidationFailed,
			wantMsg:    "Request validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.Equal(t, tt.wantCode, tt.err.ErrorCode)
			assert.Equal(t, tt.wantMsg, tt.err.Message)
			assert.NotNil(t, tt.err.Details)
		})
	}
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	problem := NewProblemDetails(http.StatusServiceUnavailable, TypeDatasetUnavailable, "Service Unavailable", "missing columns", "/api/summary").
		WithExtension("missing_columns", []string{"年份"})

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, TypeDatasetUnavailable, body["type"])
	assert.Equal(t, float64(503), body["status"])
	assert.Equal(t, "missing columns", body["detail"])
	assert.Equal(t, []interface{}{"年份"}, body["missing_columns"])
}

func TestProblemDetails_ExtensionsCannotOverrideStandardFields(t *testing.T) {
	problem := NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found", "", "").
		WithExtension("status", 200)

	data, err := json.Marshal(problem)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"status":404`)
	assert.NotContains(t, string(data), `"detail"`)
}
