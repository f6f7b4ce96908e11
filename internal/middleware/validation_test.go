package middleware

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "dtindex/internal/errors"
	api "dtindex/pkg/contracts/api/v1"
)

func TestValidateStruct(t *testing.T) {
	v := NewValidationMiddleware(nil)

	tests := []struct {
		name       string
		input      interface{}
		wantFields []string
	}{
		{name: "empty report query", input: api.ReportQuery{}},
		{name: "valid report query", input: api.ReportQuery{Entity: "000001", Year: "2020"}},
		{name: "suffixed stock code", input: api.ReportQuery{Entity: "600000.SH"}},
		{name: "path traversal entity", input: api.ReportQuery{Entity: "../etc"}, wantFields: []string{"entity"}},
		{name: "non numeric year", input: api.ReportQuery{Year: "twenty"}, wantFields: []string{"year"}},
		{name: "year out of range", input: api.ReportQuery{Year: "1800"}, wantFields: []string{"year"}},
		{name: "entity required on path", input: api.EntityQuery{}, wantFields: []string{"entity"}},
		{name: "entity scope needs entity", input: api.DistributionQuery{Scope: "entity"}, wantFields: []string{"entity"}},
		{name: "all scope without entity", input: api.DistributionQuery{Scope: "all"}},
		{name: "unknown scope", input: api.DistributionQuery{Scope: "sector"}, wantFields: []string{"scope"}},
		{name: "unknown chart", input: api.ChartQuery{Kind: "pie"}, wantFields: []string{"kind"}},
		{name: "known chart", input: api.ChartQuery{Kind: "trend"}},
		{name: "export with spaces", input: api.ExportQuery{Entity: " 000001"}, wantFields: []string{"entity"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(tt.input)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			var apiErr *apierrors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			assert.Equal(t, apierrors.CodeValidationFailed, apiErr.ErrorCode)

			details, ok := apiErr.Details.([]apierrors.ValidationError)
			require.True(t, ok)
			var fields []string
			for _, d := range details {
				fields = append(fields, d.Field)
				assert.NotEmpty(t, d.Message)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}
