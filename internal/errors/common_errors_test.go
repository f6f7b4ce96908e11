package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without cause",
			err:  NewDataError("数据缺少必要的列：年份", nil),
			want: "[DATA] 数据缺少必要的列：年份",
		},
		{
			name: "with cause",
			err:  NewParsingError("all parsing strategies failed", fmt.Errorf("xlsx: zip: not a valid zip file")),
			want: "[PARSING] all parsing strategies failed: xlsx: zip: not a valid zip file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	sentinel := errors.New("missing required columns")
	wrapped := fmt.Errorf("load: %w", NewConfigError("dataset rejected", sentinel))

	assert.True(t, errors.Is(wrapped, sentinel))

	var appErr *AppError
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, ErrTypeConfig, appErr.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := NewDataError("dataset unavailable", nil).
		WithContext("working_dir", "/srv").
		WithContext("missing_columns", []string{"年份"})

	assert.Equal(t, "/srv", err.Context["working_dir"])
	assert.Equal(t, []string{"年份"}, err.Context["missing_columns"])

	err.WithDebugContext("listing", []string{"data.xlsx"})
	assert.Equal(t, []string{"data.xlsx"}, err.Debug["listing"])
	assert.NotContains(t, err.Context, "listing")

	bare := &AppError{Type: ErrTypeConfig}
	bare.WithContext("k", "v")
	assert.Equal(t, "v", bare.Context["k"])
}

func TestConstructorTypes(t *testing.T) {
	assert.Equal(t, ErrTypeStorage, NewStorageError("write", nil).Type)
	assert.Equal(t, ErrTypeConfig, NewConfigError("bad", nil).Type)
	assert.Equal(t, ErrTypeData, NewDataError("gone", nil).Type)
	assert.Equal(t, ErrTypeParsing, NewParsingError("unreadable", nil).Type)
}
