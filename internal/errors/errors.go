package errors

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError represents validation errors
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Error codes shared by the HTTP layer and the CLI.
const (
	CodeInvalidParameter   = "INVALID_PARAMETER"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeEntityNotFound     = "ENTITY_NOT_FOUND"
	CodeInsufficientData   = "INSUFFICIENT_DATA"
	CodeDatasetUnavailable = "DATASET_UNAVAILABLE"
)

// ErrServiceUnavailable is returned before the dataset has been loaded
var ErrServiceUnavailable = New(http.StatusServiceUnavailable, CodeDatasetUnavailable, "Dataset is not available")

// ErrValidation creates a validation error with field details
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeValidationFailed, "Request validation failed", ValidationError{
		Field:   field,
		Message: message,
	})
}

// NewValidationErrors creates validation errors from multiple fields
func NewValidationErrors(errs []ValidationError) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeValidationFailed, "Request validation failed", errs)
}

// EntityNotFound is returned when a requested stock code has no rows.
func EntityNotFound(entity string) *APIError {
	return NewWithDetails(http.StatusNotFound, CodeEntityNotFound,
		fmt.Sprintf("entity %q not found in dataset", entity), map[string]string{"entity": entity})
}
