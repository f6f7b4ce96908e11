package errors

import (
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeParsing ErrorType = "PARSING"
	ErrTypeStorage ErrorType = "STORAGE"
	ErrTypeConfig  ErrorType = "CONFIG"
	ErrTypeData    ErrorType = "DATA"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
	// Debug holds context that only reaches API clients in development mode.
	Debug map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithDebugContext adds context that reaches API clients in development mode only
func (e *AppError) WithDebugContext(key string, value interface{}) *AppError {
	if e.Debug == nil {
		e.Debug = make(map[string]interface{})
	}
	e.Debug[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewParsingError marks a dataset file that no parsing strategy could read.
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError marks a failed write of an export.
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewConfigError marks a configuration that could not be loaded or validated.
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewDataError marks a dataset that cannot be served at all.
func NewDataError(message string, cause error) *AppError {
	return NewAppError(ErrTypeData, message, cause)
}
