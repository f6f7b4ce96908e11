package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	apierrors "dtindex/internal/errors"
)

// Year bounds accepted by the "year" tag.
const (
	MinYear = 1900
	MaxYear = 2100
)

// ValidationMiddleware checks bound query structs using validator struct tags.
type ValidationMiddleware struct {
	validator *validator.Validate
	logger    *slog.Logger
}

// NewValidationMiddleware creates a validator with the "entity" and "year" tags registered
func NewValidationMiddleware(logger *slog.Logger) *ValidationMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("entity", isValidEntity)
	_ = v.RegisterValidation("year", isValidYear)

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &ValidationMiddleware{
		validator: v,
		logger:    logger.With(slog.String("component", "validation_middleware")),
	}
}

// ValidateStruct validates a struct and returns an *apierrors.APIError listing every failed field
func (m *ValidationMiddleware) ValidateStruct(v interface{}) error {
	err := m.validator.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate %T: %w", v, err)
	}

	validationErrors := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		validationErrors = append(validationErrors, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: m.formatValidationError(fe),
		})
	}
	m.logger.Debug("request validation failed",
		slog.String("type", fmt.Sprintf("%T", v)),
		slog.Int("errors", len(validationErrors)))
	return apierrors.NewValidationErrors(validationErrors)
}

// formatValidationError formats validation error messages
func (m *ValidationMiddleware) formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "entity":
		return fmt.Sprintf("%s must be a stock code of letters, digits, '.', '-' or '_'", field)
	case "year":
		return fmt.Sprintf("%s must be an integer year between %d and %d", field, MinYear, MaxYear)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// isValidEntity accepts stock codes such as 000001 or 600000.SH
func isValidEntity(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	if code == "" || strings.TrimSpace(code) != code {
		return false
	}
	for _, ch := range code {
		if !unicode.IsLetter(ch) && !unicode.IsDigit(ch) && ch != '.' && ch != '-' && ch != '_' {
			return false
		}
	}
	return true
}

// isValidYear accepts a decimal year within [MinYear, MaxYear]
func isValidYear(fl validator.FieldLevel) bool {
	year, err := strconv.Atoi(fl.Field().String())
	return err == nil && year >= MinYear && year <= MaxYear
}
