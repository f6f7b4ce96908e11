package services

import (
	"errors"

	"dtindex/internal/analytics"
	"dtindex/internal/charts"
)

// Report service errors
var (
	// ErrDatasetUnavailable wraps every hard stop: the dataset could not be
	// loaded or misses required columns.
	ErrDatasetUnavailable = errors.New("dataset unavailable")
	// ErrDatasetNotLoaded is returned before Load has been called.
	ErrDatasetNotLoaded = errors.New("dataset not loaded")

	// Soft query errors re-exported for the transport layer
	ErrEntityNotFound = analytics.ErrEntityNotFound
	ErrNoChartData    = charts.ErrNoData

	// General errors
	ErrInvalidInput = errors.New("invalid input")
)
