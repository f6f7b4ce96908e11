package analytics

import "errors"

var (
	// ErrEntityNotFound means no row carries the requested identifier.
	ErrEntityNotFound = errors.New("entity not found")
	// ErrYearNotFound means the entity has no row for the requested year.
	ErrYearNotFound = errors.New("no record for the requested year")
	// ErrInsufficientData means fewer than two distinct years have index values.
	ErrInsufficientData = errors.New("insufficient data for a trend fit")
	// ErrEmptySubset means a filter matched rows but none had an index value.
	ErrEmptySubset = errors.New("no index values in the selected rows")
)
