// Package api contains the query contracts of the digital transformation index API.
// Version v1 represents the current stable API version.
//
// Query structs are bound from URL query and path parameters and checked with
// go-playground/validator tags. The custom tags "entity" and "year" are
// registered by the HTTP validation layer.
package api

import "strconv"

// ChartKinds lists every chart the API can render.
var ChartKinds = []string{"histogram", "density", "entity-line", "entity-bar", "trend"}

// ReportQuery selects the entity and year of the report. Empty fields fall back
// to the first entity in the file and the earliest year.
type ReportQuery struct {
	Entity string `json:"entity" query:"entity" validate:"omitempty,max=64,entity"`
	Year   string `json:"year" query:"year" validate:"omitempty,year"`
}

// YearValue returns the parsed year, nil when it was not given.
func (q ReportQuery) YearValue() *int {
	return parseYear(q.Year)
}

// EntityQuery addresses one entity, optionally narrowed to a year.
type EntityQuery struct {
	Entity string `json:"entity" path:"entity" validate:"required,max=64,entity"`
	Year   string `json:"year" query:"year" validate:"omitempty,year"`
}

// YearValue returns the parsed year, nil when it was not given.
func (q EntityQuery) YearValue() *int {
	return parseYear(q.Year)
}

// DistributionQuery selects the rows the histogram and density cover.
type DistributionQuery struct {
	Scope  string `json:"scope" query:"scope" validate:"omitempty,oneof=all entity"`
	Entity string `json:"entity" query:"entity" validate:"required_if=Scope entity,omitempty,max=64,entity"`
}

// ChartQuery selects a chart and, for entity charts, the entity.
type ChartQuery struct {
	Kind   string `json:"kind" path:"kind" validate:"required,oneof=histogram density entity-line entity-bar trend"`
	Entity string `json:"entity" query:"entity" validate:"omitempty,max=64,entity"`
	Scope  string `json:"scope" query:"scope" validate:"omitempty,oneof=all entity"`
}

// ExportQuery addresses the entity whose rows are downloaded.
type ExportQuery struct {
	Entity string `json:"entity" path:"entity" validate:"required,max=64,entity"`
}

func parseYear(s string) *int {
	if s == "" {
		return nil
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &y
}
