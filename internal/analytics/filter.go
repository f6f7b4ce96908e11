package analytics

import (
	"math"
	"sort"
)

// Point is one (year, value) pair of a series.
type Point struct {
	Year  int
	Value float64
}

// EntityView is the slice of the dataset belonging to one identifier.
type EntityView struct {
	Entity string
	Name   string
	// Rows are table row indices sorted by year ascending; rows sharing a year keep file order.
	Rows []int
	// FileRows are the same rows in file order.
	FileRows []int
	Years    []int
	// Points holds one entry per row with a valid year, in Rows order.
	Points []Point
	Stats  *Stats
}

// Found reports whether the entity has any rows.
func (v *EntityView) Found() bool { return len(v.Rows) > 0 }

// YearView is the record chosen for one (entity, year) pair.
type YearView struct {
	Entity  string
	Year    int
	Row     int
	Matches int
	Value   float64
	// DuplicateYear is set when more than one row matched; the first in file order is used.
	DuplicateYear bool
}

// FilterEntity returns every row of entity. An unknown entity yields an empty
// view and ErrEntityNotFound.
func FilterEntity(s *Snapshot, entity string) (*EntityView, error) {
	view := &EntityView{Entity: entity}

	for i, code := range s.entities {
		if code == entity {
			view.FileRows = append(view.FileRows, i)
		}
	}
	if len(view.FileRows) == 0 {
		return view, ErrEntityNotFound
	}

	view.Name = s.names[view.FileRows[0]]

	view.Rows = append([]int(nil), view.FileRows...)
	sort.SliceStable(view.Rows, func(a, b int) bool {
		ra, rb := view.Rows[a], view.Rows[b]
		if s.yearOK[ra] != s.yearOK[rb] {
			return s.yearOK[ra]
		}
		return s.years[ra] < s.years[rb]
	})

	for _, i := range view.Rows {
		if s.yearOK[i] {
			view.Points = append(view.Points, Point{Year: s.years[i], Value: s.Value(i)})
		}
	}
	view.Years = distinctYears(s, view.Rows)
	view.Stats = Describe(s.allValues(view.Rows))

	return view, nil
}

// FilterYear picks the record of view for year. When several rows match the
// first in file order wins and DuplicateYear is set.
func FilterYear(s *Snapshot, view *EntityView, year int) (*YearView, error) {
	yv := &YearView{Entity: view.Entity, Year: year, Row: -1, Value: math.NaN()}
	for _, i := range view.FileRows {
		if !s.yearOK[i] || s.years[i] != year {
			continue
		}
		if yv.Matches == 0 {
			yv.Row = i
			yv.Value = s.Value(i)
		}
		yv.Matches++
	}
	if yv.Matches == 0 {
		return yv, ErrYearNotFound
	}
	yv.DuplicateYear = yv.Matches > 1
	return yv, nil
}
