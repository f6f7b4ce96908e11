package analytics

import (
	"slices"

	"dtindex/internal/dataset"
)

// Columns names the required fields of the record table.
type Columns struct {
	Entity string
	Year   string
	Name   string
}

// Required returns the column names in the order they are validated.
func (c Columns) Required() []string {
	return []string{c.Entity, c.Year, c.Name}
}

// Options control how a Snapshot interprets its table.
type Options struct {
	Columns  Columns
	Keywords []string
	// IndexColumn overrides keyword discovery when non-empty.
	IndexColumn string
}

// Snapshot is the validated, read-only view of the dataset that every query runs against.
type Snapshot struct {
	table *dataset.Table
	cols  Columns

	indexColumn  string
	indexColumns []string
	indexErr     error

	entities []string
	names    []string
	years    []int
	yearOK   []bool
	values   []float64
}

// Selection is the user's current choice. A zero Selection means "use the defaults".
type Selection struct {
	Entity string
	Year   *int
}

// EntityRef identifies one entity in file order.
type EntityRef struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Records int    `json:"records"`
}

// NewSnapshot validates table and resolves the index column. A missing required
// column is returned as *dataset.SchemaError. A missing index column is not an
// error here; it is reported by IndexErr and every index-based query degrades.
func NewSnapshot(table *dataset.Table, opts Options) (*Snapshot, error) {
	if err := dataset.Validate(table, opts.Columns.Required()); err != nil {
		return nil, err
	}

	s := &Snapshot{table: table, cols: opts.Columns}

	var err error
	if s.entities, err = table.Strings(opts.Columns.Entity); err != nil {
		return nil, err
	}
	if s.names, err = table.Strings(opts.Columns.Name); err != nil {
		return nil, err
	}
	if s.years, s.yearOK, err = table.Ints(opts.Columns.Year); err != nil {
		return nil, err
	}

	s.indexColumn, s.indexColumns, s.indexErr = dataset.ResolveIndexColumn(table, opts.Keywords, opts.IndexColumn)
	if s.indexErr == nil {
		if s.values, err = table.Floats(s.indexColumn); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Table returns the underlying record table.
func (s *Snapshot) Table() *dataset.Table { return s.table }

// Columns returns the required column names.
func (s *Snapshot) Columns() Columns { return s.cols }

// Source describes where the table was read from.
func (s *Snapshot) Source() dataset.Source { return s.table.Source }

// Len is the number of records.
func (s *Snapshot) Len() int { return len(s.entities) }

// IndexColumn is the column used by single-column views, empty when none was found.
func (s *Snapshot) IndexColumn() string { return s.indexColumn }

// IndexColumns lists every keyword-matched column in schema order.
func (s *Snapshot) IndexColumns() []string { return slices.Clone(s.indexColumns) }

// HasIndex reports whether index-based panels can be computed.
func (s *Snapshot) HasIndex() bool { return s.indexErr == nil }

// IndexErr is the soft failure raised while resolving the index column.
func (s *Snapshot) IndexErr() error { return s.indexErr }

// Value returns the index value of row i, NaN when missing or when there is no index column.
func (s *Snapshot) Value(i int) float64 {
	if s.values == nil {
		return nan
	}
	return s.values[i]
}

// Year returns the year of row i and whether it parsed as an integer.
func (s *Snapshot) Year(i int) (int, bool) { return s.years[i], s.yearOK[i] }

// Entities returns the distinct identifiers in order of first appearance.
func (s *Snapshot) Entities() []EntityRef {
	index := make(map[string]int)
	var refs []EntityRef
	for i, code := range s.entities {
		if code == "" {
			continue
		}
		if j, ok := index[code]; ok {
			refs[j].Records++
			continue
		}
		index[code] = len(refs)
		refs = append(refs, EntityRef{Code: code, Name: s.names[i], Records: 1})
	}
	return refs
}

// Years returns the distinct valid years in ascending order.
func (s *Snapshot) Years() []int {
	return distinctYears(s, nil)
}

// Resolve fills in the defaults for an empty selection: the first entity in
// file order and the smallest year in the dataset.
func (s *Snapshot) Resolve(sel Selection) Selection {
	if sel.Entity == "" {
		for _, code := range s.entities {
			if code != "" {
				sel.Entity = code
				break
			}
		}
	}
	if sel.Year == nil {
		if years := s.Years(); len(years) > 0 {
			y := years[0]
			sel.Year = &y
		}
	}
	return sel
}

// allValues returns the non-NaN index values of rows (every row when rows is nil).
func (s *Snapshot) allValues(rows []int) []float64 {
	if s.values == nil {
		return nil
	}
	if rows == nil {
		return dropNaN(s.values)
	}
	picked := make([]float64, 0, len(rows))
	for _, i := range rows {
		picked = append(picked, s.values[i])
	}
	return dropNaN(picked)
}

func distinctYears(s *Snapshot, rows []int) []int {
	seen := make(map[int]bool)
	var years []int
	visit := func(i int) {
		if !s.yearOK[i] || seen[s.years[i]] {
			return
		}
		seen[s.years[i]] = true
		years = append(years, s.years[i])
	}
	if rows == nil {
		for i := range s.years {
			visit(i)
		}
	} else {
		for _, i := range rows {
			visit(i)
		}
	}
	slices.Sort(years)
	return years
}
