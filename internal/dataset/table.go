package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Source records where a table came from.
type Source struct {
	Path     string `json:"path"`
	Strategy string `json:"strategy"`
	Sheet    string `json:"sheet,omitempty"`
}

// Table is the in-memory record table. Every cell is held as text in a gota
// DataFrame; typed views are parsed on demand so identifiers keep leading zeros.
type Table struct {
	df     dataframe.DataFrame
	Source Source
}

// NewTable builds a Table from a header row and data rows.
// Headers are normalised and de-duplicated, short rows padded, blank rows dropped.
func NewTable(header []string, rows [][]string) (*Table, error) {
	width := len(header)
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 {
		return nil, fmt.Errorf("table has no columns")
	}

	names := normalizeHeader(header, width)

	cleaned := make([][]string, 0, len(rows))
	for _, row := range rows {
		out := make([]string, width)
		blank := true
		for i := range out {
			if i < len(row) {
				out[i] = strings.TrimSpace(row[i])
			}
			if out[i] != "" {
				blank = false
			}
		}
		if !blank {
			cleaned = append(cleaned, out)
		}
	}

	if len(cleaned) == 0 {
		cols := make([]series.Series, len(names))
		for i, name := range names {
			cols[i] = series.New([]string{}, series.String, name)
		}
		df := dataframe.New(cols...)
		if df.Err != nil {
			return nil, fmt.Errorf("build empty table: %w", df.Err)
		}
		return &Table{df: df}, nil
	}

	records := make([][]string, 0, len(cleaned)+1)
	records = append(records, names)
	records = append(records, cleaned...)

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("load records: %w", df.Err)
	}
	return &Table{df: df}, nil
}

// Columns returns the column names in schema order.
func (t *Table) Columns() []string { return t.df.Names() }

// Len returns the number of data rows.
func (t *Table) Len() int { return t.df.Nrow() }

// HasColumn reports whether name is a column of the table.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.df.Names() {
		if c == name {
			return true
		}
	}
	return false
}

// Strings returns the raw text of a column.
func (t *Table) Strings(col string) ([]string, error) {
	s := t.df.Col(col)
	if s.Err != nil {
		return nil, fmt.Errorf("column %q: %w", col, s.Err)
	}
	return s.Records(), nil
}

// Floats returns a column parsed as float64. Blank, malformed and
// non-finite cells become NaN.
func (t *Table) Floats(col string) ([]float64, error) {
	s := t.df.Col(col)
	if s.Err != nil {
		return nil, fmt.Errorf("column %q: %w", col, s.Err)
	}
	values := s.Float()
	for i, v := range values {
		if math.IsInf(v, 0) {
			values[i] = math.NaN()
		}
	}
	return values, nil
}

// Ints returns a column parsed as integers. ok[i] is false where the cell is
// not an integral number. Spreadsheet exports often store years as "2019.0".
func (t *Table) Ints(col string) (values []int, ok []bool, err error) {
	raw, err := t.Strings(col)
	if err != nil {
		return nil, nil, err
	}
	values = make([]int, len(raw))
	ok = make([]bool, len(raw))
	for i, cell := range raw {
		values[i], ok[i] = ParseInt(cell)
	}
	return values, ok, nil
}

// ParseInt parses an integral cell, accepting float notation with no fractional part.
func ParseInt(cell string) (int, bool) {
	cell = strings.TrimSpace(cell)
	if n, err := strconv.Atoi(cell); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// Row returns the cells of row i in schema order.
func (t *Table) Row(i int) []string {
	row := make([]string, t.df.Ncol())
	for j := range row {
		row[j] = t.df.Elem(i, j).String()
	}
	return row
}

// Records returns all data rows without the header.
func (t *Table) Records() [][]string {
	records := t.df.Records()
	if len(records) == 0 {
		return nil
	}
	return records[1:]
}

// Subset returns a new table holding the given rows in the given order.
func (t *Table) Subset(rows []int) *Table {
	if len(rows) == 0 {
		cols := make([]series.Series, 0, t.df.Ncol())
		for _, name := range t.df.Names() {
			cols = append(cols, series.New([]string{}, series.String, name))
		}
		return &Table{df: dataframe.New(cols...), Source: t.Source}
	}
	return &Table{df: t.df.Subset(rows), Source: t.Source}
}

// WriteCSV writes the header and every row as comma-separated text.
func (t *Table) WriteCSV(w io.Writer) error {
	if t.Len() == 0 {
		cw := csv.NewWriter(w)
		if err := cw.Write(t.Columns()); err != nil {
			return err
		}
		cw.Flush()
		return cw.Error()
	}
	return t.df.WriteCSV(w, dataframe.WriteHeader(true))
}
