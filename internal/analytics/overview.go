package analytics

import (
	"math/rand/v2"
)

// OverviewColumns is how many column names the overview lists before truncating.
const OverviewColumns = 10

// Overview is the data-structure panel: shape, leading column names and a
// random preview of rows.
type Overview struct {
	Rows         int
	Columns      int
	ColumnNames  []string
	Header       []string
	Preview      [][]string
	PreviewIndex []int
}

// MoreColumns reports whether ColumnNames was truncated.
func (o Overview) MoreColumns() bool { return o.Columns > len(o.ColumnNames) }

// BuildOverview samples up to n rows without replacement using rng. A nil rng
// takes the first n rows, which keeps tests deterministic.
func BuildOverview(s *Snapshot, n int, rng *rand.Rand) Overview {
	cols := s.table.Columns()
	o := Overview{
		Rows:        s.Len(),
		Columns:     len(cols),
		ColumnNames: cols[:min(len(cols), OverviewColumns)],
		Header:      cols,
	}

	n = min(n, s.Len())
	if n <= 0 {
		return o
	}

	if rng == nil {
		o.PreviewIndex = make([]int, n)
		for i := range n {
			o.PreviewIndex[i] = i
		}
	} else {
		o.PreviewIndex = rng.Perm(s.Len())[:n]
	}

	o.Preview = make([][]string, n)
	for i, row := range o.PreviewIndex {
		o.Preview[i] = s.table.Row(row)
	}
	return o
}
