package analytics

// GlobalSummary is the dataset-wide statistics panel.
type GlobalSummary struct {
	Rows         int
	Entities     int
	Years        []int
	IndexColumn  string
	IndexColumns []string
	// Stats is nil when there is no index column or it holds no numeric values.
	Stats *Stats
}

// YearRange returns the first and last year, ok is false when no year parsed.
func (g GlobalSummary) YearRange() (first, last int, ok bool) {
	if len(g.Years) == 0 {
		return 0, 0, false
	}
	return g.Years[0], g.Years[len(g.Years)-1], true
}

// Summarize computes the global panel. Record and entity counts are always
// present; index statistics only when the snapshot has an index column.
func Summarize(s *Snapshot) GlobalSummary {
	return GlobalSummary{
		Rows:         s.Len(),
		Entities:     len(s.Entities()),
		Years:        s.Years(),
		IndexColumn:  s.IndexColumn(),
		IndexColumns: s.IndexColumns(),
		Stats:        Describe(s.allValues(nil)),
	}
}
