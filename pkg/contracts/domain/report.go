package domain

// Numbers that can be missing (NaN in the source data) are pointers and
// encode as null.

// SourceInfo describes where the dataset was read from
type SourceInfo struct {
	Path     string `json:"path"`
	Strategy string `json:"strategy"`
	Sheet    string `json:"sheet,omitempty"`
}

// Stats are the descriptive statistics of the index column
type Stats struct {
	Count  int      `json:"count"`
	Mean   *float64 `json:"mean"`
	Max    *float64 `json:"max"`
	Min    *float64 `json:"min"`
	Median *float64 `json:"median"`
	Std    *float64 `json:"std"`
	Q25    *float64 `json:"q25"`
	Q75    *float64 `json:"q75"`
}

// DatasetOverview is the data-structure panel
type DatasetOverview struct {
	Source       SourceInfo `json:"source"`
	Rows         int        `json:"rows"`
	Columns      int        `json:"columns"`
	ColumnNames  []string   `json:"column_names"`
	MoreColumns  bool       `json:"more_columns"`
	Header       []string   `json:"header"`
	Preview      [][]string `json:"preview"`
	IndexColumn  string     `json:"index_column,omitempty"`
	IndexColumns []string   `json:"index_columns"`
	Notices      []Notice   `json:"notices,omitempty"`
}

// YearRange is the first and last year in the dataset
type YearRange struct {
	First int `json:"first"`
	Last  int `json:"last"`
}

// GlobalSummary is the dataset-wide statistics panel
type GlobalSummary struct {
	Rows        int        `json:"rows"`
	Entities    int        `json:"entities"`
	Years       []int      `json:"years"`
	YearRange   *YearRange `json:"year_range,omitempty"`
	YearCount   int        `json:"year_count"`
	IndexColumn string     `json:"index_column,omitempty"`
	Stats       *Stats     `json:"stats"`
	Notices     []Notice   `json:"notices,omitempty"`
}

// EntitySummary is one entry of the entity picker
type EntitySummary struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Records int    `json:"records"`
}

// SeriesPoint is one (year, value) pair
type SeriesPoint struct {
	Year  int      `json:"year"`
	Value *float64 `json:"value"`
}

// YearRecord is the index value of the selected entity for the selected year
type YearRecord struct {
	Year          int      `json:"year"`
	Value         *float64 `json:"value"`
	Display       string   `json:"display"`
	Matches       int      `json:"matches"`
	DuplicateYear bool     `json:"duplicate_year"`
}

// EntityPanel is everything shown for the selected entity
type EntityPanel struct {
	Code    string        `json:"code"`
	Name    string        `json:"name,omitempty"`
	Found   bool          `json:"found"`
	Records int           `json:"records"`
	Years   []int         `json:"years"`
	Series  []SeriesPoint `json:"series"`
	Stats   *Stats        `json:"stats"`
	Year    *YearRecord   `json:"year,omitempty"`
	Header  []string      `json:"header"`
	Rows    [][]string    `json:"rows"`
	Notices []Notice      `json:"notices,omitempty"`
}

// YearlyAverage is the mean index of one year
type YearlyAverage struct {
	Year  int     `json:"year"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// TrendPanel is the overall trend with its fitted line
type TrendPanel struct {
	Direction string          `json:"direction"`
	Slope     *float64        `json:"slope"`
	Intercept *float64        `json:"intercept"`
	Narrative string          `json:"narrative"`
	Averages  []YearlyAverage `json:"averages"`
	Fitted    []SeriesPoint   `json:"fitted"`
	Notices   []Notice        `json:"notices,omitempty"`
}

// HistogramBin is one histogram bar
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// DensityPoint is one sample of the density curve
type DensityPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DistributionPanel is the histogram and density of the index column
type DistributionPanel struct {
	Scope     string         `json:"scope"`
	Entity    string         `json:"entity,omitempty"`
	Name      string         `json:"name,omitempty"`
	Count     int            `json:"count"`
	Bins      []HistogramBin `json:"bins"`
	Bandwidth *float64       `json:"bandwidth"`
	Density   []DensityPoint `json:"density"`
	Notices   []Notice       `json:"notices,omitempty"`
}

// Selection echoes the entity and year the report was built for
type Selection struct {
	Entity string `json:"entity"`
	Year   *int   `json:"year"`
}

// ExportLink points at the CSV download of the selected entity
type ExportLink struct {
	FileName string `json:"file_name"`
	URL      string `json:"url"`
}

// Report is the complete single-page report for a selection
type Report struct {
	Selection    Selection          `json:"selection"`
	Entities     []EntitySummary    `json:"entities"`
	Years        []int              `json:"years"`
	Dataset      *DatasetOverview   `json:"dataset"`
	Summary      *GlobalSummary     `json:"summary"`
	Entity       *EntityPanel       `json:"entity"`
	Distribution *DistributionPanel `json:"distribution"`
	Trend        *TrendPanel        `json:"trend"`
	Export       *ExportLink        `json:"export,omitempty"`
}
