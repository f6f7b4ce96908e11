package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoIndexColumns is the soft stop raised when no header matches an index keyword.
var ErrNoIndexColumns = errors.New("no index columns found")

// SchemaError is the hard stop raised when required columns are absent.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// Validate checks that every required column is present. Missing columns are
// reported in the order they were required.
func Validate(t *Table, required []string) error {
	var missing []string
	for _, col := range required {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}

// IndexColumns returns every column whose name contains any keyword, in schema order.
func IndexColumns(t *Table, keywords []string) []string {
	var matched []string
	for _, col := range t.Columns() {
		for _, kw := range keywords {
			if kw != "" && strings.Contains(col, kw) {
				matched = append(matched, col)
				break
			}
		}
	}
	return matched
}

// ResolveIndexColumn picks the column used for single-column views: override
// when set (it must exist), otherwise the first keyword match.
func ResolveIndexColumn(t *Table, keywords []string, override string) (string, []string, error) {
	matched := IndexColumns(t, keywords)

	if override != "" {
		if !t.HasColumn(override) {
			return "", matched, fmt.Errorf("configured index column %q is not in the dataset", override)
		}
		return override, matched, nil
	}

	if len(matched) == 0 {
		return "", nil, ErrNoIndexColumns
	}
	return matched[0], matched, nil
}
