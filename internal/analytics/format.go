package analytics

import (
	"math"
	"strconv"
)

// NotAvailable is shown in place of a missing number.
const NotAvailable = "n/a"

// FormatValue renders an index value with two decimals.
func FormatValue(v float64) string {
	return format(v, 2)
}

// FormatStat renders a statistic with four decimals.
func FormatStat(v float64) string {
	return format(v, 4)
}

func format(v float64, prec int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NotAvailable
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

// Finite returns a pointer to v, or nil when v is NaN or infinite. JSON
// responses use it so missing numbers encode as null.
func Finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
