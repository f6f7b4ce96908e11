package exporter

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

const notAvailable = "n/a"

// formatNumber formats an optional value with prec decimals, "n/a" when absent
func formatNumber(v *float64, prec int) string {
	if v == nil {
		return notAvailable
	}
	return fmt.Sprintf("%.*f", prec, *v)
}

// formatCount formats a count with thousands separators
func formatCount(n int) string {
	return humanize.Comma(int64(n))
}
