package analytics

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

var nan = math.NaN()

// Stats are the descriptive statistics shown for the index column.
type Stats struct {
	Count  int
	Mean   float64
	Max    float64
	Min    float64
	Median float64
	// Std is the sample standard deviation (n-1); NaN for a single value.
	Std float64
	Q25 float64
	Q75 float64
}

// Describe computes Stats over values, skipping NaN. It returns nil when no
// value remains. The result does not depend on the order of values.
func Describe(values []float64) *Stats {
	x := dropNaN(values)
	if len(x) == 0 {
		return nil
	}
	slices.Sort(x)

	st := &Stats{
		Count:  len(x),
		Mean:   stat.Mean(x, nil),
		Min:    x[0],
		Max:    x[len(x)-1],
		Median: Quantile(x, 0.5),
		Std:    nan,
		Q25:    Quantile(x, 0.25),
		Q75:    Quantile(x, 0.75),
	}
	if len(x) > 1 {
		st.Std = stat.StdDev(x, nil)
	}
	return st
}

// Quantile returns the p-quantile of sorted by linear interpolation between
// the closest ranks, the definition used by spreadsheet tools and pandas.
// stat.LinInterp interpolates on p*n instead and gives different quartiles.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	switch {
	case n == 0:
		return nan
	case n == 1:
		return sorted[0]
	}
	h := float64(n-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i >= n-1 {
		return sorted[n-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

func dropNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
