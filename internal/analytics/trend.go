package analytics

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Direction classifies the sign of the fitted slope.
type Direction string

const (
	DirectionRising       Direction = "rising"
	DirectionFalling      Direction = "falling"
	DirectionFlat         Direction = "flat"
	DirectionInsufficient Direction = "insufficient"
)

// YearlyAverage is the mean index across all records of one year.
type YearlyAverage struct {
	Year  int
	Mean  float64
	Count int
}

// Trend is a least-squares line through the yearly averages.
type Trend struct {
	Direction Direction
	Slope     float64
	Intercept float64
	Averages  []YearlyAverage
	// Fitted holds the line evaluated at every averaged year; empty when insufficient.
	Fitted []Point
}

// YearlyAverages groups the index by year. Rows without a valid year or value
// are skipped, and so are years left with no value.
func YearlyAverages(s *Snapshot) []YearlyAverage {
	if !s.HasIndex() {
		return nil
	}

	sums := make(map[int]float64)
	counts := make(map[int]int)
	for i := range s.entities {
		v := s.values[i]
		if !s.yearOK[i] || math.IsNaN(v) {
			continue
		}
		sums[s.years[i]] += v
		counts[s.years[i]]++
	}

	avgs := make([]YearlyAverage, 0, len(counts))
	for year, n := range counts {
		avgs = append(avgs, YearlyAverage{Year: year, Mean: sums[year] / float64(n), Count: n})
	}
	sort.Slice(avgs, func(i, j int) bool { return avgs[i].Year < avgs[j].Year })
	return avgs
}

// FitTrend fits a degree-1 polynomial over (year, mean). Fewer than two years
// return a Trend with DirectionInsufficient and ErrInsufficientData.
func FitTrend(avgs []YearlyAverage) (*Trend, error) {
	t := &Trend{Direction: DirectionInsufficient, Averages: avgs}
	if len(avgs) < 2 {
		return t, ErrInsufficientData
	}

	xs := make([]float64, len(avgs))
	ys := make([]float64, len(avgs))
	for i, a := range avgs {
		xs[i] = float64(a.Year)
		ys[i] = a.Mean
	}

	t.Intercept, t.Slope = stat.LinearRegression(xs, ys, nil, false)

	switch {
	case t.Slope > 0:
		t.Direction = DirectionRising
	case t.Slope < 0:
		t.Direction = DirectionFalling
	default:
		t.Direction = DirectionFlat
	}

	t.Fitted = make([]Point, len(avgs))
	for i, a := range avgs {
		t.Fitted[i] = Point{Year: a.Year, Value: t.Intercept + t.Slope*xs[i]}
	}
	return t, nil
}

// Narrative is the one-line trend analysis shown under the chart.
func (t *Trend) Narrative() string {
	switch t.Direction {
	case DirectionRising:
		return fmt.Sprintf("整体呈上升趋势，年均增长约 %.3f 个单位", t.Slope)
	case DirectionFalling:
		return fmt.Sprintf("整体呈下降趋势，年均下降约 %.3f 个单位", math.Abs(t.Slope))
	case DirectionFlat:
		return "整体趋势相对平稳"
	default:
		return "有效年份不足两个，无法拟合趋势"
	}
}
