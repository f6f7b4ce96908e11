package analytics

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Scope selects the rows a distribution is computed over.
type Scope string

const (
	ScopeAll    Scope = "all"
	ScopeEntity Scope = "entity"
)

// ParseScope accepts "", "all" and "entity".
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case "", ScopeAll:
		return ScopeAll, nil
	case ScopeEntity:
		return ScopeEntity, nil
	}
	return "", fmt.Errorf("unknown scope %q", s)
}

// Bin is one histogram bar covering [Lower, Upper); the last bin is closed.
type Bin struct {
	Lower float64
	Upper float64
	Count int
}

// DensityPoint is one sample of the kernel density estimate.
type DensityPoint struct {
	X float64
	Y float64
}

// DistributionOptions size the histogram and the density grid.
type DistributionOptions struct {
	Bins int
	Grid int
}

// Distribution is the histogram and density panel.
type Distribution struct {
	Scope  Scope
	Entity string
	Name   string
	// Fallback is set when an entity scope was requested for an unknown entity
	// and the whole dataset was used instead.
	Fallback  bool
	Count     int
	Bins      []Bin
	Bandwidth float64
	// Density is empty when fewer than two values or no spread.
	Density []DensityPoint
}

// Distribute computes the histogram and Gaussian KDE of the index column over
// the whole dataset or one entity's rows.
func Distribute(s *Snapshot, scope Scope, entity string, opts DistributionOptions) (*Distribution, error) {
	if !s.HasIndex() {
		return nil, s.IndexErr()
	}
	if opts.Bins <= 0 {
		opts.Bins = 20
	}
	if opts.Grid < 2 {
		opts.Grid = 100
	}

	d := &Distribution{Scope: ScopeAll}
	var rows []int
	if scope == ScopeEntity {
		view, err := FilterEntity(s, entity)
		if err == nil {
			d.Scope, d.Entity, d.Name = ScopeEntity, view.Entity, view.Name
			rows = view.FileRows
		} else {
			d.Fallback = true
		}
	}

	x := s.allValues(rows)
	d.Count = len(x)
	if len(x) == 0 {
		return d, ErrEmptySubset
	}
	slices.Sort(x)

	d.Bins = histogram(x, opts.Bins)
	d.Bandwidth, d.Density = density(x, opts.Grid)
	return d, nil
}

// histogram splits sorted x into n equal-width bins over [min, max].
// Identical values collapse into a single bin.
func histogram(x []float64, n int) []Bin {
	lo, hi := x[0], x[len(x)-1]
	if lo == hi {
		n = 1
	}

	dividers := make([]float64, n+1)
	if n == 1 {
		dividers[0], dividers[1] = lo, hi
	} else {
		floats.Span(dividers, lo, hi)
	}
	upper := dividers[n]
	dividers[n] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(make([]float64, n), dividers, x, nil)

	bins := make([]Bin, n)
	for i := range bins {
		bins[i] = Bin{Lower: dividers[i], Upper: dividers[i+1], Count: int(counts[i])}
	}
	bins[n-1].Upper = upper
	return bins
}

// density evaluates a Gaussian KDE with Scott's bandwidth on a grid extending
// three bandwidths past the data on each side.
func density(x []float64, grid int) (float64, []DensityPoint) {
	if len(x) < 2 {
		return 0, nil
	}
	sd := stat.StdDev(x, nil)
	if sd == 0 || math.IsNaN(sd) {
		return 0, nil
	}
	bw := sd * math.Pow(float64(len(x)), -0.2)

	xs := floats.Span(make([]float64, grid), x[0]-3*bw, x[len(x)-1]+3*bw)
	kernels := make([]distuv.Normal, len(x))
	for i, v := range x {
		kernels[i] = distuv.Normal{Mu: v, Sigma: bw}
	}

	points := make([]DensityPoint, grid)
	n := float64(len(x))
	for i, g := range xs {
		var sum float64
		for _, k := range kernels {
			sum += k.Prob(g)
		}
		points[i] = DensityPoint{X: g, Y: sum / n}
	}
	return bw, points
}
