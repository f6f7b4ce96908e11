package charts

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"dtindex/internal/config"
	"dtindex/pkg/contracts/domain"
)

// Kind names a chart.
type Kind string

const (
	KindHistogram  Kind = "histogram"
	KindDensity    Kind = "density"
	KindEntityLine Kind = "entity-line"
	KindEntityBar  Kind = "entity-bar"
	KindTrend      Kind = "trend"
)

// Kinds lists every chart kind in display order.
var Kinds = []Kind{KindHistogram, KindDensity, KindEntityLine, KindEntityBar, KindTrend}

// ErrNoData is returned when a panel has nothing to plot.
var ErrNoData = errors.New("no data to plot")

// ParseKind validates a chart kind name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown chart kind %q", s)
}

// IsEntityChart reports whether the kind is drawn from an entity panel.
func (k Kind) IsEntityChart() bool {
	return k == KindEntityLine || k == KindEntityBar
}

var (
	blue   = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	orange = color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff}
	red    = color.RGBA{R: 0xe7, G: 0x4c, B: 0x3c, A: 0xff}
	slate  = color.RGBA{R: 0x2c, G: 0x3e, B: 0x50, A: 0xff}
	steel  = color.RGBA{R: 0x2e, G: 0x86, B: 0xc1, A: 0xff}
)

// Renderer draws PNG charts of a fixed size.
type Renderer struct {
	width  vg.Length
	height vg.Length
	logger *slog.Logger
}

// NewRenderer creates a renderer sized by cfg.
func NewRenderer(cfg config.ChartsConfig, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	w, h := cfg.WidthInches, cfg.HeightInches
	if w <= 0 {
		w = 8
	}
	if h <= 0 {
		h = 4.5
	}
	return &Renderer{
		width:  vg.Length(w) * vg.Inch,
		height: vg.Length(h) * vg.Inch,
		logger: logger.With(slog.String("component", "chart_renderer")),
	}
}

// Histogram draws the binned index distribution.
func (r *Renderer) Histogram(d *domain.DistributionPanel) ([]byte, error) {
	if d == nil || len(d.Bins) == 0 {
		return nil, ErrNoData
	}

	p := newPlot("Index distribution"+scopeSuffix(d), "Index", "Records")

	bins := make([]plotter.HistogramBin, len(d.Bins))
	for i, b := range d.Bins {
		bins[i] = plotter.HistogramBin{Min: b.Lower, Max: b.Upper, Weight: float64(b.Count)}
	}
	if bins[0].Min == bins[0].Max {
		bins[0].Min -= 0.5
		bins[0].Max += 0.5
	}
	h := &plotter.Histogram{
		Bins:      bins,
		Width:     bins[0].Max - bins[0].Min,
		FillColor: withAlpha(blue, 0xb3),
		LineStyle: plotter.DefaultLineStyle,
	}
	p.Add(h)

	return r.encode(p, KindHistogram)
}

// Density draws the kernel density estimate as a filled curve.
func (r *Renderer) Density(d *domain.DistributionPanel) ([]byte, error) {
	if d == nil || len(d.Density) == 0 {
		return nil, ErrNoData
	}

	p := newPlot("Index density"+scopeSuffix(d), "Index", "Density")

	xys := make(plotter.XYs, len(d.Density))
	for i, pt := range d.Density {
		xys[i] = plotter.XY{X: pt.X, Y: pt.Y}
	}
	l, err := plotter.NewLine(xys)
	if err != nil {
		return nil, fmt.Errorf("density line: %w", err)
	}
	l.Color = orange
	l.Width = vg.Points(2)
	l.FillColor = withAlpha(orange, 0x80)
	p.Add(l)

	return r.encode(p, KindDensity)
}

// EntityLine draws one entity's index over the years with value labels.
func (r *Renderer) EntityLine(e *domain.EntityPanel) ([]byte, error) {
	xys, labels := seriesPoints(e)
	if len(xys) == 0 {
		return nil, ErrNoData
	}

	p := newPlot(fmt.Sprintf("Index by year (%s)", e.Code), "Year", "Index")
	p.X.Tick.Marker = yearTicks{}

	l, s, err := plotter.NewLinePoints(xys)
	if err != nil {
		return nil, fmt.Errorf("entity line: %w", err)
	}
	l.Color = steel
	l.Width = vg.Points(2)
	s.Color = steel
	s.Shape = draw.CircleGlyph{}
	s.Radius = vg.Points(4)
	p.Add(l, s)

	if err := addLabels(p, xys, labels); err != nil {
		return nil, err
	}
	return r.encode(p, KindEntityLine)
}

// EntityBar draws one entity's index as bars, one per year.
func (r *Renderer) EntityBar(e *domain.EntityPanel) ([]byte, error) {
	xys, labels := seriesPoints(e)
	if len(xys) == 0 {
		return nil, ErrNoData
	}

	p := newPlot(fmt.Sprintf("Index by year (%s)", e.Code), "Year", "Index")

	values := make(plotter.Values, len(xys))
	names := make([]string, len(xys))
	labelXYs := make(plotter.XYs, len(xys))
	for i, pt := range xys {
		values[i] = pt.Y
		names[i] = strconv.Itoa(int(pt.X))
		labelXYs[i] = plotter.XY{X: float64(i), Y: pt.Y}
	}

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return nil, fmt.Errorf("entity bars: %w", err)
	}
	bars.Color = withAlpha(orange, 0xcc)
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(names...)

	if err := addLabels(p, labelXYs, labels); err != nil {
		return nil, err
	}
	return r.encode(p, KindEntityBar)
}

// Trend draws the yearly averages and, when fitted, the dashed trend line.
func (r *Renderer) Trend(t *domain.TrendPanel) ([]byte, error) {
	if t == nil || len(t.Averages) == 0 {
		return nil, ErrNoData
	}

	p := newPlot("Overall digital transformation trend", "Year", "Mean index")
	p.X.Tick.Marker = yearTicks{}

	xys := make(plotter.XYs, len(t.Averages))
	labels := make([]string, len(t.Averages))
	for i, a := range t.Averages {
		xys[i] = plotter.XY{X: float64(a.Year), Y: a.Mean}
		labels[i] = strconv.FormatFloat(a.Mean, 'f', 2, 64)
	}

	l, s, err := plotter.NewLinePoints(xys)
	if err != nil {
		return nil, fmt.Errorf("trend line: %w", err)
	}
	l.Color = red
	l.Width = vg.Points(3)
	s.Color = red
	s.Shape = draw.CircleGlyph{}
	s.Radius = vg.Points(5)
	p.Add(l, s)

	if fitted := fittedPoints(t.Fitted); len(fitted) > 1 {
		fl, err := plotter.NewLine(fitted)
		if err != nil {
			return nil, fmt.Errorf("fitted line: %w", err)
		}
		fl.Color = withAlpha(slate, 0xb3)
		fl.Width = vg.Points(2)
		fl.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
		p.Add(fl)
		p.Legend.Add("fit", fl)
	}

	if err := addLabels(p, xys, labels); err != nil {
		return nil, err
	}
	return r.encode(p, KindTrend)
}

func (r *Renderer) encode(p *plot.Plot, kind Kind) ([]byte, error) {
	wt, err := p.WriterTo(r.width, r.height, "png")
	if err != nil {
		return nil, fmt.Errorf("create %s writer: %w", kind, err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode %s: %w", kind, err)
	}
	r.logger.Debug("chart rendered", slog.String("kind", string(kind)), slog.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

func newPlot(title, x, y string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = x
	p.Y.Label.Text = y
	p.Add(plotter.NewGrid())
	return p
}

func scopeSuffix(d *domain.DistributionPanel) string {
	if d.Entity == "" {
		return ""
	}
	return " - " + d.Entity
}

// seriesPoints drops missing values and returns the rest with their labels.
func seriesPoints(e *domain.EntityPanel) (plotter.XYs, []string) {
	if e == nil {
		return nil, nil
	}
	var (
		xys    plotter.XYs
		labels []string
	)
	for _, pt := range e.Series {
		if pt.Value == nil || math.IsNaN(*pt.Value) {
			continue
		}
		xys = append(xys, plotter.XY{X: float64(pt.Year), Y: *pt.Value})
		labels = append(labels, strconv.FormatFloat(*pt.Value, 'f', 2, 64))
	}
	return xys, labels
}

func fittedPoints(points []domain.SeriesPoint) plotter.XYs {
	var xys plotter.XYs
	for _, pt := range points {
		if pt.Value != nil {
			xys = append(xys, plotter.XY{X: float64(pt.Year), Y: *pt.Value})
		}
	}
	return xys
}

func addLabels(p *plot.Plot, xys plotter.XYs, labels []string) error {
	l, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return fmt.Errorf("value labels: %w", err)
	}
	for i := range l.TextStyle {
		l.TextStyle[i].XAlign = draw.XCenter
	}
	l.Offset = vg.Point{Y: vg.Points(6)}
	p.Add(l)
	return nil
}

func withAlpha(c color.RGBA, a uint8) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: a}
}

// yearTicks places a labelled tick on every integer year in range.
type yearTicks struct{}

func (yearTicks) Ticks(lower, upper float64) []plot.Tick {
	lo, hi := math.Ceil(lower), math.Floor(upper)
	step := math.Max(1, math.Ceil((hi-lo+1)/12))
	var ticks []plot.Tick
	for y := lo; y <= hi; y += step {
		ticks = append(ticks, plot.Tick{Value: y, Label: strconv.Itoa(int(y))})
	}
	return ticks
}
