package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"dtindex/internal/analytics"
	"dtindex/internal/charts"
	"dtindex/internal/config"
	"dtindex/internal/dataset"
	apperrors "dtindex/internal/errors"
	"dtindex/internal/exporter"
	"dtindex/internal/infrastructure"
	"dtindex/pkg/contracts/domain"
)

// DatasetLoader reads the record table from disk.
type DatasetLoader interface {
	Load(ctx context.Context, path string) (*dataset.Table, error)
}

// ExportFile is a rendered CSV download.
type ExportFile struct {
	FileName string
	Entity   string
	Rows     int
	Data     []byte
}

// ChartRequest selects a chart and the rows it is drawn from.
type ChartRequest struct {
	Kind      charts.Kind
	Selection analytics.Selection
	Scope     analytics.Scope
}

// ReportOption customises a ReportService.
type ReportOption func(*ReportService)

// WithMetrics records panel computations on m.
func WithMetrics(m *infrastructure.ReportMetrics) ReportOption {
	return func(s *ReportService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTracer replaces the global tracer.
func WithTracer(t trace.Tracer) ReportOption {
	return func(s *ReportService) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithRand sets the source of preview samples. A nil func previews the first rows.
func WithRand(newRand func() *rand.Rand) ReportOption {
	return func(s *ReportService) { s.newRand = newRand }
}

type reportState struct {
	snap     *analytics.Snapshot
	failure  *LoadFailure
	loadedAt time.Time
}

// ReportService loads the dataset once and answers every report query against
// the resulting read-only snapshot.
type ReportService struct {
	cfg      config.DatasetConfig
	distOpts analytics.DistributionOptions
	loader   DatasetLoader
	writer   *exporter.CSVWriter
	renderer *charts.Renderer
	metrics  *infrastructure.ReportMetrics
	tracer   trace.Tracer
	newRand  func() *rand.Rand
	logger   *slog.Logger

	state atomic.Pointer[reportState]
}

// NewReportService creates a report service. Call Load before querying.
func NewReportService(cfg config.DatasetConfig, chartsCfg config.ChartsConfig, loader DatasetLoader, logger *slog.Logger, opts ...ReportOption) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "report_service")

	s := &ReportService{
		cfg:      cfg,
		distOpts: analytics.DistributionOptions{Bins: chartsCfg.Bins, Grid: chartsCfg.DensityGrid},
		loader:   loader,
		writer:   exporter.NewCSVWriter(logger, cfg.ExportBOM),
		renderer: charts.NewRenderer(chartsCfg, logger),
		metrics:  infrastructure.NoopReportMetrics(),
		tracer:   otel.Tracer(infrastructure.MeterName),
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	logger.Info("ReportService initialized",
		slog.String("path", cfg.Path),
		slog.String("index_column", cfg.IndexColumn),
		slog.Any("keywords", cfg.Keywords))
	return s
}

// Load reads and validates the dataset. A hard stop is kept as the service
// state, so every later query returns the same *LoadFailure, and is also
// returned here.
func (s *ReportService) Load(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "report.load", trace.WithAttributes(attribute.String("dataset.path", s.cfg.Path)))
	defer span.End()
	start := time.Now()

	snap, err := s.build(ctx)
	s.metrics.DatasetLoadDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.Bool("error", err != nil)))

	if err != nil {
		failure := newLoadFailure(s.cfg.Path, err)
		s.state.Store(&reportState{failure: failure, loadedAt: time.Now()})
		infrastructure.RecordError(ctx, failure)
		logReportError(ctx, s.logger, "load", "Dataset unavailable",
			slog.String("path", s.cfg.Path),
			slog.String("error", err.Error()),
			slog.Any("missing_columns", failure.MissingColumns),
			slog.String("working_dir", failure.WorkingDir))
		return failure
	}

	s.state.Store(&reportState{snap: snap, loadedAt: time.Now()})
	s.metrics.DatasetRows.Record(ctx, int64(snap.Len()))

	attrs := []any{
		slog.String("path", s.cfg.Path),
		slog.String("strategy", snap.Source().Strategy),
		slog.Int("rows", snap.Len()),
		slog.String("index_column", snap.IndexColumn()),
		slog.Duration("duration", time.Since(start)),
	}
	if err := snap.IndexErr(); err != nil {
		s.logger.WarnContext(ctx, "Dataset loaded without an index column", append(attrs, slog.String("error", err.Error()))...)
	} else {
		s.logger.InfoContext(ctx, "Dataset loaded", attrs...)
	}
	return nil
}

func (s *ReportService) build(ctx context.Context) (*analytics.Snapshot, error) {
	table, err := s.loader.Load(ctx, s.cfg.Path)
	if err != nil {
		return nil, err
	}
	return analytics.NewSnapshot(table, analytics.Options{
		Columns: analytics.Columns{
			Entity: s.cfg.EntityColumn,
			Year:   s.cfg.YearColumn,
			Name:   s.cfg.NameColumn,
		},
		Keywords:    s.cfg.Keywords,
		IndexColumn: s.cfg.IndexColumn,
	})
}

// Ready reports whether a dataset is being served, and the failure otherwise.
func (s *ReportService) Ready() (bool, *LoadFailure) {
	st := s.state.Load()
	if st == nil {
		return false, nil
	}
	return st.snap != nil, st.failure
}

// Snapshot returns the loaded snapshot or the hard-stop error.
func (s *ReportService) Snapshot() (*analytics.Snapshot, error) {
	st := s.state.Load()
	switch {
	case st == nil:
		return nil, ErrDatasetNotLoaded
	case st.failure != nil:
		return nil, st.failure.AppError()
	}
	return st.snap, nil
}

// begin opens a span for panel and returns the func that closes it and records metrics.
func (s *ReportService) begin(ctx context.Context, panel string) (context.Context, func(*error, ...domain.Notice)) {
	ctx, span := s.tracer.Start(ctx, "report."+panel)
	start := time.Now()
	return ctx, func(errp *error, notices ...domain.Notice) {
		failed := errp != nil && *errp != nil
		attrs := metric.WithAttributes(attribute.String("panel", panel), attribute.Bool("error", failed))
		s.metrics.ReportRequestsTotal.Add(ctx, 1, attrs)
		s.metrics.ReportComputeDuration.Record(ctx, time.Since(start).Seconds(), attrs)
		for _, n := range notices {
			s.metrics.ReportNotices.Add(ctx, 1, metric.WithAttributes(
				attribute.String("panel", panel),
				attribute.String("code", n.Code)))
		}
		if failed {
			infrastructure.RecordError(ctx, *errp)
		}
		span.End()
	}
}

// Overview returns the data-structure panel with a random row preview.
func (s *ReportService) Overview(ctx context.Context) (out *domain.DatasetOverview, err error) {
	_, done := s.begin(ctx, "overview")
	defer func() { done(&err, notices(out)...) }()

	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	var rng *rand.Rand
	if s.newRand != nil {
		rng = s.newRand()
	}
	return toOverview(snap, analytics.BuildOverview(snap, s.cfg.PreviewRows, rng)), nil
}

// Summary returns the dataset-wide statistics panel.
func (s *ReportService) Summary(ctx context.Context) (out *domain.GlobalSummary, err error) {
	_, done := s.begin(ctx, "summary")
	defer func() { done(&err, notices(out)...) }()

	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return toSummary(snap, analytics.Summarize(snap)), nil
}

// Entities lists the identifiers in order of first appearance.
func (s *ReportService) Entities(ctx context.Context) ([]domain.EntitySummary, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return toEntities(snap.Entities()), nil
}

// Years lists the distinct valid years in ascending order.
func (s *ReportService) Years(ctx context.Context) ([]int, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	years := snap.Years()
	if years == nil {
		years = []int{}
	}
	return years, nil
}

// Entity returns the panel of one entity. An empty selection uses the first
// entity and earliest year; an unknown entity yields Found=false and a notice.
func (s *ReportService) Entity(ctx context.Context, sel analytics.Selection) (out *domain.EntityPanel, err error) {
	_, done := s.begin(ctx, "entity")
	defer func() { done(&err, notices(out)...) }()

	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	sel = snap.Resolve(sel)
	return buildEntityPanel(snap, sel.Entity, sel.Year), nil
}

// Trend returns the yearly averages with their least-squares line.
func (s *ReportService) Trend(ctx context.Context) (out *domain.TrendPanel, err error) {
	_, done := s.begin(ctx, "trend")
	defer func() { done(&err, notices(out)...) }()

	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return buildTrendPanel(snap), nil
}

// Distribution returns the histogram and density over scope.
func (s *ReportService) Distribution(ctx context.Context, scope analytics.Scope, entity string) (out *domain.DistributionPanel, err error) {
	_, done := s.begin(ctx, "distribution")
	defer func() { done(&err, notices(out)...) }()

	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	if scope == analytics.ScopeEntity && entity == "" {
		entity = snap.Resolve(analytics.Selection{}).Entity
	}
	return buildDistributionPanel(snap, scope, entity, s.distOpts), nil
}

// Report assembles every panel for sel. The distribution covers the whole
// dataset until an entity is queried, then only that entity's rows.
func (s *ReportService) Report(ctx context.Context, sel analytics.Selection) (out *domain.Report, err error) {
	ctx, done := s.begin(ctx, "report")
	defer func() { done(&err) }()

	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	queried := sel.Entity != ""
	sel = snap.Resolve(sel)

	overview, err := s.Overview(ctx)
	if err != nil {
		return nil, err
	}
	summary, err := s.Summary(ctx)
	if err != nil {
		return nil, err
	}
	entity, err := s.Entity(ctx, sel)
	if err != nil {
		return nil, err
	}
	scope, code := analytics.ScopeAll, ""
	if queried && entity.Found {
		scope, code = analytics.ScopeEntity, entity.Code
	}
	dist, err := s.Distribution(ctx, scope, code)
	if err != nil {
		return nil, err
	}
	trend, err := s.Trend(ctx)
	if err != nil {
		return nil, err
	}

	out = &domain.Report{
		Selection:    domain.Selection{Entity: sel.Entity, Year: sel.Year},
		Entities:     toEntities(snap.Entities()),
		Years:        summary.Years,
		Dataset:      overview,
		Summary:      summary,
		Entity:       entity,
		Distribution: dist,
		Trend:        trend,
	}
	if entity.Found {
		out.Export = &domain.ExportLink{
			FileName: exporter.ExportFileName(entity.Name, entity.Code),
			URL:      "/api/export/" + url.PathEscape(entity.Code),
		}
	}
	return out, nil
}

// Export renders every row of entity, in file order, as CSV.
func (s *ReportService) Export(ctx context.Context, entity string) (out *ExportFile, err error) {
	ctx, done := s.begin(ctx, "export")
	defer func() { done(&err) }()

	snap, view, err := s.exportView(entity)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	rows, err := s.writer.Write(&buf, snap.Table().Subset(view.FileRows))
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to render export of %s", entity), err)
	}
	s.metrics.ExportRowsTotal.Add(ctx, int64(rows))
	infrastructure.AddSpanEvent(ctx, "export.written",
		attribute.String("entity", view.Entity),
		attribute.Int("rows", rows))

	return &ExportFile{
		FileName: exporter.ExportFileName(view.Name, view.Entity),
		Entity:   view.Entity,
		Rows:     rows,
		Data:     buf.Bytes(),
	}, nil
}

// SaveExport writes the export of entity into dir and returns the file path.
func (s *ReportService) SaveExport(ctx context.Context, entity, dir string) (path string, rows int, err error) {
	ctx, done := s.begin(ctx, "export")
	defer func() { done(&err) }()

	snap, view, err := s.exportView(entity)
	if err != nil {
		return "", 0, err
	}
	path, rows, err = s.writer.WriteFile(dir, exporter.ExportFileName(view.Name, view.Entity), snap.Table().Subset(view.FileRows))
	if err != nil {
		return "", 0, apperrors.NewStorageError("failed to write export", err).
			WithContext("dir", dir).
			WithContext("entity", view.Entity)
	}
	s.metrics.ExportRowsTotal.Add(ctx, int64(rows))
	infrastructure.AddSpanEvent(ctx, "export.saved",
		attribute.String("entity", view.Entity),
		attribute.String("path", path),
		attribute.Int("rows", rows))
	return path, rows, nil
}

func (s *ReportService) exportView(entity string) (*analytics.Snapshot, *analytics.EntityView, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, nil, err
	}
	view, err := analytics.FilterEntity(snap, entity)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrEntityNotFound, entity)
	}
	return snap, view, nil
}

// Chart renders one PNG chart. Panels with nothing to plot return ErrNoChartData.
func (s *ReportService) Chart(ctx context.Context, req ChartRequest) (png []byte, err error) {
	ctx, done := s.begin(ctx, "chart")
	defer func() { done(&err) }()

	if req.Kind.IsEntityChart() {
		panel, err := s.Entity(ctx, req.Selection)
		if err != nil {
			return nil, err
		}
		if req.Kind == charts.KindEntityLine {
			return s.renderer.EntityLine(panel)
		}
		return s.renderer.EntityBar(panel)
	}

	switch req.Kind {
	case charts.KindHistogram, charts.KindDensity:
		entity := req.Selection.Entity
		scope := req.Scope
		if scope == "" {
			scope = analytics.ScopeAll
		}
		panel, err := s.Distribution(ctx, scope, entity)
		if err != nil {
			return nil, err
		}
		if req.Kind == charts.KindHistogram {
			return s.renderer.Histogram(panel)
		}
		return s.renderer.Density(panel)

	case charts.KindTrend:
		panel, err := s.Trend(ctx)
		if err != nil {
			return nil, err
		}
		return s.renderer.Trend(panel)
	}
	return nil, fmt.Errorf("%w: unknown chart kind %q", ErrInvalidInput, req.Kind)
}

// notices extracts the notices of any panel type.
func notices(panel any) []domain.Notice {
	switch p := panel.(type) {
	case *domain.DatasetOverview:
		if p != nil {
			return p.Notices
		}
	case *domain.GlobalSummary:
		if p != nil {
			return p.Notices
		}
	case *domain.EntityPanel:
		if p != nil {
			return p.Notices
		}
	case *domain.TrendPanel:
		if p != nil {
			return p.Notices
		}
	case *domain.DistributionPanel:
		if p != nil {
			return p.Notices
		}
	}
	return nil
}
