package http

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"dtindex/internal/analytics"
	"dtindex/internal/charts"
	apierrors "dtindex/internal/errors"
	"dtindex/internal/middleware"
	"dtindex/internal/services"
	api "dtindex/pkg/contracts/api/v1"
)

// ReportHandler serves the report panels, CSV exports and chart images
type ReportHandler struct {
	service      ReportServiceInterface
	validator    *middleware.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewReportHandler creates a new report handler with RFC 7807 error handling
func NewReportHandler(service ReportServiceInterface, validator *middleware.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	if validator == nil {
		validator = middleware.NewValidationMiddleware(logger)
	}
	return &ReportHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "report_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the report routes, mounted under /api
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/dataset", h.GetDataset)
		r.Get("/summary", h.GetSummary)
		r.Get("/entities", h.GetEntities)
		r.Get("/entities/{entity}", h.GetEntity)
		r.Get("/years", h.GetYears)
		r.Get("/trend", h.GetTrend)
		r.Get("/distribution", h.GetDistribution)
		r.Get("/report", h.GetReport)
	})

	r.Get("/export/{entity}", h.ExportEntity)
	r.Get("/charts/{kind}.png", h.GetChart)

	return r
}

// GetDataset handles GET /api/dataset
func (h *ReportHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Overview(r.Context())
	if err != nil {
		h.handleServiceError(w, r, "", err)
		return
	}
	h.respond(w, r, overview)
}

// GetSummary handles GET /api/summary
func (h *ReportHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.handleServiceError(w, r, "", err)
		return
	}
	h.respond(w, r, summary)
}

// GetEntities handles GET /api/entities
func (h *ReportHandler) GetEntities(w http.ResponseWriter, r *http.Request) {
	entities, err := h.service.Entities(r.Context())
	if err != nil {
		h.handleServiceError(w, r, "", err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   entities,
		"count":  len(entities),
	})
}

// GetEntity handles GET /api/entities/{entity}?year=
func (h *ReportHandler) GetEntity(w http.ResponseWriter, r *http.Request) {
	q := api.EntityQuery{
		Entity: urlParam(r, "entity"),
		Year:   r.URL.Query().Get("year"),
	}
	if err := h.validator.ValidateStruct(q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	panel, err := h.service.Entity(r.Context(), analytics.Selection{Entity: q.Entity, Year: q.YearValue()})
	if err != nil {
		h.handleServiceError(w, r, q.Entity, err)
		return
	}
	if !panel.Found {
		h.errorHandler.HandleError(w, r, apierrors.EntityNotFound(q.Entity))
		return
	}
	h.respond(w, r, panel)
}

// GetYears handles GET /api/years
func (h *ReportHandler) GetYears(w http.ResponseWriter, r *http.Request) {
	years, err := h.service.Years(r.Context())
	if err != nil {
		h.handleServiceError(w, r, "", err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   years,
		"count":  len(years),
	})
}

// GetTrend handles GET /api/trend
func (h *ReportHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	trend, err := h.service.Trend(r.Context())
	if err != nil {
		h.handleServiceError(w, r, "", err)
		return
	}
	h.respond(w, r, trend)
}

// GetDistribution handles GET /api/distribution?scope=&entity=
func (h *ReportHandler) GetDistribution(w http.ResponseWriter, r *http.Request) {
	q := api.DistributionQuery{
		Scope:  r.URL.Query().Get("scope"),
		Entity: r.URL.Query().Get("entity"),
	}
	if err := h.validator.ValidateStruct(q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	scope, err := analytics.ParseScope(q.Scope)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("scope", err.Error()))
		return
	}

	panel, err := h.service.Distribution(r.Context(), scope, q.Entity)
	if err != nil {
		h.handleServiceError(w, r, q.Entity, err)
		return
	}
	h.respond(w, r, panel)
}

// GetReport handles GET /api/report?entity=&year=
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	q := api.ReportQuery{
		Entity: r.URL.Query().Get("entity"),
		Year:   r.URL.Query().Get("year"),
	}
	if err := h.validator.ValidateStruct(q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	report, err := h.service.Report(r.Context(), analytics.Selection{Entity: q.Entity, Year: q.YearValue()})
	if err != nil {
		h.handleServiceError(w, r, q.Entity, err)
		return
	}
	h.respond(w, r, report)
}

// ExportEntity handles GET /api/export/{entity} and streams the rows as a CSV attachment
func (h *ReportHandler) ExportEntity(w http.ResponseWriter, r *http.Request) {
	q := api.ExportQuery{Entity: urlParam(r, "entity")}
	if err := h.validator.ValidateStruct(q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	file, err := h.service.Export(r.Context(), q.Entity)
	if err != nil {
		h.handleServiceError(w, r, q.Entity, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", contentDisposition(file.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Data); err != nil {
		h.logger.WarnContext(r.Context(), "export write failed",
			slog.String("entity", q.Entity),
			slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(r.Context(), "export served",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("entity", file.Entity),
		slog.String("file", file.FileName),
		slog.Int("rows", file.Rows))
}

// GetChart handles GET /api/charts/{kind}.png?entity=&scope=
func (h *ReportHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	q := api.ChartQuery{
		Kind:   urlParam(r, "kind"),
		Entity: r.URL.Query().Get("entity"),
		Scope:  r.URL.Query().Get("scope"),
	}
	if err := h.validator.ValidateStruct(q); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	kind, err := charts.ParseKind(q.Kind)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("kind", err.Error()))
		return
	}
	scope, err := analytics.ParseScope(q.Scope)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("scope", err.Error()))
		return
	}

	png, err := h.service.Chart(r.Context(), services.ChartRequest{
		Kind:      kind,
		Selection: analytics.Selection{Entity: q.Entity},
		Scope:     scope,
	})
	if err != nil {
		h.handleServiceError(w, r, q.Entity, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// respond wraps data in the success envelope
func (h *ReportHandler) respond(w http.ResponseWriter, r *http.Request, data interface{}) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   data,
	})
}

// handleServiceError maps service errors onto API errors. Dataset hard stops
// arrive as AppErrors and keep their load diagnostics in the problem body.
func (h *ReportHandler) handleServiceError(w http.ResponseWriter, r *http.Request, entity string, err error) {
	switch {
	case errors.Is(err, services.ErrEntityNotFound):
		h.errorHandler.HandleError(w, r, apierrors.EntityNotFound(entity))
	case errors.Is(err, services.ErrNoChartData):
		h.errorHandler.HandleError(w, r, apierrors.New(http.StatusNotFound, apierrors.CodeInsufficientData, "Nothing to plot for this selection"))
	case errors.Is(err, services.ErrInvalidInput):
		h.errorHandler.HandleError(w, r, apierrors.New(http.StatusBadRequest, apierrors.CodeInvalidParameter, err.Error()))
	case errors.Is(err, services.ErrDatasetNotLoaded):
		h.errorHandler.HandleError(w, r, apierrors.ErrServiceUnavailable)
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}

// urlParam returns the unescaped chi URL parameter
func urlParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// contentDisposition builds an attachment header. Non-ASCII names are encoded
// as filename*=utf-8''... so browsers keep the Chinese company name.
func contentDisposition(name string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return `attachment; filename="export.csv"`
}
