package http

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"dtindex/internal/analytics"
	apierrors "dtindex/internal/errors"
	"dtindex/internal/middleware"
	"dtindex/internal/services"
	api "dtindex/pkg/contracts/api/v1"
	"dtindex/pkg/contracts/domain"
)

//go:embed templates/report.html
var templateFS embed.FS

var pageFuncs = template.FuncMap{
	"value": func(v *float64) string {
		if v == nil {
			return analytics.NotAvailable
		}
		return analytics.FormatValue(*v)
	},
	"stat": func(v *float64) string {
		if v == nil {
			return analytics.NotAvailable
		}
		return analytics.FormatStat(*v)
	},
	"join": strings.Join,
	"joinYears": func(years []int) string {
		parts := make([]string, len(years))
		for i, y := range years {
			parts[i] = strconv.Itoa(y)
		}
		return strings.Join(parts, ", ")
	},
	"yearSelected": func(year int, selected *int) bool {
		return selected != nil && *selected == year
	},
	"chartURL":             chartURL,
	"distributionChartURL": distributionChartURL,
}

var reportPage = template.Must(template.New("report.html").Funcs(pageFuncs).ParseFS(templateFS, "templates/report.html"))

// pageData is the model of the report page
type pageData struct {
	Report  *domain.Report
	Failure *services.LoadFailure
}

// PageHandler renders the single-page HTML report
type PageHandler struct {
	service      ReportServiceInterface
	validator    *middleware.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewPageHandler creates a new page handler
func NewPageHandler(service ReportServiceInterface, validator *middleware.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *PageHandler {
	if validator == nil {
		validator = middleware.NewValidationMiddleware(logger)
	}
	return &PageHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "page_handler")),
		errorHandler: errorHandler,
	}
}

// ServeReport handles GET /?entity=&year=. A dataset that failed to load is
// rendered as a 503 page listing the load diagnostics.
func (h *PageHandler) ServeReport(w http.ResponseWriter, r *http.Request) {
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
		var failure *services.LoadFailure
		if errors.As(err, &failure) {
			h.logger.WarnContext(r.Context(), "serving load failure page",
				slog.String("message", failure.Message))
			h.render(w, r, http.StatusServiceUnavailable, pageData{Failure: failure})
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, pageData{Report: report})
}

// render executes the page into a buffer so template errors never leave a half-written response
func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	var buf bytes.Buffer
	if err := reportPage.Execute(&buf, data); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render report page",
			slog.String("error", err.Error()))
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// chartURL links a chart image of the API
func chartURL(kind, entity string) string {
	u := "/api/charts/" + kind + ".png"
	if entity != "" {
		u += "?" + url.Values{"entity": {entity}}.Encode()
	}
	return u
}

// distributionChartURL links a histogram or density image drawn over the same rows as panel
func distributionChartURL(kind string, panel *domain.DistributionPanel) string {
	if panel == nil || panel.Scope != string(analytics.ScopeEntity) || panel.Entity == "" {
		return chartURL(kind, "")
	}
	return "/api/charts/" + kind + ".png?" + url.Values{
		"entity": {panel.Entity},
		"scope":  {string(analytics.ScopeEntity)},
	}.Encode()
}
