package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MetricsHandler exposes the Prometheus scrape endpoint
type MetricsHandler struct {
	exporter http.Handler
}

// NewMetricsHandler wraps the Prometheus exporter handler. A nil exporter
// answers 404 so the route can stay mounted when metrics are disabled.
func NewMetricsHandler(exporter http.Handler) *MetricsHandler {
	return &MetricsHandler{exporter: exporter}
}

// Routes sets up the metrics routes
func (h *MetricsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetMetrics)
	return r
}

// GetMetrics handles GET /metrics
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		http.NotFound(w, r)
		return
	}
	h.exporter.ServeHTTP(w, r)
}
