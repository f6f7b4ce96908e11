package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"dtindex/internal/infrastructure"
)

// DatasetReadiness is the part of ReportService the health checks need.
type DatasetReadiness interface {
	Ready() (bool, *LoadFailure)
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	dataset   DatasetReadiness
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string       `json:"status"`
	Message string       `json:"message,omitempty"`
	Uptime  string       `json:"uptime,omitempty"`
	Failure *LoadFailure `json:"failure,omitempty"`
}

// Ready reports whether every dependency is ready.
func (h HealthStatus) Ready() bool { return h.Status == "ready" }

// NewHealthService creates a new health service
func NewHealthService(version, buildTime string, dataset DatasetReadiness, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "health_service")

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		dataset:   dataset,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports "not_ready" until a dataset is served. A hard-stopped
// dataset stays not ready and carries its failure.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	data := hs.checkDatasetHealth()
	status.Services["dataset"] = data
	if data.Status != "ready" {
		status.Status = "not_ready"
		hs.logger.WarnContext(ctx, "ReadinessCheck: dataset not ready",
			slog.String("message", data.Message))
	}

	return status
}

func (hs *HealthService) checkDatasetHealth() ServiceHealth {
	if hs.dataset == nil {
		return ServiceHealth{Status: "not_ready", Message: "dataset service not configured"}
	}
	ok, failure := hs.dataset.Ready()
	switch {
	case ok:
		return ServiceHealth{Status: "ready", Uptime: time.Since(hs.startTime).Round(time.Second).String()}
	case failure != nil:
		return ServiceHealth{Status: "failed", Message: failure.Message, Failure: failure}
	default:
		return ServiceHealth{Status: "loading", Message: "dataset not loaded yet"}
	}
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	return result
}
