package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"dtindex/internal/config"
	"dtindex/internal/dataset"
	apierrors "dtindex/internal/errors"
	"dtindex/internal/infrastructure"
	customMiddleware "dtindex/internal/middleware"
	"dtindex/internal/services"
	handlers "dtindex/internal/transport/http"
	"dtindex/pkg/contracts"
)

const AppName = "Digital Transformation Index Report"

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.ReportMetrics
	Services      *ServiceContainer
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Reports *services.ReportService
	Health  *services.HealthService
}

// Option customises an Application built by New.
type Option func(*options)

type options struct {
	loader services.DatasetLoader
}

// WithLoader replaces the dataset loader built from the configuration.
func WithLoader(loader services.DatasetLoader) Option {
	return func(o *options) { o.loader = loader }
}

// NewApplication loads the configuration file, initialises logging and
// OpenTelemetry and builds the application.
func NewApplication(configFile string) (*Application, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, apierrors.NewConfigError("failed to load configuration", err).
			WithContext("file", configFile)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("dataset", cfg.Dataset.Path))

	providers, err := infrastructure.InitializeOTel(cfg.OTel, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	return New(cfg, logger, providers)
}

// New wires services, routes and the HTTP server from an already loaded
// configuration. The dataset is read once here; a load failure is logged and
// served as a 503 by every report endpoint instead of stopping start-up.
func New(cfg *config.Config, logger *slog.Logger, providers *infrastructure.OTelProviders, opts ...Option) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	if providers == nil {
		providers = &infrastructure.OTelProviders{Logger: logger}
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	metrics := infrastructure.NoopReportMetrics()
	if providers.Meter != nil {
		m, err := infrastructure.CreateReportMetrics(providers.Meter)
		if err != nil {
			return nil, fmt.Errorf("failed to create report metrics: %w", err)
		}
		metrics = m
	}

	a := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
		Metrics:       metrics,
	}

	if o.loader == nil {
		o.loader = dataset.NewLoader(logger, cfg.Dataset.RequiredColumns())
	}
	a.initializeServices(o.loader)
	a.setupRouter()
	a.createServer()

	return a, nil
}

// initializeServices builds the report and health services and loads the dataset
func (a *Application) initializeServices(loader services.DatasetLoader) {
	reports := services.NewReportService(a.Config.Dataset, a.Config.Charts, loader, a.Logger,
		services.WithMetrics(a.Metrics),
		services.WithTracer(a.OTelProviders.Tracer))

	ctx := context.Background()
	if err := reports.Load(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Dataset unavailable, serving diagnostics",
			slog.String("path", a.Config.Dataset.Path),
			slog.String("error", err.Error()))
	}

	a.Services = &ServiceContainer{
		Reports: reports,
		Health:  services.NewHealthService(contracts.Version, contracts.BuildTime, reports, a.Logger),
	}
}

// setupRouter configures middleware and routes.
// Order: RequestID → RealIP → OTel → Logger → Recoverer → Timeout.
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	errorHandler := apierrors.NewErrorHandler(a.Logger, a.isDevelopmentMode())

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics, a.Logger).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	if a.Config.Server.RequestTimeout > 0 {
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
	}
	r.Use(customMiddleware.StripSlashes)
	r.Use(customMiddleware.SecurityHeaders)
	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
			AllowedOrigins: a.Config.Security.AllowedOrigins,
			Logger:         a.Logger,
		}))
	}
	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}
	r.Use(customMiddleware.Compress(5, "text/html", "text/csv", "application/json", "application/problem+json"))

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	validator := customMiddleware.NewValidationMiddleware(a.Logger)
	reportHandler := handlers.NewReportHandler(a.Services.Reports, validator, a.Logger, errorHandler)
	healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
	pageHandler := handlers.NewPageHandler(a.Services.Reports, validator, a.Logger, errorHandler)

	r.Get("/", pageHandler.ServeReport)
	r.Mount("/api/health", healthHandler.Routes())
	r.Get("/api/version", healthHandler.Version)
	r.Mount("/api", reportHandler.Routes())

	r.Mount("/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP).Routes())

	a.Router = r
}

// isDevelopmentMode includes stack traces in 5xx problems outside production
func (a *Application) isDevelopmentMode() bool {
	switch a.Config.OTel.Environment {
	case "development", "dev", "local":
		return true
	}
	return false
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(a.Logger.Handler(), slog.LevelWarn),
	}
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down gracefully
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	ok, failure := a.Services.Reports.Ready()
	attrs := []any{
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("address", ln.Addr().String()),
		slog.Bool("dataset_ready", ok),
	}
	if failure != nil {
		attrs = append(attrs, slog.String("dataset_failure", failure.Message))
	}
	a.Logger.InfoContext(ctx, "Starting application", attrs...)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.Background())
	})
	return g.Wait()
}

// Stop gracefully stops the HTTP server and flushes telemetry
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}
	if err := infrastructure.CloseLogFile(); err != nil {
		a.Logger.ErrorContext(ctx, "Error closing log file", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run listens on the configured port until SIGINT or SIGTERM
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.Server.Addr, err)
	}

	start := time.Now()
	err = a.Serve(ctx, ln)
	a.Logger.Info("Application stopped", slog.Duration("uptime", time.Since(start).Round(time.Second)))
	return err
}
