// Package services implements the business logic layer of the digital
// transformation index report. It sits between the HTTP handlers and CLI
// commands on one side and the dataset and analytics packages on the other.
//
// # Report Service
//
// ReportService loads the dataset once with Load and keeps an immutable
// analytics.Snapshot. Every query runs against that snapshot:
//
//	svc := services.NewReportService(cfg.Dataset, cfg.Charts, loader, logger,
//	    services.WithMetrics(metrics))
//	if err := svc.Load(ctx); err != nil {
//	    // the failure is kept; queries return it as a 503 problem
//	}
//	report, err := svc.Report(ctx, analytics.Selection{Entity: "600000"})
//
// There are two kinds of failure. A hard stop (missing file, unreadable file,
// missing required columns) is a *LoadFailure and every query returns it.
// Soft stops (no index column, unknown entity, missing year, too few years)
// never fail a query; they are attached to the affected panel as notices.
//
// # Health Service
//
// HealthService backs the liveness, readiness and version endpoints.
// Readiness follows the dataset state.
package services
