// Package http implements the HTTP handlers of the digital transformation
// index report. Handlers stay thin: they bind and validate query parameters,
// call the report service and format its panels.
//
// # Routes
//
// ReportHandler serves the JSON API under /api:
//
//	GET /api/dataset              data-structure overview with a row preview
//	GET /api/summary              dataset-wide statistics
//	GET /api/entities             stock codes in file order
//	GET /api/entities/{entity}    one entity, optionally ?year=
//	GET /api/years                distinct years
//	GET /api/trend                yearly averages and fitted line
//	GET /api/distribution         histogram and density, ?scope=all|entity&entity=
//	GET /api/report               every panel for ?entity=&year=
//	GET /api/export/{entity}      CSV attachment
//	GET /api/charts/{kind}.png    PNG chart
//
// HealthHandler adds /api/health, /api/health/ready, /api/health/live and
// /api/version. PageHandler renders the HTML report at GET /.
//
// # Errors
//
// Failures are written as RFC 7807 problem documents by the shared
// errors.ErrorHandler. Soft conditions such as an unknown year are not
// errors; they travel as notices inside the panel that hit them.
package http
