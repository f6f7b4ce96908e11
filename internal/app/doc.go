// Package app wires the report server together: configuration, logging,
// OpenTelemetry, the report service and the chi router.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, an optional YAML file and DTI_* variables
//	2. Initialize logging and observability
//	3. Read the dataset once and build the report snapshot
//	4. Set up HTTP handlers and middleware
//	5. Configure the HTTP server
//
// A dataset that cannot be loaded does not stop start-up. The server comes up
// not ready, every report endpoint answers 503 with the load diagnostics and
// the HTML page shows them in place of the report.
//
// # Usage
//
//	application, err := app.NewApplication("")
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// # Graceful Shutdown
//
// Run stops on SIGINT or SIGTERM. In-flight requests are drained within
// Server.ShutdownTimeout and telemetry is flushed before it returns.
//
// # Error Handling
//
// All initialization errors are returned to the caller. The app does not call
// os.Exit() directly, allowing the main function to control the exit process.
package app
