package services

import (
	"context"
	"log/slog"

	"dtindex/internal/infrastructure"
)

// logReportError logs a failed report operation. Without a logger the global
// one is used, tagged with the trace id of ctx.
func logReportError(ctx context.Context, logger *slog.Logger, action, message string, attrs ...slog.Attr) {
	if logger == nil {
		logger = infrastructure.LoggerWithContext(ctx)
	}

	allAttrs := append([]slog.Attr{slog.String("action", action)}, attrs...)
	logger.LogAttrs(ctx, slog.LevelError, message, allAttrs...)
}
