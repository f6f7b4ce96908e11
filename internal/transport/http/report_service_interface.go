package http

import (
	"context"

	"dtindex/internal/analytics"
	"dtindex/internal/services"
	"dtindex/pkg/contracts/domain"
)

// ReportServiceInterface defines the report operations served over HTTP
type ReportServiceInterface interface {
	Overview(ctx context.Context) (*domain.DatasetOverview, error)
	Summary(ctx context.Context) (*domain.GlobalSummary, error)
	Entities(ctx context.Context) ([]domain.EntitySummary, error)
	Years(ctx context.Context) ([]int, error)
	Entity(ctx context.Context, sel analytics.Selection) (*domain.EntityPanel, error)
	Trend(ctx context.Context) (*domain.TrendPanel, error)
	Distribution(ctx context.Context, scope analytics.Scope, entity string) (*domain.DistributionPanel, error)
	Report(ctx context.Context, sel analytics.Selection) (*domain.Report, error)
	Export(ctx context.Context, entity string) (*services.ExportFile, error)
	Chart(ctx context.Context, req services.ChartRequest) ([]byte, error)
}

var _ ReportServiceInterface = (*services.ReportService)(nil)
