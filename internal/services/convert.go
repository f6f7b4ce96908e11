package services

import (
	"errors"
	"fmt"

	"dtindex/internal/analytics"
	"dtindex/internal/dataset"
	"dtindex/pkg/contracts/domain"
)

// noIndexMessage is shown when keyword discovery finds no index column.
const noIndexMessage = "未找到包含'数字化'、'转型'或'指数'的列，请检查数据"

func indexNotice(err error) domain.Notice {
	if err == nil {
		return domain.Notice{}
	}
	msg := noIndexMessage
	if !errors.Is(err, dataset.ErrNoIndexColumns) {
		msg = fmt.Sprintf("指数列不可用：%v", err)
	}
	return domain.Warning(domain.CodeNoIndexColumns, msg)
}

func entityNotFoundNotice(code string) domain.Notice {
	return domain.Warning(domain.CodeEntityNotFound, fmt.Sprintf("未找到股票代码%s的数据", code))
}

func yearNotFoundNotice(code string, year int) domain.Notice {
	return domain.Warning(domain.CodeYearNotFound, fmt.Sprintf("未找到%s在%d年的数据", code, year))
}

func duplicateYearNotice(code string, year, matches int) domain.Notice {
	return domain.Info(domain.CodeDuplicateYear,
		fmt.Sprintf("%s在%d年有%d条记录，显示第一条", code, year, matches))
}

func emptySubsetNotice() domain.Notice {
	return domain.Warning(domain.CodeEmptySubset, "所选范围内没有有效的指数值")
}

func fallbackNotice(code string) domain.Notice {
	return domain.Info(domain.CodeScopeFallback,
		fmt.Sprintf("未找到股票代码%s的数据，显示全部数据的分布", code))
}

func toStats(s *analytics.Stats) *domain.Stats {
	if s == nil {
		return nil
	}
	return &domain.Stats{
		Count:  s.Count,
		Mean:   analytics.Finite(s.Mean),
		Max:    analytics.Finite(s.Max),
		Min:    analytics.Finite(s.Min),
		Median: analytics.Finite(s.Median),
		Std:    analytics.Finite(s.Std),
		Q25:    analytics.Finite(s.Q25),
		Q75:    analytics.Finite(s.Q75),
	}
}

func toSeries(points []analytics.Point) []domain.SeriesPoint {
	out := make([]domain.SeriesPoint, len(points))
	for i, p := range points {
		out[i] = domain.SeriesPoint{Year: p.Year, Value: analytics.Finite(p.Value)}
	}
	return out
}

func toOverview(s *analytics.Snapshot, o analytics.Overview) *domain.DatasetOverview {
	src := s.Source()
	out := &domain.DatasetOverview{
		Source:       domain.SourceInfo{Path: src.Path, Strategy: src.Strategy, Sheet: src.Sheet},
		Rows:         o.Rows,
		Columns:      o.Columns,
		ColumnNames:  o.ColumnNames,
		MoreColumns:  o.MoreColumns(),
		Header:       o.Header,
		Preview:      o.Preview,
		IndexColumn:  s.IndexColumn(),
		IndexColumns: s.IndexColumns(),
	}
	if out.Preview == nil {
		out.Preview = [][]string{}
	}
	if out.IndexColumns == nil {
		out.IndexColumns = []string{}
	}
	if err := s.IndexErr(); err != nil {
		out.Notices = append(out.Notices, indexNotice(err))
	}
	return out
}

func toSummary(s *analytics.Snapshot, g analytics.GlobalSummary) *domain.GlobalSummary {
	out := &domain.GlobalSummary{
		Rows:        g.Rows,
		Entities:    g.Entities,
		Years:       g.Years,
		YearCount:   len(g.Years),
		IndexColumn: g.IndexColumn,
		Stats:       toStats(g.Stats),
	}
	if out.Years == nil {
		out.Years = []int{}
	}
	if first, last, ok := g.YearRange(); ok {
		out.YearRange = &domain.YearRange{First: first, Last: last}
	}
	if err := s.IndexErr(); err != nil {
		out.Notices = append(out.Notices, indexNotice(err))
	} else if g.Stats == nil {
		out.Notices = append(out.Notices, emptySubsetNotice())
	}
	return out
}

func toEntities(refs []analytics.EntityRef) []domain.EntitySummary {
	out := make([]domain.EntitySummary, len(refs))
	for i, r := range refs {
		out[i] = domain.EntitySummary{Code: r.Code, Name: r.Name, Records: r.Records}
	}
	return out
}

// buildEntityPanel filters the snapshot to one entity and, when year is set,
// picks that year's record. Missing entities and years become notices.
func buildEntityPanel(s *analytics.Snapshot, code string, year *int) *domain.EntityPanel {
	panel := &domain.EntityPanel{
		Code:   code,
		Header: s.Table().Columns(),
		Years:  []int{},
		Series: []domain.SeriesPoint{},
		Rows:   [][]string{},
	}

	view, err := analytics.FilterEntity(s, code)
	if err != nil {
		panel.Notices = append(panel.Notices, entityNotFoundNotice(code))
		return panel
	}

	panel.Found = true
	panel.Name = view.Name
	panel.Records = len(view.Rows)
	if view.Years != nil {
		panel.Years = view.Years
	}
	panel.Series = toSeries(view.Points)
	panel.Stats = toStats(view.Stats)
	for _, i := range view.Rows {
		panel.Rows = append(panel.Rows, s.Table().Row(i))
	}

	if !s.HasIndex() {
		panel.Notices = append(panel.Notices, indexNotice(s.IndexErr()))
	}

	if year == nil {
		return panel
	}
	yv, err := analytics.FilterYear(s, view, *year)
	rec := &domain.YearRecord{
		Year:          *year,
		Value:         analytics.Finite(yv.Value),
		Display:       analytics.FormatValue(yv.Value),
		Matches:       yv.Matches,
		DuplicateYear: yv.DuplicateYear,
	}
	panel.Year = rec
	switch {
	case err != nil:
		panel.Notices = append(panel.Notices, yearNotFoundNotice(code, *year))
	case yv.DuplicateYear:
		panel.Notices = append(panel.Notices, duplicateYearNotice(code, *year, yv.Matches))
	}
	return panel
}

func buildTrendPanel(s *analytics.Snapshot) *domain.TrendPanel {
	panel := &domain.TrendPanel{
		Averages: []domain.YearlyAverage{},
		Fitted:   []domain.SeriesPoint{},
	}
	if !s.HasIndex() {
		panel.Direction = string(analytics.DirectionInsufficient)
		panel.Notices = append(panel.Notices, indexNotice(s.IndexErr()))
		return panel
	}

	trend, err := analytics.FitTrend(analytics.YearlyAverages(s))
	panel.Direction = string(trend.Direction)
	panel.Narrative = trend.Narrative()
	for _, a := range trend.Averages {
		panel.Averages = append(panel.Averages, domain.YearlyAverage{Year: a.Year, Mean: a.Mean, Count: a.Count})
	}
	if err != nil {
		panel.Notices = append(panel.Notices, domain.Warning(domain.CodeInsufficientData, panel.Narrative))
		return panel
	}
	panel.Slope = analytics.Finite(trend.Slope)
	panel.Intercept = analytics.Finite(trend.Intercept)
	panel.Fitted = toSeries(trend.Fitted)
	return panel
}

func buildDistributionPanel(s *analytics.Snapshot, scope analytics.Scope, code string, opts analytics.DistributionOptions) *domain.DistributionPanel {
	panel := &domain.DistributionPanel{
		Scope:   string(scope),
		Bins:    []domain.HistogramBin{},
		Density: []domain.DensityPoint{},
	}
	if !s.HasIndex() {
		panel.Notices = append(panel.Notices, indexNotice(s.IndexErr()))
		return panel
	}

	d, err := analytics.Distribute(s, scope, code, opts)
	panel.Scope = string(d.Scope)
	panel.Entity = d.Entity
	panel.Name = d.Name
	panel.Count = d.Count
	if d.Fallback {
		panel.Notices = append(panel.Notices, fallbackNotice(code))
	}
	if err != nil {
		panel.Notices = append(panel.Notices, emptySubsetNotice())
		return panel
	}

	for _, b := range d.Bins {
		panel.Bins = append(panel.Bins, domain.HistogramBin{Lower: b.Lower, Upper: b.Upper, Count: b.Count})
	}
	panel.Bandwidth = analytics.Finite(d.Bandwidth)
	for _, p := range d.Density {
		panel.Density = append(panel.Density, domain.DensityPoint{X: p.X, Y: p.Y})
	}
	return panel
}
