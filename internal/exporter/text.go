package exporter

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"dtindex/pkg/contracts/domain"
)

// WriteSummaryText renders the global statistics panel as plain text.
func WriteSummaryText(w io.Writer, s *domain.GlobalSummary) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "统计概览")
	line(bw, "总记录数", formatCount(s.Rows))
	line(bw, "企业数量", formatCount(s.Entities))
	if s.YearRange != nil {
		line(bw, "年份范围", fmt.Sprintf("%d-%d", s.YearRange.First, s.YearRange.Last))
	} else {
		line(bw, "年份范围", notAvailable)
	}
	line(bw, "数据年份数", formatCount(s.YearCount))

	if s.IndexColumn != "" {
		line(bw, "指数列", s.IndexColumn)
	}

	if st := s.Stats; st != nil {
		line(bw, "平均指数", formatNumber(st.Mean, 2))
		line(bw, "最高指数", formatNumber(st.Max, 2))
		line(bw, "最低指数", formatNumber(st.Min, 2))
		line(bw, "中位数指数", formatNumber(st.Median, 2))
		line(bw, "指数标准差", formatNumber(st.Std, 2))

		fmt.Fprintln(bw)
		fmt.Fprintln(bw, "详细统计")
		line(bw, "平均值", formatNumber(st.Mean, 4))
		line(bw, "中位数", formatNumber(st.Median, 4))
		line(bw, "标准差", formatNumber(st.Std, 4))
		line(bw, "最小值", formatNumber(st.Min, 4))
		line(bw, "最大值", formatNumber(st.Max, 4))
		line(bw, "25%分位数", formatNumber(st.Q25, 4))
		line(bw, "75%分位数", formatNumber(st.Q75, 4))
	}

	writeNotices(bw, s.Notices)
	return bw.Flush()
}

// WriteEntityText renders the entity panel: identity, selected year, series
// and the raw rows as a table.
func WriteEntityText(w io.Writer, e *domain.EntityPanel) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "企业信息")
	line(bw, "企业名称", orNA(e.Name))
	line(bw, "股票代码", e.Code)
	line(bw, "记录数", formatCount(e.Records))
	line(bw, "数据年份", joinYears(e.Years))

	if y := e.Year; y != nil {
		fmt.Fprintln(bw)
		fmt.Fprintf(bw, "%d年数字化转型指数\n", y.Year)
		line(bw, "指数", y.Display)
	}

	if len(e.Series) > 0 {
		fmt.Fprintln(bw)
		fmt.Fprintln(bw, "历年指数")
		for _, p := range e.Series {
			line(bw, strconv.Itoa(p.Year), formatNumber(p.Value, 2))
		}
	}

	if len(e.Rows) > 0 {
		fmt.Fprintln(bw)
		fmt.Fprintln(bw, "详细数据")
		table := tablewriter.NewWriter(bw)
		table.SetHeader(e.Header)
		table.SetAutoFormatHeaders(false)
		table.SetAutoWrapText(false)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.AppendBulk(e.Rows)
		table.Render()
	}

	writeNotices(bw, e.Notices)
	return bw.Flush()
}

// WriteTrendText renders yearly averages and the fitted trend.
func WriteTrendText(w io.Writer, t *domain.TrendPanel) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "整体数字化转型趋势")
	for _, a := range t.Averages {
		line(bw, strconv.Itoa(a.Year), fmt.Sprintf("%.2f (%s 条)", a.Mean, formatCount(a.Count)))
	}
	line(bw, "趋势", t.Direction)
	if t.Slope != nil {
		line(bw, "斜率", formatNumber(t.Slope, 3))
	}
	line(bw, "趋势分析", t.Narrative)

	writeNotices(bw, t.Notices)
	return bw.Flush()
}

func line(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %s: %s\n", label, value)
}

func writeNotices(w io.Writer, notices []domain.Notice) {
	if len(notices) == 0 {
		return
	}
	fmt.Fprintln(w)
	for _, n := range notices {
		fmt.Fprintf(w, "[%s] %s: %s\n", n.Level, n.Code, n.Message)
	}
}

func joinYears(years []int) string {
	if len(years) == 0 {
		return notAvailable
	}
	parts := make([]string, len(years))
	for i, y := range years {
		parts[i] = strconv.Itoa(y)
	}
	return strings.Join(parts, ", ")
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
