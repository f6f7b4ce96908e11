package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterEntity(t *testing.T) {
	snap := sampleSnapshot(t)

	view, err := FilterEntity(snap, "000001")
	require.NoError(t, err)
	assert.True(t, view.Found())
	assert.Equal(t, "平安银行", view.Name)
	assert.Equal(t, []int{2, 0, 4}, view.Rows)
	assert.Equal(t, []int{0, 2, 4}, view.FileRows)
	assert.Equal(t, []int{2018, 2019, 2020}, view.Years)
	assert.Equal(t, []Point{{2018, 10}, {2019, 12}, {2020, 14}}, view.Points)
	require.NotNil(t, view.Stats)
	assert.Equal(t, 12.0, view.Stats.Mean)

	yv, err := FilterYear(snap, view, 2019)
	require.NoError(t, err)
	assert.Equal(t, 0, yv.Row)
	assert.Equal(t, 1, yv.Matches)
	assert.Equal(t, 12.0, yv.Value)
	assert.False(t, yv.DuplicateYear)
	assert.Equal(t, "12.00", FormatValue(yv.Value))
}

func TestFilterEntityNotFound(t *testing.T) {
	snap := sampleSnapshot(t)

	view, err := FilterEntity(snap, "999999")
	assert.ErrorIs(t, err, ErrEntityNotFound)
	require.NotNil(t, view)
	assert.False(t, view.Found())
	assert.Empty(t, view.Rows)
	assert.Nil(t, view.Stats)

	// other panels still compute
	assert.Equal(t, 5, Summarize(snap).Rows)
	trend, err := FitTrend(YearlyAverages(snap))
	require.NoError(t, err)
	assert.Equal(t, DirectionRising, trend.Direction)
}

func TestFilterYear(t *testing.T) {
	header := []string{"股票代码", "企业名称", "年份", "数字化转型指数"}
	snap := newSnapshot(t, header, [][]string{
		{"000001", "平安银行", "2019", "12"},
		{"000001", "平安银行", "2020", ""},
		{"000001", "平安银行", "2019", "99"},
		{"000001", "平安银行", "未知", "5"},
	})

	view, err := FilterEntity(snap, "000001")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 1, 3}, view.Rows, "rows without a year sort last")
	assert.Equal(t, []int{2019, 2020}, view.Years)

	tests := []struct {
		name      string
		year      int
		wantErr   error
		wantRow   int
		wantValue float64
		wantDup   bool
	}{
		{name: "duplicate year takes first in file order", year: 2019, wantRow: 0, wantValue: 12, wantDup: true},
		{name: "blank index value", year: 2020, wantRow: 1, wantValue: math.NaN()},
		{name: "missing year", year: 2018, wantErr: ErrYearNotFound, wantRow: -1, wantValue: math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			yv, err := FilterYear(snap, view, tt.year)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantRow, yv.Row)
			assert.Equal(t, tt.wantDup, yv.DuplicateYear)
			if math.IsNaN(tt.wantValue) {
				assert.True(t, math.IsNaN(yv.Value))
				assert.Equal(t, NotAvailable, FormatValue(yv.Value))
			} else {
				assert.Equal(t, tt.wantValue, yv.Value)
			}
		})
	}
}
