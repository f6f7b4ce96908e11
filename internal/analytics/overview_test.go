package analytics

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOverview(t *testing.T) {
	snap := sampleSnapshot(t)

	o := BuildOverview(snap, 10, nil)
	assert.Equal(t, 5, o.Rows)
	assert.Equal(t, 5, o.Columns)
	assert.False(t, o.MoreColumns())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, o.PreviewIndex)
	assert.Equal(t, []string{"000001", "平安银行", "2019", "12", "金融"}, o.Preview[0])

	o = BuildOverview(snap, 3, rand.New(rand.NewPCG(42, 0)))
	require.Len(t, o.Preview, 3)
	seen := map[int]bool{}
	for i, row := range o.PreviewIndex {
		assert.False(t, seen[row], "sample is without replacement")
		seen[row] = true
		assert.Equal(t, snap.Table().Row(row), o.Preview[i])
	}

	o = BuildOverview(snap, 0, nil)
	assert.Empty(t, o.Preview)
}

func TestBuildOverviewTruncatesColumns(t *testing.T) {
	header := []string{"股票代码", "企业名称", "年份", "数字化转型指数"}
	row := []string{"000001", "平安银行", "2019", "1"}
	for i := range 8 {
		header = append(header, fmt.Sprintf("列%d", i))
		row = append(row, "x")
	}
	snap := newSnapshot(t, header, [][]string{row})

	o := BuildOverview(snap, 10, nil)
	assert.Equal(t, 12, o.Columns)
	assert.Len(t, o.ColumnNames, OverviewColumns)
	assert.True(t, o.MoreColumns())
	assert.Len(t, o.Header, 12)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "12.35", FormatValue(12.345678))
	assert.Equal(t, "12.3457", FormatStat(12.345678))
	assert.Equal(t, NotAvailable, FormatValue(nan))
	assert.Nil(t, Finite(nan))
	require.NotNil(t, Finite(1.5))
	assert.Equal(t, 1.5, *Finite(1.5))
}
