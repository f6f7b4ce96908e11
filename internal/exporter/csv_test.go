package exporter

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dtindex/internal/dataset"
	"dtindex/internal/shared/testutil"
)

func sampleTable(t *testing.T) *dataset.Table {
	t.Helper()
	table, err := dataset.NewTable(testutil.SampleHeader, testutil.SampleRows())
	require.NoError(t, err)
	return table
}

func TestCSVWriterWrite(t *testing.T) {
	tests := []struct {
		name    string
		bom     bool
		wantBOM bool
	}{
		{name: "with BOM", bom: true, wantBOM: true},
		{name: "without BOM", bom: false, wantBOM: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			var buf bytes.Buffer

			rows, err := NewCSVWriter(logger, tt.bom).Write(&buf, sampleTable(t))
			require.NoError(t, err)
			assert.Equal(t, 5, rows)
			assert.Equal(t, tt.wantBOM, bytes.HasPrefix(buf.Bytes(), utf8BOM))
			assert.Contains(t, buf.String(), "股票代码,企业名称,年份,数字化转型指数,行业\n")
			assert.Contains(t, buf.String(), "000001,平安银行,2019,12,金融\n")
		})
	}
}

func TestCSVWriterRoundTrip(t *testing.T) {
	source := sampleTable(t)
	codes, err := source.Strings("股票代码")
	require.NoError(t, err)

	var rows []int
	for i, code := range codes {
		if code == "000001" {
			rows = append(rows, i)
		}
	}
	subset := source.Subset(rows)

	logger, handler := testutil.NewTestLogger(t)
	dir := filepath.Join(t.TempDir(), "exports")
	path, n, err := NewCSVWriter(logger, true).WriteFile(dir, ExportFileName("平安银行", "000001"), subset)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "平安银行_000001_数字化转型数据.csv", filepath.Base(path))
	assert.True(t, handler.ContainsMessage("Wrote CSV export"))

	raw, err := dataset.DelimitedStrategy{}.Parse(context.Background(), path)
	require.NoError(t, err)
	back, err := dataset.NewTable(raw.Header, raw.Rows)
	require.NoError(t, err)

	assert.Equal(t, subset.Columns(), back.Columns())
	assert.Equal(t, subset.Len(), back.Len())
	assert.Equal(t, subset.Records(), back.Records())
}

func TestCSVWriterEmptyTable(t *testing.T) {
	var buf bytes.Buffer
	rows, err := NewCSVWriter(nil, false).Write(&buf, sampleTable(t).Subset(nil))
	require.NoError(t, err)
	assert.Zero(t, rows)
	assert.Equal(t, "股票代码,企业名称,年份,数字化转型指数,行业\n", buf.String())
}

func TestCSVWriterWriteFileErrors(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, _, err := NewCSVWriter(nil, true).WriteFile(filepath.Join(blocker, "sub"), "a.csv", sampleTable(t))
	assert.ErrorContains(t, err, "failed to create directory")
}

func TestExportFileName(t *testing.T) {
	tests := []struct {
		name     string
		company  string
		code     string
		expected string
	}{
		{"plain", "平安银行", "000001", "平安银行_000001_数字化转型数据.csv"},
		{"path separators", "A/B\\C", "000002", "A_B_C_000002_数字化转型数据.csv"},
		{"reserved characters", `x:*?"<>|y`, "3", "x_______y_3_数字化转型数据.csv"},
		{"traversal", "..", "000004", "000004_数字化转型数据.csv"},
		{"surrounding space", "  万科A  ", " 000002 ", "万科A_000002_数字化转型数据.csv"},
		{"no name", "", "600000", "600000_数字化转型数据.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExportFileName(tt.company, tt.code))
		})
	}
}
