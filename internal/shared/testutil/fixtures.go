package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// SampleHeader is the schema of the shared fixture dataset.
var SampleHeader = []string{"股票代码", "企业名称", "年份", "数字化转型指数", "行业"}

// SampleRows holds two entities: 000001 reports 2018-2020 with a rising index,
// 600000 reports 2019-2020. Rows are deliberately not in year order.
func SampleRows() [][]string {
	return [][]string{
		{"000001", "平安银行", "2019", "12", "金融"},
		{"600000", "浦发银行", "2019", "20", "金融"},
		{"000001", "平安银行", "2018", "10", "金融"},
		{"600000", "浦发银行", "2020", "22", "金融"},
		{"000001", "平安银行", "2020", "14", "金融"},
	}
}

// WriteXLSX writes header and rows to the first sheet of a new workbook under dir.
func WriteXLSX(t *testing.T, dir, name string, header []string, rows [][]string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	writeRow := func(rowIdx int, values []string) {
		for colIdx, v := range values {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				t.Fatalf("set cell %s: %v", cell, err)
			}
		}
	}

	writeRow(1, header)
	for i, row := range rows {
		writeRow(i+2, row)
	}

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

// WriteCSV writes header and rows as comma-separated UTF-8 text under dir.
func WriteCSV(t *testing.T, dir, name string, header []string, rows [][]string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create csv: %v", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		t.Fatalf("write header: %v", err)
	}
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("write rows: %v", err)
	}
	return path
}
