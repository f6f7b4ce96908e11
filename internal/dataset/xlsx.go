package dataset

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXStrategy reads the first worksheet and treats its first row as the header.
type XLSXStrategy struct{}

func (XLSXStrategy) Name() string { return "xlsx" }

func (XLSXStrategy) Parse(_ context.Context, path string) (*RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 || isBlankRow(rows[0]) {
		return nil, fmt.Errorf("sheet %q has no header row", sheets[0])
	}

	return &RawTable{Header: rows[0], Rows: rows[1:], Sheet: sheets[0]}, nil
}

// XLSXScanStrategy searches every sheet for a row holding all Required headers
// within the first MaxHeaderRow rows. Rows above the header (titles, notes) are skipped.
type XLSXScanStrategy struct {
	Required     []string
	MaxHeaderRow int
}

func (XLSXScanStrategy) Name() string { return "xlsx-scan" }

func (s XLSXScanStrategy) Parse(_ context.Context, path string) (*RawTable, error) {
	if len(s.Required) == 0 {
		return nil, errors.New("no required headers to scan for")
	}
	limit := s.MaxHeaderRow
	if limit <= 0 {
		limit = 20
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			continue
		}
		for i := 0; i < len(rows) && i < limit; i++ {
			if len(missingColumns(rows[i], s.Required)) == 0 {
				return &RawTable{Header: rows[i], Rows: rows[i+1:], Sheet: sheet}, nil
			}
		}
	}

	return nil, fmt.Errorf("no sheet has a header row containing %s", strings.Join(s.Required, ", "))
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
