package exporter

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dtindex/internal/dataset"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ExportSuffix ends every export file name.
const ExportSuffix = "_数字化转型数据.csv"

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	bom    bool
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer. With bom set every export starts with
// a UTF-8 byte order mark.
func NewCSVWriter(logger *slog.Logger, bom bool) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{bom: bom, logger: logger.With(slog.String("component", "csv_writer"))}
}

// Write writes the header and every row of table to out and returns the row count.
func (w *CSVWriter) Write(out io.Writer, table *dataset.Table) (int, error) {
	bw := bufio.NewWriter(out)

	// Write BOM if requested (helps Excel recognize UTF-8)
	if w.bom {
		if _, err := bw.Write(utf8BOM); err != nil {
			return 0, fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	if err := table.WriteCSV(bw); err != nil {
		return 0, fmt.Errorf("failed to write rows: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return 0, fmt.Errorf("failed to flush: %w", err)
	}
	return table.Len(), nil
}

// WriteFile writes table to dir/fileName, creating dir when needed. It returns
// the written path and row count.
func (w *CSVWriter) WriteFile(dir, fileName string, table *dataset.Table) (string, int, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create directory: %w", err)
	}

	fullPath := filepath.Join(dir, filepath.Base(fileName))
	file, err := os.Create(fullPath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	rows, err := w.Write(file, table)
	if err != nil {
		return "", 0, err
	}
	if err := file.Close(); err != nil {
		return "", 0, fmt.Errorf("failed to close file: %w", err)
	}

	w.logger.Info("Wrote CSV export",
		slog.String("full_path", fullPath),
		slog.Int("record_count", rows))
	return fullPath, rows, nil
}

// ExportFileName returns "{name}_{code}_数字化转型数据.csv" with characters that are
// unsafe in file names replaced by underscores.
func ExportFileName(name, code string) string {
	name, code = sanitize(name), sanitize(code)
	if name == "" {
		return code + ExportSuffix
	}
	return name + "_" + code + ExportSuffix
}

func sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r < 0x20 || r == 0x7f:
			return '_'
		case strings.ContainsRune(`/\:*?"<>|`, r):
			return '_'
		}
		return r
	}, strings.TrimSpace(s))
	return strings.Trim(s, ". ")
}
