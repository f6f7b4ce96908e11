// Package exporter writes report data out of the service.
//
// CSVWriter exports the rows of one entity as comma-separated text, optionally
// prefixed with a UTF-8 BOM so Excel detects the encoding. ExportFileName builds
// the download name shown to users.
//
// The text writers (WriteSummaryText, WriteEntityText, WriteTrendText) render
// report panels as plain text for the command line.
//
// Example usage:
//
//	w := exporter.NewCSVWriter(logger, true)
//	path, rows, err := w.WriteFile("exports", exporter.ExportFileName(name, code), table)
package exporter
