// Package exporter writes the run artifacts.
//
// TableWriter writes one aggregate table per resolution as CSV or as an xlsx
// workbook, plus the optional summary statistics and experiment metadata.
// Every artifact is written to a temporary file in the output directory and
// renamed into place, so readers never observe a partially written file.
//
// Rows are written in aggregate order. An aggregate built from a single column
// set keeps the concatenation order of its experiments, so its timestamps can
// repeat or go backwards; read such artifacts with
// dataprocessing.ParserOptions.AllowUnordered.
//
// Example usage:
//
//	writer := exporter.NewTableWriter(paths.OutputDir, exporter.WriteOptionsFromConfig(cfg), logger)
//	path, err := writer.WriteTable(domain.ResolutionMinutes, result.Table)
package exporter
