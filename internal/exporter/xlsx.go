package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"tribocli/pkg/contracts/domain"
)

// writeXLSXTable writes the table as a single-sheet workbook named after the sheet.
// Timestamps are written as text in the output layout so they read back unchanged.
func (w *TableWriter) writeXLSXTable(out io.Writer, sheet string, table domain.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	header := w.header(table)
	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := sw.SetRow("A1", headerRow); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for r, ts := range table.Index {
		row := make([]interface{}, len(table.Columns)+1)
		row[0] = formatTimestamp(ts, w.opts.TimestampLayout)
		for c, col := range table.Columns {
			if v := col.Values[r]; !v.IsMissing() {
				row[c+1] = v.Float
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	return f.Write(out)
}
