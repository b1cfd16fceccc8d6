package exporter

import (
	"math"
	"strconv"
	"time"

	"tribocli/pkg/contracts/domain"
)

// formatValue formats a cell with '.' as decimal separator; missing values are empty.
// A precision of -1 selects the shortest representation that reads back exactly.
func formatValue(v domain.Value, precision int) string {
	if v.IsMissing() {
		return ""
	}
	return formatFloat(v.Float, precision)
}

// formatFloat formats a float64 value for CSV output; NaN is written as an empty cell
func formatFloat(f float64, precision int) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', precision, 64)
}

// formatTimestamp formats an index timestamp
func formatTimestamp(ts time.Time, layout string) string {
	return ts.Format(layout)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}
