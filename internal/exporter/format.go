package exporter

import (
	"fmt"
	"math"
)

// formatFloat formats a float64 value for CSV output with exactly 2
// decimal places, so 13.4 appears as 13.40.
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatOptionalFloat renders NaN as an empty cell. Margin percentage is
// undefined for zero-revenue transactions and stays empty in exports.
func formatOptionalFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return formatFloat(f)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return fmt.Sprintf("%d", i)
}
