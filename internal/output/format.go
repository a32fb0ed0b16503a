package output

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// FormatNumber renders an integer with thousands separators.
func FormatNumber(n int64) string {
	return humanize.Comma(n)
}

// FormatCost renders a dollar amount with two decimals.
func FormatCost(cost float64) string {
	return fmt.Sprintf("$%.2f", cost)
}

// FormatPercentage renders a signed percentage with one decimal.
func FormatPercentage(pct float64) string {
	sign := ""
	if pct >= 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.1f%%", sign, pct)
}

// FormatTime renders a millisecond duration in the largest sensible unit.
func FormatTime(ms int64) string {
	switch {
	case ms < 1000:
		return fmt.Sprintf("%dms", ms)
	case ms < 60_000:
		return fmt.Sprintf("%.0fs", math.Round(float64(ms)/1000))
	case ms < 3_600_000:
		return fmt.Sprintf("%.0fm", math.Round(float64(ms)/60_000))
	default:
		return fmt.Sprintf("%.0fh", math.Round(float64(ms)/3_600_000))
	}
}
