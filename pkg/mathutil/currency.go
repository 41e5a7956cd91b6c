// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/moneymapp/moneymapp-calc/pkg/constants"
)

// IsZero checks if a value is effectively zero (within tolerance)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// WithinRelativeTolerance checks if two values agree to a tolerance scaled by
// the larger magnitude. Falls back to an absolute check near zero.
func WithinRelativeTolerance(val1, val2, tolerance float64) bool {
	scale := math.Max(math.Abs(val1), math.Abs(val2))
	if scale < 1 {
		scale = 1
	}
	return math.Abs(val1-val2) <= tolerance*scale
}

// IsFinite reports whether val is neither NaN nor infinite.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}

// PercentToRate converts a percentage (2 meaning 2%) into a fractional rate.
func PercentToRate(percent float64) float64 {
	return percent / constants.PercentageMultiplier
}

// RateToPercent converts a fractional rate into a percentage.
func RateToPercent(rate float64) float64 {
	return rate * constants.PercentageMultiplier
}

// AnnualToMonthlyRate returns the monthly rate equivalent to an annual rate
// under monthly compounding.
func AnnualToMonthlyRate(annualRate float64) float64 {
	return math.Pow(1+annualRate, 1.0/constants.MonthsPerYear) - 1
}
