// Package format renders monetary amounts for display.
package format

import (
	"strconv"
	"strings"

	"github.com/moneymapp/moneymapp-calc/pkg/constants"
	"github.com/moneymapp/moneymapp-calc/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// Currency returns a currency string with the default symbol and thousands
// separators (e.g., "-R$1,234.56").
func Currency(amount float64) string {
	return CurrencyWithSymbol(amount, constants.DefaultCurrencySymbol)
}

// CurrencyWithSymbol is Currency with an explicit symbol. An empty symbol
// falls back to the default.
func CurrencyWithSymbol(amount float64, symbol string) string {
	if symbol == "" {
		symbol = constants.DefaultCurrencySymbol
	}
	if !mathutil.IsFinite(amount) {
		return nonFinite(amount)
	}
	cents := RoundCents(amount)
	formatted := formatPositiveCurrency(cents.Abs())
	if cents.IsNegative() {
		return "-" + symbol + formatted
	}
	return symbol + formatted
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	if !mathutil.IsFinite(amount) {
		return nonFinite(amount)
	}
	cents := RoundCents(amount)
	sign := ""
	if cents.IsNegative() {
		sign = "-"
	}
	return sign + formatPositiveCurrency(cents.Abs())
}

// Plain returns the amount rounded to cents without separators, as used in CSV output.
func Plain(amount float64) string {
	if !mathutil.IsFinite(amount) {
		return nonFinite(amount)
	}
	return RoundCents(amount).StringFixed(constants.CurrencyPlaces)
}

// RoundCents rounds half away from zero to whole cents. NaN and infinities,
// which a decimal cannot hold, round to zero.
func RoundCents(amount float64) decimal.Decimal {
	if !mathutil.IsFinite(amount) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(amount).Round(constants.CurrencyPlaces)
}

// Percent renders a fractional rate as a percentage, e.g. 0.0525 -> "5.25%".
func Percent(rate float64) string {
	percent := mathutil.RateToPercent(rate)
	if !mathutil.IsFinite(percent) {
		return nonFinite(percent) + "%"
	}
	return decimal.NewFromFloat(percent).Round(constants.CurrencyPlaces).StringFixed(constants.CurrencyPlaces) + "%"
}

func nonFinite(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func formatPositiveCurrency(value decimal.Decimal) string {
	formatted := value.StringFixed(constants.CurrencyPlaces)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + "." + decPart
}
