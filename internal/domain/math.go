package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Coins are displayed with at most one decimal place in game UIs.
const coinPrecision = 1

// RoundCoins rounds a coin amount to display precision. Intermediate
// arithmetic stays in float64; rounding happens only at the edge.
func RoundCoins(amount float64) float64 {
	f, _ := decimal.NewFromFloat(amount).Round(coinPrecision).Float64()
	return f
}

// FormatCoins renders a coin amount with display precision, stripping
// trailing zeros ("1234.5", "1234").
func FormatCoins(amount float64) string {
	s := decimal.NewFromFloat(amount).Round(coinPrecision).StringFixed(coinPrecision)
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

// SafeDiv divides a by b, returning 0 for a zero divisor. ROI and
// per-hour figures are defined as 0 when their denominator is 0.
func SafeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
