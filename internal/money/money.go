// Package money interprets stored currency values as fixed-point decimals and
// renders them for display.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrMalformedAmount indicates a stored amount that is not a valid currency value.
var ErrMalformedAmount = errors.New("money: malformed amount")

// CentPlaces is the number of fractional digits kept when rounding to cents.
const CentPlaces = 2

// Parse converts a stored amount into a decimal. Empty, non-numeric, NaN and
// infinite values are rejected.
func Parse(raw string) (decimal.Decimal, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return decimal.Zero, fmt.Errorf("%w: empty value", ErrMalformedAmount)
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrMalformedAmount, raw)
	}
	return d, nil
}

// ParseNonNegative is Parse with negative values rejected.
func ParseNonNegative(raw string) (decimal.Decimal, error) {
	d, err := Parse(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative value %q", ErrMalformedAmount, raw)
	}
	return d, nil
}

// RoundCents rounds to the nearest cent, ties away from zero.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(CentPlaces)
}
