// Package money holds the pure conversion and commission arithmetic used
// by the sync and invoicing pipeline. All amounts are integer USD minor
// units (cents); all rounding is half away from zero.
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrInvalidPrice = errors.New("invalid_price")

// Zero-decimal currencies per ISO 4217. Everything else uses two decimals.
var zeroDecimalCurrencies = map[string]struct{}{
	"BIF": {}, "CLP": {}, "DJF": {}, "GNF": {}, "JPY": {}, "KMF": {},
	"KRW": {}, "MGA": {}, "PYG": {}, "RWF": {}, "UGX": {}, "VND": {},
	"VUV": {}, "XAF": {}, "XOF": {}, "XPF": {},
}

// Exponent returns the number of minor-unit decimal places for a currency.
func Exponent(currency string) int {
	if _, ok := zeroDecimalCurrencies[strings.ToUpper(strings.TrimSpace(currency))]; ok {
		return 0
	}
	return 2
}

// ParseMinorUnits parses a decimal price string into an integer count of
// the currency's minor units. Sub-minor digits round half away from zero.
// The parse is string-based so it never inherits float representation error.
func ParseMinorUnits(price string, currency string) (int64, error) {
	raw := strings.TrimSpace(price)
	if raw == "" {
		return 0, ErrInvalidPrice
	}

	negative := false
	switch raw[0] {
	case '-':
		negative = true
		raw = raw[1:]
	case '+':
		raw = raw[1:]
	}
	if raw == "" {
		return 0, ErrInvalidPrice
	}

	intPart := raw
	fracPart := ""
	if idx := strings.IndexByte(raw, '.'); idx >= 0 {
		intPart = raw[:idx]
		fracPart = raw[idx+1:]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, price)
		}
	}

	exp := Exponent(currency)
	for len(fracPart) < exp {
		fracPart += "0"
	}

	var value int64
	for _, r := range intPart + fracPart[:exp] {
		value = value*10 + int64(r-'0')
	}
	// Round on the first dropped digit, half away from zero.
	if len(fracPart) > exp && fracPart[exp] >= '5' {
		value++
	}

	if negative {
		value = -value
	}
	return value, nil
}

// ConvertMinorUnits applies a spot exchange rate to an amount of minor
// units and rounds half away from zero. A rate of 1 is the identity.
func ConvertMinorUnits(amountMinor int64, rate float64) int64 {
	return int64(math.Round(float64(amountMinor) * rate))
}

// ToUSDMinorUnits normalizes a price string in an arbitrary currency to
// USD minor units using the supplied spot rate. USD passes through with a
// rate of 1.
func ToUSDMinorUnits(price string, currency string, rate float64) (int64, error) {
	amount, err := ParseMinorUnits(price, currency)
	if err != nil {
		return 0, err
	}
	if strings.EqualFold(strings.TrimSpace(currency), "USD") {
		return amount, nil
	}
	return ConvertMinorUnits(amount, rate), nil
}

// Commission computes the platform's cut of a protection sale:
// round(amount * feePercent / 100), half away from zero.
func Commission(amountMinor int64, feePercent float64) int64 {
	return int64(math.Round(float64(amountMinor) * feePercent / 100))
}
