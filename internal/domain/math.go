package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const stellarPrecision = 7

// StroopsPerUnit is the number of stroops in one face-value unit of any Stellar asset.
var StroopsPerUnit = decimal.New(1, stellarPrecision)

// amountPattern is the plain decimal notation Horizon uses for amounts.
var amountPattern = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)

// ParseAmount parses a Horizon amount string. Unlike SafeParse it never
// substitutes zero: empty input, or anything other than plain decimal
// notation (exponents, a leading '+'), is an ErrMalformedInput.
func ParseAmount(value string) (decimal.Decimal, error) {
	if strings.TrimSpace(value) == "" {
		return decimal.Zero, fmt.Errorf("%w: empty amount", ErrMalformedInput)
	}
	if !amountPattern.MatchString(value) {
		return decimal.Zero, fmt.Errorf("%w: amount %q is not a plain decimal", ErrMalformedInput, value)
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount %q: %v", ErrMalformedInput, value, err)
	}
	return d, nil
}

// SafeParse parses a string into a decimal, returning zero for invalid or empty input.
// Only for informational values where a bad input must not fail the caller.
func SafeParse(value string) decimal.Decimal {
	if value == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ToStroops rescales a face-value amount into stroop units.
func ToStroops(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(StroopsPerUnit)
}

// FromStroops rescales a stroop amount back to face value.
func FromStroops(stroops decimal.Decimal) decimal.Decimal {
	return stroops.Div(StroopsPerUnit)
}

// FormatAmount rounds to 7 decimal places and strips trailing zeros.
func FormatAmount(d decimal.Decimal) string {
	rounded := d.Round(stellarPrecision)
	s := rounded.StringFixed(stellarPrecision)
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

// DisplayAmount renders an amount for presentation. Stroop-denominated assets
// are shown as an integer count of stroops.
func DisplayAmount(d decimal.Decimal, asStroops bool) string {
	if asStroops {
		return ToStroops(d).Round(0).String()
	}
	return FormatAmount(d)
}
