// Package money renders decimal amounts for API responses.
package money

import "github.com/shopspring/decimal"

// Format renders d with at least two decimals. Values carrying finer
// precision keep it rather than being rounded for display.
func Format(d decimal.Decimal) string {
	if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
		return d.String()
	}
	return d.StringFixed(2)
}

// FormatNull is Format for nullable amounts; an absent value stays nil and
// marshals as JSON null.
func FormatNull(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := Format(d.Decimal)
	return &s
}
