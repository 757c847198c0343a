package model

import "github.com/shopspring/decimal"

// Money is an amount in major currency units.
type Money = decimal.Decimal

// MinorUnits converts a major-unit amount to the smallest currency unit
// (cents), rounding half away from zero.
func MinorUnits(m Money) int64 {
	return m.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// Column bounds for DECIMAL(12,2) amounts and DECIMAL(8,2) hour counts.
var (
	MaxAmount = decimal.RequireFromString("9999999999.99")
	MaxHours  = decimal.RequireFromString("999999.99")
)

// HasCents reports whether m carries at most two fractional digits.
func HasCents(m Money) bool {
	return m.Equal(m.Round(2))
}
