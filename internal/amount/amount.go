package amount

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// DefaultDecimals is used when the betting token does not report decimals.
const DefaultDecimals uint8 = 18

// PriceScale is the fixed-point scale of on-chain option prices.
const PriceScale = 18

// ToDecimal converts base units into token units.
func ToDecimal(value *big.Int, decimals uint8) decimal.Decimal {
	if value == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(value, -int32(decimals))
}

// Format renders base units as a token-unit decimal string without trailing zeros.
func Format(value *big.Int, decimals uint8) string {
	return ToDecimal(value, decimals).String()
}

// ToFloat converts base units into a float in token units.
func ToFloat(value *big.Int, decimals uint8) float64 {
	return ToDecimal(value, decimals).InexactFloat64()
}

// Probability converts a 1e18-scaled price into a float rounded to 3 places.
func Probability(price *big.Int) float64 {
	return ToDecimal(price, PriceScale).Round(3).InexactFloat64()
}

// Round rounds half away from zero to places decimals.
func Round(value float64, places int32) float64 {
	return decimal.NewFromFloat(value).Round(places).InexactFloat64()
}
