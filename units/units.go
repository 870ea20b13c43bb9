package units

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// MaxLockDuration is the longest possible voting escrow lock (4 years).
const MaxLockDuration = 4 * 365 * 24 * time.Hour

// HealthFactorInfinite is the saturated health factor reported for vault
// positions with zero debt.
var HealthFactorInfinite = decimal.NewFromInt(999999)

// FromWei converts an 18-decimals on-chain integer amount to a decimal token
// amount. The conversion is exact.
func FromWei(x *big.Int) decimal.Decimal {
	if x == nil {
		return decimal.Decimal{}
	}
	return decimal.NewFromBigInt(x, -18)
}

// RoundUSD rounds a USD value to cents, half away from zero.
func RoundUSD(x decimal.Decimal) decimal.Decimal {
	return x.Round(2)
}

// RoundAmount rounds a token amount, share or rate to 8 decimal places.
func RoundAmount(x decimal.Decimal) decimal.Decimal {
	return x.Round(8)
}
