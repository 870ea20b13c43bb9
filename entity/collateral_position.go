package entity

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// CollateralPosition mirrors one user×asset collateral row in the USDP vault.
// Debt is global per user, so borrow/repay events touch every asset row of
// that user. HealthFactor is saturated to HealthFactorInfinite when debt is 0.
type CollateralPosition struct {
	UserAddress      common.Address  `db:"user_address"`
	AssetAddress     common.Address  `db:"asset_address"`
	CollateralAmount decimal.Decimal `db:"collateral_amount"`
	CollateralUSD    decimal.Decimal `db:"collateral_usd"`
	DebtUSD          decimal.Decimal `db:"debt_usd"`
	LTV              decimal.Decimal `db:"ltv"`
	HealthFactor     decimal.Decimal `db:"health_factor"`
	LiquidationPrice decimal.Decimal `db:"liquidation_price"`
	UpdatedAt        *time.Time      `db:"updated_at"`
}

type CollateralPositionsRepo interface {
	Upsert(ctx context.Context, pos *CollateralPosition) error
	Delete(ctx context.Context, user, asset common.Address) error
	FindByUser(ctx context.Context, user common.Address) ([]*CollateralPosition, error)
	FindUsers(ctx context.Context) ([]common.Address, error)
}
