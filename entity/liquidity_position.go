package entity

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// LiquidityPosition mirrors the current on-chain LP position of one user in
// one pool. Rows are replaced wholesale on every relevant event; a zero LP
// balance deletes the row. FirstProvidedAt survives upserts.
type LiquidityPosition struct {
	UserAddress     common.Address  `db:"user_address"`
	PoolAddress     common.Address  `db:"pool_address"`
	LPBalance       decimal.Decimal `db:"lp_balance"`
	SharePercent    decimal.Decimal `db:"share_percent"`
	Token0Amount    decimal.Decimal `db:"token0_amount"`
	Token1Amount    decimal.Decimal `db:"token1_amount"`
	LiquidityUSD    decimal.Decimal `db:"liquidity_usd"`
	APR             decimal.Decimal `db:"apr"`
	FirstProvidedAt *time.Time      `db:"first_provided_at"`
	UpdatedAt       *time.Time      `db:"updated_at"`
}

type LiquidityPositionsRepo interface {
	Upsert(ctx context.Context, pos *LiquidityPosition) error
	Delete(ctx context.Context, user, pool common.Address) error
	GetByUserAndPool(ctx context.Context, user, pool common.Address) (*LiquidityPosition, error)
	FindByUser(ctx context.Context, user common.Address) ([]*LiquidityPosition, error)
}
