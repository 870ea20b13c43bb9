package entity

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// HistoricalReward is an append-only claim record, unique per
// (user, pool, reward_token, snapshot_at).
type HistoricalReward struct {
	UserAddress common.Address  `db:"user_address"`
	PoolAddress common.Address  `db:"pool_address"`
	RewardToken common.Address  `db:"reward_token"`
	Amount      decimal.Decimal `db:"amount"`
	SnapshotAt  time.Time       `db:"snapshot_at"`
}

type HistoricalRewardsRepo interface {
	Insert(ctx context.Context, reward *HistoricalReward) error
	Exists(ctx context.Context, reward *HistoricalReward) (bool, error)
	SumByUserAndPool(ctx context.Context, user, pool common.Address) (decimal.Decimal, error)
}
