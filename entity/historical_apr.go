package entity

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// HistoricalAPR is an append-only snapshot, unique per (pool, snapshot_at).
type HistoricalAPR struct {
	PoolAddress common.Address  `db:"pool_address"`
	FeeAPR      decimal.Decimal `db:"fee_apr"`
	EmissionAPR decimal.Decimal `db:"emission_apr"`
	TotalAPR    decimal.Decimal `db:"total_apr"`
	TVLUSD      decimal.Decimal `db:"tvl_usd"`
	SnapshotAt  time.Time       `db:"snapshot_at"`
}

type HistoricalAPRsRepo interface {
	Insert(ctx context.Context, snapshot *HistoricalAPR) error
	Exists(ctx context.Context, pool common.Address, snapshotAt time.Time) (bool, error)
	GetLatestByPool(ctx context.Context, pool common.Address) (*HistoricalAPR, error)
}
