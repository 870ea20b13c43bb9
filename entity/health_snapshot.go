package entity

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// HealthSnapshot is an append-only record of a user's health factor taken by
// the periodic sweep. The health-maintenance verifier reads trailing windows
// of these rows.
type HealthSnapshot struct {
	UserAddress  common.Address  `db:"user_address"`
	HealthFactor decimal.Decimal `db:"health_factor"`
	SnapshotAt   time.Time       `db:"snapshot_at"`
}

type HealthSnapshotsRepo interface {
	Insert(ctx context.Context, snapshot *HealthSnapshot) error
	FindByUserSince(ctx context.Context, user common.Address, since time.Time) ([]*HealthSnapshot, error)
}
