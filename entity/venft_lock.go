package entity

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// VeNFTLock mirrors one voting-escrow lock. Expired locks keep their row with
// zero voting power and IsExpired set; only an on-chain withdraw (or a merge
// of the source token) deletes the row.
type VeNFTLock struct {
	TokenID      uint64          `db:"token_id"`
	OwnerAddress common.Address  `db:"owner_address"`
	LockedAmount decimal.Decimal `db:"locked_amount"`
	LockEnd      time.Time       `db:"lock_end"`
	VotingPower  decimal.Decimal `db:"voting_power"`
	IsExpired    bool            `db:"is_expired"`
	UpdatedAt    *time.Time      `db:"updated_at"`
}

type VeNFTLocksRepo interface {
	Upsert(ctx context.Context, lock *VeNFTLock) error
	Delete(ctx context.Context, tokenID uint64) error
	GetByTokenID(ctx context.Context, tokenID uint64) (*VeNFTLock, error)
	FindByOwner(ctx context.Context, owner common.Address) ([]*VeNFTLock, error)
}
