package presenter

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/pelagos-finance/defi-indexer/entity"
)

type CursorStatus struct {
	Contract  string         `json:"contract"`
	Address   common.Address `json:"address"`
	LastBlock uint           `json:"last_block"`
	Syncing   bool           `json:"syncing"`
}

type StatusResult struct {
	Cursors []*CursorStatus `json:"cursors"`
}

type LiquidityPositionInfo struct {
	Pool            common.Address  `json:"pool"`
	LPBalance       decimal.Decimal `json:"lp_balance"`
	SharePercent    decimal.Decimal `json:"share_percent"`
	Token0Amount    decimal.Decimal `json:"token0_amount"`
	Token1Amount    decimal.Decimal `json:"token1_amount"`
	LiquidityUSD    decimal.Decimal `json:"liquidity_usd"`
	APR             decimal.Decimal `json:"apr"`
	FirstProvidedAt *time.Time      `json:"first_provided_at,omitempty"`
}

type PositionsResult struct {
	User      common.Address           `json:"user"`
	Positions []*LiquidityPositionInfo `json:"positions"`
}

type CollateralPositionInfo struct {
	Asset            common.Address  `json:"asset"`
	CollateralAmount decimal.Decimal `json:"collateral_amount"`
	CollateralUSD    decimal.Decimal `json:"collateral_usd"`
	LTV              decimal.Decimal `json:"ltv"`
	HealthFactor     decimal.Decimal `json:"health_factor"`
	LiquidationPrice decimal.Decimal `json:"liquidation_price"`
}

type VaultResult struct {
	User         common.Address            `json:"user"`
	DebtUSD      decimal.Decimal           `json:"debt_usd"`
	HealthFactor decimal.Decimal           `json:"health_factor"`
	Positions    []*CollateralPositionInfo `json:"positions"`
}

type LockInfo struct {
	TokenID      uint64          `json:"token_id"`
	LockedAmount decimal.Decimal `json:"locked_amount"`
	LockEnd      time.Time       `json:"lock_end"`
	VotingPower  decimal.Decimal `json:"voting_power"`
	IsExpired    bool            `json:"is_expired"`
}

type LocksResult struct {
	Owner            common.Address  `json:"owner"`
	TotalVotingPower decimal.Decimal `json:"total_voting_power"`
	Locks            []*LockInfo     `json:"locks"`
}

func liquidityPositionToInfo(pos *entity.LiquidityPosition) *LiquidityPositionInfo {
	return &LiquidityPositionInfo{
		Pool:            pos.PoolAddress,
		LPBalance:       pos.LPBalance,
		SharePercent:    pos.SharePercent,
		Token0Amount:    pos.Token0Amount,
		Token1Amount:    pos.Token1Amount,
		LiquidityUSD:    pos.LiquidityUSD,
		APR:             pos.APR,
		FirstProvidedAt: pos.FirstProvidedAt,
	}
}

func collateralPositionToInfo(pos *entity.CollateralPosition) *CollateralPositionInfo {
	return &CollateralPositionInfo{
		Asset:            pos.AssetAddress,
		CollateralAmount: pos.CollateralAmount,
		CollateralUSD:    pos.CollateralUSD,
		LTV:              pos.LTV,
		HealthFactor:     pos.HealthFactor,
		LiquidationPrice: pos.LiquidationPrice,
	}
}

func lockToInfo(lock *entity.VeNFTLock) *LockInfo {
	return &LockInfo{
		TokenID:      lock.TokenID,
		LockedAmount: lock.LockedAmount,
		LockEnd:      lock.LockEnd,
		VotingPower:  lock.VotingPower,
		IsExpired:    lock.IsExpired,
	}
}
