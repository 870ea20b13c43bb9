package monitor

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/pelagos-finance/defi-indexer/contract"
	"github.com/pelagos-finance/defi-indexer/db"
	"github.com/pelagos-finance/defi-indexer/entity"
	"github.com/pelagos-finance/defi-indexer/logging"
	"github.com/pelagos-finance/defi-indexer/repository"
	"github.com/pelagos-finance/defi-indexer/units"
)

var oneHundred = decimal.NewFromInt(100)

// DexHandler keeps liquidity_positions in sync with AMM pair events. Events
// only tell it whose position changed; the row itself is always re-derived
// from fresh contract state and replaced wholesale.
type DexHandler struct {
	logger   logging.Logger
	repo     *repository.Repo
	registry *contract.Registry
	stables  map[common.Address]bool
}

func NewDexHandler(logger logging.Logger, repo *repository.Repo, registry *contract.Registry, stables map[common.Address]bool) *DexHandler {
	return &DexHandler{
		logger:   logger,
		repo:     repo,
		registry: registry,
		stables:  stables,
	}
}

func (h *DexHandler) HandleMint(ctx context.Context, log *entity.Log, data map[string]interface{}) error {
	user, ok := data["to"].(common.Address)
	if !ok {
		return fmt.Errorf("mint event without a valid recipient")
	}
	return h.refreshPosition(ctx, user, log.Address)
}

func (h *DexHandler) HandleBurn(ctx context.Context, log *entity.Log, data map[string]interface{}) error {
	user, ok := data["from"].(common.Address)
	if !ok {
		return fmt.Errorf("burn event without a valid provider")
	}
	return h.refreshPosition(ctx, user, log.Address)
}

func (h *DexHandler) refreshPosition(ctx context.Context, user, pool common.Address) error {
	pair := h.registry.Pair(pool)
	balance, err := pair.BalanceOf(ctx, user)
	if err != nil {
		return err
	}
	if balance.Sign() == 0 {
		return h.repo.LiquidityPositions.Delete(ctx, user, pool)
	}
	totalSupply, err := pair.TotalSupply(ctx)
	if err != nil {
		return err
	}
	reserves, err := pair.GetReserves(ctx)
	if err != nil {
		return err
	}
	token0, err := pair.Token0(ctx)
	if err != nil {
		return err
	}
	token1, err := pair.Token1(ctx)
	if err != nil {
		return err
	}
	pos := DeriveLiquidityPosition(user, pool, balance, totalSupply, reserves, token0, token1, h.stables)
	pos.APR, err = h.latestAPR(ctx, pool)
	if err != nil {
		return err
	}
	return h.repo.LiquidityPositions.Upsert(ctx, pos)
}

// latestAPR reads the most recent APR snapshot for the pool, zero when no
// snapshot was taken yet.
func (h *DexHandler) latestAPR(ctx context.Context, pool common.Address) (decimal.Decimal, error) {
	snapshot, err := h.repo.HistoricalAPRs.GetLatestByPool(ctx, pool)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("can't get latest apr snapshot: %w", err)
	}
	return snapshot.TotalAPR, nil
}

// DeriveLiquidityPosition computes the full position row from on-chain state.
// The USD value uses the stablecoin heuristic: both tokens stable - sum of the
// user's token amounts; one stable - twice the stable side; neither - zero,
// there is no price source for such a pool.
func DeriveLiquidityPosition(
	user, pool common.Address,
	balance, totalSupply *big.Int,
	reserves *contract.Reserves,
	token0, token1 common.Address,
	stables map[common.Address]bool,
) *entity.LiquidityPosition {
	lpBalance := units.FromWei(balance)
	share := decimal.Zero
	if totalSupply.Sign() > 0 {
		share = lpBalance.DivRound(units.FromWei(totalSupply), 18).Mul(oneHundred)
	}
	shareFraction := share.Div(oneHundred)
	token0Amount := units.FromWei(reserves.Reserve0).Mul(shareFraction)
	token1Amount := units.FromWei(reserves.Reserve1).Mul(shareFraction)

	liquidityUSD := decimal.Zero
	switch {
	case stables[token0] && stables[token1]:
		liquidityUSD = token0Amount.Add(token1Amount)
	case stables[token0]:
		liquidityUSD = token0Amount.Mul(decimal.NewFromInt(2))
	case stables[token1]:
		liquidityUSD = token1Amount.Mul(decimal.NewFromInt(2))
	}

	return &entity.LiquidityPosition{
		UserAddress:  user,
		PoolAddress:  pool,
		LPBalance:    units.RoundAmount(lpBalance),
		SharePercent: units.RoundAmount(share),
		Token0Amount: units.RoundAmount(token0Amount),
		Token1Amount: units.RoundAmount(token1Amount),
		LiquidityUSD: units.RoundUSD(liquidityUSD),
	}
}
