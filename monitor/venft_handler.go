package monitor

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pelagos-finance/defi-indexer/contract"
	"github.com/pelagos-finance/defi-indexer/entity"
	"github.com/pelagos-finance/defi-indexer/logging"
	"github.com/pelagos-finance/defi-indexer/repository"
	"github.com/pelagos-finance/defi-indexer/units"
)

var maxLockSeconds = decimal.NewFromInt(int64(units.MaxLockDuration / time.Second))

// VeNFTHandler keeps venft_locks in sync with voting escrow events. Lock rows
// are re-derived from the contract's locked() state; withdrawn or merged-away
// tokens lose their row, expired locks keep it with zero voting power.
type VeNFTHandler struct {
	logger   logging.Logger
	repo     *repository.Repo
	registry *contract.Registry
	now      func() time.Time
}

func NewVeNFTHandler(logger logging.Logger, repo *repository.Repo, registry *contract.Registry) *VeNFTHandler {
	return &VeNFTHandler{
		logger:   logger,
		repo:     repo,
		registry: registry,
		now:      time.Now,
	}
}

func (h *VeNFTHandler) HandleLock(ctx context.Context, log *entity.Log, data map[string]interface{}) error {
	tokenID, ok := data["tokenId"].(*big.Int)
	if !ok {
		return fmt.Errorf("lock event without a valid token id")
	}
	return h.refreshLock(ctx, tokenID)
}

func (h *VeNFTHandler) HandleWithdraw(ctx context.Context, log *entity.Log, data map[string]interface{}) error {
	tokenID, ok := data["tokenId"].(*big.Int)
	if !ok {
		return fmt.Errorf("withdraw event without a valid token id")
	}
	return h.repo.VeNFTLocks.Delete(ctx, tokenID.Uint64())
}

// HandleMerge removes the source token row and refreshes the target from the
// merged on-chain state.
func (h *VeNFTHandler) HandleMerge(ctx context.Context, log *entity.Log, data map[string]interface{}) error {
	fromTokenID, ok := data["fromTokenId"].(*big.Int)
	if !ok {
		return fmt.Errorf("merge event without a valid source token id")
	}
	toTokenID, ok := data["toTokenId"].(*big.Int)
	if !ok {
		return fmt.Errorf("merge event without a valid target token id")
	}
	if err := h.repo.VeNFTLocks.Delete(ctx, fromTokenID.Uint64()); err != nil {
		return err
	}
	return h.refreshLock(ctx, toTokenID)
}

func (h *VeNFTHandler) refreshLock(ctx context.Context, tokenID *big.Int) error {
	ve, err := h.registry.VotingEscrow()
	if err != nil {
		return err
	}
	locked, err := ve.Locked(ctx, tokenID)
	if err != nil {
		return err
	}
	if locked.Amount.Sign() == 0 {
		return h.repo.VeNFTLocks.Delete(ctx, tokenID.Uint64())
	}
	owner, err := ve.OwnerOf(ctx, tokenID)
	if err != nil {
		return err
	}
	lockEnd := time.Unix(locked.End.Int64(), 0).UTC()
	power, expired := VotingPower(units.FromWei(locked.Amount), lockEnd, h.now())
	return h.repo.VeNFTLocks.Upsert(ctx, &entity.VeNFTLock{
		TokenID:      tokenID.Uint64(),
		OwnerAddress: owner,
		LockedAmount: units.RoundAmount(units.FromWei(locked.Amount)),
		LockEnd:      lockEnd,
		VotingPower:  power,
		IsExpired:    expired,
	})
}

// VotingPower decays linearly with the remaining lock time:
// locked * remaining / MaxLockDuration, zero once the lock has expired.
func VotingPower(locked decimal.Decimal, lockEnd, now time.Time) (decimal.Decimal, bool) {
	remaining := lockEnd.Sub(now)
	if remaining <= 0 {
		return decimal.Zero, true
	}
	remainingSeconds := decimal.NewFromInt(int64(remaining / time.Second))
	power := locked.Mul(remainingSeconds).DivRound(maxLockSeconds, 8)
	return power, false
}
