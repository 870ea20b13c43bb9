package verification

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/pelagos-finance/defi-indexer/db"
	"github.com/pelagos-finance/defi-indexer/repository"
)

type liquidityDurationEvidence struct {
	Pool            string          `json:"pool"`
	LPBalance       decimal.Decimal `json:"lp_balance"`
	LiquidityUSD    decimal.Decimal `json:"liquidity_usd"`
	FirstProvidedAt *time.Time      `json:"first_provided_at,omitempty"`
	ProvidedDays    int             `json:"provided_days"`
	MinAmount       decimal.Decimal `json:"min_amount"`
	MinDays         int             `json:"min_days"`
}

// LiquidityDurationVerifier checks that the user holds at least MinAmount LP
// tokens in a pool and has provided for at least MinDays. The LP balance is
// the eligibility metric: the USD value is informational only, it is zero for
// pools without a stablecoin leg. Runs entirely off the indexed positions,
// no chain reads.
type LiquidityDurationVerifier struct {
	repo *repository.Repo
	now  func() time.Time
}

func NewLiquidityDurationVerifier(repo *repository.Repo) *LiquidityDurationVerifier {
	return &LiquidityDurationVerifier{repo: repo, now: time.Now}
}

func (v *LiquidityDurationVerifier) Type() TaskType {
	return TaskLiquidityDuration
}

func (v *LiquidityDurationVerifier) Verify(ctx context.Context, user common.Address, task *Task) (bool, interface{}, error) {
	pool, err := parseAddress(task.Pool, "pool")
	if err != nil {
		return invalidTask(err)
	}
	evidence := &liquidityDurationEvidence{
		Pool:      pool.Hex(),
		MinAmount: task.MinAmount,
		MinDays:   task.MinDays,
	}
	pos, err := v.repo.LiquidityPositions.GetByUserAndPool(ctx, user, pool)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return false, evidence, nil
		}
		return false, nil, err
	}
	evidence.LPBalance = pos.LPBalance
	evidence.LiquidityUSD = pos.LiquidityUSD
	if pos.FirstProvidedAt != nil {
		evidence.FirstProvidedAt = pos.FirstProvidedAt
		evidence.ProvidedDays = daysBetween(*pos.FirstProvidedAt, v.now())
	}
	verified := evidence.ProvidedDays >= task.MinDays && !pos.LPBalance.LessThan(task.MinAmount)
	return verified, evidence, nil
}
