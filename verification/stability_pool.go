package verification

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/pelagos-finance/defi-indexer/contract"
	"github.com/pelagos-finance/defi-indexer/repository"
	"github.com/pelagos-finance/defi-indexer/units"
)

type stabilityPoolEvidence struct {
	Claimed   decimal.Decimal `json:"claimed"`
	Pending   decimal.Decimal `json:"pending"`
	Total     decimal.Decimal `json:"total"`
	MinAmount decimal.Decimal `json:"min_amount"`
}

// StabilityPoolVerifier checks that the user has earned at least MinAmount of
// stability pool rewards, counting both claims indexed so far and the pending
// unclaimed amount reported by the rewards contract.
type StabilityPoolVerifier struct {
	repo     *repository.Repo
	registry *contract.Registry
}

func NewStabilityPoolVerifier(repo *repository.Repo, registry *contract.Registry) *StabilityPoolVerifier {
	return &StabilityPoolVerifier{repo: repo, registry: registry}
}

func (v *StabilityPoolVerifier) Type() TaskType {
	return TaskStabilityPool
}

func (v *StabilityPoolVerifier) Verify(ctx context.Context, user common.Address, task *Task) (bool, interface{}, error) {
	pool, err := parseAddress(task.Pool, "pool")
	if err != nil {
		return invalidTask(err)
	}
	claimed, err := v.repo.HistoricalRewards.SumByUserAndPool(ctx, user, pool)
	if err != nil {
		return false, nil, err
	}
	rewards, err := v.registry.Rewards()
	if err != nil {
		return false, nil, err
	}
	pendingWei, err := rewards.StabilityEarned(ctx, user)
	if err != nil {
		return false, nil, err
	}
	pending := units.RoundAmount(units.FromWei(pendingWei))
	evidence := &stabilityPoolEvidence{
		Claimed:   claimed,
		Pending:   pending,
		Total:     claimed.Add(pending),
		MinAmount: task.MinAmount,
	}
	return !evidence.Total.LessThan(task.MinAmount), evidence, nil
}
