package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type RewardsContract struct {
	*Contract
}

// Earned returns the user's pending unclaimed rewards for one pool gauge.
func (c *RewardsContract) Earned(ctx context.Context, user, pool common.Address) (*big.Int, error) {
	res, err := c.Call(ctx, "earned", user, pool)
	if err != nil {
		return nil, fmt.Errorf("cannot obtain earned rewards: %w", err)
	}
	return new(big.Int).SetBytes(res), nil
}

// StabilityEarned returns the user's pending unclaimed stability-pool rewards.
func (c *RewardsContract) StabilityEarned(ctx context.Context, user common.Address) (*big.Int, error) {
	res, err := c.Call(ctx, "stabilityEarned", user)
	if err != nil {
		return nil, fmt.Errorf("cannot obtain stability-pool rewards: %w", err)
	}
	return new(big.Int).SetBytes(res), nil
}
