package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type VotingEscrowContract struct {
	*Contract
}

type LockedBalance struct {
	Amount *big.Int
	// End is a unix timestamp, zero for a non-existent lock.
	End *big.Int
}

func (c *VotingEscrowContract) Locked(ctx context.Context, tokenID *big.Int) (*LockedBalance, error) {
	values, err := c.CallAndUnpack(ctx, "locked", tokenID)
	if err != nil {
		return nil, fmt.Errorf("cannot obtain locked balance: %w", err)
	}
	return &LockedBalance{
		Amount: values[0].(*big.Int),
		End:    values[1].(*big.Int),
	}, nil
}

func (c *VotingEscrowContract) OwnerOf(ctx context.Context, tokenID *big.Int) (common.Address, error) {
	res, err := c.Call(ctx, "ownerOf", tokenID)
	if err != nil {
		return common.Address{}, fmt.Errorf("cannot obtain token owner: %w", err)
	}
	return common.BytesToAddress(res), nil
}
