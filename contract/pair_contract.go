package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type PairContract struct {
	*Contract
}

type Reserves struct {
	Reserve0 *big.Int
	Reserve1 *big.Int
}

func (c *PairContract) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	res, err := c.Call(ctx, "balanceOf", owner)
	if err != nil {
		return nil, fmt.Errorf("cannot obtain lp balance: %w", err)
	}
	return new(big.Int).SetBytes(res), nil
}

func (c *PairContract) TotalSupply(ctx context.Context) (*big.Int, error) {
	res, err := c.Call(ctx, "totalSupply")
	if err != nil {
		return nil, fmt.Errorf("cannot obtain lp total supply: %w", err)
	}
	return new(big.Int).SetBytes(res), nil
}

func (c *PairContract) GetReserves(ctx context.Context) (*Reserves, error) {
	values, err := c.CallAndUnpack(ctx, "getReserves")
	if err != nil {
		return nil, fmt.Errorf("cannot obtain pair reserves: %w", err)
	}
	return &Reserves{
		Reserve0: values[0].(*big.Int),
		Reserve1: values[1].(*big.Int),
	}, nil
}

func (c *PairContract) Token0(ctx context.Context) (common.Address, error) {
	res, err := c.Call(ctx, "token0")
	if err != nil {
		return common.Address{}, fmt.Errorf("cannot obtain token0: %w", err)
	}
	return common.BytesToAddress(res), nil
}

func (c *PairContract) Token1(ctx context.Context) (common.Address, error) {
	res, err := c.Call(ctx, "token1")
	if err != nil {
		return common.Address{}, fmt.Errorf("cannot obtain token1: %w", err)
	}
	return common.BytesToAddress(res), nil
}
