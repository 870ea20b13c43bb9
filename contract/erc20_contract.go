package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type ERC20Contract struct {
	*Contract
}

func (c *ERC20Contract) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	res, err := c.Call(ctx, "balanceOf", owner)
	if err != nil {
		return nil, fmt.Errorf("cannot obtain token balance: %w", err)
	}
	return new(big.Int).SetBytes(res), nil
}

func (c *ERC20Contract) Symbol(ctx context.Context) (string, error) {
	values, err := c.CallAndUnpack(ctx, "symbol")
	if err != nil {
		return "", fmt.Errorf("cannot obtain token symbol: %w", err)
	}
	symbol, ok := values[0].(string)
	if !ok {
		return "", fmt.Errorf("unexpected symbol() result type %T", values[0])
	}
	return symbol, nil
}

func (c *ERC20Contract) Decimals(ctx context.Context) (uint8, error) {
	values, err := c.CallAndUnpack(ctx, "decimals")
	if err != nil {
		return 0, fmt.Errorf("cannot obtain token decimals: %w", err)
	}
	decimals, ok := values[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("unexpected decimals() result type %T", values[0])
	}
	return decimals, nil
}
