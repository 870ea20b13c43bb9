package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type VaultContract struct {
	*Contract
}

func (c *VaultContract) CollateralOf(ctx context.Context, user, asset common.Address) (*big.Int, error) {
	res, err := c.Call(ctx, "collateralOf", user, asset)
	if err != nil {
		return nil, fmt.Errorf("cannot obtain collateral balance: %w", err)
	}
	return new(big.Int).SetBytes(res), nil
}

func (c *VaultContract) DebtOf(ctx context.Context, user common.Address) (*big.Int, error) {
	res, err := c.Call(ctx, "debtOf", user)
	if err != nil {
		return nil, fmt.Errorf("cannot obtain debt: %w", err)
	}
	return new(big.Int).SetBytes(res), nil
}

// LiquidationThreshold returns the 1e18-scaled threshold for the asset.
func (c *VaultContract) LiquidationThreshold(ctx context.Context, asset common.Address) (*big.Int, error) {
	res, err := c.Call(ctx, "liquidationThreshold", asset)
	if err != nil {
		return nil, fmt.Errorf("cannot obtain liquidation threshold: %w", err)
	}
	return new(big.Int).SetBytes(res), nil
}

// LTV returns the 1e18-scaled loan-to-value risk parameter for the asset.
func (c *VaultContract) LTV(ctx context.Context, asset common.Address) (*big.Int, error) {
	res, err := c.Call(ctx, "ltv", asset)
	if err != nil {
		return nil, fmt.Errorf("cannot obtain ltv: %w", err)
	}
	return new(big.Int).SetBytes(res), nil
}

func (c *VaultContract) CollateralAssets(ctx context.Context) ([]common.Address, error) {
	values, err := c.CallAndUnpack(ctx, "collateralAssets")
	if err != nil {
		return nil, fmt.Errorf("cannot obtain collateral assets: %w", err)
	}
	assets, ok := values[0].([]common.Address)
	if !ok {
		return nil, fmt.Errorf("unexpected collateralAssets() result type %T", values[0])
	}
	return assets, nil
}
