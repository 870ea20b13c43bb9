package monitor

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/pelagos-finance/defi-indexer/config"
	"github.com/pelagos-finance/defi-indexer/contract"
	"github.com/pelagos-finance/defi-indexer/entity"
	"github.com/pelagos-finance/defi-indexer/logging"
	"github.com/pelagos-finance/defi-indexer/repository"
	"github.com/pelagos-finance/defi-indexer/units"
)

// VaultHandler keeps collateral_positions in sync with USDP vault events.
// Deposits and withdrawals touch a single user x asset row; borrows and
// repayments change the user's global debt and therefore refresh every
// collateral row of that user.
type VaultHandler struct {
	logger   logging.Logger
	repo     *repository.Repo
	registry *contract.Registry
	oracle   *config.OracleConfig
	stables  map[common.Address]bool
}

func NewVaultHandler(logger logging.Logger, repo *repository.Repo, registry *contract.Registry, oracle *config.OracleConfig, stables map[common.Address]bool) *VaultHandler {
	return &VaultHandler{
		logger:   logger,
		repo:     repo,
		registry: registry,
		oracle:   oracle,
		stables:  stables,
	}
}

func (h *VaultHandler) HandleDeposit(ctx context.Context, log *entity.Log, data map[string]interface{}) error {
	return h.handleAssetEvent(ctx, data)
}

func (h *VaultHandler) HandleWithdraw(ctx context.Context, log *entity.Log, data map[string]interface{}) error {
	return h.handleAssetEvent(ctx, data)
}

func (h *VaultHandler) HandleBorrow(ctx context.Context, log *entity.Log, data map[string]interface{}) error {
	return h.handleDebtEvent(ctx, data)
}

func (h *VaultHandler) HandleRepay(ctx context.Context, log *entity.Log, data map[string]interface{}) error {
	return h.handleDebtEvent(ctx, data)
}

func (h *VaultHandler) handleAssetEvent(ctx context.Context, data map[string]interface{}) error {
	user, err := eventAddress(data, "user")
	if err != nil {
		return err
	}
	asset, err := eventAddress(data, "asset")
	if err != nil {
		return err
	}
	return h.refreshAsset(ctx, user, asset)
}

func (h *VaultHandler) handleDebtEvent(ctx context.Context, data map[string]interface{}) error {
	user, err := eventAddress(data, "user")
	if err != nil {
		return err
	}
	return h.refreshAllAssets(ctx, user)
}

func (h *VaultHandler) refreshAllAssets(ctx context.Context, user common.Address) error {
	vault, err := h.registry.Vault()
	if err != nil {
		return err
	}
	assets, err := vault.CollateralAssets(ctx)
	if err != nil {
		return err
	}
	for _, asset := range assets {
		if err = h.refreshAsset(ctx, user, asset); err != nil {
			return fmt.Errorf("can't refresh %s collateral: %w", asset, err)
		}
	}
	return nil
}

func (h *VaultHandler) refreshAsset(ctx context.Context, user, asset common.Address) error {
	vault, err := h.registry.Vault()
	if err != nil {
		return err
	}
	amount, err := vault.CollateralOf(ctx, user, asset)
	if err != nil {
		return err
	}
	if amount.Sign() == 0 {
		return h.repo.CollateralPositions.Delete(ctx, user, asset)
	}
	debt, err := vault.DebtOf(ctx, user)
	if err != nil {
		return err
	}
	threshold, err := vault.LiquidationThreshold(ctx, asset)
	if err != nil {
		return err
	}
	ltv, err := vault.LTV(ctx, asset)
	if err != nil {
		return err
	}
	price := h.assetPriceUSD(asset)

	collateralAmount := units.FromWei(amount)
	collateralUSD := units.RoundUSD(collateralAmount.Mul(price))
	// USDP is a USD-pegged stablecoin, debt converts 1:1
	debtUSD := units.RoundUSD(units.FromWei(debt))
	thresholdDec := units.FromWei(threshold)

	return h.repo.CollateralPositions.Upsert(ctx, &entity.CollateralPosition{
		UserAddress:      user,
		AssetAddress:     asset,
		CollateralAmount: units.RoundAmount(collateralAmount),
		CollateralUSD:    collateralUSD,
		DebtUSD:          debtUSD,
		LTV:              units.RoundAmount(units.FromWei(ltv)),
		HealthFactor:     HealthFactor(collateralUSD, thresholdDec, debtUSD),
		LiquidationPrice: LiquidationPrice(debtUSD, collateralAmount, thresholdDec),
	})
}

func (h *VaultHandler) assetPriceUSD(asset common.Address) decimal.Decimal {
	if price := h.oracle.TokenPriceUSD(asset); !price.IsZero() {
		return price
	}
	if h.stables[asset] {
		return decimal.NewFromInt(1)
	}
	h.logger.WithField("asset", asset).Warn("no configured price for collateral asset")
	return decimal.Zero
}

// HealthFactor is collateralUSD * liquidationThreshold / debtUSD. Zero debt
// saturates to HealthFactorInfinite instead of dividing by zero.
func HealthFactor(collateralUSD, liquidationThreshold, debtUSD decimal.Decimal) decimal.Decimal {
	if debtUSD.IsZero() {
		return units.HealthFactorInfinite
	}
	return collateralUSD.Mul(liquidationThreshold).DivRound(debtUSD, 8)
}

// LiquidationPrice is the collateral price at which the position becomes
// liquidatable: debtUSD / (collateralAmount * liquidationThreshold). Zero
// when there is no collateral.
func LiquidationPrice(debtUSD, collateralAmount, liquidationThreshold decimal.Decimal) decimal.Decimal {
	denominator := collateralAmount.Mul(liquidationThreshold)
	if denominator.IsZero() {
		return decimal.Zero
	}
	return debtUSD.DivRound(denominator, 8)
}
