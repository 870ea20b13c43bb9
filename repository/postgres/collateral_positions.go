package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/ethereum/go-ethereum/common"

	"github.com/pelagos-finance/defi-indexer/db"
	"github.com/pelagos-finance/defi-indexer/entity"
)

type collateralPositionsRepo basePostgresRepo

func NewCollateralPositionsRepo(table string, db *db.DB) entity.CollateralPositionsRepo {
	return (*collateralPositionsRepo)(newBasePostgresRepo(table, db))
}

func (r *collateralPositionsRepo) Upsert(ctx context.Context, pos *entity.CollateralPosition) error {
	q, args, err := sq.Insert(r.table).
		Columns("user_address", "asset_address", "collateral_amount", "collateral_usd",
			"debt_usd", "ltv", "health_factor", "liquidation_price").
		Values(pos.UserAddress, pos.AssetAddress, pos.CollateralAmount, pos.CollateralUSD,
			pos.DebtUSD, pos.LTV, pos.HealthFactor, pos.LiquidationPrice).
		Suffix("ON CONFLICT (user_address, asset_address) DO UPDATE SET updated_at = NOW()," +
			" collateral_amount = EXCLUDED.collateral_amount, collateral_usd = EXCLUDED.collateral_usd," +
			" debt_usd = EXCLUDED.debt_usd, ltv = EXCLUDED.ltv," +
			" health_factor = EXCLUDED.health_factor, liquidation_price = EXCLUDED.liquidation_price").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("can't build query: %w", err)
	}
	_, err = r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("can't upsert collateral position: %w", err)
	}
	return nil
}

func (r *collateralPositionsRepo) Delete(ctx context.Context, user, asset common.Address) error {
	q, args, err := sq.Delete(r.table).
		Where(sq.Eq{"user_address": user, "asset_address": asset}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("can't build query: %w", err)
	}
	_, err = r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("can't delete collateral position: %w", err)
	}
	return nil
}

func (r *collateralPositionsRepo) FindByUser(ctx context.Context, user common.Address) ([]*entity.CollateralPosition, error) {
	q, args, err := sq.Select("*").
		From(r.table).
		Where(sq.Eq{"user_address": user}).
		OrderBy("asset_address").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("can't build query: %w", err)
	}
	positions := make([]*entity.CollateralPosition, 0, 5)
	err = r.db.SelectContext(ctx, &positions, q, args...)
	if err != nil {
		return nil, fmt.Errorf("can't find collateral positions: %w", err)
	}
	return positions, nil
}

func (r *collateralPositionsRepo) FindUsers(ctx context.Context) ([]common.Address, error) {
	q, args, err := sq.Select("DISTINCT user_address").
		From(r.table).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("can't build query: %w", err)
	}
	users := make([]common.Address, 0, 100)
	err = r.db.SelectContext(ctx, &users, q, args...)
	if err != nil {
		return nil, fmt.Errorf("can't find tracked users: %w", err)
	}
	return users, nil
}
