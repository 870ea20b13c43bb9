package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/ethereum/go-ethereum/common"

	"github.com/pelagos-finance/defi-indexer/db"
	"github.com/pelagos-finance/defi-indexer/entity"
)

type liquidityPositionsRepo basePostgresRepo

func NewLiquidityPositionsRepo(table string, db *db.DB) entity.LiquidityPositionsRepo {
	return (*liquidityPositionsRepo)(newBasePostgresRepo(table, db))
}

func (r *liquidityPositionsRepo) Upsert(ctx context.Context, pos *entity.LiquidityPosition) error {
	q, args, err := sq.Insert(r.table).
		Columns("user_address", "pool_address", "lp_balance", "share_percent",
			"token0_amount", "token1_amount", "liquidity_usd", "apr", "first_provided_at").
		Values(pos.UserAddress, pos.PoolAddress, pos.LPBalance, pos.SharePercent,
			pos.Token0Amount, pos.Token1Amount, pos.LiquidityUSD, pos.APR, sq.Expr("NOW()")).
		Suffix("ON CONFLICT (user_address, pool_address) DO UPDATE SET updated_at = NOW()," +
			" lp_balance = EXCLUDED.lp_balance, share_percent = EXCLUDED.share_percent," +
			" token0_amount = EXCLUDED.token0_amount, token1_amount = EXCLUDED.token1_amount," +
			" liquidity_usd = EXCLUDED.liquidity_usd, apr = EXCLUDED.apr").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("can't build query: %w", err)
	}
	_, err = r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("can't upsert liquidity position: %w", err)
	}
	return nil
}

func (r *liquidityPositionsRepo) Delete(ctx context.Context, user, pool common.Address) error {
	q, args, err := sq.Delete(r.table).
		Where(sq.Eq{"user_address": user, "pool_address": pool}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("can't build query: %w", err)
	}
	_, err = r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("can't delete liquidity position: %w", err)
	}
	return nil
}

func (r *liquidityPositionsRepo) GetByUserAndPool(ctx context.Context, user, pool common.Address) (*entity.LiquidityPosition, error) {
	q, args, err := sq.Select("*").
		From(r.table).
		Where(sq.Eq{"user_address": user, "pool_address": pool}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("can't build query: %w", err)
	}
	pos := new(entity.LiquidityPosition)
	err = r.db.GetContext(ctx, pos, q, args...)
	if err != nil {
		return nil, fmt.Errorf("can't get liquidity position: %w", err)
	}
	return pos, nil
}

func (r *liquidityPositionsRepo) FindByUser(ctx context.Context, user common.Address) ([]*entity.LiquidityPosition, error) {
	q, args, err := sq.Select("*").
		From(r.table).
		Where(sq.Eq{"user_address": user}).
		OrderBy("pool_address").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("can't build query: %w", err)
	}
	positions := make([]*entity.LiquidityPosition, 0, 5)
	err = r.db.SelectContext(ctx, &positions, q, args...)
	if err != nil {
		return nil, fmt.Errorf("can't find liquidity positions: %w", err)
	}
	return positions, nil
}
