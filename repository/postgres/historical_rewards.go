package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/pelagos-finance/defi-indexer/db"
	"github.com/pelagos-finance/defi-indexer/entity"
)

type historicalRewardsRepo basePostgresRepo

func NewHistoricalRewardsRepo(table string, db *db.DB) entity.HistoricalRewardsRepo {
	return (*historicalRewardsRepo)(newBasePostgresRepo(table, db))
}

func (r *historicalRewardsRepo) Insert(ctx context.Context, reward *entity.HistoricalReward) error {
	q, args, err := sq.Insert(r.table).
		Columns("user_address", "pool_address", "reward_token", "amount", "snapshot_at").
		Values(reward.UserAddress, reward.PoolAddress, reward.RewardToken, reward.Amount, reward.SnapshotAt).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("can't build query: %w", err)
	}
	_, err = r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("can't insert reward record: %w", err)
	}
	return nil
}

func (r *historicalRewardsRepo) Exists(ctx context.Context, reward *entity.HistoricalReward) (bool, error) {
	q, args, err := sq.Select("COUNT(*)").
		From(r.table).
		Where(sq.Eq{
			"user_address": reward.UserAddress,
			"pool_address": reward.PoolAddress,
			"reward_token": reward.RewardToken,
			"snapshot_at":  reward.SnapshotAt,
		}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("can't build query: %w", err)
	}
	var count int
	err = r.db.GetContext(ctx, &count, q, args...)
	if err != nil {
		return false, fmt.Errorf("can't check reward record existence: %w", err)
	}
	return count > 0, nil
}

func (r *historicalRewardsRepo) SumByUserAndPool(ctx context.Context, user, pool common.Address) (decimal.Decimal, error) {
	q, args, err := sq.Select("COALESCE(SUM(amount), 0)").
		From(r.table).
		Where(sq.Eq{"user_address": user, "pool_address": pool}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return decimal.Zero, fmt.Errorf("can't build query: %w", err)
	}
	var sum decimal.Decimal
	err = r.db.GetContext(ctx, &sum, q, args...)
	if err != nil {
		return decimal.Zero, fmt.Errorf("can't sum reward records: %w", err)
	}
	return sum, nil
}
