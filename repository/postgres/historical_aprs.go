package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/ethereum/go-ethereum/common"

	"github.com/pelagos-finance/defi-indexer/db"
	"github.com/pelagos-finance/defi-indexer/entity"
)

type historicalAPRsRepo basePostgresRepo

func NewHistoricalAPRsRepo(table string, db *db.DB) entity.HistoricalAPRsRepo {
	return (*historicalAPRsRepo)(newBasePostgresRepo(table, db))
}

func (r *historicalAPRsRepo) Insert(ctx context.Context, snapshot *entity.HistoricalAPR) error {
	q, args, err := sq.Insert(r.table).
		Columns("pool_address", "fee_apr", "emission_apr", "total_apr", "tvl_usd", "snapshot_at").
		Values(snapshot.PoolAddress, snapshot.FeeAPR, snapshot.EmissionAPR,
			snapshot.TotalAPR, snapshot.TVLUSD, snapshot.SnapshotAt).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("can't build query: %w", err)
	}
	_, err = r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("can't insert apr snapshot: %w", err)
	}
	return nil
}

func (r *historicalAPRsRepo) Exists(ctx context.Context, pool common.Address, snapshotAt time.Time) (bool, error) {
	q, args, err := sq.Select("COUNT(*)").
		From(r.table).
		Where(sq.Eq{"pool_address": pool, "snapshot_at": snapshotAt}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("can't build query: %w", err)
	}
	var count int
	err = r.db.GetContext(ctx, &count, q, args...)
	if err != nil {
		return false, fmt.Errorf("can't check apr snapshot existence: %w", err)
	}
	return count > 0, nil
}

func (r *historicalAPRsRepo) GetLatestByPool(ctx context.Context, pool common.Address) (*entity.HistoricalAPR, error) {
	q, args, err := sq.Select("*").
		From(r.table).
		Where(sq.Eq{"pool_address": pool}).
		OrderBy("snapshot_at DESC").
		Limit(1).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("can't build query: %w", err)
	}
	snapshot := new(entity.HistoricalAPR)
	err = r.db.GetContext(ctx, snapshot, q, args...)
	if err != nil {
		return nil, fmt.Errorf("can't get latest apr snapshot: %w", err)
	}
	return snapshot, nil
}
