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

type healthSnapshotsRepo basePostgresRepo

func NewHealthSnapshotsRepo(table string, db *db.DB) entity.HealthSnapshotsRepo {
	return (*healthSnapshotsRepo)(newBasePostgresRepo(table, db))
}

func (r *healthSnapshotsRepo) Insert(ctx context.Context, snapshot *entity.HealthSnapshot) error {
	q, args, err := sq.Insert(r.table).
		Columns("user_address", "health_factor", "snapshot_at").
		Values(snapshot.UserAddress, snapshot.HealthFactor, snapshot.SnapshotAt).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("can't build query: %w", err)
	}
	_, err = r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("can't insert health snapshot: %w", err)
	}
	return nil
}

func (r *healthSnapshotsRepo) FindByUserSince(ctx context.Context, user common.Address, since time.Time) ([]*entity.HealthSnapshot, error) {
	q, args, err := sq.Select("*").
		From(r.table).
		Where(sq.Eq{"user_address": user}).
		Where(sq.GtOrEq{"snapshot_at": since}).
		OrderBy("snapshot_at").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("can't build query: %w", err)
	}
	snapshots := make([]*entity.HealthSnapshot, 0, 100)
	err = r.db.SelectContext(ctx, &snapshots, q, args...)
	if err != nil {
		return nil, fmt.Errorf("can't find health snapshots: %w", err)
	}
	return snapshots, nil
}
