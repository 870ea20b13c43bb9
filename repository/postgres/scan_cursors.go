package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/pelagos-finance/defi-indexer/db"
	"github.com/pelagos-finance/defi-indexer/entity"
)

type scanCursorsRepo basePostgresRepo

func NewScanCursorsRepo(table string, db *db.DB) entity.ScanCursorsRepo {
	return (*scanCursorsRepo)(newBasePostgresRepo(table, db))
}

func (r *scanCursorsRepo) Ensure(ctx context.Context, cursor *entity.ScanCursor) error {
	q, args, err := sq.Insert(r.table).
		Columns("contract", "address", "last_block", "syncing").
		Values(cursor.Contract, cursor.Address, cursor.LastBlock, cursor.Syncing).
		Suffix("ON CONFLICT (contract) DO UPDATE SET updated_at = NOW()," +
			" last_block = GREATEST(EXCLUDED.last_block, " + r.table + ".last_block)," +
			" syncing = EXCLUDED.syncing").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("can't build query: %w", err)
	}
	_, err = r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("can't insert scan cursor: %w", err)
	}
	return nil
}

func (r *scanCursorsRepo) SetSyncing(ctx context.Context, contract string, syncing bool) error {
	q, args, err := sq.Update(r.table).
		Set("syncing", syncing).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"contract": contract}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("can't build query: %w", err)
	}
	_, err = r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("can't update scan cursor syncing flag: %w", err)
	}
	return nil
}

func (r *scanCursorsRepo) GetByContract(ctx context.Context, contract string) (*entity.ScanCursor, error) {
	q, args, err := sq.Select("*").
		From(r.table).
		Where(sq.Eq{"contract": contract}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("can't build query: %w", err)
	}
	cursor := new(entity.ScanCursor)
	err = r.db.GetContext(ctx, cursor, q, args...)
	if err != nil {
		return nil, fmt.Errorf("can't get scan cursor by contract: %w", err)
	}
	return cursor, nil
}

func (r *scanCursorsRepo) FindAll(ctx context.Context) ([]*entity.ScanCursor, error) {
	q, args, err := sq.Select("*").
		From(r.table).
		OrderBy("contract").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("can't build query: %w", err)
	}
	cursors := make([]*entity.ScanCursor, 0, 10)
	err = r.db.SelectContext(ctx, &cursors, q, args...)
	if err != nil {
		return nil, fmt.Errorf("can't find scan cursors: %w", err)
	}
	return cursors, nil
}
