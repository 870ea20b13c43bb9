package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/ethereum/go-ethereum/common"

	"github.com/pelagos-finance/defi-indexer/db"
	"github.com/pelagos-finance/defi-indexer/entity"
)

type veNFTLocksRepo basePostgresRepo

func NewVeNFTLocksRepo(table string, db *db.DB) entity.VeNFTLocksRepo {
	return (*veNFTLocksRepo)(newBasePostgresRepo(table, db))
}

func (r *veNFTLocksRepo) Upsert(ctx context.Context, lock *entity.VeNFTLock) error {
	q, args, err := sq.Insert(r.table).
		Columns("token_id", "owner_address", "locked_amount", "lock_end", "voting_power", "is_expired").
		Values(lock.TokenID, lock.OwnerAddress, lock.LockedAmount, lock.LockEnd, lock.VotingPower, lock.IsExpired).
		Suffix("ON CONFLICT (token_id) DO UPDATE SET updated_at = NOW()," +
			" owner_address = EXCLUDED.owner_address, locked_amount = EXCLUDED.locked_amount," +
			" lock_end = EXCLUDED.lock_end, voting_power = EXCLUDED.voting_power," +
			" is_expired = EXCLUDED.is_expired").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("can't build query: %w", err)
	}
	_, err = r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("can't upsert venft lock: %w", err)
	}
	return nil
}

func (r *veNFTLocksRepo) Delete(ctx context.Context, tokenID uint64) error {
	q, args, err := sq.Delete(r.table).
		Where(sq.Eq{"token_id": tokenID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("can't build query: %w", err)
	}
	_, err = r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("can't delete venft lock: %w", err)
	}
	return nil
}

func (r *veNFTLocksRepo) GetByTokenID(ctx context.Context, tokenID uint64) (*entity.VeNFTLock, error) {
	q, args, err := sq.Select("*").
		From(r.table).
		Where(sq.Eq{"token_id": tokenID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("can't build query: %w", err)
	}
	lock := new(entity.VeNFTLock)
	err = r.db.GetContext(ctx, lock, q, args...)
	if err != nil {
		return nil, fmt.Errorf("can't get venft lock: %w", err)
	}
	return lock, nil
}

func (r *veNFTLocksRepo) FindByOwner(ctx context.Context, owner common.Address) ([]*entity.VeNFTLock, error) {
	q, args, err := sq.Select("*").
		From(r.table).
		Where(sq.Eq{"owner_address": owner}).
		OrderBy("token_id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("can't build query: %w", err)
	}
	locks := make([]*entity.VeNFTLock, 0, 5)
	err = r.db.SelectContext(ctx, &locks, q, args...)
	if err != nil {
		return nil, fmt.Errorf("can't find venft locks: %w", err)
	}
	return locks, nil
}
