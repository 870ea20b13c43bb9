package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/pelagos-finance/defi-indexer/db"
	"github.com/pelagos-finance/defi-indexer/entity"
)

type taskVerificationsRepo basePostgresRepo

func NewTaskVerificationsRepo(table string, db *db.DB) entity.TaskVerificationsRepo {
	return (*taskVerificationsRepo)(newBasePostgresRepo(table, db))
}

func (r *taskVerificationsRepo) Upsert(ctx context.Context, v *entity.TaskVerification) error {
	q, args, err := sq.Insert(r.table).
		Columns("user_address", "task_id", "task_type", "verified", "evidence", "completed_at").
		Values(v.UserAddress, v.TaskID, v.TaskType, v.Verified, v.Evidence, v.CompletedAt).
		Suffix("ON CONFLICT (user_address, task_id) DO UPDATE SET" +
			" task_type = EXCLUDED.task_type, verified = EXCLUDED.verified," +
			" evidence = EXCLUDED.evidence, completed_at = EXCLUDED.completed_at").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("can't build query: %w", err)
	}
	_, err = r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("can't upsert task verification: %w", err)
	}
	return nil
}
