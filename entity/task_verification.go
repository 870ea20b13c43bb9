package entity

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// TaskVerification is the durable snapshot written on the first successful
// verification of (address, task). The task/points system owns reads; the
// indexer only ever writes here.
type TaskVerification struct {
	UserAddress common.Address `db:"user_address"`
	TaskID      string         `db:"task_id"`
	TaskType    string         `db:"task_type"`
	Verified    bool           `db:"verified"`
	Evidence    []byte         `db:"evidence"`
	CompletedAt time.Time      `db:"completed_at"`
}

type TaskVerificationsRepo interface {
	Upsert(ctx context.Context, v *TaskVerification) error
}
