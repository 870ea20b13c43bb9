package entity

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ScanCursor tracks indexing progress for one watched contract. LastBlock is
// monotonically non-decreasing; Syncing must be cleared even when a scan fails.
type ScanCursor struct {
	Contract  string         `db:"contract"`
	Address   common.Address `db:"address"`
	LastBlock uint           `db:"last_block"`
	Syncing   bool           `db:"syncing"`
	CreatedAt *time.Time     `db:"created_at"`
	UpdatedAt *time.Time     `db:"updated_at"`
}

type ScanCursorsRepo interface {
	Ensure(ctx context.Context, cursor *ScanCursor) error
	SetSyncing(ctx context.Context, contract string, syncing bool) error
	GetByContract(ctx context.Context, contract string) (*ScanCursor, error)
	FindAll(ctx context.Context) ([]*ScanCursor, error)
}
