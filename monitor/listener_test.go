package monitor_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"

	"github.com/pelagos-finance/defi-indexer/config"
	"github.com/pelagos-finance/defi-indexer/contract"
	"github.com/pelagos-finance/defi-indexer/contract/defiabi"
	"github.com/pelagos-finance/defi-indexer/db"
	"github.com/pelagos-finance/defi-indexer/entity"
	"github.com/pelagos-finance/defi-indexer/logging"
	"github.com/pelagos-finance/defi-indexer/monitor"
	"github.com/pelagos-finance/defi-indexer/repository"
)

type fakeScanCursorsRepo struct {
	cursor      *entity.ScanCursor
	savedBlocks []uint
	setSyncing  []bool
}

func (r *fakeScanCursorsRepo) Ensure(ctx context.Context, cursor *entity.ScanCursor) error {
	c := *cursor
	r.cursor = &c
	r.savedBlocks = append(r.savedBlocks, cursor.LastBlock)
	return nil
}

func (r *fakeScanCursorsRepo) SetSyncing(ctx context.Context, contractName string, syncing bool) error {
	r.setSyncing = append(r.setSyncing, syncing)
	if r.cursor != nil {
		r.cursor.Syncing = syncing
	}
	return nil
}

func (r *fakeScanCursorsRepo) GetByContract(ctx context.Context, contractName string) (*entity.ScanCursor, error) {
	if r.cursor == nil {
		return nil, db.ErrNotFound
	}
	c := *r.cursor
	return &c, nil
}

func (r *fakeScanCursorsRepo) FindAll(ctx context.Context) ([]*entity.ScanCursor, error) {
	if r.cursor == nil {
		return nil, nil
	}
	return []*entity.ScanCursor{r.cursor}, nil
}

// fakeScanClient serves a fixed chain head and a canned set of logs.
type fakeScanClient struct {
	head    uint
	logs    []types.Log
	queries []ethereum.FilterQuery
}

func (c *fakeScanClient) BlockNumber(ctx context.Context) (uint, error) {
	return c.head, nil
}

func (c *fakeScanClient) HeaderByNumber(ctx context.Context, n uint) (*types.Header, error) {
	return &types.Header{}, nil
}

func (c *fakeScanClient) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	c.queries = append(c.queries, q)
	var res []types.Log
	for _, log := range c.logs {
		if log.BlockNumber >= q.FromBlock.Uint64() && log.BlockNumber <= q.ToBlock.Uint64() {
			res = append(res, log)
		}
	}
	return res, nil
}

func (c *fakeScanClient) CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	return nil, fmt.Errorf("unexpected contract call")
}

func mintLog(block uint64, index uint) types.Log {
	return types.Log{
		Address: testPool,
		Topics: []common.Hash{
			defiabi.PairABI.Events["Mint"].ID,
			testUser.Hash(),
			testUser.Hash(),
		},
		Data: append(
			common.LeftPadBytes(wei(1).Bytes(), 32),
			common.LeftPadBytes(wei(2).Bytes(), 32)...,
		),
		BlockNumber: block,
		Index:       index,
	}
}

func newTestListener(client *fakeScanClient, cursors *fakeScanCursorsRepo, handler monitor.EventHandler) *monitor.Listener {
	pair := contract.NewContract(client, testPool, defiabi.PairABI)
	listener := monitor.NewListener(
		logging.New(),
		&repository.Repo{ScanCursors: cursors},
		client,
		"1329",
		"usdc-usdp",
		pair,
		&config.ContractConfig{
			Address:          testPool.Hex(),
			StartBlock:       1,
			BatchSize:        10,
			MaxBlocksPerSync: 30,
		},
	)
	listener.RegisterEventHandler(defiabi.PairMint, handler)
	return listener
}

func TestListenerSync(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := &fakeScanClient{
		head: 30,
		logs: []types.Log{
			mintLog(5, 1),
			mintLog(5, 0),
			mintLog(17, 0),
		},
	}
	cursors := &fakeScanCursorsRepo{}

	var handled []*entity.Log
	handler := func(ctx context.Context, log *entity.Log, data map[string]interface{}) error {
		handled = append(handled, log)
		if log.LogIndex == 1 {
			return fmt.Errorf("boom")
		}
		return nil
	}
	listener := newTestListener(client, cursors, handler)
	require.NoError(t, listener.VerifyEventHandlersABI())

	require.NoError(t, listener.Sync(ctx))

	// the full range is fetched in batch-size chunks
	require.Len(t, client.queries, 3)
	require.Equal(t, int64(1), client.queries[0].FromBlock.Int64())
	require.Equal(t, int64(10), client.queries[0].ToBlock.Int64())
	require.Equal(t, int64(21), client.queries[2].FromBlock.Int64())
	require.Equal(t, int64(30), client.queries[2].ToBlock.Int64())

	// a failing handler skips its event but not the events behind it
	require.Len(t, handled, 3)
	require.Equal(t, uint(0), handled[0].LogIndex)
	require.Equal(t, uint(1), handled[1].LogIndex)
	require.Equal(t, uint(17), handled[2].BlockNumber)

	// the cursor advances after every chunk and the syncing flag is cleared
	require.Equal(t, []uint{0, 10, 20, 30}, cursors.savedBlocks)
	require.Equal(t, []bool{false}, cursors.setSyncing)
	require.Equal(t, uint(30), cursors.cursor.LastBlock)
	require.False(t, cursors.cursor.Syncing)

	// a re-run against the same head is a no-op: no fetches, no handler
	// invocations, no cursor writes
	client.queries = nil
	cursors.savedBlocks = nil
	cursors.setSyncing = nil
	handled = nil

	require.NoError(t, listener.Sync(ctx))
	require.Empty(t, client.queries)
	require.Empty(t, handled)
	require.Empty(t, cursors.savedBlocks)
	require.Empty(t, cursors.setSyncing)
	require.Equal(t, uint(30), cursors.cursor.LastBlock)
}

func TestListenerSyncCapsBlocksPerRun(t *testing.T) {
	t.Parallel()

	client := &fakeScanClient{head: 1000}
	cursors := &fakeScanCursorsRepo{}
	listener := newTestListener(client, cursors, func(ctx context.Context, log *entity.Log, data map[string]interface{}) error {
		return nil
	})

	require.NoError(t, listener.Sync(context.Background()))
	require.Equal(t, uint(30), cursors.cursor.LastBlock)

	require.NoError(t, listener.Sync(context.Background()))
	require.Equal(t, uint(60), cursors.cursor.LastBlock)
}

func TestListenerRejectsUnknownEventHandler(t *testing.T) {
	t.Parallel()

	client := &fakeScanClient{}
	listener := newTestListener(client, &fakeScanCursorsRepo{}, nil)
	listener.RegisterEventHandler("event NoSuchEvent()", nil)
	require.Error(t, listener.VerifyEventHandlersABI())
}
