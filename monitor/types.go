package monitor

import (
	"context"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/pelagos-finance/defi-indexer/entity"
)

// EventHandler processes a single decoded contract event.
type EventHandler func(ctx context.Context, log *entity.Log, data map[string]interface{}) error

// eventAddress extracts a decoded address field from an event payload. A
// payload that doesn't match the registered ABI must surface as a handler
// error, not a panic in the sync loop.
func eventAddress(data map[string]interface{}, key string) (common.Address, error) {
	addr, ok := data[key].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("event payload has no valid %q address", key)
	}
	return addr, nil
}

type BlocksRange struct {
	From uint
	To   uint
}

func SplitBlockRange(fromBlock uint, toBlock uint, maxSize uint) []*BlocksRange {
	batches := make([]*BlocksRange, 0, 10)
	for fromBlock <= toBlock {
		batchToBlock := fromBlock + maxSize - 1
		if batchToBlock > toBlock {
			batchToBlock = toBlock
		}
		batches = append(batches, &BlocksRange{
			From: fromBlock,
			To:   batchToBlock,
		})
		fromBlock = batchToBlock + 1
	}
	return batches
}

// SortLogs orders logs chronologically, by block number and then by the index
// within the block.
func SortLogs(logs []*entity.Log) {
	sort.Slice(logs, func(i, j int) bool {
		if logs[i].BlockNumber != logs[j].BlockNumber {
			return logs[i].BlockNumber < logs[j].BlockNumber
		}
		return logs[i].LogIndex < logs[j].LogIndex
	})
}
