package monitor

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/pelagos-finance/defi-indexer/config"
	"github.com/pelagos-finance/defi-indexer/contract"
	"github.com/pelagos-finance/defi-indexer/db"
	"github.com/pelagos-finance/defi-indexer/entity"
	"github.com/pelagos-finance/defi-indexer/ethclient"
	"github.com/pelagos-finance/defi-indexer/logging"
	"github.com/pelagos-finance/defi-indexer/repository"
)

const defaultEventHandlersMapCap = 10

// Listener scans one contract for events and dispatches them to registered
// handlers. Sync is resumable: progress is persisted after every processed
// chunk, so a crashed scan restarts from the last completed chunk.
type Listener struct {
	name                 string
	cfg                  *config.ContractConfig
	logger               logrus.FieldLogger
	repo                 *repository.Repo
	client               ethclient.Client
	contract             *contract.Contract
	chainID              string
	eventHandlers        map[string]EventHandler
	headBlockMetric      prometheus.Gauge
	processedBlockMetric prometheus.Gauge
	okEventsMetric       prometheus.Counter
	failedEventsMetric   prometheus.Counter
}

func NewListener(
	logger logging.Logger,
	repo *repository.Repo,
	client ethclient.Client,
	chainID string,
	name string,
	c *contract.Contract,
	cfg *config.ContractConfig,
) *Listener {
	return &Listener{
		name:                 name,
		cfg:                  cfg,
		logger:               logger.WithField("contract", name),
		repo:                 repo,
		client:               client,
		contract:             c,
		chainID:              chainID,
		eventHandlers:        make(map[string]EventHandler, defaultEventHandlersMapCap),
		headBlockMetric:      LatestHeadBlock.WithLabelValues(name),
		processedBlockMetric: LatestProcessedBlock.WithLabelValues(name),
		okEventsMetric:       ProcessedEvents.WithLabelValues(name, "ok"),
		failedEventsMetric:   ProcessedEvents.WithLabelValues(name, "error"),
	}
}

func (l *Listener) Name() string {
	return l.name
}

func (l *Listener) RegisterEventHandler(event string, handler EventHandler) {
	l.eventHandlers[event] = handler
}

// VerifyEventHandlersABI checks that all registered handlers correspond to
// events present in the contract ABI.
func (l *Listener) VerifyEventHandlersABI() error {
	events := l.contract.AllEvents()
	for e := range l.eventHandlers {
		if !events[e] {
			return fmt.Errorf("contract %s has no event %q", l.name, e)
		}
	}
	return nil
}

// Sync advances the scan cursor towards the chain head. At most
// MaxBlocksPerSync blocks are covered per call, fetched in BatchSize chunks.
// The cursor is written after each chunk and the syncing flag is always
// cleared, even on failure.
func (l *Listener) Sync(ctx context.Context) error {
	cursor, err := l.repo.ScanCursors.GetByContract(ctx, l.name)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("can't read scan cursor: %w", err)
		}
		l.logger.WithFields(logrus.Fields{
			"address":     l.contract.Address(),
			"start_block": l.cfg.StartBlock,
		}).Warn("scan cursor is not present, starting indexing from scratch")
		cursor = &entity.ScanCursor{
			Contract:  l.name,
			Address:   l.contract.Address(),
			LastBlock: l.cfg.StartBlock - 1,
		}
	}

	head, err := l.client.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("can't get chain head: %w", err)
	}
	l.headBlockMetric.Set(float64(head))

	fromBlock := cursor.LastBlock + 1
	toBlock := head
	if toBlock > fromBlock+l.cfg.MaxBlocksPerSync-1 {
		toBlock = fromBlock + l.cfg.MaxBlocksPerSync - 1
	}
	if fromBlock > toBlock {
		return nil
	}

	cursor.Syncing = true
	if err = l.repo.ScanCursors.Ensure(ctx, cursor); err != nil {
		return fmt.Errorf("can't mark cursor as syncing: %w", err)
	}
	defer func() {
		// uses a fresh context so that the flag is cleared even when the
		// scan context is already canceled
		if err2 := l.repo.ScanCursors.SetSyncing(context.Background(), l.name, false); err2 != nil {
			l.logger.WithError(err2).Error("can't clear cursor syncing flag")
		}
	}()

	for _, blocksRange := range SplitBlockRange(fromBlock, toBlock, l.cfg.BatchSize) {
		logs, err := l.fetchLogs(ctx, blocksRange)
		if err != nil {
			return fmt.Errorf("can't fetch logs in range %d-%d: %w", blocksRange.From, blocksRange.To, err)
		}
		l.processLogs(ctx, logs)

		cursor.LastBlock = blocksRange.To
		if err = l.repo.ScanCursors.Ensure(ctx, cursor); err != nil {
			return fmt.Errorf("can't save scan cursor: %w", err)
		}
		l.processedBlockMetric.Set(float64(blocksRange.To))
	}
	l.logger.WithFields(logrus.Fields{
		"from_block": fromBlock,
		"to_block":   toBlock,
	}).Info("synced contract events")
	return nil
}

func (l *Listener) fetchLogs(ctx context.Context, blocksRange *BlocksRange) ([]*entity.Log, error) {
	q := ethereum.FilterQuery{
		FromBlock: big.NewInt(int64(blocksRange.From)),
		ToBlock:   big.NewInt(int64(blocksRange.To)),
		Addresses: []common.Address{l.contract.Address()},
		Topics:    [][]common.Hash{l.registeredTopics()},
	}
	rawLogs, err := l.client.FilterLogs(ctx, q)
	if err != nil {
		return nil, err
	}
	logs := make([]*entity.Log, len(rawLogs))
	for i, rawLog := range rawLogs {
		logs[i] = entity.NewLog(l.chainID, rawLog)
	}
	SortLogs(logs)
	return logs, nil
}

func (l *Listener) registeredTopics() []common.Hash {
	topics := make([]common.Hash, 0, len(l.eventHandlers))
	for e := range l.eventHandlers {
		if id, ok := l.contract.EventID(e); ok {
			topics = append(topics, id)
		}
	}
	return topics
}

// processLogs handles events one by one, in order. A failing handler is
// logged and skipped, it never blocks the events behind it.
func (l *Listener) processLogs(ctx context.Context, logs []*entity.Log) {
	for _, log := range logs {
		event, data, err := l.contract.ParseLog(log)
		if err != nil {
			l.failedEventsMetric.Inc()
			l.logger.WithError(err).WithFields(logrus.Fields{
				"block_number": log.BlockNumber,
				"log_index":    log.LogIndex,
			}).Error("can't parse event log")
			continue
		}
		handler, ok := l.eventHandlers[event]
		if !ok {
			continue
		}
		if err = handler(ctx, log, data); err != nil {
			l.failedEventsMetric.Inc()
			l.logger.WithError(err).WithFields(logrus.Fields{
				"event":        event,
				"block_number": log.BlockNumber,
				"log_index":    log.LogIndex,
				"tx_hash":      log.TransactionHash,
			}).Error("can't process event log")
			continue
		}
		l.okEventsMetric.Inc()
	}
}
