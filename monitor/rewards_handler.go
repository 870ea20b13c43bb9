package monitor

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pelagos-finance/defi-indexer/entity"
	"github.com/pelagos-finance/defi-indexer/ethclient"
	"github.com/pelagos-finance/defi-indexer/logging"
	"github.com/pelagos-finance/defi-indexer/repository"
	"github.com/pelagos-finance/defi-indexer/units"
)

// RewardsHandler appends claimed reward records to historical_rewards.
// Re-scanned events are detected by the unique claim key and skipped, so
// replays never double-count.
type RewardsHandler struct {
	logger logging.Logger
	repo   *repository.Repo
	client ethclient.Client
}

func NewRewardsHandler(logger logging.Logger, repo *repository.Repo, client ethclient.Client) *RewardsHandler {
	return &RewardsHandler{
		logger: logger,
		repo:   repo,
		client: client,
	}
}

func (h *RewardsHandler) HandleRewardPaid(ctx context.Context, log *entity.Log, data map[string]interface{}) error {
	user, err := eventAddress(data, "user")
	if err != nil {
		return err
	}
	pool, err := eventAddress(data, "pool")
	if err != nil {
		return err
	}
	rewardToken, err := eventAddress(data, "rewardToken")
	if err != nil {
		return err
	}
	amount, ok := data["amount"].(*big.Int)
	if !ok {
		return fmt.Errorf("reward event without a valid amount")
	}
	header, err := h.client.HeaderByNumber(ctx, log.BlockNumber)
	if err != nil {
		return fmt.Errorf("can't get block header: %w", err)
	}
	reward := &entity.HistoricalReward{
		UserAddress: user,
		PoolAddress: pool,
		RewardToken: rewardToken,
		Amount:      units.RoundAmount(units.FromWei(amount)),
		SnapshotAt:  time.Unix(int64(header.Time), 0).UTC(),
	}
	exists, err := h.repo.HistoricalRewards.Exists(ctx, reward)
	if err != nil {
		return fmt.Errorf("can't check for duplicate reward record: %w", err)
	}
	if exists {
		h.logger.WithFields(logrus.Fields{
			"user":         user,
			"block_number": log.BlockNumber,
		}).Debug("skipping duplicate reward record")
		return nil
	}
	return h.repo.HistoricalRewards.Insert(ctx, reward)
}
